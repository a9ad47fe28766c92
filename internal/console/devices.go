package console

import (
	"context"
	"errors"
	"fmt"

	"github.com/zaqqye/room_console/internal/capture"
)

// EnumerateVideoDevices lists video inputs. When any entry comes back without
// a label it takes a throwaway grant, releases it and asks again.
func EnumerateVideoDevices(ctx context.Context, devs capture.Devices) ([]capture.DeviceInfo, error) {
	if devs == nil {
		return nil, capture.ErrUnsupported
	}
	list, err := devs.Enumerate(ctx)
	if err != nil {
		return nil, err
	}
	if missingLabels(list) {
		if s, err := devs.Open(ctx, capture.Constraints{}); err == nil {
			capture.StopStream(s)
		}
		if list, err = devs.Enumerate(ctx); err != nil {
			return nil, err
		}
	}
	out := make([]capture.DeviceInfo, 0, len(list))
	for _, d := range list {
		if d.Kind == capture.KindVideoInput {
			out = append(out, d)
		}
	}
	return out, nil
}

func missingLabels(list []capture.DeviceInfo) bool {
	for _, d := range list {
		if d.Label == "" {
			return true
		}
	}
	return false
}

// DeviceLabel is what the selector shows for d.
func DeviceLabel(d capture.DeviceInfo) string {
	if d.Label != "" {
		return d.Label
	}
	id := d.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return "Camera " + id
}

// UserMessage maps a capture failure to the alert text shown to the admin.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, capture.ErrUnsupported):
		return "Camera capture is not supported on this host."
	case errors.Is(err, capture.ErrPermissionDenied):
		return "Access to the camera was denied. Check the device permissions."
	case errors.Is(err, capture.ErrDeviceNotFound):
		return "The selected camera was not found."
	case err == nil:
		return ""
	}
	return fmt.Sprintf("Could not open the camera: %v", err)
}
