package console

import (
	"context"
	"net/url"

	"github.com/zaqqye/room_console/internal/capture"
	"github.com/zaqqye/room_console/internal/metrics"
)

// Toggle button labels.
const (
	LabelOpenCamera  = "📷 Open camera"
	LabelCloseCamera = "⏹️ Close camera"
)

// ModalStreamKey names the preview stream for the page's stream endpoint.
const ModalStreamKey = "modal"

// CardStreamKey names a card's stream for the page's stream endpoint.
func CardStreamKey(roomID string) string { return "card-" + roomID }

type CameraState struct {
	RoomID string
	Active bool
	Label  string
}

// CardCameras holds at most one stream per room card. It is owned by a
// single page loop and is not safe for concurrent use.
type CardCameras struct {
	devices capture.Devices
	metrics *metrics.Console
	streams map[string]capture.Stream
}

func NewCardCameras(devs capture.Devices, m *metrics.Console) *CardCameras {
	return &CardCameras{devices: devs, metrics: m, streams: make(map[string]capture.Stream)}
}

// Toggle stops the card's stream if one is running, otherwise opens one on
// cameraID (or the first video input when cameraID is empty).
func (c *CardCameras) Toggle(ctx context.Context, roomID, cameraID string) (CameraState, error) {
	if _, ok := c.streams[roomID]; ok {
		c.Stop(roomID)
		return CameraState{RoomID: roomID, Label: LabelOpenCamera}, nil
	}

	deviceID := cameraID
	if deviceID == "" {
		list, err := EnumerateVideoDevices(ctx, c.devices)
		if err != nil {
			return CameraState{RoomID: roomID, Label: LabelOpenCamera}, err
		}
		if len(list) == 0 {
			return CameraState{RoomID: roomID, Label: LabelOpenCamera}, capture.ErrDeviceNotFound
		}
		deviceID = list[0].ID
	}
	if c.devices == nil {
		return CameraState{RoomID: roomID, Label: LabelOpenCamera}, capture.ErrUnsupported
	}

	s, err := c.devices.Open(ctx, capture.Constraints{DeviceID: deviceID, Exact: true})
	if err != nil {
		return CameraState{RoomID: roomID, Label: LabelOpenCamera}, err
	}
	c.streams[roomID] = s
	c.metrics.StreamOpened()
	return CameraState{RoomID: roomID, Active: true, Label: LabelCloseCamera}, nil
}

// Stop releases the card's stream, if any.
func (c *CardCameras) Stop(roomID string) bool {
	s, ok := c.streams[roomID]
	if !ok {
		return false
	}
	capture.StopStream(s)
	delete(c.streams, roomID)
	c.metrics.StreamStopped()
	return true
}

// StopAll releases every card stream and returns the room ids that had one.
func (c *CardCameras) StopAll() []string {
	ids := make([]string, 0, len(c.streams))
	for id := range c.streams {
		ids = append(ids, id)
	}
	for _, id := range ids {
		c.Stop(id)
	}
	return ids
}

func (c *CardCameras) Active(roomID string) bool {
	_, ok := c.streams[roomID]
	return ok
}

func (c *CardCameras) Stream(roomID string) capture.Stream {
	return c.streams[roomID]
}

func (c *CardCameras) Len() int { return len(c.streams) }

// PreviewResult is what opening the modal produced: either an external URL
// to hand to the browser, or the devices for the selector.
type PreviewResult struct {
	ExternalURL string
	Devices     []capture.DeviceInfo
}

// ModalPreview owns the single preview stream of the modal variant.
type ModalPreview struct {
	devices capture.Devices
	metrics *metrics.Console
	stream  capture.Stream
}

func NewModalPreview(devs capture.Devices, m *metrics.Console) *ModalPreview {
	return &ModalPreview{devices: devs, metrics: m}
}

func (p *ModalPreview) Open(ctx context.Context, cameraRef string) (PreviewResult, error) {
	if IsExternalURL(cameraRef) {
		return PreviewResult{ExternalURL: cameraRef}, nil
	}
	list, err := EnumerateVideoDevices(ctx, p.devices)
	if err != nil {
		return PreviewResult{}, err
	}
	return PreviewResult{Devices: list}, nil
}

// Select stops the current preview before opening deviceID.
func (p *ModalPreview) Select(ctx context.Context, deviceID string) error {
	p.Close()
	if p.devices == nil {
		return capture.ErrUnsupported
	}
	s, err := p.devices.Open(ctx, capture.Constraints{DeviceID: deviceID, Exact: true})
	if err != nil {
		return err
	}
	p.stream = s
	p.metrics.StreamOpened()
	return nil
}

func (p *ModalPreview) Close() {
	if p.stream == nil {
		return
	}
	capture.StopStream(p.stream)
	p.stream = nil
	p.metrics.StreamStopped()
}

func (p *ModalPreview) Stream() capture.Stream { return p.stream }

func (p *ModalPreview) Active() bool { return p.stream != nil }

// IsExternalURL reports whether ref is an absolute http(s) URL rather than
// a device id.
func IsExternalURL(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
