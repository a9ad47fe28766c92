package console

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaqqye/room_console/internal/capture"
)

func TestEnumerateVideoDevices_GrantsWhenLabelsMissing(t *testing.T) {
	devs := newFakeDevices(
		cam("cam-a", "Front"),
		capture.DeviceInfo{ID: "cam-a-meta", Label: "Front meta", Kind: capture.KindMetadata},
		cam("cam-b", "Back"),
	)
	devs.hidden = true

	list, err := EnumerateVideoDevices(context.Background(), devs)
	require.NoError(t, err)

	require.Len(t, list, 2)
	assert.Equal(t, "Front", list[0].Label)
	assert.Equal(t, "Back", list[1].Label)
	require.Len(t, devs.requests, 1)
	assert.Equal(t, capture.Constraints{}, devs.requests[0])
	assert.Zero(t, devs.liveStreams(), "throwaway grant must be released")
}

func TestEnumerateVideoDevices_LabeledSkipsGrant(t *testing.T) {
	devs := newFakeDevices(cam("cam-a", "Front"))

	list, err := EnumerateVideoDevices(context.Background(), devs)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Empty(t, devs.requests)
}

func TestEnumerateVideoDevices_NoCollaborator(t *testing.T) {
	_, err := EnumerateVideoDevices(context.Background(), nil)
	assert.ErrorIs(t, err, capture.ErrUnsupported)
}

func TestUserMessage_DistinctPerCategory(t *testing.T) {
	msgs := map[string]struct{}{}
	for _, err := range []error{capture.ErrUnsupported, capture.ErrPermissionDenied, capture.ErrDeviceNotFound} {
		m := UserMessage(err)
		assert.NotEmpty(t, m)
		msgs[m] = struct{}{}
	}
	assert.Len(t, msgs, 3)
	assert.Contains(t, UserMessage(errors.New("boom")), "boom")
}

func TestCardCameras_ToggleUsesFirstDeviceThenStops(t *testing.T) {
	devs := newFakeDevices(cam("cam-a", "Front"), cam("cam-b", "Back"))
	cams := NewCardCameras(devs, nil)
	ctx := context.Background()

	st, err := cams.Toggle(ctx, "room-1", "")
	require.NoError(t, err)
	assert.True(t, st.Active)
	assert.Equal(t, LabelCloseCamera, st.Label)
	assert.Equal(t, capture.Constraints{DeviceID: "cam-a", Exact: true}, devs.requests[len(devs.requests)-1])
	assert.Equal(t, 1, devs.liveStreams())

	st, err = cams.Toggle(ctx, "room-1", "")
	require.NoError(t, err)
	assert.False(t, st.Active)
	assert.Equal(t, LabelOpenCamera, st.Label)
	assert.Zero(t, devs.liveStreams())
	assert.Zero(t, cams.Len())
}

func TestCardCameras_ExplicitDeviceAndNotFound(t *testing.T) {
	devs := newFakeDevices(cam("cam-a", "Front"), cam("cam-b", "Back"))
	cams := NewCardCameras(devs, nil)

	_, err := cams.Toggle(context.Background(), "room-1", "cam-b")
	require.NoError(t, err)
	assert.Equal(t, "cam-b", cams.Stream("room-1").DeviceID())

	_, err = cams.Toggle(context.Background(), "room-2", "missing")
	assert.ErrorIs(t, err, capture.ErrDeviceNotFound)
	assert.False(t, cams.Active("room-2"))
}

func TestCardCameras_NoDevices(t *testing.T) {
	cams := NewCardCameras(newFakeDevices(), nil)

	_, err := cams.Toggle(context.Background(), "room-1", "")
	assert.ErrorIs(t, err, capture.ErrDeviceNotFound)
}

func TestCardCameras_PermissionDenied(t *testing.T) {
	devs := newFakeDevices(cam("cam-a", "Front"))
	devs.openErr = capture.ErrPermissionDenied
	cams := NewCardCameras(devs, nil)

	st, err := cams.Toggle(context.Background(), "room-1", "cam-a")
	assert.ErrorIs(t, err, capture.ErrPermissionDenied)
	assert.False(t, st.Active)
	assert.Zero(t, cams.Len())
}

func TestCardCameras_StopAll(t *testing.T) {
	devs := newFakeDevices(cam("cam-a", "Front"), cam("cam-b", "Back"))
	cams := NewCardCameras(devs, nil)
	ctx := context.Background()

	_, err := cams.Toggle(ctx, "room-1", "cam-a")
	require.NoError(t, err)
	_, err = cams.Toggle(ctx, "room-2", "cam-b")
	require.NoError(t, err)
	require.Equal(t, 2, devs.liveStreams())

	stopped := cams.StopAll()
	assert.ElementsMatch(t, []string{"room-1", "room-2"}, stopped)
	assert.Zero(t, devs.liveStreams())
	assert.Zero(t, cams.Len())
}

func TestModalPreview_ExternalURL(t *testing.T) {
	devs := newFakeDevices(cam("cam-a", "Front"))
	p := NewModalPreview(devs, nil)

	res, err := p.Open(context.Background(), "https://cams.example.com/room-1")
	require.NoError(t, err)
	assert.Equal(t, "https://cams.example.com/room-1", res.ExternalURL)
	assert.Empty(t, devs.requests)
	assert.False(t, p.Active())
}

func TestModalPreview_SelectStopsPrevious(t *testing.T) {
	devs := newFakeDevices(cam("cam-a", "Front"), cam("cam-b", "Back"))
	p := NewModalPreview(devs, nil)
	ctx := context.Background()

	res, err := p.Open(ctx, "cam-a")
	require.NoError(t, err)
	assert.Empty(t, res.ExternalURL)
	assert.Len(t, res.Devices, 2)

	require.NoError(t, p.Select(ctx, "cam-a"))
	first := p.Stream()
	require.NoError(t, p.Select(ctx, "cam-b"))

	assert.Zero(t, capture.LiveTracks(first))
	assert.Equal(t, 1, devs.liveStreams())
	assert.Equal(t, "cam-b", p.Stream().DeviceID())

	p.Close()
	assert.Zero(t, devs.liveStreams())
	assert.False(t, p.Active())
	p.Close()
}

func TestModalPreview_SelectFailureLeavesNothingRunning(t *testing.T) {
	devs := newFakeDevices(cam("cam-a", "Front"))
	p := NewModalPreview(devs, nil)
	ctx := context.Background()

	require.NoError(t, p.Select(ctx, "cam-a"))
	err := p.Select(ctx, "gone")
	assert.ErrorIs(t, err, capture.ErrDeviceNotFound)
	assert.Zero(t, devs.liveStreams())
	assert.False(t, p.Active())
}

func TestIsExternalURL(t *testing.T) {
	cases := map[string]bool{
		"http://10.0.0.5:8080/stream": true,
		"https://cams.example.com/a":  true,
		"ftp://cams.example.com/a":    false,
		"cam-a":                       false,
		"":                            false,
		"/dev/video0":                 false,
		"https://":                    false,
	}
	for ref, want := range cases {
		assert.Equal(t, want, IsExternalURL(ref), ref)
	}
}
