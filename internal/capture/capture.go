// Package capture is the capture-device collaborator: device enumeration,
// exact-device stream acquisition and stream teardown.
package capture

import (
	"context"
	"errors"
)

// Error categories; callers map each one to its own user-facing message.
var (
	ErrUnsupported      = errors.New("capture not supported")
	ErrPermissionDenied = errors.New("capture permission denied")
	ErrDeviceNotFound   = errors.New("capture device not found")
)

type DeviceKind string

const (
	KindVideoInput DeviceKind = "videoinput"
	KindMetadata   DeviceKind = "metadata"
)

type DeviceInfo struct {
	ID    string     `json:"id"`
	Label string     `json:"label"`
	Kind  DeviceKind `json:"kind"`
}

// Constraints selects a device. An empty DeviceID means any video input.
type Constraints struct {
	DeviceID string
	Exact    bool
}

type Track interface {
	Stop()
	Live() bool
}

type Stream interface {
	DeviceID() string
	Tracks() []Track
}

// FrameSource is implemented by streams that can feed viewers.
type FrameSource interface {
	Subscribe() (<-chan []byte, func())
}

type Devices interface {
	Enumerate(ctx context.Context) ([]DeviceInfo, error)
	Open(ctx context.Context, c Constraints) (Stream, error)
}

// StopStream releases every track of s. Nil is a no-op.
func StopStream(s Stream) {
	if s == nil {
		return
	}
	for _, t := range s.Tracks() {
		t.Stop()
	}
}

// LiveTracks counts tracks still running.
func LiveTracks(s Stream) int {
	if s == nil {
		return 0
	}
	n := 0
	for _, t := range s.Tracks() {
		if t.Live() {
			n++
		}
	}
	return n
}
