package console

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/zaqqye/room_console/internal/capture"
	"github.com/zaqqye/room_console/internal/models"
	"github.com/zaqqye/room_console/internal/store"
)

var ErrIncompleteForm = errors.New("room name, admin and expiry are required")

type RoomInput struct {
	Room     string
	Admin    string
	Expire   string
	CameraID string
}

func (in RoomInput) normalized() RoomInput {
	return RoomInput{
		Room:     strings.TrimSpace(in.Room),
		Admin:    strings.TrimSpace(in.Admin),
		Expire:   strings.TrimSpace(in.Expire),
		CameraID: strings.TrimSpace(in.CameraID),
	}
}

// Validate requires name, admin and expiry; the camera is optional.
func (in RoomInput) Validate() error {
	n := in.normalized()
	if n.Room == "" || n.Admin == "" || n.Expire == "" {
		return ErrIncompleteForm
	}
	return nil
}

// QRFunc produces the image source for a newly created room.
type QRFunc func(room models.Room) (string, error)

// RoomQR encodes RoomURL(baseURL, id) as a data URI.
func RoomQR(baseURL string) QRFunc {
	return func(room models.Room) (string, error) {
		return QRDataURI(RoomURL(baseURL, room.ID))
	}
}

// CreateForm submits new rooms and drives the QR display.
type CreateForm struct {
	sink      Sink
	store     store.RoomStore
	devices   capture.Devices
	countdown *Countdown
	qr        QRFunc
	logger    *zap.Logger
}

func NewCreateForm(sink Sink, st store.RoomStore, devs capture.Devices, cd *Countdown, qr QRFunc, logger *zap.Logger) *CreateForm {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CreateForm{sink: sink, store: st, devices: devs, countdown: cd, qr: qr, logger: logger}
}

// LoadDevices fills the optional camera selector. Failures leave it empty.
func (f *CreateForm) LoadDevices(ctx context.Context) {
	list, err := EnumerateVideoDevices(ctx, f.devices)
	if err != nil {
		f.logger.Info("list cameras failed", zap.Error(err))
		list = nil
	}
	f.sink.Send(Message{Type: MsgDevices, Devices: list})
}

// Submit validates in, writes the room and shows its QR code. A failed write
// leaves nothing behind and the form as it was.
func (f *CreateForm) Submit(ctx context.Context, in RoomInput) (models.Room, error) {
	if err := in.Validate(); err != nil {
		f.sink.Send(alert(AlertWarning, "Incomplete form", "Please fill in the room name, admin name and expiry time."))
		return models.Room{}, err
	}
	in = in.normalized()

	f.sink.Send(Message{Type: MsgSaving, Visible: true, Title: "Saving..."})
	room, err := f.store.Add(ctx, models.NewRoom{
		Room:     in.Room,
		Admin:    in.Admin,
		Expire:   in.Expire,
		CameraID: in.CameraID,
	})
	if err != nil {
		f.logger.Warn("add room failed", zap.Error(err))
		f.sink.Send(alert(AlertError, "Error!", "Could not save the room."))
		return models.Room{}, err
	}

	f.sink.Send(alert(AlertSuccess, "Saved!", "The room was saved."))
	f.ShowQR(room)
	return room, nil
}

// ShowQR displays room's QR code and restarts the countdown.
func (f *CreateForm) ShowQR(room models.Room) {
	img, err := f.qr(room)
	if err != nil {
		f.logger.Error("encode qr", zap.String("room_id", room.ID), zap.Error(err))
		return
	}
	first := true
	f.countdown.Start(
		func(left int, label string) {
			msg := Message{Type: MsgQR, Visible: true, SecondsLeft: left, Label: label}
			if first {
				msg.Image = img
				first = false
			}
			f.sink.Send(msg)
		},
		func() { f.sink.Send(Message{Type: MsgQR}) },
	)
}

// CloseQR clears the countdown and hides the code immediately.
func (f *CreateForm) CloseQR() {
	f.countdown.Clear()
	f.sink.Send(Message{Type: MsgQR})
}

func (f *CreateForm) Teardown() {
	f.countdown.Clear()
}
