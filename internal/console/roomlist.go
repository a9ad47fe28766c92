package console

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/zaqqye/room_console/internal/metrics"
	"github.com/zaqqye/room_console/internal/store"
)

type ListState int

const (
	ListIdle ListState = iota
	ListSubscribed
	ListUpdated
	ListUnsubscribed
)

func (s ListState) String() string {
	switch s {
	case ListIdle:
		return "idle"
	case ListSubscribed:
		return "subscribed"
	case ListUpdated:
		return "updated"
	case ListUnsubscribed:
		return "unsubscribed"
	}
	return "unknown"
}

const listErrorText = "Failed to load rooms."

// RoomListSync keeps the rooms container in step with the store. It owns the
// container and the card streams, and is driven from one page loop.
type RoomListSync struct {
	sink      Sink
	exec      Executor
	cams      *CardCameras
	streamURL func(key string) string
	metrics   *metrics.Console
	logger    *zap.Logger

	store store.RoomStore
	state ListState
	sub   store.Subscription
	gen   uint64
}

func NewRoomListSync(sink Sink, exec Executor, cams *CardCameras, streamURL func(string) string, m *metrics.Console, logger *zap.Logger) *RoomListSync {
	if exec == nil {
		exec = direct
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if streamURL == nil {
		streamURL = func(string) string { return "" }
	}
	return &RoomListSync{sink: sink, exec: exec, cams: cams, streamURL: streamURL, metrics: m, logger: logger}
}

// Start cancels any prior subscription, then subscribes to st. Snapshots
// from a replaced subscription are dropped.
func (l *RoomListSync) Start(ctx context.Context, st store.RoomStore) {
	l.cancel()
	l.store = st
	l.gen++
	gen := l.gen

	sub, err := st.Subscribe(ctx,
		func(s store.Snapshot) { l.exec(func() { l.onData(gen, s) }) },
		func(err error) { l.exec(func() { l.onError(gen, err) }) },
	)
	if err != nil {
		l.onError(gen, err)
		return
	}
	l.sub = sub
	l.state = ListSubscribed
	l.metrics.SubscriptionStarted()
}

func (l *RoomListSync) onData(gen uint64, s store.Snapshot) {
	if gen != l.gen || l.sub == nil {
		return
	}
	html, err := RenderRoomCards(s.Rooms)
	if err != nil {
		l.logger.Error("render rooms", zap.Error(err))
		l.renderError()
		return
	}
	l.cams.StopAll()
	l.sink.Send(Message{Type: MsgRooms, HTML: html})
	l.state = ListUpdated
	l.metrics.SnapshotRendered()
}

func (l *RoomListSync) onError(gen uint64, err error) {
	if gen != l.gen {
		return
	}
	if !errors.Is(err, context.Canceled) {
		l.logger.Warn("room subscription failed", zap.Error(err))
	}
	l.cancel()
	l.state = ListUnsubscribed
	l.renderError()
}

func (l *RoomListSync) renderError() {
	html, err := RenderListError(listErrorText)
	if err != nil {
		l.logger.Error("render list error", zap.Error(err))
		return
	}
	l.sink.Send(Message{Type: MsgListError, HTML: html})
}

func (l *RoomListSync) cancel() {
	if l.sub == nil {
		return
	}
	l.sub.Cancel()
	l.sub = nil
	l.state = ListUnsubscribed
	l.metrics.SubscriptionCancelled()
}

// Teardown cancels the subscription and stops every card stream.
func (l *RoomListSync) Teardown() {
	l.gen++
	l.cancel()
	l.cams.StopAll()
	l.state = ListUnsubscribed
}

func (l *RoomListSync) State() ListState { return l.state }

func (l *RoomListSync) Subscribed() bool { return l.sub != nil }

func (l *RoomListSync) Cameras() *CardCameras { return l.cams }

// ToggleCamera flips the card's stream and reports the new state, or an
// alert with the capture failure.
func (l *RoomListSync) ToggleCamera(ctx context.Context, roomID, cameraID string) {
	if roomID == "" {
		return
	}
	st, err := l.cams.Toggle(ctx, roomID, cameraID)
	if err != nil {
		l.logger.Info("open camera failed", zap.String("room_id", roomID), zap.Error(err))
		l.sink.Send(alert(AlertError, "Error", UserMessage(err)))
		return
	}
	msg := Message{Type: MsgCamera, RoomID: roomID, Active: st.Active, Label: st.Label}
	if st.Active {
		msg.StreamURL = l.streamURL(CardStreamKey(roomID))
	}
	l.sink.Send(msg)
}

// DeleteRoom stops any stream bound to the card, then deletes the record.
func (l *RoomListSync) DeleteRoom(ctx context.Context, roomID, name string) error {
	if roomID == "" {
		return store.ErrRoomNotFound
	}
	if l.store == nil {
		return store.ErrClosed
	}
	if l.cams.Stop(roomID) {
		l.sink.Send(Message{Type: MsgCamera, RoomID: roomID, Label: LabelOpenCamera})
	}
	if err := l.store.Delete(ctx, roomID); err != nil {
		l.logger.Warn("delete room failed", zap.String("room_id", roomID), zap.Error(err))
		text := "Could not delete the room."
		if errors.Is(err, store.ErrRoomNotFound) {
			text = "The room no longer exists."
		}
		l.sink.Send(alert(AlertError, "Delete failed", text))
		return err
	}
	l.sink.Send(alert(AlertSuccess, "Deleted", "Room "+name+" was deleted."))
	return nil
}
