// Package store holds the document store collaborator used by the console:
// ordered reads, live snapshots, server-stamped writes and deletes of rooms.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/zaqqye/room_console/internal/models"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrClosed       = errors.New("store closed")
)

// Snapshot is the full, ordered result set delivered on every change.
type Snapshot struct {
	Rooms []models.Room
}

func (s Snapshot) Empty() bool { return len(s.Rooms) == 0 }

// Subscription is the cancellation handle returned by Subscribe.
// Cancel is idempotent.
type Subscription interface {
	Cancel()
}

// RoomStore reads rooms newest first (created_at DESC, id DESC).
type RoomStore interface {
	List(ctx context.Context) ([]models.Room, error)
	// Subscribe delivers the current snapshot, then a fresh one after every
	// change. After onError the subscription is finished and not re-established.
	Subscribe(ctx context.Context, onData func(Snapshot), onError func(error)) (Subscription, error)
	Add(ctx context.Context, room models.NewRoom) (models.Room, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

type loadFunc func(ctx context.Context) ([]models.Room, error)

type feedSubscription struct {
	cancel context.CancelFunc
	once   sync.Once
}

func (s *feedSubscription) Cancel() {
	s.once.Do(s.cancel)
}

// watch drives a subscription off a change feed: one full reload per notification.
func watch(ctx context.Context, feed Feed, load loadFunc, onData func(Snapshot), onError func(error)) Subscription {
	ctx, cancel := context.WithCancel(ctx)
	changes, stop := feed.Listen()
	sub := &feedSubscription{cancel: cancel}

	go func() {
		defer stop()
		deliver := func() bool {
			rooms, err := load(ctx)
			if ctx.Err() != nil {
				return false
			}
			if err != nil {
				onError(err)
				return false
			}
			onData(Snapshot{Rooms: rooms})
			return true
		}
		if !deliver() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					onError(ErrClosed)
					return
				}
				if !deliver() {
					return
				}
			}
		}
	}()
	return sub
}
