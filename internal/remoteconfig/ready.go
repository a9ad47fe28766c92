package remoteconfig

import (
	"context"
	"sync"

	"github.com/zaqqye/room_console/internal/store"
)

// BannerText is shown at the top of every page when the backend never became ready.
const BannerText = "Error: Could not load application configuration."

// Ready is the shared readiness signal. It settles exactly once, either with a
// usable store or with the error that stopped initialization.
type Ready struct {
	done  chan struct{}
	once  sync.Once
	store store.RoomStore
	err   error
}

func NewReady() *Ready {
	return &Ready{done: make(chan struct{})}
}

// Resolved returns an already settled signal; handy for tests and memory mode.
func Resolved(s store.RoomStore) *Ready {
	r := NewReady()
	r.settle(s, nil)
	return r
}

// Rejected returns a signal already settled with err.
func Rejected(err error) *Ready {
	r := NewReady()
	r.settle(nil, err)
	return r
}

func (r *Ready) settle(s store.RoomStore, err error) bool {
	settled := false
	r.once.Do(func() {
		r.store, r.err = s, err
		close(r.done)
		settled = true
	})
	return settled
}

// Wait blocks until the signal settles or ctx ends.
func (r *Ready) Wait(ctx context.Context) (store.RoomStore, error) {
	select {
	case <-r.done:
		return r.store, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Ready) Done() <-chan struct{} { return r.done }

func (r *Ready) Settled() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// Banner is empty unless the signal was rejected.
func (r *Ready) Banner() string {
	if !r.Settled() || r.err == nil {
		return ""
	}
	return BannerText
}
