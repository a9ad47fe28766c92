package store

import (
	"context"
	"sync"
)

// Feed carries "rooms changed" notifications between writers and subscribers.
type Feed interface {
	Publish(ctx context.Context) error
	// Listen returns a notification channel and a func that detaches it.
	Listen() (<-chan struct{}, func())
	Close() error
}

// LocalFeed fans notifications out in-process. Pending notifications for a
// listener collapse into one; every delivery is followed by a full reload.
type LocalFeed struct {
	mu        sync.Mutex
	listeners map[chan struct{}]struct{}
	closed    bool
}

func NewLocalFeed() *LocalFeed {
	return &LocalFeed{listeners: make(map[chan struct{}]struct{})}
}

func (f *LocalFeed) Publish(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	for ch := range f.listeners {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}

func (f *LocalFeed) Listen() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	f.mu.Lock()
	if f.closed {
		close(ch)
		f.mu.Unlock()
		return ch, func() {}
	}
	f.listeners[ch] = struct{}{}
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if _, ok := f.listeners[ch]; ok {
				delete(f.listeners, ch)
				close(ch)
			}
		})
	}
}

func (f *LocalFeed) Listeners() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

func (f *LocalFeed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	for ch := range f.listeners {
		delete(f.listeners, ch)
		close(ch)
	}
	return nil
}
