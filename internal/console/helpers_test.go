package console

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/zaqqye/room_console/internal/capture"
	"github.com/zaqqye/room_console/internal/store"
)

// flakyStore lets a test break live subscriptions the way a lost backend
// connection would.
type flakyStore struct {
	*store.MemoryRoomStore

	mu   sync.Mutex
	subs []flakySub
}

type flakySub struct {
	sub     store.Subscription
	onError func(error)
}

func (s *flakyStore) Subscribe(ctx context.Context, onData func(store.Snapshot), onError func(error)) (store.Subscription, error) {
	sub, err := s.MemoryRoomStore.Subscribe(ctx, onData, onError)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.subs = append(s.subs, flakySub{sub: sub, onError: onError})
	s.mu.Unlock()
	return sub, nil
}

func (s *flakyStore) failSubscriptions(err error) {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()
	for _, fs := range subs {
		fs.sub.Cancel()
		fs.onError(err)
	}
}

type fakeTrack struct {
	mu   sync.Mutex
	live bool
}

func (t *fakeTrack) Stop() {
	t.mu.Lock()
	t.live = false
	t.mu.Unlock()
}

func (t *fakeTrack) Live() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live
}

type fakeStream struct {
	device string
	tracks []capture.Track
}

func (s *fakeStream) DeviceID() string        { return s.device }
func (s *fakeStream) Tracks() []capture.Track { return s.tracks }
func (s *fakeStream) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte)
	return ch, func() {}
}

type fakeDevices struct {
	mu       sync.Mutex
	list     []capture.DeviceInfo
	hidden   bool // labels empty until a grant was taken
	granted  bool
	openErr  error
	opened   []*fakeStream
	requests []capture.Constraints
	enumErr  error
}

func newFakeDevices(list ...capture.DeviceInfo) *fakeDevices {
	return &fakeDevices{list: list}
}

func (d *fakeDevices) Enumerate(ctx context.Context) ([]capture.DeviceInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.enumErr != nil {
		return nil, d.enumErr
	}
	out := make([]capture.DeviceInfo, len(d.list))
	copy(out, d.list)
	if d.hidden && !d.granted {
		for i := range out {
			out[i].Label = ""
		}
	}
	return out, nil
}

func (d *fakeDevices) Open(ctx context.Context, c capture.Constraints) (capture.Stream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requests = append(d.requests, c)
	if d.openErr != nil {
		return nil, d.openErr
	}
	id := c.DeviceID
	if id == "" {
		for _, dev := range d.list {
			if dev.Kind == capture.KindVideoInput {
				id = dev.ID
				break
			}
		}
	}
	found := false
	for _, dev := range d.list {
		if dev.ID == id {
			found = true
		}
	}
	if !found {
		return nil, capture.ErrDeviceNotFound
	}
	d.granted = true
	s := &fakeStream{device: id, tracks: []capture.Track{&fakeTrack{live: true}}}
	d.opened = append(d.opened, s)
	return s, nil
}

func (d *fakeDevices) liveStreams() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, s := range d.opened {
		n += capture.LiveTracks(s)
	}
	return n
}

func cam(id, label string) capture.DeviceInfo {
	return capture.DeviceInfo{ID: id, Label: label, Kind: capture.KindVideoInput}
}

type recordSink struct {
	mu   sync.Mutex
	msgs []Message
}

func (s *recordSink) Send(m Message) {
	s.mu.Lock()
	s.msgs = append(s.msgs, m)
	s.mu.Unlock()
}

func (s *recordSink) all() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.msgs))
	copy(out, s.msgs)
	return out
}

func (s *recordSink) ofType(typ string) []Message {
	var out []Message
	for _, m := range s.all() {
		if m.Type == typ {
			out = append(out, m)
		}
	}
	return out
}

func (s *recordSink) last(typ string) (Message, bool) {
	list := s.ofType(typ)
	if len(list) == 0 {
		return Message{}, false
	}
	return list[len(list)-1], true
}

// testLoop stands in for a page loop: callbacks queue up and the test runs
// them on its own goroutine.
type testLoop struct {
	ch chan func()
}

func newTestLoop() *testLoop { return &testLoop{ch: make(chan func(), 256)} }

func (l *testLoop) exec(fn func()) { l.ch <- fn }

func (l *testLoop) runNext(t *testing.T) {
	t.Helper()
	select {
	case fn := <-l.ch:
		fn()
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for loop work")
	}
}

// runUntil runs queued work until cond holds.
func (l *testLoop) runUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case fn := <-l.ch:
			fn()
		case <-deadline:
			t.Fatal("condition not reached")
		}
	}
}

func countCards(html string) int {
	return strings.Count(html, `class="room-card"`)
}

type fakeTicker struct {
	c       chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.c }

func (t *fakeTicker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

func (t *fakeTicker) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

type fakeClock struct {
	mu      sync.Mutex
	tickers []*fakeTicker
}

func (c *fakeClock) NewTicker(d time.Duration) Ticker {
	t := &fakeTicker{c: make(chan time.Time, 1)}
	c.mu.Lock()
	c.tickers = append(c.tickers, t)
	c.mu.Unlock()
	return t
}

func (c *fakeClock) latest() *fakeTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tickers[len(c.tickers)-1]
}

func (c *fakeClock) running() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.tickers {
		if !t.isStopped() {
			n++
		}
	}
	return n
}

const (
	waitFor = 2 * time.Second
	tick    = 10 * time.Millisecond
)

func errNotFound() error { return capture.ErrDeviceNotFound }
