package console

import (
	"fmt"
	"time"

	"github.com/zaqqye/room_console/internal/metrics"
)

type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type Clock interface {
	NewTicker(d time.Duration) Ticker
}

type realClock struct{}

type realTicker struct{ t *time.Ticker }

func (realClock) NewTicker(d time.Duration) Ticker { return realTicker{time.NewTicker(d)} }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// SystemClock is the wall clock.
var SystemClock Clock = realClock{}

func countdownLabel(left int) string {
	return fmt.Sprintf("QR disappears in %d seconds", left)
}

// Countdown runs at most one once-per-second timer. Ticks are posted to the
// owning loop through exec; state is only touched from that loop.
type Countdown struct {
	clock   Clock
	exec    Executor
	metrics *metrics.Console
	seconds int

	gen    uint64
	left   int
	ticker Ticker
	stop   chan struct{}
	onTick func(left int, label string)
	onDone func()
}

func NewCountdown(clock Clock, exec Executor, seconds int, m *metrics.Console) *Countdown {
	if clock == nil {
		clock = SystemClock
	}
	if exec == nil {
		exec = direct
	}
	if seconds <= 0 {
		seconds = 60
	}
	return &Countdown{clock: clock, exec: exec, seconds: seconds, metrics: m}
}

// Start clears any running timer and begins a new one. onTick fires right
// away with the full count, then once per second; onDone fires at zero.
func (c *Countdown) Start(onTick func(left int, label string), onDone func()) {
	c.Clear()
	c.gen++
	gen := c.gen
	c.left = c.seconds
	c.onTick, c.onDone = onTick, onDone
	c.ticker = c.clock.NewTicker(time.Second)
	c.stop = make(chan struct{})
	c.metrics.CountdownStarted()

	if onTick != nil {
		onTick(c.left, countdownLabel(c.left))
	}

	ticks, stop := c.ticker.C(), c.stop
	go func() {
		for {
			select {
			case <-stop:
				return
			case <-ticks:
				c.exec(func() { c.tick(gen) })
			}
		}
	}()
}

func (c *Countdown) tick(gen uint64) {
	if gen != c.gen || c.ticker == nil {
		return
	}
	c.left--
	if c.left <= 0 {
		done := c.onDone
		c.Clear()
		if done != nil {
			done()
		}
		return
	}
	if c.onTick != nil {
		c.onTick(c.left, countdownLabel(c.left))
	}
}

// Clear stops the running timer, if any. It does not fire onDone.
func (c *Countdown) Clear() {
	if c.ticker == nil {
		return
	}
	c.ticker.Stop()
	close(c.stop)
	c.ticker, c.stop = nil, nil
	c.onTick, c.onDone = nil, nil
	c.left = 0
	c.metrics.CountdownCleared()
}

func (c *Countdown) Running() bool { return c.ticker != nil }

func (c *Countdown) Left() int { return c.left }
