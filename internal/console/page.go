package console

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zaqqye/room_console/internal/capture"
	"github.com/zaqqye/room_console/internal/metrics"
	"github.com/zaqqye/room_console/internal/remoteconfig"
	"github.com/zaqqye/room_console/internal/store"
)

const inboxSize = 64

// PageDeps are shared by every page instance of a process.
type PageDeps struct {
	Ready     *remoteconfig.Ready
	Devices   capture.Devices
	Clock     Clock
	Metrics   *metrics.Console
	Logger    *zap.Logger
	BaseURL   string
	QRSeconds int
}

// Page is one open console page. All component state is touched only from
// the goroutine running Run; everything else reaches it through Post.
type Page struct {
	ID   string
	Mode PageMode

	deps   PageDeps
	sink   Sink
	logger *zap.Logger
	inbox  chan func()
	done   chan struct{}
	once   sync.Once
	ctx    context.Context

	list    *RoomListSync
	preview *ModalPreview
	form    *CreateForm
}

func NewPage(id string, mode PageMode, deps PageDeps, sink Sink) *Page {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Page{
		ID:     id,
		Mode:   mode,
		deps:   deps,
		sink:   sink,
		logger: logger.With(zap.String("page_id", id), zap.String("mode", mode.String())),
		inbox:  make(chan func(), inboxSize),
		done:   make(chan struct{}),
		ctx:    context.Background(),
	}
}

// StreamURL is where the browser pulls the MJPEG feed for key.
func (p *Page) StreamURL(key string) string {
	return fmt.Sprintf("/pages/%s/streams/%s", p.ID, key)
}

// Post queues fn for the page loop. It reports false once the page is gone.
func (p *Page) Post(fn func()) bool {
	select {
	case <-p.done:
		return false
	default:
	}
	select {
	case p.inbox <- fn:
		return true
	case <-p.done:
		return false
	}
}

func (p *Page) exec(fn func()) { p.Post(fn) }

func (p *Page) Done() <-chan struct{} { return p.done }

// Run waits for the backend, starts the mode's component and serves the
// loop until ctx ends. Teardown always runs on the way out.
func (p *Page) Run(ctx context.Context) {
	p.ctx = ctx
	p.deps.Metrics.PageOpened()
	defer p.teardown()

	st, err := p.deps.Ready.Wait(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		p.logger.Warn("backend not ready", zap.Error(err))
		p.sink.Send(Message{Type: MsgBanner, Text: remoteconfig.BannerText})
	} else {
		p.safe(func() { p.init(ctx, st) })
	}

	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-p.inbox:
			p.safe(fn)
		}
	}
}

func (p *Page) init(ctx context.Context, st store.RoomStore) {
	switch p.Mode {
	case ModeRooms:
		cams := NewCardCameras(p.deps.Devices, p.deps.Metrics)
		p.list = NewRoomListSync(p.sink, p.exec, cams, p.StreamURL, p.deps.Metrics, p.logger.Named("rooms"))
		p.preview = NewModalPreview(p.deps.Devices, p.deps.Metrics)
		p.list.Start(ctx, st)
	case ModeCreate:
		cd := NewCountdown(p.deps.Clock, p.exec, p.deps.QRSeconds, p.deps.Metrics)
		p.form = NewCreateForm(p.sink, st, p.deps.Devices, cd, RoomQR(p.deps.BaseURL), p.logger.Named("create"))
		p.form.LoadDevices(ctx)
	}
}

func (p *Page) safe(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("page handler panicked", zap.Any("panic", r))
		}
	}()
	fn()
}

func (p *Page) teardown() {
	p.once.Do(func() {
		close(p.done)
		p.safe(func() {
			if p.list != nil {
				p.list.Teardown()
			}
			if p.preview != nil {
				p.preview.Close()
			}
			if p.form != nil {
				p.form.Teardown()
			}
		})
		p.deps.Metrics.PageClosed()
		p.logger.Debug("page closed")
	})
}

// Dispatch queues a browser command for the loop.
func (p *Page) Dispatch(cmd Command) bool {
	return p.Post(func() { p.handle(cmd) })
}

func (p *Page) notReady() {
	p.sink.Send(alert(AlertError, "Error", "Could not connect to the database."))
}

func (p *Page) handle(cmd Command) {
	ctx := p.ctx
	switch cmd.Type {
	case CmdToggleCamera, CmdDeleteRoom, CmdOpenPreview, CmdSelectDevice, CmdClosePreview:
		if p.list == nil {
			p.notReady()
			return
		}
	case CmdSubmitRoom, CmdCloseQR, CmdListDevices:
		if p.form == nil {
			p.notReady()
			return
		}
	default:
		p.logger.Debug("unknown command", zap.String("type", cmd.Type))
		return
	}

	switch cmd.Type {
	case CmdToggleCamera:
		p.list.ToggleCamera(ctx, cmd.RoomID.String(), cmd.CameraID.String())
	case CmdDeleteRoom:
		_ = p.list.DeleteRoom(ctx, cmd.RoomID.String(), cmd.Name)
	case CmdOpenPreview:
		res, err := p.preview.Open(ctx, cmd.CameraRef)
		if err != nil {
			p.sink.Send(alert(AlertError, "Error", UserMessage(err)))
			return
		}
		if res.ExternalURL != "" {
			p.sink.Send(Message{Type: MsgOpenURL, URL: res.ExternalURL})
			return
		}
		p.sink.Send(Message{Type: MsgModal, Visible: true, Devices: res.Devices})
	case CmdSelectDevice:
		if err := p.preview.Select(ctx, cmd.DeviceID.String()); err != nil {
			p.sink.Send(Message{Type: MsgCamera, Label: LabelOpenCamera})
			p.sink.Send(alert(AlertError, "Error", UserMessage(err)))
			return
		}
		p.sink.Send(Message{Type: MsgCamera, Active: true, Label: LabelCloseCamera, StreamURL: p.StreamURL(ModalStreamKey)})
	case CmdClosePreview:
		p.preview.Close()
		p.sink.Send(Message{Type: MsgModal})
	case CmdSubmitRoom:
		_, _ = p.form.Submit(ctx, RoomInput{
			Room:     cmd.Room,
			Admin:    cmd.Admin,
			Expire:   cmd.Expire.String(),
			CameraID: cmd.CameraID.String(),
		})
	case CmdCloseQR:
		p.form.CloseQR()
	case CmdListDevices:
		p.form.LoadDevices(ctx)
	}
}

// Stream looks up the live stream bound to key through the page loop.
func (p *Page) Stream(ctx context.Context, key string) (capture.FrameSource, bool) {
	found := make(chan capture.FrameSource, 1)
	ok := p.Post(func() {
		var s capture.Stream
		switch {
		case key == ModalStreamKey && p.preview != nil:
			s = p.preview.Stream()
		case strings.HasPrefix(key, "card-") && p.list != nil:
			s = p.list.Cameras().Stream(strings.TrimPrefix(key, "card-"))
		}
		src, _ := s.(capture.FrameSource)
		found <- src
	})
	if !ok {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	select {
	case src := <-found:
		return src, src != nil
	case <-ctx.Done():
		return nil, false
	case <-p.done:
		return nil, false
	}
}
