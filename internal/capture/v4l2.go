package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"
)

// V4L2 discovers Linux capture nodes through sysfs and streams them as MJPEG
// through an ffmpeg child process.
type V4L2 struct {
	Sysfs     string
	DevDir    string
	FFmpegBin string
	Logger    *zap.Logger
}

func NewV4L2(sysfs, ffmpegBin string, logger *zap.Logger) *V4L2 {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &V4L2{Sysfs: sysfs, DevDir: "/dev", FFmpegBin: ffmpegBin, Logger: logger}
}

func (v *V4L2) Enumerate(ctx context.Context) ([]DeviceInfo, error) {
	entries, err := os.ReadDir(v.Sysfs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrUnsupported
		}
		return nil, fmt.Errorf("enumerate devices: %w", err)
	}
	out := make([]DeviceInfo, 0, len(entries))
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "video") {
			continue
		}
		dir := filepath.Join(v.Sysfs, e.Name())
		kind := KindVideoInput
		// index > 0 marks metadata nodes of the same camera
		if idx := readTrimmed(filepath.Join(dir, "index")); idx != "" && idx != "0" {
			kind = KindMetadata
		}
		out = append(out, DeviceInfo{
			ID:    filepath.Join(v.DevDir, e.Name()),
			Label: readTrimmed(filepath.Join(dir, "name")),
			Kind:  kind,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func readTrimmed(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func (v *V4L2) Open(ctx context.Context, c Constraints) (Stream, error) {
	path := c.DeviceID
	if path == "" {
		devices, err := v.Enumerate(ctx)
		if err != nil {
			return nil, err
		}
		for _, d := range devices {
			if d.Kind == KindVideoInput {
				path = d.ID
				break
			}
		}
		if path == "" {
			return nil, ErrDeviceNotFound
		}
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(v.DevDir, path)
	}

	if err := probeDevice(path); err != nil {
		return nil, err
	}
	bin, err := exec.LookPath(v.FFmpegBin)
	if err != nil {
		return nil, fmt.Errorf("%w: ffmpeg not available: %v", ErrUnsupported, err)
	}

	pr, pw := io.Pipe()
	cmd := ffmpeg.Input(path, ffmpeg.KwArgs{"f": "v4l2"}).
		Output("pipe:", ffmpeg.KwArgs{"f": "mjpeg", "q:v": 5}).
		WithOutput(pw).
		Compile()
	cmd.Path = bin
	if err := cmd.Start(); err != nil {
		pw.Close()
		return nil, fmt.Errorf("start capture: %w", err)
	}

	s := &processStream{
		device: path,
		cmd:    cmd,
		out:    pr,
		frames: NewBroadcaster(),
		done:   make(chan struct{}),
	}
	go s.pump(v.Logger)
	go func() {
		err := cmd.Wait()
		pw.CloseWithError(io.EOF)
		s.markDone()
		if err != nil {
			v.Logger.Debug("capture process exited", zap.String("device", path), zap.Error(err))
		}
	}()
	v.Logger.Info("capture started", zap.String("device", path))
	return s, nil
}

// probeDevice maps open(2) failures onto the capture error categories.
func probeDevice(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return ErrDeviceNotFound
		case errors.Is(err, fs.ErrPermission):
			return ErrPermissionDenied
		default:
			return fmt.Errorf("open %s: %w", path, err)
		}
	}
	return f.Close()
}

type processStream struct {
	device string
	cmd    *exec.Cmd
	out    *io.PipeReader
	frames *Broadcaster

	once    sync.Once
	done    chan struct{}
	stopped atomic.Bool
}

func (s *processStream) DeviceID() string { return s.device }

func (s *processStream) Tracks() []Track { return []Track{(*processTrack)(s)} }

func (s *processStream) Subscribe() (<-chan []byte, func()) { return s.frames.Subscribe() }

// pump publishes frames until the output ends or a frame cannot be parsed,
// then stops the track.
func (s *processStream) pump(logger *zap.Logger) {
	err := ReadFrames(s.out, s.frames.Publish)
	if err != nil && !errors.Is(err, io.ErrClosedPipe) {
		logger.Warn("capture frames ended", zap.String("device", s.device), zap.Error(err))
	}
	(*processTrack)(s).Stop()
}

func (s *processStream) markDone() {
	s.once.Do(func() { close(s.done) })
}

type processTrack processStream

func (t *processTrack) Stop() {
	s := (*processStream)(t)
	if s.stopped.Swap(true) {
		return
	}
	select {
	case <-s.done:
	default:
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
	}
	s.out.Close()
	s.frames.Close()
}

func (t *processTrack) Live() bool {
	if t.stopped.Load() {
		return false
	}
	select {
	case <-t.done:
		return false
	default:
		return true
	}
}
