// Package remoteconfig fetches backend connection parameters from the config
// endpoint and turns them into the shared readiness signal.
package remoteconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/zaqqye/room_console/internal/models"
	"github.com/zaqqye/room_console/internal/store"
)

const DefaultTimeout = 7000 * time.Millisecond

var (
	ErrFetchTimeout       = errors.New("fetch timeout")
	ErrHTTPStatus         = errors.New("unexpected http status")
	ErrInvalidContentType = errors.New("invalid content-type, expected application/json")
	ErrInvalidConfig      = errors.New("received invalid backend config from server")
)

// Connector opens the backend from fetched parameters.
type Connector func(ctx context.Context, cfg models.BackendConfig) (store.RoomStore, error)

type Loader struct {
	url     string
	timeout time.Duration
	client  *resty.Client
	connect Connector
	logger  *zap.Logger
	ready   *Ready

	mu    sync.Mutex
	store store.RoomStore
}

func NewLoader(url string, timeout time.Duration, connect Connector, logger *zap.Logger) *Loader {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	// resty.New installs a cookie jar, so credentials travel with the request.
	client := resty.New().SetHeader("Accept", "application/json")
	return &Loader{
		url:     url,
		timeout: timeout,
		client:  client,
		connect: connect,
		logger:  logger,
		ready:   NewReady(),
	}
}

func (l *Loader) Ready() *Ready { return l.ready }

// Fetch issues a single GET bounded by the loader timeout.
func (l *Loader) Fetch(ctx context.Context) (models.BackendConfig, error) {
	var cfg models.BackendConfig
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	resp, err := l.client.R().SetContext(ctx).Get(l.url)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return cfg, ErrFetchTimeout
		}
		return cfg, fmt.Errorf("fetch backend config: %w", err)
	}
	if !resp.IsSuccess() {
		return cfg, fmt.Errorf("%w: HTTP %s - %s", ErrHTTPStatus, resp.Status(), strings.TrimSpace(resp.String()))
	}
	if ct := resp.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		return cfg, fmt.Errorf("%w. Body: %s", ErrInvalidContentType, strings.TrimSpace(resp.String()))
	}
	if err := json.Unmarshal(resp.Body(), &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func Validate(cfg models.BackendConfig) error {
	if strings.TrimSpace(cfg.APIKey) == "" || strings.TrimSpace(cfg.ProjectID) == "" {
		return ErrInvalidConfig
	}
	return nil
}

// Load fetches, validates and connects once, then settles the readiness signal.
// Calling Load again after a successful connect reuses the existing store.
func (l *Loader) Load(ctx context.Context) (store.RoomStore, error) {
	s, err := l.load(ctx)
	if err != nil {
		l.logger.Error("backend init failed", zap.String("url", l.url), zap.Error(err))
	}
	l.ready.settle(s, err)
	return s, err
}

func (l *Loader) load(ctx context.Context) (store.RoomStore, error) {
	cfg, err := l.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.store != nil {
		l.logger.Info("backend already initialized", zap.String("project_id", cfg.ProjectID))
		return l.store, nil
	}
	if l.connect == nil {
		return nil, errors.New("backend connector not configured")
	}
	s, err := l.connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect backend: %w", err)
	}
	l.store = s
	l.logger.Info("backend initialized", zap.String("project_id", cfg.ProjectID))
	return s, nil
}
