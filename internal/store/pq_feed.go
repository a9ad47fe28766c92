package store

import (
	"context"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const pqPingInterval = 90 * time.Second

// PQFeed relays Postgres LISTEN/NOTIFY so every console process sees writes
// made by the others.
type PQFeed struct {
	db       *gorm.DB
	channel  string
	notify   <-chan *pq.Notification
	ping     func() error
	unlisten func() error
	local    *LocalFeed
	logger   *zap.Logger
	done     chan struct{}
}

func NewPQFeed(dsn, channel string, db *gorm.DB, logger *zap.Logger) (*PQFeed, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	listener := pq.NewListener(dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Warn("pq listener event", zap.Int("event", int(ev)), zap.Error(err))
		}
	})
	if err := listener.Listen(channel); err != nil {
		_ = listener.Close()
		return nil, err
	}
	return startPQFeed(db, channel, listener.Notify, listener.Ping, listener.Close, logger), nil
}

func startPQFeed(db *gorm.DB, channel string, notify <-chan *pq.Notification, ping, unlisten func() error, logger *zap.Logger) *PQFeed {
	f := &PQFeed{
		db:       db,
		channel:  channel,
		notify:   notify,
		ping:     ping,
		unlisten: unlisten,
		local:    NewLocalFeed(),
		logger:   logger,
		done:     make(chan struct{}),
	}
	go f.pump()
	return f
}

func (f *PQFeed) pump() {
	ticker := time.NewTicker(pqPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-f.done:
			return
		case _, ok := <-f.notify:
			if !ok {
				return
			}
			// A nil notification follows a reconnect; reload anyway.
			_ = f.local.Publish(context.Background())
		case <-ticker.C:
			go func() {
				if err := f.ping(); err != nil {
					f.logger.Warn("pq listener ping failed", zap.Error(err))
				}
			}()
		}
	}
}

func (f *PQFeed) Publish(ctx context.Context) error {
	return f.db.WithContext(ctx).Exec("SELECT pg_notify(?, '')", f.channel).Error
}

func (f *PQFeed) Listen() (<-chan struct{}, func()) {
	return f.local.Listen()
}

func (f *PQFeed) Close() error {
	select {
	case <-f.done:
		return nil
	default:
		close(f.done)
	}
	err := f.unlisten()
	_ = f.local.Close()
	return err
}
