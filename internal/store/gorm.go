package store

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/zaqqye/room_console/internal/models"
)

// GormRoomStore keeps rooms in Postgres; writes are announced on the feed.
type GormRoomStore struct {
	DB     *gorm.DB
	Feed   Feed
	Logger *zap.Logger
}

func NewGormRoomStore(db *gorm.DB, feed Feed, logger *zap.Logger) *GormRoomStore {
	if feed == nil {
		feed = NewLocalFeed()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GormRoomStore{DB: db, Feed: feed, Logger: logger}
}

func (s *GormRoomStore) List(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	err := s.DB.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

func (s *GormRoomStore) Subscribe(ctx context.Context, onData func(Snapshot), onError func(error)) (Subscription, error) {
	return watch(ctx, s.Feed, s.List, onData, onError), nil
}

func (s *GormRoomStore) Add(ctx context.Context, in models.NewRoom) (models.Room, error) {
	room := models.Room{
		Room:     in.Room,
		Admin:    in.Admin,
		Expire:   in.Expire,
		CameraID: in.CameraID,
	}
	if err := s.DB.WithContext(ctx).Create(&room).Error; err != nil {
		return models.Room{}, err
	}
	s.publish(ctx)
	return room, nil
}

func (s *GormRoomStore) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrRoomNotFound
	}
	res := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Room{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRoomNotFound
	}
	s.publish(ctx)
	return nil
}

func (s *GormRoomStore) publish(ctx context.Context) {
	if err := s.Feed.Publish(ctx); err != nil {
		s.Logger.Warn("room change notify failed", zap.Error(err))
	}
}

func (s *GormRoomStore) Close() error {
	err := s.Feed.Close()
	if sqlDB, dbErr := s.DB.DB(); dbErr == nil {
		_ = sqlDB.Close()
	}
	return err
}
