package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zaqqye/room_console/internal/models"
)

// MemoryRoomStore keeps rooms in process. It backs STORE_DRIVER=memory and tests.
type MemoryRoomStore struct {
	mu    sync.RWMutex
	rooms map[string]models.Room
	last  time.Time
	now   func() time.Time
	feed  *LocalFeed
}

func NewMemoryRoomStore() *MemoryRoomStore {
	return &MemoryRoomStore{
		rooms: make(map[string]models.Room),
		now:   time.Now,
		feed:  NewLocalFeed(),
	}
}

func (s *MemoryRoomStore) List(ctx context.Context) ([]models.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, r)
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *MemoryRoomStore) Subscribe(ctx context.Context, onData func(Snapshot), onError func(error)) (Subscription, error) {
	return watch(ctx, s.feed, s.List, onData, onError), nil
}

func (s *MemoryRoomStore) Add(ctx context.Context, in models.NewRoom) (models.Room, error) {
	if err := ctx.Err(); err != nil {
		return models.Room{}, err
	}
	s.mu.Lock()
	stamp := s.now().UTC()
	if !stamp.After(s.last) {
		stamp = s.last.Add(time.Nanosecond)
	}
	s.last = stamp
	room := models.Room{
		ID:        uuid.NewString(),
		Room:      in.Room,
		Admin:     in.Admin,
		Expire:    in.Expire,
		CameraID:  in.CameraID,
		CreatedAt: stamp,
	}
	s.rooms[room.ID] = room
	s.mu.Unlock()

	_ = s.feed.Publish(ctx)
	return room, nil
}

func (s *MemoryRoomStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	if _, ok := s.rooms[id]; !ok {
		s.mu.Unlock()
		return ErrRoomNotFound
	}
	delete(s.rooms, id)
	s.mu.Unlock()

	_ = s.feed.Publish(ctx)
	return nil
}

// Subscribers reports attached listeners.
func (s *MemoryRoomStore) Subscribers() int {
	return s.feed.Listeners()
}

func (s *MemoryRoomStore) Close() error {
	return s.feed.Close()
}

func sortNewestFirst(rooms []models.Room) {
	sort.Slice(rooms, func(i, j int) bool {
		if !rooms[i].CreatedAt.Equal(rooms[j].CreatedAt) {
			return rooms[i].CreatedAt.After(rooms[j].CreatedAt)
		}
		return rooms[i].ID > rooms[j].ID
	})
}
