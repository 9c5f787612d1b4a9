package memory

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quizshow-game-service/internal/app"
	"quizshow-game-service/internal/domain"
)

// RoomRepository is an in-memory room catalog (useful for tests/demos).
type RoomRepository struct {
	mu    sync.RWMutex
	rooms map[string]domain.Room // by ID
}

func NewRoomRepository(rooms ...domain.Room) *RoomRepository {
	r := &RoomRepository{rooms: make(map[string]domain.Room, len(rooms))}
	for _, room := range rooms {
		r.rooms[room.ID] = room
	}
	return r
}

// Put inserts or replaces a room.
func (r *RoomRepository) Put(room domain.Room) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[room.ID] = room
}

func (r *RoomRepository) FindActiveByPIN(_ context.Context, pin string) (domain.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, room := range r.rooms {
		if room.PIN == pin && room.Active {
			return room, nil
		}
	}
	return domain.Room{}, domain.ErrRoomNotFound
}

func (r *RoomRepository) GetRoom(_ context.Context, id string) (domain.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[id]
	if !ok {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	return room, nil
}

// RoomCache caches room config snapshots with TTL to avoid hitting the
// backing repository on every answer; configs are immutable after room
// creation so staleness only delays room deactivation.
type RoomCache struct {
	backing app.RoomRepository
	ttl     time.Duration
	clock   func() time.Time
	sf      singleflight.Group

	mu    sync.RWMutex
	cache map[string]cachedRoom
}

type cachedRoom struct {
	room      domain.Room
	expiresAt time.Time
}

func NewRoomCache(backing app.RoomRepository, ttl time.Duration) *RoomCache {
	return &RoomCache{
		backing: backing,
		ttl:     ttl,
		clock:   time.Now,
		cache:   make(map[string]cachedRoom),
	}
}

// FindActiveByPIN always goes to the backing repository: PIN resolution
// happens once per session and must see fresh activation state.
func (c *RoomCache) FindActiveByPIN(ctx context.Context, pin string) (domain.Room, error) {
	room, err := c.backing.FindActiveByPIN(ctx, pin)
	if err != nil {
		return domain.Room{}, err
	}
	c.store(room)
	return room, nil
}

func (c *RoomCache) GetRoom(ctx context.Context, id string) (domain.Room, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[id]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.room, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(id, func() (interface{}, error) {
		c.mu.RLock()
		if entry, ok := c.cache[id]; ok && entry.expiresAt.After(c.clock()) {
			c.mu.RUnlock()
			return entry.room, nil
		}
		c.mu.RUnlock()

		room, err := c.backing.GetRoom(ctx, id)
		if err != nil {
			return domain.Room{}, err
		}
		c.store(room)
		return room, nil
	})
	if err != nil {
		return domain.Room{}, err
	}
	return result.(domain.Room), nil
}

func (c *RoomCache) store(room domain.Room) {
	c.mu.Lock()
	c.cache[room.ID] = cachedRoom{room: room, expiresAt: c.clock().Add(c.ttl)}
	c.mu.Unlock()
}
