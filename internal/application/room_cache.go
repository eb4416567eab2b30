package application

import (
	"context"
	"sync"
	"time"
)

// DefaultRoomCacheTTL is how long a room list stays fresh.
const DefaultRoomCacheTTL = 5 * time.Minute

// RoomCache holds the room catalog between reads.
type RoomCache interface {
	Get(ctx context.Context) ([]Room, bool)
	Store(ctx context.Context, rooms []Room)
	Invalidate(ctx context.Context)
}

// MemoryRoomCache is a process-local RoomCache.
type MemoryRoomCache struct {
	mu        sync.RWMutex
	now       func() time.Time
	ttl       time.Duration
	rooms     []Room
	loaded    bool
	expiresAt time.Time
}

// NewMemoryRoomCache returns a cache that keeps the room list for ttl.
func NewMemoryRoomCache(ttl time.Duration, now func() time.Time) *MemoryRoomCache {
	if ttl <= 0 {
		ttl = DefaultRoomCacheTTL
	}
	if now == nil {
		now = time.Now
	}
	return &MemoryRoomCache{now: now, ttl: ttl}
}

func (c *MemoryRoomCache) Get(context.Context) ([]Room, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	rooms, loaded, expiresAt := c.rooms, c.loaded, c.expiresAt
	c.mu.RUnlock()
	if !loaded {
		return nil, false
	}
	if c.now().After(expiresAt) {
		c.mu.Lock()
		c.rooms, c.loaded = nil, false
		c.mu.Unlock()
		return nil, false
	}
	return cloneRooms(rooms), true
}

func (c *MemoryRoomCache) Store(_ context.Context, rooms []Room) {
	if c == nil {
		return
	}
	cloned := cloneRooms(rooms)
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	c.rooms, c.loaded, c.expiresAt = cloned, true, expiry
	c.mu.Unlock()
}

func (c *MemoryRoomCache) Invalidate(context.Context) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.rooms, c.loaded = nil, false
	c.mu.Unlock()
}

func cloneRooms(rooms []Room) []Room {
	out := make([]Room, len(rooms))
	copy(out, rooms)
	return out
}
