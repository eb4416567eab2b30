// Package cache provides a Redis-backed room catalog cache shared across
// booking processes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/example/room-booking/internal/application"
)

// DefaultKey is the Redis key holding the encoded room list.
const DefaultKey = "booking:rooms"

// Options configures a Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewClient creates a Redis client and verifies it answers PING.
func NewClient(ctx context.Context, opts Options) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

type cachedRoom struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location,omitempty"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
}

// RoomCache implements application.RoomCache on Redis. Failures degrade to
// cache misses so the repository stays the source of truth.
type RoomCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger *slog.Logger
}

var _ application.RoomCache = (*RoomCache)(nil)

// NewRoomCache returns a cache that stores the room list under key for ttl.
func NewRoomCache(client *redis.Client, key string, ttl time.Duration, logger *slog.Logger) *RoomCache {
	if key == "" {
		key = DefaultKey
	}
	if ttl <= 0 {
		ttl = application.DefaultRoomCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RoomCache{client: client, key: key, ttl: ttl, logger: logger.With("component", "room_cache")}
}

func (c *RoomCache) Get(ctx context.Context) ([]application.Room, bool) {
	payload, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "room cache read failed", "error", err)
		}
		return nil, false
	}

	var cached []cachedRoom
	if err := json.Unmarshal(payload, &cached); err != nil {
		c.logger.WarnContext(ctx, "room cache entry is corrupt", "error", err)
		c.Invalidate(ctx)
		return nil, false
	}

	rooms := make([]application.Room, len(cached))
	for i, room := range cached {
		rooms[i] = application.Room{
			ID:        room.ID,
			Name:      room.Name,
			Location:  room.Location,
			Capacity:  room.Capacity,
			CreatedAt: room.CreatedAt,
		}
	}
	return rooms, true
}

func (c *RoomCache) Store(ctx context.Context, rooms []application.Room) {
	cached := make([]cachedRoom, len(rooms))
	for i, room := range rooms {
		cached[i] = cachedRoom{
			ID:        room.ID,
			Name:      room.Name,
			Location:  room.Location,
			Capacity:  room.Capacity,
			CreatedAt: room.CreatedAt.UTC(),
		}
	}

	payload, err := json.Marshal(cached)
	if err != nil {
		c.logger.WarnContext(ctx, "room cache encode failed", "error", err)
		return
	}
	if err := c.client.Set(ctx, c.key, payload, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "room cache write failed", "error", err)
	}
}

func (c *RoomCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		c.logger.WarnContext(ctx, "room cache invalidate failed", "error", err)
	}
}
