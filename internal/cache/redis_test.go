package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/room-booking/internal/application"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client, *RoomCache) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return mr, client, NewRoomCache(client, "", time.Minute, logger)
}

func sampleRooms() []application.Room {
	created := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	return []application.Room{
		{ID: 1, Name: "회의실 A", Location: "3층", Capacity: 6, CreatedAt: created},
		{ID: 2, Name: "회의실 B", Capacity: 10, CreatedAt: created},
	}
}

func TestRoomCache_StoreAndGet(t *testing.T) {
	mr, _, cache := setupTestRedis(t)
	ctx := context.Background()

	_, ok := cache.Get(ctx)
	assert.False(t, ok)

	cache.Store(ctx, sampleRooms())
	assert.True(t, mr.Exists(DefaultKey))
	assert.Equal(t, time.Minute, mr.TTL(DefaultKey))

	rooms, ok := cache.Get(ctx)
	require.True(t, ok)
	require.Len(t, rooms, 2)
	assert.Equal(t, "3층", rooms[0].Location)
	assert.False(t, rooms[1].HasLocation())
	assert.True(t, rooms[1].CreatedAt.Equal(sampleRooms()[1].CreatedAt))
}

func TestRoomCache_Expires(t *testing.T) {
	mr, _, cache := setupTestRedis(t)
	ctx := context.Background()

	cache.Store(ctx, sampleRooms())
	mr.FastForward(2 * time.Minute)

	_, ok := cache.Get(ctx)
	assert.False(t, ok)
}

func TestRoomCache_Invalidate(t *testing.T) {
	mr, _, cache := setupTestRedis(t)
	ctx := context.Background()

	cache.Store(ctx, sampleRooms())
	cache.Invalidate(ctx)

	assert.False(t, mr.Exists(DefaultKey))
	_, ok := cache.Get(ctx)
	assert.False(t, ok)
}

func TestRoomCache_CorruptEntryIsDropped(t *testing.T) {
	mr, _, cache := setupTestRedis(t)

	require.NoError(t, mr.Set(DefaultKey, "not json"))

	_, ok := cache.Get(context.Background())
	assert.False(t, ok)
	assert.False(t, mr.Exists(DefaultKey))
}

func TestRoomCache_UnavailableServerIsMiss(t *testing.T) {
	mr, _, cache := setupTestRedis(t)
	ctx := context.Background()

	cache.Store(ctx, sampleRooms())
	mr.Close()

	_, ok := cache.Get(ctx)
	assert.False(t, ok)
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(context.Background(), Options{Addr: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	_, err = NewClient(context.Background(), Options{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}

func TestRoomCache_ServesRoomService(t *testing.T) {
	_, _, cache := setupTestRedis(t)
	repo := &countingRoomRepo{rooms: sampleRooms()}
	service := application.NewRoomService(repo, cache)

	for i := 0; i < 3; i++ {
		rooms, err := service.ListRooms(context.Background())
		require.NoError(t, err)
		require.Len(t, rooms, 2)
	}
	assert.Equal(t, 1, repo.calls)
}

type countingRoomRepo struct {
	rooms []application.Room
	calls int
}

func (r *countingRoomRepo) ListRooms(context.Context) ([]application.Room, error) {
	r.calls++
	return r.rooms, nil
}

func (r *countingRoomRepo) GetRoom(_ context.Context, id int64) (application.Room, error) {
	for _, room := range r.rooms {
		if room.ID == id {
			return room, nil
		}
	}
	return application.Room{}, application.ErrNotFound
}
