package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

type roomRepoStub struct {
	list      []Room
	listErr   error
	listCalls int

	extra  map[int64]Room
	getErr error
}

func (r *roomRepoStub) ListRooms(ctx context.Context) ([]Room, error) {
	r.listCalls++
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]Room, len(r.list))
	copy(out, r.list)
	return out, nil
}

func (r *roomRepoStub) GetRoom(ctx context.Context, id int64) (Room, error) {
	if r.getErr != nil {
		return Room{}, r.getErr
	}
	if room, ok := r.extra[id]; ok {
		return room, nil
	}
	return Room{}, persistence.ErrNotFound
}

func TestRoomService_ListRooms(t *testing.T) {
	t.Run("orders rooms by id", func(t *testing.T) {
		repo := &roomRepoStub{list: []Room{{ID: 3, Name: "C"}, {ID: 1, Name: "A"}, {ID: 2, Name: "B"}}}
		svc := NewRoomService(repo, nil)

		rooms, err := svc.ListRooms(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i, want := range []int64{1, 2, 3} {
			if rooms[i].ID != want {
				t.Fatalf("position %d: expected id %d, got %d", i, want, rooms[i].ID)
			}
		}
	})

	t.Run("serves repeated reads from the cache", func(t *testing.T) {
		repo := &roomRepoStub{list: []Room{{ID: 1, Name: "A"}}}
		svc := NewRoomService(repo, NewMemoryRoomCache(time.Minute, nil))
		observer := &recordingObserver{}
		svc.SetObserver(observer)

		for i := 0; i < 3; i++ {
			if _, err := svc.ListRooms(context.Background()); err != nil {
				t.Fatalf("ListRooms: %v", err)
			}
		}
		if repo.listCalls != 1 {
			t.Fatalf("expected one repository call, got %d", repo.listCalls)
		}
		if observer.cacheMisses != 1 || observer.cacheHits != 2 {
			t.Fatalf("expected 1 miss and 2 hits, got %d and %d", observer.cacheMisses, observer.cacheHits)
		}
	})

	t.Run("does not cache failures", func(t *testing.T) {
		repo := &roomRepoStub{listErr: errors.New("db down")}
		cache := NewMemoryRoomCache(time.Minute, nil)
		svc := NewRoomService(repo, cache)

		if _, err := svc.ListRooms(context.Background()); err == nil {
			t.Fatalf("expected error")
		}
		if _, ok := cache.Get(context.Background()); ok {
			t.Fatalf("expected cache to stay empty after failure")
		}
	})
}

func TestRoomService_GetRoom(t *testing.T) {
	repo := &roomRepoStub{
		list:  []Room{{ID: 1, Name: "A"}},
		extra: map[int64]Room{5: {ID: 5, Name: "New"}},
	}
	cache := NewMemoryRoomCache(time.Minute, nil)
	svc := NewRoomService(repo, cache)
	ctx := context.Background()

	room, err := svc.GetRoom(ctx, 1)
	if err != nil || room.Name != "A" {
		t.Fatalf("expected cached room, got %+v (%v)", room, err)
	}

	room, err = svc.GetRoom(ctx, 5)
	if err != nil || room.Name != "New" {
		t.Fatalf("expected repository fallback, got %+v (%v)", room, err)
	}
	if _, ok := cache.Get(ctx); ok {
		t.Fatalf("expected stale catalog to be invalidated")
	}

	if _, err := svc.GetRoom(ctx, 9); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
