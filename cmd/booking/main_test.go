package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/room-booking/internal/cache"
	"github.com/example/room-booking/internal/config"
	"github.com/example/room-booking/internal/persistence"
)

const seedYAML = `
- name: 회의실 A
  location: 3층
  capacity: 6
- name: 회의실 B
  capacity: 10
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	seedPath := filepath.Join(dir, "rooms.yaml")
	require.NoError(t, os.WriteFile(seedPath, []byte(seedYAML), 0o600))

	return config.Config{
		HTTPPort:       8080,
		StoreDriver:    config.DriverSQLite,
		DatabaseDSN:    filepath.Join(dir, "booking.db"),
		Location:       time.FixedZone("KST", 9*60*60),
		PasscodeScheme: "plain",
		RoomCacheTTL:   time.Minute,
		AllowedOrigins: []string{"*"},
		RoomSeedFile:   seedPath,
		LogLevel:       slog.LevelInfo,
	}
}

func startApp(t *testing.T, cfg config.Config) *app {
	t.Helper()
	a, err := newApp(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func send(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestApp_ReservationRoundTrip(t *testing.T) {
	a := startApp(t, testConfig(t))

	rec := send(t, a.Handler, http.MethodGet, "/api/rooms", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var rooms struct {
		Rooms []struct {
			ID       int64   `json:"id"`
			Name     string  `json:"name"`
			Location *string `json:"location"`
		} `json:"rooms"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rooms))
	require.Len(t, rooms.Rooms, 2)
	assert.Equal(t, "회의실 A", rooms.Rooms[0].Name)
	require.NotNil(t, rooms.Rooms[0].Location)
	assert.Nil(t, rooms.Rooms[1].Location)

	body := `{"room_id":1,"user_name":"홍길동","user_phone":"010-1234-5678","password":"1234",
		"start_time":"2024-06-03T10:00:00+09:00","end_time":"2024-06-03T12:00:00+09:00"}`
	rec = send(t, a.Handler, http.MethodPost, "/api/reservations", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	overlapping := `{"room_id":1,"user_name":"김철수","user_phone":"01099998888","password":"0000",
		"start_time":"2024-06-03T11:00:00+09:00","end_time":"2024-06-03T13:00:00+09:00"}`
	rec = send(t, a.Handler, http.MethodPost, "/api/reservations", overlapping)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = send(t, a.Handler, http.MethodPost, "/api/reservations/lookup",
		`{"user_phone":"+82 10-1234-5678","password":"1234"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var lookup struct {
		Reservations []struct {
			UserPhone string `json:"user_phone"`
			Room      struct {
				Name string `json:"name"`
			} `json:"room"`
		} `json:"reservations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lookup))
	require.Len(t, lookup.Reservations, 1)
	assert.Equal(t, "01012345678", lookup.Reservations[0].UserPhone)
	assert.Equal(t, "회의실 A", lookup.Reservations[0].Room.Name)

	rec = send(t, a.Handler, http.MethodPost, "/api/reservations/lookup",
		`{"user_phone":"01012345678","password":"9999"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"reservations":[]`)

	rec = send(t, a.Handler, http.MethodGet, "/?date=2024-06-03", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "홍길동")

	rec = send(t, a.Handler, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = send(t, a.Handler, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `booking_reservations_created_total{status="created"} 1`)
	assert.Contains(t, rec.Body.String(), `booking_reservations_created_total{status="conflict"} 1`)
}

func TestApp_SeedsOnlyEmptyCatalog(t *testing.T) {
	cfg := testConfig(t)

	first := startApp(t, cfg)
	first.Close()

	second := startApp(t, cfg)
	rooms, err := second.Store.ListRooms(context.Background())
	require.NoError(t, err)
	assert.Len(t, rooms, 2)
}

func TestApp_RejectsBadSeedFile(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.RoomSeedFile, []byte("- name: \n  capacity: 0\n"), 0o600))

	_, err := newApp(context.Background(), cfg, discardLogger())
	assert.Error(t, err)
}

func TestApp_UnknownPasscodeScheme(t *testing.T) {
	cfg := testConfig(t)
	cfg.PasscodeScheme = "rot13"

	_, err := newApp(context.Background(), cfg, discardLogger())
	assert.Error(t, err)
}

func TestApp_RedisRoomCache(t *testing.T) {
	server := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Redis = config.RedisConfig{Addr: server.Addr()}

	a := startApp(t, cfg)

	rec := send(t, a.Handler, http.MethodGet, "/api/rooms", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, server.Exists(cache.DefaultKey))

	rec = send(t, a.Handler, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	server.Close()
	rec = send(t, a.Handler, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestOpenStore_UnsupportedDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.StoreDriver = "mysql"

	_, err := openStore(context.Background(), cfg, discardLogger())
	assert.ErrorContains(t, err, "unsupported store driver")
}

func TestAdapters_ConvertLocationAndPasscode(t *testing.T) {
	location := "3층"
	room := toApplicationRoom(persistence.MeetingRoom{ID: 1, Name: "회의실 A", Location: &location, Capacity: 6})
	assert.Equal(t, "3층", room.Location)

	bare := toApplicationRoom(persistence.MeetingRoom{ID: 2, Name: "회의실 B", Capacity: 10})
	assert.False(t, bare.HasLocation())

	stored := toPersistenceReservation(toApplicationReservation(persistence.Reservation{ID: 3, Password: "1234"}))
	assert.Equal(t, "1234", stored.Password)
}
