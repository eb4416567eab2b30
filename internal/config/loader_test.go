package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var bookingVariables = []string{
	"BOOKING_HTTP_PORT",
	"BOOKING_STORE_DRIVER",
	"BOOKING_DATABASE_DSN",
	"BOOKING_TIMEZONE",
	"BOOKING_PASSCODE_SCHEME",
	"BOOKING_REDIS_ADDR",
	"BOOKING_REDIS_PASSWORD",
	"BOOKING_REDIS_DB",
	"BOOKING_ROOM_CACHE_TTL",
	"BOOKING_ALLOWED_ORIGINS",
	"BOOKING_ROOM_SEED_FILE",
	"BOOKING_LOG_LEVEL",
}

// clearEnvironment blanks every variable the loader reads; t.Setenv restores
// the previous values after the test.
func clearEnvironment(t *testing.T) {
	t.Helper()
	for _, key := range bookingVariables {
		t.Setenv(key, "")
	}
}

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearEnvironment(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.StoreDriver != DriverSQLite {
			t.Fatalf("expected sqlite driver, got %q", cfg.StoreDriver)
		}
		if cfg.DatabaseDSN != defaultSQLiteDSN {
			t.Fatalf("unexpected default DSN: %q", cfg.DatabaseDSN)
		}
		if cfg.Location == nil || cfg.Location.String() != "Asia/Seoul" {
			t.Fatalf("expected Asia/Seoul, got %v", cfg.Location)
		}
		if cfg.PasscodeScheme != "plain" {
			t.Fatalf("expected plain passcodes, got %q", cfg.PasscodeScheme)
		}
		if cfg.Redis.Enabled() {
			t.Fatal("redis must be disabled by default")
		}
		if cfg.RoomCacheTTL != 5*time.Minute {
			t.Fatalf("expected 5m room cache TTL, got %s", cfg.RoomCacheTTL)
		}
		if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
			t.Fatalf("unexpected origins %v", cfg.AllowedOrigins)
		}
		if cfg.LogLevel != slog.LevelInfo {
			t.Fatalf("expected info level, got %s", cfg.LogLevel)
		}
	})

	t.Run("reads explicit values", func(t *testing.T) {
		clearEnvironment(t)
		t.Setenv("BOOKING_HTTP_PORT", "9090")
		t.Setenv("BOOKING_STORE_DRIVER", "Postgres")
		t.Setenv("BOOKING_DATABASE_DSN", "postgres://booking@db/booking?sslmode=disable")
		t.Setenv("BOOKING_TIMEZONE", "UTC")
		t.Setenv("BOOKING_PASSCODE_SCHEME", "argon2id")
		t.Setenv("BOOKING_REDIS_ADDR", "redis:6379")
		t.Setenv("BOOKING_REDIS_DB", "2")
		t.Setenv("BOOKING_ROOM_CACHE_TTL", "90s")
		t.Setenv("BOOKING_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
		t.Setenv("BOOKING_ROOM_SEED_FILE", "rooms.yaml")
		t.Setenv("BOOKING_LOG_LEVEL", "debug")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.HTTPPort != 9090 || cfg.StoreDriver != DriverPostgres || cfg.PasscodeScheme != "argon2id" {
			t.Fatalf("unexpected config %+v", cfg)
		}
		if cfg.Location != time.UTC {
			t.Fatalf("expected UTC, got %v", cfg.Location)
		}
		if !cfg.Redis.Enabled() || cfg.Redis.DB != 2 {
			t.Fatalf("unexpected redis config %+v", cfg.Redis)
		}
		if cfg.RoomCacheTTL != 90*time.Second {
			t.Fatalf("unexpected TTL %s", cfg.RoomCacheTTL)
		}
		if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example.com" {
			t.Fatalf("unexpected origins %v", cfg.AllowedOrigins)
		}
		if cfg.RoomSeedFile != "rooms.yaml" || cfg.LogLevel != slog.LevelDebug {
			t.Fatalf("unexpected config %+v", cfg)
		}
	})

	t.Run("errors when postgres has no DSN", func(t *testing.T) {
		clearEnvironment(t)
		t.Setenv("BOOKING_STORE_DRIVER", "postgres")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error when required values are missing")
		}
		expected := "필수 환경 변수가 설정되지 않았습니다: BOOKING_DATABASE_DSN"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("reports every invalid value", func(t *testing.T) {
		clearEnvironment(t)
		t.Setenv("BOOKING_HTTP_PORT", "-1")
		t.Setenv("BOOKING_STORE_DRIVER", "mysql")
		t.Setenv("BOOKING_TIMEZONE", "Mars/Olympus")
		t.Setenv("BOOKING_PASSCODE_SCHEME", "rot13")
		t.Setenv("BOOKING_REDIS_DB", "x")
		t.Setenv("BOOKING_ROOM_CACHE_TTL", "0s")
		t.Setenv("BOOKING_ALLOWED_ORIGINS", " , ")
		t.Setenv("BOOKING_LOG_LEVEL", "loud")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for invalid values")
		}
		for _, key := range []string{
			"BOOKING_HTTP_PORT",
			"BOOKING_STORE_DRIVER",
			"BOOKING_TIMEZONE",
			"BOOKING_PASSCODE_SCHEME",
			"BOOKING_REDIS_DB",
			"BOOKING_ROOM_CACHE_TTL",
			"BOOKING_ALLOWED_ORIGINS",
			"BOOKING_LOG_LEVEL",
		} {
			if !strings.Contains(err.Error(), key) {
				t.Errorf("expected %s in %q", key, err.Error())
			}
		}
	})
}

func TestLoadDotEnv(t *testing.T) {
	clearEnvironment(t)

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("BOOKING_HTTP_PORT=7070\nBOOKING_TIMEZONE=UTC\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	// Already-set values win over the file.
	t.Setenv("BOOKING_TIMEZONE", "Asia/Tokyo")
	// godotenv only skips variables that are present, so drop the blank one.
	if err := os.Unsetenv("BOOKING_HTTP_PORT"); err != nil {
		t.Fatalf("unset: %v", err)
	}

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv returned error: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.HTTPPort != 7070 {
		t.Fatalf("expected port from .env, got %d", cfg.HTTPPort)
	}
	if cfg.Location.String() != "Asia/Tokyo" {
		t.Fatalf("expected environment to win, got %s", cfg.Location)
	}
}
