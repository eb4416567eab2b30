package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Store drivers accepted in BOOKING_STORE_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const defaultSQLiteDSN = "file:booking.db?_pragma=foreign_keys(1)"

// Config captures environment driven configuration values for the booking service.
type Config struct {
	HTTPPort       int
	StoreDriver    string
	DatabaseDSN    string
	Location       *time.Location
	PasscodeScheme string
	Redis          RedisConfig
	RoomCacheTTL   time.Duration
	AllowedOrigins []string
	RoomSeedFile   string
	LogLevel       slog.Level
}

// RedisConfig selects the shared room cache. An empty Addr keeps the cache in
// process memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a Redis address is configured.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding values that are already set. Missing files
// are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// Load parses configuration values from the current process environment.
//
// Optional fields fall back to defaults; every missing or malformed variable
// is collected and reported in a single error.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:       8080,
		StoreDriver:    DriverSQLite,
		PasscodeScheme: "plain",
		RoomCacheTTL:   5 * time.Minute,
		AllowedOrigins: []string{"*"},
		LogLevel:       slog.LevelInfo,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("BOOKING_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "BOOKING_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if driver := strings.ToLower(strings.TrimSpace(os.Getenv("BOOKING_STORE_DRIVER"))); driver != "" {
		switch driver {
		case DriverSQLite, DriverPostgres:
			cfg.StoreDriver = driver
		default:
			invalid = append(invalid, "BOOKING_STORE_DRIVER")
		}
	}

	cfg.DatabaseDSN = strings.TrimSpace(os.Getenv("BOOKING_DATABASE_DSN"))
	if cfg.DatabaseDSN == "" {
		if cfg.StoreDriver == DriverPostgres {
			missing = append(missing, "BOOKING_DATABASE_DSN")
		} else {
			cfg.DatabaseDSN = defaultSQLiteDSN
		}
	}

	zone := strings.TrimSpace(os.Getenv("BOOKING_TIMEZONE"))
	if zone == "" {
		zone = "Asia/Seoul"
	}
	if loc, err := time.LoadLocation(zone); err != nil {
		invalid = append(invalid, "BOOKING_TIMEZONE")
	} else {
		cfg.Location = loc
	}

	if scheme := strings.ToLower(strings.TrimSpace(os.Getenv("BOOKING_PASSCODE_SCHEME"))); scheme != "" {
		switch scheme {
		case "plain", "argon2id":
			cfg.PasscodeScheme = scheme
		default:
			invalid = append(invalid, "BOOKING_PASSCODE_SCHEME")
		}
	}

	cfg.Redis.Addr = strings.TrimSpace(os.Getenv("BOOKING_REDIS_ADDR"))
	cfg.Redis.Password = os.Getenv("BOOKING_REDIS_PASSWORD")
	if dbValue := strings.TrimSpace(os.Getenv("BOOKING_REDIS_DB")); dbValue != "" {
		db, err := strconv.Atoi(dbValue)
		if err != nil || db < 0 {
			invalid = append(invalid, "BOOKING_REDIS_DB")
		} else {
			cfg.Redis.DB = db
		}
	}

	if ttlValue := strings.TrimSpace(os.Getenv("BOOKING_ROOM_CACHE_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "BOOKING_ROOM_CACHE_TTL")
		} else {
			cfg.RoomCacheTTL = ttl
		}
	}

	if originsValue := strings.TrimSpace(os.Getenv("BOOKING_ALLOWED_ORIGINS")); originsValue != "" {
		origins := make([]string, 0, 2)
		for _, origin := range strings.Split(originsValue, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
		if len(origins) == 0 {
			invalid = append(invalid, "BOOKING_ALLOWED_ORIGINS")
		} else {
			cfg.AllowedOrigins = origins
		}
	}

	cfg.RoomSeedFile = strings.TrimSpace(os.Getenv("BOOKING_ROOM_SEED_FILE"))

	if levelValue := strings.TrimSpace(os.Getenv("BOOKING_LOG_LEVEL")); levelValue != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(levelValue)); err != nil {
			invalid = append(invalid, "BOOKING_LOG_LEVEL")
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("필수 환경 변수가 설정되지 않았습니다: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("환경 변수 값이 올바르지 않습니다: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
