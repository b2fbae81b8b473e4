package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const minSessionSecretLength = 32

// Config captures environment driven configuration values for the booking service.
type Config struct {
	HTTPPort  int    `env:"BOOKING_HTTP_PORT, default=8080"`
	SQLiteDSN string `env:"BOOKING_SQLITE_DSN, default=booking.db"`

	SessionSecret        string        `env:"BOOKING_SESSION_SECRET"`
	CSRFKey              string        `env:"BOOKING_CSRF_KEY"`
	SessionTTL           time.Duration `env:"BOOKING_SESSION_TTL, default=0s"`
	CookieSecure         bool          `env:"BOOKING_COOKIE_SECURE, default=false"`
	AdminDeleteUnguarded bool          `env:"BOOKING_ADMIN_DELETE_UNGUARDED, default=false"`

	LogLevel string `env:"BOOKING_LOG_LEVEL, default=info"`
	LogFile  string `env:"BOOKING_LOG_FILE"`

	SeedFile             string `env:"BOOKING_SEED_FILE"`
	SessionPruneSchedule string `env:"BOOKING_SESSION_PRUNE_SCHEDULE, default=@hourly"`
}

// LoadDotEnv reads KEY=VALUE files into the process environment. Variables
// that are already set keep their values, and missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("%s の読み込みに失敗しました: %w", file, err)
		}
	}
	return nil
}

// Load parses configuration values from the current process environment.
func Load() (Config, error) {
	return LoadFrom(context.Background(), envconfig.OsLookuper())
}

// LoadFrom decodes configuration from lookuper, applies defaults, and reports
// every missing or invalid variable together.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return Config{}, fmt.Errorf("環境変数の値が不正です: %w", err)
	}

	cfg.SQLiteDSN = strings.TrimSpace(cfg.SQLiteDSN)
	cfg.SessionSecret = strings.TrimSpace(cfg.SessionSecret)
	cfg.CSRFKey = strings.TrimSpace(cfg.CSRFKey)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.SessionPruneSchedule = strings.TrimSpace(cfg.SessionPruneSchedule)

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 4)

	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		invalid = append(invalid, "BOOKING_HTTP_PORT")
	}
	if cfg.SQLiteDSN == "" {
		invalid = append(invalid, "BOOKING_SQLITE_DSN")
	}
	if cfg.SessionSecret == "" {
		missing = append(missing, "BOOKING_SESSION_SECRET")
	} else if len(cfg.SessionSecret) < minSessionSecretLength {
		invalid = append(invalid, "BOOKING_SESSION_SECRET")
	}
	if cfg.CSRFKey != "" && len(cfg.CSRFKey) != 32 {
		invalid = append(invalid, "BOOKING_CSRF_KEY")
	}
	if cfg.SessionTTL < 0 {
		invalid = append(invalid, "BOOKING_SESSION_TTL")
	}
	if _, ok := parseLevel(cfg.LogLevel); !ok {
		invalid = append(invalid, "BOOKING_LOG_LEVEL")
	}
	if cfg.SessionPruneSchedule == "" {
		invalid = append(invalid, "BOOKING_SESSION_PRUNE_SCHEDULE")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("必須の環境変数が設定されていません: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("環境変数の値が不正です: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// CSRFEnabled reports whether form posts require a CSRF token.
func (c Config) CSRFEnabled() bool {
	return c.CSRFKey != ""
}

// SlogLevel converts LogLevel for the slog handler.
func (c Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

func parseLevel(value string) (slog.Level, bool) {
	switch value {
	case "debug":
		return slog.LevelDebug, true
	case "", "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}
