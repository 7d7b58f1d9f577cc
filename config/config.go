package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all runtime configuration, populated from the environment.
type Config struct {
	// ListenAddr is the host:port the HTTP server binds to.
	ListenAddr string
	// DataDir is the root directory for accounts, sessions, and logs.
	DataDir string
	// DatabasePath is the sqlite file holding favorites, ratings, and the
	// watchlist. Defaults to <DataDir>/reelscout.db.
	DatabasePath string
	// TMDBAPIKey authenticates requests to the metadata provider. When
	// empty, all enrichment degrades to placeholder records.
	TMDBAPIKey string
	// TMDBLanguage is the preferred language for provider responses.
	TMDBLanguage string
	// MetadataTTL is how long provider responses stay cached.
	MetadataTTL time.Duration
	// SessionDuration is the lifetime of login sessions.
	SessionDuration time.Duration
	// LogFile is where rotated logs go; empty means stderr only.
	LogFile string
}

// Load reads configuration from the environment, applying defaults for
// anything unset.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:      envOr("REELSCOUT_ADDR", ":8484"),
		DataDir:         envOr("REELSCOUT_DATA_DIR", "./data"),
		TMDBAPIKey:      os.Getenv("TMDB_API_KEY"),
		TMDBLanguage:    envOr("TMDB_LANGUAGE", "en-US"),
		MetadataTTL:     time.Hour,
		SessionDuration: 30 * 24 * time.Hour,
	}

	cfg.DatabasePath = envOr("REELSCOUT_DB_PATH", filepath.Join(cfg.DataDir, "reelscout.db"))
	cfg.LogFile = os.Getenv("REELSCOUT_LOG_FILE")

	if v := os.Getenv("REELSCOUT_METADATA_TTL_HOURS"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil || hours <= 0 {
			return nil, fmt.Errorf("invalid REELSCOUT_METADATA_TTL_HOURS %q", v)
		}
		cfg.MetadataTTL = time.Duration(hours) * time.Hour
	}

	if v := os.Getenv("REELSCOUT_SESSION_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days <= 0 {
			return nil, fmt.Errorf("invalid REELSCOUT_SESSION_DAYS %q", v)
		}
		cfg.SessionDuration = time.Duration(days) * 24 * time.Hour
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
