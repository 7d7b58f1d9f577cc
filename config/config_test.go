package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8484", cfg.ListenAddr)
	assert.Equal(t, time.Hour, cfg.MetadataTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.SessionDuration)
	assert.Equal(t, "en-US", cfg.TMDBLanguage)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("REELSCOUT_ADDR", "127.0.0.1:9999")
	t.Setenv("REELSCOUT_DATA_DIR", "/var/lib/reelscout")
	t.Setenv("TMDB_API_KEY", "abc123")
	t.Setenv("REELSCOUT_METADATA_TTL_HOURS", "6")
	t.Setenv("REELSCOUT_SESSION_DAYS", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9999", cfg.ListenAddr)
	assert.Equal(t, "abc123", cfg.TMDBAPIKey)
	assert.Equal(t, 6*time.Hour, cfg.MetadataTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionDuration)
	assert.Equal(t, "/var/lib/reelscout/reelscout.db", cfg.DatabasePath)
}

func TestLoadDatabasePathOverride(t *testing.T) {
	t.Setenv("REELSCOUT_DB_PATH", "/tmp/custom.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.db", cfg.DatabasePath)
}

func TestLoadRejectsInvalidTTL(t *testing.T) {
	for _, v := range []string{"zero", "-3", "0"} {
		t.Setenv("REELSCOUT_METADATA_TTL_HOURS", v)
		_, err := Load()
		assert.Error(t, err, "ttl %q should be rejected", v)
	}
}
