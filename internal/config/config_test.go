package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"HOST", "PORT", "ALLOW_ORIGINS", "LOG_LEVEL", "LOG_FILE", "MAX_UPLOAD_MB",
		"DB_PATH", "CATALOG_SEED", "MATCH_DEFAULT_LIMIT", "MATCH_WORKERS",
		"DUPLICATE_THRESHOLD", "NORM_CACHE_TTL",
	} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, "127.0.0.1:8082", cfg.Addr())
	assert.Equal(t, []string{"*"}, cfg.AllowOrigins)
	assert.Equal(t, "data/catalog.db", cfg.DBPath)
	assert.Equal(t, 10, cfg.MatchDefaultLimit)
	assert.Equal(t, 4, cfg.MatchWorkers)
	assert.Equal(t, 0.92, cfg.DuplicateThreshold)
	assert.Equal(t, 30*time.Minute, cfg.NormCacheTTL)
	assert.Empty(t, cfg.CatalogSeed)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HOST", "0.0.0.0")
	t.Setenv("PORT", "9000")
	t.Setenv("ALLOW_ORIGINS", " https://a.se, ,https://b.se ")
	t.Setenv("DB_PATH", "/var/lib/plants/catalog.db")
	t.Setenv("MATCH_WORKERS", "8")
	t.Setenv("DUPLICATE_THRESHOLD", "0,85")
	t.Setenv("NORM_CACHE_TTL", "120")

	cfg := Load()
	assert.Equal(t, "0.0.0.0:9000", cfg.Addr())
	assert.Equal(t, []string{"https://a.se", "https://b.se"}, cfg.AllowOrigins)
	assert.Equal(t, "/var/lib/plants/catalog.db", cfg.DBPath)
	assert.Equal(t, 8, cfg.MatchWorkers)
	assert.Equal(t, 0.85, cfg.DuplicateThreshold)
	assert.Equal(t, 2*time.Minute, cfg.NormCacheTTL)
}

func TestSetupLoggerLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())

	SetupLogger(Config{LogLevel: "warn"})
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	SetupLogger(Config{LogLevel: "nonsense"})
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
