package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"plant-matcher/internal/utils"
)

type Config struct {
	Host         string
	Port         int
	AllowOrigins []string
	LogLevel     string
	LogFile      string
	MaxUploadMB  int

	DBPath      string
	CatalogSeed string // spreadsheet loaded into an empty catalog at startup

	MatchDefaultLimit  int
	MatchWorkers       int
	DuplicateThreshold float64
	NormCacheTTL       time.Duration
}

func Load() Config {
	return Config{
		Host:         getenv("HOST", "127.0.0.1"),
		Port:         utils.Atoi(getenv("PORT", ""), 8082),
		AllowOrigins: splitList(getenv("ALLOW_ORIGINS", "*")),
		LogLevel:     getenv("LOG_LEVEL", "info"),
		LogFile:      getenv("LOG_FILE", "logs/plant-matcher.log"),
		MaxUploadMB:  utils.Atoi(getenv("MAX_UPLOAD_MB", ""), 64),

		DBPath:      getenv("DB_PATH", "data/catalog.db"),
		CatalogSeed: getenv("CATALOG_SEED", ""),

		MatchDefaultLimit:  utils.Atoi(getenv("MATCH_DEFAULT_LIMIT", ""), 10),
		MatchWorkers:       utils.Atoi(getenv("MATCH_WORKERS", ""), 4),
		DuplicateThreshold: utils.Float(getenv("DUPLICATE_THRESHOLD", ""), 0.92),
		NormCacheTTL:       utils.Duration(getenv("NORM_CACHE_TTL", ""), 30*time.Minute),
	}
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
