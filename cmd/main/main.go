package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"plant-matcher/internal/catalog"
	"plant-matcher/internal/config"
	"plant-matcher/internal/fileio"
	"plant-matcher/internal/matching/service"
	serverhttp "plant-matcher/server/http"
)

func main() {
	cfg := config.Load()
	logger := config.SetupLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := catalog.Open(ctx, cfg.DBPath)
	if err != nil {
		cancel()
		logger.Fatal().Err(err).Str("db", cfg.DBPath).Msg("open catalog")
	}
	if cfg.CatalogSeed != "" {
		if err := seedCatalog(ctx, store, cfg.CatalogSeed, logger); err != nil {
			logger.Error().Err(err).Str("seed", cfg.CatalogSeed).Msg("catalog seed failed")
		}
	}
	cancel()

	matcher := service.NewMatcher(store, logger, service.Options{
		DefaultLimit: cfg.MatchDefaultLimit,
		Workers:      cfg.MatchWorkers,
		Cache:        service.NewNormCache(cfg.NormCacheTTL),
	})
	store.OnChange(matcher.Invalidate)

	r := serverhttp.NewRouter(cfg, logger, serverhttp.Deps{Matcher: matcher, Catalog: store})

	srv := &http.Server{Addr: cfg.Addr(), Handler: r, ReadHeaderTimeout: 10 * time.Second}
	logger.Info().Str("addr", cfg.Addr()).Str("db", cfg.DBPath).Msg("server starting")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("server shutting down")
	sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer scancel()
	_ = srv.Shutdown(sctx)
	if err := store.Close(); err != nil {
		logger.Warn().Err(err).Msg("close catalog")
	}
	logger.Info().Msg("bye")
}

func seedCatalog(ctx context.Context, store *catalog.Store, path string, logger zerolog.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sheet, err := fileio.ReadSheet(f, filepath.Base(path), 0)
	if err != nil {
		return err
	}
	st, err := store.ImportSheet(ctx, sheet)
	if err != nil {
		return err
	}
	logger.Info().
		Str("seed", path).
		Int("plants", st.Plants).
		Int("synonyms", st.Synonyms).
		Int("skipped", st.Skipped).
		Msg("catalog seeded")
	return nil
}
