package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	catHnd "plant-matcher/internal/catalog/handler"
	"plant-matcher/internal/config"
	matchHnd "plant-matcher/internal/matching/handler"
	"plant-matcher/internal/middleware"
	"plant-matcher/server/http/handlers"
)

// Deps are the services the routes are bound to.
type Deps struct {
	Matcher interface {
		matchHnd.Matcher
		catHnd.DuplicateChecker
	}
	Catalog interface {
		catHnd.Store
		handlers.Pinger
	}
}

func NewRouter(cfg config.Config, logger zerolog.Logger, deps Deps) *chi.Mux {
	r := chi.NewRouter()

	// order matters: recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(int64(cfg.MaxUploadMB) * 1024 * 1024))

	r.Get("/health", handlers.Health(deps.Catalog))

	r.Get("/match", matchHnd.Match(deps.Matcher, logger))
	r.Post("/match/batch", matchHnd.MatchBatch(deps.Matcher, logger))
	r.Post("/match/import", matchHnd.Import(cfg, deps.Matcher, logger))

	plants := &catHnd.Plants{
		Store:     deps.Catalog,
		Checker:   deps.Matcher,
		Threshold: cfg.DuplicateThreshold,
		Log:       logger,
	}
	r.Route("/plants", func(r chi.Router) {
		r.Post("/", plants.Create)
		r.Post("/check", plants.Check)
		r.Get("/{id}", plants.Get)
		r.Put("/{id}", plants.Update)
		r.Post("/{id}/synonyms", plants.AddSynonym)
	})

	return r
}
