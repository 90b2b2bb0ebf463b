package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"plant-matcher/internal/config"
	"plant-matcher/internal/fileio"
	"plant-matcher/internal/matching/model"
	"plant-matcher/internal/matching/service"
	"plant-matcher/internal/middleware"
	"plant-matcher/internal/utils"
)

// Column looked up in import files when the form does not name one.
const defaultImportColumn = "name|scientific name|vetenskapligt namn|latinskt namn|växt|plant|namn"

// maxBatchTerms bounds one JSON batch request.
const maxBatchTerms = 10000

type Matcher interface {
	Match(ctx context.Context, term string, limit int) ([]model.ScoredMatch, error)
	MatchBatch(ctx context.Context, terms []string, perTermLimit int) (model.BatchResult, error)
}

// Match serves GET /match?q=...&limit=N.
func Match(m Matcher, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := middleware.RequestLogger(r, logger)
		term := r.URL.Query().Get("q")
		limit := utils.Atoi(r.URL.Query().Get("limit"), 0)

		res, err := m.Match(r.Context(), term, limit)
		if err != nil {
			log.Error().Err(err).Str("term", term).Msg("match failed")
			utils.WriteError(w, statusFor(err), err.Error())
			return
		}
		if err := utils.WriteJSON(w, http.StatusOK, res); err != nil {
			log.Error().Err(err).Msg("write json")
		}
	}
}

type batchRequest struct {
	Terms        []string `json:"terms"`
	PerTermLimit int      `json:"perTermLimit"`
}

// MatchBatch serves POST /match/batch.
func MatchBatch(m Matcher, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := middleware.RequestLogger(r, logger)

		var req batchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.WriteError(w, http.StatusBadRequest, "bad json: "+err.Error())
			return
		}
		if len(req.Terms) > maxBatchTerms {
			utils.WriteError(w, http.StatusBadRequest, "too many terms")
			return
		}

		res, err := m.MatchBatch(r.Context(), req.Terms, req.PerTermLimit)
		if err != nil {
			log.Error().Err(err).Int("blocks", len(res.Blocks)).Msg("batch failed")
			utils.WriteError(w, statusFor(err), err.Error())
			return
		}
		if err := utils.WriteJSON(w, http.StatusOK, res); err != nil {
			log.Error().Err(err).Msg("write json")
			return
		}
		log.Info().
			Int("terms", len(req.Terms)).
			Int("blocks", len(res.Blocks)).
			Int("failed", res.Failed).
			Dur("elapsed", time.Since(start)).
			Msg("batch done")
	}
}

type importResponse struct {
	File   string            `json:"file"`
	Column string            `json:"column"`
	Rows   int               `json:"rows"`
	Result model.BatchResult `json:"result"`
}

// Import serves POST /match/import: a spreadsheet upload whose plant-name
// column is matched term by term.
func Import(cfg config.Config, m Matcher, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := middleware.RequestLogger(r, logger)

		if err := r.ParseMultipartForm(int64(cfg.MaxUploadMB) << 20); err != nil {
			utils.WriteError(w, http.StatusBadRequest, "bad multipart form: "+err.Error())
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, "missing file: "+err.Error())
			return
		}
		defer file.Close()

		sheet, err := fileio.ReadSheet(file, header.Filename, utils.Atoi(r.FormValue("header_row"), 1))
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, "failed to read file: "+err.Error())
			return
		}

		want := strings.TrimSpace(r.FormValue("column"))
		if want == "" {
			want = defaultImportColumn
		}
		key := sheet.Key(want)
		if key == "" {
			utils.WriteError(w, http.StatusBadRequest,
				"no column matches "+want+"; headers: "+strings.Join(sheet.Headers, ", "))
			return
		}
		terms := sheet.Column(key)

		res, err := m.MatchBatch(r.Context(), terms, utils.Atoi(r.FormValue("per_term_limit"), 0))
		if err != nil {
			log.Error().Err(err).Int("blocks", len(res.Blocks)).Msg("import batch failed")
			utils.WriteError(w, statusFor(err), err.Error())
			return
		}

		if err := utils.WriteJSON(w, http.StatusOK, importResponse{
			File:   header.Filename,
			Column: key,
			Rows:   len(terms),
			Result: res,
		}); err != nil {
			log.Error().Err(err).Msg("write json")
			return
		}
		log.Info().
			Str("file", header.Filename).
			Str("column", key).
			Int("rows", len(terms)).
			Int("failed", res.Failed).
			Dur("elapsed", time.Since(start)).
			Msg("import done")
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return 499 // client closed request
	case errors.Is(err, service.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
