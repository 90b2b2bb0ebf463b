package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"plant-matcher/internal/catalog"
	"plant-matcher/internal/matching/model"
	"plant-matcher/internal/matching/service"
	"plant-matcher/internal/middleware"
	"plant-matcher/internal/utils"
)

type Store interface {
	AddPlant(ctx context.Context, p catalog.NewPlant) (int64, error)
	AddSynonym(ctx context.Context, canonicalID int64, name string) (int64, error)
	UpdatePlant(ctx context.Context, id int64, name, commonName string) error
	GetPlant(ctx context.Context, id int64) (model.CatalogEntry, error)
}

type DuplicateChecker interface {
	CheckDuplicates(ctx context.Context, name, commonName string, threshold float64) ([]model.ScoredMatch, error)
}

// Plants groups the catalog write endpoints. Every create runs the duplicate
// check first.
type Plants struct {
	Store     Store
	Checker   DuplicateChecker
	Threshold float64
	Log       zerolog.Logger
}

type checkRequest struct {
	Name       string `json:"name"`
	CommonName string `json:"commonName"`
}

type checkResponse struct {
	Duplicates []model.ScoredMatch `json:"duplicates"`
	Threshold  float64             `json:"threshold"`
}

// Check serves POST /plants/check.
func (h *Plants) Check(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		utils.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}
	dups, err := h.Checker.CheckDuplicates(r.Context(), req.Name, req.CommonName, h.Threshold)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_ = utils.WriteJSON(w, http.StatusOK, checkResponse{Duplicates: dups, Threshold: h.Threshold})
}

type createRequest struct {
	catalog.NewPlant
	Force bool `json:"force"`
}

// Create serves POST /plants. Likely duplicates are answered with 409 and the
// matches unless the request sets force (in the body or as ?force=1).
func (h *Plants) Create(w http.ResponseWriter, r *http.Request) {
	log := middleware.RequestLogger(r, h.Log)

	var req createRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		utils.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}

	if !req.Force && !utils.Bool(r.URL.Query().Get("force"), false) {
		dups, err := h.Checker.CheckDuplicates(r.Context(), req.Name, req.CommonName, h.Threshold)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if len(dups) > 0 {
			log.Info().Str("name", req.Name).Int("duplicates", len(dups)).Msg("create rejected as duplicate")
			_ = utils.WriteJSON(w, http.StatusConflict, checkResponse{Duplicates: dups, Threshold: h.Threshold})
			return
		}
	}

	id, err := h.Store.AddPlant(r.Context(), req.NewPlant)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respondEntry(w, r, http.StatusCreated, id)
}

type updateRequest struct {
	Name       string `json:"name"`
	CommonName string `json:"commonName"`
}

// Update serves PUT /plants/{id}.
func (h *Plants) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.ParseID(chi.URLParam(r, "id"))
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "bad id")
		return
	}
	var req updateRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Store.UpdatePlant(r.Context(), id, req.Name, req.CommonName); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respondEntry(w, r, http.StatusOK, id)
}

type synonymRequest struct {
	Name string `json:"name"`
}

// AddSynonym serves POST /plants/{id}/synonyms.
func (h *Plants) AddSynonym(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.ParseID(chi.URLParam(r, "id"))
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "bad id")
		return
	}
	var req synonymRequest
	if !decode(w, r, &req) {
		return
	}
	if _, err := h.Store.AddSynonym(r.Context(), id, req.Name); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respondEntry(w, r, http.StatusCreated, id)
}

// Get serves GET /plants/{id}.
func (h *Plants) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.ParseID(chi.URLParam(r, "id"))
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "bad id")
		return
	}
	h.respondEntry(w, r, http.StatusOK, id)
}

func (h *Plants) respondEntry(w http.ResponseWriter, r *http.Request, status int, id int64) {
	e, err := h.Store.GetPlant(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_ = utils.WriteJSON(w, status, e)
}

func (h *Plants) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, catalog.ErrInvalid):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status >= http.StatusInternalServerError {
		log := middleware.RequestLogger(r, h.Log)
		log.Error().Err(err).Msg("catalog request failed")
	}
	utils.WriteError(w, status, err.Error())
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return false
	}
	return true
}
