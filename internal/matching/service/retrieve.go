package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"plant-matcher/internal/matching/model"
)

// Retrieval bounds. The store is asked for overfetchFactor times the clamped
// limit; ranking happens later on the scored set.
const (
	MinRetrieveLimit = 10
	MaxRetrieveLimit = 100
	overfetchFactor  = 2
	shortTermRunes   = 4
	fallbackMinRunes = 4
)

// CandidateStore is the read side of the catalog the retriever depends on.
// Implementations return canonical entries only and either a complete result
// or an error.
type CandidateStore interface {
	FetchCandidates(ctx context.Context, q model.CandidateQuery) ([]model.CandidateRow, error)
}

type Retriever struct {
	store CandidateStore
	log   zerolog.Logger
}

func NewRetriever(store CandidateStore, logger zerolog.Logger) *Retriever {
	return &Retriever{store: store, log: logger}
}

// Retrieve returns the pre-sorted, capped candidate set for term.
func (r *Retriever) Retrieve(ctx context.Context, term string, limit int) ([]model.MatchCandidate, error) {
	q := BuildCandidateQuery(Normalize(term), limit)
	if q.Term == "" {
		return nil, nil
	}

	rows, err := r.store.FetchCandidates(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	out := make([]model.MatchCandidate, 0, len(rows))
	for _, row := range rows {
		if strings.TrimSpace(row.Entry.Name) == "" {
			r.log.Warn().
				Err(ErrMalformedCandidate).
				Int64("id", row.Entry.ID).
				Str("term", q.Term).
				Msg("skip candidate without name")
			continue
		}
		out = append(out, model.MatchCandidate{Entry: row.Entry, DBScore: float64(row.DBScore)})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.DBScore != b.DBScore {
			return a.DBScore > b.DBScore
		}
		if la, lb := utf8.RuneCountInString(a.Entry.Name), utf8.RuneCountInString(b.Entry.Name); la != lb {
			return la < lb
		}
		if a.Entry.Name != b.Entry.Name {
			return a.Entry.Name < b.Entry.Name
		}
		return a.Entry.ID < b.Entry.ID
	})
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// BuildCandidateQuery derives the store predicate inputs from a normalized term.
func BuildCandidateQuery(norm string, limit int) model.CandidateQuery {
	q := model.CandidateQuery{
		Term:  norm,
		Limit: ClampRetrieveLimit(limit) * overfetchFactor,
	}
	if norm == "" {
		return q
	}
	words := strings.Fields(norm)
	if len(words) > 1 {
		q.FallbackTokens = append(q.FallbackTokens, words[0])
		for _, w := range words[1:] {
			if utf8.RuneCountInString(w) >= fallbackMinRunes {
				q.FallbackTokens = append(q.FallbackTokens, w)
			}
		}
	}
	q.ShortTerm = utf8.RuneCountInString(norm) <= shortTermRunes
	return q
}

func ClampRetrieveLimit(limit int) int {
	switch {
	case limit < MinRetrieveLimit:
		return MinRetrieveLimit
	case limit > MaxRetrieveLimit:
		return MaxRetrieveLimit
	}
	return limit
}
