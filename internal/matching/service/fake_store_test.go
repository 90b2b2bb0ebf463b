package service

import (
	"context"
	"strings"
	"sync"

	"plant-matcher/internal/matching/model"
)

// memStore is a CandidateStore over a slice, with the same cheap predicate as
// the SQLite catalog: substring on any normalized field or fallback token.
type memStore struct {
	mu      sync.Mutex
	entries []model.CatalogEntry
	fail    map[string]error // by normalized term
	queries []model.CandidateQuery
	onFetch func(q model.CandidateQuery)
}

func (s *memStore) FetchCandidates(ctx context.Context, q model.CandidateQuery) ([]model.CandidateRow, error) {
	s.mu.Lock()
	s.queries = append(s.queries, q)
	hook := s.onFetch
	err := s.fail[q.Term]
	entries := append([]model.CatalogEntry(nil), s.entries...)
	s.mu.Unlock()

	if hook != nil {
		hook(q)
	}
	if err != nil {
		return nil, err
	}

	var out []model.CandidateRow
	for _, e := range entries {
		if score := memScore(q, e); score > 0 {
			out = append(out, model.CandidateRow{Entry: e, DBScore: score})
		}
		if len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func memScore(q model.CandidateQuery, e model.CatalogEntry) int {
	name := Normalize(e.Name)
	switch {
	case name == q.Term:
		return 7
	case strings.Contains(name, q.Term):
		return 5
	case strings.Contains(Normalize(e.CommonName), q.Term):
		return 3
	}
	for _, s := range e.SynonymNames {
		if strings.Contains(Normalize(s), q.Term) {
			return 2
		}
	}
	for _, tok := range q.FallbackTokens {
		if strings.Contains(name, tok) {
			return 1
		}
	}
	if q.ShortTerm && strings.HasPrefix(name, q.Term) {
		return 1
	}
	return 0
}

func (s *memStore) set(e model.CatalogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries {
		if s.entries[i].ID == e.ID {
			s.entries[i] = e
			return
		}
	}
	s.entries = append(s.entries, e)
}

func (s *memStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queries)
}
