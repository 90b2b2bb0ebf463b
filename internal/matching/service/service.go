package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"plant-matcher/internal/matching/model"
)

const (
	DefaultLimit   = 10
	DefaultWorkers = 4
)

type Options struct {
	DefaultLimit int        // used when a caller passes limit <= 0
	Workers      int        // concurrent terms in MatchBatch
	Cache        *NormCache // optional
}

// Matcher runs the pipeline normalize → retrieve → score → rank.
type Matcher struct {
	retriever    *Retriever
	cache        *NormCache
	log          zerolog.Logger
	defaultLimit int
	workers      int
}

func NewMatcher(store CandidateStore, logger zerolog.Logger, opt Options) *Matcher {
	if opt.DefaultLimit <= 0 {
		opt.DefaultLimit = DefaultLimit
	}
	if opt.Workers <= 0 {
		opt.Workers = DefaultWorkers
	}
	return &Matcher{
		retriever:    NewRetriever(store, logger),
		cache:        opt.Cache,
		log:          logger,
		defaultLimit: opt.DefaultLimit,
		workers:      opt.Workers,
	}
}

// Match returns at most limit suggestions for term, best first. An empty term
// gives an empty list.
func (m *Matcher) Match(ctx context.Context, term string, limit int) ([]model.ScoredMatch, error) {
	start := time.Now()
	limit = m.resultLimit(limit)

	q := Normalize(term)
	if q == "" {
		return []model.ScoredMatch{}, nil
	}

	cands, err := m.retriever.Retrieve(ctx, term, limit)
	if err != nil {
		return nil, err
	}

	scored := make([]model.ScoredMatch, 0, len(cands))
	for _, c := range cands {
		scored = append(scored, scoreForms(q, c.Entry, m.cache.forms(c.Entry)))
	}
	out := Rank(scored, limit)

	m.log.Debug().
		Str("term", q).
		Int("candidates", len(cands)).
		Int("results", len(out)).
		Dur("elapsed", time.Since(start)).
		Msg("match")
	return out, nil
}

type batchJob struct {
	index int
	term  string
}

// MatchBatch matches every non-blank term and returns one block per term in
// input order. A failing term is reported in its block; the other terms still
// run. On cancellation no new terms are started and the blocks finished so far
// are returned with the context error.
func (m *Matcher) MatchBatch(ctx context.Context, terms []string, perTermLimit int) (model.BatchResult, error) {
	res := model.BatchResult{Blocks: []model.BatchBlock{}}

	kept := make([]string, 0, len(terms))
	for _, t := range terms {
		if s := strings.TrimSpace(t); s != "" {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return res, nil
	}

	blocks := make([]model.BatchBlock, len(kept))
	done := make([]bool, len(kept))
	jobs := make(chan batchJob)

	var wg sync.WaitGroup
	worker := func() {
		defer wg.Done()
		for job := range jobs {
			if ctx.Err() != nil {
				continue
			}
			blocks[job.index], done[job.index] = m.matchBlock(ctx, job.term, perTermLimit)
		}
	}

	workers := min(m.workers, len(kept))
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go worker()
	}

sendLoop:
	for i, t := range kept {
		select {
		case <-ctx.Done():
			break sendLoop
		case jobs <- batchJob{index: i, term: t}:
		}
	}
	close(jobs)
	wg.Wait()

	for i := range blocks {
		if !done[i] {
			continue
		}
		if blocks[i].Error != "" {
			res.Failed++
		}
		res.Blocks = append(res.Blocks, blocks[i])
	}

	if err := ctx.Err(); err != nil {
		m.log.Warn().Err(err).Int("done", len(res.Blocks)).Int("terms", len(kept)).Msg("batch interrupted")
		return res, err
	}
	return res, nil
}

// matchBlock reports false when the batch was cancelled while term was in
// flight; such a term has no block.
func (m *Matcher) matchBlock(ctx context.Context, term string, limit int) (model.BatchBlock, bool) {
	results, err := m.Match(ctx, term, limit)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return model.BatchBlock{}, false
		}
		m.log.Warn().Err(err).Str("term", term).Msg("batch term failed")
		return model.BatchBlock{SearchTerm: term, Results: []model.ScoredMatch{}, Error: err.Error()}, true
	}
	return model.BatchBlock{SearchTerm: term, Results: results}, true
}

// CheckDuplicates lists catalog entries that look like the same plant as a
// new entry with the given names: every match scoring at least threshold.
func (m *Matcher) CheckDuplicates(ctx context.Context, name, commonName string, threshold float64) ([]model.ScoredMatch, error) {
	matches, err := m.Match(ctx, name, MaxRetrieveLimit)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(commonName) != "" {
		more, err := m.Match(ctx, commonName, MaxRetrieveLimit)
		if err != nil {
			return nil, err
		}
		matches = Rank(append(matches, more...), MaxRetrieveLimit)
	}

	out := make([]model.ScoredMatch, 0, len(matches))
	for _, s := range matches {
		if s.SimilarityScore >= threshold {
			out = append(out, s)
		}
	}
	return out, nil
}

// Invalidate forgets cached normalized forms of a canonical entry.
func (m *Matcher) Invalidate(id int64) {
	m.cache.Invalidate(id)
}

func (m *Matcher) resultLimit(limit int) int {
	if limit <= 0 {
		limit = m.defaultLimit
	}
	return min(limit, MaxRetrieveLimit)
}
