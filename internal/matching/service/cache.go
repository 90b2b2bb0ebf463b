package service

import (
	"slices"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"

	"plant-matcher/internal/matching/model"
)

const DefaultNormCacheTTL = 30 * time.Minute

// NormCache keeps the normalized comparison fields of catalog entries keyed by
// id. Every value carries the raw fields it was computed from; a lookup with
// different raw fields is a miss, so an edit that bypassed Invalidate still
// never serves stale forms.
type NormCache struct {
	c *cache.Cache
}

type cachedForms struct {
	name     string
	common   string
	synonyms []string
	forms    entryForms
}

func NewNormCache(ttl time.Duration) *NormCache {
	if ttl <= 0 {
		ttl = DefaultNormCacheTTL
	}
	return &NormCache{c: cache.New(ttl, ttl)}
}

// forms returns the normalized fields of e, computing and storing them on a miss.
// A nil cache computes them every time.
func (n *NormCache) forms(e model.CatalogEntry) entryForms {
	if n == nil {
		return formsOf(e)
	}
	key := cacheKey(e.ID)
	if v, ok := n.c.Get(key); ok {
		if cf, ok := v.(*cachedForms); ok && cf.matches(e) {
			return cf.forms
		}
	}
	cf := &cachedForms{
		name:     e.Name,
		common:   e.CommonName,
		synonyms: slices.Clone(e.SynonymNames),
		forms:    formsOf(e),
	}
	n.c.Set(key, cf, cache.DefaultExpiration)
	return cf.forms
}

// Invalidate drops the entry with the given id. Called by catalog writes.
func (n *NormCache) Invalidate(id int64) {
	if n == nil {
		return
	}
	n.c.Delete(cacheKey(id))
}

func (n *NormCache) Len() int {
	if n == nil {
		return 0
	}
	return n.c.ItemCount()
}

func (cf *cachedForms) matches(e model.CatalogEntry) bool {
	return cf.name == e.Name && cf.common == e.CommonName && slices.Equal(cf.synonyms, e.SynonymNames)
}

func cacheKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
