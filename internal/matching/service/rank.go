package service

import (
	"sort"
	"unicode/utf8"

	"plant-matcher/internal/matching/model"
)

// Rank dedupes by entry id (keeping the best score), orders the matches and
// truncates to limit. The input slice is not modified.
func Rank(scored []model.ScoredMatch, limit int) []model.ScoredMatch {
	if limit <= 0 || len(scored) == 0 {
		return []model.ScoredMatch{}
	}

	pos := make(map[int64]int, len(scored))
	out := make([]model.ScoredMatch, 0, len(scored))
	for _, s := range scored {
		if i, ok := pos[s.Entry.ID]; ok {
			if s.SimilarityScore > out[i].SimilarityScore {
				out[i] = s
			}
			continue
		}
		pos[s.Entry.ID] = len(out)
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// less is the total order on matches: score desc, name length asc, name asc, id asc.
func less(a, b model.ScoredMatch) bool {
	if a.SimilarityScore != b.SimilarityScore {
		return a.SimilarityScore > b.SimilarityScore
	}
	if la, lb := utf8.RuneCountInString(a.Entry.Name), utf8.RuneCountInString(b.Entry.Name); la != lb {
		return la < lb
	}
	if a.Entry.Name != b.Entry.Name {
		return a.Entry.Name < b.Entry.Name
	}
	return a.Entry.ID < b.Entry.ID
}
