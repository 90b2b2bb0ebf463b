package service

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"plant-matcher/internal/matching/model"
)

// Signal weights. Only an exact match reaches 1.0: prefix stays below 0.95
// and containment below 0.80 for strings of different length.
const (
	prefixBase        = 0.70
	prefixSpan        = 0.25
	containsBase      = 0.50
	containsSpan      = 0.30
	subsequenceWeight = 0.45
	subsequenceMinLen = 3
)

// entryForms are the normalized comparison fields of a catalog entry.
type entryForms struct {
	Name     string
	Common   string
	Synonyms []string
}

func formsOf(e model.CatalogEntry) entryForms {
	f := entryForms{
		Name:   Normalize(e.Name),
		Common: Normalize(e.CommonName),
	}
	if len(e.SynonymNames) > 0 {
		f.Synonyms = make([]string, len(e.SynonymNames))
		for i, s := range e.SynonymNames {
			f.Synonyms[i] = Normalize(s)
		}
	}
	return f
}

type signalScore struct {
	score    float64
	target   model.Target
	signal   model.Signal
	text     string
	qLen     int
	tLen     int
	distance int
}

// Score compares a raw term with every comparison field of entry and keeps the
// strongest single piece of evidence.
func Score(term string, entry model.CatalogEntry) model.ScoredMatch {
	return scoreForms(Normalize(term), entry, formsOf(entry))
}

// scoreForms expects q already normalized.
func scoreForms(q string, entry model.CatalogEntry, f entryForms) model.ScoredMatch {
	best := signalScore{target: model.TargetNone, signal: model.SignalNone, qLen: utf8.RuneCountInString(q)}
	if q != "" {
		consider := func(target model.Target, text string) {
			s := compare(q, text)
			if s.score > best.score {
				s.target = target
				best = s
			}
		}
		// name before common name before synonyms: an earlier target wins ties
		consider(model.TargetName, f.Name)
		consider(model.TargetCommonName, f.Common)
		for _, syn := range f.Synonyms {
			consider(model.TargetSynonym, syn)
		}
	}

	d := model.MatchDetails{
		Target:       best.target,
		Signal:       best.signal,
		MatchedText:  best.text,
		QueryLength:  best.qLen,
		TargetLength: best.tLen,
	}
	if best.signal == model.SignalEdit {
		dist := best.distance
		d.EditDistance = &dist
	}
	return model.ScoredMatch{
		Entry:           entry,
		SimilarityScore: best.score,
		MatchDetails:    d,
		SuggestedReason: suggestedReason(best.target, best.signal),
	}
}

// compare scores two normalized strings. Signals are combined by max and a
// later signal only replaces an earlier one when strictly stronger.
func compare(q, t string) signalScore {
	ql := utf8.RuneCountInString(q)
	tl := utf8.RuneCountInString(t)
	out := signalScore{signal: model.SignalNone, text: t, qLen: ql, tLen: tl}
	if q == "" || t == "" {
		return out
	}
	if q == t {
		out.score, out.signal = 1, model.SignalExact
		return out
	}

	shorter, longer := ql, tl
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	ratio := float64(shorter) / float64(longer)

	take := func(score float64, sig model.Signal) {
		if score > out.score {
			out.score, out.signal = score, sig
		}
	}

	if strings.HasPrefix(t, q) || strings.HasPrefix(q, t) {
		take(prefixBase+prefixSpan*ratio, model.SignalPrefix)
	}
	if strings.Contains(t, q) || strings.Contains(q, t) {
		take(containsBase+containsSpan*ratio, model.SignalContains)
	}

	dist := damerauLevenshtein(q, t)
	// reordered words still cost one edit, so only q == t scores 1.0
	if ts := damerauLevenshtein(tokenSort(q), tokenSort(t)); ts < dist {
		dist = max(ts, 1)
	}
	if sim := 1 - float64(dist)/float64(longer); sim > out.score {
		out.score, out.signal, out.distance = sim, model.SignalEdit, dist
	}

	if ql >= subsequenceMinLen && fuzzy.Match(q, t) {
		take(subsequenceWeight*ratio, model.SignalSubsequence)
	}
	return out
}

// tokenSort orders words alphabetically so "cembra pinus" meets "pinus cembra".
func tokenSort(s string) string {
	t := strings.Fields(s)
	if len(t) < 2 {
		return s
	}
	sort.Strings(t)
	return strings.Join(t, " ")
}

func suggestedReason(target model.Target, signal model.Signal) string {
	var kind string
	switch signal {
	case model.SignalExact:
		kind = "exact match"
	case model.SignalPrefix, model.SignalContains:
		kind = "partial match"
	case model.SignalEdit, model.SignalSubsequence:
		kind = "near match"
	default:
		return "no match"
	}
	switch target {
	case model.TargetName:
		return kind + " on scientific name"
	case model.TargetCommonName:
		return kind + " on common name"
	case model.TargetSynonym:
		if signal == model.SignalExact {
			return "exact match via synonym"
		}
		return "matched via synonym"
	}
	return "no match"
}
