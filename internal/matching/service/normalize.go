package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Tokens dropped after splitting: the hybrid marker written as a letter and the
// cultivar abbreviation ("Pinus cembra cv. Stricta").
var droppedTokens = map[string]struct{}{
	"x":  {},
	"cv": {},
}

// Normalize maps a raw plant name to its comparison form. It is used for the
// stored name_norm columns and for query terms alike.
//
// Quotes and hyphens survive only as joiners, i.e. with a letter or digit on
// both sides: "novae-angliae" and "o'harra" keep them, the quotes around a
// cultivar epithet ('Stricta') and free-standing dashes do not.
func Normalize(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	// 1) case, then compatibility decomposition without diacritics (å→a, ﬁ→fi)
	s := strings.ToLower(raw)
	s = foldMarks(s)
	s = strings.ToLower(s)

	// 2) quote/dash variants, hybrid sign, everything else non-word → space
	rs := []rune(s)
	for i, r := range rs {
		rs[i] = canonicalRune(r)
	}

	// 3) joiner rule
	for i, r := range rs {
		if r != '\'' && r != '-' {
			continue
		}
		if i == 0 || i == len(rs)-1 || !isWordRune(rs[i-1]) || !isWordRune(rs[i+1]) {
			rs[i] = ' '
		}
	}

	// 4) tokens
	fields := strings.Fields(string(rs))
	out := fields[:0]
	for _, f := range fields {
		if _, drop := droppedTokens[f]; drop {
			continue
		}
		out = append(out, f)
	}
	return strings.Join(out, " ")
}

// foldMarks builds the transformer per call: transform chains keep state and
// Normalize runs concurrently in batch mode.
func foldMarks(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func canonicalRune(r rune) rune {
	switch r {
	case '\'', '‘', '’', '‚', '‛', '′', '`':
		return '\''
	case '-', '‐', '‑', '−':
		return '-'
	case '×':
		return ' '
	}
	if isWordRune(r) {
		return r
	}
	return ' '
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
