package fileio

import (
	"regexp"
	"strings"
)

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// normHeaderKey lowercases a header and reduces punctuation and special
// spaces to single spaces.
func normHeaderKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("\u00A0", " ", "\u202F", " ", "_", " ").Replace(s)
	s = nonWord.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// Key resolves want to a real header. want may list alternatives separated by
// "|" ("name|vetenskapligt namn"). Exact matches win, then normalized matches,
// then the longest partial match. Empty result means no column fits.
func (s *Sheet) Key(want string) string {
	want = strings.TrimSpace(want)
	if s == nil || want == "" {
		return ""
	}
	alts := strings.Split(want, "|")
	for i := range alts {
		alts[i] = strings.TrimSpace(alts[i])
	}

	for _, a := range alts {
		for _, h := range s.Headers {
			if h == a {
				return h
			}
		}
	}

	norms := make([]string, 0, len(alts))
	for _, a := range alts {
		if n := normHeaderKey(a); n != "" {
			norms = append(norms, n)
		}
	}
	for _, n := range norms {
		for _, h := range s.Headers {
			if normHeaderKey(h) == n {
				return h
			}
		}
	}

	bestKey, bestScore := "", 0
	for _, h := range s.Headers {
		nh := normHeaderKey(h)
		if nh == "" {
			continue
		}
		for _, n := range norms {
			if (strings.Contains(nh, n) || strings.Contains(n, nh)) && len(n) > bestScore {
				bestScore, bestKey = len(n), h
			}
		}
	}
	return bestKey
}

// Column returns the values of the resolved column in row order, blanks
// included, or nil when no header fits.
func (s *Sheet) Column(want string) []string {
	key := s.Key(want)
	if key == "" {
		return nil
	}
	out := make([]string, len(s.Rows))
	for i, row := range s.Rows {
		out[i] = row[key]
	}
	return out
}
