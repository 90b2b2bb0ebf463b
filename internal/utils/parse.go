package utils

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// spaces that show up inside numbers copied from spreadsheets
var numberSpaces = strings.NewReplacer(" ", "", "\u00A0", "", "\u2009", "", "\u202F", "", "\t", "")

// Atoi parses an int, tolerating grouping spaces. Blank or invalid input gives def.
func Atoi(s string, def int) int {
	s = numberSpaces.Replace(strings.TrimSpace(s))
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

// ParseID parses a positive 64-bit id.
func ParseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Float parses "0,92" as well as "0.92". Blank, invalid, NaN and Inf give def.
func Float(s string, def float64) float64 {
	s = numberSpaces.Replace(strings.TrimSpace(s))
	if s == "" {
		return def
	}
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

// Bool accepts the usual form/env spellings, Swedish included.
func Bool(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on", "ja", "j":
		return true
	case "0", "false", "no", "n", "off", "nej":
		return false
	default:
		return def
	}
}

// Duration parses Go durations ("30m") or a plain number of seconds.
func Duration(s string, def time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}
