package service

import "errors"

var (
	// ErrStoreUnavailable wraps any failure of the candidate read.
	ErrStoreUnavailable = errors.New("catalog store unavailable")
	// ErrMalformedCandidate marks a store row without a name. Such rows are skipped.
	ErrMalformedCandidate = errors.New("malformed candidate")
)
