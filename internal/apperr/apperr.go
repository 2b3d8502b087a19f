// Package apperr defines the system's error taxonomy as sentinel values.
//
// Call sites branch on error kind with errors.Is against these sentinels,
// wrapped with context via fmt.Errorf("...: %w", ErrX) at each layer
// boundary, matching the wrapping idiom used throughout the rest of this
// module.
package apperr

import "errors"

// Kinds per the error taxonomy: Network, RateLimit, Protocol, InvalidInput,
// NotFound, Io, Fatal.
var (
	ErrNetwork      = errors.New("network error")
	ErrRateLimit    = errors.New("rate limited")
	ErrProtocol     = errors.New("protocol error")
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrIO           = errors.New("io error")
	ErrFatal        = errors.New("fatal error")

	// ErrExhaustedAllEgresses is raised by the upstream client pool when
	// every client, across every retry, failed a single logical call.
	ErrExhaustedAllEgresses = errors.New("exhausted all egresses")
)

// Is reports whether err ultimately wraps target, a thin alias kept so
// call sites can write apperr.Is(err, apperr.ErrRateLimit) instead of
// importing errors separately.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
