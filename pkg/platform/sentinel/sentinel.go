package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// These represent factual states about stored rows, not validation failures:
// - ErrNotFound: row does not exist in the store
// - ErrConflict: a declared unique constraint rejected the write
// - ErrInvalidState: row is in the wrong lifecycle state for the operation
// - ErrUnavailable: backing engine temporarily unavailable
//
// For validation errors (bad input, out-of-domain values), use
// pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
