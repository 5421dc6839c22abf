package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers return
// these (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store
// - ErrAlreadyUsed: single-use resource (vote record, auth code) already consumed
// - ErrRevisionMismatch: stored credential revision disagrees with the presented one
// - ErrExhausted: no unissued auth code remains for the requested kind
// - ErrInvalidState: entity in wrong state for requested operation
// - ErrUnavailable: service or resource temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrAlreadyUsed      = errors.New("already used")
	ErrRevisionMismatch = errors.New("revision mismatch")
	ErrExhausted        = errors.New("exhausted")
	ErrInvalidState     = errors.New("invalid state")
	ErrUnavailable      = errors.New("unavailable")
)
