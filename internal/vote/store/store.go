// Package store persists the mutable election state: per-voter records
// and the per-kind pools of single-use authorization codes.
//
// Error contract: implementations return the pkg/platform/sentinel
// errors (wrapped) for factual states — ErrNotFound, ErrAlreadyUsed,
// ErrRevisionMismatch, ErrExhausted — nil on success, and wrapped
// infrastructure errors otherwise.
package store

import (
	"context"
	"time"

	"voteauth/internal/vote/models"
	id "voteauth/pkg/domain"
)

// RecordStore tracks per-voter consumption state.
type RecordStore interface {
	// Get returns the record for a voter, or ErrNotFound.
	Get(ctx context.Context, studentID id.StudentID) (*models.Record, error)

	// GetOrInitialize returns the existing record or creates an
	// AVAILABLE one bound to the presented revision.
	GetOrInitialize(ctx context.Context, studentID id.StudentID, revision id.Revision) (*models.Record, error)

	// Check validates a presented credential against stored state
	// without mutating anything. It returns nil when issuance may
	// proceed, ErrRevisionMismatch or ErrAlreadyUsed on replay, and
	// ErrNotFound for a first-ever attempt (which the pipeline allows).
	Check(ctx context.Context, studentID id.StudentID, revision id.Revision) error
}

// CodeStore manages the pre-provisioned authorization code pools.
type CodeStore interface {
	// Add provisions codes into their kind pools.
	Add(ctx context.Context, codes []models.AuthCode) error

	// CountAvailable reports how many unissued codes remain for a kind.
	CountAvailable(ctx context.Context, kind id.KindCode) (int, error)
}

// Issuer is the transaction boundary for the issuance step: claim one
// unissued code of the kind AND transition the voter's record to USED,
// atomically. If no code remains it returns ErrExhausted and leaves the
// record untouched. Contention is scoped to {this voter, this kind's
// pool}; different voters and different kinds do not block each other.
type Issuer interface {
	Issue(ctx context.Context, studentID id.StudentID, revision id.Revision, kind id.KindCode, now time.Time) (*models.AuthCode, error)
}
