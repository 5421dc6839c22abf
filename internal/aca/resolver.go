// Package aca talks to the external academic-affairs service that
// resolves a card token into a student identity. The service is the
// trust anchor for identities; this package only transports and
// classifies its answers.
package aca

import (
	"context"
	"errors"

	"voteauth/internal/vote/models"
	id "voteauth/pkg/domain"
)

// Resolver resolves a card token into the student identity it belongs
// to. Implementations must bound the call with a timeout; the pipeline
// never retries.
type Resolver interface {
	Resolve(ctx context.Context, token id.CardToken) (models.StudentInfo, error)
}

// Failure classes the upstream reports. Anything else (timeouts,
// connection failures, 5xx) surfaces as a wrapped transport error the
// service maps to external_error.
var (
	// ErrCardUnknown covers both "card invalid" and "student not found"
	// upstream answers; stations treat them identically.
	ErrCardUnknown = errors.New("card unknown to resolver")

	// ErrBlacklisted means the upstream explicitly flagged the card.
	// This is a stronger signal than an unknown card and is surfaced
	// for station-side escalation.
	ErrBlacklisted = errors.New("card blacklisted by resolver")
)
