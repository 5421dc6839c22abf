package models

import (
	"time"

	id "voteauth/pkg/domain"
	"voteauth/pkg/platform/sentinel"
)

// AuthCode is one single-use authorization code in a kind's pool.
//
// Invariants:
//   - Issued flips false → true at most once, ever (terminal).
//   - Exactly one caller may observe a given code unissued and proceed;
//     stores enforce this under concurrency.
type AuthCode struct {
	Code     string      `json:"code"`
	Kind     id.KindCode `json:"kind"`
	Issued   bool        `json:"issued"`
	IssuedAt time.Time   `json:"issued_at,omitempty"`
}

// MarkIssued flips the terminal issued flag.
func (c *AuthCode) MarkIssued(now time.Time) error {
	if c.Issued {
		return sentinel.ErrAlreadyUsed
	}
	c.Issued = true
	c.IssuedAt = now
	return nil
}
