// Package audit keeps the append-only trail of issuance decisions and
// station activity. Every authenticate request produces exactly one
// event, issued or rejected.
package audit

import (
	"context"
	"time"

	id "voteauth/pkg/domain"
)

// Action identifies what happened.
type Action string

const (
	ActionIssued    Action = "issued"
	ActionRejected  Action = "rejected"
	ActionConfirmed Action = "confirmed"
	ActionReported  Action = "reported"
	ActionCompleted Action = "completed"
)

// Event is one audit trail entry. StudentID may be empty when the
// request never produced a parsed credential.
type Event struct {
	StationID string       `json:"station_id"`
	StudentID id.StudentID `json:"student_id,omitempty"`
	Action    Action       `json:"action"`
	Reason    string       `json:"reason,omitempty"`
	At        time.Time    `json:"at"`
}

// Store persists audit events. Append-only.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByStation(ctx context.Context, stationID string) ([]Event, error)
}
