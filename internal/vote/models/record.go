package models

import (
	"time"

	id "voteauth/pkg/domain"
	"voteauth/pkg/platform/sentinel"
)

// RecordState is the lifecycle position of a voter record.
type RecordState string

const (
	RecordAvailable RecordState = "available"
	RecordUsed      RecordState = "used"
)

// Record is the persistent per-voter state.
//
// Invariants:
//   - At most one record per StudentID ever reaches RecordUsed (terminal).
//   - Revision is bound on first sighting of the card and never changes;
//     a presented revision that disagrees with the stored one means the
//     physical card was reissued or forged.
//   - The AVAILABLE → USED transition happens only inside the same
//     transaction that flips an AuthCode to issued.
type Record struct {
	StudentID id.StudentID `json:"student_id"`
	Revision  id.Revision  `json:"revision"`
	State     RecordState  `json:"state"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// NewRecord builds an AVAILABLE record bound to the presented revision.
func NewRecord(studentID id.StudentID, revision id.Revision, now time.Time) *Record {
	return &Record{
		StudentID: studentID,
		Revision:  revision,
		State:     RecordAvailable,
		UpdatedAt: now,
	}
}

// CheckPresented validates a presented revision against the stored
// state without mutating anything. The order matters: a revision
// mismatch is reported even for used records, because it is the
// stronger signal.
func (r *Record) CheckPresented(revision id.Revision) error {
	if r.Revision != revision {
		return sentinel.ErrRevisionMismatch
	}
	if r.State != RecordAvailable {
		return sentinel.ErrAlreadyUsed
	}
	return nil
}

// Consume transitions the record to USED. The transition is terminal;
// calling Consume on a used record fails.
func (r *Record) Consume(revision id.Revision, now time.Time) error {
	if err := r.CheckPresented(revision); err != nil {
		return err
	}
	r.State = RecordUsed
	r.Revision = revision
	r.UpdatedAt = now
	return nil
}

// IsUsed reports whether the record reached its terminal state.
func (r *Record) IsUsed() bool {
	return r.State == RecordUsed
}
