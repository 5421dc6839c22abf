package models

import (
	id "voteauth/pkg/domain"
)

// DepartmentEntry maps a department code to its default eligibility
// kind. Immutable reference data loaded at process start.
type DepartmentEntry struct {
	DepartmentCode string      `json:"dpt_code"`
	Kind           id.KindCode `json:"kind"`
}

// OverrideEntry forces a kind for one specific voter, bypassing all
// department and pattern rules. It exists to correct externally wrong
// or missing department data for individuals.
type OverrideEntry struct {
	StudentID id.StudentID `json:"student_id"`
	Kind      id.KindCode  `json:"kind"`
}
