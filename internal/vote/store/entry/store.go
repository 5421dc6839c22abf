// Package entry stores the immutable classification reference tables:
// department defaults and per-voter overrides. The tables are loaded
// out-of-band before the event opens and are read-only afterwards.
//
// Error contract: implementations return sentinel.ErrNotFound (wrapped)
// when no entry exists, nil on success, and wrapped infrastructure
// errors otherwise.
package entry

import (
	"context"

	id "voteauth/pkg/domain"
)

// DepartmentStore resolves a department code to its default kind.
type DepartmentStore interface {
	KindByDepartment(ctx context.Context, departmentCode string) (id.KindCode, error)
}

// OverrideStore resolves a per-voter forced kind.
type OverrideStore interface {
	KindByStudent(ctx context.Context, studentID id.StudentID) (id.KindCode, error)
}
