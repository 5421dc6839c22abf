package models

import (
	id "voteauth/pkg/domain"
)

// StudentInfo is the identity assertion returned by the external
// resolver for one card token. It is transient request state and is
// never persisted.
type StudentInfo struct {
	ID         id.StudentID
	TypeCode   string
	Department string
	College    string
}
