// Package domain holds the primitive value types shared across the
// service. Each primitive is validated at parse time so downstream code
// can trust it without re-checking shape.
package domain

import (
	"regexp"
	"strconv"

	dErrors "voteauth/pkg/domain-errors"
)

// StudentID is the nine character voter identifier printed on a student
// card, minus the trailing revision digit.
type StudentID string

// CardToken is the opaque eight character key the card reader extracts
// for the external identity resolver.
type CardToken string

// Revision binds a record to a physical card issuance. Cards only ever
// carry revision 0 or 1, so this is a bounded enum rather than a
// counter.
type Revision int

const (
	RevisionInitial  Revision = 0
	RevisionReissued Revision = 1
)

// KindCode is an eligibility classification code. Validity against the
// election's kind catalog is a classifier concern; this type only
// guarantees shape.
type KindCode string

var (
	credentialPattern = regexp.MustCompile(`^[A-Z][0-9]{2}[0-9A-Z][0-9]{6}$`)
	cardTokenPattern  = regexp.MustCompile(`^[0-9a-f]{8}$`)
	kindCodePattern   = regexp.MustCompile(`^[0-9A-Z]{1,4}$`)
)

// ParseCredential splits a raw credential code into the student ID and
// the revision digit. The accepted shape is one uppercase letter, two
// digits, one alphanumeric digit and six digits; the trailing digit is
// the revision.
func ParseCredential(raw string) (StudentID, Revision, error) {
	if !credentialPattern.MatchString(raw) {
		return "", 0, dErrors.New(dErrors.CodeCardInvalid, "malformed credential code")
	}
	id := StudentID(raw[:len(raw)-1])
	rev := Revision(raw[len(raw)-1] - '0')
	if rev != RevisionInitial && rev != RevisionReissued {
		return "", 0, dErrors.New(dErrors.CodeCardInvalid, "unknown credential revision")
	}
	return id, rev, nil
}

// ParseCardToken validates the resolver lookup key presented by the
// station.
func ParseCardToken(raw string) (CardToken, error) {
	if !cardTokenPattern.MatchString(raw) {
		return "", dErrors.New(dErrors.CodeCardInvalid, "malformed card token")
	}
	return CardToken(raw), nil
}

// ParseKindCode validates the shape of an eligibility kind code.
func ParseKindCode(raw string) (KindCode, error) {
	if !kindCodePattern.MatchString(raw) {
		return "", dErrors.New(dErrors.CodeParamsInvalid, "malformed kind code")
	}
	return KindCode(raw), nil
}

func (s StudentID) String() string { return string(s) }

func (t CardToken) String() string { return string(t) }

func (k KindCode) String() string { return string(k) }

func (r Revision) String() string { return strconv.Itoa(int(r)) }

// IsNil reports whether the ID is empty.
func (s StudentID) IsNil() bool { return s == "" }
