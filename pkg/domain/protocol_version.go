package domain

import (
	dErrors "voteauth/pkg/domain-errors"
)

// ProtocolVersion represents a station protocol version string.
// This is a domain primitive that enforces validity at parse time.
type ProtocolVersion string

// Supported protocol versions.
const (
	ProtocolV1 ProtocolVersion = "1"
)

var supportedVersions = map[ProtocolVersion]bool{
	ProtocolV1: true,
}

// ParseProtocolVersion validates and returns a ProtocolVersion.
// Unknown versions are rejected so stale station firmware fails loudly.
func ParseProtocolVersion(s string) (ProtocolVersion, error) {
	v := ProtocolVersion(s)
	if !supportedVersions[v] {
		return "", dErrors.New(dErrors.CodeVersionNotSupported, "unsupported protocol version")
	}
	return v, nil
}

func (v ProtocolVersion) String() string {
	return string(v)
}

// SupportedVersions returns all currently supported protocol versions.
func SupportedVersions() []ProtocolVersion {
	return []ProtocolVersion{ProtocolV1}
}
