package models

import (
	id "voteauth/pkg/domain"
)

// Catalog is the set of valid eligibility kinds for one election,
// keyed by kind code with the station-facing display name as value.
// A classification result outside the catalog means "ineligible".
type Catalog map[id.KindCode]string

// Valid reports whether kind may draw from a code pool.
func (c Catalog) Valid(kind id.KindCode) bool {
	_, ok := c[kind]
	return ok
}

// Name returns the display name for a kind, or the empty string for
// kinds outside the catalog.
func (c Catalog) Name(kind id.KindCode) string {
	return c[kind]
}

// Kinds returns all valid kind codes, in no particular order.
func (c Catalog) Kinds() []id.KindCode {
	kinds := make([]id.KindCode, 0, len(c))
	for k := range c {
		kinds = append(kinds, k)
	}
	return kinds
}
