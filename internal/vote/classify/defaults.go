package classify

import (
	"voteauth/internal/vote/models"
	id "voteauth/pkg/domain"
)

// This file carries the election configuration as data: the default
// rule registry, category sets, fallback kinds and the kind catalog.
// Deployments override any of it through the classifier constructor;
// nothing here is ambient state.

// DefaultRules returns the pattern-scoped rules in their priority
// order. Each rule's decision table is reproduced from the election
// configuration, not derived.
func DefaultRules() []Rule {
	return []Rule{
		// College of Social Science departments compute kind from the
		// two type axes instead of a maintained table; the whole 3xxx
		// range is rule-governed.
		QuadrantRule("social-science", `^3\w{3}$`, "31", "3U", "32", "3G"),
		// College of Medicine, single department.
		GeneralSplitRule("medicine", `^4010$`, "T0", "4U"),
	}
}

// DefaultCategories returns the student-type category sets.
func DefaultCategories() Categories {
	return Categories{
		Undergraduate: map[string]bool{"UG1": true, "UG2": true},
		Graduate:      map[string]bool{"GR1": true, "GR2": true},
		General:       map[string]bool{"UG2": true, "GR2": true},
	}
}

// DefaultCategoryDefaults returns the synthetic kinds for voters whose
// category wrapper matches but whose department has no table entry.
func DefaultCategoryDefaults() CategoryDefaults {
	return CategoryDefaults{Undergraduate: "NU", Graduate: "NG"}
}

// DefaultCatalog returns the valid kinds with station-facing names.
func DefaultCatalog() models.Catalog {
	return models.Catalog{
		id.KindCode("31"): "社會科學院大學部(一般)",
		id.KindCode("3U"): "社會科學院大學部",
		id.KindCode("32"): "社會科學院研究所(一般)",
		id.KindCode("3G"): "社會科學院研究所",
		id.KindCode("T0"): "醫學院(一般)",
		id.KindCode("4U"): "醫學院大學部",
		id.KindCode("NU"): "大學部(未分類)",
		id.KindCode("NG"): "研究所(未分類)",
	}
}
