// Package classify maps a resolved student identity to an eligibility
// kind. The registry is an explicit ordered list of rule descriptors
// walked once per request; precedence is override lookup, then
// department-pattern rules, then the category-wrapped department table
// lookup.
package classify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"voteauth/internal/vote/models"
	id "voteauth/pkg/domain"
	dErrors "voteauth/pkg/domain-errors"
	"voteauth/pkg/platform/sentinel"
)

// OverrideTable looks up per-voter forced kinds.
type OverrideTable interface {
	KindByStudent(ctx context.Context, studentID id.StudentID) (id.KindCode, error)
}

// DepartmentTable looks up the default kind for a department code.
type DepartmentTable interface {
	KindByDepartment(ctx context.Context, departmentCode string) (id.KindCode, error)
}

// Categories describes the student-type code sets the rules branch on.
// Type codes come from the external resolver; the sets are election
// configuration, injected rather than ambient.
type Categories struct {
	Undergraduate map[string]bool
	Graduate      map[string]bool
	General       map[string]bool
}

// IsUndergraduate reports whether the type code belongs to the
// undergraduate category.
func (c Categories) IsUndergraduate(typeCode string) bool {
	return c.Undergraduate[typeCode]
}

// IsGraduate reports whether the type code belongs to the graduate
// category.
func (c Categories) IsGraduate(typeCode string) bool {
	return c.Graduate[typeCode]
}

// IsGeneral reports whether the type code counts as "general" for the
// pattern rules' decision tables.
func (c Categories) IsGeneral(typeCode string) bool {
	return c.General[typeCode]
}

// Rule is one department-pattern classification rule. Scope restricts
// when the rule applies; Decide computes the kind directly from the
// identity, without any table lookup. Rules are evaluated in
// registration order and the first whose scope matches wins.
type Rule struct {
	Name   string
	Scope  *regexp.Regexp
	Decide func(cats Categories, info models.StudentInfo) id.KindCode
}

// Matches reports whether the rule's scope covers the department.
func (r Rule) Matches(department string) bool {
	return r.Scope != nil && r.Scope.MatchString(department)
}

// QuadrantRule builds a rule whose decision table spans both binary
// axes: student category (undergraduate vs not) and general vs
// non-general type.
func QuadrantRule(name, pattern string, undergradGeneral, undergrad, gradGeneral, grad id.KindCode) Rule {
	return Rule{
		Name:  name,
		Scope: regexp.MustCompile(pattern),
		Decide: func(cats Categories, info models.StudentInfo) id.KindCode {
			if cats.IsUndergraduate(info.TypeCode) {
				if cats.IsGeneral(info.TypeCode) {
					return undergradGeneral
				}
				return undergrad
			}
			if cats.IsGeneral(info.TypeCode) {
				return gradGeneral
			}
			return grad
		},
	}
}

// GeneralSplitRule builds a rule that only branches on the general vs
// non-general axis.
func GeneralSplitRule(name, pattern string, general, other id.KindCode) Rule {
	return Rule{
		Name:  name,
		Scope: regexp.MustCompile(pattern),
		Decide: func(cats Categories, info models.StudentInfo) id.KindCode {
			if cats.IsGeneral(info.TypeCode) {
				return general
			}
			return other
		},
	}
}

// Classifier dispatches an identity assertion through the registry and
// validates the result against the kind catalog.
type Classifier struct {
	overrides   OverrideTable
	departments DepartmentTable
	rules       []Rule
	cats        Categories
	defaults    CategoryDefaults
	catalog     models.Catalog
	logger      *slog.Logger
}

// CategoryDefaults are the synthetic fallback kinds for voters whose
// category matches a wrapper but whose department has no table entry.
type CategoryDefaults struct {
	Undergraduate id.KindCode
	Graduate      id.KindCode
}

// Option configures a Classifier.
type Option func(*Classifier)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) {
		c.logger = logger
	}
}

func WithRules(rules []Rule) Option {
	return func(c *Classifier) {
		c.rules = rules
	}
}

// New constructs a Classifier.
func New(overrides OverrideTable, departments DepartmentTable, catalog models.Catalog, cats Categories, defaults CategoryDefaults, opts ...Option) (*Classifier, error) {
	if overrides == nil {
		return nil, fmt.Errorf("override table is required")
	}
	if departments == nil {
		return nil, fmt.Errorf("department table is required")
	}
	if len(catalog) == 0 {
		return nil, fmt.Errorf("kind catalog is required")
	}
	c := &Classifier{
		overrides:   overrides,
		departments: departments,
		cats:        cats,
		defaults:    defaults,
		catalog:     catalog,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Classify produces the eligibility kind for one identity assertion, or
// an unqualified error. No state is mutated; the result is always a
// member of the catalog.
func (c *Classifier) Classify(ctx context.Context, info models.StudentInfo) (id.KindCode, error) {
	kind, err := c.resolve(ctx, info)
	if err != nil {
		return "", err
	}
	if !c.catalog.Valid(kind) {
		c.log().WarnContext(ctx, "classification outside catalog",
			"student_id", info.ID.String(),
			"department", info.Department,
			"kind", kind.String(),
		)
		return "", dErrors.New(dErrors.CodeUnqualified, "classified kind is not in the catalog")
	}
	return kind, nil
}

func (c *Classifier) resolve(ctx context.Context, info models.StudentInfo) (id.KindCode, error) {
	// Per-voter overrides win unconditionally; they correct externally
	// wrong or missing department data for specific individuals.
	kind, err := c.overrides.KindByStudent(ctx, info.ID)
	switch {
	case err == nil:
		return kind, nil
	case !errors.Is(err, sentinel.ErrNotFound):
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "override lookup failed")
	}

	for _, rule := range c.rules {
		if rule.Matches(info.Department) {
			return rule.Decide(c.cats, info), nil
		}
	}

	kind, err = c.departments.KindByDepartment(ctx, info.Department)
	switch {
	case err == nil:
		return kind, nil
	case !errors.Is(err, sentinel.ErrNotFound):
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "department lookup failed")
	}

	// Category wrappers provide safe defaults for students whose
	// department has no table entry yet.
	switch {
	case c.cats.IsUndergraduate(info.TypeCode):
		return c.defaults.Undergraduate, nil
	case c.cats.IsGraduate(info.TypeCode):
		return c.defaults.Graduate, nil
	}
	return "", dErrors.New(dErrors.CodeUnqualified, "no classification rule matched")
}

func (c *Classifier) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}
