// Package validation implements the format, schema, semantic, and
// consistency validators for workflow documents, the auto-fixer for the
// mechanically repairable error categories, and the aggregate instance
// report consumed by external gating logic.
package validation

import (
	"fmt"
	"sort"
	"strings"
)

// Severity classifies how serious a validation error is. Workflow gating is
// computed externally from severity counts; this package only reports.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Category is the closed taxonomy of validation error categories. New
// categories must be added to defaultSeverity and fixableCategories so every
// consumer is updated deliberately.
type Category string

const (
	CategoryMissingHeading           Category = "missing_heading"
	CategoryMissingWhenThen          Category = "missing_when_then"
	CategoryMissingScenario          Category = "missing_scenario"
	CategoryInvalidRequirementFormat Category = "invalid_requirement_format"
	CategoryDuplicateRequirement     Category = "duplicate_requirement"
	CategoryBrokenReference          Category = "broken_reference"
	CategoryCircularDependency       Category = "circular_dependency"
	CategoryEmptyContent             Category = "empty_content"
	CategoryInvalidStructure         Category = "invalid_structure"
	CategoryInconsistency            Category = "inconsistency"
)

// defaultSeverity maps each category to its severity when the rule
// configuration carries no override and the check itself does not pin one.
var defaultSeverity = map[Category]Severity{
	CategoryMissingHeading:           SeverityHigh,
	CategoryMissingWhenThen:          SeverityMedium,
	CategoryMissingScenario:          SeverityMedium,
	CategoryInvalidRequirementFormat: SeverityMedium,
	CategoryDuplicateRequirement:     SeverityHigh,
	CategoryBrokenReference:          SeverityHigh,
	CategoryCircularDependency:       SeverityHigh,
	CategoryEmptyContent:             SeverityHigh,
	CategoryInvalidStructure:         SeverityHigh,
	CategoryInconsistency:            SeverityLow,
}

// fixableCategories marks the categories the auto-fixer can repair.
var fixableCategories = map[Category]bool{
	CategoryMissingHeading:  true,
	CategoryMissingWhenThen: true,
	CategoryMissingScenario: true,
}

// Fixable reports whether the auto-fixer can repair errors of this category.
func (c Category) Fixable() bool {
	return fixableCategories[c]
}

// DefaultSeverity returns the built-in severity for the category.
func (c Category) DefaultSeverity() Severity {
	if sev, ok := defaultSeverity[c]; ok {
		return sev
	}
	return SeverityMedium
}

// Categories returns all known categories in a stable order.
func Categories() []Category {
	cats := make([]Category, 0, len(defaultSeverity))
	for c := range defaultSeverity {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	return cats
}

// ValidationError is a single validation finding with location and context.
type ValidationError struct {
	Message  string
	File     string
	Line     int // 1-based, 0 when the error has no line
	Severity Severity
	Category Category
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.File)
	if e.Line > 0 {
		sb.WriteString(fmt.Sprintf(":%d", e.Line))
	}
	sb.WriteString(fmt.Sprintf(": [%s] %s", e.Severity, e.Message))
	return sb.String()
}

// ValidationResult is the ordered list of errors from one validation pass.
type ValidationResult struct {
	Errors []*ValidationError
}

// Add appends an error to the result.
func (r *ValidationResult) Add(err *ValidationError) {
	r.Errors = append(r.Errors, err)
}

// Merge appends all errors from another result, preserving order.
func (r *ValidationResult) Merge(other *ValidationResult) {
	if other != nil {
		r.Errors = append(r.Errors, other.Errors...)
	}
}

// HasErrors reports whether any error was recorded.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Counts returns the number of errors per severity.
func (r *ValidationResult) Counts() (high, medium, low int) {
	for _, err := range r.Errors {
		switch err.Severity {
		case SeverityHigh:
			high++
		case SeverityMedium:
			medium++
		case SeverityLow:
			low++
		}
	}
	return high, medium, low
}

// Valid reports whether the result passes. In normal mode only high-severity
// errors fail validation; in strict mode any error does.
func (r *ValidationResult) Valid(strict bool) bool {
	if strict {
		return len(r.Errors) == 0
	}
	high, _, _ := r.Counts()
	return high == 0
}

// severityFor resolves the severity for a category against the configured
// overrides, falling back to the built-in default.
func severityFor(category Category, overrides map[string]string) Severity {
	if overrides != nil {
		switch overrides[string(category)] {
		case string(SeverityHigh):
			return SeverityHigh
		case string(SeverityMedium):
			return SeverityMedium
		case string(SeverityLow):
			return SeverityLow
		}
	}
	return category.DefaultSeverity()
}
