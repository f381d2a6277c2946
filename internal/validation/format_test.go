package validation

import (
	"path/filepath"
	"testing"

	"github.com/ariel-frischer/specguard/internal/config"
	"github.com/ariel-frischer/specguard/internal/document"
	"github.com/ariel-frischer/specguard/internal/testutil"
)

func countCategory(result *ValidationResult, category Category) int {
	n := 0
	for _, err := range result.Errors {
		if err.Category == category {
			n++
		}
	}
	return n
}

func TestFormatValidator_ValidSpec(t *testing.T) {
	v := NewFormatValidator(config.Default().Spec)
	result := v.Validate(document.Parse("spec.md", testutil.ValidSpec))

	if result.HasErrors() {
		t.Errorf("expected no errors, got %d:", len(result.Errors))
		for _, err := range result.Errors {
			t.Logf("  - %s", err.Error())
		}
	}
}

func TestFormatValidator_MissingHeadingsAndScenario(t *testing.T) {
	// A spec with only a requirements section: Overview and Acceptance
	// Criteria are missing and there is no scenario heading.
	doc := document.Parse("spec.md", "## Requirements\n\n### R1: Foo\n")
	result := NewFormatValidator(config.Default().Spec).Validate(doc)

	if got := countCategory(result, CategoryMissingHeading); got != 2 {
		t.Errorf("missing_heading count = %d, want 2", got)
	}
	if got := countCategory(result, CategoryMissingScenario); got != 1 {
		t.Errorf("missing_scenario count = %d, want 1", got)
	}
	if got := countCategory(result, CategoryMissingWhenThen); got != 1 {
		t.Errorf("missing_when_then count = %d, want 1", got)
	}
}

func TestFormatValidator_EmptyFile(t *testing.T) {
	doc := document.Parse("spec.md", "  \n\n")
	result := NewFormatValidator(config.Default().Spec).Validate(doc)

	if len(result.Errors) != 1 {
		t.Fatalf("expected exactly one error, got %d", len(result.Errors))
	}
	err := result.Errors[0]
	if err.Category != CategoryEmptyContent {
		t.Errorf("category = %s, want %s", err.Category, CategoryEmptyContent)
	}
	if err.Severity != SeverityHigh {
		t.Errorf("severity = %s, want %s", err.Severity, SeverityHigh)
	}
}

func TestFormatValidator_UnreadableFile(t *testing.T) {
	v := NewFormatValidator(config.Default().Spec)
	result := v.ValidateFile(filepath.Join(t.TempDir(), "absent.md"))

	if len(result.Errors) != 1 {
		t.Fatalf("expected exactly one error, got %d", len(result.Errors))
	}
	if result.Errors[0].Category != CategoryInvalidStructure {
		t.Errorf("category = %s, want %s", result.Errors[0].Category, CategoryInvalidStructure)
	}
	if result.Errors[0].Severity != SeverityHigh {
		t.Errorf("severity = %s, want %s", result.Errors[0].Severity, SeverityHigh)
	}
}

func TestFormatValidator_RequiredHeadingPrefixMatch(t *testing.T) {
	// Case-insensitive exact-or-prefix match: "requirements (functional)"
	// satisfies the required heading "Requirements".
	doc := document.Parse("spec.md", `## overview

## requirements (functional)

### R1: Foo

## ACCEPTANCE CRITERIA

#### Scenario: Works

- WHEN input arrives
- THEN output follows
`)
	result := NewFormatValidator(config.Default().Spec).Validate(doc)

	if got := countCategory(result, CategoryMissingHeading); got != 0 {
		t.Errorf("missing_heading count = %d, want 0", got)
		for _, err := range result.Errors {
			t.Logf("  - %s", err.Error())
		}
	}
}

func TestFormatValidator_InvalidRequirementHeading(t *testing.T) {
	doc := document.Parse("spec.md", `## Overview

## Requirements

### Requirement one

## Acceptance Criteria

#### Scenario: Works

- WHEN input arrives
- THEN output follows
`)
	result := NewFormatValidator(config.Default().Spec).Validate(doc)

	if got := countCategory(result, CategoryInvalidRequirementFormat); got != 1 {
		t.Fatalf("invalid_requirement_format count = %d, want 1", got)
	}
	if result.Errors[0].Line != 5 {
		t.Errorf("line = %d, want 5", result.Errors[0].Line)
	}
}

func TestFormatValidator_HeadingsOutsideRequirementsIgnored(t *testing.T) {
	doc := document.Parse("proposal.md", `## Overview

### Design sketch

Not a requirement, proposal sections are free-form.
`)
	result := NewFormatValidator(config.Default().Proposal).Validate(doc)

	if got := countCategory(result, CategoryInvalidRequirementFormat); got != 0 {
		t.Errorf("invalid_requirement_format count = %d, want 0", got)
	}
}

func TestFormatValidator_WhenThenOnlyCountsInsideLists(t *testing.T) {
	// WHEN/THEN appearing in prose does not satisfy the clause check.
	doc := document.Parse("spec.md", `## Overview

## Requirements

### R1: Foo

## Acceptance Criteria

#### Scenario: Works

WHEN and THEN appear here in prose, outside any list block.
`)
	result := NewFormatValidator(config.Default().Spec).Validate(doc)

	if got := countCategory(result, CategoryMissingWhenThen); got != 1 {
		t.Errorf("missing_when_then count = %d, want 1", got)
	}
}

func TestFormatValidator_SeverityOverride(t *testing.T) {
	rules := config.Default().Spec
	rules.Severity = map[string]string{"missing_heading": "low"}

	doc := document.Parse("spec.md", "## Requirements\n\n### R1: Foo\n")
	result := NewFormatValidator(rules).Validate(doc)

	for _, err := range result.Errors {
		if err.Category == CategoryMissingHeading && err.Severity != SeverityLow {
			t.Errorf("severity = %s, want %s", err.Severity, SeverityLow)
		}
	}
}

func TestFormatValidator_InvalidPatternSkipsCheck(t *testing.T) {
	rules := config.Default().Spec
	rules.RequirementPattern = `R[\d` // does not compile

	doc := document.Parse("spec.md", `## Overview

## Requirements

### completely free-form heading

## Acceptance Criteria

#### Scenario: Works

- WHEN input arrives
- THEN output follows
`)
	result := NewFormatValidator(rules).Validate(doc)

	if got := countCategory(result, CategoryInvalidRequirementFormat); got != 0 {
		t.Errorf("invalid_requirement_format count = %d, want 0 (check skipped)", got)
	}
}

func TestFormatValidator_MinScenarios(t *testing.T) {
	rules := config.Default().Spec
	rules.MinScenarios = 2

	doc := document.Parse("spec.md", testutil.ValidSpec)
	result := NewFormatValidator(rules).Validate(doc)

	if got := countCategory(result, CategoryMissingScenario); got != 1 {
		t.Errorf("missing_scenario count = %d, want 1", got)
	}
}
