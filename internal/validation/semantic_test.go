package validation

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/ariel-frischer/specguard/internal/config"
	"github.com/ariel-frischer/specguard/internal/document"
	"github.com/ariel-frischer/specguard/internal/testutil"
)

func TestSemanticValidator_ValidSpec(t *testing.T) {
	v := NewSemanticValidator(config.Default().Spec)
	result := v.Validate(document.Parse("spec.md", testutil.ValidSpec))

	if result.HasErrors() {
		t.Errorf("expected no errors, got %d:", len(result.Errors))
		for _, err := range result.Errors {
			t.Logf("  - %s", err.Error())
		}
	}
}

func TestSemanticValidator_DuplicateRequirementIDs(t *testing.T) {
	doc := document.Parse("spec.md", `## Requirements

### R1: Foo

### R1: Bar
`)
	result := NewSemanticValidator(config.Default().Spec).Validate(doc)

	if got := countCategory(result, CategoryDuplicateRequirement); got != 1 {
		t.Fatalf("duplicate_requirement count = %d, want 1", got)
	}
	err := result.Errors[0]
	if err.Line != 5 {
		t.Errorf("line = %d, want 5 (the repeat, not the original)", err.Line)
	}
	if !strings.Contains(err.Message, "first defined at line 3") {
		t.Errorf("message should cite the first definition, got: %s", err.Message)
	}
	if err.Severity != SeverityHigh {
		t.Errorf("severity = %s, want %s", err.Severity, SeverityHigh)
	}
}

func TestSemanticValidator_EmptyRequirementTitle(t *testing.T) {
	doc := document.Parse("spec.md", "## Requirements\n\n### R1:\n")
	result := NewSemanticValidator(config.Default().Spec).Validate(doc)

	if len(result.Errors) != 1 {
		t.Fatalf("expected exactly one error, got %d", len(result.Errors))
	}
	err := result.Errors[0]
	if err.Category != CategoryEmptyContent || err.Severity != SeverityHigh {
		t.Errorf("got %s/%s, want %s/%s", err.Category, err.Severity, CategoryEmptyContent, SeverityHigh)
	}
}

func TestSemanticValidator_PlaceholderTitle(t *testing.T) {
	doc := document.Parse("spec.md", "## Requirements\n\n### R1: TBD flesh this out\n")
	result := NewSemanticValidator(config.Default().Spec).Validate(doc)

	if len(result.Errors) != 1 {
		t.Fatalf("expected exactly one error, got %d", len(result.Errors))
	}
	err := result.Errors[0]
	if err.Category != CategoryEmptyContent || err.Severity != SeverityMedium {
		t.Errorf("got %s/%s, want %s/%s", err.Category, err.Severity, CategoryEmptyContent, SeverityMedium)
	}
	if !strings.Contains(err.Message, "TBD") {
		t.Errorf("message should name the placeholder, got: %s", err.Message)
	}
}

func TestSemanticValidator_BrokenLink(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "spec.md", `## Overview

See [the design](design.md) and [upstream](https://example.com/docs)
and [section](#overview) and [contact](mailto:dev@example.com).
`)

	doc, err := document.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	result := NewSemanticValidator(config.Default().Spec).Validate(doc)

	// Only the relative design.md link is checked, and it does not exist.
	if got := countCategory(result, CategoryBrokenReference); got != 1 {
		t.Fatalf("broken_reference count = %d, want 1", got)
	}
	if !strings.Contains(result.Errors[0].Message, "design.md") {
		t.Errorf("unexpected message: %s", result.Errors[0].Message)
	}
	if result.Errors[0].Line != 3 {
		t.Errorf("line = %d, want 3", result.Errors[0].Line)
	}
}

func TestSemanticValidator_LinkToExistingFile(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "design.md", "## Design\n")
	path := testutil.WriteFile(t, dir, "spec.md", "See [the design](design.md#Design).\n")

	doc, err := document.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	result := NewSemanticValidator(config.Default().Spec).Validate(doc)

	if result.HasErrors() {
		t.Errorf("expected no errors, got %v", result.Errors)
	}
}

func TestSemanticValidator_BatchCrossFileDuplicates(t *testing.T) {
	a := document.Parse(filepath.Join("specs", "a.md"), "## Requirements\n\n### R1: Foo\n")
	b := document.Parse(filepath.Join("specs", "b.md"), "## Requirements\n\n### R1: Bar\n")

	result := NewSemanticValidator(config.Default().Spec).ValidateBatch([]*document.Document{a, b})

	if got := countCategory(result, CategoryDuplicateRequirement); got != 1 {
		t.Fatalf("duplicate_requirement count = %d, want 1", got)
	}
	err := result.Errors[0]
	if err.File != b.Path {
		t.Errorf("file = %s, want %s (the later document)", err.File, b.Path)
	}
	if !strings.Contains(err.Message, a.Path+":3") {
		t.Errorf("message should cite the first definition, got: %s", err.Message)
	}
}

func TestSemanticValidator_BatchDoesNotDoubleFlagWithinDocRepeats(t *testing.T) {
	// A within-document repeat is flagged once by the per-document pass;
	// the cross-file pass must not add a second error for the same id.
	a := document.Parse(filepath.Join("specs", "a.md"), `## Requirements

### R1: Foo

### R1: Bar
`)
	result := NewSemanticValidator(config.Default().Spec).ValidateBatch([]*document.Document{a})

	if got := countCategory(result, CategoryDuplicateRequirement); got != 1 {
		t.Errorf("duplicate_requirement count = %d, want 1", got)
	}
}
