package validation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ariel-frischer/specguard/internal/testutil"
)

func TestValid_StrictAndNormal(t *testing.T) {
	result := &ValidationResult{}
	result.Add(&ValidationError{Severity: SeverityLow, Category: CategoryInconsistency})

	if !result.Valid(false) {
		t.Error("low severity must pass in normal mode")
	}
	if result.Valid(true) {
		t.Error("any error must fail in strict mode")
	}

	result.Add(&ValidationError{Severity: SeverityHigh, Category: CategoryBrokenReference})
	if result.Valid(false) {
		t.Error("high severity must fail in normal mode")
	}
}

func TestBuildReport_Shape(t *testing.T) {
	result := &ValidationResult{}
	result.Add(&ValidationError{
		Message:  "broken link: x.md does not exist",
		File:     "spec.md",
		Line:     4,
		Severity: SeverityHigh,
		Category: CategoryBrokenReference,
	})
	result.Add(&ValidationError{
		Message:  "spec specs/b.md exists but is not declared in the proposal",
		File:     "proposal.md",
		Severity: SeverityLow,
		Category: CategoryInconsistency,
	})

	report := BuildReport(result, false, nil)
	if report.Valid {
		t.Error("report should be invalid")
	}
	if report.Counts.High != 1 || report.Counts.Medium != 0 || report.Counts.Low != 1 {
		t.Errorf("counts = %+v", report.Counts)
	}

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	// Empty stale list marshals as [] rather than null, and zero lines are
	// omitted entirely.
	if !strings.Contains(out, `"stale_files":[]`) {
		t.Errorf("stale_files should marshal as an empty array: %s", out)
	}
	if strings.Contains(out, `"line":0`) {
		t.Errorf("zero line should be omitted: %s", out)
	}
	if !strings.Contains(out, `"line":4`) {
		t.Errorf("line 4 missing: %s", out)
	}
}

func TestBuildReport_EmptyResult(t *testing.T) {
	report := BuildReport(&ValidationResult{}, true, nil)
	if !report.Valid {
		t.Error("empty result should be valid")
	}
	if report.Errors == nil {
		t.Error("errors should be an empty slice, not nil")
	}
}

func TestInstanceValidator_ValidInstance(t *testing.T) {
	dir := testutil.CreateInstance(t)
	result := NewInstanceValidator(nil, "").Validate(dir)

	if result.HasErrors() {
		t.Errorf("expected no errors, got %d:", len(result.Errors))
		for _, err := range result.Errors {
			t.Logf("  - %s", err.Error())
		}
	}
}

func TestInstanceValidator_Deterministic(t *testing.T) {
	dir := testutil.CreateInstance(t)
	// Break things in several files so ordering is observable.
	testutil.WriteFile(t, dir, "specs/auth-flow.md", "## Requirements\n\n### R1: Foo\n")
	testutil.WriteFile(t, dir, "specs/billing.md", "## Requirements\n\n### R1: Foo\n")

	v := NewInstanceValidator(nil, "")
	first := v.Validate(dir)
	second := NewInstanceValidator(nil, "").Validate(dir)

	if len(first.Errors) != len(second.Errors) {
		t.Fatalf("error counts differ: %d vs %d", len(first.Errors), len(second.Errors))
	}
	for i := range first.Errors {
		if first.Errors[i].Error() != second.Errors[i].Error() {
			t.Errorf("error %d differs:\n  %s\n  %s", i, first.Errors[i].Error(), second.Errors[i].Error())
		}
	}
}

func TestInstanceValidator_UnreadableSiblingDoesNotAbort(t *testing.T) {
	dir := testutil.CreateInstance(t)
	testutil.WriteFile(t, dir, "specs/broken.md", "")

	result := NewInstanceValidator(nil, "").Validate(dir)

	// The empty sibling is flagged; auth-flow.md is still validated cleanly.
	if got := countCategory(result, CategoryEmptyContent); got != 1 {
		t.Errorf("empty_content count = %d, want 1", got)
	}
	for _, err := range result.Errors {
		if strings.Contains(err.File, "auth-flow.md") {
			t.Errorf("unexpected error for the valid sibling: %s", err.Error())
		}
	}
}

func TestInstanceValidator_CrossFileDuplicates(t *testing.T) {
	dir := testutil.CreateInstance(t)
	// billing.md sorts after auth-flow.md and reuses its requirement ids.
	testutil.WriteFile(t, dir, "specs/billing.md", testutil.ValidSpec)

	result := NewInstanceValidator(nil, "").Validate(dir)

	if got := countCategory(result, CategoryDuplicateRequirement); got != 2 {
		t.Errorf("duplicate_requirement count = %d, want 2 (R1 and R2)", got)
	}
	for _, err := range result.Errors {
		if err.Category == CategoryDuplicateRequirement && !strings.Contains(err.File, "billing.md") {
			t.Errorf("the later file should carry the duplicate, got %s", err.File)
		}
	}
}

func TestInstanceValidator_TemplatesSkipped(t *testing.T) {
	dir := testutil.CreateInstance(t)
	testutil.WriteFile(t, dir, "specs/_template.md", "")

	result := NewInstanceValidator(nil, "").Validate(dir)
	if result.HasErrors() {
		t.Errorf("expected the empty template to be skipped, got %v", result.Errors)
	}
}
