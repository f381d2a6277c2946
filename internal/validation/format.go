package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ariel-frischer/specguard/internal/config"
	"github.com/ariel-frischer/specguard/internal/document"
)

// FormatValidator performs single-document structural checks: required
// headings, requirement and scenario heading patterns, minimum scenario
// count, and WHEN/THEN clause presence.
type FormatValidator struct {
	rules       config.Rules
	reqPattern  *regexp.Regexp // nil when the configured pattern is invalid
	scenPattern *regexp.Regexp // nil when the configured pattern is invalid
}

// NewFormatValidator builds a format validator for one rule preset.
// An invalid configured pattern disables the affected check rather than
// failing the whole run.
func NewFormatValidator(rules config.Rules) *FormatValidator {
	v := &FormatValidator{rules: rules}
	if re, err := regexp.Compile(rules.RequirementPattern); err == nil {
		v.reqPattern = re
	}
	if re, err := regexp.Compile(rules.ScenarioPattern); err == nil {
		v.scenPattern = re
	}
	return v
}

// ValidateFile loads and validates the document at path. An unreadable file
// yields a single high-severity invalid_structure error.
func (v *FormatValidator) ValidateFile(path string) *ValidationResult {
	result := &ValidationResult{}

	doc, err := document.Load(path)
	if err != nil {
		result.Add(&ValidationError{
			Message:  fmt.Sprintf("cannot read file: %v", err),
			File:     path,
			Severity: SeverityHigh,
			Category: CategoryInvalidStructure,
		})
		return result
	}
	return v.Validate(doc)
}

// Validate runs all structural checks over a loaded document. Violations
// accumulate; none abort the scan. An empty document yields a single
// high-severity empty_content error and no further checks.
func (v *FormatValidator) Validate(doc *document.Document) *ValidationResult {
	result := &ValidationResult{}

	if doc.IsEmpty() {
		result.Add(&ValidationError{
			Message:  "document is empty",
			File:     doc.Path,
			Severity: SeverityHigh,
			Category: CategoryEmptyContent,
		})
		return result
	}

	var headings []string
	scenarioCount := 0
	inRequirements := false
	inList := false
	seenWhen := false
	seenThen := false

	for _, ev := range doc.Events() {
		switch ev.Kind {
		case document.EventHeading:
			headings = append(headings, ev.Text)
			switch ev.Level {
			case 2:
				inRequirements = strings.HasPrefix(strings.ToLower(ev.Text), "requirements")
			case 3:
				if inRequirements && v.reqPattern != nil && !v.reqPattern.MatchString(ev.Text) {
					result.Add(&ValidationError{
						Message:  fmt.Sprintf("requirement heading %q does not match pattern %s", ev.Text, v.rules.RequirementPattern),
						File:     doc.Path,
						Line:     ev.Line,
						Severity: severityFor(CategoryInvalidRequirementFormat, v.rules.Severity),
						Category: CategoryInvalidRequirementFormat,
					})
				}
			case 4:
				scenarioCount++
				if v.scenPattern != nil && !v.scenPattern.MatchString(ev.Text) {
					result.Add(&ValidationError{
						Message:  fmt.Sprintf("scenario heading %q does not match pattern %s", ev.Text, v.rules.ScenarioPattern),
						File:     doc.Path,
						Line:     ev.Line,
						Severity: SeverityMedium,
						Category: CategoryInvalidStructure,
					})
				}
			}
		case document.EventListStart:
			inList = true
		case document.EventListEnd:
			inList = false
		case document.EventListItem:
			// WHEN/THEN markers only count inside list blocks.
			if inList {
				if strings.Contains(ev.Text, "WHEN") {
					seenWhen = true
				}
				if strings.Contains(ev.Text, "THEN") {
					seenThen = true
				}
			}
		}
	}

	for _, required := range v.rules.RequiredHeadings {
		if !headingPresent(headings, required) {
			result.Add(&ValidationError{
				Message:  fmt.Sprintf("missing required heading: %s", required),
				File:     doc.Path,
				Severity: severityFor(CategoryMissingHeading, v.rules.Severity),
				Category: CategoryMissingHeading,
			})
		}
	}

	if scenarioCount < v.rules.MinScenarios {
		result.Add(&ValidationError{
			Message:  fmt.Sprintf("document has %d acceptance scenarios, minimum is %d", scenarioCount, v.rules.MinScenarios),
			File:     doc.Path,
			Severity: severityFor(CategoryMissingScenario, v.rules.Severity),
			Category: CategoryMissingScenario,
		})
	}

	if v.rules.RequireWhenThen && !(seenWhen && seenThen) {
		result.Add(&ValidationError{
			Message:  "no scenario contains both WHEN and THEN clauses",
			File:     doc.Path,
			Severity: severityFor(CategoryMissingWhenThen, v.rules.Severity),
			Category: CategoryMissingWhenThen,
		})
	}

	return result
}

// headingPresent reports whether a required heading is present using a
// case-insensitive exact-or-prefix match.
func headingPresent(headings []string, required string) bool {
	want := strings.ToLower(required)
	for _, h := range headings {
		got := strings.ToLower(h)
		if got == want || strings.HasPrefix(got, want) {
			return true
		}
	}
	return false
}
