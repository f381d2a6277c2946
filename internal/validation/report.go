package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ariel-frischer/specguard/internal/config"
	"github.com/ariel-frischer/specguard/internal/document"
)

// Report is the structured error report consumed by external callers.
type Report struct {
	Valid      bool          `json:"valid"`
	Counts     ReportCounts  `json:"counts"`
	Errors     []ReportError `json:"errors"`
	StaleFiles []string      `json:"stale_files"`
}

// ReportCounts holds per-severity error counts.
type ReportCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// ReportError is one validation error in the external report.
type ReportError struct {
	Message  string   `json:"message"`
	File     string   `json:"file"`
	Line     int      `json:"line,omitempty"`
	Severity Severity `json:"severity"`
}

// BuildReport converts a validation result into the external report shape.
func BuildReport(result *ValidationResult, strict bool, staleFiles []string) *Report {
	high, medium, low := result.Counts()
	report := &Report{
		Valid:      result.Valid(strict),
		Counts:     ReportCounts{High: high, Medium: medium, Low: low},
		Errors:     []ReportError{},
		StaleFiles: staleFiles,
	}
	if report.StaleFiles == nil {
		report.StaleFiles = []string{}
	}
	for _, err := range result.Errors {
		report.Errors = append(report.Errors, ReportError{
			Message:  err.Message,
			File:     err.File,
			Line:     err.Line,
			Severity: err.Severity,
		})
	}
	return report
}

// InstanceValidator runs the full validation stack over one workflow
// instance directory: per-file format, schema, and semantic checks in
// directory-walk order, batch duplicate detection, then the cross-document
// consistency checks. Files are validated sequentially so reported error
// ordering is deterministic.
type InstanceValidator struct {
	rules  *config.RuleSet
	schema *SchemaValidator
}

// NewInstanceValidator builds an instance validator. The schema cache is
// owned by this instance, never shared globally.
func NewInstanceValidator(rules *config.RuleSet, schemasDir string) *InstanceValidator {
	if rules == nil {
		rules = config.Default()
	}
	return &InstanceValidator{
		rules:  rules,
		schema: NewSchemaValidator(schemasDir),
	}
}

// Validate validates every workflow document under the instance directory.
// A single unreadable file degrades to one error and never aborts
// validation of its siblings.
func (v *InstanceValidator) Validate(dir string) *ValidationResult {
	result := &ValidationResult{}

	var docs []*document.Document
	for _, path := range instanceFiles(dir) {
		doc, err := document.Load(path)
		if err != nil {
			result.Add(&ValidationError{
				Message:  fmt.Sprintf("cannot read file: %v", err),
				File:     path,
				Severity: SeverityHigh,
				Category: CategoryInvalidStructure,
			})
			continue
		}

		kind := document.DetectKind(path, doc)
		rules := v.rules.ForKind(string(kind))

		result.Merge(NewFormatValidator(rules).Validate(doc))
		result.Merge(v.schema.Validate(doc))
		docs = append(docs, doc)
	}

	// Batch semantic validation: per-document checks plus duplicate ids
	// across the batch, first occurrence in walk order wins.
	semantic := NewSemanticValidator(v.rules.Spec)
	result.Merge(semantic.ValidateBatch(docs))

	result.Merge(NewConsistencyValidator(dir).Validate())
	return result
}

// instanceFiles returns the instance's documents in deterministic
// directory-walk order: the fixed root documents first, then the spec files
// sorted by name. Templates are excluded.
func instanceFiles(dir string) []string {
	var files []string
	for _, name := range []string{"proposal.md", "tasks.md", "challenge.md"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			files = append(files, path)
		}
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "specs", "*.md"))
	sort.Strings(matches)
	for _, match := range matches {
		if !document.IsTemplate(match) {
			files = append(files, match)
		}
	}
	return files
}
