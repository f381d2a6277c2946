package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ariel-frischer/specguard/internal/config"
	"github.com/ariel-frischer/specguard/internal/document"
)

var (
	// markdownLinkPattern matches inline markdown links [text](target).
	markdownLinkPattern = regexp.MustCompile(`\[[^\]]*\]\(([^)\s]+)\)`)
	// placeholderPattern matches placeholder markers in requirement titles.
	placeholderPattern = regexp.MustCompile(`\b(TODO|TBD|FIXME)\b`)
)

// SemanticValidator performs single-document content checks: duplicate
// requirement identifiers, broken local links, and placeholder text.
// Batch mode additionally detects duplicate ids across documents.
type SemanticValidator struct {
	rules config.Rules
}

// NewSemanticValidator builds a semantic validator for one rule preset.
func NewSemanticValidator(rules config.Rules) *SemanticValidator {
	return &SemanticValidator{rules: rules}
}

// ValidateFile loads and validates the document at path.
func (v *SemanticValidator) ValidateFile(path string) *ValidationResult {
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

// Validate runs all semantic checks over a loaded document.
func (v *SemanticValidator) Validate(doc *document.Document) *ValidationResult {
	result := &ValidationResult{}
	v.checkRequirements(doc, result)
	v.checkLinks(doc, result)
	return result
}

// ValidateBatch validates each document and additionally flags requirement
// ids repeated across the batch. The first occurrence in list order wins;
// later ones are flagged. The id map is scoped to this call.
func (v *SemanticValidator) ValidateBatch(docs []*document.Document) *ValidationResult {
	result := &ValidationResult{}

	type location struct {
		file string
		line int
	}
	firstSeen := make(map[string]location)

	for _, doc := range docs {
		result.Merge(v.Validate(doc))

		seenInDoc := make(map[string]bool)
		for _, req := range doc.Requirements() {
			if seenInDoc[req.ID] {
				continue // within-document repeats already flagged by Validate
			}
			seenInDoc[req.ID] = true

			if first, ok := firstSeen[req.ID]; ok {
				result.Add(&ValidationError{
					Message:  fmt.Sprintf("duplicate requirement id %s (first defined in %s:%d)", req.ID, first.file, first.line),
					File:     doc.Path,
					Line:     req.Line,
					Severity: severityFor(CategoryDuplicateRequirement, v.rules.Severity),
					Category: CategoryDuplicateRequirement,
				})
				continue
			}
			firstSeen[req.ID] = location{file: doc.Path, line: req.Line}
		}
	}
	return result
}

// checkRequirements flags duplicate ids, empty titles, and placeholder
// markers in requirement titles.
func (v *SemanticValidator) checkRequirements(doc *document.Document, result *ValidationResult) {
	firstSeen := make(map[string]int)

	for _, req := range doc.Requirements() {
		if first, ok := firstSeen[req.ID]; ok {
			result.Add(&ValidationError{
				Message:  fmt.Sprintf("duplicate requirement id %s (first defined at line %d)", req.ID, first),
				File:     doc.Path,
				Line:     req.Line,
				Severity: severityFor(CategoryDuplicateRequirement, v.rules.Severity),
				Category: CategoryDuplicateRequirement,
			})
		} else {
			firstSeen[req.ID] = req.Line
		}

		title := strings.TrimSpace(req.Title)
		if title == "" {
			result.Add(&ValidationError{
				Message:  fmt.Sprintf("requirement %s has an empty title", req.ID),
				File:     doc.Path,
				Line:     req.Line,
				Severity: SeverityHigh,
				Category: CategoryEmptyContent,
			})
			continue
		}
		if m := placeholderPattern.FindString(title); m != "" {
			result.Add(&ValidationError{
				Message:  fmt.Sprintf("requirement %s title contains placeholder %s", req.ID, m),
				File:     doc.Path,
				Line:     req.Line,
				Severity: SeverityMedium,
				Category: CategoryEmptyContent,
			})
		}
	}
}

// checkLinks flags local markdown links whose relative target does not
// exist. URLs and in-page anchors are skipped.
func (v *SemanticValidator) checkLinks(doc *document.Document, result *ValidationResult) {
	baseDir := filepath.Dir(doc.Path)

	for i, line := range strings.Split(doc.Body, "\n") {
		for _, m := range markdownLinkPattern.FindAllStringSubmatch(line, -1) {
			target := m[1]
			if isExternalLink(target) {
				continue
			}
			path, _, _ := strings.Cut(target, "#")
			if path == "" {
				continue
			}
			if _, err := os.Stat(filepath.Join(baseDir, path)); err != nil {
				result.Add(&ValidationError{
					Message:  fmt.Sprintf("broken link: %s does not exist", target),
					File:     doc.Path,
					Line:     doc.BodyStart + i,
					Severity: severityFor(CategoryBrokenReference, v.rules.Severity),
					Category: CategoryBrokenReference,
				})
			}
		}
	}
}

// isExternalLink reports whether a link target points outside the local
// document tree: URLs with a scheme and pure in-page anchors.
func isExternalLink(target string) bool {
	return strings.Contains(target, "://") ||
		strings.HasPrefix(target, "mailto:") ||
		strings.HasPrefix(target, "#")
}
