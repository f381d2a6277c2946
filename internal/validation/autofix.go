package validation

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// placeholderScenario is the text inserted for missing-scenario and
// missing-when-then fixes. It carries both clause markers so a subsequent
// validation pass accepts it.
const placeholderScenario = `#### Scenario: Placeholder

- WHEN the behavior is specified
- THEN this placeholder scenario is replaced
`

// acceptanceCriteriaHeading matches the heading that placeholder scenarios
// are inserted under.
var acceptanceCriteriaHeading = regexp.MustCompile(`(?i)^#{1,6}\s+acceptance criteria\s*$`)

// AutoFixResult summarizes one auto-fix pass.
type AutoFixResult struct {
	FilesModified int
	ErrorsFixed   int
	// Remaining holds the errors the fixer cannot repair. The caller must
	// re-run full validation to confirm the fixed ones are resolved; the
	// fixer never re-validates itself.
	Remaining []*ValidationError
}

// Fix applies mechanical, idempotent text-insertion repairs for the fixable
// error categories (missing_heading, missing_scenario, missing_when_then).
// Each fix checks case-insensitively whether the content already satisfies
// the rule before inserting, so repeated runs never duplicate insertions.
// Files are written only when their content actually changed.
func Fix(errors []*ValidationError) (*AutoFixResult, error) {
	result := &AutoFixResult{}

	byFile := make(map[string][]*ValidationError)
	var files []string
	for _, err := range errors {
		if !err.Category.Fixable() {
			result.Remaining = append(result.Remaining, err)
			continue
		}
		if _, ok := byFile[err.File]; !ok {
			files = append(files, err.File)
		}
		byFile[err.File] = append(byFile[err.File], err)
	}

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		original := string(data)
		content := original

		for _, verr := range byFile[path] {
			var fixed bool
			switch verr.Category {
			case CategoryMissingHeading:
				content, fixed = fixMissingHeading(content, verr.Message)
			case CategoryMissingScenario:
				content, fixed = fixMissingScenario(content)
			case CategoryMissingWhenThen:
				content, fixed = fixMissingWhenThen(content)
			}
			if fixed {
				result.ErrorsFixed++
			}
		}

		if content != original {
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				return nil, fmt.Errorf("writing %s: %w", path, err)
			}
			result.FilesModified++
		}
	}

	return result, nil
}

// fixMissingHeading appends the missing required heading named in the error
// message, with a placeholder body. Returns the content unchanged when the
// heading is already present or the message names no heading.
func fixMissingHeading(content, message string) (string, bool) {
	heading, ok := strings.CutPrefix(message, "missing required heading: ")
	if !ok || strings.TrimSpace(heading) == "" {
		return content, false
	}
	heading = strings.TrimSpace(heading)

	if hasHeading(content, heading) {
		return content, false
	}

	if !strings.HasSuffix(content, "\n") && content != "" {
		content += "\n"
	}
	return content + fmt.Sprintf("\n## %s\n\nTBD.\n", heading), true
}

// fixMissingScenario inserts a placeholder scenario under the Acceptance
// Criteria heading, creating the section if absent. Skipped when any
// scenario heading already exists.
func fixMissingScenario(content string) (string, bool) {
	if containsScenarioHeading(content) {
		return content, false
	}
	return insertUnderAcceptanceCriteria(content), true
}

// fixMissingWhenThen inserts a placeholder scenario containing both WHEN
// and THEN markers under the Acceptance Criteria heading. Skipped when some
// list item already carries each marker.
func fixMissingWhenThen(content string) (string, bool) {
	if containsClauseMarkers(content) {
		return content, false
	}
	return insertUnderAcceptanceCriteria(content), true
}

// insertUnderAcceptanceCriteria places the placeholder scenario directly
// under the Acceptance Criteria heading, appending the section when the
// document has none.
func insertUnderAcceptanceCriteria(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if acceptanceCriteriaHeading.MatchString(line) {
			inserted := append([]string{}, lines[:i+1]...)
			inserted = append(inserted, "", placeholderScenario)
			inserted = append(inserted, lines[i+1:]...)
			return strings.Join(inserted, "\n")
		}
	}

	if !strings.HasSuffix(content, "\n") && content != "" {
		content += "\n"
	}
	return content + "\n## Acceptance Criteria\n\n" + placeholderScenario
}

// hasHeading reports whether the content already carries a heading equal to
// or starting with the given text, compared case-insensitively.
func hasHeading(content, heading string) bool {
	want := strings.ToLower(heading)
	re := regexp.MustCompile(`^#{1,6}\s+(.*)$`)
	for _, line := range strings.Split(content, "\n") {
		if m := re.FindStringSubmatch(line); m != nil {
			got := strings.ToLower(strings.TrimSpace(m[1]))
			if got == want || strings.HasPrefix(got, want) {
				return true
			}
		}
	}
	return false
}

// containsScenarioHeading reports whether any level-4 scenario heading is
// already present.
func containsScenarioHeading(content string) bool {
	re := regexp.MustCompile(`(?im)^####\s+scenario:`)
	return re.MatchString(content)
}

// containsClauseMarkers reports whether list items carry both a WHEN and a
// THEN marker, case-insensitively.
func containsClauseMarkers(content string) bool {
	seenWhen := false
	seenThen := false
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "-") && !strings.HasPrefix(trimmed, "*") {
			continue
		}
		upper := strings.ToUpper(trimmed)
		if strings.Contains(upper, "WHEN") {
			seenWhen = true
		}
		if strings.Contains(upper, "THEN") {
			seenThen = true
		}
	}
	return seenWhen && seenThen
}
