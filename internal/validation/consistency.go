package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ariel-frischer/specguard/internal/document"
)

// ConsistencyValidator performs cross-document checks over one workflow
// instance directory: task spec-reference resolution, proposal/specs
// alignment, and task dependency graph cycle detection.
type ConsistencyValidator struct {
	dir string
}

// NewConsistencyValidator builds a consistency validator for one instance
// directory.
func NewConsistencyValidator(dir string) *ConsistencyValidator {
	return &ConsistencyValidator{dir: dir}
}

// Validate runs the three consistency checks in a fixed order so reported
// error ordering is deterministic.
func (v *ConsistencyValidator) Validate() *ValidationResult {
	result := &ValidationResult{}
	v.CheckTaskRefs(result)
	v.CheckProposalAlignment(result)
	v.CheckTaskDependencies(result)
	return result
}

// CheckTaskRefs resolves each task's spec reference. The referenced file
// must exist and, when an anchor is given, the anchor must match a heading
// or a requirement block id in that file.
func (v *ConsistencyValidator) CheckTaskRefs(result *ValidationResult) {
	tasksPath := filepath.Join(v.dir, "tasks.md")
	doc, err := document.Load(tasksPath)
	if err != nil {
		return // no task list, nothing to resolve
	}

	for _, task := range doc.Tasks() {
		if task.SpecRef == "" {
			continue
		}

		ref := document.ParseSpecRef(task.SpecRef)
		target := filepath.Join(v.dir, ref.Path)

		if _, err := os.Stat(target); err != nil {
			result.Add(&ValidationError{
				Message:  fmt.Sprintf("task %s: spec reference %q: file %s does not exist", task.ID, task.SpecRef, ref.Path),
				File:     tasksPath,
				Line:     task.Line,
				Severity: SeverityHigh,
				Category: CategoryBrokenReference,
			})
			continue
		}

		if ref.Anchor == "" {
			continue
		}

		targetDoc, err := document.Load(target)
		if err != nil {
			result.Add(&ValidationError{
				Message:  fmt.Sprintf("task %s: spec reference %q: cannot read %s: %v", task.ID, task.SpecRef, ref.Path, err),
				File:     tasksPath,
				Line:     task.Line,
				Severity: SeverityHigh,
				Category: CategoryBrokenReference,
			})
			continue
		}

		if !anchorResolves(targetDoc, ref.Anchor) {
			result.Add(&ValidationError{
				Message:  fmt.Sprintf("task %s: anchor %q not found in %s", task.ID, ref.Anchor, ref.Path),
				File:     tasksPath,
				Line:     task.Line,
				Severity: SeverityHigh,
				Category: CategoryBrokenReference,
			})
		}
	}
}

// anchorResolves reports whether an anchor matches a line-initial heading
// (any level 1-6, heading text equal to or starting with the anchor) or a
// requirement block id in the target document.
func anchorResolves(doc *document.Document, anchor string) bool {
	for _, h := range doc.Headings() {
		if h.Text == anchor || strings.HasPrefix(h.Text, anchor) {
			return true
		}
	}
	for _, req := range doc.Requirements() {
		if req.ID == anchor {
			return true
		}
	}
	return false
}

// CheckProposalAlignment compares the proposal's declared spec list against
// the specs directory. Declared-but-missing specs are medium severity;
// present-but-undeclared specs are low. Both are non-fatal.
func (v *ConsistencyValidator) CheckProposalAlignment(result *ValidationResult) {
	proposalPath := filepath.Join(v.dir, "proposal.md")
	doc, err := document.Load(proposalPath)
	if err != nil || doc.Header == nil {
		return // alignment is only checked when a header block exists
	}

	declared := doc.DeclaredSpecs()
	declaredSet := make(map[string]bool, len(declared))
	for _, spec := range declared {
		declaredSet[filepath.ToSlash(spec)] = true
		if _, err := os.Stat(filepath.Join(v.dir, spec)); err != nil {
			result.Add(&ValidationError{
				Message:  fmt.Sprintf("proposal declares spec %s which does not exist", spec),
				File:     proposalPath,
				Severity: SeverityMedium,
				Category: CategoryBrokenReference,
			})
		}
	}

	for _, spec := range v.specFiles() {
		if !declaredSet[spec] {
			result.Add(&ValidationError{
				Message:  fmt.Sprintf("spec %s exists but is not declared in the proposal", spec),
				File:     proposalPath,
				Severity: SeverityLow,
				Category: CategoryInconsistency,
			})
		}
	}
}

// specFiles lists the instance's specs/*.md files as instance-relative
// slash paths in sorted order, excluding templates.
func (v *ConsistencyValidator) specFiles() []string {
	matches, err := filepath.Glob(filepath.Join(v.dir, "specs", "*.md"))
	if err != nil {
		return nil
	}

	var specs []string
	for _, match := range matches {
		if document.IsTemplate(match) {
			continue
		}
		specs = append(specs, "specs/"+filepath.Base(match))
	}
	sort.Strings(specs)
	return specs
}

// CheckTaskDependencies validates the task dependency graph: every
// depends_on id must name a task in the same document and the graph must be
// acyclic. Only the first discovered cycle is reported.
func (v *ConsistencyValidator) CheckTaskDependencies(result *ValidationResult) {
	tasksPath := filepath.Join(v.dir, "tasks.md")
	doc, err := document.Load(tasksPath)
	if err != nil {
		return
	}

	tasks := doc.Tasks()
	adjacency := make(map[string][]string, len(tasks))
	order := make([]string, 0, len(tasks))
	lines := make(map[string]int, len(tasks))

	for _, task := range tasks {
		if _, ok := adjacency[task.ID]; !ok {
			order = append(order, task.ID)
		}
		adjacency[task.ID] = append(adjacency[task.ID], task.DependsOn...)
		lines[task.ID] = task.Line
	}

	for _, task := range tasks {
		for _, dep := range task.DependsOn {
			if _, ok := adjacency[dep]; !ok {
				result.Add(&ValidationError{
					Message:  fmt.Sprintf("task %s depends on unknown task %s", task.ID, dep),
					File:     tasksPath,
					Line:     task.Line,
					Severity: SeverityHigh,
					Category: CategoryBrokenReference,
				})
			}
		}
	}

	if cycle := findCycle(order, adjacency); cycle != nil {
		result.Add(&ValidationError{
			Message:  fmt.Sprintf("circular dependency detected: %s", strings.Join(cycle, " -> ")),
			File:     tasksPath,
			Line:     lines[cycle[0]],
			Severity: SeverityHigh,
			Category: CategoryCircularDependency,
		})
	}
}

// dfs node colors.
const (
	colorWhite = iota // unvisited
	colorGray         // on the current dfs stack
	colorBlack        // fully explored
)

// findCycle runs a depth-first search with an explicit stack over the task
// graph and returns the first cycle found as a path ending at its start
// node, or nil when the graph is acyclic. Unknown dependency ids are
// skipped; they are reported separately as broken references.
func findCycle(order []string, adjacency map[string][]string) []string {
	color := make(map[string]int, len(adjacency))

	type frame struct {
		id   string
		next int
	}

	for _, start := range order {
		if color[start] != colorWhite {
			continue
		}

		stack := []*frame{{id: start}}
		path := []string{start}
		color[start] = colorGray

		for len(stack) > 0 {
			top := stack[len(stack)-1]
			deps := adjacency[top.id]

			if top.next >= len(deps) {
				color[top.id] = colorBlack
				stack = stack[:len(stack)-1]
				path = path[:len(path)-1]
				continue
			}

			dep := deps[top.next]
			top.next++

			switch color[dep] {
			case colorGray:
				// Back edge: slice the cycle out of the current path.
				for i, id := range path {
					if id == dep {
						cycle := append([]string{}, path[i:]...)
						return append(cycle, dep)
					}
				}
			case colorWhite:
				color[dep] = colorGray
				stack = append(stack, &frame{id: dep})
				path = append(path, dep)
			}
		}
	}
	return nil
}
