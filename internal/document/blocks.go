package document

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// requirementHeadingPattern matches requirement heading text like "R1: Title".
	requirementHeadingPattern = regexp.MustCompile(`^(R\d+):\s*(.*)$`)
	// priorityPattern matches a priority line inside a requirement body.
	priorityPattern = regexp.MustCompile(`(?i)^\**priority\**:\s*(.+?)\s*$`)
	// taskLinePattern matches task checkbox lines:
	//   - [ ] 1.1 Create path/to/file.go (spec: auth-flow:R2) (depends: 1.0)
	taskLinePattern = regexp.MustCompile(`^\s*[-*]\s+\[([ xX])\]\s+(\d+(?:\.\d+)+)\s+(Create|Modify|Delete)\s+(\S+)\s*(.*)$`)
	// taskSpecRefPattern extracts the optional spec reference annotation.
	taskSpecRefPattern = regexp.MustCompile(`\(spec:\s*([^)]+)\)`)
	// taskDependsPattern extracts the optional dependency annotation.
	taskDependsPattern = regexp.MustCompile(`\(depends:\s*([^)]+)\)`)
	// clausePattern matches scenario clause markers at the start of a list item.
	clausePattern = regexp.MustCompile(`^\**(GIVEN|WHEN|THEN|AND)\**\b\s*(.*)$`)
)

// RequirementBlock is a single requirement extracted from a document:
// a level-3 heading of the form "R<n>: <title>" plus its body text.
type RequirementBlock struct {
	ID          string
	Title       string
	Description string
	Priority    string
	Line        int // line of the heading in the source file
}

// ScenarioBlock is an acceptance scenario: a level-4 heading plus the
// GIVEN/WHEN/THEN/AND clauses listed under it.
type ScenarioBlock struct {
	Name  string
	Given []string
	When  []string
	Then  []string
	And   []string
	Line  int
}

// TaskBlock is a single task from a task list document. The dotted id's
// leading integer is the task layer.
type TaskBlock struct {
	ID        string
	Layer     int
	Action    string // Create, Modify, or Delete
	Target    string
	SpecRef   string // "spec-id[:anchor]" or "path#anchor", empty if absent
	DependsOn []string
	Checked   bool
	Line      int
}

// Requirements extracts all requirement blocks from the document body.
func (d *Document) Requirements() []RequirementBlock {
	var reqs []RequirementBlock
	var current *RequirementBlock
	var descLines []string

	flush := func() {
		if current == nil {
			return
		}
		current.Description = strings.TrimSpace(strings.Join(descLines, "\n"))
		reqs = append(reqs, *current)
		current = nil
		descLines = nil
	}

	for _, ev := range d.Events() {
		switch ev.Kind {
		case EventHeading:
			if ev.Level == 3 {
				flush()
				if m := requirementHeadingPattern.FindStringSubmatch(ev.Text); m != nil {
					current = &RequirementBlock{
						ID:    m[1],
						Title: strings.TrimSpace(m[2]),
						Line:  ev.Line,
					}
				}
				continue
			}
			if ev.Level < 3 {
				flush()
			}
		case EventText, EventListItem:
			if current == nil {
				continue
			}
			if m := priorityPattern.FindStringSubmatch(ev.Text); m != nil {
				current.Priority = strings.TrimRight(m[1], "*")
				continue
			}
			descLines = append(descLines, ev.Text)
		}
	}
	flush()
	return reqs
}

// Scenarios extracts all scenario blocks from the document body.
func (d *Document) Scenarios() []ScenarioBlock {
	var scenarios []ScenarioBlock
	var current *ScenarioBlock

	flush := func() {
		if current != nil {
			scenarios = append(scenarios, *current)
			current = nil
		}
	}

	for _, ev := range d.Events() {
		switch ev.Kind {
		case EventHeading:
			if ev.Level == 4 {
				flush()
				name := strings.TrimSpace(strings.TrimPrefix(ev.Text, "Scenario:"))
				current = &ScenarioBlock{Name: name, Line: ev.Line}
				continue
			}
			flush()
		case EventListItem:
			if current == nil {
				continue
			}
			m := clausePattern.FindStringSubmatch(ev.Text)
			if m == nil {
				continue
			}
			clause := strings.TrimSpace(m[2])
			switch m[1] {
			case "GIVEN":
				current.Given = append(current.Given, clause)
			case "WHEN":
				current.When = append(current.When, clause)
			case "THEN":
				current.Then = append(current.Then, clause)
			case "AND":
				current.And = append(current.And, clause)
			}
		}
	}
	flush()
	return scenarios
}

// Tasks extracts all task blocks from a task list document.
func (d *Document) Tasks() []TaskBlock {
	var tasks []TaskBlock

	for i, line := range strings.Split(d.Body, "\n") {
		m := taskLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		task := TaskBlock{
			ID:      m[2],
			Action:  m[3],
			Target:  m[4],
			Checked: strings.EqualFold(strings.TrimSpace(m[1]), "x"),
			Line:    d.BodyStart + i,
		}
		task.Layer = taskLayer(task.ID)

		tail := m[5]
		if sm := taskSpecRefPattern.FindStringSubmatch(tail); sm != nil {
			task.SpecRef = strings.TrimSpace(sm[1])
		}
		if dm := taskDependsPattern.FindStringSubmatch(tail); dm != nil {
			for _, dep := range strings.Split(dm[1], ",") {
				if dep = strings.TrimSpace(dep); dep != "" {
					task.DependsOn = append(task.DependsOn, dep)
				}
			}
		}

		tasks = append(tasks, task)
	}
	return tasks
}

// taskLayer returns the leading integer of a dotted task id.
func taskLayer(id string) int {
	head, _, _ := strings.Cut(id, ".")
	layer := 0
	for _, r := range head {
		if r < '0' || r > '9' {
			return 0
		}
		layer = layer*10 + int(r-'0')
	}
	return layer
}

// SpecRef is a parsed cross-document reference from a task to a spec.
type SpecRef struct {
	Path   string // instance-relative file path
	Anchor string // heading or requirement id, empty if none
}

// ParseSpecRef parses a task spec reference. Two forms are accepted:
// "spec-id[:anchor]", resolving to specs/<spec-id>.md, and "path#anchor",
// naming an instance-relative file directly.
func ParseSpecRef(ref string) SpecRef {
	if path, anchor, ok := strings.Cut(ref, "#"); ok {
		return SpecRef{Path: path, Anchor: strings.TrimSpace(anchor)}
	}
	id, anchor, _ := strings.Cut(ref, ":")
	return SpecRef{
		Path:   filepath.Join("specs", id+".md"),
		Anchor: strings.TrimSpace(anchor),
	}
}
