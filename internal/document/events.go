package document

import (
	"regexp"
	"strings"
)

var (
	// headingPattern matches ATX headings at any level 1-6.
	headingPattern = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	// listItemPattern matches unordered list items, optionally indented.
	listItemPattern = regexp.MustCompile(`^(\s*)[-*+]\s+(.*)$`)
)

// EventKind distinguishes the events emitted while walking a document body.
type EventKind int

const (
	// EventHeading is an ATX heading line.
	EventHeading EventKind = iota
	// EventListStart marks the beginning of a list block.
	EventListStart
	// EventListItem is a single list item inside a list block.
	EventListItem
	// EventListEnd marks the end of a list block.
	EventListEnd
	// EventText is any other non-blank line.
	EventText
)

// Event is one element of a document's body walk, in document order.
type Event struct {
	Kind  EventKind
	Level int    // heading level, EventHeading only
	Text  string // heading text, list item text, or raw line
	Line  int    // 1-based line number in the source file
}

// Events walks the body line by line and returns the heading/list event
// stream. List blocks are contiguous runs of list items; a blank line or a
// heading terminates the block.
func (d *Document) Events() []Event {
	var events []Event
	inList := false

	endList := func(line int) {
		if inList {
			events = append(events, Event{Kind: EventListEnd, Line: line})
			inList = false
		}
	}

	for i, line := range strings.Split(d.Body, "\n") {
		lineNum := d.BodyStart + i

		if m := headingPattern.FindStringSubmatch(line); m != nil {
			endList(lineNum)
			events = append(events, Event{
				Kind:  EventHeading,
				Level: len(m[1]),
				Text:  strings.TrimSpace(m[2]),
				Line:  lineNum,
			})
			continue
		}

		if m := listItemPattern.FindStringSubmatch(line); m != nil {
			if !inList {
				events = append(events, Event{Kind: EventListStart, Line: lineNum})
				inList = true
			}
			events = append(events, Event{
				Kind: EventListItem,
				Text: strings.TrimSpace(m[2]),
				Line: lineNum,
			})
			continue
		}

		if strings.TrimSpace(line) == "" {
			endList(lineNum)
			continue
		}

		events = append(events, Event{Kind: EventText, Text: line, Line: lineNum})
	}

	endList(d.BodyStart + strings.Count(d.Body, "\n"))
	return events
}

// Headings returns all headings in document order.
func (d *Document) Headings() []Event {
	var headings []Event
	for _, ev := range d.Events() {
		if ev.Kind == EventHeading {
			headings = append(headings, ev)
		}
	}
	return headings
}
