// Package document provides the document model for workflow artifacts.
// A document is a plain text body optionally preceded by a YAML front-matter
// header delimited by lines of three hyphens. The package splits the header
// from the body, exposes the body as a heading/list event stream, and
// extracts requirement, scenario, and task blocks from it.
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind identifies the kind of workflow document.
type Kind string

const (
	// KindProposal is the workflow proposal document (proposal.md).
	KindProposal Kind = "proposal"
	// KindTasks is the task list document (tasks.md).
	KindTasks Kind = "tasks"
	// KindChallenge is the challenge review document (challenge.md).
	KindChallenge Kind = "challenge"
	// KindState is the persisted workflow state record (STATE).
	KindState Kind = "state"
	// KindSpec is a per-capability specification document (specs/*.md).
	KindSpec Kind = "spec"
)

// Header is the optional machine-readable front-matter block of a document.
type Header struct {
	Raw    string         // Raw text between the delimiter lines
	Node   *yaml.Node     // Parsed node tree, nil if parsing failed
	Fields map[string]any // Generic key/value view, nil if parsing failed
}

// Document is a loaded workflow artifact. Documents are transient: they are
// reloaded fresh on every validation call and never cached.
type Document struct {
	Path      string
	Raw       string
	Header    *Header // nil when the file has no front-matter block
	HeaderErr error   // set when a front-matter block exists but is malformed
	Body      string
	BodyStart int // 1-based line number of the first body line
}

// Load reads and parses the document at the given path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	return Parse(path, string(data)), nil
}

// Parse builds a document from raw content. The path is retained for error
// reporting and relative link resolution only.
func Parse(path, raw string) *Document {
	doc := &Document{
		Path:      path,
		Raw:       raw,
		Body:      raw,
		BodyStart: 1,
	}

	headerRaw, body, bodyStart, ok := splitHeader(raw)
	if !ok {
		return doc
	}

	doc.Body = body
	doc.BodyStart = bodyStart
	doc.Header = &Header{Raw: headerRaw}

	var node yaml.Node
	if err := yaml.Unmarshal([]byte(headerRaw), &node); err != nil {
		doc.HeaderErr = fmt.Errorf("parsing header block: %w", err)
		return doc
	}

	var fields map[string]any
	if err := yaml.Unmarshal([]byte(headerRaw), &fields); err != nil {
		doc.HeaderErr = fmt.Errorf("parsing header block: %w", err)
		return doc
	}

	doc.Header.Node = &node
	doc.Header.Fields = fields
	return doc
}

// splitHeader separates an optional front-matter block from the body.
// The block must start on the first line and is delimited by lines
// containing exactly three hyphens.
func splitHeader(raw string) (header, body string, bodyStart int, ok bool) {
	lines := strings.Split(raw, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], "\r") != "---" {
		return "", "", 0, false
	}

	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r") == "---" {
			header = strings.Join(lines[1:i], "\n")
			body = strings.Join(lines[i+1:], "\n")
			return header, body, i + 2, true
		}
	}
	return "", "", 0, false
}

// IsEmpty reports whether the document has no content at all.
func (d *Document) IsEmpty() bool {
	return strings.TrimSpace(d.Raw) == ""
}

// DeclaredType returns the document type declared in the header block,
// or an empty string if none is declared.
func (d *Document) DeclaredType() string {
	if d.Header == nil || d.Header.Fields == nil {
		return ""
	}
	if t, ok := d.Header.Fields["type"].(string); ok {
		return t
	}
	return ""
}

// DeclaredSpecs returns the spec paths declared in the header block, if any.
// Used by proposal documents to enumerate the specs they introduce.
func (d *Document) DeclaredSpecs() []string {
	if d.Header == nil || d.Header.Fields == nil {
		return nil
	}
	raw, ok := d.Header.Fields["specs"].([]any)
	if !ok {
		return nil
	}
	var specs []string
	for _, v := range raw {
		if s, ok := v.(string); ok {
			specs = append(specs, s)
		}
	}
	return specs
}

// DetectKind determines the document kind from its declared type field,
// falling back to the filename convention: proposal.md, tasks.md,
// challenge.md, and STATE map to their kinds; any other .md file is a spec.
func DetectKind(path string, doc *Document) Kind {
	if doc != nil {
		switch doc.DeclaredType() {
		case string(KindProposal):
			return KindProposal
		case string(KindTasks):
			return KindTasks
		case string(KindChallenge):
			return KindChallenge
		case string(KindState):
			return KindState
		case string(KindSpec):
			return KindSpec
		}
	}

	switch filepath.Base(path) {
	case "proposal.md":
		return KindProposal
	case "tasks.md":
		return KindTasks
	case "challenge.md":
		return KindChallenge
	case "STATE":
		return KindState
	}
	return KindSpec
}

// IsTemplate reports whether the given filename names a template document.
// Templates (files starting with "_") are excluded from directory scans.
func IsTemplate(name string) bool {
	return strings.HasPrefix(filepath.Base(name), "_")
}
