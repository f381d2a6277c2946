// Package state persists the per-workflow-instance record: content
// checksums, validation history, and usage telemetry. The record is an
// explicit handle with load/save and a dirty flag, never ambient global
// state, so multiple instances can be processed independently.
package state

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/ariel-frischer/specguard/internal/document"
)

const (
	// StateFileName is the name of the persisted record inside an
	// instance directory.
	StateFileName = "STATE"
	// StateVersion is the current record schema version.
	StateVersion = "1.0.0"
)

// Phase is the workflow phase of an instance.
type Phase string

const (
	PhaseInitial   Phase = "initial"
	PhaseProposal  Phase = "proposal"
	PhaseChallenge Phase = "challenge"
	PhaseImplement Phase = "implement"
	PhaseVerify    Phase = "verify"
	PhaseArchive   Phase = "archive"
)

// rootDocuments is the fixed list of tracked files; every specs/*.md file
// under the instance directory is tracked in addition.
var rootDocuments = []string{"proposal.md", "tasks.md", "challenge.md"}

// ChecksumEntry records a tracked file's content hash and when it was last
// validated.
type ChecksumEntry struct {
	Hash        string    `yaml:"hash"`
	ValidatedAt time.Time `yaml:"validated_at"`
}

// ValidationEntry is one append-only history record. Past entries are never
// mutated.
type ValidationEntry struct {
	Step      string    `yaml:"step"`
	Timestamp time.Time `yaml:"timestamp"`
	Mode      string    `yaml:"mode"`
	High      int       `yaml:"high"`
	Medium    int       `yaml:"medium"`
	Low       int       `yaml:"low"`
	Verdict   string    `yaml:"verdict,omitempty"`
	Errors    []string  `yaml:"errors,omitempty"`
	Warnings  []string  `yaml:"warnings,omitempty"`
}

// Record is the whole persisted state of one workflow instance. It is
// loaded and saved as a unit.
type Record struct {
	Instance   string                   `yaml:"instance"`
	Version    string                   `yaml:"version"`
	CreatedAt  time.Time                `yaml:"created_at"`
	UpdatedAt  time.Time                `yaml:"updated_at"`
	Phase      Phase                    `yaml:"phase"`
	Iteration  int                      `yaml:"iteration"`
	LastAction string                   `yaml:"last_action,omitempty"`
	Checksums  map[string]ChecksumEntry `yaml:"checksums"`
	History    []ValidationEntry        `yaml:"history"`
	Telemetry  *Telemetry               `yaml:"telemetry,omitempty"`
}

// Tracker is the handle for one instance's persisted record. It is not safe
// for concurrent use; callers must serialize access per instance.
type Tracker struct {
	dir    string
	record *Record
	dirty  bool
}

// Load reads the persisted record from the instance directory, or creates a
// default one (phase initial, iteration 1) when none exists.
func Load(dir string) (*Tracker, error) {
	path := filepath.Join(dir, StateFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			now := time.Now().UTC()
			return &Tracker{
				dir: dir,
				record: &Record{
					Instance:  uuid.NewString(),
					Version:   StateVersion,
					CreatedAt: now,
					UpdatedAt: now,
					Phase:     PhaseInitial,
					Iteration: 1,
					Checksums: map[string]ChecksumEntry{},
				},
				dirty: true,
			}, nil
		}
		return nil, fmt.Errorf("reading state file: %w", err)
	}

	var record Record
	if err := yaml.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("parsing state file: %w", err)
	}
	if record.Checksums == nil {
		record.Checksums = map[string]ChecksumEntry{}
	}

	return &Tracker{dir: dir, record: &record}, nil
}

// Save serializes the whole record atomically, refreshing the updated_at
// timestamp. Repeated saves without intervening mutation are no-ops.
func (t *Tracker) Save() error {
	if !t.dirty {
		return nil
	}

	t.record.UpdatedAt = time.Now().UTC()

	data, err := yaml.Marshal(t.record)
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}

	path := filepath.Join(t.dir, StateFileName)
	tmpPath := path + ".tmp"

	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("writing temp state file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) // Best effort cleanup
		return fmt.Errorf("renaming temp state file: %w", err)
	}

	t.dirty = false
	return nil
}

// Record returns the underlying record for read access.
func (t *Tracker) Record() *Record {
	return t.record
}

// SetPhase updates the workflow phase.
func (t *Tracker) SetPhase(phase Phase) {
	if t.record.Phase != phase {
		t.record.Phase = phase
		t.dirty = true
	}
}

// AdvanceIteration increments the iteration counter.
func (t *Tracker) AdvanceIteration() {
	t.record.Iteration++
	t.dirty = true
}

// SetLastAction records the most recent externally driven action.
func (t *Tracker) SetLastAction(action string) {
	if t.record.LastAction != action {
		t.record.LastAction = action
		t.dirty = true
	}
}

// RecordValidation appends a validation summary to the history.
func (t *Tracker) RecordValidation(step, mode string, high, medium, low int, errors, warnings []string) {
	t.record.History = append(t.record.History, ValidationEntry{
		Step:      step,
		Timestamp: time.Now().UTC(),
		Mode:      mode,
		High:      high,
		Medium:    medium,
		Low:       low,
		Errors:    errors,
		Warnings:  warnings,
	})
	t.dirty = true
}

// RecordChallengeValidation appends a challenge validation entry carrying
// the externally computed verdict.
func (t *Tracker) RecordChallengeValidation(step, mode, verdict string, high, medium, low int, errors, warnings []string) {
	t.record.History = append(t.record.History, ValidationEntry{
		Step:      step,
		Timestamp: time.Now().UTC(),
		Mode:      mode,
		High:      high,
		Medium:    medium,
		Low:       low,
		Verdict:   verdict,
		Errors:    errors,
		Warnings:  warnings,
	})
	t.dirty = true
}

// LastValidation returns the most recent history entry for a step, scanning
// from the end, or nil when the step has never been recorded.
func (t *Tracker) LastValidation(step string) *ValidationEntry {
	for i := len(t.record.History) - 1; i >= 0; i-- {
		if t.record.History[i].Step == step {
			return &t.record.History[i]
		}
	}
	return nil
}

// trackedFiles returns the instance-relative paths of all tracked files:
// the fixed root documents plus every non-template specs/*.md on disk, plus
// any file that still has a checksum entry, in sorted order.
func (t *Tracker) trackedFiles() []string {
	seen := map[string]bool{}
	var files []string

	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			files = append(files, name)
		}
	}

	for _, name := range rootDocuments {
		add(name)
	}
	matches, _ := filepath.Glob(filepath.Join(t.dir, "specs", "*.md"))
	for _, match := range matches {
		if !document.IsTemplate(match) {
			add(filepath.ToSlash(filepath.Join("specs", filepath.Base(match))))
		}
	}
	for name := range t.record.Checksums {
		add(name)
	}

	sort.Strings(files)
	return files
}

// hashFile returns the sha256 hex digest of a tracked file's content.
func (t *Tracker) hashFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(t.dir, name))
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
