// Package testutil provides shared fixture builders for specguard tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// ValidSpec is a spec document satisfying the strict preset: all required
// headings, one scenario with WHEN and THEN clauses, unique requirement ids.
const ValidSpec = `---
type: spec
id: auth-flow
title: Authentication flow
---

## Overview

Users authenticate with a session token.

## Requirements

### R1: Session issuance

Issue a session token on successful login.

Priority: High

### R2: Session expiry

Expire sessions after thirty minutes of inactivity.

## Acceptance Criteria

#### Scenario: Login succeeds

- GIVEN a registered user
- WHEN valid credentials are submitted
- THEN a session token is issued
`

// WriteFile writes content under dir, creating parent directories.
// Returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// CreateInstance builds a minimal workflow instance directory: a proposal
// declaring one spec, a task list referencing it, and the spec itself.
// Returns the instance directory.
func CreateInstance(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	WriteFile(t, dir, "proposal.md", `---
type: proposal
title: Add authentication
specs:
  - specs/auth-flow.md
---

## Overview

Add session-based authentication.
`)
	WriteFile(t, dir, "tasks.md", `---
type: tasks
title: Add authentication
---

## Tasks

- [ ] 1.1 Create internal/auth/session.go (spec: auth-flow:R1)
- [ ] 1.2 Modify internal/server/routes.go (spec: auth-flow:R2) (depends: 1.1)
`)
	WriteFile(t, dir, "specs/auth-flow.md", ValidSpec)
	return dir
}
