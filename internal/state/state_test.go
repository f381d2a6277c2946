package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_CreatesDefaultRecord(t *testing.T) {
	dir := t.TempDir()

	tracker, err := Load(dir)
	require.NoError(t, err)

	rec := tracker.Record()
	assert.NotEmpty(t, rec.Instance)
	assert.Equal(t, StateVersion, rec.Version)
	assert.Equal(t, PhaseInitial, rec.Phase)
	assert.Equal(t, 1, rec.Iteration)
	assert.NotNil(t, rec.Checksums)

	// The default record is dirty: the first Save must persist it.
	require.NoError(t, tracker.Save())
	_, err = os.Stat(filepath.Join(dir, StateFileName))
	assert.NoError(t, err)
}

func TestLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	tracker, err := Load(dir)
	require.NoError(t, err)
	tracker.SetPhase(PhaseImplement)
	tracker.AdvanceIteration()
	tracker.SetLastAction("validate")
	require.NoError(t, tracker.Save())

	reloaded, err := Load(dir)
	require.NoError(t, err)
	rec := reloaded.Record()
	assert.Equal(t, tracker.Record().Instance, rec.Instance)
	assert.Equal(t, PhaseImplement, rec.Phase)
	assert.Equal(t, 2, rec.Iteration)
	assert.Equal(t, "validate", rec.LastAction)
}

func TestLoad_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, StateFileName), []byte("{not yaml: ["), 0644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestSave_NoOpWhenClean(t *testing.T) {
	dir := t.TempDir()

	tracker, err := Load(dir)
	require.NoError(t, err)
	require.NoError(t, tracker.Save())

	path := filepath.Join(dir, StateFileName)
	before, err := os.Stat(path)
	require.NoError(t, err)

	// No mutation since the last save: the file must not be rewritten.
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, tracker.Save())
	after, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
}

func TestSave_LeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()

	tracker, err := Load(dir)
	require.NoError(t, err)
	require.NoError(t, tracker.Save())

	_, err = os.Stat(filepath.Join(dir, StateFileName+".tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestSetPhase_OnlyDirtiesOnChange(t *testing.T) {
	tracker, err := Load(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, tracker.Save())

	tracker.SetPhase(PhaseInitial) // already initial
	assert.False(t, tracker.dirty)

	tracker.SetPhase(PhaseProposal)
	assert.True(t, tracker.dirty)
}

func TestRecordValidation_AppendOnlyHistory(t *testing.T) {
	tracker, err := Load(t.TempDir())
	require.NoError(t, err)

	tracker.RecordValidation("proposal", "strict", 2, 1, 0, []string{"boom"}, nil)
	tracker.RecordValidation("proposal", "normal", 0, 0, 0, nil, nil)
	tracker.RecordChallengeValidation("challenge", "normal", "approve", 0, 0, 1, nil, []string{"minor"})

	rec := tracker.Record()
	require.Len(t, rec.History, 3)
	assert.Equal(t, 2, rec.History[0].High)
	assert.Equal(t, []string{"boom"}, rec.History[0].Errors)
	assert.Equal(t, "approve", rec.History[2].Verdict)
}

func TestLastValidation(t *testing.T) {
	tracker, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Nil(t, tracker.LastValidation("proposal"))

	tracker.RecordValidation("proposal", "strict", 1, 0, 0, nil, nil)
	tracker.RecordValidation("tasks", "strict", 0, 0, 0, nil, nil)
	tracker.RecordValidation("proposal", "normal", 0, 0, 0, nil, nil)

	last := tracker.LastValidation("proposal")
	require.NotNil(t, last)
	assert.Equal(t, "normal", last.Mode)
	assert.Zero(t, last.High)
}

func TestTrackedFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "specs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "specs", "auth.md"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "specs", "_template.md"), []byte("x"), 0644))

	tracker, err := Load(dir)
	require.NoError(t, err)
	// A checksum entry keeps a deleted spec tracked so it can show as stale.
	tracker.Record().Checksums["specs/removed.md"] = ChecksumEntry{Hash: "deadbeef"}

	assert.Equal(t, []string{
		"challenge.md",
		"proposal.md",
		"specs/auth.md",
		"specs/removed.md",
		"tasks.md",
	}, tracker.trackedFiles())
}
