package state

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// StalenessReport partitions the tracked files by checksum state.
type StalenessReport struct {
	Stale           []string // content changed since the last checksum
	MissingChecksum []string // file exists but was never checksummed
	UpToDate        []string
}

// HasStale reports whether any tracked file needs revalidation.
func (r *StalenessReport) HasStale() bool {
	return len(r.Stale) > 0 || len(r.MissingChecksum) > 0
}

// UpdateChecksum hashes the named file's current content and stores it with
// the current time. When the file no longer exists its entry is removed.
func (t *Tracker) UpdateChecksum(name string) error {
	hash, err := t.hashFile(name)
	if err != nil {
		if os.IsNotExist(err) {
			if _, ok := t.record.Checksums[name]; ok {
				delete(t.record.Checksums, name)
				t.dirty = true
			}
			return nil
		}
		return fmt.Errorf("checksumming %s: %w", name, err)
	}

	t.record.Checksums[name] = ChecksumEntry{
		Hash:        hash,
		ValidatedAt: time.Now().UTC(),
	}
	t.dirty = true
	return nil
}

// UpdateAllChecksums refreshes the checksum of every tracked file: the
// fixed root documents plus every specs/*.md under the instance directory.
func (t *Tracker) UpdateAllChecksums() error {
	for _, name := range t.trackedFiles() {
		if err := t.UpdateChecksum(name); err != nil {
			return err
		}
	}
	return nil
}

// IsFileStale reports whether the named file changed since its last
// recorded checksum. A file with no stored checksum is stale.
func (t *Tracker) IsFileStale(name string) bool {
	entry, ok := t.record.Checksums[name]
	if !ok {
		return true
	}
	hash, err := t.hashFile(name)
	if err != nil {
		return true
	}
	return hash != entry.Hash
}

// CheckStaleness partitions all tracked files into stale, missing-checksum,
// and up-to-date.
func (t *Tracker) CheckStaleness() *StalenessReport {
	report := &StalenessReport{}

	for _, name := range t.trackedFiles() {
		entry, hasEntry := t.record.Checksums[name]
		_, statErr := os.Stat(filepath.Join(t.dir, name))

		switch {
		case !hasEntry && statErr != nil:
			// Root document that was never written; nothing to track yet.
		case !hasEntry:
			report.MissingChecksum = append(report.MissingChecksum, name)
		case statErr != nil:
			report.Stale = append(report.Stale, name)
		default:
			hash, err := t.hashFile(name)
			if err != nil || hash != entry.Hash {
				report.Stale = append(report.Stale, name)
			} else {
				report.UpToDate = append(report.UpToDate, name)
			}
		}
	}
	return report
}
