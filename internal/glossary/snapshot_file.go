package glossary

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/termpipe/termpipe/internal/domain"
)

// snapshotFile is the on-disk form of a glossary snapshot, used to pre-warm
// the cache across restarts.
type snapshotFile struct {
	FetchedAt time.Time           `json:"fetched_at"`
	Revision  string              `json:"revision"`
	Entries   []snapshotFileEntry `json:"entries"`
}

type snapshotFileEntry struct {
	SourceTerm string `json:"source_term"`
	TargetTerm string `json:"target_term"`
	Notes      string `json:"notes,omitempty"`
}

// writeSnapshotFile persists the snapshot atomically: write to a temp file
// in the same directory, then rename over the target.
func writeSnapshotFile(path string, snap *domain.GlossarySnapshot) error {
	f := snapshotFile{
		FetchedAt: snap.FetchedAt,
		Revision:  snap.Revision,
		Entries:   make([]snapshotFileEntry, 0, len(snap.Entries)),
	}
	for _, e := range snap.Entries {
		f.Entries = append(f.Entries, snapshotFileEntry{
			SourceTerm: e.SourceTerm,
			TargetTerm: e.TargetTerm,
			Notes:      e.Notes,
		})
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("snapshot file: marshal: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("snapshot file: create temp: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("snapshot file: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("snapshot file: close: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("snapshot file: rename: %w", err)
	}

	return nil
}

// readSnapshotFile loads the snapshot file. Returns nil, nil when the file
// does not exist.
func readSnapshotFile(path string) (*domain.GlossarySnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("snapshot file: read %s: %w", path, err)
	}

	var f snapshotFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("snapshot file: decode %s: %w", path, err)
	}

	snap := &domain.GlossarySnapshot{
		FetchedAt: f.FetchedAt,
		Revision:  f.Revision,
		Entries:   make([]domain.GlossaryEntry, 0, len(f.Entries)),
	}
	for _, e := range f.Entries {
		snap.Entries = append(snap.Entries, domain.GlossaryEntry{
			SourceTerm: e.SourceTerm,
			TargetTerm: e.TargetTerm,
			Notes:      e.Notes,
		})
	}

	return snap, nil
}
