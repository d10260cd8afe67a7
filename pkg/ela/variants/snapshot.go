package variants

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/EurasianLatinArchive/ELA/pkg/ela/entity"
)

// snapshot is the on-disk form of a Store. The format is private: the only
// contract is that SaveSnapshot followed by LoadSnapshot reproduces an
// equivalent store. CSV is the human-facing surface.
type snapshot struct {
	Version int             `json:"version"`
	Records []entity.Record `json:"records"`
}

const snapshotVersion = 1

// SaveSnapshot persists the full registry to path, overwriting any previous
// snapshot.
func (s *Store) SaveSnapshot(path string) error {
	snap := snapshot{Version: snapshotVersion, Records: s.Records()}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot replaces the registry content with a previously persisted
// snapshot.
func (s *Store) LoadSnapshot(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	if err := s.Replace(snap.Records); err != nil {
		return fmt.Errorf("rebuild from snapshot: %w", err)
	}
	return nil
}
