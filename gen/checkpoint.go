package gen

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// checkpointFile is the JSON-serializable shape of an UnevaluatedGen: its
// members and species info, without the DistCache (Restore starts a fresh,
// empty one). Members' states go through encoding/json as-is, so S must
// itself round-trip through JSON.
type checkpointFile[S State[S]] struct {
	Mems    []Member[S]
	Species SpeciesInfo
}

// Snapshot writes g to path as JSON via a temp-file-then-rename, grounded
// on the teacher's evolution/checkpoint.go SaveCheckpoint (atomic rename
// avoids a torn write if the process is killed mid-save).
func Snapshot[S State[S]](g *UnevaluatedGen[S], path string) error {
	data, err := json.MarshalIndent(checkpointFile[S]{Mems: g.Mems, Species: g.Species}, "", "  ")
	if err != nil {
		return fmt.Errorf("gen: marshal checkpoint: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".checkpoint-*.tmp")
	if err != nil {
		return fmt.Errorf("gen: create checkpoint temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("gen: write checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("gen: close checkpoint temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("gen: rename checkpoint into place: %w", err)
	}
	return nil
}

// Restore reads a checkpoint written by Snapshot.
func Restore[S State[S]](path string) (*UnevaluatedGen[S], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gen: read checkpoint: %w", err)
	}
	var cf checkpointFile[S]
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("gen: unmarshal checkpoint: %w", err)
	}
	return &UnevaluatedGen[S]{Mems: cf.Mems, Species: cf.Species, Dists: NewDistCache()}, nil
}
