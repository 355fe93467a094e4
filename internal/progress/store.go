package progress

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/ygidtu/NetProphet-2.0/internal/errors"
)

// FileName is the name of the progress record inside the run directory.
const FileName = "progress.json"

// Store reads and writes the progress record of one run directory.
type Store struct {
	path string
}

// Open returns a Store for {dir}/progress.json. The file is not touched
// until the first read or write.
func Open(dir string) *Store {
	return &Store{path: filepath.Join(dir, FileName)}
}

// Path returns the location of the progress record.
func (s *Store) Path() string {
	return s.path
}

// Completed returns the completed stage numbers in ascending order.
// A missing record yields an empty slice.
func (s *Store) Completed() ([]int, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []int{}, nil
		}
		return nil, fmt.Errorf("read progress file: %w", err)
	}

	var stages []int
	if err := json.Unmarshal(data, &stages); err != nil {
		return nil, fmt.Errorf("parse progress file %s: %w", s.path, err)
	}

	return normalize(stages), nil
}

// IsComplete reports whether stage is recorded as complete.
func (s *Store) IsComplete(stage int) (bool, error) {
	stages, err := s.Completed()
	if err != nil {
		return false, err
	}
	_, found := slices.BinarySearch(stages, stage)
	return found, nil
}

// MarkComplete records stage as complete. Marking an already complete
// stage leaves the record unchanged and does not rewrite the file.
func (s *Store) MarkComplete(stage int) error {
	if stage < 1 {
		return errors.Wrapf(errors.ErrUnknownStage, "mark stage %d", stage)
	}

	stages, err := s.Completed()
	if err != nil {
		return err
	}
	if _, found := slices.BinarySearch(stages, stage); found {
		return nil
	}

	return s.write(normalize(append(stages, stage)))
}

// Reset removes every stage >= from from the record. Reset(1) clears the
// record entirely by deleting the file. This is the only way entries are
// ever removed; the engine itself never calls it.
func (s *Store) Reset(from int) error {
	if from <= 1 {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove progress file: %w", err)
		}
		return nil
	}

	stages, err := s.Completed()
	if err != nil {
		return err
	}

	kept := slices.DeleteFunc(stages, func(id int) bool { return id >= from })
	return s.write(kept)
}

// write replaces the record atomically: data is written to a temporary
// file first, then renamed into place.
func (s *Store) write(stages []int) error {
	data, err := json.Marshal(stages)
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create progress directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

// normalize sorts stages and drops duplicates. A hand-edited record may
// contain either.
func normalize(stages []int) []int {
	if stages == nil {
		return []int{}
	}
	slices.Sort(stages)
	return slices.Compact(stages)
}
