package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultFile is the snapshot filename used when none is configured.
const DefaultFile = ".github_trending_cache.json"

// Store keeps the last successful fetch in a single JSON file. It does no
// locking: concurrent writers race and the last one wins.
type Store struct {
	path    string
	timeout time.Duration
	now     func() time.Time
}

func NewStore(path string, timeout time.Duration) *Store {
	if path == "" {
		path = DefaultFile
	}
	return &Store{path: path, timeout: timeout, now: time.Now}
}

func (s *Store) Path() string { return s.path }

func (s *Store) Timeout() time.Duration { return s.timeout }

// Read returns the cached repositories while the snapshot is younger than the
// store timeout. A missing, unreadable, expired or empty snapshot is reported
// as absent.
func (s *Store) Read() ([]Repository, bool) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, false
	}
	if !s.fresh(snap) || len(snap.Data) == 0 {
		return nil, false
	}
	return snap.Data, true
}

func (s *Store) fresh(snap *Snapshot) bool {
	age := float64(s.now().UnixNano())/1e9 - snap.Timestamp
	return age < s.timeout.Seconds()
}

// Snapshot loads the file without checking its age.
func (s *Store) Snapshot() (*Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot %s: %w", s.path, err)
	}
	return &snap, nil
}

// Write replaces the snapshot with repos stamped at the current time.
func (s *Store) Write(repos []Repository) error {
	if repos == nil {
		repos = []Repository{}
	}
	snap := Snapshot{
		Timestamp: float64(s.now().UnixNano()) / 1e9,
		Data:      repos,
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating cache dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// Clear removes the snapshot file. A missing file is not an error.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing snapshot: %w", err)
	}
	return nil
}
