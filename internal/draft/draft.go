// Package draft keeps the answers of a commit that failed after composing,
// so `quill commit --retry` can reuse them without prompting again.
package draft

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/AbdelazizMoustafa10m/quill/internal/commit"
)

// ErrNoDraft is returned by Load when no draft exists for the repository.
var ErrNoDraft = errors.New("no saved draft")

// Draft is the on-disk record of one composed commit.
type Draft struct {
	RepoRoot string         `json:"repo_root"`
	Answers  commit.Answers `json:"answers"`
	Message  string         `json:"message"`
	SavedAt  time.Time      `json:"saved_at"`
}

// Store reads and writes drafts under a directory, one file per repository.
type Store struct {
	dir string
	now func() time.Time
}

// NewStore returns a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// DefaultStore returns a Store under the user cache directory
// (e.g. ~/.cache/quill/drafts on Linux).
func DefaultStore() (*Store, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return nil, fmt.Errorf("draft: locating cache dir: %w", err)
	}
	return NewStore(filepath.Join(base, "quill", "drafts")), nil
}

// Dir returns the directory the store writes to.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the draft file for repoRoot. File names are the xxhash of the
// cleaned root path so any repository location maps to a flat, safe name.
func (s *Store) Path(repoRoot string) string {
	sum := xxhash.Sum64String(filepath.Clean(repoRoot))
	return filepath.Join(s.dir, strconv.FormatUint(sum, 16)+".json")
}

// Save writes the draft for repoRoot, replacing any previous one.
func (s *Store) Save(repoRoot string, answers commit.Answers, message string) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("draft: creating %s: %w", s.dir, err)
	}
	d := Draft{
		RepoRoot: filepath.Clean(repoRoot),
		Answers:  answers,
		Message:  message,
		SavedAt:  s.now().UTC(),
	}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("draft: encoding: %w", err)
	}

	path := s.Path(repoRoot)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("draft: writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("draft: saving %s: %w", path, err)
	}
	return nil
}

// Load returns the draft saved for repoRoot, or ErrNoDraft.
func (s *Store) Load(repoRoot string) (*Draft, error) {
	path := s.Path(repoRoot)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoDraft
		}
		return nil, fmt.Errorf("draft: reading %s: %w", path, err)
	}

	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("draft: decoding %s: %w", path, err)
	}
	// Guard against hash collisions between repository paths.
	if d.RepoRoot != filepath.Clean(repoRoot) {
		return nil, ErrNoDraft
	}
	return &d, nil
}

// Clear removes the draft for repoRoot. A missing draft is not an error.
func (s *Store) Clear(repoRoot string) error {
	if err := os.Remove(s.Path(repoRoot)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("draft: clearing: %w", err)
	}
	return nil
}
