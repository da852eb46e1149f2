// Package store persists the single cross-run key this client keeps: the id
// of the last active long-form job, so a new process can resume polling an
// in-flight job.
package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"vidmatic/internal/dirs"
)

const jobFileName = "long-video-job"

// JobStore reads and writes the job pointer under a base directory.
type JobStore struct {
	dir string
}

// New returns a JobStore rooted at dir.
func New(dir string) *JobStore {
	return &JobStore{dir: dir}
}

// Default roots the store at the app state dir.
func Default() (*JobStore, error) {
	d, err := dirs.StateDir()
	if err != nil {
		return nil, err
	}
	return New(d), nil
}

func (s *JobStore) path() string {
	return filepath.Join(s.dir, jobFileName)
}

// Save records jobID as the active long-form job.
func (s *JobStore) Save(jobID string) error {
	if strings.TrimSpace(jobID) == "" {
		return errors.New("empty job id")
	}
	if err := dirs.Ensure(s.dir); err != nil {
		return err
	}
	return os.WriteFile(s.path(), []byte(jobID+"\n"), 0o644)
}

// Load returns the persisted job id, or "" when none is stored.
func (s *JobStore) Load() (string, error) {
	b, err := os.ReadFile(s.path())
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// Clear removes the pointer. Clearing an absent pointer is not an error.
func (s *JobStore) Clear() error {
	err := os.Remove(s.path())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
