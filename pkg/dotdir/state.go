package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	sweepFile = "sweep.json"
)

// SweepState represents the persisted outcome of the most recent sweep run.
type SweepState struct {
	// RunID uniquely identifies the sweep run.
	RunID string `json:"run_id"`

	// StartedAt and CompletedAt bound the run.
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`

	// Subreddits and Keywords are the sweep inputs.
	Subreddits []string `json:"subreddits"`
	Keywords   []string `json:"keywords"`

	// PostsCollected and CommentsCollected are run totals after
	// de-duplication.
	PostsCollected    int `json:"posts_collected"`
	CommentsCollected int `json:"comments_collected"`

	// ReportPath is the markdown report written for the run, if any.
	ReportPath string `json:"report_path,omitempty"`
}

// LoadSweepState loads the sweep state from a target .lurker/sweep.json.
// Returns nil, nil if no sweep state exists (no sweep has run yet).
// If overrideDir is non-empty, it is used instead of the default ~/.lurker/ location.
func (m *Manager) LoadSweepState(overrideDir string) (*SweepState, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, sweepFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading sweep state: %w", err)
	}

	state := &SweepState{}
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parsing sweep state: %w", err)
	}

	return state, nil
}

// SaveSweepState persists the sweep state to a target .lurker/sweep.json.
func (m *Manager) SaveSweepState(state *SweepState, overrideDir string) error {
	if state == nil {
		return errors.New("cannot save nil sweep state")
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling sweep state: %w", err)
	}

	path := filepath.Join(dir, sweepFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing sweep state: %w", err)
	}

	return nil
}

// ClearSweepState removes the sweep state file.
// Returns nil if the file doesn't exist (already cleared).
func (m *Manager) ClearSweepState(overrideDir string) error {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, sweepFile)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing sweep state: %w", err)
	}

	return nil
}
