package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/aquabot/internal/reading"
)

// State is the persisted notification state
type State struct {
	LastSatisfiedDate string           `json:"last_satisfied_date,omitempty"` // 2006-01-02 in the configured time zone
	LastReading       *reading.Reading `json:"last_reading,omitempty"`
	LastMessage       string           `json:"last_message,omitempty"`
	UpdatedAt         string           `json:"updated_at,omitempty"`
}

// Storage handles persistence of the notification state
type Storage struct {
	path string
}

// New creates a new Storage instance backed by the file at path
func New(path string) (*Storage, error) {
	if path == "" {
		return nil, fmt.Errorf("state file path is required")
	}

	// Expand ~ to home directory
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		path: path,
	}, nil
}

// Path returns the state file location
func (s *Storage) Path() string {
	return s.path
}

// LoadState loads the state from disk
func (s *Storage) LoadState() (*State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			// No previous state, nothing delivered yet
			return &State{}, nil
		}
		return nil, fmt.Errorf("reading state: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parsing state: %w", err)
	}

	return &state, nil
}

// SaveState saves the state to disk
func (s *Storage) SaveState(state *State) error {
	// Set updated timestamp
	state.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}
	defer os.Remove(tmp.Name()) // nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() // nolint:errcheck
		return fmt.Errorf("writing state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing state: %w", err)
	}

	return nil
}
