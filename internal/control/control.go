package control

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/xscout/xscout/internal/models"
)

// Interface is the accessor for the durable run/trigger record. The
// storage mechanism behind it is an implementation detail; operators (or
// the HTTP API) write it and the control loop polls it.
type Interface interface {
	// Get returns the current state. A missing or unreadable record
	// yields the default state: running, no pending trigger.
	Get() models.ControlState

	// Set replaces the stored state.
	Set(state models.ControlState) error

	// ConsumeTrigger atomically reads and clears the trigger_now flag,
	// returning its previous value. A trigger is honored at most once.
	ConsumeTrigger() bool
}

// FileStore keeps the control state in a small JSON file
type FileStore struct {
	path string
	mu   sync.Mutex
}

// Ensure FileStore implements Interface
var _ Interface = (*FileStore)(nil)

// NewFileStore creates a file-backed control store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Get() models.ControlState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read()
}

func (f *FileStore) Set(state models.ControlState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.write(state)
}

func (f *FileStore) ConsumeTrigger() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	state := f.read()
	if !state.TriggerNow {
		return false
	}

	state.TriggerNow = false
	if err := f.write(state); err != nil {
		logrus.Errorf("Failed to reset manual trigger: %v", err)
	}
	return true
}

func (f *FileStore) read() models.ControlState {
	// Default: scheduled scans enabled, no pending trigger
	state := models.ControlState{Running: true}

	data, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logrus.Errorf("Failed to read control state: %v", err)
		}
		return state
	}

	if err := json.Unmarshal(data, &state); err != nil {
		logrus.Errorf("Failed to parse control state: %v", err)
		return models.ControlState{Running: true}
	}
	return state
}

func (f *FileStore) write(state models.ControlState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding control state: %w", err)
	}

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating control state directory: %w", err)
		}
	}

	// Write-then-rename so readers never see a partial record
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing control state: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replacing control state: %w", err)
	}
	return nil
}
