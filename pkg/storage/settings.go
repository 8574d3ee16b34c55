package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Settings represents application settings
type Settings struct {
	DefaultPort     int    `json:"defaultPort"`
	DefaultUsername string `json:"defaultUsername"`
	// Editor overrides the $EDITOR/$VISUAL lookup when set.
	Editor     string `json:"editor,omitempty"`
	ShowHidden bool   `json:"showHidden"`
}

// SettingsStore manages application settings
type SettingsStore struct {
	settings Settings
	filePath string
	mu       sync.RWMutex
}

// NewSettingsStore creates a settings store backed by dataDir/settings.json
func NewSettingsStore(dataDir string) (*SettingsStore, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	store := &SettingsStore{
		settings: defaultSettings(),
		filePath: filepath.Join(dataDir, "settings.json"),
	}

	if err := store.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		// No file yet, persist the defaults
		store.save()
	}

	return store, nil
}

func defaultSettings() Settings {
	return Settings{
		DefaultPort:     22,
		DefaultUsername: "root",
		ShowHidden:      true,
	}
}

func (s *SettingsStore) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, &s.settings)
}

func (s *SettingsStore) save() error {
	data, err := json.MarshalIndent(s.settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	return os.WriteFile(s.filePath, data, 0600)
}

// Get returns current settings
func (s *SettingsStore) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Update replaces the settings and persists them
func (s *SettingsStore) Update(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = settings
	return s.save()
}

// Reset restores the defaults
func (s *SettingsStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = defaultSettings()
	return s.save()
}
