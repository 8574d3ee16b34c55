package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/staatzstreich/vela/pkg/ssh"
)

// Profile represents a saved connection profile
type Profile struct {
	Name      string         `json:"name"`
	Host      string         `json:"host"`
	Port      int            `json:"port"`
	User      string         `json:"user"`
	Auth      ssh.AuthMethod `json:"auth"`
	KeyPath   string         `json:"keyPath,omitempty"`
	// Remote directory to switch into right after connecting. Empty means
	// the server's login home is used. A leading ~ expands to the
	// session's resolved home.
	RemotePath string `json:"remotePath,omitempty"`
	// Local directory for the local panel right after connecting. Empty
	// means the current local directory is kept.
	LocalPath string `json:"localPath,omitempty"`
}

// SSHConfig builds the transport configuration for this profile.
// password is only used for password-auth profiles.
func (p Profile) SSHConfig(password string) *ssh.Config {
	cfg := &ssh.Config{
		Host:     p.Host,
		Port:     p.Port,
		Username: p.User,
		Auth:     p.Auth,
		KeyPath:  p.KeyPath,
	}
	if p.Auth == ssh.AuthPassword {
		cfg.Password = password
	}
	return cfg
}

// StartRemotePath returns the profile's remote start directory, or ""
// when absent. A present-but-blank path is treated as absent.
func (p Profile) StartRemotePath() string {
	return strings.TrimSpace(p.RemotePath)
}

// StartLocalPath returns the profile's local start directory with a
// leading ~ expanded to the process home, or "" when absent.
func (p Profile) StartLocalPath() string {
	trimmed := strings.TrimSpace(p.LocalPath)
	if trimmed == "" {
		return ""
	}
	return ssh.ExpandLocalTilde(trimmed)
}

// ProfileStore manages connection profiles persisted as JSON.
// Passwords are never written to the store.
type ProfileStore struct {
	profiles []Profile
	filePath string
	mu       sync.RWMutex
}

// NewProfileStore creates a profile store backed by dataDir/profiles.json
func NewProfileStore(dataDir string) (*ProfileStore, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	store := &ProfileStore{
		filePath: filepath.Join(dataDir, "profiles.json"),
	}

	if err := store.load(); err != nil {
		// Missing file is fine - it will be created on first save
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	return store, nil
}

// load reads profiles from disk
func (s *ProfileStore) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	// Handle empty file - treat as empty profile list
	if len(data) == 0 {
		return nil
	}

	var profiles []Profile
	if err := json.Unmarshal(data, &profiles); err != nil {
		// Invalid JSON - back it up and start empty rather than refusing
		// to launch
		backupPath := s.filePath + ".corrupted"
		if backupErr := os.WriteFile(backupPath, data, 0600); backupErr == nil {
			log.Printf("[ERROR] Corrupted profiles file backed up to %s: %v", backupPath, err)
			s.profiles = nil
			return nil
		}
		return fmt.Errorf("failed to parse profiles file: %w", err)
	}

	s.profiles = profiles
	return nil
}

// save writes profiles to disk
func (s *ProfileStore) save() error {
	data, err := json.MarshalIndent(s.profiles, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}
	return os.WriteFile(s.filePath, data, 0600)
}

// List returns all profiles in stored order
func (s *ProfileStore) List() []Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Profile, len(s.profiles))
	copy(out, s.profiles)
	return out
}

// Get returns the profile at index
func (s *ProfileStore) Get(index int) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 0 || index >= len(s.profiles) {
		return Profile{}, fmt.Errorf("profile index out of range: %d", index)
	}
	return s.profiles[index], nil
}

// Add appends a new profile
func (s *ProfileStore) Add(profile Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles = append(s.profiles, profile)
	return s.save()
}

// Update replaces the profile at index
func (s *ProfileStore) Update(index int, profile Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.profiles) {
		return fmt.Errorf("profile index out of range: %d", index)
	}
	s.profiles[index] = profile
	return s.save()
}

// Delete removes the profile at index
func (s *ProfileStore) Delete(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.profiles) {
		return fmt.Errorf("profile index out of range: %d", index)
	}
	s.profiles = append(s.profiles[:index], s.profiles[index+1:]...)
	return s.save()
}

// Len returns the number of stored profiles
func (s *ProfileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}
