package ssh

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AuthMethod selects how a connection authenticates
type AuthMethod string

const (
	AuthKey      AuthMethod = "key"
	AuthPassword AuthMethod = "password"
)

// Config represents SSH connection configuration
type Config struct {
	Host       string
	Port       int
	Username   string
	Auth       AuthMethod
	Password   string // Only set for password auth; never persisted
	KeyPath    string // Path to private key file (key auth)
	KeyContent []byte // Loaded private key content
}

// Validate checks if the SSH configuration is valid
func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return errors.New("invalid port number")
	}
	if c.Username == "" {
		return errors.New("username is required")
	}
	if c.Auth != AuthKey && c.Auth != AuthPassword {
		return fmt.Errorf("unknown auth method %q", c.Auth)
	}
	return nil
}

// LoadPrivateKey loads the private key file for key-auth configs.
// A missing key file is reported as KeyNotFoundError so callers can
// distinguish it from other connect failures.
func (c *Config) LoadPrivateKey() error {
	if c.Auth != AuthKey {
		return nil
	}

	path := c.KeyPath
	if path == "" {
		path = "~/.ssh/id_rsa"
	}
	path = ExpandLocalTilde(path)

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &KeyNotFoundError{Path: path}
		}
		return err
	}
	c.KeyContent = content
	return nil
}

// ConnectionID returns a unique identifier for this connection
func (c *Config) ConnectionID() string {
	return fmt.Sprintf("%s@%s:%d", c.Username, c.Host, c.Port)
}

// Addr returns the host:port dial address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// KeyNotFoundError reports a key-auth config whose key file is absent.
type KeyNotFoundError struct {
	Path string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("key file not found: %s", e.Path)
}

// ExpandLocalTilde expands a leading ~ or ~/ to the process home directory.
func ExpandLocalTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}
