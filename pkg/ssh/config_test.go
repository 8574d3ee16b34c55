package ssh

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	valid := Config{
		Host:     "example.com",
		Port:     22,
		Username: "deploy",
		Auth:     AuthKey,
	}

	t.Run("Valid config", func(t *testing.T) {
		c := valid
		if err := c.Validate(); err != nil {
			t.Errorf("Expected valid config, got %v", err)
		}
	})

	t.Run("Missing host", func(t *testing.T) {
		c := valid
		c.Host = ""
		if err := c.Validate(); err == nil {
			t.Error("Expected error for missing host")
		}
	})

	t.Run("Invalid port", func(t *testing.T) {
		for _, port := range []int{0, -1, 70000} {
			c := valid
			c.Port = port
			if err := c.Validate(); err == nil {
				t.Errorf("Expected error for port %d", port)
			}
		}
	})

	t.Run("Missing username", func(t *testing.T) {
		c := valid
		c.Username = ""
		if err := c.Validate(); err == nil {
			t.Error("Expected error for missing username")
		}
	})

	t.Run("Unknown auth method", func(t *testing.T) {
		c := valid
		c.Auth = AuthMethod("agent")
		if err := c.Validate(); err == nil {
			t.Error("Expected error for unknown auth method")
		}
	})
}

func TestLoadPrivateKey(t *testing.T) {
	t.Run("Password auth skips key loading", func(t *testing.T) {
		c := Config{Auth: AuthPassword}
		if err := c.LoadPrivateKey(); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	t.Run("Existing key file is loaded", func(t *testing.T) {
		keyPath := filepath.Join(t.TempDir(), "id_ed25519")
		if err := os.WriteFile(keyPath, []byte("fake key material"), 0600); err != nil {
			t.Fatal(err)
		}
		c := Config{Auth: AuthKey, KeyPath: keyPath}
		if err := c.LoadPrivateKey(); err != nil {
			t.Fatalf("Expected key to load, got %v", err)
		}
		if string(c.KeyContent) != "fake key material" {
			t.Errorf("Unexpected key content: %q", c.KeyContent)
		}
	})

	t.Run("Missing key file yields KeyNotFoundError", func(t *testing.T) {
		keyPath := filepath.Join(t.TempDir(), "missing_key")
		c := Config{Auth: AuthKey, KeyPath: keyPath}
		err := c.LoadPrivateKey()
		var knf *KeyNotFoundError
		if !errors.As(err, &knf) {
			t.Fatalf("Expected KeyNotFoundError, got %v", err)
		}
		if knf.Path != keyPath {
			t.Errorf("Expected path %s, got %s", keyPath, knf.Path)
		}
	})
}

func TestConnectionID(t *testing.T) {
	c := Config{Host: "example.com", Port: 2222, Username: "deploy"}
	if got := c.ConnectionID(); got != "deploy@example.com:2222" {
		t.Errorf("Unexpected connection ID: %s", got)
	}
	if got := c.Addr(); got != "example.com:2222" {
		t.Errorf("Unexpected addr: %s", got)
	}
}

func TestExpandLocalTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}

	cases := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/projects", filepath.Join(home, "projects")},
		{"/var/log", "/var/log"},
		{"~user/projects", "~user/projects"},
		{"", ""},
	}
	for _, c := range cases {
		if got := ExpandLocalTilde(c.in); got != c.want {
			t.Errorf("ExpandLocalTilde(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
