package tui

import (
	"errors"
	"os"
	"os/exec"

	"github.com/staatzstreich/vela/pkg/storage"
)

// FindEditor resolves which editor to launch. The settings override wins,
// then $EDITOR, then $VISUAL, then the first of vim, nano, vi found on PATH.
func FindEditor(settings storage.Settings) (string, error) {
	if settings.Editor != "" {
		return settings.Editor, nil
	}
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor, nil
	}
	if editor := os.Getenv("VISUAL"); editor != "" {
		return editor, nil
	}
	for _, candidate := range []string{"vim", "nano", "vi"} {
		if _, err := exec.LookPath(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", errors.New("no editor found: set $EDITOR or configure one in settings")
}
