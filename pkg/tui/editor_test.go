package tui

import (
	"testing"

	"github.com/staatzstreich/vela/pkg/storage"
)

func TestFindEditor(t *testing.T) {
	t.Run("Settings override wins", func(t *testing.T) {
		t.Setenv("EDITOR", "emacs")
		t.Setenv("VISUAL", "code")
		editor, err := FindEditor(storage.Settings{Editor: "hx"})
		if err != nil {
			t.Fatal(err)
		}
		if editor != "hx" {
			t.Errorf("Expected hx, got %s", editor)
		}
	})

	t.Run("EDITOR beats VISUAL", func(t *testing.T) {
		t.Setenv("EDITOR", "emacs")
		t.Setenv("VISUAL", "code")
		editor, err := FindEditor(storage.Settings{})
		if err != nil {
			t.Fatal(err)
		}
		if editor != "emacs" {
			t.Errorf("Expected emacs, got %s", editor)
		}
	})

	t.Run("VISUAL used when EDITOR unset", func(t *testing.T) {
		t.Setenv("EDITOR", "")
		t.Setenv("VISUAL", "code")
		editor, err := FindEditor(storage.Settings{})
		if err != nil {
			t.Fatal(err)
		}
		if editor != "code" {
			t.Errorf("Expected code, got %s", editor)
		}
	})
}
