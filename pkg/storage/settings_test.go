package storage

import (
	"testing"
)

func TestSettingsStore(t *testing.T) {
	t.Run("Defaults on first run", func(t *testing.T) {
		store, err := NewSettingsStore(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		s := store.Get()
		if s.DefaultPort != 22 || s.DefaultUsername != "root" || !s.ShowHidden {
			t.Errorf("Unexpected defaults: %+v", s)
		}
	})

	t.Run("Update persists across reopen", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewSettingsStore(dir)
		if err != nil {
			t.Fatal(err)
		}
		s := store.Get()
		s.Editor = "hx"
		s.ShowHidden = false
		if err := store.Update(s); err != nil {
			t.Fatal(err)
		}

		reopened, err := NewSettingsStore(dir)
		if err != nil {
			t.Fatal(err)
		}
		got := reopened.Get()
		if got.Editor != "hx" || got.ShowHidden {
			t.Errorf("Settings did not round-trip: %+v", got)
		}
	})

	t.Run("Reset restores defaults", func(t *testing.T) {
		store, err := NewSettingsStore(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		s := store.Get()
		s.DefaultPort = 2222
		store.Update(s)

		if err := store.Reset(); err != nil {
			t.Fatal(err)
		}
		if store.Get().DefaultPort != 22 {
			t.Error("Expected defaults after reset")
		}
	})
}
