package panel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/staatzstreich/vela/pkg/sftp"
)

func remoteEntries() []sftp.FileEntry {
	return []sftp.FileEntry{
		sftp.ParentEntry(),
		{Name: "docs", IsDir: true},
		{Name: "a.txt", Size: 10},
		{Name: "b.txt", Size: 20},
	}
}

func TestLoadLocal(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.txt", "a.txt", ".hidden"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}

	t.Run("Sorted with parent entry first", func(t *testing.T) {
		p := New(dir)
		if err := p.LoadLocal(); err != nil {
			t.Fatal(err)
		}
		var names []string
		for _, e := range p.Entries {
			names = append(names, e.Name)
		}
		want := []string{"..", "sub", ".hidden", "a.txt", "b.txt"}
		if len(names) != len(want) {
			t.Fatalf("Expected %v, got %v", want, names)
		}
		for i := range want {
			if names[i] != want[i] {
				t.Errorf("Position %d: expected %s, got %s", i, want[i], names[i])
			}
		}
	})

	t.Run("Hidden files skipped when ShowHidden off", func(t *testing.T) {
		p := New(dir)
		p.ShowHidden = false
		if err := p.LoadLocal(); err != nil {
			t.Fatal(err)
		}
		for _, e := range p.Entries {
			if e.Name == ".hidden" {
				t.Error("Expected hidden file to be skipped")
			}
		}
	})

	t.Run("Filesystem root has no parent entry", func(t *testing.T) {
		p := New("/")
		if err := p.LoadLocal(); err != nil {
			t.Fatal(err)
		}
		if len(p.Entries) > 0 && p.Entries[0].IsParent() {
			t.Error("Expected no parent entry at filesystem root")
		}
	})

	t.Run("Reload clears marks and clamps cursor", func(t *testing.T) {
		p := New(dir)
		if err := p.LoadLocal(); err != nil {
			t.Fatal(err)
		}
		p.Cursor = len(p.Entries) - 1
		p.ToggleMark()
		if p.MarkCount() != 1 {
			t.Fatal("Expected one mark before reload")
		}
		p.Cursor = 100
		if err := p.LoadLocal(); err != nil {
			t.Fatal(err)
		}
		if p.MarkCount() != 0 {
			t.Error("Expected marks cleared on reload")
		}
		if p.Cursor >= len(p.Entries) {
			t.Errorf("Expected cursor clamped, got %d", p.Cursor)
		}
	})
}

func TestCursorMovement(t *testing.T) {
	p := New("/remote")
	p.LoadRemote("/remote", remoteEntries())

	p.MoveUp()
	if p.Cursor != 0 {
		t.Errorf("Expected cursor pinned at 0, got %d", p.Cursor)
	}
	for i := 0; i < 10; i++ {
		p.MoveDown()
	}
	if p.Cursor != len(p.Entries)-1 {
		t.Errorf("Expected cursor pinned at last entry, got %d", p.Cursor)
	}
}

func TestMarks(t *testing.T) {
	t.Run("Parent entry is never markable", func(t *testing.T) {
		p := New("/remote")
		p.LoadRemote("/remote", remoteEntries())
		p.Cursor = 0
		p.ToggleMark()
		if p.MarkCount() != 0 {
			t.Error("Expected parent entry to stay unmarked")
		}
	})

	t.Run("Toggle sets and clears", func(t *testing.T) {
		p := New("/remote")
		p.LoadRemote("/remote", remoteEntries())
		p.Cursor = 2
		p.ToggleMark()
		if !p.IsMarked(2) {
			t.Error("Expected entry marked")
		}
		p.ToggleMark()
		if p.IsMarked(2) {
			t.Error("Expected entry unmarked after second toggle")
		}
	})

	t.Run("MarkAll toggles", func(t *testing.T) {
		p := New("/remote")
		p.LoadRemote("/remote", remoteEntries())
		p.MarkAll()
		if p.MarkCount() != 3 {
			t.Errorf("Expected 3 marks, got %d", p.MarkCount())
		}
		if p.IsMarked(0) {
			t.Error("Expected parent entry excluded from mark all")
		}
		p.MarkAll()
		if p.MarkCount() != 0 {
			t.Errorf("Expected all marks cleared, got %d", p.MarkCount())
		}
	})
}

func TestTargets(t *testing.T) {
	t.Run("Marked entries in listing order", func(t *testing.T) {
		p := New("/remote")
		p.LoadRemote("/remote", remoteEntries())
		p.Cursor = 3
		p.ToggleMark()
		p.Cursor = 1
		p.ToggleMark()
		targets := p.Targets()
		if len(targets) != 2 {
			t.Fatalf("Expected 2 targets, got %d", len(targets))
		}
		if targets[0].Name != "docs" || targets[1].Name != "b.txt" {
			t.Errorf("Expected listing order, got %s, %s", targets[0].Name, targets[1].Name)
		}
	})

	t.Run("No marks falls back to highlighted entry", func(t *testing.T) {
		p := New("/remote")
		p.LoadRemote("/remote", remoteEntries())
		p.Cursor = 2
		targets := p.Targets()
		if len(targets) != 1 || targets[0].Name != "a.txt" {
			t.Errorf("Expected single highlighted target, got %v", targets)
		}
	})

	t.Run("Highlighted parent entry yields nothing", func(t *testing.T) {
		p := New("/remote")
		p.LoadRemote("/remote", remoteEntries())
		p.Cursor = 0
		if targets := p.Targets(); len(targets) != 0 {
			t.Errorf("Expected no targets, got %v", targets)
		}
	})
}

func TestReset(t *testing.T) {
	p := New("/remote")
	p.LoadRemote("/remote", remoteEntries())
	p.Cursor = 2
	p.ToggleMark()
	p.Reset("/elsewhere")
	if p.Path != "/elsewhere" || len(p.Entries) != 0 || p.Cursor != 0 || p.MarkCount() != 0 {
		t.Error("Expected panel fully reset")
	}
}
