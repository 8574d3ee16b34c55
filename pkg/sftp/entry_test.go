package sftp

import (
	"os"
	"testing"
)

func TestSortEntries(t *testing.T) {
	t.Run("Directories first, then case-sensitive lexicographic", func(t *testing.T) {
		entries := []FileEntry{
			{Name: "b.txt"},
			{Name: "A", IsDir: true},
			{Name: "a.txt"},
			ParentEntry(),
		}

		SortEntries(entries)

		want := []string{"..", "A", "a.txt", "b.txt"}
		if len(entries) != len(want) {
			t.Fatalf("Expected %d entries, got %d", len(want), len(entries))
		}
		for i, name := range want {
			if entries[i].Name != name {
				t.Errorf("Position %d: expected %q, got %q", i, name, entries[i].Name)
			}
		}
	})

	t.Run("Uppercase sorts before lowercase within a group", func(t *testing.T) {
		entries := []FileEntry{
			{Name: "zebra.txt"},
			{Name: "Makefile"},
			{Name: "alpha.txt"},
		}

		SortEntries(entries)

		if entries[0].Name != "Makefile" {
			t.Errorf("Expected Makefile first, got %q", entries[0].Name)
		}
	})

	t.Run("Parent entry stays ahead of other directories", func(t *testing.T) {
		entries := []FileEntry{
			{Name: "AAA", IsDir: true},
			ParentEntry(),
		}

		SortEntries(entries)

		if !entries[0].IsParent() {
			t.Errorf("Expected .. first, got %q", entries[0].Name)
		}
	})
}

func TestFormatPermissions(t *testing.T) {
	cases := []struct {
		mode uint32
		want string
	}{
		{0o755, "rwxr-xr-x"},
		{0o644, "rw-r--r--"},
		{0o700, "rwx------"},
		{0, "---------"},
	}

	for _, c := range cases {
		if got := FormatPermissions(os.FileMode(c.mode)); got != c.want {
			t.Errorf("FormatPermissions(%o) = %q, want %q", c.mode, got, c.want)
		}
	}
}

func TestExpandRemoteTilde(t *testing.T) {
	home := "/home/worker"

	if got := ExpandRemoteTilde("~/projects", home); got != "/home/worker/projects" {
		t.Errorf("Expected /home/worker/projects, got %q", got)
	}
	if got := ExpandRemoteTilde("~", home); got != home {
		t.Errorf("Expected %q, got %q", home, got)
	}
	if got := ExpandRemoteTilde("/var/log", home); got != "/var/log" {
		t.Errorf("Absolute path must pass through, got %q", got)
	}
	if got := ExpandRemoteTilde("~projects", home); got != "~projects" {
		t.Errorf("~ without separator must pass through, got %q", got)
	}
}
