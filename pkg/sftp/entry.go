package sftp

import (
	"os"
	"sort"
	"time"
)

// FileEntry represents one directory child on either side.
// Size, ModTime and Permissions are zero-valued when unknown; Permissions
// is only populated for remote entries.
type FileEntry struct {
	Name        string
	Size        int64
	ModTime     time.Time
	IsDir       bool
	Permissions string
}

// ParentEntry is the synthetic ".." entry injected at the head of every
// listing except at the root. It can never be marked, renamed or deleted.
func ParentEntry() FileEntry {
	return FileEntry{Name: "..", IsDir: true}
}

// IsParent reports whether the entry is the synthetic ".." entry.
func (e FileEntry) IsParent() bool {
	return e.Name == ".."
}

// SortEntries orders a listing in place: directories before files, each
// group case-sensitive lexicographic by name, ".." always first.
func SortEntries(entries []FileEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.IsParent() != b.IsParent() {
			return a.IsParent()
		}
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		return a.Name < b.Name
	})
}

// FormatPermissions converts a Unix mode bitmask into a "rwxr-xr-x" string.
func FormatPermissions(mode os.FileMode) string {
	perm := mode.Perm()
	flags := []struct {
		bit os.FileMode
		ch  byte
	}{
		{0o400, 'r'}, {0o200, 'w'}, {0o100, 'x'},
		{0o040, 'r'}, {0o020, 'w'}, {0o010, 'x'},
		{0o004, 'r'}, {0o002, 'w'}, {0o001, 'x'},
	}
	buf := make([]byte, 0, 9)
	for _, f := range flags {
		if perm&f.bit != 0 {
			buf = append(buf, f.ch)
		} else {
			buf = append(buf, '-')
		}
	}
	return string(buf)
}

func entryFromInfo(info os.FileInfo) FileEntry {
	e := FileEntry{
		Name:        info.Name(),
		ModTime:     info.ModTime(),
		IsDir:       info.IsDir(),
		Permissions: FormatPermissions(info.Mode()),
	}
	if !e.IsDir {
		e.Size = info.Size()
	}
	return e
}
