// Package panel holds the in-memory snapshot of one side of the
// dual-pane view: the listing, the cursor and the marked entries. The
// shape is identical for the local and the remote side so transfer code
// is side-agnostic.
package panel

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/staatzstreich/vela/pkg/sftp"
)

// Panel is the model of one file panel.
type Panel struct {
	Path    string
	Entries []sftp.FileEntry
	Cursor  int
	// ShowHidden controls whether dotfiles appear in local listings.
	ShowHidden bool

	// Marked indices are positions in the current listing; any reload
	// clears them because indices are not stable across listings.
	marked map[int]struct{}
}

// New creates a panel rooted at path.
func New(path string) *Panel {
	return &Panel{
		Path:       path,
		ShowHidden: true,
		marked:     make(map[int]struct{}),
	}
}

// LoadLocal reads the panel's path from the local filesystem. ".." is
// injected unless the path is the filesystem root; directories sort
// before files, case-sensitive lexicographic within each group. The
// cursor is clamped and all marks are cleared.
func (p *Panel) LoadLocal() error {
	dirEntries, err := os.ReadDir(p.Path)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", p.Path, err)
	}

	entries := make([]sftp.FileEntry, 0, len(dirEntries)+1)
	if filepath.Dir(p.Path) != p.Path {
		entries = append(entries, sftp.ParentEntry())
	}
	for _, de := range dirEntries {
		if !p.ShowHidden && de.Name()[0] == '.' {
			continue
		}
		entry := sftp.FileEntry{Name: de.Name(), IsDir: de.IsDir()}
		if info, err := de.Info(); err == nil {
			entry.ModTime = info.ModTime()
			if !entry.IsDir {
				entry.Size = info.Size()
			}
		}
		entries = append(entries, entry)
	}
	sftp.SortEntries(entries)

	p.Entries = entries
	p.clampCursor()
	p.ClearMarks()
	return nil
}

// LoadRemote replaces the panel content with a remote listing.
func (p *Panel) LoadRemote(path string, entries []sftp.FileEntry) {
	p.Path = path
	p.Entries = entries
	p.clampCursor()
	p.ClearMarks()
}

// Reset empties the panel (used when disconnecting the remote side).
func (p *Panel) Reset(path string) {
	p.Path = path
	p.Entries = nil
	p.Cursor = 0
	p.ClearMarks()
}

func (p *Panel) clampCursor() {
	if p.Cursor >= len(p.Entries) {
		p.Cursor = len(p.Entries) - 1
	}
	if p.Cursor < 0 {
		p.Cursor = 0
	}
}

// MoveUp moves the cursor one entry up.
func (p *Panel) MoveUp() {
	if p.Cursor > 0 {
		p.Cursor--
	}
}

// MoveDown moves the cursor one entry down.
func (p *Panel) MoveDown() {
	if p.Cursor+1 < len(p.Entries) {
		p.Cursor++
	}
}

// Selected returns the entry under the cursor.
func (p *Panel) Selected() (sftp.FileEntry, bool) {
	if p.Cursor < 0 || p.Cursor >= len(p.Entries) {
		return sftp.FileEntry{}, false
	}
	return p.Entries[p.Cursor], true
}

// ToggleMark toggles the mark on the entry under the cursor. The ".."
// entry can never be marked.
func (p *Panel) ToggleMark() {
	entry, ok := p.Selected()
	if !ok || entry.IsParent() {
		return
	}
	if _, marked := p.marked[p.Cursor]; marked {
		delete(p.marked, p.Cursor)
	} else {
		p.marked[p.Cursor] = struct{}{}
	}
}

// MarkAll marks every non-".." entry; if all of them are already
// marked it clears the marks instead (toggle behavior).
func (p *Panel) MarkAll() {
	eligible := make([]int, 0, len(p.Entries))
	for i, e := range p.Entries {
		if !e.IsParent() {
			eligible = append(eligible, i)
		}
	}

	all := true
	for _, i := range eligible {
		if _, marked := p.marked[i]; !marked {
			all = false
			break
		}
	}

	if all {
		p.ClearMarks()
		return
	}
	for _, i := range eligible {
		p.marked[i] = struct{}{}
	}
}

// ClearMarks removes all marks.
func (p *Panel) ClearMarks() {
	p.marked = make(map[int]struct{})
}

// IsMarked reports whether the entry at index i is marked.
func (p *Panel) IsMarked(i int) bool {
	_, ok := p.marked[i]
	return ok
}

// MarkCount returns the number of marked entries.
func (p *Panel) MarkCount() int {
	return len(p.marked)
}

// Targets returns the entries the next batch action applies to: the
// marked entries in listing-index order, or the single highlighted
// entry when nothing is marked. The ".." entry is never a target.
func (p *Panel) Targets() []sftp.FileEntry {
	if len(p.marked) == 0 {
		entry, ok := p.Selected()
		if !ok || entry.IsParent() {
			return nil
		}
		return []sftp.FileEntry{entry}
	}

	indices := make([]int, 0, len(p.marked))
	for i := range p.marked {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	targets := make([]sftp.FileEntry, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(p.Entries) {
			continue
		}
		if e := p.Entries[i]; !e.IsParent() {
			targets = append(targets, e)
		}
	}
	return targets
}

// EnterSelected descends into the selected directory (or the parent for
// "..") on the local side.
func (p *Panel) EnterSelected() error {
	entry, ok := p.Selected()
	if !ok || !entry.IsDir {
		return nil
	}
	if entry.IsParent() {
		p.Path = filepath.Dir(p.Path)
	} else {
		p.Path = filepath.Join(p.Path, entry.Name)
	}
	p.Cursor = 0
	return p.LoadLocal()
}

// GoUp navigates to the parent directory on the local side.
func (p *Panel) GoUp() error {
	parent := filepath.Dir(p.Path)
	if parent == p.Path {
		return nil
	}
	p.Path = parent
	p.Cursor = 0
	return p.LoadLocal()
}
