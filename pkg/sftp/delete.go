package sftp

// DeleteTarget names one entry scheduled for deletion.
type DeleteTarget struct {
	Name  string
	IsDir bool
}

// DeleteFunc removes a single named entry.
type DeleteFunc func(name string, isDir bool) error

// DeleteAll executes each deletion independently, in order. Unlike a
// batch transfer it never aborts early: deletion is best-effort
// cleanup, so every entry is attempted even after failures. It returns
// how many deletions succeeded and the last error encountered.
func DeleteAll(targets []DeleteTarget, remove DeleteFunc) (int, error) {
	deleted := 0
	var lastErr error
	for _, t := range targets {
		if err := remove(t.Name, t.IsDir); err != nil {
			lastErr = err
			continue
		}
		deleted++
	}
	return deleted, lastErr
}

// Remove deletes one entry in the session's current remote directory,
// recursing for directories.
func (s *Session) Remove(name string, isDir bool) error {
	if isDir {
		return s.DeleteDirectory(name)
	}
	return s.DeleteFile(name)
}
