package sftp

import "fmt"

// PathError is any listing, stat, mutation or transfer failure reported
// by the remote side.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("remote path error: %v", e.Err)
	}
	return fmt.Sprintf("remote path error on %s: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

func pathErr(path string, err error) error {
	if err == nil {
		return nil
	}
	return &PathError{Path: path, Err: err}
}
