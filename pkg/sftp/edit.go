package sftp

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/staatzstreich/vela/pkg/ssh"
	"github.com/staatzstreich/vela/pkg/storage"
)

// LocalEdit is an editor launch for a local file; after the editor
// exits the local listing is simply reloaded.
type LocalEdit struct {
	Path string
}

// RemoteEdit is an editor launch for a remote file that was downloaded
// to a scratch path. After the editor exits the scratch file's
// modification time decides whether it is uploaded back.
type RemoteEdit struct {
	ScratchPath string
	RemotePath  string
	// Modification time of the scratch file right after download,
	// before the editor ran.
	MTimeBefore time.Time
}

// PrepareRemoteEdit downloads remotePath into scratchDir on the calling
// goroutine and captures the scratch file's modification time. The
// caller resolves remotePath against the current directory before the
// download starts, so navigation during the edit cannot redirect it.
// The live session is touched only from this call, on the foreground.
func PrepareRemoteEdit(sess *Session, remotePath, scratchDir string) (*RemoteEdit, error) {
	return prepareEdit(sess.DownloadToDir, remotePath, scratchDir)
}

func prepareEdit(download func(remotePath, localDir string) (string, error), remotePath, scratchDir string) (*RemoteEdit, error) {
	if err := os.MkdirAll(scratchDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}

	scratchPath, err := download(remotePath, scratchDir)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(scratchPath)
	if err != nil {
		os.Remove(scratchPath)
		return nil, err
	}

	return &RemoteEdit{
		ScratchPath: scratchPath,
		RemotePath:  remotePath,
		MTimeBefore: info.ModTime(),
	}, nil
}

// Changed reports whether the scratch file was modified after the
// editor ran. Its modification time must be strictly newer than the one
// captured at download time; a vanished scratch file counts as
// unchanged. The editor's exit code plays no part.
func (e *RemoteEdit) Changed() bool {
	info, err := os.Stat(e.ScratchPath)
	if err != nil {
		return false
	}
	return info.ModTime().After(e.MTimeBefore)
}

// Finish completes the round-trip after the editor exited. If the
// scratch file changed it is uploaded to the original remote path over
// a fresh session (the live one may have timed out while the editor was
// open), overwriting it. The scratch file is deleted in every branch.
// Returns whether an upload happened.
func (e *RemoteEdit) Finish(profile storage.Profile, password string) (bool, error) {
	defer os.Remove(e.ScratchPath)

	if !e.Changed() {
		return false, nil
	}

	if err := UploadFileFresh(profile, password, e.ScratchPath, e.RemotePath); err != nil {
		log.Printf("[ERROR] Edit upload failed for %s: %v", e.RemotePath, err)
		return false, err
	}
	return true, nil
}

// Discard deletes the scratch file without uploading. Used when no live
// session exists anymore by the time the editor exits.
func (e *RemoteEdit) Discard() {
	os.Remove(e.ScratchPath)
}

// UploadFileFresh opens a fresh SSH+SFTP session and uploads a single
// local file to remotePath, overwriting it.
func UploadFileFresh(profile storage.Profile, password, localPath, remotePath string) error {
	sess, err := connect(profile, password, ssh.WorkerDialTimeout)
	if err != nil {
		return err
	}
	defer sess.Close()

	return uploadFileToPath(sess.client, localPath, remotePath)
}
