package sftp

import (
	"log"
	"os"
	"path"
	"path/filepath"

	"github.com/pkg/sftp"

	"github.com/staatzstreich/vela/pkg/ssh"
	"github.com/staatzstreich/vela/pkg/storage"
)

// UploadBatch opens its own freshly authenticated session and uploads
// all entries from localDir into remoteDir, recursing into directories
// and reporting progress through prog. Meant to run on a dedicated
// goroutine; it never touches the foreground session. On success the
// progress state is set to Done, on the first failure to Failed and the
// remaining entries are not attempted.
func UploadBatch(profile storage.Profile, password string, entries []FileEntry, localDir, remoteDir string, prog *Progress) {
	sess, err := connect(profile, password, ssh.WorkerDialTimeout)
	if err != nil {
		log.Printf("[ERROR] Upload connect failed: %v", err)
		prog.Fail(err.Error())
		return
	}
	defer sess.Close()

	runEntries(entries, prog, func(entry FileEntry) error {
		local := filepath.Join(localDir, entry.Name)
		info, err := os.Stat(local)
		if err != nil {
			return err
		}
		if info.IsDir() {
			return uploadDirRecursive(sess.client, local, remoteDir, prog)
		}
		return uploadFile(sess.client, local, remoteDir, prog)
	})
}

// DownloadBatch is the mirror of UploadBatch with one added step: after
// opening the session it counts the files under all requested entries
// and corrects prog's FilesTotal before transferring, so the progress
// bar shows the true denominator from the first tick.
func DownloadBatch(profile storage.Profile, password string, entries []FileEntry, remoteDir, localDir string, prog *Progress) {
	sess, err := connect(profile, password, ssh.WorkerDialTimeout)
	if err != nil {
		log.Printf("[ERROR] Download connect failed: %v", err)
		prog.Fail(err.Error())
		return
	}
	defer sess.Close()

	total := 0
	for _, entry := range entries {
		total += countRemoteFiles(sess.client, path.Join(remoteDir, entry.Name))
	}
	if total < 1 {
		total = 1
	}
	prog.SetFilesTotal(total)

	runEntries(entries, prog, func(entry FileEntry) error {
		remote := path.Join(remoteDir, entry.Name)
		info, err := sess.client.Stat(remote)
		if err != nil {
			return pathErr(remote, err)
		}
		if info.IsDir() {
			return downloadDirRecursive(sess.client, remote, localDir, prog)
		}
		return downloadFile(sess.client, remote, localDir, prog)
	})
}

// runEntries drives one batch in the caller-supplied order. Before each
// entry it checks whether a prior entry already failed the batch and
// stops immediately if so. The terminal transition happens exactly once:
// Done on full success, Failed on the first error.
func runEntries(entries []FileEntry, prog *Progress, transfer func(FileEntry) error) {
	for _, entry := range entries {
		if prog.Failed() {
			return
		}
		if err := transfer(entry); err != nil {
			log.Printf("[ERROR] Transfer failed for %s: %v", entry.Name, err)
			prog.Fail(err.Error())
			return
		}
	}
	prog.Done()
}

// uploadFile streams one local file to remoteDir/name in 64 KiB chunks.
func uploadFile(client *sftp.Client, localPath, remoteDir string, prog *Progress) error {
	name := filepath.Base(localPath)
	remotePath := path.Join(remoteDir, name)

	info, err := os.Stat(localPath)
	if err != nil {
		return err
	}
	prog.StartFile(name, info.Size())

	localFile, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer localFile.Close()

	remoteFile, err := client.Create(remotePath)
	if err != nil {
		return pathErr(remotePath, err)
	}
	defer remoteFile.Close()

	if _, err := copyChunked(remoteFile, localFile, prog.AddBytes); err != nil {
		return pathErr(remotePath, err)
	}
	prog.FinishFile()
	return nil
}

// uploadDirRecursive mirrors one local directory tree under remoteParent.
func uploadDirRecursive(client *sftp.Client, localDir, remoteParent string, prog *Progress) error {
	remoteDir := path.Join(remoteParent, filepath.Base(localDir))
	if err := mkdirRemoteIdempotent(client, remoteDir); err != nil {
		return err
	}

	entries, err := os.ReadDir(localDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		child := filepath.Join(localDir, entry.Name())
		if entry.IsDir() {
			if err := uploadDirRecursive(client, child, remoteDir, prog); err != nil {
				return err
			}
		} else {
			if err := uploadFile(client, child, remoteDir, prog); err != nil {
				return err
			}
		}
	}
	return nil
}

// mkdirRemoteIdempotent creates a remote directory, treating "already
// exists" as success so repeated uploads into the same tree work.
func mkdirRemoteIdempotent(client *sftp.Client, dir string) error {
	if err := client.Mkdir(dir); err != nil {
		if info, statErr := client.Stat(dir); statErr == nil && info.IsDir() {
			return nil
		}
		return pathErr(dir, err)
	}
	return nil
}

// downloadFile streams one remote file into localDir in 64 KiB chunks.
// When the remote size is unknown BytesTotal stays zero and per-file
// progress is indeterminate.
func downloadFile(client *sftp.Client, remotePath, localDir string, prog *Progress) error {
	name := path.Base(remotePath)
	localPath := filepath.Join(localDir, name)

	var total int64
	if info, err := client.Stat(remotePath); err == nil {
		total = info.Size()
	}
	prog.StartFile(name, total)

	remoteFile, err := client.Open(remotePath)
	if err != nil {
		return pathErr(remotePath, err)
	}
	defer remoteFile.Close()

	localFile, err := os.Create(localPath)
	if err != nil {
		return err
	}
	defer localFile.Close()

	if _, err := copyChunked(localFile, remoteFile, prog.AddBytes); err != nil {
		return pathErr(remotePath, err)
	}
	prog.FinishFile()
	return nil
}

// downloadDirRecursive mirrors one remote directory tree under localParent.
func downloadDirRecursive(client *sftp.Client, remoteDir, localParent string, prog *Progress) error {
	localDir := filepath.Join(localParent, path.Base(remoteDir))
	if err := os.Mkdir(localDir, 0755); err != nil && !os.IsExist(err) {
		return err
	}

	infos, err := client.ReadDir(remoteDir)
	if err != nil {
		return pathErr(remoteDir, err)
	}
	for _, info := range infos {
		child := path.Join(remoteDir, info.Name())
		if info.IsDir() {
			if err := downloadDirRecursive(client, child, localDir, prog); err != nil {
				return err
			}
		} else {
			if err := downloadFile(client, child, localDir, prog); err != nil {
				return err
			}
		}
	}
	return nil
}

// CountLocalFiles counts the regular files under a path, recursing into
// directories. Used to size the progress denominator before an upload.
func CountLocalFiles(p string) int {
	info, err := os.Stat(p)
	if err != nil {
		return 0
	}
	if !info.IsDir() {
		return 1
	}
	entries, err := os.ReadDir(p)
	if err != nil {
		return 0
	}
	total := 0
	for _, entry := range entries {
		total += CountLocalFiles(filepath.Join(p, entry.Name()))
	}
	return total
}

func countRemoteFiles(client *sftp.Client, remote string) int {
	info, err := client.Stat(remote)
	if err != nil {
		return 0
	}
	if !info.IsDir() {
		return 1
	}
	infos, err := client.ReadDir(remote)
	if err != nil {
		return 0
	}
	total := 0
	for _, child := range infos {
		total += countRemoteFiles(client, path.Join(remote, child.Name()))
	}
	return total
}
