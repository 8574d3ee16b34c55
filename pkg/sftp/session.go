package sftp

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/sftp"
	gossh "golang.org/x/crypto/ssh"

	"github.com/staatzstreich/vela/pkg/ssh"
	"github.com/staatzstreich/vela/pkg/storage"
)

const chunkSize = 64 * 1024

// Session owns one authenticated SSH+SFTP channel, the current remote
// working directory and the home directory resolved at connect time.
// It is exclusively owned by the foreground loop; background transfers
// and the edit re-upload always open their own session.
type Session struct {
	sshClient *gossh.Client
	client    *sftp.Client

	currentPath string
	home        string

	profile  storage.Profile
	password string
}

// Connect opens a transport to the profile's host, authenticates by the
// profile's method and resolves the login home directory. password is
// only used for password-auth profiles; it is retained in memory so
// transfer workers and the edit re-upload can open independent sessions.
func Connect(profile storage.Profile, password string) (*Session, error) {
	return connect(profile, password, ssh.DialTimeout)
}

func connect(profile storage.Profile, password string, timeout time.Duration) (*Session, error) {
	sshClient, err := ssh.Dial(profile.SSHConfig(password), timeout)
	if err != nil {
		return nil, err
	}

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return nil, fmt.Errorf("failed to create SFTP client: %w", err)
	}

	// "." resolves to the user's home on most SSH servers.
	home, err := client.RealPath(".")
	if err != nil {
		client.Close()
		sshClient.Close()
		return nil, pathErr(".", err)
	}

	return &Session{
		sshClient:   sshClient,
		client:      client,
		currentPath: home,
		home:        home,
		profile:     profile,
		password:    password,
	}, nil
}

// Close shuts down the SFTP channel and the underlying SSH connection.
func (s *Session) Close() error {
	s.client.Close()
	return s.sshClient.Close()
}

// Path returns the current remote working directory.
func (s *Session) Path() string {
	return s.currentPath
}

// Home returns the login home directory captured at connect time.
func (s *Session) Home() string {
	return s.home
}

// Profile returns the profile this session was opened with.
func (s *Session) Profile() storage.Profile {
	return s.profile
}

// Password returns the in-memory credential for opening fresh sessions.
func (s *Session) Password() string {
	return s.password
}

// List lists the current remote directory: ".." first unless at the
// root, then directories, then files, each group lexicographic.
func (s *Session) List() ([]FileEntry, error) {
	return listDir(s.client, s.currentPath)
}

func listDir(client *sftp.Client, dir string) ([]FileEntry, error) {
	infos, err := client.ReadDir(dir)
	if err != nil {
		return nil, pathErr(dir, err)
	}

	entries := make([]FileEntry, 0, len(infos)+1)
	if dir != "/" {
		entries = append(entries, ParentEntry())
	}
	for _, info := range infos {
		entries = append(entries, entryFromInfo(info))
	}
	SortEntries(entries)
	return entries, nil
}

// EnterDirectory moves into a child directory (or the parent for "..")
// and returns the new listing. The target is not verified up front; a
// bad target surfaces as the listing failure.
func (s *Session) EnterDirectory(name string) ([]FileEntry, error) {
	if name == ".." {
		s.currentPath = path.Dir(s.currentPath)
	} else {
		s.currentPath = path.Join(s.currentPath, name)
	}
	return s.List()
}

// GoUp moves to the parent directory (no-op at root) and re-lists.
func (s *Session) GoUp() ([]FileEntry, error) {
	s.currentPath = path.Dir(s.currentPath)
	return s.List()
}

// ChangeToAbsolute switches to an absolute remote path and returns the
// new listing. A leading "~" expands to the home directory resolved at
// connect time; the result is canonicalized via the server's realpath
// and verified to be a directory. On failure the session's current path
// is left untouched so callers can fall back to the previous listing.
func (s *Session) ChangeToAbsolute(raw string) ([]FileEntry, error) {
	expanded := ExpandRemoteTilde(raw, s.home)

	canonical, err := s.client.RealPath(expanded)
	if err != nil {
		return nil, pathErr(expanded, fmt.Errorf("path not found: %w", err))
	}

	info, err := s.client.Stat(canonical)
	if err != nil {
		return nil, pathErr(canonical, err)
	}
	if !info.IsDir() {
		return nil, pathErr(canonical, fmt.Errorf("not a directory"))
	}

	entries, err := listDir(s.client, canonical)
	if err != nil {
		return nil, err
	}
	s.currentPath = canonical
	return entries, nil
}

// ExpandRemoteTilde expands a leading ~ in a remote start path to the
// session's resolved home directory.
func ExpandRemoteTilde(raw, home string) string {
	if raw == "~" {
		return home
	}
	if strings.HasPrefix(raw, "~/") {
		return home + raw[1:]
	}
	return raw
}

// Rename renames an entry in the current remote directory.
func (s *Session) Rename(oldName, newName string) error {
	oldPath := path.Join(s.currentPath, oldName)
	newPath := path.Join(s.currentPath, newName)
	return pathErr(oldPath, s.client.Rename(oldPath, newPath))
}

// Mkdir creates a directory in the current remote directory.
func (s *Session) Mkdir(name string) error {
	p := path.Join(s.currentPath, name)
	return pathErr(p, s.client.Mkdir(p))
}

// DeleteFile removes a single file in the current remote directory.
func (s *Session) DeleteFile(name string) error {
	p := path.Join(s.currentPath, name)
	return pathErr(p, s.client.Remove(p))
}

// DeleteDirectory removes a directory in the current remote directory
// recursively: depth-first, subdirectories before the files beside them
// are unlinked, then the emptied directory itself. The first child
// failure aborts the walk; entries already removed stay removed.
func (s *Session) DeleteDirectory(name string) error {
	return removeRecursive(s.client, path.Join(s.currentPath, name))
}

func removeRecursive(client *sftp.Client, dir string) error {
	infos, err := client.ReadDir(dir)
	if err != nil {
		return pathErr(dir, err)
	}

	for _, info := range infos {
		child := path.Join(dir, info.Name())
		if info.IsDir() {
			if err := removeRecursive(client, child); err != nil {
				return err
			}
		} else {
			if err := client.Remove(child); err != nil {
				return pathErr(child, err)
			}
		}
	}
	return pathErr(dir, client.RemoveDirectory(dir))
}

// DownloadToDir downloads a single remote file into localDir using the
// live session, no progress reporting. Used by the synchronous edit
// flow. Returns the path of the created local file.
func (s *Session) DownloadToDir(remotePath, localDir string) (string, error) {
	return downloadFileToDir(s.client, remotePath, localDir)
}

func downloadFileToDir(client *sftp.Client, remotePath, localDir string) (string, error) {
	localPath := filepath.Join(localDir, path.Base(remotePath))

	remoteFile, err := client.Open(remotePath)
	if err != nil {
		return "", pathErr(remotePath, err)
	}
	defer remoteFile.Close()

	localFile, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to create local file: %w", err)
	}
	defer localFile.Close()

	if _, err := copyChunked(localFile, remoteFile, nil); err != nil {
		return "", pathErr(remotePath, err)
	}
	return localPath, nil
}

func uploadFileToPath(client *sftp.Client, localPath, remotePath string) error {
	localFile, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open local file: %w", err)
	}
	defer localFile.Close()

	remoteFile, err := client.Create(remotePath)
	if err != nil {
		return pathErr(remotePath, err)
	}
	defer remoteFile.Close()

	if _, err := copyChunked(remoteFile, localFile, nil); err != nil {
		return pathErr(remotePath, err)
	}
	return nil
}

// copyChunked streams src to dst in fixed-size chunks, reporting each
// chunk through onChunk so a reader can compute live progress.
func copyChunked(dst io.Writer, src io.Reader, onChunk func(int64)) (int64, error) {
	buf := make([]byte, chunkSize)
	var written int64
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return written, werr
			}
			written += int64(n)
			if onChunk != nil {
				onChunk(int64(n))
			}
		}
		if err == io.EOF {
			return written, nil
		}
		if err != nil {
			return written, err
		}
	}
}
