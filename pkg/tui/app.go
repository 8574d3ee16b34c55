package tui

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/staatzstreich/vela/pkg/panel"
	"github.com/staatzstreich/vela/pkg/sftp"
	"github.com/staatzstreich/vela/pkg/ssh"
	"github.com/staatzstreich/vela/pkg/storage"
)

// paneSide identifies which pane is active
type paneSide int

const (
	localPane paneSide = iota
	remotePane
)

const progressInterval = 100 * time.Millisecond

// AppModel is the root model of the dual-pane file manager.
type AppModel struct {
	profiles *storage.ProfileStore
	settings *storage.SettingsStore

	session *sftp.Session

	local   *panel.Panel
	remote  *panel.Panel
	active  paneSide
	swapped bool // display order of the panes is flipped

	// At most one upload and one download run at a time. A nil handle
	// means that direction is idle.
	upload   *sftp.Progress
	download *sftp.Progress

	dialog dialog

	statusMsg string
	errMsg    string

	width  int
	height int
}

type (
	tickMsg time.Time

	connectedMsg struct {
		session *sftp.Session
		entries []sftp.FileEntry
		note    string
	}

	connectFailedMsg struct {
		profileIndex int
		profile      storage.Profile
		err          error
	}

	remoteEditorExitMsg struct {
		edit *sftp.RemoteEdit
		err  error
	}

	localEditorExitMsg struct {
		err error
	}

	editFinishedMsg struct {
		name     string
		uploaded bool
		err      error
	}
)

// NewAppModel creates the root model. The local pane starts in the
// current working directory.
func NewAppModel(profiles *storage.ProfileStore, settings *storage.SettingsStore) *AppModel {
	localWd, err := os.Getwd()
	if err != nil {
		localWd = os.Getenv("HOME")
	}

	m := &AppModel{
		profiles: profiles,
		settings: settings,
		local:    panel.New(localWd),
		remote:   panel.New("/"),
		active:   localPane,
	}
	m.local.ShowHidden = settings.Get().ShowHidden
	m.remote.ShowHidden = settings.Get().ShowHidden

	if err := m.local.LoadLocal(); err != nil {
		m.errMsg = err.Error()
	}
	return m
}

func (m *AppModel) Init() tea.Cmd {
	return nil
}

func tick() tea.Cmd {
	return tea.Tick(progressInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.dialog != nil {
			return m, m.dialog.HandleKey(msg, m)
		}
		return m.handleKey(msg)

	case tickMsg:
		return m, m.pollTransfers()

	case connectedMsg:
		m.session = msg.session
		m.remote.Reset(m.session.Path())
		m.remote.LoadRemote(m.session.Path(), msg.entries)
		m.statusMsg = fmt.Sprintf("Connected to %s", m.session.Profile().Host)
		if msg.note != "" {
			m.statusMsg = msg.note
		}
		if start := m.session.Profile().StartLocalPath(); start != "" {
			if info, err := os.Stat(start); err == nil && info.IsDir() {
				m.local.Reset(start)
				m.refreshLocal()
			}
		}
		return m, nil

	case connectFailedMsg:
		log.Printf("[ERROR] Connect to %s failed: %v", msg.profile.Host, msg.err)
		if errors.Is(msg.err, ssh.ErrAuthFailed) && msg.profile.Auth == ssh.AuthPassword {
			d := newPasswordDialog(msg.profileIndex, msg.profile)
			d.errText = "authentication failed, try again"
			m.dialog = d
			return m, textinput.Blink
		}
		var keyErr *ssh.KeyNotFoundError
		if errors.As(msg.err, &keyErr) {
			m.errMsg = keyErr.Error()
			return m, nil
		}
		m.errMsg = msg.err.Error()
		return m, nil

	case remoteEditorExitMsg:
		if msg.err != nil {
			log.Printf("[ERROR] Editor exit: %v", msg.err)
		}
		if m.session == nil {
			msg.edit.Discard()
			m.statusMsg = "Disconnected while editing, changes discarded"
			return m, nil
		}
		profile := m.session.Profile()
		password := m.session.Password()
		edit := msg.edit
		name := filepath.Base(edit.RemotePath)
		return m, func() tea.Msg {
			uploaded, err := edit.Finish(profile, password)
			return editFinishedMsg{name: name, uploaded: uploaded, err: err}
		}

	case localEditorExitMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
		}
		m.refreshLocal()
		return m, nil

	case editFinishedMsg:
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("failed to upload %s: %v", msg.name, msg.err)
			return m, nil
		}
		if msg.uploaded {
			m.statusMsg = fmt.Sprintf("Uploaded %s", msg.name)
			m.refreshRemote()
		} else {
			m.statusMsg = fmt.Sprintf("%s unchanged, not uploaded", msg.name)
		}
		return m, nil
	}

	return m, nil
}

func (m *AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.errMsg = ""

	switch msg.String() {
	case "ctrl+c", "q":
		if m.session != nil {
			m.session.Close()
		}
		return m, tea.Quit

	case "tab":
		if m.active == localPane {
			m.active = remotePane
		} else {
			m.active = localPane
		}

	case "up", "k":
		m.activePanel().MoveUp()

	case "down", "j":
		m.activePanel().MoveDown()

	case "enter":
		m.enterSelected()

	case "backspace":
		m.goUp()

	case "g":
		m.dialog = newPathDialog(m.activePanel().Path)
		return m, textinput.Blink

	case " ":
		m.activePanel().ToggleMark()
		m.activePanel().MoveDown()

	case "a":
		m.activePanel().MarkAll()

	case "u":
		return m, m.startUpload()

	case "d":
		return m, m.startDownload()

	case "e":
		return m, m.startEdit()

	case "n":
		m.dialog = newMkdirDialog()
		return m, textinput.Blink

	case "r":
		if entry, ok := m.activePanel().Selected(); ok && !entry.IsParent() {
			m.dialog = newRenameDialog(entry.Name)
			return m, textinput.Blink
		}

	case "x", "delete":
		targets := m.activePanel().Targets()
		if len(targets) > 0 {
			m.dialog = &deleteDialog{targets: targets, side: m.active}
		}

	case "!":
		m.dialog = newShellDialog()
		return m, textinput.Blink

	case "ctrl+w":
		m.swapPanels()

	case "p":
		m.dialog = &profilesDialog{app: m}

	case "D":
		m.disconnect()

	case "s":
		m.dialog = newSettingsDialog(m.settings.Get())
		return m, textinput.Blink

	case "?":
		m.dialog = &helpDialog{}
	}

	return m, nil
}

func (m *AppModel) activePanel() *panel.Panel {
	if m.active == localPane {
		return m.local
	}
	return m.remote
}

func (m *AppModel) refreshLocal() {
	if err := m.local.LoadLocal(); err != nil {
		m.errMsg = err.Error()
	}
}

func (m *AppModel) refreshRemote() {
	if m.session == nil {
		return
	}
	entries, err := m.session.List()
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.remote.LoadRemote(m.session.Path(), entries)
}

func (m *AppModel) enterSelected() {
	if m.active == localPane {
		if err := m.local.EnterSelected(); err != nil {
			m.errMsg = err.Error()
		}
		return
	}
	if m.session == nil {
		return
	}
	entry, ok := m.remote.Selected()
	if !ok || !entry.IsDir {
		return
	}
	var entries []sftp.FileEntry
	var err error
	if entry.IsParent() {
		entries, err = m.session.GoUp()
	} else {
		entries, err = m.session.EnterDirectory(entry.Name)
	}
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.remote.Reset(m.session.Path())
	m.remote.LoadRemote(m.session.Path(), entries)
}

func (m *AppModel) goUp() {
	if m.active == localPane {
		if err := m.local.GoUp(); err != nil {
			m.errMsg = err.Error()
		}
		return
	}
	if m.session == nil {
		return
	}
	entries, err := m.session.GoUp()
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.remote.Reset(m.session.Path())
	m.remote.LoadRemote(m.session.Path(), entries)
}

// changeDirectory jumps the active pane to the entered path. A leading
// ~ expands to the remote session's home or the local process home.
func (m *AppModel) changeDirectory(raw string) {
	if m.active == localPane {
		target := ssh.ExpandLocalTilde(raw)
		info, err := os.Stat(target)
		if err != nil {
			m.errMsg = fmt.Sprintf("cannot open %s: %v", target, err)
			return
		}
		if !info.IsDir() {
			m.errMsg = fmt.Sprintf("%s is not a directory", target)
			return
		}
		m.local.Reset(target)
		m.refreshLocal()
		return
	}
	if m.session == nil {
		m.errMsg = "not connected"
		return
	}
	entries, err := m.session.ChangeToAbsolute(raw)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.remote.Reset(m.session.Path())
	m.remote.LoadRemote(m.session.Path(), entries)
}

// swapPanels flips the display order of the two panes. It is purely
// visual; the local pane keeps its local role.
func (m *AppModel) swapPanels() {
	m.swapped = !m.swapped
}

func (m *AppModel) createFolder(name string) {
	if m.active == localPane {
		if err := os.Mkdir(filepath.Join(m.local.Path, name), 0755); err != nil {
			m.errMsg = err.Error()
			return
		}
		m.statusMsg = fmt.Sprintf("Created local folder %s", name)
		m.refreshLocal()
		return
	}
	if m.session == nil {
		m.errMsg = "not connected"
		return
	}
	if err := m.session.Mkdir(name); err != nil {
		m.errMsg = err.Error()
		return
	}
	m.statusMsg = fmt.Sprintf("Created remote folder %s", name)
	m.refreshRemote()
}

func (m *AppModel) renameEntry(oldName, newName string) {
	if m.active == localPane {
		oldPath := filepath.Join(m.local.Path, oldName)
		newPath := filepath.Join(m.local.Path, newName)
		if err := os.Rename(oldPath, newPath); err != nil {
			m.errMsg = err.Error()
			return
		}
		m.statusMsg = fmt.Sprintf("Renamed %s to %s", oldName, newName)
		m.refreshLocal()
		return
	}
	if m.session == nil {
		m.errMsg = "not connected"
		return
	}
	if err := m.session.Rename(oldName, newName); err != nil {
		m.errMsg = err.Error()
		return
	}
	m.statusMsg = fmt.Sprintf("Renamed %s to %s", oldName, newName)
	m.refreshRemote()
}

// deleteTargets removes a confirmed batch. Every entry is attempted;
// the summary counts successes and keeps the last error.
func (m *AppModel) deleteTargets(targets []sftp.FileEntry, side paneSide) {
	deleteList := make([]sftp.DeleteTarget, len(targets))
	for i, t := range targets {
		deleteList[i] = sftp.DeleteTarget{Name: t.Name, IsDir: t.IsDir}
	}

	var deleted int
	var err error
	if side == localPane {
		dir := m.local.Path
		deleted, err = sftp.DeleteAll(deleteList, func(name string, isDir bool) error {
			return os.RemoveAll(filepath.Join(dir, name))
		})
		m.refreshLocal()
	} else {
		if m.session == nil {
			m.errMsg = "not connected"
			return
		}
		deleted, err = sftp.DeleteAll(deleteList, m.session.Remove)
		m.refreshRemote()
	}

	if err != nil {
		m.errMsg = fmt.Sprintf("deleted %d/%d, last error: %v", deleted, len(deleteList), err)
		return
	}
	m.statusMsg = fmt.Sprintf("Deleted %d/%d", deleted, len(deleteList))
}

func (m *AppModel) startUpload() tea.Cmd {
	if m.session == nil {
		m.errMsg = "not connected"
		return nil
	}
	if m.active != localPane {
		return nil
	}
	if m.upload != nil {
		m.statusMsg = "An upload is already running"
		return nil
	}
	targets := m.local.Targets()
	if len(targets) == 0 {
		return nil
	}

	total := 0
	for _, t := range targets {
		if t.IsDir {
			total += sftp.CountLocalFiles(filepath.Join(m.local.Path, t.Name))
		} else {
			total++
		}
	}
	if total < 1 {
		total = 1
	}

	prog := sftp.NewProgress(total)
	m.upload = prog
	m.statusMsg = ""
	go sftp.UploadBatch(m.session.Profile(), m.session.Password(), targets, m.local.Path, m.session.Path(), prog)
	m.local.ClearMarks()
	return tick()
}

func (m *AppModel) startDownload() tea.Cmd {
	if m.session == nil {
		m.errMsg = "not connected"
		return nil
	}
	if m.active != remotePane {
		return nil
	}
	if m.upload != nil || m.download != nil {
		m.statusMsg = "A transfer is already running"
		return nil
	}
	targets := m.remote.Targets()
	if len(targets) == 0 {
		return nil
	}

	// The worker recounts the real file total over its own session.
	prog := sftp.NewProgress(len(targets))
	m.download = prog
	m.statusMsg = ""
	go sftp.DownloadBatch(m.session.Profile(), m.session.Password(), targets, m.session.Path(), m.local.Path, prog)
	m.remote.ClearMarks()
	return tick()
}

// pollTransfers reads both progress handles. Terminal states are acted
// on exactly once: the handle is dropped and the panes refresh.
func (m *AppModel) pollTransfers() tea.Cmd {
	running := false

	if m.upload != nil {
		snap := m.upload.Snapshot()
		switch snap.State {
		case sftp.TransferRunning:
			running = true
		case sftp.TransferDone:
			m.upload = nil
			m.statusMsg = fmt.Sprintf("Upload complete (%d files)", snap.FilesDone)
			m.refreshRemote()
		case sftp.TransferFailed:
			m.upload = nil
			m.errMsg = "upload failed: " + snap.Message
			m.refreshRemote()
		}
	}

	if m.download != nil {
		snap := m.download.Snapshot()
		switch snap.State {
		case sftp.TransferRunning:
			running = true
		case sftp.TransferDone:
			m.download = nil
			m.statusMsg = fmt.Sprintf("Download complete (%d files)", snap.FilesDone)
			m.refreshLocal()
		case sftp.TransferFailed:
			m.download = nil
			m.errMsg = "download failed: " + snap.Message
			m.refreshLocal()
		}
	}

	if running {
		return tick()
	}
	return nil
}

func (m *AppModel) startEdit() tea.Cmd {
	entry, ok := m.activePanel().Selected()
	if !ok || entry.IsDir {
		return nil
	}

	if m.active == localPane {
		editor, err := FindEditor(m.settings.Get())
		if err != nil {
			m.errMsg = err.Error()
			return nil
		}
		edit := sftp.LocalEdit{Path: filepath.Join(m.local.Path, entry.Name)}
		c := exec.Command(editor, edit.Path)
		return tea.ExecProcess(c, func(err error) tea.Msg {
			return localEditorExitMsg{err: err}
		})
	}

	if m.session == nil {
		m.errMsg = "not connected"
		return nil
	}

	// The target path is resolved and the scratch download finished
	// here on the foreground, before the loop takes another key. The
	// live session is never shared with a goroutine.
	remotePath := path.Join(m.session.Path(), entry.Name)
	scratchDir := filepath.Join(os.TempDir(), "vela-edit")
	edit, err := sftp.PrepareRemoteEdit(m.session, remotePath, scratchDir)
	if err != nil {
		m.errMsg = err.Error()
		return nil
	}

	editor, err := FindEditor(m.settings.Get())
	if err != nil {
		edit.Discard()
		m.errMsg = err.Error()
		return nil
	}
	c := exec.Command(editor, edit.ScratchPath)
	return tea.ExecProcess(c, func(err error) tea.Msg {
		return remoteEditorExitMsg{edit: edit, err: err}
	})
}

func (m *AppModel) disconnect() {
	if m.session == nil {
		return
	}
	host := m.session.Profile().Host
	m.session.Close()
	m.session = nil
	m.remote.Reset("/")
	if m.active == remotePane {
		m.active = localPane
	}
	m.statusMsg = fmt.Sprintf("Disconnected from %s", host)
}

// connectCmd dials the profile in the background. The start path is
// attempted after login; when it fails the session stays on the home
// directory and the status line says so.
func (m *AppModel) connectCmd(index int, profile storage.Profile, password string) tea.Cmd {
	if m.session != nil {
		m.session.Close()
		m.session = nil
		m.remote.Reset("/")
	}
	m.statusMsg = fmt.Sprintf("Connecting to %s...", profile.Host)

	return func() tea.Msg {
		sess, err := sftp.Connect(profile, password)
		if err != nil {
			return connectFailedMsg{profileIndex: index, profile: profile, err: err}
		}

		entries, err := sess.List()
		if err != nil {
			sess.Close()
			return connectFailedMsg{profileIndex: index, profile: profile, err: err}
		}

		note := ""
		if start := profile.StartRemotePath(); start != "" {
			startEntries, err := sess.ChangeToAbsolute(start)
			if err != nil {
				log.Printf("[INFO] Start path %s unavailable, staying in %s: %v", start, sess.Path(), err)
				note = fmt.Sprintf("Start path %s unavailable, using %s", start, sess.Path())
			} else {
				entries = startEntries
			}
		}

		return connectedMsg{session: sess, entries: entries, note: note}
	}
}

// applySettings propagates saved settings to the live panes.
func (m *AppModel) applySettings(settings storage.Settings) {
	m.local.ShowHidden = settings.ShowHidden
	m.remote.ShowHidden = settings.ShowHidden
	m.refreshLocal()
	m.statusMsg = "Settings saved"
}
