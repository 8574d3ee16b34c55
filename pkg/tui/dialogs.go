package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/staatzstreich/vela/pkg/sftp"
	"github.com/staatzstreich/vela/pkg/ssh"
	"github.com/staatzstreich/vela/pkg/storage"
)

// dialog is a modal overlay. While one is open it receives all key input;
// it closes itself by clearing app.dialog.
type dialog interface {
	HandleKey(msg tea.KeyMsg, app *AppModel) tea.Cmd
	View() string
}

func newTextInput(placeholder, prompt string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = prompt
	ti.CharLimit = 256
	ti.Width = 40
	return ti
}

// ---- new folder ----

type mkdirDialog struct {
	input textinput.Model
}

func newMkdirDialog() *mkdirDialog {
	d := &mkdirDialog{input: newTextInput("New Folder Name", "> ")}
	d.input.Focus()
	return d
}

func (d *mkdirDialog) HandleKey(msg tea.KeyMsg, app *AppModel) tea.Cmd {
	switch msg.String() {
	case "enter":
		name := strings.TrimSpace(d.input.Value())
		app.dialog = nil
		if name == "" {
			return nil
		}
		app.createFolder(name)
		return nil
	case "esc":
		app.dialog = nil
		return nil
	}
	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	return cmd
}

func (d *mkdirDialog) View() string {
	return dialogBoxStyle.Render(fmt.Sprintf("Create New Folder\n\n%s\n\n%s",
		d.input.View(),
		helpStyle.Render("enter: create • esc: cancel")))
}

// ---- rename ----

type renameDialog struct {
	input    textinput.Model
	original string
}

func newRenameDialog(original string) *renameDialog {
	d := &renameDialog{
		input:    newTextInput("", "> "),
		original: original,
	}
	d.input.SetValue(original)
	d.input.Focus()
	d.input.CursorEnd()
	return d
}

func (d *renameDialog) HandleKey(msg tea.KeyMsg, app *AppModel) tea.Cmd {
	switch msg.String() {
	case "enter":
		name := strings.TrimSpace(d.input.Value())
		app.dialog = nil
		if name == "" || name == d.original {
			return nil
		}
		app.renameEntry(d.original, name)
		return nil
	case "esc":
		app.dialog = nil
		return nil
	}
	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	return cmd
}

func (d *renameDialog) View() string {
	return dialogBoxStyle.Render(fmt.Sprintf("Rename '%s'\n\n%s\n\n%s",
		d.original,
		d.input.View(),
		helpStyle.Render("enter: rename • esc: cancel")))
}

// ---- go to path ----

type pathDialog struct {
	input textinput.Model
}

func newPathDialog(current string) *pathDialog {
	d := &pathDialog{input: newTextInput(current, "> ")}
	d.input.Width = 50
	d.input.Focus()
	return d
}

func (d *pathDialog) HandleKey(msg tea.KeyMsg, app *AppModel) tea.Cmd {
	switch msg.String() {
	case "enter":
		raw := strings.TrimSpace(d.input.Value())
		app.dialog = nil
		if raw == "" {
			return nil
		}
		app.changeDirectory(raw)
		return nil
	case "esc":
		app.dialog = nil
		return nil
	}
	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	return cmd
}

func (d *pathDialog) View() string {
	return dialogBoxStyle.Render(fmt.Sprintf("Go To Directory\n\n%s\n\n%s",
		d.input.View(),
		helpStyle.Render("~ expands to home • enter: go • esc: cancel")))
}

// ---- delete confirmation ----

type deleteDialog struct {
	targets []sftp.FileEntry
	side    paneSide
}

func (d *deleteDialog) HandleKey(msg tea.KeyMsg, app *AppModel) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		app.dialog = nil
		app.deleteTargets(d.targets, d.side)
		return nil
	case "n", "N", "esc":
		app.dialog = nil
		return nil
	}
	return nil
}

func (d *deleteDialog) View() string {
	var what string
	if len(d.targets) == 1 {
		what = fmt.Sprintf("'%s'", d.targets[0].Name)
	} else {
		what = fmt.Sprintf("%d items", len(d.targets))
	}
	where := "local"
	if d.side == remotePane {
		where = "remote"
	}
	return dangerBoxStyle.Render(fmt.Sprintf(
		"Permanently delete %s from the %s side?\n\nDirectories are removed recursively.\n\n(y/n)", what, where))
}

// ---- password prompt ----

type passwordDialog struct {
	input        textinput.Model
	profileIndex int
	profile      storage.Profile
	errText      string
}

func newPasswordDialog(index int, profile storage.Profile) *passwordDialog {
	d := &passwordDialog{
		input:        newTextInput("Enter password", "> "),
		profileIndex: index,
		profile:      profile,
	}
	d.input.EchoMode = textinput.EchoPassword
	d.input.EchoCharacter = '•'
	d.input.Focus()
	return d
}

func (d *passwordDialog) HandleKey(msg tea.KeyMsg, app *AppModel) tea.Cmd {
	switch msg.String() {
	case "enter":
		password := d.input.Value()
		app.dialog = nil
		return app.connectCmd(d.profileIndex, d.profile, password)
	case "esc":
		app.dialog = nil
		return nil
	}
	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	return cmd
}

func (d *passwordDialog) View() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Password for %s@%s\n\n", d.profile.User, d.profile.Host))
	if d.errText != "" {
		b.WriteString(errorStyle.Render(d.errText))
		b.WriteString("\n\n")
	}
	b.WriteString(d.input.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter: connect • esc: cancel"))
	return dialogBoxStyle.Render(b.String())
}

// ---- profile list ----

type profilesDialog struct {
	app    *AppModel
	cursor int
}

func (d *profilesDialog) HandleKey(msg tea.KeyMsg, app *AppModel) tea.Cmd {
	count := app.profiles.Len()
	switch msg.String() {
	case "up", "k":
		if d.cursor > 0 {
			d.cursor--
		}
	case "down", "j":
		if d.cursor+1 < count {
			d.cursor++
		}
	case "enter":
		profile, err := app.profiles.Get(d.cursor)
		if err != nil {
			return nil
		}
		app.dialog = nil
		if profile.Auth == ssh.AuthPassword {
			app.dialog = newPasswordDialog(d.cursor, profile)
			return textinput.Blink
		}
		return app.connectCmd(d.cursor, profile, "")
	case "n":
		app.dialog = newProfileFormDialog(app.settings.Get(), storage.Profile{}, -1)
		return textinput.Blink
	case "e":
		if profile, err := app.profiles.Get(d.cursor); err == nil {
			app.dialog = newProfileFormDialog(app.settings.Get(), profile, d.cursor)
			return textinput.Blink
		}
	case "x":
		if err := app.profiles.Delete(d.cursor); err == nil && d.cursor >= app.profiles.Len() && d.cursor > 0 {
			d.cursor--
		}
	case "esc", "q":
		app.dialog = nil
	}
	return nil
}

func (d *profilesDialog) View() string {
	var b strings.Builder
	b.WriteString("Connection Profiles\n\n")

	profiles := d.app.profiles.List()
	if len(profiles) == 0 {
		b.WriteString(itemStyle.Render("(no profiles yet, press n to add one)"))
		b.WriteString("\n")
	}
	for i, p := range profiles {
		line := fmt.Sprintf("%s  %s@%s:%d (%s)", p.Name, p.User, p.Host, p.Port, p.Auth)
		if i == d.cursor {
			b.WriteString(selectedItemStyle.Render("→ " + line))
		} else {
			b.WriteString(itemStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: connect • n: new • e: edit • x: delete • esc: close"))
	return dialogBoxStyle.Render(b.String())
}

// ---- profile form ----

const (
	formName = iota
	formHost
	formPort
	formUser
	formAuth
	formKeyPath
	formRemotePath
	formLocalPath
	formFieldCount
)

type profileFormDialog struct {
	inputs    []textinput.Model
	focused   int
	editIndex int // -1 means a new profile
	errText   string
}

func newProfileFormDialog(settings storage.Settings, profile storage.Profile, editIndex int) *profileFormDialog {
	inputs := make([]textinput.Model, formFieldCount)
	inputs[formName] = newTextInput("My Server", "Name: ")
	inputs[formHost] = newTextInput("192.168.1.1", "Host: ")
	inputs[formPort] = newTextInput(strconv.Itoa(settings.DefaultPort), "Port: ")
	inputs[formUser] = newTextInput(settings.DefaultUsername, "Username: ")
	inputs[formAuth] = newTextInput("key or password", "Auth: ")
	inputs[formKeyPath] = newTextInput("~/.ssh/id_rsa (optional)", "Private Key Path: ")
	inputs[formRemotePath] = newTextInput("(optional)", "Remote Start Path: ")
	inputs[formLocalPath] = newTextInput("(optional)", "Local Start Path: ")
	inputs[formName].Focus()

	d := &profileFormDialog{inputs: inputs, focused: 0, editIndex: editIndex}
	if editIndex >= 0 {
		d.inputs[formName].SetValue(profile.Name)
		d.inputs[formHost].SetValue(profile.Host)
		d.inputs[formPort].SetValue(strconv.Itoa(profile.Port))
		d.inputs[formUser].SetValue(profile.User)
		d.inputs[formAuth].SetValue(string(profile.Auth))
		d.inputs[formKeyPath].SetValue(profile.KeyPath)
		d.inputs[formRemotePath].SetValue(profile.RemotePath)
		d.inputs[formLocalPath].SetValue(profile.LocalPath)
	}
	return d
}

func (d *profileFormDialog) HandleKey(msg tea.KeyMsg, app *AppModel) tea.Cmd {
	switch msg.String() {
	case "tab", "down":
		d.moveFocus(1)
		return nil
	case "shift+tab", "up":
		d.moveFocus(-1)
		return nil
	case "ctrl+s", "enter":
		return d.save(app)
	case "esc":
		app.dialog = &profilesDialog{app: app}
		return nil
	}
	var cmd tea.Cmd
	d.inputs[d.focused], cmd = d.inputs[d.focused].Update(msg)
	return cmd
}

func (d *profileFormDialog) moveFocus(delta int) {
	d.inputs[d.focused].Blur()
	d.focused = (d.focused + delta + len(d.inputs)) % len(d.inputs)
	d.inputs[d.focused].Focus()
}

func (d *profileFormDialog) save(app *AppModel) tea.Cmd {
	settings := app.settings.Get()

	profile := storage.Profile{
		Name:       strings.TrimSpace(d.inputs[formName].Value()),
		Host:       strings.TrimSpace(d.inputs[formHost].Value()),
		User:       strings.TrimSpace(d.inputs[formUser].Value()),
		KeyPath:    strings.TrimSpace(d.inputs[formKeyPath].Value()),
		RemotePath: strings.TrimSpace(d.inputs[formRemotePath].Value()),
		LocalPath:  strings.TrimSpace(d.inputs[formLocalPath].Value()),
	}

	portText := strings.TrimSpace(d.inputs[formPort].Value())
	if portText == "" {
		profile.Port = settings.DefaultPort
	} else {
		port, err := strconv.Atoi(portText)
		if err != nil {
			d.errText = "port must be a number"
			return nil
		}
		profile.Port = port
	}
	if profile.User == "" {
		profile.User = settings.DefaultUsername
	}

	switch strings.TrimSpace(d.inputs[formAuth].Value()) {
	case "", "key":
		profile.Auth = ssh.AuthKey
	case "password":
		profile.Auth = ssh.AuthPassword
	default:
		d.errText = "auth must be 'key' or 'password'"
		return nil
	}

	cfg := profile.SSHConfig("")
	if err := cfg.Validate(); err != nil {
		d.errText = err.Error()
		return nil
	}
	if profile.Name == "" {
		profile.Name = cfg.ConnectionID()
	}

	var err error
	if d.editIndex >= 0 {
		err = app.profiles.Update(d.editIndex, profile)
	} else {
		err = app.profiles.Add(profile)
	}
	if err != nil {
		d.errText = err.Error()
		return nil
	}

	app.dialog = &profilesDialog{app: app}
	return nil
}

func (d *profileFormDialog) View() string {
	var b strings.Builder
	if d.editIndex >= 0 {
		b.WriteString("Edit Profile\n\n")
	} else {
		b.WriteString("New Profile\n\n")
	}
	for i := range d.inputs {
		b.WriteString(d.inputs[i].View())
		b.WriteString("\n")
	}
	if d.errText != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(d.errText))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab: next field • enter: save • esc: back"))
	return dialogBoxStyle.Render(b.String())
}

// ---- settings ----

const (
	settingPort = iota
	settingUsername
	settingEditor
	settingFieldCount
)

type settingsDialog struct {
	inputs     []textinput.Model
	focused    int
	showHidden bool
	errText    string
}

func newSettingsDialog(settings storage.Settings) *settingsDialog {
	inputs := make([]textinput.Model, settingFieldCount)
	inputs[settingPort] = newTextInput("22", "Default Port: ")
	inputs[settingUsername] = newTextInput("root", "Default Username: ")
	inputs[settingEditor] = newTextInput("$EDITOR", "Editor: ")
	inputs[settingPort].SetValue(strconv.Itoa(settings.DefaultPort))
	inputs[settingUsername].SetValue(settings.DefaultUsername)
	inputs[settingEditor].SetValue(settings.Editor)
	inputs[settingPort].Focus()

	return &settingsDialog{inputs: inputs, showHidden: settings.ShowHidden}
}

func (d *settingsDialog) HandleKey(msg tea.KeyMsg, app *AppModel) tea.Cmd {
	switch msg.String() {
	case "tab", "down":
		d.moveFocus(1)
		return nil
	case "shift+tab", "up":
		d.moveFocus(-1)
		return nil
	case "ctrl+t":
		d.showHidden = !d.showHidden
		return nil
	case "ctrl+s", "enter":
		port, err := strconv.Atoi(strings.TrimSpace(d.inputs[settingPort].Value()))
		if err != nil || port <= 0 || port > 65535 {
			d.errText = "port must be a number between 1 and 65535"
			return nil
		}
		settings := storage.Settings{
			DefaultPort:     port,
			DefaultUsername: strings.TrimSpace(d.inputs[settingUsername].Value()),
			Editor:          strings.TrimSpace(d.inputs[settingEditor].Value()),
			ShowHidden:      d.showHidden,
		}
		if err := app.settings.Update(settings); err != nil {
			d.errText = err.Error()
			return nil
		}
		app.dialog = nil
		app.applySettings(settings)
		return nil
	case "esc":
		app.dialog = nil
		return nil
	}
	var cmd tea.Cmd
	d.inputs[d.focused], cmd = d.inputs[d.focused].Update(msg)
	return cmd
}

func (d *settingsDialog) moveFocus(delta int) {
	d.inputs[d.focused].Blur()
	d.focused = (d.focused + delta + len(d.inputs)) % len(d.inputs)
	d.inputs[d.focused].Focus()
}

func (d *settingsDialog) View() string {
	var b strings.Builder
	b.WriteString("Settings\n\n")
	for i := range d.inputs {
		b.WriteString(d.inputs[i].View())
		b.WriteString("\n")
	}
	hidden := "off"
	if d.showHidden {
		hidden = "on"
	}
	b.WriteString(fmt.Sprintf("Show Hidden Files: %s (ctrl+t to toggle)\n", hidden))
	if d.errText != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(d.errText))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab: next field • enter: save • esc: cancel"))
	return dialogBoxStyle.Render(b.String())
}

// ---- help ----

type helpDialog struct{}

func (d *helpDialog) HandleKey(msg tea.KeyMsg, app *AppModel) tea.Cmd {
	app.dialog = nil
	return nil
}

func (d *helpDialog) View() string {
	rows := []string{
		"tab          switch pane",
		"↑/k ↓/j      move cursor",
		"enter        open directory",
		"backspace    parent directory",
		"g            go to path (~ expands to home)",
		"space        mark entry",
		"a            mark / unmark all",
		"u            upload marked (local pane)",
		"d            download marked (remote pane)",
		"e            edit file",
		"n            new folder",
		"r            rename",
		"x            delete",
		"!            run shell command (local directory)",
		"ctrl+w       swap panels",
		"p            connection profiles",
		"D            disconnect",
		"s            settings",
		"?            this help",
		"q            quit",
	}
	return dialogBoxStyle.Render("Keys\n\n" + strings.Join(rows, "\n") + "\n\n" +
		helpStyle.Render("press any key to close"))
}
