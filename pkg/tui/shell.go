package tui

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// shellOutputLines is the height of the output window in the popup.
const shellOutputLines = 15

// shellResult holds one finished command: its combined output split
// into lines and the exit code, -1 when the command could not run.
type shellResult struct {
	lines    []string
	exitCode int
}

// runShellCommand executes the command through `sh -c` in dir and
// captures stdout and stderr together. It never returns an error; a
// failed command shows up as its output plus the exit code.
func runShellCommand(dir, command string) shellResult {
	cmd := exec.Command("sh", "-c", command)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()

	var lines []string
	if text := strings.TrimRight(string(out), "\n"); text != "" {
		lines = strings.Split(text, "\n")
	} else {
		lines = []string{"(no output)"}
	}

	code := 0
	if err != nil {
		code = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		} else {
			lines = append(lines, fmt.Sprintf("error: %v", err))
		}
	}
	return shellResult{lines: lines, exitCode: code}
}

// shellDialog prompts for a shell command, runs it in the local pane's
// directory and shows the output in a scrollable popup.
type shellDialog struct {
	input  textinput.Model
	ran    string
	result *shellResult
	scroll int
}

func newShellDialog() *shellDialog {
	d := &shellDialog{input: newTextInput("ls -la", "! ")}
	d.input.Width = 50
	d.input.Focus()
	return d
}

func (d *shellDialog) HandleKey(msg tea.KeyMsg, app *AppModel) tea.Cmd {
	if d.result != nil {
		switch msg.String() {
		case "up", "k":
			if d.scroll > 0 {
				d.scroll--
			}
		case "down", "j":
			if d.scroll+shellOutputLines < len(d.result.lines) {
				d.scroll++
			}
		case "esc", "q", "enter":
			app.dialog = nil
		}
		return nil
	}

	switch msg.String() {
	case "enter":
		command := strings.TrimSpace(d.input.Value())
		if command == "" {
			app.dialog = nil
			return nil
		}
		result := runShellCommand(app.local.Path, command)
		d.ran = command
		d.result = &result
		d.scroll = 0
		app.refreshLocal()
		app.statusMsg = fmt.Sprintf("! %s (exit %d)", command, result.exitCode)
		return nil
	case "esc":
		app.dialog = nil
		return nil
	}
	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	return cmd
}

func (d *shellDialog) View() string {
	if d.result == nil {
		return dialogBoxStyle.Render(fmt.Sprintf("Run Shell Command (local directory)\n\n%s\n\n%s",
			d.input.View(),
			helpStyle.Render("enter: run • esc: cancel")))
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("! %s (exit %d)\n\n", d.ran, d.result.exitCode))

	end := d.scroll + shellOutputLines
	if end > len(d.result.lines) {
		end = len(d.result.lines)
	}
	for _, line := range d.result.lines[d.scroll:end] {
		b.WriteString(itemStyle.Render(line))
		b.WriteString("\n")
	}
	if len(d.result.lines) > shellOutputLines {
		b.WriteString(fmt.Sprintf("\n[%d-%d/%d]", d.scroll+1, end, len(d.result.lines)))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓: scroll • esc: close"))
	return dialogBoxStyle.Render(b.String())
}
