package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/staatzstreich/vela/pkg/panel"
	"github.com/staatzstreich/vela/pkg/sftp"
)

func (m *AppModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("vela"))
	b.WriteString("\n\n")

	paneWidth := (m.width - 8) / 2
	if paneWidth < 30 {
		paneWidth = 30
	}
	paneHeight := m.height - 10
	if paneHeight < 12 {
		paneHeight = 12
	}

	localView := m.renderPane(m.local, localPane, paneWidth, paneHeight)
	remoteView := m.renderPane(m.remote, remotePane, paneWidth, paneHeight)

	left, right := localView, remoteView
	if m.swapped {
		left, right = remoteView, localView
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right))
	b.WriteString("\n")

	if line := m.renderTransfers(); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.errMsg != "" {
		b.WriteString(errorStyle.Render("Error: " + m.errMsg))
		b.WriteString("\n")
	} else if m.statusMsg != "" {
		b.WriteString(successStyle.Render(m.statusMsg))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("tab: switch • space: mark • u: upload • d: download • e: edit • p: profiles • ?: help • q: quit"))

	if m.dialog != nil {
		b.WriteString("\n\n")
		b.WriteString(m.dialog.View())
	}

	return b.String()
}

func (m *AppModel) renderPane(p *panel.Panel, side paneSide, width, height int) string {
	var b strings.Builder

	if side == localPane {
		b.WriteString(paneTitleLocalStyle.Render("Local"))
	} else {
		b.WriteString(paneTitleRemoteStyle.Render("Remote"))
	}
	if p.MarkCount() > 0 {
		b.WriteString(helpStyle.Render(fmt.Sprintf("  %d marked", p.MarkCount())))
	}
	b.WriteString("\n")

	if side == remotePane && m.session == nil {
		b.WriteString(pathStyle.Render("not connected"))
		b.WriteString("\n\n")
		b.WriteString(itemStyle.Render("press p to pick a profile"))
		return m.borderFor(side).Width(width).Height(height).Render(b.String())
	}

	path := p.Path
	if len(path) > width-4 {
		path = "..." + path[len(path)-(width-7):]
	}
	b.WriteString(pathStyle.Render(path))
	b.WriteString("\n\n")

	displayCount := height - 3
	if displayCount < 5 {
		displayCount = 5
	}

	startIdx := 0
	if p.Cursor > displayCount/2 && len(p.Entries) > displayCount {
		startIdx = p.Cursor - displayCount/2
	}
	endIdx := startIdx + displayCount
	if endIdx > len(p.Entries) {
		endIdx = len(p.Entries)
	}

	for i := startIdx; i < endIdx; i++ {
		entry := p.Entries[i]

		cursor := "  "
		style := itemStyle
		if p.Cursor == i && m.active == side {
			cursor = "→ "
			style = selectedItemStyle
		} else if p.IsMarked(i) {
			style = markedItemStyle
		}

		mark := " "
		if p.IsMarked(i) {
			mark = "*"
		}

		name := entry.Name
		if entry.IsDir && !entry.IsParent() {
			name += "/"
		}
		if len(name) > width-20 {
			name = name[:width-23] + "..."
		}

		line := fmt.Sprintf("%s%s", mark, name)
		if !entry.IsDir && !entry.IsParent() {
			line = fmt.Sprintf("%-*s %8s", width-16, line, formatBytes(entry.Size))
		}

		b.WriteString(cursor + style.Render(line))
		b.WriteString("\n")
	}

	return m.borderFor(side).Width(width).Height(height).Render(b.String())
}

func (m *AppModel) borderFor(side paneSide) lipgloss.Style {
	if m.active == side {
		return activeBorderStyle
	}
	return inactiveBorderStyle
}

func (m *AppModel) renderTransfers() string {
	var lines []string
	if m.upload != nil {
		if line := renderProgressLine("Uploading", m.upload.Snapshot()); line != "" {
			lines = append(lines, line)
		}
	}
	if m.download != nil {
		if line := renderProgressLine("Downloading", m.download.Snapshot()); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return successStyle.Render(strings.Join(lines, "\n"))
}

func renderProgressLine(verb string, snap sftp.ProgressSnapshot) string {
	if snap.State != sftp.TransferRunning {
		return ""
	}
	if snap.BytesTotal > 0 {
		return fmt.Sprintf("%s %s  %3.0f%% of %s  (%d/%d files)",
			verb, snap.CurrentFile,
			snap.FileFraction()*100, formatBytes(snap.BytesTotal),
			snap.FilesDone, snap.FilesTotal)
	}
	return fmt.Sprintf("%s %s  %s  (%d/%d files)",
		verb, snap.CurrentFile, formatBytes(snap.BytesDone),
		snap.FilesDone, snap.FilesTotal)
}

func formatBytes(n int64) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	case n < 1024*1024*1024:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	default:
		return fmt.Sprintf("%.1f GB", float64(n)/(1024*1024*1024))
	}
}
