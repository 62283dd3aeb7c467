package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/codeguardian/codeguardian/internal/filter"
	"github.com/codeguardian/codeguardian/internal/orchestrator"
	"github.com/codeguardian/codeguardian/internal/types"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}
	if m.showHelp {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.helpView())
	}
	if m.showExportMenu {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.exportMenuView())
	}
	if m.orch.State() == orchestrator.Scanning {
		box := popupStyle.
			Width(50).
			Align(lipgloss.Center).
			Render(fmt.Sprintf("%s  Scanning...\n\nPress r to discard", m.spinner.View()))
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}

	var body string
	switch {
	case m.mode == modeEditor:
		body = paneBorderStyle.Width(m.width - 2).Render(m.editor.View())
	case m.orch.State() == orchestrator.Failed:
		body = m.failureView()
	case m.orch.State() == orchestrator.ResultsReady:
		body = m.resultsView()
	default:
		body = m.previewView()
	}

	parts := []string{m.headerView(), body}
	if m.mode == modePath {
		parts = append(parts, m.path.View())
	}
	parts = append(parts, m.statusView())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) headerView() string {
	a := m.acq.Artifact()
	lang := "auto"
	if a.Language != "" {
		lang = string(a.Language)
	}
	lines, chars := m.acq.Stats()
	info := fmt.Sprintf("lang: %s  %d lines, %d characters", lang, lines, chars)
	if a.Filename != "" {
		info = a.Filename + "  " + info
	}
	left := titleStyle.Render("Code Guardian") + dimStyle.Render(info)
	right := healthBadge(m.mon.Status())
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 1
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) statusView() string {
	left := m.statusMessage
	right := ""
	if m.lastScan > 0 && m.orch.State() == orchestrator.ResultsReady {
		right = fmt.Sprintf("scan: %dms", m.lastScan.Milliseconds())
	}
	spacer := m.width - 4 - lipgloss.Width(left) - lipgloss.Width(right)
	if spacer < 1 {
		spacer = 1
	}
	content := left
	if right != "" {
		content += strings.Repeat(" ", spacer) + right
	}
	return statusStyle.Width(m.width).Padding(0, 2).Render(content)
}

// bodyHeight is the space left between the header and the status bar.
func (m Model) bodyHeight() int {
	h := m.height - 2
	if m.mode == modePath {
		h--
	}
	if h < 3 {
		h = 3
	}
	return h
}

func (m Model) previewView() string {
	a := m.acq.Artifact()
	inner := m.bodyHeight() - paneBorderStyle.GetVerticalFrameSize()
	var content string
	if a.Empty() {
		content = lipgloss.Place(m.width-2, inner, lipgloss.Center, lipgloss.Center,
			emptyTextStyle.Render("No code yet.\n\nPress i to type, p to paste, o to open a file\nor 1/2/3 for a sample"))
	} else {
		lines := strings.Split(highlightCode(a.Code, a.Language, a.Filename), "\n")
		if len(lines) > inner {
			lines = lines[:inner]
		}
		content = numberLines(strings.Join(lines, "\n"), 1)
	}
	return paneBorderStyle.Width(m.width - 2).Height(inner).Render(content)
}

func (m Model) failureView() string {
	out := m.orch.Outcome()
	msg := "Scan failed"
	if out.Failure != nil {
		msg = out.Failure.Message
	}
	inner := m.bodyHeight() - paneBorderStyle.GetVerticalFrameSize()
	box := lipgloss.Place(m.width-2, inner, lipgloss.Center, lipgloss.Center,
		errorStyle.Render(msg)+"\n\n"+dimStyle.Render("Press s to retry, r to dismiss"))
	return paneBorderStyle.Width(m.width - 2).Render(box)
}

func (m Model) resultsView() string {
	findings := m.orch.Findings()
	shown := len(m.visible)
	counts := filter.CountBySeverity(findings)
	stats := fmt.Sprintf("Showing %d of %d issues  |  %s %d  %s %d  %s %d  %s %d  |  filter: %s",
		shown, len(findings),
		sevCriticalStyle.Render("Critical"), counts[types.SevCritical],
		sevHighStyle.Render("High"), counts[types.SevHigh],
		sevMedStyle.Render("Medium"), counts[types.SevMedium],
		sevLowStyle.Render("Low"), counts[types.SevLow],
		m.filter)
	statsRender := statsStyle.Width(m.width).Render(stats)

	if shown == 0 {
		msg := "No security issues found ✅\n\nPress i to edit and s to rescan"
		if len(findings) > 0 {
			msg = "No issues match the current filters\n\nPress x to clear filters"
		}
		inner := m.bodyHeight() - 1 - paneBorderStyle.GetVerticalFrameSize()
		empty := lipgloss.Place(m.width-2, inner, lipgloss.Center, lipgloss.Center, emptyTextStyle.Render(msg))
		return lipgloss.JoinVertical(lipgloss.Left, statsRender, paneBorderStyle.Width(m.width-2).Render(empty))
	}

	tableRender := paneBorderStyle.
		Width(m.width - 2).
		Height(m.table.Height()).
		Render(m.table.View())
	detailRender := paneBorderStyle.
		Width(m.width - 2).
		Height(m.viewport.Height).
		Render(m.viewport.View())
	return lipgloss.JoinVertical(lipgloss.Left, statsRender, tableRender, detailRender)
}

func (m Model) helpView() string {
	formatRow := func(key, desc string) string {
		return lipgloss.NewStyle().Width(12).Foreground(lipgloss.Color("11")).Render(key) + desc
	}
	sections := []struct {
		title string
		rows  [][2]string
	}{
		{"Input", [][2]string{
			{"i / enter", "edit code"},
			{"o", "open a file"},
			{"p", "paste clipboard"},
			{"1 2 3", "javascript / python / java sample"},
			{"l", "cycle language"},
			{"c", "clear code and results"},
		}},
		{"Scan", [][2]string{
			{"s / ctrl+s", "scan"},
			{"r", "discard results"},
			{"h", "re-check backend"},
		}},
		{"Results", [][2]string{
			{"j / k", "move"},
			{"f", "cycle severity filter"},
			{"t", "cycle type filter"},
			{"x / esc", "clear filters"},
			{"y", "copy finding"},
			{"e", "export"},
		}},
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Keys"))
	b.WriteString("\n")
	for _, s := range sections {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(s.title))
		b.WriteString("\n")
		for _, r := range s.rows {
			b.WriteString(formatRow(r[0], r[1]))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("q: quit  any key: close"))
	return popupStyle.Render(b.String())
}

func (m Model) exportMenuView() string {
	n := len(m.orch.Findings())
	content := fmt.Sprintf("Export %d findings\n\n1/j  JSON\n2/c  CSV\n3/s  SARIF\n\n%s",
		n, dimStyle.Render("esc: cancel"))
	return popupStyle.Render(content)
}
