package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/codeguardian/codeguardian/internal/export"
	"github.com/codeguardian/codeguardian/internal/filter"
	"github.com/codeguardian/codeguardian/internal/health"
	"github.com/codeguardian/codeguardian/internal/input"
	"github.com/codeguardian/codeguardian/internal/orchestrator"
	"github.com/codeguardian/codeguardian/internal/types"
)

type mode int

const (
	modeBrowse mode = iota
	modeEditor
	modePath
)

const (
	browseHint = "q: quit | ?: help | i: edit | s: scan | o: open | 1-3: sample | f/t: filter | e: export"
	editorHint = "esc: done editing | ctrl+s: scan"
	pathHint   = "enter: load file | esc: cancel"
)

// Options configures a TUI session.
type Options struct {
	Context   context.Context
	Scanner   orchestrator.Scanner
	Health    health.Checker
	Initial   types.Artifact
	Filter    filter.State
	ExportDir string
	Version   string
}

// Model is the bubbletea model. Every piece of session state is mutated
// only inside Update.
type Model struct {
	ctx     context.Context
	scanner orchestrator.Scanner
	checker health.Checker

	acq    *input.Acquirer
	orch   *orchestrator.Orchestrator
	mon    *health.Monitor
	filter filter.State

	// indices into the orchestrator's findings for the visible rows
	visible []int

	editor   textarea.Model
	path     textinput.Model
	table    table.Model
	viewport viewport.Model
	spinner  spinner.Model

	exportDir string
	version   string

	mode           mode
	showHelp       bool
	showExportMenu bool
	ready          bool
	quitting       bool
	width, height  int

	statusMessage string
	statusTimeout *time.Time
	lastScan      time.Duration
	scanStarted   time.Time
}

// NewModel builds the initial model. The health probe starts from Init.
func NewModel(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	columns := []table.Column{
		{Title: "Sev", Width: 6},
		{Title: "Line", Width: 6},
		{Title: "Type", Width: 24},
		{Title: "Message", Width: 50},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true).
		Background(lipgloss.Color("235"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("232")).
		Background(lipgloss.Color("208")).
		Bold(false)
	t.SetStyles(s)

	ed := textarea.New()
	ed.Placeholder = "Paste or type code here..."
	ed.ShowLineNumbers = true
	ed.CharLimit = input.MaxFileBytes
	ed.MaxHeight = 0

	pi := textinput.New()
	pi.Prompt = "File: "
	pi.Placeholder = "path/to/file.js"

	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := Model{
		ctx:           ctx,
		scanner:       opts.Scanner,
		checker:       opts.Health,
		acq:           input.NewAcquirer(),
		orch:          orchestrator.New(),
		mon:           health.New(opts.Health),
		filter:        opts.Filter,
		editor:        ed,
		path:          pi,
		table:         t,
		viewport:      viewport.New(80, 10),
		spinner:       sp,
		exportDir:     opts.ExportDir,
		version:       opts.Version,
		statusMessage: browseHint,
	}
	m.installArtifact(opts.Initial)
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, textarea.Blink}
	if m.checker != nil {
		cmds = append(cmds, probeCmd(m.ctx, m.checker))
	}
	return tea.Batch(cmds...)
}

// installArtifact replaces the acquirer's artifact through its public
// operations and mirrors the code into the editor.
func (m *Model) installArtifact(a types.Artifact) {
	if a.Filename != "" {
		_ = m.acq.ApplyFile(input.FileLoaded{Name: a.Filename, Content: a.Code})
		if a.Language != "" {
			_ = m.acq.SetLanguage(a.Language)
		}
	} else {
		m.acq.AcceptCode(a.Code)
		_ = m.acq.SetLanguage(a.Language)
	}
	m.editor.SetValue(m.acq.Artifact().Code)
}

func (m *Model) setStatus(msg string) {
	timeout := time.Now().Add(3 * time.Second)
	m.statusTimeout = &timeout
	m.statusMessage = msg
}

func (m *Model) hint() string {
	switch m.mode {
	case modeEditor:
		return editorHint
	case modePath:
		return pathHint
	}
	return browseHint
}

func (m *Model) startScan() tea.Cmd {
	if m.scanner == nil {
		m.setStatus("No scanner configured")
		return nil
	}
	task, err := m.orch.Submit(m.acq.Artifact())
	if err != nil {
		m.setStatus(err.Error())
		return nil
	}
	m.scanStarted = time.Now()
	m.refreshRows()
	return scanCmd(m.ctx, m.scanner, task)
}

func (m *Model) resetSession() {
	m.orch.Reset()
	m.refreshRows()
}

func (m *Model) openPathPrompt() tea.Cmd {
	m.mode = modePath
	m.path.SetValue("")
	return m.path.Focus()
}

func (m *Model) submitPath() tea.Cmd {
	p := strings.TrimSpace(m.path.Value())
	m.path.Blur()
	m.mode = modeBrowse
	if p == "" {
		return nil
	}
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[2:])
		}
	}
	blob, err := input.FileBlob(p)
	if err != nil {
		m.setStatus(fmt.Sprintf("Open failed: %v", err))
		return nil
	}
	if err := m.acq.CheckBlob(blob); err != nil {
		m.setStatus(err.Error())
		return nil
	}
	m.setStatus("Reading " + blob.Name + "...")
	return readFileCmd(m.ctx, blob)
}

func (m *Model) cycleLanguage() {
	cur := m.acq.Artifact().Language
	next := types.Language("")
	if cur == "" {
		next = input.Languages[0]
	} else {
		for i, l := range input.Languages {
			if l == cur && i+1 < len(input.Languages) {
				next = input.Languages[i+1]
			}
		}
	}
	_ = m.acq.SetLanguage(next)
	if next == "" {
		m.setStatus("Language: auto")
	} else {
		m.setStatus("Language: " + string(next))
	}
}

// refreshRows recomputes the visible rows from the current outcome and filter.
func (m *Model) refreshRows() {
	findings := m.orch.Findings()
	m.visible = filter.Indices(findings, m.filter)
	rows := make([]table.Row, len(m.visible))
	for i, idx := range m.visible {
		f := findings[idx]
		rows[i] = table.Row{severityText(f.Severity), strconv.Itoa(f.Line), f.Type, f.Message}
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) || m.table.Cursor() < 0 {
		m.table.SetCursor(0)
	}
	m.updateViewportContent()
}

// selected returns the finding under the cursor.
func (m *Model) selected() (types.Finding, bool) {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.visible) {
		return types.Finding{}, false
	}
	return m.orch.Findings()[m.visible[c]], true
}

func (m *Model) updateViewportContent() {
	f, ok := m.selected()
	if !ok {
		m.viewport.SetContent("")
		return
	}
	var b strings.Builder
	b.WriteString(severityStyle(f.Severity).Render(string(f.Severity)))
	b.WriteString("  ")
	b.WriteString(labelStyle.Render(f.Type))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  line %d", f.Line)))
	b.WriteString("\n\n")
	b.WriteString(f.Message)
	b.WriteString("\n")
	if f.CodeSnippet != "" {
		a := m.acq.Artifact()
		b.WriteString("\n")
		b.WriteString(numberLines(highlightCode(f.CodeSnippet, a.Language, a.Filename), max(f.Line, 1)))
		b.WriteString("\n")
	}
	if f.Suggestion != "" {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Suggestion: "))
		b.WriteString(f.Suggestion)
		b.WriteString("\n")
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoTop()
}

func (m *Model) resize() {
	usable := m.width - 10
	sevWidth, lineWidth, typeWidth := 6, 6, 24
	msgWidth := usable - sevWidth - lineWidth - typeWidth
	if msgWidth < 20 {
		msgWidth = 20
	}
	cols := m.table.Columns()
	cols[0].Width = sevWidth
	cols[1].Width = lineWidth
	cols[2].Width = typeWidth
	cols[3].Width = msgWidth
	m.table.SetColumns(cols)

	// header, stats line, status bar and the two pane borders
	avail := m.height - 3 - 2*paneBorderStyle.GetVerticalFrameSize()
	if avail < 6 {
		avail = 6
	}
	tableHeight := avail * 45 / 100
	m.table.SetWidth(m.width)
	m.table.SetHeight(tableHeight)
	m.viewport.Width = m.width - paneBorderStyle.GetHorizontalFrameSize()
	m.viewport.Height = avail - tableHeight

	m.editor.SetWidth(m.width - paneBorderStyle.GetHorizontalFrameSize())
	m.editor.SetHeight(avail + paneBorderStyle.GetVerticalFrameSize())
	m.path.Width = m.width - 10
	m.updateViewportContent()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case healthMsg:
		if m.mon.Apply(health.Result(msg)) == types.HealthDisconnected {
			m.setStatus("Backend unreachable at health check")
		}
		return m, nil

	case scanMsg:
		if !m.orch.Apply(orchestrator.Response(msg)) {
			return m, nil
		}
		m.lastScan = time.Since(m.scanStarted)
		m.refreshRows()
		out := m.orch.Outcome()
		switch {
		case out.Failure != nil:
			m.setStatus("Scan failed: " + out.Failure.Message)
		case len(out.Findings) == 0:
			m.setStatus("Scan complete - no security issues found")
		default:
			m.setStatus(fmt.Sprintf("Scan complete - found %d issues", len(out.Findings)))
		}
		return m, nil

	case fileMsg:
		if err := m.acq.ApplyFile(input.FileLoaded(msg)); err != nil {
			m.setStatus(fmt.Sprintf("Load failed: %v", err))
			return m, nil
		}
		m.editor.SetValue(m.acq.Artifact().Code)
		m.resetSession()
		lines, _ := m.acq.Stats()
		m.setStatus(fmt.Sprintf("Loaded %s (%d lines)", msg.Name, lines))
		return m, nil

	case exportMsg:
		switch {
		case errors.Is(msg.err, export.ErrNoData):
			m.setStatus("No results to export")
		case msg.err != nil:
			m.setStatus(fmt.Sprintf("Export failed: %v", msg.err))
		default:
			m.setStatus("Exported to " + msg.path)
		}
		return m, nil

	case statusMsg:
		m.setStatus(string(msg))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.statusTimeout != nil && time.Now().After(*m.statusTimeout) {
			m.statusTimeout = nil
			m.statusMessage = m.hint()
		}
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.mode {
	case modeEditor:
		m.editor, cmd = m.editor.Update(msg)
	case modePath:
		m.path, cmd = m.path.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.showExportMenu {
		m.showExportMenu = false
		var f export.Format
		switch key {
		case "1", "j":
			f = export.FormatJSON
		case "2", "c":
			f = export.FormatCSV
		case "3", "s":
			f = export.FormatSARIF
		default:
			return m, nil
		}
		a := m.acq.Artifact()
		return m, exportCmd(m.exportDir, f, m.orch.Findings(), export.Meta{Filename: a.Filename, ToolVersion: m.version, Fingerprint: m.acq.Fingerprint()})
	}

	switch m.mode {
	case modePath:
		switch key {
		case "esc":
			m.path.Blur()
			m.mode = modeBrowse
			m.statusMessage = browseHint
			return m, nil
		case "enter":
			cmd := m.submitPath()
			return m, cmd
		}
		var cmd tea.Cmd
		m.path, cmd = m.path.Update(msg)
		return m, cmd

	case modeEditor:
		switch key {
		case "esc":
			m.editor.Blur()
			m.mode = modeBrowse
			m.statusMessage = browseHint
			return m, nil
		case "ctrl+s":
			m.editor.Blur()
			m.mode = modeBrowse
			cmd := m.startScan()
			return m, cmd
		}
		before := m.editor.Value()
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		if v := m.editor.Value(); v != before {
			m.acq.AcceptCode(v)
		}
		return m, cmd
	}

	switch key {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "?":
		m.showHelp = true
	case "i", "enter":
		if m.orch.State() == orchestrator.Scanning {
			return m, nil
		}
		m.mode = modeEditor
		m.statusMessage = editorHint
		cmd := m.editor.Focus()
		return m, cmd
	case "s", "ctrl+s":
		cmd := m.startScan()
		return m, cmd
	case "o":
		cmd := m.openPathPrompt()
		return m, cmd
	case "p":
		if err := m.acq.AcceptClipboard(); err != nil {
			m.setStatus(err.Error())
			return m, nil
		}
		m.editor.SetValue(m.acq.Artifact().Code)
		m.resetSession()
		m.setStatus("Pasted from clipboard")
	case "1", "2", "3":
		keys := input.SampleKeys()
		n := int(key[0] - '1')
		if n >= len(keys) {
			return m, nil
		}
		if err := m.acq.LoadSample(keys[n]); err != nil {
			m.setStatus(err.Error())
			return m, nil
		}
		m.editor.SetValue(m.acq.Artifact().Code)
		m.resetSession()
		m.setStatus("Loaded " + keys[n] + " sample")
	case "l":
		m.cycleLanguage()
	case "r":
		m.resetSession()
		m.setStatus("Results cleared")
	case "c":
		m.acq.Clear()
		m.editor.SetValue("")
		m.resetSession()
		m.setStatus("Cleared")
	case "h":
		if m.checker != nil {
			m.setStatus("Checking backend...")
			return m, probeCmd(m.ctx, m.checker)
		}
	case "f":
		m.filter.Severity = filter.NextSeverity(m.filter.Severity)
		m.refreshRows()
	case "t":
		m.filter.Type = filter.NextType(m.filter.Type, m.orch.Findings())
		m.refreshRows()
	case "x", "esc":
		if !m.filter.IsAll() {
			m.filter = filter.State{}
			m.refreshRows()
			m.setStatus("Filters cleared")
		}
	case "e":
		if len(m.orch.Findings()) == 0 {
			m.setStatus("No results to export")
			return m, nil
		}
		m.showExportMenu = true
	case "y":
		if f, ok := m.selected(); ok {
			return m, copyFindingCmd(f)
		}
	case "up", "k", "down", "j", "pgup", "pgdown", "home", "end", "g", "G":
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		m.updateViewportContent()
		return m, cmd
	case "ctrl+d", "ctrl+u":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}
