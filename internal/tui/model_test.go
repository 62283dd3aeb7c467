package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/codeguardian/codeguardian/internal/client"
	"github.com/codeguardian/codeguardian/internal/export"
	"github.com/codeguardian/codeguardian/internal/filter"
	"github.com/codeguardian/codeguardian/internal/health"
	"github.com/codeguardian/codeguardian/internal/input"
	"github.com/codeguardian/codeguardian/internal/orchestrator"
	"github.com/codeguardian/codeguardian/internal/types"
)

type fakeScanner struct {
	calls int
	err   error
}

func (f *fakeScanner) Scan(_ context.Context, req types.ScanRequest) (client.ScanResult, error) {
	f.calls++
	if f.err != nil {
		return client.ScanResult{}, f.err
	}
	findings := []types.Finding{
		{Severity: types.SevCritical, Type: "Code Injection", Line: 1, Message: "Use of eval() is dangerous", CodeSnippet: "eval(x)", Suggestion: "Avoid eval()"},
		{Severity: types.SevHigh, Type: "Hardcoded Secret", Line: 2, Message: "Hardcoded password"},
		{Severity: types.SevLow, Type: "Weak Randomness", Line: 3, Message: "Math.random() is not secure"},
	}
	return client.ScanResult{Findings: findings, Summary: filter.Summarize(findings, time.Now())}, nil
}

type fakeChecker struct{ err error }

func (f fakeChecker) Health(context.Context) (client.HealthInfo, error) {
	if f.err != nil {
		return client.HealthInfo{}, f.err
	}
	return client.HealthInfo{Status: "OK", Service: "code-guardian"}, nil
}

func newTestModel(t *testing.T, s orchestrator.Scanner) Model {
	t.Helper()
	m := NewModel(Options{Scanner: s, Health: fakeChecker{}, ExportDir: t.TempDir(), Version: "test"})
	return update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func press(t *testing.T, m Model, key string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+s":
		msg = tea.KeyMsg{Type: tea.KeyCtrlS}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// scanned loads the javascript sample and completes one scan.
func scanned(t *testing.T, s *fakeScanner) Model {
	t.Helper()
	m := newTestModel(t, s)
	m, _ = press(t, m, "1")
	m, cmd := press(t, m, "s")
	if cmd == nil {
		t.Fatal("expected a scan command")
	}
	if m.orch.State() != orchestrator.Scanning {
		t.Fatalf("state = %v, want scanning", m.orch.State())
	}
	return update(t, m, cmd())
}

func TestScan_BlankCodeIsRejectedLocally(t *testing.T) {
	s := &fakeScanner{}
	m := newTestModel(t, s)
	m, cmd := press(t, m, "s")
	if cmd != nil {
		t.Fatal("blank code must not start a request")
	}
	if s.calls != 0 {
		t.Fatalf("scanner called %d times", s.calls)
	}
	if m.statusMessage != orchestrator.ErrValidation.Error() {
		t.Errorf("status = %q", m.statusMessage)
	}
	if m.orch.State() != orchestrator.Idle {
		t.Errorf("state = %v", m.orch.State())
	}
}

func TestScan_ResultsPopulateTable(t *testing.T) {
	m := scanned(t, &fakeScanner{})
	if m.orch.State() != orchestrator.ResultsReady {
		t.Fatalf("state = %v", m.orch.State())
	}
	if got := len(m.table.Rows()); got != 3 {
		t.Fatalf("rows = %d, want 3", got)
	}
	f, ok := m.selected()
	if !ok || f.Type != "Code Injection" {
		t.Errorf("selected = %+v, %v", f, ok)
	}
	if !strings.Contains(m.statusMessage, "found 3 issues") {
		t.Errorf("status = %q", m.statusMessage)
	}
}

func TestScan_FailureShowsMessage(t *testing.T) {
	s := &fakeScanner{err: &client.Error{Kind: client.KindUnreachable, Message: "No response from server. Please check your connection."}}
	m := scanned(t, s)
	if m.orch.State() != orchestrator.Failed {
		t.Fatalf("state = %v", m.orch.State())
	}
	if !strings.Contains(m.View(), "No response from server") {
		t.Error("failure message not rendered")
	}
}

func TestScan_StaleResponseAfterResetIsIgnored(t *testing.T) {
	s := &fakeScanner{}
	m := newTestModel(t, s)
	m, _ = press(t, m, "1")
	m, first := press(t, m, "s")
	m, _ = press(t, m, "r")
	if m.orch.State() != orchestrator.Idle {
		t.Fatalf("state after reset = %v", m.orch.State())
	}

	m = update(t, m, first())
	if m.orch.State() != orchestrator.Idle {
		t.Fatalf("stale response applied: state = %v", m.orch.State())
	}
	if len(m.table.Rows()) != 0 {
		t.Fatalf("stale response populated %d rows", len(m.table.Rows()))
	}

	m, second := press(t, m, "s")
	stale := first()
	m = update(t, m, stale)
	if m.orch.State() != orchestrator.Scanning {
		t.Fatalf("stale response during new scan: state = %v", m.orch.State())
	}
	m = update(t, m, second())
	if m.orch.State() != orchestrator.ResultsReady {
		t.Fatalf("state = %v", m.orch.State())
	}
}

func TestFilterCycling(t *testing.T) {
	m := scanned(t, &fakeScanner{})

	m, _ = press(t, m, "f")
	if m.filter.Severity != types.SevCritical || len(m.visible) != 1 {
		t.Fatalf("severity filter: %v, %d rows", m.filter, len(m.visible))
	}
	m, _ = press(t, m, "f")
	if m.filter.Severity != types.SevHigh || len(m.visible) != 1 {
		t.Fatalf("severity filter: %v, %d rows", m.filter, len(m.visible))
	}
	m, _ = press(t, m, "f")
	if m.filter.Severity != types.SevMedium || len(m.visible) != 0 {
		t.Fatalf("severity filter: %v, %d rows", m.filter, len(m.visible))
	}
	if !strings.Contains(m.View(), "No issues match the current filters") {
		t.Error("expected empty filter message")
	}

	m, _ = press(t, m, "x")
	if !m.filter.IsAll() || len(m.visible) != 3 {
		t.Fatalf("after clear: %v, %d rows", m.filter, len(m.visible))
	}

	m, _ = press(t, m, "t")
	if m.filter.Type != "Code Injection" || len(m.visible) != 1 {
		t.Fatalf("type filter: %v, %d rows", m.filter, len(m.visible))
	}
	if len(m.orch.Findings()) != 3 {
		t.Error("filtering must not change the outcome")
	}
}

func TestExport_WritesFullFindings(t *testing.T) {
	m := scanned(t, &fakeScanner{})
	m, _ = press(t, m, "f") // filters do not narrow exports

	m, _ = press(t, m, "e")
	if !m.showExportMenu {
		t.Fatal("export menu not shown")
	}
	m, cmd := press(t, m, "2")
	if cmd == nil || m.showExportMenu {
		t.Fatal("expected export command and closed menu")
	}
	msg := cmd().(exportMsg)
	if msg.err != nil {
		t.Fatalf("export: %v", msg.err)
	}
	if filepath.Base(msg.path) != export.Filename(export.FormatCSV) {
		t.Errorf("path = %s", msg.path)
	}
	data, err := os.ReadFile(msg.path)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(strings.TrimSpace(string(data)), "\n"); got != 3 {
		t.Errorf("csv has %d data rows, want 3", got)
	}
	m = update(t, m, msg)
	if !strings.HasPrefix(m.statusMessage, "Exported to ") {
		t.Errorf("status = %q", m.statusMessage)
	}
}

func TestExport_SARIFRecordsFingerprint(t *testing.T) {
	m := scanned(t, &fakeScanner{})
	want := m.acq.Fingerprint()

	m, _ = press(t, m, "e")
	_, cmd := press(t, m, "3")
	if cmd == nil {
		t.Fatal("expected export command")
	}
	msg := cmd().(exportMsg)
	if msg.err != nil {
		t.Fatalf("export: %v", msg.err)
	}
	data, err := os.ReadFile(msg.path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"fingerprint": "`+want+`"`) {
		t.Errorf("sarif does not carry fingerprint %s", want)
	}
}

func TestExport_NoResults(t *testing.T) {
	m := newTestModel(t, &fakeScanner{})
	m, cmd := press(t, m, "e")
	if cmd != nil || m.showExportMenu {
		t.Fatal("export must not start without results")
	}
	if m.statusMessage != "No results to export" {
		t.Errorf("status = %q", m.statusMessage)
	}
}

func TestOpenFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.py")
	if err := os.WriteFile(path, []byte("import os\nos.system(cmd)\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := newTestModel(t, &fakeScanner{})
	m, _ = press(t, m, "o")
	if m.mode != modePath {
		t.Fatal("path prompt not opened")
	}
	m.path.SetValue(path)
	m, cmd := press(t, m, "enter")
	if cmd == nil {
		t.Fatalf("expected read command, status %q", m.statusMessage)
	}
	m = update(t, m, cmd())

	a := m.acq.Artifact()
	if a.Filename != "app.py" || a.Language != "python" {
		t.Errorf("artifact = %+v", a)
	}
	if m.editor.Value() != a.Code {
		t.Error("editor not synced with loaded file")
	}
}

func TestOpenFile_TooLargeLeavesArtifact(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.js")
	if err := os.WriteFile(path, make([]byte, input.MaxFileBytes+1), 0o644); err != nil {
		t.Fatal(err)
	}

	m := newTestModel(t, &fakeScanner{})
	m, _ = press(t, m, "2")
	before := m.acq.Artifact()

	m, _ = press(t, m, "o")
	m.path.SetValue(path)
	m, cmd := press(t, m, "enter")
	if cmd != nil {
		t.Fatal("oversized file must not be read")
	}
	if !errors.Is(m.acq.Err(), input.ErrSizeExceeded) {
		t.Errorf("err = %v", m.acq.Err())
	}
	if m.acq.Artifact() != before {
		t.Error("artifact changed")
	}
	if !strings.Contains(m.statusMessage, "1MB") {
		t.Errorf("status = %q", m.statusMessage)
	}
}

func TestEditorUpdatesArtifact(t *testing.T) {
	m := newTestModel(t, &fakeScanner{})
	m, _ = press(t, m, "l") // javascript
	m, _ = press(t, m, "i")
	if m.mode != modeEditor {
		t.Fatal("editor not focused")
	}
	m, _ = press(t, m, "eval(x)")
	a := m.acq.Artifact()
	if a.Code != "eval(x)" || a.Language != "javascript" {
		t.Errorf("artifact = %+v", a)
	}

	s := &fakeScanner{}
	m.scanner = s
	m, cmd := press(t, m, "ctrl+s")
	if cmd == nil || m.mode != modeBrowse {
		t.Fatal("ctrl+s in editor should scan and leave the editor")
	}
	m = update(t, m, cmd())
	if s.calls != 1 || m.orch.State() != orchestrator.ResultsReady {
		t.Errorf("calls = %d, state = %v", s.calls, m.orch.State())
	}
}

func TestSampleAndClear(t *testing.T) {
	m := scanned(t, &fakeScanner{})
	m, _ = press(t, m, "3")
	if m.acq.Artifact().Filename != "sample.java" {
		t.Errorf("artifact = %+v", m.acq.Artifact())
	}
	if m.orch.State() != orchestrator.Idle {
		t.Error("loading input should discard results")
	}
	m, _ = press(t, m, "c")
	if !m.acq.Artifact().Empty() || m.editor.Value() != "" {
		t.Error("clear left code behind")
	}
}

func TestHealth(t *testing.T) {
	m := newTestModel(t, &fakeScanner{})
	if m.mon.Status() != types.HealthUnknown {
		t.Fatalf("initial status = %v", m.mon.Status())
	}
	m = update(t, m, healthMsg(health.Probe(context.Background(), fakeChecker{})))
	if m.mon.Status() != types.HealthConnected {
		t.Fatalf("status = %v", m.mon.Status())
	}

	m.checker = fakeChecker{err: errors.New("dial tcp: refused")}
	m, cmd := press(t, m, "h")
	if cmd == nil {
		t.Fatal("expected probe command")
	}
	m = update(t, m, cmd())
	if m.mon.Status() != types.HealthDisconnected {
		t.Errorf("status = %v", m.mon.Status())
	}
}

func TestCopyFinding(t *testing.T) {
	var got string
	orig := writeClipboard
	writeClipboard = func(s string) error { got = s; return nil }
	defer func() { writeClipboard = orig }()

	m := scanned(t, &fakeScanner{})
	m, cmd := press(t, m, "y")
	if cmd == nil {
		t.Fatal("expected copy command")
	}
	m = update(t, m, cmd())
	if !strings.Contains(got, "CRITICAL Code Injection (line 1)") || !strings.Contains(got, "Suggestion: Avoid eval()") {
		t.Errorf("clipboard = %q", got)
	}
	if m.statusMessage != "Copied finding to clipboard" {
		t.Errorf("status = %q", m.statusMessage)
	}
}

func TestCycleLanguageWraps(t *testing.T) {
	m := newTestModel(t, &fakeScanner{})
	for range input.Languages {
		m, _ = press(t, m, "l")
	}
	if got := m.acq.Artifact().Language; got != input.Languages[len(input.Languages)-1] {
		t.Fatalf("language = %q", got)
	}
	m, _ = press(t, m, "l")
	if got := m.acq.Artifact().Language; got != "" {
		t.Errorf("language after wrap = %q", got)
	}
}
