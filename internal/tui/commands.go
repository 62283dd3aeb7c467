package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/codeguardian/codeguardian/internal/export"
	"github.com/codeguardian/codeguardian/internal/health"
	"github.com/codeguardian/codeguardian/internal/input"
	"github.com/codeguardian/codeguardian/internal/orchestrator"
	"github.com/codeguardian/codeguardian/internal/types"
)

// Messages produced by background commands. Each carries everything needed
// to apply it in Update; none of them touch the model directly.
type (
	healthMsg health.Result
	scanMsg   orchestrator.Response
	fileMsg   input.FileLoaded
	exportMsg struct {
		path string
		err  error
	}
	statusMsg string
)

var writeClipboard = clipboard.WriteAll

func probeCmd(ctx context.Context, c health.Checker) tea.Cmd {
	return func() tea.Msg {
		return healthMsg(health.Probe(ctx, c))
	}
}

func scanCmd(ctx context.Context, s orchestrator.Scanner, task orchestrator.Task) tea.Cmd {
	return func() tea.Msg {
		return scanMsg(task.Run(ctx, s))
	}
}

func readFileCmd(ctx context.Context, b input.Blob) tea.Cmd {
	return func() tea.Msg {
		return fileMsg(input.ReadBlob(ctx, b))
	}
}

// exportCmd encodes a copy of findings so later state changes cannot race
// with the write.
func exportCmd(dir string, f export.Format, findings []types.Finding, meta export.Meta) tea.Cmd {
	snapshot := append([]types.Finding(nil), findings...)
	return func() tea.Msg {
		path, err := export.Write(filepath.Join(dir, export.Filename(f)), f, snapshot, meta)
		return exportMsg{path: path, err: err}
	}
}

func copyFindingCmd(f types.Finding) tea.Cmd {
	return func() tea.Msg {
		if err := writeClipboard(findingText(f)); err != nil {
			return statusMsg(fmt.Sprintf("Copy failed: %v", err))
		}
		return statusMsg("Copied finding to clipboard")
	}
}

func findingText(f types.Finding) string {
	s := string(f.Severity) + " " + f.Type + " (line " + strconv.Itoa(f.Line) + "): " + f.Message
	if f.CodeSnippet != "" {
		s += "\n\n" + f.CodeSnippet
	}
	if f.Suggestion != "" {
		s += "\n\nSuggestion: " + f.Suggestion
	}
	return s
}
