// Package export serializes a finding set for download.
//
// Every encoder works on the full, unfiltered findings and never modifies
// them. An empty set is an error rather than an empty document.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/codeguardian/codeguardian/internal/types"
)

// ErrNoData is returned when there are no findings to export.
var ErrNoData = errors.New("no results to export")

// DefaultFilename is the name of a JSON export when none is given.
const DefaultFilename = "security-scan-results.json"

type Format string

const (
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatSARIF Format = "sarif"
)

// Formats lists supported formats in menu order.
var Formats = []Format{FormatJSON, FormatCSV, FormatSARIF}

// ParseFormat accepts a format name case-insensitively; "" means JSON.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatSARIF:
		return FormatSARIF, nil
	}
	return "", fmt.Errorf("unknown export format %q (want json, csv or sarif)", s)
}

// FormatFromPath infers the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".sarif":
		return FormatSARIF
	default:
		return FormatJSON
	}
}

// Filename returns the default file name for f.
func Filename(f Format) string {
	switch f {
	case FormatCSV:
		return "security-scan-results.csv"
	case FormatSARIF:
		return "security-scan-results.sarif"
	default:
		return DefaultFilename
	}
}

// Meta carries context that some formats record alongside the findings.
type Meta struct {
	Filename    string // source artifact name, used as the SARIF location
	ToolVersion string
	Fingerprint string // content hash of the scanned code
}

// JSON encodes findings as a two-space indented array in the wire schema.
func JSON(findings []types.Finding) ([]byte, error) {
	if len(findings) == 0 {
		return nil, ErrNoData
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(findings); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

var csvHeader = []string{"Severity", "Type", "Line", "Message", "Code Snippet", "Suggestion"}

// CSV encodes findings with one header row.
func CSV(findings []types.Finding) ([]byte, error) {
	if len(findings) == 0 {
		return nil, ErrNoData
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, f := range findings {
		row := []string{
			string(f.Severity),
			f.Type,
			strconv.Itoa(f.Line),
			f.Message,
			f.CodeSnippet,
			f.Suggestion,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// Encode dispatches on format.
func Encode(format Format, findings []types.Finding, meta Meta) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		return JSON(findings)
	case FormatCSV:
		return CSV(findings)
	case FormatSARIF:
		return SARIF(findings, meta)
	}
	return nil, fmt.Errorf("unknown export format %q", format)
}

// Write encodes findings and writes them to path. A directory path
// receives the format's default file name. It returns the written path.
func Write(path string, format Format, findings []types.Finding, meta Meta) (string, error) {
	data, err := Encode(format, findings, meta)
	if err != nil {
		return "", err
	}
	if path == "" {
		path = Filename(format)
	} else if st, err := os.Stat(path); err == nil && st.IsDir() {
		path = filepath.Join(path, Filename(format))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}
