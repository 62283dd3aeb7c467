package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeguardian/codeguardian/internal/types"
)

func sampleFindings() []types.Finding {
	return []types.Finding{
		{Severity: types.SevCritical, Type: "Code Injection", Line: 1, Message: "Use of eval() is dangerous", CodeSnippet: "eval(x)", Suggestion: "Avoid eval()"},
		{Severity: types.SevLow, Type: "Weak Randomness", Line: 4, Message: "Math.random() is not secure"},
		{Severity: types.SevHigh, Type: "Code Injection", Line: 9, Message: "a < b && c > d", CodeSnippet: "x = \"<b>\""},
	}
}

func TestNoData(t *testing.T) {
	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			_, err := Encode(f, nil, Meta{})
			assert.ErrorIs(t, err, ErrNoData)
			_, err = Encode(f, []types.Finding{}, Meta{})
			assert.ErrorIs(t, err, ErrNoData)
		})
	}
}

func TestJSON_WireSchema(t *testing.T) {
	in := sampleFindings()
	before := append([]types.Finding(nil), in...)

	b, err := JSON(in)
	require.NoError(t, err)
	assert.Equal(t, before, in)

	s := string(b)
	assert.True(t, strings.HasPrefix(s, "[\n  {\n    \"severity\": \"CRITICAL\""), s)
	assert.False(t, strings.HasSuffix(s, "\n"))
	assert.Contains(t, s, `"codeSnippet": "eval(x)"`)
	assert.Contains(t, s, `a < b && c > d`)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	require.Len(t, raw, 3)
	assert.NotContains(t, raw[1], "codeSnippet")
	assert.NotContains(t, raw[1], "suggestion")

	var back []types.Finding
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, in, back)
}

func TestCSV(t *testing.T) {
	b, err := CSV(sampleFindings())
	require.NoError(t, err)
	rows, err := csv.NewReader(strings.NewReader(string(b))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{"CRITICAL", "Code Injection", "1", "Use of eval() is dangerous", "eval(x)", "Avoid eval()"}, rows[1])
	assert.Equal(t, "x = \"<b>\"", rows[3][4])
}

func TestSARIF(t *testing.T) {
	b, err := SARIF(sampleFindings(), Meta{Filename: "app.js", ToolVersion: "1.2.3", Fingerprint: "00000000deadbeef"})
	require.NoError(t, err)

	var doc struct {
		Version string `json:"version"`
		Runs    []struct {
			Properties map[string]string `json:"properties"`
			Tool       struct {
				Driver struct {
					Name    string `json:"name"`
					Version string `json:"version"`
					Rules   []struct {
						ID string `json:"id"`
					} `json:"rules"`
				} `json:"driver"`
			} `json:"tool"`
			Results []struct {
				RuleID    string `json:"ruleId"`
				RuleIndex int    `json:"ruleIndex"`
				Level     string `json:"level"`
				Locations []struct {
					PhysicalLocation struct {
						ArtifactLocation struct {
							URI string `json:"uri"`
						} `json:"artifactLocation"`
						Region struct {
							StartLine int `json:"startLine"`
						} `json:"region"`
					} `json:"physicalLocation"`
				} `json:"locations"`
			} `json:"results"`
		} `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Equal(t, "2.1.0", doc.Version)
	require.Len(t, doc.Runs, 1)
	run := doc.Runs[0]
	assert.Equal(t, "codeguardian", run.Tool.Driver.Name)
	assert.Equal(t, "1.2.3", run.Tool.Driver.Version)
	assert.Equal(t, "00000000deadbeef", run.Properties["fingerprint"])
	require.Len(t, run.Tool.Driver.Rules, 2)
	assert.Equal(t, "Code Injection", run.Tool.Driver.Rules[0].ID)
	assert.Equal(t, "Weak Randomness", run.Tool.Driver.Rules[1].ID)

	require.Len(t, run.Results, 3)
	assert.Equal(t, "error", run.Results[0].Level)
	assert.Equal(t, "note", run.Results[1].Level)
	assert.Equal(t, 1, run.Results[1].RuleIndex)
	assert.Equal(t, 0, run.Results[2].RuleIndex)
	assert.Equal(t, "app.js", run.Results[0].Locations[0].PhysicalLocation.ArtifactLocation.URI)
	assert.Equal(t, 9, run.Results[2].Locations[0].PhysicalLocation.Region.StartLine)
}

func TestSARIF_NoFingerprint(t *testing.T) {
	b, err := SARIF(sampleFindings(), Meta{})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "fingerprint")
}

func TestSevToLevel(t *testing.T) {
	assert.Equal(t, "error", sevToLevel(types.SevCritical))
	assert.Equal(t, "error", sevToLevel(types.SevHigh))
	assert.Equal(t, "warning", sevToLevel(types.SevMedium))
	assert.Equal(t, "note", sevToLevel(types.SevLow))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		err  bool
	}{
		{"", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{" csv ", FormatCSV, false},
		{"Sarif", FormatSARIF, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.err {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
	assert.Equal(t, FormatCSV, FormatFromPath("out.CSV"))
	assert.Equal(t, FormatSARIF, FormatFromPath("x/y.sarif"))
	assert.Equal(t, FormatJSON, FormatFromPath("results"))
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()

	p, err := Write(dir, FormatJSON, sampleFindings(), Meta{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DefaultFilename), p)
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	want, err := JSON(sampleFindings())
	require.NoError(t, err)
	assert.Equal(t, want, data)

	p, err = Write(filepath.Join(dir, "out.csv"), FormatCSV, sampleFindings(), Meta{})
	require.NoError(t, err)
	assert.FileExists(t, p)

	_, err = Write(filepath.Join(dir, "empty.json"), FormatJSON, nil, Meta{})
	assert.ErrorIs(t, err, ErrNoData)
	assert.NoFileExists(t, filepath.Join(dir, "empty.json"))
}
