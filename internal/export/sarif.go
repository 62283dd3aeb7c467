package export

import (
	"bytes"
	"encoding/json"

	"github.com/codeguardian/codeguardian/internal/filter"
	"github.com/codeguardian/codeguardian/internal/types"
)

const sarifSchema = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"

type sarifDoc struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool       sarifTool         `json:"tool"`
	Results    []sarifResult     `json:"results"`
	Properties map[string]string `json:"properties,omitempty"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifResult struct {
	RuleID    string            `json:"ruleId"`
	RuleIndex int               `json:"ruleIndex"`
	Level     string            `json:"level"`
	Message   sarifMessage      `json:"message"`
	Locations []sarifLoc        `json:"locations"`
	Props     map[string]string `json:"properties,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLoc struct {
	PhysicalLocation sarifPhys `json:"physicalLocation"`
}

type sarifPhys struct {
	ArtifactLocation sarifArt    `json:"artifactLocation"`
	Region           sarifRegion `json:"region"`
}

type sarifArt struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int           `json:"startLine"`
	Snippet   *sarifMessage `json:"snippet,omitempty"`
}

func sevToLevel(s types.Severity) string {
	switch s {
	case types.SevCritical, types.SevHigh:
		return "error"
	case types.SevMedium:
		return "warning"
	default:
		return "note"
	}
}

// SARIF encodes findings as a SARIF 2.1.0 log with one rule per finding type.
func SARIF(findings []types.Finding, meta Meta) ([]byte, error) {
	if len(findings) == 0 {
		return nil, ErrNoData
	}
	uri := meta.Filename
	if uri == "" {
		uri = "input"
	}

	ruleIDs := filter.DistinctTypes(findings)
	index := make(map[string]int, len(ruleIDs))
	rules := make([]sarifRule, len(ruleIDs))
	for i, id := range ruleIDs {
		index[id] = i
		rules[i] = sarifRule{ID: id, ShortDescription: sarifMessage{Text: id}}
	}

	results := make([]sarifResult, 0, len(findings))
	for _, f := range findings {
		region := sarifRegion{StartLine: f.Line}
		if f.CodeSnippet != "" {
			region.Snippet = &sarifMessage{Text: f.CodeSnippet}
		}
		r := sarifResult{
			RuleID:    f.Type,
			RuleIndex: index[f.Type],
			Level:     sevToLevel(f.Severity),
			Message:   sarifMessage{Text: f.Message},
			Locations: []sarifLoc{{PhysicalLocation: sarifPhys{
				ArtifactLocation: sarifArt{URI: uri},
				Region:           region,
			}}},
			Props: map[string]string{"severity": string(f.Severity)},
		}
		if f.Suggestion != "" {
			r.Props["suggestion"] = f.Suggestion
		}
		results = append(results, r)
	}

	doc := sarifDoc{
		Schema:  sarifSchema,
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool:    sarifTool{Driver: sarifDriver{Name: "codeguardian", Version: meta.ToolVersion, Rules: rules}},
			Results: results,
		}},
	}
	if meta.Fingerprint != "" {
		doc.Runs[0].Properties = map[string]string{"fingerprint": meta.Fingerprint}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
