package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Severity is the ordinal risk level the scanning service assigns to a finding.
type Severity string

const (
	SevCritical Severity = "CRITICAL"
	SevHigh     Severity = "HIGH"
	SevMedium   Severity = "MEDIUM"
	SevLow      Severity = "LOW"
)

// Severities lists every severity from most to least severe.
var Severities = []Severity{SevCritical, SevHigh, SevMedium, SevLow}

// Rank orders severities; higher is worse. Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SevCritical:
		return 4
	case SevHigh:
		return 3
	case SevMedium:
		return 2
	case SevLow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether s is one of the four wire severities.
func (s Severity) Valid() bool { return s.Rank() > 0 }

// Finding is one issue reported by the scanning service.
type Finding struct {
	Severity    Severity `json:"severity"`
	Type        string   `json:"type"`
	Line        int      `json:"line"`
	Message     string   `json:"message"`
	CodeSnippet string   `json:"codeSnippet,omitempty"`
	Suggestion  string   `json:"suggestion,omitempty"`
}

// Summary aggregates severity counts for a finding set.
type Summary struct {
	TotalIssues    int       `json:"totalIssues"`
	CriticalIssues int       `json:"criticalIssues"`
	HighIssues     int       `json:"highIssues"`
	MediumIssues   int       `json:"mediumIssues"`
	LowIssues      int       `json:"lowIssues"`
	ScanTime       Timestamp `json:"scanTime"`
}

// Timestamp decodes either epoch milliseconds or an RFC 3339 string and
// always encodes as RFC 3339.
type Timestamp struct {
	time.Time
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == "" {
		t.Time = time.Time{}
		return nil
	}
	if s[0] == '"' {
		var raw string
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		parsed, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return fmt.Errorf("scanTime: %w", err)
		}
		t.Time = parsed
		return nil
	}
	var ms int64
	if err := json.Unmarshal(b, &ms); err != nil {
		return fmt.Errorf("scanTime: %w", err)
	}
	t.Time = time.UnixMilli(ms)
	return nil
}

// Language is the declared language of an artifact; the empty value means unset.
type Language string

// Artifact is the code under scan plus its declared metadata. It is always
// replaced as a whole, never edited in place.
type Artifact struct {
	Code     string   `json:"code"`
	Language Language `json:"language,omitempty"`
	Filename string   `json:"filename,omitempty"`
}

// Empty reports whether the artifact carries no scannable code.
func (a Artifact) Empty() bool {
	return strings.TrimSpace(a.Code) == ""
}

// ScanRequest is the wire body sent to the scan and validate endpoints.
// Unset language and filename are sent as JSON null.
type ScanRequest struct {
	Code     string  `json:"code"`
	Language *string `json:"language"`
	Filename *string `json:"filename"`
}

// NewScanRequest builds the wire request for an artifact.
func NewScanRequest(a Artifact) ScanRequest {
	req := ScanRequest{Code: a.Code}
	if a.Language != "" {
		lang := string(a.Language)
		req.Language = &lang
	}
	if a.Filename != "" {
		name := a.Filename
		req.Filename = &name
	}
	return req
}

// HealthStatus is the liveness of the remote service as last observed.
type HealthStatus int

const (
	HealthUnknown HealthStatus = iota
	HealthConnected
	HealthDisconnected
)

func (h HealthStatus) String() string {
	switch h {
	case HealthConnected:
		return "connected"
	case HealthDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}
