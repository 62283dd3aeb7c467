// Package filter derives filtered and faceted views of scan findings.
// Every function here is pure: inputs are never mutated and no state is
// kept between calls.
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/codeguardian/codeguardian/internal/types"
)

// All is the wildcard value for both filter dimensions.
const All = ""

// State selects which findings are visible. The zero value shows everything.
type State struct {
	Severity types.Severity // All or one of types.Severities
	Type     string         // All or a case-insensitive substring of Finding.Type
}

// IsAll reports whether the state is the identity filter.
func (s State) IsAll() bool {
	return s.Severity == All && s.Type == All
}

func (s State) String() string {
	sev, typ := "all", "all"
	if s.Severity != All {
		sev = string(s.Severity)
	}
	if s.Type != All {
		typ = s.Type
	}
	return fmt.Sprintf("severity=%s type=%s", sev, typ)
}

// Matches reports whether a single finding passes the filter.
func (s State) Matches(f types.Finding) bool {
	if s.Severity != All && f.Severity != s.Severity {
		return false
	}
	if s.Type != All && !strings.Contains(strings.ToLower(f.Type), strings.ToLower(s.Type)) {
		return false
	}
	return true
}

// Apply returns the findings that pass state, in their original order.
func Apply(findings []types.Finding, state State) []types.Finding {
	out := make([]types.Finding, 0, len(findings))
	for _, f := range findings {
		if state.Matches(f) {
			out = append(out, f)
		}
	}
	return out
}

// Indices is like Apply but returns positions into findings.
func Indices(findings []types.Finding, state State) []int {
	out := make([]int, 0, len(findings))
	for i, f := range findings {
		if state.Matches(f) {
			out = append(out, i)
		}
	}
	return out
}

// DistinctTypes returns each finding type once, in first-seen order.
func DistinctTypes(findings []types.Finding) []string {
	seen := make(map[string]bool, len(findings))
	var out []string
	for _, f := range findings {
		if seen[f.Type] {
			continue
		}
		seen[f.Type] = true
		out = append(out, f.Type)
	}
	return out
}

// CountBySeverity buckets findings by severity. Unknown severities are ignored.
func CountBySeverity(findings []types.Finding) map[types.Severity]int {
	counts := make(map[types.Severity]int, len(types.Severities))
	for _, f := range findings {
		if f.Severity.Valid() {
			counts[f.Severity]++
		}
	}
	return counts
}

// Summarize derives the summary a well-behaved server would report for findings.
func Summarize(findings []types.Finding, at time.Time) types.Summary {
	c := CountBySeverity(findings)
	return types.Summary{
		TotalIssues:    len(findings),
		CriticalIssues: c[types.SevCritical],
		HighIssues:     c[types.SevHigh],
		MediumIssues:   c[types.SevMedium],
		LowIssues:      c[types.SevLow],
		ScanTime:       types.Timestamp{Time: at},
	}
}

// Consistent reports whether summary's counts match findings.
func Consistent(findings []types.Finding, summary types.Summary) bool {
	want := Summarize(findings, summary.ScanTime.Time)
	return want.TotalIssues == summary.TotalIssues &&
		want.CriticalIssues == summary.CriticalIssues &&
		want.HighIssues == summary.HighIssues &&
		want.MediumIssues == summary.MediumIssues &&
		want.LowIssues == summary.LowIssues
}

// ParseSeverity maps user input to a filter severity. "all" and "" map to All.
func ParseSeverity(s string) (types.Severity, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return All, nil
	}
	sev := types.Severity(strings.ToUpper(s))
	if !sev.Valid() {
		return All, fmt.Errorf("unknown severity %q (want critical|high|medium|low|all)", s)
	}
	return sev, nil
}

// NextSeverity cycles All -> CRITICAL -> HIGH -> MEDIUM -> LOW -> All.
func NextSeverity(cur types.Severity) types.Severity {
	if cur == All {
		return types.Severities[0]
	}
	for i, s := range types.Severities {
		if s == cur && i+1 < len(types.Severities) {
			return types.Severities[i+1]
		}
	}
	return All
}

// NextType cycles through All followed by the distinct types of findings.
func NextType(cur string, findings []types.Finding) string {
	choices := DistinctTypes(findings)
	if cur == All {
		if len(choices) == 0 {
			return All
		}
		return choices[0]
	}
	for i, t := range choices {
		if t == cur && i+1 < len(choices) {
			return choices[i+1]
		}
	}
	return All
}
