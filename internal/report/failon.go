package report

import (
	"fmt"
	"strings"

	"github.com/codeguardian/codeguardian/internal/types"
)

// ParseFailOn maps a --fail-on value (low, medium, high, critical) to a
// severity threshold. The empty string disables the gate.
func ParseFailOn(s string) (types.Severity, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return "", nil
	}
	sev := types.Severity(strings.ToUpper(s))
	if !sev.Valid() {
		return "", fmt.Errorf("invalid fail-on %q (want low, medium, high or critical)", s)
	}
	return sev, nil
}

// ShouldFail reports whether any finding is at or above threshold. An
// empty threshold never fails.
func ShouldFail(findings []types.Finding, threshold types.Severity) bool {
	if !threshold.Valid() {
		return false
	}
	for _, f := range findings {
		if f.Severity.Rank() >= threshold.Rank() {
			return true
		}
	}
	return false
}
