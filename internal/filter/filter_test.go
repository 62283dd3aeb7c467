package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeguardian/codeguardian/internal/types"
)

func sampleFindings() []types.Finding {
	return []types.Finding{
		{Severity: types.SevHigh, Type: "UnsafeEval", Line: 1, Message: "eval() usage detected"},
		{Severity: types.SevCritical, Type: "API_KEY", Line: 2, Message: "hardcoded api key"},
		{Severity: types.SevLow, Type: "HARDCODED_URL", Line: 9, Message: "hardcoded url"},
		{Severity: types.SevHigh, Type: "api_key", Line: 4, Message: "lowercase type"},
		{Severity: types.SevMedium, Type: "WEAK_RANDOM", Line: 12, Message: "Math.random"},
		{Severity: types.SevCritical, Type: "API_KEY", Line: 20, Message: "second key"},
	}
}

// isSubsequence reports whether sub appears in full in order, each element
// consumed at most once.
func isSubsequence(sub, full []types.Finding) bool {
	j := 0
	for i := 0; i < len(full) && j < len(sub); i++ {
		if full[i] == sub[j] {
			j++
		}
	}
	return j == len(sub)
}

func TestApply_IdentityLaw(t *testing.T) {
	fs := sampleFindings()
	assert.Equal(t, fs, Apply(fs, State{}))
}

func TestApply_IsOrderedSubsequenceForEveryState(t *testing.T) {
	fs := sampleFindings()
	severities := append([]types.Severity{All}, types.Severities...)
	typeFilters := []string{All, "api", "API_KEY", "url", "nothing-matches", "E"}

	for _, sev := range severities {
		for _, typ := range typeFilters {
			st := State{Severity: sev, Type: typ}
			got := Apply(fs, st)
			assert.Truef(t, isSubsequence(got, fs), "not a subsequence for %s", st)
			for _, f := range got {
				assert.Truef(t, st.Matches(f), "%+v should not pass %s", f, st)
			}
			assert.Lenf(t, got, len(Indices(fs, st)), "Apply and Indices disagree for %s", st)
		}
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	fs := sampleFindings()
	before := append([]types.Finding(nil), fs...)
	_ = Apply(fs, State{Severity: types.SevHigh, Type: "eval"})
	assert.Equal(t, before, fs)
}

func TestApply_TypeIsCaseInsensitiveContains(t *testing.T) {
	fs := sampleFindings()
	got := Apply(fs, State{Type: "Api_K"})
	require.Len(t, got, 3)
	assert.Equal(t, 2, got[0].Line)
	assert.Equal(t, 4, got[1].Line)
	assert.Equal(t, 20, got[2].Line)
}

func TestApply_Combined(t *testing.T) {
	got := Apply(sampleFindings(), State{Severity: types.SevCritical, Type: "api"})
	require.Len(t, got, 2)
	for _, f := range got {
		assert.Equal(t, types.SevCritical, f.Severity)
	}
}

func TestApply_SingleFindingExample(t *testing.T) {
	fs := []types.Finding{{Severity: types.SevHigh, Type: "UnsafeEval", Line: 1, Message: "eval() usage detected"}}
	assert.Equal(t, fs, Apply(fs, State{Severity: All, Type: All}))
}

func TestDistinctTypes(t *testing.T) {
	got := DistinctTypes(sampleFindings())
	assert.Equal(t, []string{"UnsafeEval", "API_KEY", "HARDCODED_URL", "api_key", "WEAK_RANDOM"}, got)

	seen := map[string]bool{}
	for _, typ := range got {
		assert.False(t, seen[typ], "duplicate %q", typ)
		seen[typ] = true
	}
	assert.Empty(t, DistinctTypes(nil))
}

func TestSummarizeAndConsistent(t *testing.T) {
	fs := sampleFindings()
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	s := Summarize(fs, at)
	assert.Equal(t, 6, s.TotalIssues)
	assert.Equal(t, 2, s.CriticalIssues)
	assert.Equal(t, 2, s.HighIssues)
	assert.Equal(t, 1, s.MediumIssues)
	assert.Equal(t, 1, s.LowIssues)
	assert.True(t, Consistent(fs, s))

	s.HighIssues = 3
	assert.False(t, Consistent(fs, s))
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in      string
		want    types.Severity
		wantErr bool
	}{
		{in: "", want: All},
		{in: "all", want: All},
		{in: "ALL", want: All},
		{in: "high", want: types.SevHigh},
		{in: "Critical", want: types.SevCritical},
		{in: "severe", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSeverity(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextSeverityCycles(t *testing.T) {
	cur := types.Severity(All)
	var seen []types.Severity
	for i := 0; i < 5; i++ {
		cur = NextSeverity(cur)
		seen = append(seen, cur)
	}
	assert.Equal(t, []types.Severity{types.SevCritical, types.SevHigh, types.SevMedium, types.SevLow, All}, seen)
}

func TestNextTypeCycles(t *testing.T) {
	fs := sampleFindings()[:3]
	cur := NextType(All, fs)
	assert.Equal(t, "UnsafeEval", cur)
	cur = NextType(cur, fs)
	assert.Equal(t, "API_KEY", cur)
	cur = NextType(cur, fs)
	assert.Equal(t, "HARDCODED_URL", cur)
	assert.Equal(t, All, NextType(cur, fs))
	assert.Equal(t, All, NextType(All, nil))
}
