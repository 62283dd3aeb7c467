package core_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/codeguardian/codeguardian/pkg/core"
)

// ExampleScan submits one snippet and prints the findings.
func ExampleScan() {
	// Stand-in for the scanning service.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"results":[{"severity":"CRITICAL","type":"Code Injection","line":1,"message":"Use of eval() is dangerous"}],
			"summary":{"totalIssues":1,"criticalIssues":1,"highIssues":0,"mediumIssues":0,"lowIssues":0,"scanTime":0}}`))
	}))
	defer srv.Close()

	c := core.NewClient(srv.URL, 0)
	out, err := core.Scan(context.Background(), c, core.Artifact{Code: "eval(x)", Language: "javascript"})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	fmt.Printf("Found %d issue(s)\n", out.Summary.TotalIssues)
	_ = core.MarshalFindings(os.Stdout, out.Findings)
	// Output:
	// Found 1 issue(s)
	// [
	//   {
	//     "severity": "CRITICAL",
	//     "type": "Code Injection",
	//     "line": 1,
	//     "message": "Use of eval() is dangerous"
	//   }
	// ]
}

// ExampleFilter narrows findings without reordering them.
func ExampleFilter() {
	fs := []core.Finding{
		{Severity: core.SevHigh, Type: "SQL Injection", Line: 4},
		{Severity: core.SevLow, Type: "Weak Randomness", Line: 9},
		{Severity: core.SevHigh, Type: "Hardcoded Secret", Line: 12},
	}
	for _, f := range core.Filter(fs, core.FilterState{Severity: core.SevHigh}) {
		fmt.Println(f.Line, f.Type)
	}
	// Output:
	// 4 SQL Injection
	// 12 Hardcoded Secret
}
