// Package core provides a small, stable facade over Code Guardian's
// internal packages for programs that want to submit code for scanning
// without the CLI.
//
// Example:
//
//	c := core.NewClient("http://localhost:8085/api")
//	out, err := core.Scan(ctx, c, core.Artifact{Code: src, Language: "python"})
//	if err != nil { /* handle */ }
//	_ = core.MarshalFindings(os.Stdout, out.Findings)
package core
