package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/codeguardian/codeguardian/internal/filter"
	"github.com/codeguardian/codeguardian/internal/types"
)

type PrintOptions struct {
	NoColor  bool
	Total    int // size of the unfiltered set; 0 means the same as shown
	Summary  *types.Summary
	Filename string
	Duration time.Duration
}

// PrintTable renders findings as a bordered table followed by the footer.
func PrintTable(w io.Writer, findings []types.Finding, opts PrintOptions) error {
	if len(findings) == 0 {
		fmt.Fprintln(w, noFindings(opts))
	} else {
		table := tablewriter.NewWriter(w)
		table.Header("Severity", "Line", "Type", "Message")
		for _, f := range findings {
			sev := string(f.Severity)
			if !opts.NoColor {
				sev = colorSeverity(f.Severity)
			}
			if err := table.Append([]string{sev, strconv.Itoa(f.Line), f.Type, f.Message}); err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
	}
	printFooter(w, findings, opts)
	return nil
}

// PrintText renders one finding per line, with snippet and suggestion
// indented below it.
func PrintText(w io.Writer, findings []types.Finding, opts PrintOptions) {
	if len(findings) == 0 {
		fmt.Fprintln(w, noFindings(opts))
	} else {
		maxType := 8
		for _, f := range findings {
			if l := len(f.Type); l > maxType {
				maxType = l
			}
		}
		fmt.Fprintf(w, "Findings: %d\n", len(findings))
		for _, f := range findings {
			sev := fmt.Sprintf("%-8s", f.Severity)
			if !opts.NoColor {
				sev = colorSeverity(f.Severity) + strings.Repeat(" ", 8-len(f.Severity))
			}
			fmt.Fprintf(w, "%s %-*s line %-4d %s\n", sev, maxType, f.Type, f.Line, f.Message)
			if f.CodeSnippet != "" {
				fmt.Fprintf(w, "    > %s\n", strings.TrimSpace(f.CodeSnippet))
			}
			if f.Suggestion != "" {
				fmt.Fprintf(w, "    fix: %s\n", f.Suggestion)
			}
		}
	}
	printFooter(w, findings, opts)
}

func noFindings(opts PrintOptions) string {
	if opts.Total > 0 {
		return "No issues match the current filters"
	}
	return "No security issues found ✅"
}

func printFooter(w io.Writer, findings []types.Finding, opts PrintOptions) {
	total := opts.Total
	if total == 0 {
		total = len(findings)
	}
	fmt.Fprintln(w)
	if opts.Filename != "" {
		fmt.Fprintf(w, "File: %s\n", opts.Filename)
	}
	fmt.Fprintf(w, "Showing %d of %d issues\n", len(findings), total)
	if opts.Summary != nil {
		s := opts.Summary
		fmt.Fprintf(w, "Critical: %d  High: %d  Medium: %d  Low: %d\n",
			s.CriticalIssues, s.HighIssues, s.MediumIssues, s.LowIssues)
		if !s.ScanTime.IsZero() {
			fmt.Fprintf(w, "Scanned at: %s\n", s.ScanTime.Local().Format(time.DateTime))
		}
	} else {
		c := filter.CountBySeverity(findings)
		fmt.Fprintf(w, "Critical: %d  High: %d  Medium: %d  Low: %d\n",
			c[types.SevCritical], c[types.SevHigh], c[types.SevMedium], c[types.SevLow])
	}
	if opts.Duration > 0 {
		fmt.Fprintf(w, "Scan duration: %.2fs\n", opts.Duration.Seconds())
	}
}

func colorSeverity(s types.Severity) string {
	switch s {
	case types.SevCritical:
		return "\x1b[1;35m" + string(s) + "\x1b[0m" // bold magenta
	case types.SevHigh:
		return "\x1b[31m" + string(s) + "\x1b[0m" // red
	case types.SevMedium:
		return "\x1b[33m" + string(s) + "\x1b[0m" // yellow
	default:
		return "\x1b[36m" + string(s) + "\x1b[0m" // cyan
	}
}
