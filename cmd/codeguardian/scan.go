package codeguardian

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/codeguardian/codeguardian/internal/export"
	"github.com/codeguardian/codeguardian/internal/filter"
	"github.com/codeguardian/codeguardian/internal/input"
	"github.com/codeguardian/codeguardian/internal/orchestrator"
	"github.com/codeguardian/codeguardian/internal/report"
	"github.com/codeguardian/codeguardian/internal/types"
)

var (
	scanInput    inputFlags
	flagSeverity string
	flagType     string
	flagExport   string
	flagFormat   string
	flagJSON     bool
	flagText     bool
	flagFailOn   string
)

func init() {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan code for security issues",
		Example: `  codeguardian scan --file app.js
  codeguardian scan --file 'src/**/*.py' --severity high
  cat main.go | codeguardian scan --stdin --language go --json
  codeguardian scan --sample javascript --export results.sarif`,
		RunE: runScan,
	}
	rootCmd.AddCommand(cmd)

	scanInput.bind(cmd)
	cmd.Flags().StringVar(&flagSeverity, "severity", "", "only show this severity (critical|high|medium|low|all)")
	cmd.Flags().StringVar(&flagType, "type", "", "only show findings whose type contains this text")
	cmd.Flags().StringVar(&flagExport, "export", "", "write all findings to this file or directory")
	cmd.Flags().StringVar(&flagFormat, "format", "", "export format: json|csv|sarif (default from --export extension)")
	cmd.Flags().BoolVar(&flagJSON, "json", false, "emit the shown findings as JSON")
	cmd.Flags().BoolVar(&flagText, "text", false, "output in plain text columnar format")
	cmd.Flags().StringVar(&flagFailOn, "fail-on", "", "exit 1 if any finding is at or above low|medium|high|critical")
}

// fileResult is one entry of batch JSON output.
type fileResult struct {
	File     string          `json:"file"`
	Findings []types.Finding `json:"findings"`
	Error    string          `json:"error,omitempty"`
}

func runScan(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	sev, err := filter.ParseSeverity(flagSeverity)
	if err != nil {
		return err
	}
	state := filter.State{Severity: sev, Type: strings.TrimSpace(flagType)}

	threshold, err := report.ParseFailOn(pickString(flagFailOn, local.FailOn, global.FailOn))
	if err != nil {
		return err
	}

	sources, err := scanInput.load(ctx)
	if err != nil {
		return err
	}
	if flagExport != "" && len(sources) > 1 {
		return errors.New("--export needs a single input; drop the glob or scan files one at a time")
	}
	format, err := exportFormat()
	if err != nil {
		return err
	}

	notice := startUpdateCheck(ctx, os.Stderr, !flagJSON && isTerminal(os.Stderr))

	c := newClient()
	orch := orchestrator.New()
	orch.OnTransition(func(tr orchestrator.Transition) {
		if tr.From == orchestrator.Scanning {
			log.Info().Uint64("seq", tr.Seq).Stringer("state", tr.To).Msg("scan finished")
		}
	})

	var (
		failed  bool
		errs    []error
		batch   []fileResult
		started = time.Now()
	)
	for _, src := range sources {
		log.Info().Str("file", src.label).Str("fingerprint", input.Fingerprint(src.artifact.Code)).Msg("scanning")
		begin := time.Now()
		out, err := orch.Scan(ctx, c, src.artifact)
		if err != nil {
			if len(sources) == 1 {
				return err
			}
			errs = append(errs, fmt.Errorf("%s: %w", src.label, err))
			batch = append(batch, fileResult{File: src.label, Findings: []types.Finding{}, Error: err.Error()})
			if !flagJSON {
				fmt.Fprintf(os.Stderr, "%s: %v\n", src.label, err)
			}
			continue
		}
		shown := filter.Apply(out.Findings, state)
		if report.ShouldFail(out.Findings, threshold) {
			failed = true
		}

		switch {
		case flagJSON:
			batch = append(batch, fileResult{File: src.label, Findings: shown})
		case flagText:
			report.PrintText(os.Stdout, shown, printOptions(src, out, time.Since(begin)))
		default:
			if err := report.PrintTable(os.Stdout, shown, printOptions(src, out, time.Since(begin))); err != nil {
				return fmt.Errorf("render: %w", err)
			}
		}
		if len(sources) > 1 && !flagJSON {
			fmt.Fprintln(os.Stdout)
		}

		if flagExport != "" {
			path, err := export.Write(exportPath(flagExport), format, out.Findings, export.Meta{Filename: src.artifact.Filename, ToolVersion: version, Fingerprint: input.Fingerprint(src.artifact.Code)})
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Exported %d findings to %s\n", len(out.Findings), path)
		}
	}

	if flagJSON {
		var err error
		if len(sources) == 1 {
			err = writeFindingsJSON(os.Stdout, batch[0].Findings)
		} else {
			err = writeBatchJSON(os.Stdout, batch)
		}
		if err != nil {
			return err
		}
	}
	log.Debug().Int("inputs", len(sources)).Dur("elapsed", time.Since(started)).Msg("scan command done")
	notice()

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	if failed {
		os.Exit(1)
	}
	return nil
}

func printOptions(src source, out orchestrator.Outcome, d time.Duration) report.PrintOptions {
	summary := out.Summary
	return report.PrintOptions{
		NoColor:  cfg.noColor,
		Total:    len(out.Findings),
		Summary:  &summary,
		Filename: src.label,
		Duration: d,
	}
}

// exportFormat resolves --format, then the configured format, then the
// --export extension.
func exportFormat() (export.Format, error) {
	if flagFormat != "" {
		return export.ParseFormat(flagFormat)
	}
	if cfg.exportFormat != "" && !strings.Contains(filepath.Base(flagExport), ".") {
		return export.ParseFormat(cfg.exportFormat)
	}
	return export.FormatFromPath(flagExport), nil
}

// exportPath places bare file names under the configured export_dir.
func exportPath(p string) string {
	if cfg.exportDir != "" && !filepath.IsAbs(p) && filepath.Dir(p) == "." {
		return filepath.Join(cfg.exportDir, p)
	}
	return p
}

// writeFindingsJSON writes the wire-schema array; an empty set is "[]".
func writeFindingsJSON(w io.Writer, findings []types.Finding) error {
	b, err := export.JSON(findings)
	if errors.Is(err, export.ErrNoData) {
		b, err = []byte("[]"), nil
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", b)
	return err
}

func writeBatchJSON(w io.Writer, results []fileResult) error {
	for i := range results {
		if results[i].Findings == nil {
			results[i].Findings = []types.Finding{}
		}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
