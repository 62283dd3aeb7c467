package codeguardian

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/codeguardian/codeguardian/internal/filter"
	"github.com/codeguardian/codeguardian/internal/input"
	"github.com/codeguardian/codeguardian/internal/logging"
	"github.com/codeguardian/codeguardian/internal/tui"
	"github.com/codeguardian/codeguardian/internal/types"
)

var (
	tuiSample   string
	tuiLanguage string
	tuiSeverity string
	tuiLogFile  string
)

func init() {
	cmd := &cobra.Command{
		Use:   "tui [file]",
		Short: "Open the interactive scanner",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTUI,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVar(&tuiSample, "sample", "", "start with a built-in sample (javascript|python|java)")
	cmd.Flags().StringVar(&tuiLanguage, "language", "", "initial language hint")
	cmd.Flags().StringVar(&tuiSeverity, "severity", "", "initial severity filter")
	cmd.Flags().StringVar(&tuiLogFile, "log-file", "", "append logs to this file while the TUI runs")
}

func runTUI(cmd *cobra.Command, args []string) error {
	if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		return errors.New("tui needs an interactive terminal; use 'codeguardian scan' instead")
	}
	ctx := cmd.Context()

	// the alternate screen owns stderr
	var logOut io.Writer = io.Discard
	if tuiLogFile != "" {
		f, err := logging.OpenFile(tuiLogFile)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	if _, err := logging.Setup(logging.Options{Level: cfg.logLevel, JSON: flagLogJSON, NoColor: true, Out: logOut}); err != nil {
		return err
	}

	acq := input.NewAcquirer()
	switch {
	case len(args) == 1:
		blob, err := input.FileBlob(args[0])
		if err != nil {
			return err
		}
		if err := acq.AcceptFile(ctx, blob); err != nil {
			return err
		}
	case tuiSample != "":
		if err := acq.LoadSample(tuiSample); err != nil {
			return err
		}
	}
	lang := tuiLanguage
	if lang == "" && acq.Artifact().Language == "" {
		lang = cfg.language
	}
	if lang != "" {
		if err := acq.SetLanguage(types.Language(lang)); err != nil {
			return err
		}
	}

	sev, err := filter.ParseSeverity(tuiSeverity)
	if err != nil {
		return err
	}

	c := newClient()
	exportDir := cfg.exportDir
	if exportDir == "" {
		exportDir = "."
	}
	log.Info().Str("api_url", c.BaseURL()).Msg("starting tui")
	return tui.Run(tui.Options{
		Context:   ctx,
		Scanner:   c,
		Health:    c,
		Initial:   acq.Artifact(),
		Filter:    filter.State{Severity: sev},
		ExportDir: exportDir,
		Version:   version,
	})
}
