package codeguardian

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/codeguardian/codeguardian/internal/config"
)

var (
	cfgOutput string
	cfgGlobal bool
	cfgForce  bool
)

func init() {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration file",
		Args:  cobra.NoArgs,
		RunE:  runConfigInit,
	}
	initCmd.Flags().StringVarP(&cfgOutput, "output", "o", config.LocalNames[0], "file to write")
	initCmd.Flags().BoolVar(&cfgGlobal, "global", false, "write the user-wide config instead")
	initCmd.Flags().BoolVar(&cfgForce, "force", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	}

	configCmd.AddCommand(initCmd, showCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	out := cfgOutput
	if cfgGlobal {
		p, err := config.GlobalPath()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return err
		}
		out = p
	}
	if _, err := os.Stat(out); err == nil && !cfgForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", out)
	}
	if err := os.WriteFile(out, []byte(config.Template), 0o644); err != nil {
		return err
	}
	fmt.Println("Wrote", out)
	return nil
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	timeout := cfg.timeout.String()
	fc := config.FileConfig{
		APIURL:       strPtr(cfg.apiURL),
		Timeout:      &timeout,
		NoColor:      boolPtr(cfg.noColor),
		Language:     optStrPtr(cfg.language),
		FailOn:       optStrPtr(cfg.failOn),
		ExportFormat: optStrPtr(cfg.exportFormat),
		ExportDir:    optStrPtr(cfg.exportDir),
		LogLevel:     optStrPtr(cfg.logLevel),
	}
	b, err := yaml.Marshal(&fc)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(b)
	return err
}

func strPtr(s string) *string { return &s }
func optStrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
func boolPtr(v bool) *bool { return &v }

