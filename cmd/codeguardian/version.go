package codeguardian

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var versionCheck bool

func init() {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Println("codeguardian", version)
			if !versionCheck {
				return nil
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			latest, newer, err := updateChecker.Check(ctx, version)
			if err != nil {
				return fmt.Errorf("update check: %w", err)
			}
			switch {
			case newer:
				fmt.Printf("new version available: v%s (run 'codeguardian --self-update')\n", latest)
			case latest != "":
				fmt.Println("up to date")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&versionCheck, "check", false, "look up the latest release")
	rootCmd.AddCommand(cmd)
}
