package codeguardian

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/codeguardian/codeguardian/internal/verify"
)

var verifyTimeout time.Duration

func init() {
	cmd := &cobra.Command{
		Use:   "verify <frontend-url> <backend-url>",
		Short: "Check that a deployed frontend and backend are up and wired together",
		Example: `  codeguardian verify https://guardian.example.com https://api.guardian.example.com
  codeguardian verify http://localhost:3000 http://localhost:8085`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := verify.Run(cmd.Context(), args[0], args[1], verify.Options{Timeout: verifyTimeout})
			verify.Print(os.Stdout, r)
			if !r.OK() {
				os.Exit(1)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&verifyTimeout, "check-timeout", verify.DefaultTimeout, "timeout for each check request")
	rootCmd.AddCommand(cmd)
}
