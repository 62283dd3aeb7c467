package codeguardian

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codeguardian/codeguardian/internal/health"
	"github.com/codeguardian/codeguardian/internal/types"
)

func init() {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check whether the scan service is reachable",
		Long:  "Probe the scan service once. Exits 1 when the service is disconnected.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := newClient()
			mon := health.New(c)
			r := mon.Probe(cmd.Context())
			mon.Apply(r)
			if r.Status != types.HealthConnected {
				fmt.Printf("%s: disconnected (%v)\n", c.BaseURL(), r.Err)
				os.Exit(1)
			}
			fmt.Printf("%s: connected", c.BaseURL())
			if r.Info.Service != "" {
				fmt.Printf(" (%s", r.Info.Service)
				if r.Info.Version != "" {
					fmt.Printf(" %s", r.Info.Version)
				}
				fmt.Print(")")
			}
			fmt.Println()
			return nil
		},
	}
	rootCmd.AddCommand(cmd)
}
