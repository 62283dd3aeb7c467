package codeguardian

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codeguardian/codeguardian/internal/input"
)

func init() {
	cmd := &cobra.Command{
		Use:       "samples [name]",
		Short:     "List built-in samples or print one",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: input.SampleKeys(),
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				for _, k := range input.SampleKeys() {
					a, _ := input.Sample(k)
					fmt.Printf("%-12s %s\n", k, a.Filename)
				}
				return nil
			}
			a, ok := input.Sample(args[0])
			if !ok {
				return fmt.Errorf("%q: %w", args[0], input.ErrUnknownSample)
			}
			fmt.Println(a.Code)
			return nil
		},
	}
	rootCmd.AddCommand(cmd)
}
