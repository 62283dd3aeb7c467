package codeguardian

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var rulesJSON bool

func init() {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the rule categories the scan service applies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rules, err := newClient().Rules(cmd.Context())
			if err != nil {
				return err
			}
			if rulesJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(rules)
			}
			names := make([]string, 0, len(rules.Categories))
			for name := range rules.Categories {
				names = append(names, name)
			}
			sort.Strings(names)

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Category", "Rules", "Count")
			for _, name := range names {
				list := rules.Categories[name]
				if err := table.Append([]string{name, strings.Join(list, ", "), strconv.Itoa(len(list))}); err != nil {
					return err
				}
			}
			if err := table.Render(); err != nil {
				return err
			}
			fmt.Printf("Total rules: %d\n", rules.TotalRules)
			return nil
		},
	}
	cmd.Flags().BoolVar(&rulesJSON, "json", false, "emit JSON")
	rootCmd.AddCommand(cmd)
}
