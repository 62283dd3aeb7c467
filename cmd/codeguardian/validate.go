package codeguardian

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codeguardian/codeguardian/internal/orchestrator"
	"github.com/codeguardian/codeguardian/internal/types"
)

var validateInput inputFlags

func init() {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Ask the scan service for a quick pre-scan check",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sources, err := validateInput.load(cmd.Context())
			if err != nil {
				return err
			}
			c := newClient()
			for _, src := range sources {
				if src.artifact.Empty() {
					return orchestrator.ErrValidation
				}
				v, err := c.Validate(cmd.Context(), types.NewScanRequest(src.artifact))
				if err != nil {
					return err
				}
				label := src.label
				if label == "" {
					label = "input"
				}
				valid := "valid"
				if !v.IsValid {
					valid = "invalid"
				}
				lang := v.Language
				if lang == "" {
					lang = "unknown"
				}
				fmt.Printf("%s: %s, %d lines, %d characters, language %s\n", label, valid, v.LineCount, v.CharacterCount, lang)
			}
			return nil
		},
	}
	validateInput.bind(cmd)
	rootCmd.AddCommand(cmd)
}
