package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pribylovaa/web3-hub/internal/models"
)

func newAccessCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "access <address> [feature...]",
		Short: "Print feature access decisions for a wallet",
		Long: `Reads the wallet's token balance and prints one decision per feature.
Without features every known feature is checked.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			features := models.AllFeatures()
			if len(args) > 1 {
				features = features[:0:0]
				for _, raw := range args[1:] {
					f, err := models.ParseFeature(raw)
					if err != nil {
						return fmt.Errorf("feature %q: %w", raw, err)
					}
					features = append(features, f)
				}
			}

			evaluator, closeFn, err := buildEvaluator(cmd.Context(), c.cfg, nil)
			if err != nil {
				return err
			}
			defer closeFn()

			decisions := evaluator.CheckMultipleFeatures(cmd.Context(), args[0], features)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(decisions)
		},
	}
}
