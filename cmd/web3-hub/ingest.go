package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newIngestCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Run the news pipeline once and print the batch as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			gen, err := buildGenerator(ctx, c.cfg, c.log)
			if err != nil {
				return err
			}

			pipeline, closeFn, err := buildPipeline(ctx, c.cfg, gen, nil)
			if err != nil {
				return err
			}
			defer closeFn()

			articles, err := pipeline.Ingest(ctx)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(articles)
		},
	}
}
