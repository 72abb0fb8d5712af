package main

import (
	"github.com/riskibarqy/overmind/internal/app"
	"github.com/riskibarqy/overmind/internal/config"
	"github.com/riskibarqy/overmind/internal/domain/naming"
	"github.com/riskibarqy/overmind/internal/infrastructure/report"
	"github.com/spf13/cobra"
)

func newExtractCommand() *cobra.Command {
	var aliases string

	cmd := &cobra.Command{
		Use:   "extract <path>...",
		Short: "Show the player names parsed from replay paths",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Parse()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("aliases") {
				cfg.AliasTablePath = aliases
			}

			table, err := app.LoadAliases(cfg)
			if err != nil {
				return err
			}
			extractor := naming.NewExtractor(table)

			rows := make([]report.ExtractRow, 0, len(args))
			for _, path := range args {
				rows = append(rows, report.ExtractRow{Path: path, Extraction: extractor.Extract(path)})
			}
			report.RenderExtract(cmd.OutOrStdout(), rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&aliases, "aliases", "", "alias table JSON file (ALIAS_TABLE_PATH)")
	return cmd
}
