package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"stocks-skill/internal/infra/tickers"
)

func tickersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tickers",
		Short: "List the company names the skill understands",
		RunE: func(cmd *cobra.Command, args []string) error {
			directory, err := tickers.NewDirectory(tickers.DefaultEntries, cfg.Tickers)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), directory.Summary())
			return nil
		},
	}
	return cmd
}
