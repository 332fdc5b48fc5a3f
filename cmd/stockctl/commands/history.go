package commands

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"stocks-skill/internal/infra/sqlite"
)

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently answered stock queries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Recorder.SQLitePath == "" {
				return errors.New("recorder.sqlite_path is not configured")
			}

			rec, err := sqlite.NewRecorder(cfg.Recorder.SQLitePath, stderrLogger())
			if err != nil {
				return err
			}
			defer rec.Close()

			records, err := rec.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tLOCALE\tCOMPANY\tTICKER\tOUTCOME\tPRICE")
			for _, r := range records {
				result := string(r.Outcome)
				if r.Failure != "" {
					result += " (" + string(r.Failure) + ")"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					r.At.Local().Format(time.DateTime), r.Locale, r.Company, r.Ticker, result, r.Price)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of queries to show")
	return cmd
}
