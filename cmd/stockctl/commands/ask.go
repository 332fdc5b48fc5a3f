package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stocks-skill/internal/app"
	"stocks-skill/internal/domain"
	"stocks-skill/internal/infra/alexa"
)

func askCmd() *cobra.Command {
	var (
		locale string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "ask <company>",
		Short: "Answer a stock question locally, as the skill would",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := validated()
			if err != nil {
				return err
			}

			w, err := app.NewWire(c, stderrLogger(), app.Options{})
			if err != nil {
				return err
			}
			defer w.Close()

			resp, err := w.Dispatcher.Dispatch(cmd.Context(), &domain.Request{
				ID:     "stockctl",
				Type:   domain.RequestIntent,
				Intent: string(domain.IntentStocks),
				Locale: locale,
				Slots:  map[string]string{domain.SlotStock: strings.Join(args, " ")},
			})
			w.Dispatcher.Wait()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(alexa.FromDomain(resp))
			}

			fmt.Fprintln(out, resp.Speech)
			if resp.Card != nil {
				fmt.Fprintf(out, "[%s]\n", resp.Card.Title)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&locale, "locale", "l", "de-DE", "request locale")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the Alexa response envelope")
	return cmd
}
