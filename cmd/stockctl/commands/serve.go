package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"stocks-skill/internal/app"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTPS webhook endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := validated()
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return app.Serve(ctx, c, stderrLogger())
		},
	}
	return cmd
}
