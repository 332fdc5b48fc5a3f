package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"stocks-skill/config"
	"stocks-skill/internal/app"
)

var (
	configPath string
	cfg        *config.Config
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "stockctl",
		Short:        "Operate the stock price voice skill",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default: environment only)")

	root.AddCommand(serveCmd(), askCmd(), tickersCmd(), historyCmd())
	return root
}

// validated returns the loaded config once Validate accepts it.
func validated() (*config.Config, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func stderrLogger() *slog.Logger {
	return app.NewLogger(cfg.Log, os.Stderr)
}
