package main

import (
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"stocks-skill/config"
	"stocks-skill/internal/app"
)

// The Lambda build reads its settings from the environment; CONFIG_PATH may
// point at a bundled YAML file.
func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger := app.NewLogger(cfg.Log, os.Stdout)

	w, err := app.NewWire(cfg, logger, app.Options{})
	if err != nil {
		logger.Error("wiring skill", "error", err)
		os.Exit(1)
	}

	lambda.Start(w.Adapter.LambdaHandler())
}
