package app

import (
	"context"
	"fmt"
	"log/slog"

	"stocks-skill/config"
	"stocks-skill/internal/infra/alexa"
)

// Serve runs the webhook endpoint until ctx is cancelled.
func Serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	w, err := NewWire(cfg, logger, Options{})
	if err != nil {
		return err
	}
	defer func() {
		if err := w.Close(); err != nil {
			logger.Error("closing wire", "error", err)
		}
	}()

	server := alexa.NewServer(alexa.ServerConfig{
		Addr:      cfg.Server.HTTPAddr,
		AuthToken: cfg.Server.AuthToken,
		RateLimit: cfg.Server.RateLimit,
	}, w.Adapter, logger)

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}

	logger.Info("stock skill running",
		"addr", cfg.Server.HTTPAddr,
		"auth", cfg.Server.AuthToken != "",
	)

	<-ctx.Done()
	logger.Info("shutting down")

	err = server.Stop()
	w.Dispatcher.Wait()
	return err
}
