package app

import (
	"fmt"
	"log/slog"

	"stocks-skill/config"
	"stocks-skill/internal/application"
	"stocks-skill/internal/i18n"
	"stocks-skill/internal/infra/alexa"
	"stocks-skill/internal/infra/pushover"
	"stocks-skill/internal/infra/quandl"
	"stocks-skill/internal/infra/sqlite"
	"stocks-skill/internal/infra/tickers"
)

// Wire bundles the constructed components.
type Wire struct {
	Catalog    *i18n.Catalog
	Directory  *tickers.Directory
	Fetcher    *quandl.Client
	Recorder   application.Recorder
	Dispatcher *application.Dispatcher
	Adapter    *alexa.Adapter

	// History is set when queries are stored in SQLite.
	History *sqlite.Recorder
}

// Options override components, mostly for tests.
type Options struct {
	HTTPClient quandl.HTTPClient
}

// NewWire constructs the dependency graph from cfg. Every configured locale
// must have a bundle, otherwise the skill refuses to start.
func NewWire(cfg *config.Config, logger *slog.Logger, opts Options) (*Wire, error) {
	catalog, err := i18n.Default()
	if err != nil {
		return nil, fmt.Errorf("loading locale bundles: %w", err)
	}
	if err := catalog.Require(cfg.Skill.Locales...); err != nil {
		return nil, fmt.Errorf("checking configured locales: %w", err)
	}

	directory, err := tickers.NewDirectory(tickers.DefaultEntries, cfg.Tickers)
	if err != nil {
		return nil, fmt.Errorf("building ticker directory: %w", err)
	}

	timeout, err := cfg.Quandl.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	quandlOpts := []quandl.Option{
		quandl.WithBaseURL(cfg.Quandl.BaseURL),
		quandl.WithNamespace(cfg.Quandl.Namespace),
		quandl.WithTimeout(timeout),
		quandl.WithLogger(logger),
	}
	if opts.HTTPClient != nil {
		quandlOpts = append(quandlOpts, quandl.WithHTTPClient(opts.HTTPClient))
	}
	fetcher := quandl.NewClient(cfg.Quandl.APIKey, quandlOpts...)

	var notifier application.Notifier
	if cfg.Pushover.Enabled {
		notifier = pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.UserKey)
	} else {
		notifier = &application.NoopNotifier{}
	}

	w := &Wire{
		Catalog:   catalog,
		Directory: directory,
		Fetcher:   fetcher,
	}

	if cfg.Recorder.SQLitePath != "" {
		history, err := sqlite.NewRecorder(cfg.Recorder.SQLitePath, logger)
		if err != nil {
			return nil, fmt.Errorf("opening recorder: %w", err)
		}
		w.History = history
		w.Recorder = history
	} else {
		w.Recorder = &application.NoopRecorder{}
	}

	w.Dispatcher = application.NewDispatcher(
		directory,
		fetcher,
		application.NewComposer(catalog),
		w.Recorder,
		notifier,
		logger,
	)
	w.Adapter = alexa.NewAdapter(cfg.Skill.AppID, w.Dispatcher, logger)

	logger.Info("skill wired",
		"locales", catalog.Locales(),
		"tickers", directory.Len(),
		"app_id_check", cfg.Skill.AppID != "",
		"recorder", cfg.Recorder.SQLitePath != "",
		"pushover", cfg.Pushover.Enabled,
	)

	return w, nil
}

func (w *Wire) Close() error {
	if w.Recorder == nil {
		return nil
	}
	if err := w.Recorder.Close(); err != nil {
		return fmt.Errorf("closing recorder: %w", err)
	}
	return nil
}
