package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"stocks-skill/internal/domain"
)

// notifyTimeout bounds an operator alert, which runs after the reply.
const notifyTimeout = 10 * time.Second

type handlerFunc func(ctx context.Context, req *domain.Request) (*domain.Response, error)

// Dispatcher routes one host request to its intent handler. It keeps no
// state between requests; Repeat relies on the session carried by the host.
type Dispatcher struct {
	directory TickerDirectory
	fetcher   PriceFetcher
	composer  *Composer
	recorder  Recorder
	notifier  Notifier
	logger    *slog.Logger

	handlers map[domain.IntentName]handlerFunc
	alerts   sync.WaitGroup
}

func NewDispatcher(
	directory TickerDirectory,
	fetcher PriceFetcher,
	composer *Composer,
	recorder Recorder,
	notifier Notifier,
	logger *slog.Logger,
) *Dispatcher {
	d := &Dispatcher{
		directory: directory,
		fetcher:   fetcher,
		composer:  composer,
		recorder:  recorder,
		notifier:  notifier,
		logger:    logger,
	}

	d.handlers = map[domain.IntentName]handlerFunc{
		domain.IntentLaunch:       d.ask(domain.IntentLaunch),
		domain.IntentStocks:       d.handleStocks,
		domain.IntentHelp:         d.ask(domain.IntentHelp),
		domain.IntentRepeat:       d.handleRepeat,
		domain.IntentStop:         d.tell(domain.IntentStop),
		domain.IntentCancel:       d.tell(domain.IntentCancel),
		domain.IntentSessionEnded: d.tell(domain.IntentSessionEnded),
		domain.IntentUnhandled:    d.ask(domain.IntentUnhandled),
	}

	return d
}

// IntentFor maps a request to the name used in the dispatch table.
func IntentFor(req *domain.Request) domain.IntentName {
	switch req.Type {
	case domain.RequestLaunch:
		return domain.IntentLaunch
	case domain.RequestSessionEnded:
		return domain.IntentSessionEnded
	case domain.RequestIntent:
		switch name := domain.IntentName(req.Intent); name {
		case domain.IntentStocks, domain.IntentHelp, domain.IntentRepeat, domain.IntentStop, domain.IntentCancel:
			return name
		}
		return domain.IntentUnhandled
	default:
		return domain.IntentUnhandled
	}
}

// Dispatch answers req. The only errors are configuration problems such as a
// locale without bundle; provider failures become spoken replies.
func (d *Dispatcher) Dispatch(ctx context.Context, req *domain.Request) (*domain.Response, error) {
	intent := IntentFor(req)
	handler, ok := d.handlers[intent]
	if !ok {
		intent = domain.IntentUnhandled
		handler = d.handlers[intent]
	}

	d.logger.Info("dispatching request",
		"request_id", req.ID,
		"intent", intent,
		"locale", req.Locale,
	)

	if err := d.composer.Supports(req.Locale); err != nil {
		return nil, err
	}

	resp, err := handler(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("handling %s: %w", intent, err)
	}
	return resp, nil
}

func (d *Dispatcher) ask(intent domain.IntentName) handlerFunc {
	return func(_ context.Context, req *domain.Request) (*domain.Response, error) {
		reply, err := d.composer.Compose(req.Locale, intent, domain.Outcome{})
		if err != nil {
			return nil, err
		}
		return askResponse(reply), nil
	}
}

func (d *Dispatcher) tell(intent domain.IntentName) handlerFunc {
	return func(_ context.Context, req *domain.Request) (*domain.Response, error) {
		reply, err := d.composer.Compose(req.Locale, intent, domain.Outcome{})
		if err != nil {
			return nil, err
		}
		return &domain.Response{Speech: reply.Speech, EndSession: true}, nil
	}
}

func (d *Dispatcher) handleRepeat(ctx context.Context, req *domain.Request) (*domain.Response, error) {
	if req.Session.Empty() {
		return d.ask(domain.IntentRepeat)(ctx, req)
	}
	return &domain.Response{
		Speech:   req.Session.LastSpeech,
		Reprompt: req.Session.LastReprompt,
		Session:  req.Session,
	}, nil
}

func (d *Dispatcher) handleStocks(ctx context.Context, req *domain.Request) (*domain.Response, error) {
	company := domain.CompanyName(req.Slots[domain.SlotStock])
	outcome := d.resolve(ctx, company)

	d.logger.Info("stock query",
		"request_id", req.ID,
		"company", company,
		"ticker", outcome.Ticker,
		"outcome", outcome.Kind,
	)
	d.record(ctx, req, outcome)

	reply, err := d.composer.Compose(req.Locale, domain.IntentStocks, outcome)
	if err != nil {
		return nil, err
	}
	return askResponse(reply), nil
}

func (d *Dispatcher) resolve(ctx context.Context, company domain.CompanyName) domain.Outcome {
	if company.IsBlank() {
		return domain.NotFound("")
	}

	ticker, ok := d.directory.Resolve(company)
	if !ok {
		return domain.NotFound(company)
	}

	point, err := d.fetcher.Fetch(ctx, ticker)
	if err != nil {
		var fetchErr *domain.FetchError
		if !errors.As(err, &fetchErr) {
			fetchErr = &domain.FetchError{Kind: domain.KindTransport, Ticker: ticker, Err: err}
		}
		d.notify(ctx, fmt.Sprintf("Price fetch failed: %s", fetchErr.Error()))
		return domain.FetchFailed(company, ticker, fetchErr)
	}

	return domain.Success(company, ticker, point)
}

// notify sends the alert in the background under its own deadline. The
// reply does not wait for it.
func (d *Dispatcher) notify(ctx context.Context, message string) {
	d.alerts.Add(1)
	go func() {
		defer d.alerts.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()

		if err := d.notifier.Notify(ctx, message); err != nil {
			d.logger.Error("notifying fetch failure", "error", err)
		}
	}()
}

// Wait blocks until pending operator alerts are done.
func (d *Dispatcher) Wait() {
	d.alerts.Wait()
}

func (d *Dispatcher) record(ctx context.Context, req *domain.Request, outcome domain.Outcome) {
	rec := &QueryRecord{
		RequestID: req.ID,
		Locale:    req.Locale,
		Company:   string(outcome.Company),
		Ticker:    string(outcome.Ticker),
		Outcome:   outcome.Kind,
		At:        time.Now().UTC(),
	}
	switch outcome.Kind {
	case domain.OutcomeSuccess:
		rec.Date = outcome.Price.Date
		rec.Price = outcome.Price.Price.String()
	case domain.OutcomeFetchFailed:
		rec.Failure = outcome.Err.Kind
	}

	if err := d.recorder.RecordQuery(ctx, rec); err != nil {
		d.logger.Error("recording query", "error", err)
	}
}

func askResponse(reply *domain.Reply) *domain.Response {
	return &domain.Response{
		Speech:   reply.Speech,
		Reprompt: reply.Reprompt,
		Card:     reply.Card,
		Session: domain.Session{
			LastSpeech:   reply.Speech,
			LastReprompt: reply.Reprompt,
		},
	}
}
