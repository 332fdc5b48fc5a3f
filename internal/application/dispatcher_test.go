package application_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"stocks-skill/internal/application"
	"stocks-skill/internal/domain"
	"stocks-skill/internal/i18n"
)

type mockDirectory struct {
	tickers map[string]domain.TickerSymbol
}

func (m *mockDirectory) Resolve(name domain.CompanyName) (domain.TickerSymbol, bool) {
	t, ok := m.tickers[name.Normalize()]
	return t, ok
}

type mockFetcher struct {
	prices map[domain.TickerSymbol]domain.PricePoint
	err    error
	calls  []domain.TickerSymbol
}

func (m *mockFetcher) Fetch(_ context.Context, ticker domain.TickerSymbol) (domain.PricePoint, error) {
	m.calls = append(m.calls, ticker)
	if m.err != nil {
		return domain.PricePoint{}, m.err
	}
	p, ok := m.prices[ticker]
	if !ok {
		return domain.PricePoint{}, &domain.FetchError{Kind: domain.KindStatus, Ticker: ticker, StatusCode: 404}
	}
	return p, nil
}

type recordingRecorder struct {
	records []*application.QueryRecord
	err     error
}

func (r *recordingRecorder) RecordQuery(_ context.Context, rec *application.QueryRecord) error {
	r.records = append(r.records, rec)
	return r.err
}

func (r *recordingRecorder) Close() error { return nil }

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(_ context.Context, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

// blockingNotifier holds every alert until released.
type blockingNotifier struct {
	release  chan struct{}
	deadline chan bool
}

func (n *blockingNotifier) Notify(ctx context.Context, _ string) error {
	<-n.release
	_, ok := ctx.Deadline()
	n.deadline <- ok
	return nil
}

type fixture struct {
	dispatcher *application.Dispatcher
	fetcher    *mockFetcher
	recorder   *recordingRecorder
	notifier   *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	catalog, err := i18n.Default()
	if err != nil {
		t.Fatalf("loading catalog: %v", err)
	}

	f := &fixture{
		fetcher: &mockFetcher{
			prices: map[domain.TickerSymbol]domain.PricePoint{
				"DAI": {Date: "2023-01-01", Price: decimal.RequireFromString("42.567")},
			},
		},
		recorder: &recordingRecorder{},
		notifier: &recordingNotifier{},
	}
	directory := &mockDirectory{tickers: map[string]domain.TickerSymbol{
		"daimler":  "DAI",
		"hypoport": "HYQ",
	}}
	f.dispatcher = application.NewDispatcher(
		directory,
		f.fetcher,
		application.NewComposer(catalog),
		f.recorder,
		f.notifier,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return f
}

func stocksRequest(value string) *domain.Request {
	return &domain.Request{
		ID:     "req-1",
		Type:   domain.RequestIntent,
		Intent: string(domain.IntentStocks),
		Locale: "de-DE",
		Slots:  map[string]string{domain.SlotStock: value},
	}
}

func TestDispatcher_Launch(t *testing.T) {
	f := newFixture(t)

	resp, err := f.dispatcher.Dispatch(context.Background(), &domain.Request{Type: domain.RequestLaunch, Locale: "de-DE"})
	if err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}

	if !strings.HasPrefix(resp.Speech, "Willkommen bei Börsenkurse.") {
		t.Errorf("Speech: got %q", resp.Speech)
	}
	if resp.Reprompt == "" {
		t.Error("Reprompt: want welcome reprompt")
	}
	if resp.EndSession {
		t.Error("EndSession: launch must keep the session open")
	}
	if resp.Session.LastSpeech != resp.Speech {
		t.Error("Session: launch speech not stored for repeat")
	}
}

func TestDispatcher_StocksSuccess(t *testing.T) {
	f := newFixture(t)

	resp, err := f.dispatcher.Dispatch(context.Background(), stocksRequest("Daimler"))
	if err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}

	if want := "Der Kurs der Daimler Aktie steht bei 42.57 Euro."; resp.Speech != want {
		t.Errorf("Speech: got %q, want %q", resp.Speech, want)
	}
	if want := "Sage einfach „Wiederholen“."; resp.Reprompt != want {
		t.Errorf("Reprompt: got %q, want %q", resp.Reprompt, want)
	}
	if resp.Card == nil {
		t.Fatal("Card: want card on success")
	}
	if want := "Börsenkurse - Aktienkurs für Daimler."; resp.Card.Title != want {
		t.Errorf("Card.Title: got %q, want %q", resp.Card.Title, want)
	}
	if resp.Card.Content != resp.Speech {
		t.Errorf("Card.Content: got %q, want speech", resp.Card.Content)
	}

	if len(f.recorder.records) != 1 {
		t.Fatalf("records: got %d, want 1", len(f.recorder.records))
	}
	rec := f.recorder.records[0]
	if rec.Outcome != domain.OutcomeSuccess || rec.Ticker != "DAI" || rec.Price != "42.567" {
		t.Errorf("record: got %+v", rec)
	}
	f.dispatcher.Wait()
	if n := f.notifier.count(); n != 0 {
		t.Errorf("notifier: got %d messages, want none", n)
	}
}

func TestDispatcher_StocksFetchFailed(t *testing.T) {
	f := newFixture(t)

	resp, err := f.dispatcher.Dispatch(context.Background(), stocksRequest("hypoport"))
	if err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}

	if want := "Ich konnte den Kurs für hypoport nicht abrufen."; resp.Speech != want {
		t.Errorf("Speech: got %q, want %q", resp.Speech, want)
	}
	if want := "Sage einfach „Wiederholen“."; resp.Reprompt != want {
		t.Errorf("Reprompt: got %q, want %q", resp.Reprompt, want)
	}
	if resp.Card == nil || resp.EndSession {
		t.Errorf("want an open session with card, got %+v", resp)
	}
	if f.recorder.records[0].Failure != domain.KindStatus {
		t.Errorf("record failure: got %q, want %q", f.recorder.records[0].Failure, domain.KindStatus)
	}
	f.dispatcher.Wait()
	if n := f.notifier.count(); n != 1 {
		t.Errorf("notifier: got %d messages, want 1", n)
	}
}

func TestDispatcher_FetchFailedReplyDoesNotWaitForAlert(t *testing.T) {
	catalog, err := i18n.Default()
	if err != nil {
		t.Fatalf("loading catalog: %v", err)
	}
	notifier := &blockingNotifier{release: make(chan struct{}), deadline: make(chan bool, 1)}
	dispatcher := application.NewDispatcher(
		&mockDirectory{tickers: map[string]domain.TickerSymbol{"daimler": "DAI"}},
		&mockFetcher{err: &domain.FetchError{Kind: domain.KindTimeout, Ticker: "DAI"}},
		application.NewComposer(catalog),
		&recordingRecorder{},
		notifier,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan *domain.Response, 1)
	go func() {
		resp, err := dispatcher.Dispatch(ctx, stocksRequest("daimler"))
		if err != nil {
			t.Errorf("Dispatch error: %v", err)
		}
		done <- resp
	}()

	select {
	case resp := <-done:
		if want := "Ich konnte den Kurs für daimler nicht abrufen."; resp == nil || resp.Speech != want {
			t.Errorf("Speech: got %+v, want %q", resp, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reply waited for the operator alert")
	}

	// The request is over; the alert must still be delivered.
	cancel()
	close(notifier.release)
	dispatcher.Wait()

	if !<-notifier.deadline {
		t.Error("alert context: want a deadline")
	}
}

func TestDispatcher_StocksContentTypeFailureMatchesNon200(t *testing.T) {
	f := newFixture(t)
	f.fetcher.err = &domain.FetchError{Kind: domain.KindContentType, Ticker: "DAI", ContentType: "text/html"}

	bad, err := f.dispatcher.Dispatch(context.Background(), stocksRequest("daimler"))
	if err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}

	f.fetcher.err = &domain.FetchError{Kind: domain.KindStatus, Ticker: "DAI", StatusCode: 404}
	non200, err := f.dispatcher.Dispatch(context.Background(), stocksRequest("daimler"))
	if err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}

	if bad.Speech != non200.Speech || bad.Reprompt != non200.Reprompt {
		t.Errorf("content-type failure %q differs from non-200 %q", bad.Speech, non200.Speech)
	}
}

func TestDispatcher_StocksForeignErrorIsFetchFailure(t *testing.T) {
	f := newFixture(t)
	f.fetcher.err = errors.New("boom")

	resp, err := f.dispatcher.Dispatch(context.Background(), stocksRequest("daimler"))
	if err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}
	if !strings.Contains(resp.Speech, "nicht abrufen") {
		t.Errorf("Speech: got %q", resp.Speech)
	}
	if f.recorder.records[0].Failure != domain.KindTransport {
		t.Errorf("record failure: got %q", f.recorder.records[0].Failure)
	}
}

func TestDispatcher_StocksNotFound(t *testing.T) {
	tests := []struct {
		name       string
		slot       string
		wantSpeech string
	}{
		{
			name:       "unknown name",
			slot:       "Siemens",
			wantSpeech: "Tut mir leid, ich kenne derzeit die Aktie Siemens nicht. Womit kann ich dir sonst helfen?",
		},
		{
			name:       "empty slot",
			slot:       "",
			wantSpeech: "Tut mir leid, ich kenne derzeit diese Aktie nicht. Womit kann ich dir sonst helfen?",
		},
		{
			name:       "blank slot",
			slot:       "   ",
			wantSpeech: "Tut mir leid, ich kenne derzeit diese Aktie nicht. Womit kann ich dir sonst helfen?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			resp, err := f.dispatcher.Dispatch(context.Background(), stocksRequest(tt.slot))
			if err != nil {
				t.Fatalf("Dispatch error: %v", err)
			}

			if resp.Speech != tt.wantSpeech {
				t.Errorf("Speech: got %q, want %q", resp.Speech, tt.wantSpeech)
			}
			if want := "Womit kann ich dir sonst helfen?"; resp.Reprompt != want {
				t.Errorf("Reprompt: got %q, want %q", resp.Reprompt, want)
			}
			if resp.Card != nil {
				t.Error("Card: not-found reply has no card")
			}
			if len(f.fetcher.calls) != 0 {
				t.Errorf("fetcher: got %d calls, want none", len(f.fetcher.calls))
			}
			if f.recorder.records[0].Outcome != domain.OutcomeNotFound {
				t.Errorf("record outcome: got %q", f.recorder.records[0].Outcome)
			}
		})
	}
}

func TestDispatcher_StocksMissingSlot(t *testing.T) {
	f := newFixture(t)
	req := stocksRequest("")
	req.Slots = nil

	resp, err := f.dispatcher.Dispatch(context.Background(), req)
	if err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}
	if !strings.Contains(resp.Speech, "diese Aktie nicht") {
		t.Errorf("Speech: got %q", resp.Speech)
	}
}

func TestDispatcher_RepeatReplaysPreviousTurn(t *testing.T) {
	f := newFixture(t)

	first, err := f.dispatcher.Dispatch(context.Background(), stocksRequest("daimler"))
	if err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}

	session := first.Session
	for i := 0; i < 2; i++ {
		resp, err := f.dispatcher.Dispatch(context.Background(), &domain.Request{
			Type:    domain.RequestIntent,
			Intent:  string(domain.IntentRepeat),
			Locale:  "de-DE",
			Session: session,
		})
		if err != nil {
			t.Fatalf("repeat %d: %v", i, err)
		}
		if resp.Speech != first.Speech || resp.Reprompt != first.Reprompt {
			t.Errorf("repeat %d: got (%q, %q), want (%q, %q)", i, resp.Speech, resp.Reprompt, first.Speech, first.Reprompt)
		}
		if resp.EndSession {
			t.Errorf("repeat %d: session ended", i)
		}
		session = resp.Session
	}

	if len(f.fetcher.calls) != 1 {
		t.Errorf("fetcher: got %d calls, want 1", len(f.fetcher.calls))
	}
}

func TestDispatcher_RepeatWithoutHistoryGivesHelp(t *testing.T) {
	f := newFixture(t)

	resp, err := f.dispatcher.Dispatch(context.Background(), &domain.Request{
		Type:   domain.RequestIntent,
		Intent: string(domain.IntentRepeat),
		Locale: "de-DE",
	})
	if err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}
	if !strings.HasPrefix(resp.Speech, "Du kannst beispielsweise Fragen stellen") {
		t.Errorf("Speech: got %q", resp.Speech)
	}
}

func TestDispatcher_StopCancelSessionEnded(t *testing.T) {
	requests := []*domain.Request{
		{Type: domain.RequestIntent, Intent: string(domain.IntentStop), Locale: "de-DE"},
		{Type: domain.RequestIntent, Intent: string(domain.IntentCancel), Locale: "de-DE"},
		{Type: domain.RequestSessionEnded, Locale: "de-DE"},
	}

	for _, req := range requests {
		f := newFixture(t)

		resp, err := f.dispatcher.Dispatch(context.Background(), req)
		if err != nil {
			t.Fatalf("Dispatch error: %v", err)
		}
		if resp.Speech != "Auf Wiedersehen!" {
			t.Errorf("%s: Speech got %q", req.Intent, resp.Speech)
		}
		if resp.Reprompt != "" || !resp.EndSession {
			t.Errorf("%s: want terminal reply without reprompt, got %+v", req.Intent, resp)
		}
	}
}

func TestDispatcher_HelpAndUnhandled(t *testing.T) {
	f := newFixture(t)

	help, err := f.dispatcher.Dispatch(context.Background(), &domain.Request{
		Type: domain.RequestIntent, Intent: string(domain.IntentHelp), Locale: "en-US",
	})
	if err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}

	unhandled, err := f.dispatcher.Dispatch(context.Background(), &domain.Request{
		Type: domain.RequestIntent, Intent: "WeatherIntent", Locale: "en-US",
	})
	if err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}

	if help.Speech != unhandled.Speech || help.Reprompt != unhandled.Reprompt {
		t.Errorf("unhandled reply %q differs from help %q", unhandled.Speech, help.Speech)
	}
	if unhandled.Reprompt == "" || unhandled.EndSession {
		t.Errorf("unhandled: want open session with reprompt, got %+v", unhandled)
	}
}

func TestIntentFor_RequestTypeNamesAreNotIntents(t *testing.T) {
	tests := []struct {
		req  domain.Request
		want domain.IntentName
	}{
		{domain.Request{Type: domain.RequestLaunch}, domain.IntentLaunch},
		{domain.Request{Type: domain.RequestSessionEnded}, domain.IntentSessionEnded},
		{domain.Request{Type: domain.RequestIntent, Intent: "StocksIntent"}, domain.IntentStocks},
		{domain.Request{Type: domain.RequestIntent, Intent: "AMAZON.StopIntent"}, domain.IntentStop},
		{domain.Request{Type: domain.RequestIntent, Intent: "LaunchRequest"}, domain.IntentUnhandled},
		{domain.Request{Type: domain.RequestIntent, Intent: "SessionEndedRequest"}, domain.IntentUnhandled},
		{domain.Request{Type: domain.RequestIntent, Intent: "Unhandled"}, domain.IntentUnhandled},
		{domain.Request{Type: domain.RequestIntent, Intent: ""}, domain.IntentUnhandled},
		{domain.Request{Type: "CanFulfillIntentRequest"}, domain.IntentUnhandled},
	}

	for _, tt := range tests {
		if got := application.IntentFor(&tt.req); got != tt.want {
			t.Errorf("IntentFor(%s/%q): got %q, want %q", tt.req.Type, tt.req.Intent, got, tt.want)
		}
	}
}

func TestDispatcher_IntentNamedLikeRequestTypeGetsHelp(t *testing.T) {
	f := newFixture(t)

	resp, err := f.dispatcher.Dispatch(context.Background(), &domain.Request{
		Type: domain.RequestIntent, Intent: "SessionEndedRequest", Locale: "en-US",
	})
	if err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}
	if resp.EndSession || resp.Reprompt == "" {
		t.Errorf("want the help reply with an open session, got %+v", resp)
	}
}

func TestDispatcher_MissingLocale(t *testing.T) {
	f := newFixture(t)

	_, err := f.dispatcher.Dispatch(context.Background(), &domain.Request{
		Type:   domain.RequestIntent,
		Intent: string(domain.IntentStocks),
		Locale: "fr-FR",
		Slots:  map[string]string{domain.SlotStock: "daimler"},
	})
	if !errors.Is(err, domain.ErrMissingLocale) {
		t.Fatalf("error: got %v, want ErrMissingLocale", err)
	}
	if len(f.fetcher.calls) != 0 {
		t.Error("fetcher must not be called for an unsupported locale")
	}
}

func TestDispatcher_RecorderErrorIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.recorder.err = errors.New("disk full")

	resp, err := f.dispatcher.Dispatch(context.Background(), stocksRequest("daimler"))
	if err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}
	if !strings.Contains(resp.Speech, "42.57") {
		t.Errorf("Speech: got %q", resp.Speech)
	}
}
