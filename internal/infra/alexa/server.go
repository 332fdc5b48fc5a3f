package alexa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"stocks-skill/internal/domain"
)

const (
	maxEnvelopeBytes = 64 * 1024
	headerRequestID  = "X-Request-ID"
	headerAuthToken  = "X-Auth-Token"
)

type ServerConfig struct {
	Addr      string
	AuthToken string
	RateLimit int // requests per minute per client IP
}

// Server exposes the skill as an HTTPS custom endpoint.
type Server struct {
	addr        string
	server      *http.Server
	listener    net.Listener
	adapter     *Adapter
	logger      *slog.Logger
	mu          sync.Mutex
	running     bool
	mux         *http.ServeMux
	rateLimiter *RateLimiter
	authToken   string
}

func NewServer(cfg ServerConfig, adapter *Adapter, logger *slog.Logger) *Server {
	s := &Server{
		addr:        cfg.Addr,
		adapter:     adapter,
		logger:      logger,
		mux:         http.NewServeMux(),
		rateLimiter: NewRateLimiter(cfg.RateLimit, time.Minute),
		authToken:   cfg.AuthToken,
	}
	s.mux.HandleFunc("POST /alexa", s.withRequestID(s.rateLimiter.Middleware(s.handleAlexa)))
	s.mux.HandleFunc("GET /health", s.handleHealth)
	return s
}

func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}

	s.server = &http.Server{
		Handler:      s.mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		s.logger.Info("skill endpoint starting", "addr", ln.Addr().String())
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", "error", err)
		}
	}()

	s.listener = ln
	s.running = true
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.server.Shutdown(ctx); err != nil {
			s.logger.Warn("graceful shutdown failed, forcing close", "error", err)
			if err := s.server.Close(); err != nil {
				return fmt.Errorf("closing server: %w", err)
			}
		}
	}

	s.listener = nil
	s.running = false
	return nil
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) withRequestID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(headerRequestID, id)
		}
		w.Header().Set(headerRequestID, id)
		next(w, r)
	}
}

func (s *Server) authorized(r *http.Request) bool {
	if s.authToken == "" {
		return true
	}
	token := r.Header.Get(headerAuthToken)
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	return token == s.authToken
}

func (s *Server) handleAlexa(w http.ResponseWriter, r *http.Request) {
	logger := s.logger.With("http_request_id", r.Header.Get(headerRequestID))

	if !s.authorized(r) {
		logger.Warn("unauthorized alexa request", "remote_addr", r.RemoteAddr)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, maxEnvelopeBytes+1))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	if len(data) > maxEnvelopeBytes {
		http.Error(w, "request too large", http.StatusRequestEntityTooLarge)
		return
	}

	var env RequestEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		logger.Warn("decoding alexa envelope", "error", err)
		http.Error(w, "invalid request envelope", http.StatusBadRequest)
		return
	}

	resp, err := s.adapter.Handle(r.Context(), &env)
	if err != nil {
		status := statusFor(err)
		logger.Error("handling alexa request",
			"request_id", env.Request.RequestID,
			"status", status,
			"error", err,
		)
		http.Error(w, http.StatusText(status), status)
		return
	}

	w.Header().Set("Content-Type", "application/json;charset=UTF-8")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error("writing alexa response", "error", err)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidApplicationID):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrMissingLocale):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	status := "ok"
	statusCode := http.StatusOK

	if !running {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	fmt.Fprintf(w, `{"status":"%s","running":%t}`, status, running)
}
