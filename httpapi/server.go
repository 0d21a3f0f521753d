package httpapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"veilbot/application"
	"veilbot/domain/events"
	"veilbot/observability"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// WebhookSecretHeader carries the shared secret on payment webhooks
const WebhookSecretHeader = "X-Webhook-Secret"

const maxWebhookBody = 64 << 10

// PurchaseFulfiller credits completed coin purchases
type PurchaseFulfiller interface {
	Fulfil(ctx context.Context, purchase events.CoinsPurchasedEvent) (bool, error)
}

// HealthChecker reports whether the store is reachable
type HealthChecker interface {
	Ensure(ctx context.Context) error
}

// Options configures the HTTP server
type Options struct {
	Addr          string
	WebhookSecret string
	WebhookRate   float64
}

// Server exposes health, metrics and the payment webhook
type Server struct {
	router      chi.Router
	httpServer  *http.Server
	purchases   PurchaseFulfiller
	health      HealthChecker
	secret      string
	limiter     *RateLimiter
	stopCleanup chan struct{}
}

type errorResponse struct {
	Error string `json:"error"`
}

type webhookResponse struct {
	Fulfilled bool `json:"fulfilled"`
}

// NewServer creates the HTTP server and its routes
func NewServer(opts Options, purchases PurchaseFulfiller, health HealthChecker) *Server {
	s := &Server{
		purchases:   purchases,
		health:      health,
		secret:      opts.WebhookSecret,
		limiter:     NewRateLimiter(opts.WebhookRate, 10),
		stopCleanup: make(chan struct{}),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(observability.InstrumentHandler)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", observability.Handler())
	r.Route("/webhooks", func(r chi.Router) {
		r.Use(s.limiter.Handler)
		r.Post("/coins", s.handleCoinsPurchased)
	})

	s.router = r
	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves in the background
func (s *Server) Start() {
	s.limiter.StartCleanup(10*time.Minute, s.stopCleanup)

	go func() {
		log.WithField("addr", s.httpServer.Addr).Info("HTTP server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("HTTP server stopped unexpectedly")
		}
	}()
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.stopCleanup)
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.health.Ensure(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "store unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCoinsPurchased(w http.ResponseWriter, r *http.Request) {
	if s.secret == "" {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "webhook disabled"})
		return
	}
	provided := r.Header.Get(WebhookSecretHeader)
	if subtle.ConstantTimeCompare([]byte(provided), []byte(s.secret)) != 1 {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid webhook secret"})
		return
	}

	var purchase events.CoinsPurchasedEvent
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&purchase); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed purchase payload"})
		return
	}

	fulfilled, err := s.purchases.Fulfil(r.Context(), purchase)
	if err != nil {
		if errors.Is(err, application.ErrInvalidPurchase) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		log.WithFields(log.Fields{
			"session_id": purchase.SessionID,
			"request_id": middleware.GetReqID(r.Context()),
			"error":      err,
		}).Error("Failed to fulfil coin purchase")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to fulfil purchase"})
		return
	}

	writeJSON(w, http.StatusOK, webhookResponse{Fulfilled: fulfilled})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Warn("Failed to write JSON response")
	}
}
