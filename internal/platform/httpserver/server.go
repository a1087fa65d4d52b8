package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	rankingservice "wishpact/contexts/community-experience/ranking-service"
	impacttreasury "wishpact/contexts/impact-governance/impact-treasury"
	proposalgovernor "wishpact/contexts/impact-governance/proposal-governor"
	verificationservice "wishpact/contexts/wish-verification/verification-service"
	"wishpact/contracts/apperrors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	_ "wishpact/internal/platform/httpserver/docs"
)

const (
	userHeader = "X-User-Id"
	roleHeader = "X-User-Role"
	adminRole  = "admin"
)

// Modules is the set of contexts served over HTTP.
type Modules struct {
	Verification verificationservice.Module
	Treasury     impacttreasury.Module
	Governor     proposalgovernor.Module
	Ranking      rankingservice.Module
}

type Server struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	addr     string
	modules  Modules
	events   http.Handler
	gatherer prometheus.Gatherer
	server   *http.Server
}

type Option func(*Server)

// WithEvents mounts the realtime stream at /v1/events.
func WithEvents(handler http.Handler) Option {
	return func(s *Server) { s.events = handler }
}

// WithMetrics exposes the gatherer at /metrics.
func WithMetrics(gatherer prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = gatherer }
}

func New(modules Modules, logger *slog.Logger, addr string, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:     http.NewServeMux(),
		logger:  logger,
		addr:    addr,
		modules: modules,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerRoutes()
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	if s.gatherer != nil {
		s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	if s.events != nil {
		s.mux.Handle("GET /v1/events", s.events)
	}
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.mux.HandleFunc("POST /v1/wishes", s.handleCreateWish)
	s.mux.HandleFunc("POST /v1/wishes/{wish_id}/pledges", s.handleRecordPledge)
	s.mux.HandleFunc("POST /v1/wishes/{wish_id}/proofs", s.handleSubmitProof)
	s.mux.HandleFunc("POST /v1/wishes/{wish_id}/votes", s.handleCastVote)
	s.mux.HandleFunc("GET /v1/wishes/{wish_id}/verification", s.handleVerificationStatus)
	s.mux.HandleFunc("POST /v1/wishes/{wish_id}/resolve", s.handleResolve)
	s.mux.HandleFunc("POST /v1/wishes/{wish_id}/cancel", s.handleCancelWish)

	s.mux.HandleFunc("GET /v1/treasury", s.handleTreasuryStats)
	s.mux.HandleFunc("GET /v1/treasury/credits", s.handleTreasuryCredits)

	s.mux.HandleFunc("GET /v1/proposals", s.handleListProposals)
	s.mux.HandleFunc("POST /v1/proposals", s.handleCreateProposal)
	s.mux.HandleFunc("GET /v1/proposals/{proposal_id}", s.handleGetProposal)
	s.mux.HandleFunc("POST /v1/proposals/{proposal_id}/votes", s.handleVoteProposal)
	s.mux.HandleFunc("POST /v1/proposals/{proposal_id}/execute", s.handleExecuteProposal)

	s.mux.HandleFunc("GET /v1/leaderboard", s.handleLeaderboard)
}

// errorStatus maps an error kind to its HTTP status and response code.
func errorStatus(err error) (int, string) {
	kind, ok := apperrors.KindOf(err)
	if !ok {
		return http.StatusInternalServerError, "internal_error"
	}
	switch kind {
	case apperrors.KindValidation:
		return http.StatusBadRequest, string(kind)
	case apperrors.KindAuthorization:
		return http.StatusForbidden, string(kind)
	case apperrors.KindConflict, apperrors.KindState:
		return http.StatusConflict, string(kind)
	case apperrors.KindNotFound:
		return http.StatusNotFound, string(kind)
	case apperrors.KindInsufficientFunds:
		return http.StatusUnprocessableEntity, string(kind)
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func (s *Server) logFailure(r *http.Request, status int, err error) {
	if status < http.StatusInternalServerError {
		return
	}
	s.logger.Error("request failed",
		"event", "http_request_failed",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err.Error(),
	)
}

// requireUser returns the caller identity or writes 401.
func requireUser(w http.ResponseWriter, r *http.Request, write func(http.ResponseWriter, int, string, string)) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get(userHeader))
	if userID == "" {
		write(w, http.StatusUnauthorized, "missing_user", userHeader+" header is required")
		return "", false
	}
	return userID, true
}

func isAdmin(r *http.Request) bool {
	return strings.EqualFold(strings.TrimSpace(r.Header.Get(roleHeader)), adminRole)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	return decoder.Decode(target)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
