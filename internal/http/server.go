package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"moneyflow/internal/cache"
	applog "moneyflow/internal/log"
	"moneyflow/internal/middleware/ratelimit"
	"moneyflow/internal/middleware/security"
	"moneyflow/internal/middleware/trace"
	"moneyflow/internal/services"
)

// ServerConfig configures NewServer. Zero values pick defaults.
type ServerConfig struct {
	Addr               string
	RateLimitPerMinute int
	// BlockSuspicious answers scanner traffic with 403 instead of only logging it
	BlockSuspicious bool
	// Ready backs /readyz; nil means always ready
	Ready func(ctx context.Context) error
	// ChartStats feeds the chart cache section of /stats when set
	ChartStats func() cache.Stats
	Logger     *applog.Logger
}

type Server struct {
	http.Server
	ledgers *services.LedgerService
	logger  *applog.Logger
	ready   func(ctx context.Context) error
	charts  func() cache.Stats

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(cfg ServerConfig, ledgers *services.LedgerService) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	limitCfg := ratelimit.DefaultConfig()
	if cfg.RateLimitPerMinute > 0 {
		limitCfg.RequestsPerMinute = cfg.RateLimitPerMinute
	}

	s := &Server{
		ledgers:  ledgers,
		logger:   logger,
		ready:    cfg.Ready,
		charts:   cfg.ChartStats,
		limiter:  ratelimit.NewLimiter(limitCfg),
		detector: security.NewDetector(),
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /stats", s.handleStats)

	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("GET /sessions/{id}", s.handleSnapshot)
	mux.HandleFunc("DELETE /sessions/{id}", s.handleEndSession)
	mux.HandleFunc("PUT /sessions/{id}/view", s.handleSetView)
	mux.HandleFunc("POST /sessions/{id}/transactions", s.handleAddTransaction)
	mux.HandleFunc("GET /sessions/{id}/transactions", s.handleListTransactions)
	mux.HandleFunc("GET /sessions/{id}/totals", s.handleTotals)
	mux.HandleFunc("GET /sessions/{id}/chart", s.handleChart)

	var handler http.Handler = mux
	handler = s.limiter.Middleware(logger, limitCfg.Methods, s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		TooManyRequestsError("Rate limit exceeded. Please try again later.").Write(w)
	})(handler)
	handler = s.detector.Middleware(logger, cfg.BlockSuspicious)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

type statsResponse struct {
	OpenSessions       int          `json:"open_sessions"`
	TotalRequests      int64        `json:"total_requests"`
	AverageResponseUs  int64        `json:"average_response_us"`
	RateLimitHits      int64        `json:"rate_limit_hits"`
	RateLimitClients   int64        `json:"rate_limit_clients"`
	SuspiciousRequests int64        `json:"suspicious_requests"`
	BlockedRequests    int64        `json:"blocked_requests"`
	ChartCache         *cache.Stats `json:"chart_cache,omitempty"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	traceMetrics := s.tracer.GetMetrics()
	limitMetrics := s.limiter.GetMetrics()
	detection := s.detector.GetMetrics()

	resp := statsResponse{
		OpenSessions:       s.ledgers.Count(),
		TotalRequests:      traceMetrics.TotalRequests,
		AverageResponseUs:  traceMetrics.AverageResponseTime,
		RateLimitHits:      limitMetrics.TotalHits,
		RateLimitClients:   limitMetrics.ClientCount,
		SuspiciousRequests: detection.SuspiciousRequests,
		BlockedRequests:    detection.BlockedRequests,
	}
	if s.charts != nil {
		stats := s.charts()
		resp.ChartCache = &stats
	}
	NewJSONResponse().Body(resp).Write(w)
}
