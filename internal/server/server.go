// Package server provides the HTTP REST API for the resume enhancer.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jonathan/resume-enhancer/internal/coaching"
	"github.com/jonathan/resume-enhancer/internal/config"
	"github.com/jonathan/resume-enhancer/internal/fetch"
	"github.com/jonathan/resume-enhancer/internal/logger"
	"github.com/jonathan/resume-enhancer/internal/rendering"
	"github.com/jonathan/resume-enhancer/internal/server/middleware"
	"github.com/jonathan/resume-enhancer/internal/server/ratelimit"
	"github.com/jonathan/resume-enhancer/internal/session"
	"github.com/jonathan/resume-enhancer/internal/speech"
	"github.com/jonathan/resume-enhancer/internal/types"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

// ResumePrinter renders a segmented resume to PDF
type ResumePrinter interface {
	RenderResume(ctx context.Context, m types.SectionMap, opts rendering.Options) ([]byte, error)
}

// JobFetcher downloads a job posting and returns its description text
type JobFetcher interface {
	JobPosting(ctx context.Context, url string) (string, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	store       session.Store
	coach       *coaching.Service
	transcriber speech.Transcriber
	printer     ResumePrinter
	fetcher     JobFetcher
	jwtService  *JWTService
	rateLimiter *ratelimit.Limiter
	logger      *zap.Logger
	rng         types.Rand
	now         func() time.Time
}

// Config holds server configuration
type Config struct {
	Port  int
	Store session.Store
	Coach *coaching.Service
	// Transcriber is optional; without it audio routes report the speech service as unavailable
	Transcriber speech.Transcriber
	// Printer defaults to a headless Chrome renderer
	Printer ResumePrinter
	// Fetcher defaults to a plain HTTP client
	Fetcher   JobFetcher
	JWT       *config.JWTConfig
	RateLimit *ratelimit.Config
	Logger    *zap.Logger
	// Rand drives heatmap scores; nil uses the global source
	Rand types.Rand
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if cfg.Coach == nil {
		return nil, fmt.Errorf("coaching service is required")
	}
	if cfg.JWT == nil {
		return nil, fmt.Errorf("JWT config is required")
	}

	s := &Server{
		store:       cfg.Store,
		coach:       cfg.Coach,
		transcriber: cfg.Transcriber,
		printer:     cfg.Printer,
		fetcher:     cfg.Fetcher,
		jwtService:  NewJWTService(cfg.JWT),
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
		logger:      cfg.Logger,
		rng:         cfg.Rand,
		now:         time.Now,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.printer == nil {
		s.printer = rendering.NewPDFRenderer("", false)
	}
	if s.fetcher == nil {
		s.fetcher = fetch.NewClient(0)
	}

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(s.routes())))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Rewrites and PDF export can be slow
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	withSession := middleware.SessionMiddleware(s.jwtService.AsTokenValidator())
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, withSession(h))
	}

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /v1/sessions", s.handleCreateSession)

	// Session lifecycle
	handle("GET /v1/session", s.handleGetSession)
	handle("DELETE /v1/session", s.handleDeleteSession)
	handle("PATCH /v1/session/preferences", s.handlePreferences)

	// Resume
	handle("POST /v1/session/resume", s.handleUploadResume)
	handle("GET /v1/session/dashboard", s.handleDashboard)
	handle("POST /v1/session/enhance", s.handleEnhance)
	handle("POST /v1/session/export", s.handleExport)
	handle("POST /v1/session/design", s.handleDesign)
	handle("POST /v1/session/rewrites", s.handleRewrites)
	handle("POST /v1/session/portfolio", s.handlePortfolio)

	// Scoring and career advice
	handle("POST /v1/session/ats", s.handleATS)
	handle("POST /v1/session/match", s.handleMatch)
	handle("POST /v1/session/roadmap", s.handleRoadmap)
	handle("POST /v1/session/hidden-jobs", s.handleHiddenJobs)
	handle("POST /v1/session/salary", s.handleSalary)
	handle("POST /v1/session/linkedin", s.handleLinkedIn)

	// Interview and speech
	handle("POST /v1/session/interview/question", s.handleInterviewQuestion)
	handle("POST /v1/session/interview/answer", s.handleInterviewAnswer)
	handle("POST /v1/session/interview/voice", s.handleInterviewVoice)
	handle("POST /v1/session/speech", s.handleSpeech)

	// Career assistant
	handle("GET /v1/session/chat", s.handleChatHistory)
	handle("POST /v1/session/chat", s.handleChat)

	return mux
}

// Handler returns the full middleware chain, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		s.Close()
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.Close()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Close stops background work and closes the session store
func (s *Server) Close() {
	s.rateLimiter.Stop()
	if err := s.store.Close(); err != nil {
		s.logger.Warn("closing session store", zap.Error(err))
	}
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects clients that exceed their endpoint's limit
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for request logs
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// Flush lets event streams pass through the logging middleware
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// withLogging logs every request with its status and duration
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("encoding JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// fail maps err to a status and writes it. Server-side failures are logged at error.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	fields := []zap.Field{
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	}
	if id, idErr := middleware.GetSessionID(r); idErr == nil {
		fields = append(fields, zap.String(logger.FieldSessionID, id.String()))
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", fields...)
	} else {
		s.logger.Debug("request rejected", fields...)
	}
	s.errorResponse(w, status, errorMessage(err))
}

// extractClientID identifies the client by the IP address in RemoteAddr.
// X-Forwarded-For is ignored because proxies are not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.logger.Warn("rate limit exceeded",
		zap.String("client", s.extractClientID(r)),
		zap.String("path", r.URL.Path),
		zap.Int("limit", info.Limit),
	)

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
