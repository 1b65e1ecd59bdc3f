// Package server provides the knotic HTTP REST API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonathan/knotic/internal/analysis"
	"github.com/jonathan/knotic/internal/config"
	"github.com/jonathan/knotic/internal/jobs"
	"github.com/jonathan/knotic/internal/logging"
	"github.com/jonathan/knotic/internal/server/middleware"
	"github.com/jonathan/knotic/internal/server/ratelimit"
	"github.com/jonathan/knotic/internal/types"
	"go.uber.org/zap"
)

// Pinger reports database health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ResumeService manages a user's résumé versions.
type ResumeService interface {
	Upload(ctx context.Context, userID uuid.UUID, fileName string, data []byte) (*types.ResumeVersion, error)
	List(ctx context.Context, userID uuid.UUID) ([]types.ResumeVersionSummary, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*types.ResumeVersion, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	SetActive(ctx context.Context, userID, id uuid.UUID) error
	Assess(ctx context.Context, userID, id uuid.UUID, refresh bool) (*types.ReadinessReport, bool, error)
}

// JobService manages tracked jobs and their match analyses.
type JobService interface {
	Create(ctx context.Context, userID uuid.UUID, req *types.CreateJobRequest) (*types.Job, error)
	Import(ctx context.Context, userID uuid.UUID, req *types.ImportJobRequest) (*types.Job, error)
	List(ctx context.Context, userID uuid.UUID) ([]*types.Job, error)
	Update(ctx context.Context, userID, id uuid.UUID, req *types.UpdateJobRequest) (*types.Job, error)
	UpdateStatus(ctx context.Context, userID, id uuid.UUID, req *types.UpdateStatusRequest) (*types.Job, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Analyze(ctx context.Context, userID, jobID uuid.UUID, req jobs.AnalyzeRequest) (*jobs.AnalyzeResult, error)
	AnalyzeAll(ctx context.Context, userID uuid.UUID) ([]analysis.Outcome, error)
}

// Config holds listener settings.
type Config struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// ConfigFrom converts the server section of the application config.
func ConfigFrom(c config.ServerConfig) Config {
	return Config{
		Port:            c.Port,
		ReadTimeout:     c.ReadTimeout,
		WriteTimeout:    c.WriteTimeout,
		IdleTimeout:     c.IdleTimeout,
		ShutdownTimeout: c.ShutdownTimeout,
	}
}

// Dependencies are the services the API is built on. DB and Limiter may
// be nil.
type Dependencies struct {
	DB       Pinger
	Users    DBClient
	Resumes  ResumeService
	Jobs     JobService
	JWT      *config.JWTConfig
	Password *config.PasswordConfig
	Limiter  ratelimit.Limiter
	Logger   *zap.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	logger          *zap.Logger
	db              Pinger
	limiter         ratelimit.Limiter
	validate        *validator.Validate
	jwtService      *JWTService
	authHandler     *AuthHandler
	resumes         ResumeService
	jobs            JobService
}

// New creates a server instance.
func New(cfg Config, deps Dependencies) *Server {
	logger := logging.OrNop(deps.Logger).Named("http")
	validate := validator.New()
	jwtService := NewJWTService(deps.JWT)

	s := &Server{
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger,
		db:              deps.DB,
		limiter:         deps.Limiter,
		validate:        validate,
		jwtService:      jwtService,
		authHandler:     NewAuthHandler(NewUserService(deps.Users, deps.Password), jwtService, validate, logger),
		resumes:         deps.Resumes,
		jobs:            deps.Jobs,
	}
	if s.shutdownTimeout <= 0 {
		s.shutdownTimeout = 30 * time.Second
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Handler returns the routed handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	protected := func(h http.HandlerFunc) http.Handler { return auth(h) }

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)
	mux.Handle("GET /auth/me", protected(s.authHandler.Me))

	mux.Handle("GET /resumes", protected(s.handleListResumes))
	mux.Handle("POST /resumes", protected(s.handleUploadResume))
	mux.Handle("GET /resumes/{id}", protected(s.handleGetResume))
	mux.Handle("DELETE /resumes/{id}", protected(s.handleDeleteResume))
	mux.Handle("PUT /resumes/{id}/active", protected(s.handleSetActiveResume))
	mux.Handle("POST /resumes/{id}/assess", protected(s.handleAssessResume))

	mux.Handle("GET /jobs", protected(s.handleListJobs))
	mux.Handle("POST /jobs", protected(s.handleCreateJob))
	mux.Handle("POST /jobs/import", protected(s.handleImportJob))
	mux.Handle("POST /jobs/analyze-all", protected(s.handleAnalyzeAll))
	mux.Handle("PUT /jobs/{id}", protected(s.handleUpdateJob))
	mux.Handle("DELETE /jobs/{id}", protected(s.handleDeleteJob))
	mux.Handle("PATCH /jobs/{id}/status", protected(s.handleUpdateJobStatus))
	mux.Handle("POST /jobs/{id}/analyze", protected(s.handleAnalyzeJob))

	return s.withLogging(s.withRateLimit(s.withCORS(mux)))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", ln.Addr().String()))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	if s.limiter != nil {
		s.limiter.Stop()
	}
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info, err := s.limiter.Allow(r.Context(), clientID(r), r.URL.Path, r.Method)
		if err != nil {
			s.logger.Warn("rate limiter unavailable", zap.Error(err))
		}
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Int("bytes", rec.bytes),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote", clientID(r)),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			s.logger.Warn("health check failed", zap.Error(err))
			jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": "down"})
			return
		}
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// clientID is the remote IP, or the raw RemoteAddr if it has no port.
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}
	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds())
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.logger.Warn("rate limit exceeded",
		zap.String("client", clientID(r)),
		zap.String("path", r.URL.Path),
		zap.Int("limit", info.Limit),
	)
	jsonResponse(w, http.StatusTooManyRequests, response)
}

// pathID parses the {id} path value, writing a 400 response on failure.
func pathID(w http.ResponseWriter, r *http.Request, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid "+what+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// currentUser is set by the auth middleware on every protected route.
func currentUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := middleware.GetUserID(r)
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, false
	}
	return id, true
}
