// Package server provides the HTTP API for tailoring resumes.
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

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/export"
	"github.com/jonathan/resume-tailor/internal/generation"
	"github.com/jonathan/resume-tailor/internal/logging"
	"github.com/jonathan/resume-tailor/internal/server/middleware"
	"github.com/jonathan/resume-tailor/internal/server/ratelimit"
)

// HTMLPrinter prints an HTML document to PDF.
type HTMLPrinter interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// JobFetcher downloads the description text of a job posting.
type JobFetcher interface {
	FetchJobText(ctx context.Context, url string) (string, error)
}

// Options are the dependencies of a Server. Limiter, Printer, Jobs and
// Logger are optional.
type Options struct {
	Store          db.Store
	Generator      *generation.Orchestrator
	JWT            *JWTService
	Passwords      *config.PasswordConfig
	Limiter        *ratelimit.Limiter
	Printer        HTMLPrinter
	Jobs           JobFetcher
	PageConfig     export.PageConfig
	AllowedOrigins []string
	Logger         *zap.Logger
}

// Server is the HTTP API.
type Server struct {
	store       db.Store
	generator   *generation.Orchestrator
	jwt         *JWTService
	users       *UserService
	rateLimiter *ratelimit.Limiter
	printer     HTMLPrinter
	jobs        JobFetcher
	pageConfig  export.PageConfig
	logger      *zap.Logger
	handler     http.Handler
}

// New builds the router.
func New(opts Options) *Server {
	s := &Server{
		store:       opts.Store,
		generator:   opts.Generator,
		jwt:         opts.JWT,
		users:       NewUserService(opts.Store, opts.Passwords),
		rateLimiter: opts.Limiter,
		printer:     opts.Printer,
		jobs:        opts.Jobs,
		pageConfig:  opts.PageConfig.WithDefaults(),
		logger:      logging.OrNop(opts.Logger),
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(opts.AllowedOrigins))
	if s.rateLimiter != nil {
		r.Use(s.withRateLimit)
	}

	r.Get("/health", s.handleHealth)
	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)

	// Stateless rendering needs no account.
	r.Post("/render", s.handleRender)
	r.Post("/export/pdf", s.handleExportPDF)
	r.Post("/export/html-pdf", s.handleExportHTMLPDF)
	r.Post("/export/tex", s.handleExportTeX)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(s.jwt))

		r.Post("/generate", s.handleGenerate)

		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", s.handleCreateTask)
			r.Get("/", s.handleListTasks)
			r.Get("/{id}", s.handleGetTask)
			r.Put("/{id}", s.handleUpdateTask)
			r.Post("/{id}/profile/import", s.handleImportProfile)
			r.Post("/{id}/job/import", s.handleImportJob)
		})
	})

	s.handler = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		// Generations stream for minutes.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  2 * time.Minute,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("server starting", zap.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		s.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientID(r), r.URL.Path, r.Method)
		if info.Limit > 0 {
			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
		}
		if allowed {
			next.ServeHTTP(w, r)
			return
		}

		retryAfter := int(info.RetryAfter.Round(time.Second).Seconds())
		if retryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		}
		s.logger.Warn("rate limit exceeded",
			zap.String("path", r.URL.Path),
			zap.String("client", clientID(r)),
			zap.Int("limit", info.Limit))
		s.respondJSON(w, http.StatusTooManyRequests, map[string]any{
			"error":       "Rate limit exceeded. Please try again later.",
			"retry_after": retryAfter,
		})
	})
}

// clientID is the remote IP; RealIP has already applied forwarding headers.
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// fail maps err to a status and writes it. Server errors are logged.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", chimw.GetReqID(r.Context())),
			zap.Error(err))
	}
	s.respondError(w, status, publicMessage(err, status))
}
