package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/skillbuddy/internal/config"
	"github.com/jonathan/skillbuddy/internal/logging"
	"github.com/jonathan/skillbuddy/internal/server/middleware"
	"github.com/jonathan/skillbuddy/internal/server/ratelimit"
	"github.com/jonathan/skillbuddy/internal/service"
)

// Version is reported by the health endpoint.
const Version = "3.0.0"

const (
	requestIDHeader = "X-Request-ID"
	maxBodyBytes    = 1 << 20
)

var features = []string{
	"Guest Interview Support",
	"XP Persistence System",
	"Local Storage Fallback",
	"Enhanced Profile Management",
	"Token Authentication",
}

// Deps are the services the HTTP layer calls into.
type Deps struct {
	Users       *service.UserService
	Interviews  *service.InterviewService
	Feedback    *service.FeedbackService
	Credentials *service.CredentialService
	JWT         *JWTService
	// Limiter is optional; nil disables rate limiting.
	Limiter *ratelimit.Limiter
	// StorageMode is reported by the health endpoint, e.g. "postgres+local".
	StorageMode string
	Logger      *zap.Logger
}

// Server represents the HTTP API server
type Server struct {
	users       *service.UserService
	interviews  *service.InterviewService
	feedback    *service.FeedbackService
	credentials *service.CredentialService
	jwt         *JWTService
	limiter     *ratelimit.Limiter
	storageMode string
	logger      *zap.Logger

	allowedOrigins  []string
	shutdownTimeout time.Duration
	handler         http.Handler
	httpServer      *http.Server
}

// New creates a new Server
func New(cfg config.ServerConfig, deps Deps) (*Server, error) {
	if deps.Users == nil || deps.Interviews == nil || deps.Feedback == nil || deps.Credentials == nil {
		return nil, errors.New("server requires user, interview, feedback and credential services")
	}
	if deps.JWT == nil {
		return nil, errors.New("server requires a JWT service")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	s := &Server{
		users:           deps.Users,
		interviews:      deps.Interviews,
		feedback:        deps.Feedback,
		credentials:     deps.Credentials,
		jwt:             deps.JWT,
		limiter:         deps.Limiter,
		storageMode:     deps.StorageMode,
		logger:          deps.Logger,
		allowedOrigins:  cfg.AllowedOrigins,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
	if s.shutdownTimeout <= 0 {
		s.shutdownTimeout = 10 * time.Second
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHealth)
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)

	mux.HandleFunc("POST /api/profile/update-profile", s.handleUpdateProfile)
	mux.HandleFunc("POST /api/profile/add-xp", s.handleAddXP)

	mux.HandleFunc("GET /api/interview/questions/{career_path}", s.handleQuestions)
	mux.HandleFunc("POST /api/interview/start", s.handleStartInterview)
	mux.HandleFunc("POST /api/interview/response", s.handleSubmitResponse)
	mux.HandleFunc("POST /api/interview/end", s.handleEndInterview)

	mux.HandleFunc("GET /api/user/profile/{user_id}", s.handleUserProfile)
	mux.Handle("GET /api/user/me", middleware.AuthMiddleware(s.jwt.AsTokenValidator())(http.HandlerFunc(s.handleMe)))

	mux.HandleFunc("POST /api/feedback/submit", s.handleSubmitFeedback)

	s.handler = s.withRequestID(s.withLogging(s.withCORS(s.withRateLimit(mux))))
	s.httpServer = &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves until ctx is done, then drains in-flight requests for up to the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			zap.String("addr", s.httpServer.Addr),
			zap.String("storage", s.storageMode),
		)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
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

// withRequestID tags the request with an id from X-Request-ID, or a new one.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := logging.WithRequestID(r.Context(), s.logger, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		}
		log := logging.FromContext(r.Context(), s.logger)
		if rec.status >= http.StatusInternalServerError {
			log.Warn("request failed", fields...)
			return
		}
		log.Info("request", fields...)
	})
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := s.allowOrigin(r.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			if origin != "*" {
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
			w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Reset, Retry-After")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// allowOrigin returns the Access-Control-Allow-Origin value for origin, or "" to omit it.
func (s *Server) allowOrigin(origin string) string {
	if len(s.allowedOrigins) == 0 || slices.Contains(s.allowedOrigins, "*") {
		return "*"
	}
	if origin != "" && slices.Contains(s.allowedOrigins, origin) {
		return origin
	}
	return ""
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.limiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractClientID returns the remote IP used as the rate limit key.
func (s *Server) extractClientID(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit <= 0 {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
}

type rateLimitBody struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	Limit      int    `json:"limit"`
	Remaining  int    `json:"remaining"`
	ResetAt    string `json:"reset_at,omitempty"`
	RetryAfter int    `json:"retry_after"`
}

func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	retryAfter := int(info.RetryAfter.Round(time.Second) / time.Second)
	if retryAfter < 1 {
		retryAfter = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

	body := rateLimitBody{
		Error:      "rate_limit_exceeded",
		Message:    "Too many requests. Please try again later.",
		Limit:      info.Limit,
		Remaining:  info.Remaining,
		RetryAfter: retryAfter,
	}
	if !info.ResetTime.IsZero() {
		body.ResetAt = info.ResetTime.UTC().Format(time.RFC3339)
	}
	s.jsonResponse(w, http.StatusTooManyRequests, body)
}

type healthResponse struct {
	Message  string   `json:"message"`
	Status   string   `json:"status"`
	Version  string   `json:"version"`
	Storage  string   `json:"storage"`
	Features []string `json:"features"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, healthResponse{
		Message:  "Skillbuddy Interview Prep API is running!",
		Status:   "healthy",
		Version:  Version,
		Storage:  s.storageMode,
		Features: features,
	})
}

// decodeJSON reads a JSON request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}
	return nil
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode response", zap.Error(err))
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// serviceError writes the status and public message for a service error.
func (s *Server) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logging.FromContext(r.Context(), s.logger).Error("request error",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	s.errorResponse(w, status, publicMessage(err))
}

// badRequest reports an undecodable body.
func (s *Server) badRequest(w http.ResponseWriter) {
	s.errorResponse(w, http.StatusBadRequest, msgInvalidBody)
}
