package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"prescripto-backend/internal/config"
	"prescripto-backend/internal/httpx"
)

// RootMessage is the body of GET /.
const RootMessage = "API is running GOOD"

// Mount prefixes for the three route collaborators.
const (
	AdminPrefix  = "/api/admin"
	DoctorPrefix = "/api/doctor"
	UserPrefix   = "/api/user"
)

type Config struct {
	Addr      string // e.g. ":5000"
	CORS      config.CORSConfig
	BodyLimit int64
	RateLimit int // requests per minute per client IP; 0 disables
	Logger    *zap.Logger

	Admin  http.Handler
	Doctor http.Handler
	User   http.Handler

	// Checks back GET /health.
	Checks []Check
}

type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	limiter    *rateLimiter
	metrics    *Metrics
	checks     []Check
}

func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		logger:  logger,
		metrics: &Metrics{started: time.Now()},
		checks:  cfg.Checks,
	}

	r := chi.NewRouter()

	// requestID -> access log -> recover -> headers -> CORS -> rate limit -> JSON body -> routes.
	// Rejections from the rate limiter and body parser carry CORS headers.
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger, s.metrics))
	r.Use(middleware.Recoverer)
	r.Use(securityHeadersMiddleware)
	r.Use(corsMiddleware(cfg.CORS))
	if cfg.RateLimit > 0 {
		s.limiter = newRateLimiter(cfg.RateLimit, time.Minute)
		r.Use(s.limiter.middleware)
	}
	r.Use(httpx.JSONBody(cfg.BodyLimit))

	r.Get("/", handleRoot)
	r.Get("/health", s.HandleHealth)

	mount(r, AdminPrefix, cfg.Admin)
	mount(r, DoctorPrefix, cfg.Doctor)
	mount(r, UserPrefix, cfg.User)

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func mount(r chi.Router, prefix string, h http.Handler) {
	if h == nil {
		return
	}
	r.Mount(prefix, h)
}

func handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(RootMessage))
}

// Handler returns the composed handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start binds the listening socket and serves until Shutdown. A bind failure
// is returned before anything is logged as started.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("server started", zap.String("addr", ln.Addr().String()))
	return s.httpServer.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.stop()
	}
	return s.httpServer.Shutdown(ctx)
}
