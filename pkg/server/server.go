package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/adfharrison1/hippodb/pkg/api"
	"github.com/adfharrison1/hippodb/pkg/domain"
)

// Server holds references to storage, router, etc.
type Server struct {
	router         *mux.Router
	dbEngine       domain.DatabaseEngine
	limiter        *rate.Limiter
	maxBatch       int
	metricsHandler http.Handler
	credentials    *Credentials
}

// ServerOption configures a Server
type ServerOption func(*Server)

// WithRateLimit limits the server to rps requests per second with the given
// burst. A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) ServerOption {
	return func(s *Server) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithMaxBatchSize caps the number of documents accepted by one batch insert.
func WithMaxBatchSize(n int) ServerOption {
	return func(s *Server) {
		s.maxBatch = n
	}
}

// WithMetricsHandler serves h on /metrics.
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(s *Server) {
		s.metricsHandler = h
	}
}

// WithAuth requires HTTP Basic credentials from creds on every route except
// /health and /info.
func WithAuth(creds *Credentials) ServerOption {
	return func(s *Server) {
		s.credentials = creds
	}
}

// NewServer creates a new instance of Server.
func NewServer(engine domain.DatabaseEngine, options ...ServerOption) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		dbEngine: engine,
		maxBatch: api.DefaultMaxBatchSize,
	}
	for _, option := range options {
		option(s)
	}

	// Define HTTP routes
	s.routes()

	// Use the logging middleware for all routes
	s.router.Use(requestLoggerMiddleware)
	if s.limiter != nil {
		s.router.Use(rateLimitMiddleware(s.limiter))
	}
	if s.credentials != nil {
		s.router.Use(authMiddleware(s.credentials))
	}

	// Customize NotFoundHandler to log 404s
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("WARN: No route found for %s %s", r.Method, r.URL.Path)
		api.WriteJSONError(w, http.StatusNotFound, "no route for "+r.Method+" "+r.URL.Path)
	})

	return s
}

// requestLoggerMiddleware logs the method, URL path, and duration for each request.
func requestLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		elapsed := time.Since(start)
		log.Printf("INFO: Request %s %s took %s", r.Method, r.URL.Path, elapsed)
	})
}

// rateLimitMiddleware rejects requests once the token bucket is empty.
func rateLimitMiddleware(limiter *rate.Limiter) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				log.Printf("WARN: Rate limit exceeded for %s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)
				w.Header().Set("Retry-After", "1")
				api.WriteJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Router exposes the internal mux.Router.
func (s *Server) Router() http.Handler {
	return s.router
}

// Engine returns the storage engine behind the server.
func (s *Server) Engine() domain.DatabaseEngine {
	return s.dbEngine
}

// routes defines all REST endpoints.
func (s *Server) routes() {
	handler := api.NewHandler(s.dbEngine, s.dbEngine, api.WithBatchLimit(s.maxBatch))
	handler.RegisterRoutes(s.router)

	if s.metricsHandler != nil {
		s.router.Handle("/metrics", s.metricsHandler).Methods("GET")
	}
}
