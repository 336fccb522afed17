package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"kassza/internal/cache"
	"kassza/internal/log"
	"kassza/internal/rates"
	"kassza/internal/services"
)

type Server struct {
	http.Server
	ledger      *services.LedgerService
	reports     *services.ReportService
	rates       *rates.Client
	logger      *log.Logger
	rateLimiter *rateLimiter
	recentLimit int

	// Dashboard responses cached per month; mutations clear the cache.
	dashCache *cache.LRU[dashboardResponse]

	// Cache cleanup management
	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server. ratesClient may be nil when no exchange-rate source is
// configured.
func NewServer(addr string, ledger *services.LedgerService, reports *services.ReportService, ratesClient *rates.Client, logger *log.Logger, recentLimit int) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		ledger:           ledger,
		reports:          reports,
		rates:            ratesClient,
		logger:           logger.WithComponent(log.ComponentHTTP),
		rateLimiter:      newRateLimiter(),
		recentLimit:      recentLimit,
		dashCache:        cache.NewLRU[dashboardResponse](100, 5*time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}

	// Start periodic cache cleanup
	go s.startCacheCleanup()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/dashboard", s.middleware(s.handleDashboard))

	mux.HandleFunc("GET /api/transactions", s.middleware(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.middleware(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions/{id}", s.middleware(s.handleGetTransaction))
	mux.HandleFunc("PATCH /api/transactions/{id}", s.middleware(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.middleware(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/categories", s.middleware(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.middleware(s.handleCreateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.middleware(s.handleDeleteCategory))

	return s
}

// middleware adds security headers, rate limiting, and request logging.
func (s *Server) middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := clientIP(r)
		requestID := generateRequestID()

		logger := s.logger.With(
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
		)

		// Rate limit mutations only; dashboard reads stay cheap.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			logger.Warn("Rate limit exceeded", log.FieldClientIP, clientIP)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		logger.Info("Request completed",
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, clientIP)
	}
}

// clientIP extracts the client IP, honoring proxy headers.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		if idx := strings.IndexByte(ip, ','); idx >= 0 {
			ip = ip[:idx]
		}
		return strings.TrimSpace(ip)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// startCacheCleanup runs periodic cleanup for the dashboard cache.
func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cleaned := s.dashCache.CleanExpired(); cleaned > 0 {
				s.logger.Debug("Cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// invalidateDashboard drops all cached dashboard responses. Called after
// every mutation so reports never serve stale aggregates.
func (s *Server) invalidateDashboard() {
	s.dashCache.Clear()
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// Storage is the only hard dependency.
	if _, err := s.ledger.ListCategories(r.Context()); err != nil {
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
