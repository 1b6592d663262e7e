package http

import (
	"context"
	"io/fs"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"registros/internal/app"
	"registros/internal/log"
	"registros/internal/present"
	"registros/internal/slot"
	appweb "registros/web"
)

// Server is the browser surface of the ledger.
type Server struct {
	http.Server
	controller *app.Controller
	html       *present.HTML
	marker     string
	backend    slot.Pinger
	logger     *log.Logger

	rateLimiter *rateLimiter
	security    *securityMetrics
	appMetrics  *appMetrics

	shutdownOnce sync.Once
}

// appMetrics counts ledger actions served over HTTP.
type appMetrics struct {
	entriesAdded   int64
	entriesRemoved int64
	staleDeletes   int64
	clears         int64
	exports        int64
	uptime         time.Time
}

// NewServer configures routes, returning a ready-to-run http.Server.
// backend may be nil, in which case /readyz only checks the templates.
func NewServer(addr string, ctrl *app.Controller, html *present.HTML, marker string, backend slot.Pinger, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		controller:  ctrl,
		html:        html,
		marker:      marker,
		backend:     backend,
		logger:      logger.WithComponent(log.ComponentHTTP),
		rateLimiter: newRateLimiter(mutationLimit, mutationWindow),
		security:    &securityMetrics{},
		appMetrics:  &appMetrics{uptime: time.Now()},
	}

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
			static.ServeHTTP(w, r)
		}))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.withSecurityHeaders(routeIndex, s.handleIndex))
	mux.HandleFunc("POST /entries", s.withSecurityHeaders(routeCreate, s.handleCreateEntry))
	mux.HandleFunc("POST /entries/{position}/delete", s.withSecurityHeaders(routeDelete, s.handleDeleteEntry))
	mux.HandleFunc("POST /clear", s.withSecurityHeaders(routeClear, s.handleClear))
	mux.HandleFunc("GET /export", s.withSecurityHeaders(routeExport, s.handleExport))

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	s.Handler = withRequestID(
		log.Middleware(s.logger)(
			log.RequestIDMiddleware(requestIDOf)(
				s.watchRequests(mux))))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// watchRequests flags requests that look like scans or injection attempts,
// including the ones the mux answers 404, before routing them.
func (s *Server) watchRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reason := detectSuspiciousRequest(r); reason != "" {
			s.security.record(reason)
			ctx := r.Context()
			log.FromContext(ctx).WarnContext(ctx, "Suspicious request",
				"reason", reason, log.FieldClientIP, extractClientIP(r), log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path, log.FieldUserAgent, r.Header.Get("User-Agent"))
		}
		next.ServeHTTP(w, r)
	})
}

// withSecurityHeaders wraps a ledger route with request logging, security
// headers and, for the mutating routes, the per-client rate limit.
func (s *Server) withSecurityHeaders(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		logger := log.FromContext(ctx)
		events := log.NewStructuredLogger(logger)

		clientIP := extractClientIP(r)
		events.LogHTTPStart(ctx, r, clientIP)

		if mutatingRoutes[route] {
			if ok, retryAfter := s.rateLimiter.allow(clientIP, route); !ok {
				logger.WarnContext(ctx, "Rate limit exceeded",
					log.FieldClientIP, clientIP, log.FieldOperation, route, "retry_after", retryAfter.String())
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				events.LogHTTPEnd(ctx, r, http.StatusTooManyRequests, time.Since(start).Milliseconds(), clientIP)
				return
			}
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com 'unsafe-eval'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		events.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

const requestIDHeader = "X-Request-ID"

// withRequestID makes sure every request carries an ID and echoes it back.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := sanitizeRequestID(r.Header.Get(requestIDHeader))
		if id == "" {
			id = generateRequestID()
		}
		r.Header.Set(requestIDHeader, id)
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func requestIDOf(r *http.Request) string {
	return r.Header.Get(requestIDHeader)
}
