package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/database"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/duel"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/handler"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/logger"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/metrics"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/sse"
)

// Options configures the HTTP surface
type Options struct {
	Port           int
	AdminAPIKey    string
	TrustedProxies []string
	// SSEKeepalive is the heartbeat interval of live event streams
	SSEKeepalive time.Duration
}

type Server struct {
	httpServer *http.Server
	hub        *sse.Hub
}

// NewServer creates a new Server instance
func NewServer(opts Options, dbPool database.Pool, duelService duel.Service, janitor handler.Nudger, hub *sse.Hub) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", opts.Port),
			Handler:           NewRouter(opts, dbPool, duelService, janitor, hub),
			ReadHeaderTimeout: ReadHeaderTimeout,
		},
		hub: hub,
	}
}

// NewRouter builds the chi router with the full middleware stack
func NewRouter(opts Options, dbPool database.Pool, duelService duel.Service, janitor handler.Nudger, hub *sse.Hub) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	// Chi middleware executes in order defined (outermost to innermost)
	detector := NewSuspiciousActivityDetector()

	r.Use(SecurityHeadersMiddleware())
	r.Use(AdminContextMiddleware(opts.AdminAPIKey))
	r.Use(SecurityLoggingMiddleware(opts.TrustedProxies, detector))
	r.Use(RequestSizeLimitMiddleware(MaxRequestBodyBytes))
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	// Health check routes (unversioned)
	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(dbPool))

	// Version endpoint (public, for deployment verification)
	r.Get("/version", handler.HandleVersion())

	// Metrics endpoint (public, for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	duelHandler := handler.NewDuelHandler(duelService, janitor)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/duels", func(r chi.Router) {
			r.Get("/", duelHandler.HandleList)
			r.Post("/", duelHandler.HandleChallenge)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", duelHandler.HandleGet)
				r.Post("/respond", duelHandler.HandleRespond)
				r.Post("/grounds", duelHandler.HandleGround)
				r.Post("/resign", duelHandler.HandleResign)
				r.Post("/timeout", duelHandler.HandleClaimTimeout)
				r.Get("/comments", duelHandler.HandleListComments)
				r.Post("/comments", duelHandler.HandleAddComment)

				// Live viewers
				r.Get("/events", sse.Handler(hub, duelService, opts.SSEKeepalive))
				r.Get("/ws", sse.WebSocketHandler(hub, duelService, opts.SSEKeepalive))
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(AuthMiddleware(opts.AdminAPIKey, opts.TrustedProxies, detector))
			r.Post("/duels/{id}/force-end", duelHandler.HandleForceEnd)
			r.Post("/duels/{id}/hide", duelHandler.HandleHide)
		})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	return r
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK, // default status
	}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Flush passes through so event streams are not buffered
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack passes through for WebSocket upgrades
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	rw.written = true
	rw.statusCode = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func isQuietPath(path string) bool {
	for _, p := range QuietPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		if isQuietPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		requestID := logger.GenerateRequestID()
		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		log := logger.FromContext(ctx)

		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength,
			"user_agent", r.UserAgent())

		sanitizedHeaders := make(http.Header)
		for k, v := range r.Header {
			if strings.EqualFold(k, HeaderAPIKey) || strings.EqualFold(k, HeaderAuthorization) {
				sanitizedHeaders[k] = []string{RedactedValue}
			} else {
				sanitizedHeaders[k] = v
			}
		}
		log.Debug(LogMsgRequestHeaders, "headers", sanitizedHeaders)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"duration", duration)
	})
}

// Start starts the server
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully. Live viewer streams are closed first so
// Shutdown does not wait on long-lived connections.
func (s *Server) Stop(ctx context.Context) error {
	if s.hub != nil {
		s.hub.Close()
	}
	return s.httpServer.Shutdown(ctx)
}
