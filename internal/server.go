package internal

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kazz187/taskboard/internal/admin"
	"github.com/kazz187/taskboard/internal/config"
	"github.com/kazz187/taskboard/internal/event"
	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/clog"
)

const welcomeMessage = "Welcome to the taskboard API! The server is running."

type Server struct {
	mu          sync.Mutex
	server      *http.Server
	env         *config.Env
	taskServer  *task.Server
	eventServer *event.Server
	adminServer *admin.Server
}

func NewServer(
	env *config.Env,
	taskServer *task.Server,
	eventServer *event.Server,
	adminServer *admin.Server,
) *Server {
	return &Server{
		env:         env,
		taskServer:  taskServer,
		eventServer: eventServer,
		adminServer: adminServer,
	}
}

// Handler builds the full middleware and route tree.
func (s *Server) Handler() http.Handler {
	jsonMiddlewares := chi.Chain(
		clog.SlogChiMiddleware(clog.WithChiFilter(skipLiveness)),
		cerr.NewJSONResponseChiMiddleware(),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)

	r.Method(http.MethodGet, "/health", &HealthChecker{})
	// The event stream writes to the connection itself.
	r.With(clog.SlogChiMiddleware()).Method(http.MethodGet, "/api/events", s.eventServer)

	r.Group(func(r chi.Router) {
		r.Use(jsonMiddlewares...)
		r.Get("/", welcome)
		r.Route("/api/tasks", s.taskServer.Register)
		r.Route("/admin", s.adminServer.Register)
	})
	r.NotFound(jsonMiddlewares.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cerr.SetNewJSONError(r.Context(), cerr.NotFound, "not found", nil)
	}).ServeHTTP)
	r.MethodNotAllowed(jsonMiddlewares.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cerr.SetNewJSONError(r.Context(), cerr.MethodNotAllowed, "method not allowed", nil)
	}).ServeHTTP)

	return h2c.NewHandler(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}).Handler(s.apiKeyMiddleware(r)), &http2.Server{})
}

// ListenAndServe starts the HTTP server. ctx becomes the base context of
// every request, so cancelling it also ends open event streams.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := net.JoinHostPort(s.env.HTTPHost, s.env.HTTPPort)
	slog.Info("starting server", "addr", addr)

	srv := &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}
	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()
	if ctx.Err() != nil {
		return http.ErrServerClosed
	}
	return srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// skipLiveness keeps uptime checks against "/" out of the access log.
func skipLiveness(r *http.Request) bool {
	return !(r.Method == http.MethodGet && r.URL.Path == "/")
}

type HealthChecker struct{}

func (hc *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func welcome(_ http.ResponseWriter, r *http.Request) {
	cerr.SetJSONResponse(r.Context(), admin.MessageResponse{Message: welcomeMessage})
}

func (s *Server) apiKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip API key check for the welcome and health endpoints.
		if s.env.APIKey == "" || r.URL.Path == "/" || r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			apiKey = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		}
		if apiKey != s.env.APIKey {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":"unauthenticated","message":"unauthorized"}` + "\n"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
