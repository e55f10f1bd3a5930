// Package server exposes a Client over a small JSON API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ZaguanLabs/agrivaani"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

// DefaultMaxUpload caps the size of uploaded ASR audio.
const DefaultMaxUpload = 20 << 20

// Server routes API requests to a Client.
type Server struct {
	client     *agrivaani.Client
	themes     *agrivaani.ThemeStore
	logger     *zap.Logger
	origins    []string
	rateLimit  int
	rateWindow time.Duration
	maxUpload  int64
	router     chi.Router
}

// Option is a functional option for configuring the Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithThemeStore persists theme changes made through the API.
func WithThemeStore(store *agrivaani.ThemeStore) Option {
	return func(s *Server) {
		s.themes = store
	}
}

// WithAllowedOrigins sets the CORS allowed origins (default: "*").
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

// WithRateLimit limits API requests per client IP. Zero disables limiting.
func WithRateLimit(requests int, window time.Duration) Option {
	return func(s *Server) {
		s.rateLimit = requests
		s.rateWindow = window
	}
}

// WithMaxUpload sets the maximum accepted ASR upload size in bytes.
func WithMaxUpload(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// New creates a Server for client.
func New(client *agrivaani.Client, opts ...Option) *Server {
	s := &Server{
		client:     client,
		logger:     zap.NewNop(),
		origins:    []string{"*"},
		rateWindow: time.Minute,
		maxUpload:  DefaultMaxUpload,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.themes != nil {
		client.State().SetTheme(s.themes.Load())
	}

	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(api chi.Router) {
		if s.rateLimit > 0 {
			api.Use(httprate.LimitByIP(s.rateLimit, s.rateWindow))
		}

		api.Get("/languages", s.handleLanguages)
		api.Get("/version", s.handleVersion)
		api.Post("/translate", s.handleTranslate)
		api.Post("/tts", s.handleSpeech)
		api.Get("/audio/{id}", s.handleGetAudio)
		api.Delete("/audio/{id}", s.handleDeleteAudio)
		api.Post("/asr", s.handleTranscribe)
		api.Get("/status", s.handleStatus)
		api.Get("/state", s.handleState)
		api.Get("/theme", s.handleGetTheme)
		api.Put("/theme", s.handlePutTheme)
	})

	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.client.State().Close()

	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
