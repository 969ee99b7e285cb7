// Package server exposes the assistant over a JSON HTTP API.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Veraticus/trash-scanner/internal/assistant"
	"github.com/Veraticus/trash-scanner/internal/chat"
	"github.com/Veraticus/trash-scanner/internal/i18n"
	"github.com/Veraticus/trash-scanner/internal/model"
)

// maxUploadBytes caps analyze uploads.
const maxUploadBytes = 10 << 20

// Options configures the HTTP server.
type Options struct {
	// TLS, when set, serves HTTPS. Browsers on other devices only grant
	// camera access to secure origins.
	TLS            *tls.Config
	Addr           string
	AllowedOrigins []string
	RequestTimeout time.Duration
	// ChatTTL drops conversations idle for longer; MaxChats caps how many
	// are kept.
	ChatTTL  time.Duration
	MaxChats int
}

// Server serves the API for one App.
type Server struct {
	app     *assistant.App
	logger  *slog.Logger
	locales map[model.Language]*i18n.Localizer
	chats   *chatRegistry
	router  chi.Router
	opts    Options
}

// New builds the router. Error messages are rendered from the embedded
// dictionaries in the caller's language.
func New(ctx context.Context, app *assistant.App, opts Options, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 90 * time.Second
	}

	s := &Server{
		app:     app,
		logger:  logger,
		locales: make(map[model.Language]*i18n.Localizer),
		chats:   newChatRegistry(app.Clock(), opts.ChatTTL, opts.MaxChats),
		opts:    opts,
	}
	for _, lang := range model.Languages() {
		loc := i18n.New(i18n.EmbeddedLoader{}, i18n.WithLogger(logger))
		if err := loc.Load(ctx, lang); err != nil {
			return nil, fmt.Errorf("failed to load %s dictionary: %w", lang, err)
		}
		s.locales[lang] = loc
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.opts.RequestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Content-Type"},
		ExposedHeaders:   []string{"Content-Language"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/locales/{lang}.json", s.handleLocale)

		r.Get("/profile", s.handleGetProfile)
		r.Put("/profile", s.handlePutProfile)
		r.Post("/setup", s.handleSetup)
		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handlePutSettings)
		r.Post("/reset", s.handleReset)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSetup)

			r.Post("/analyze", s.handleAnalyze)
			r.Post("/search", s.handleSearch)
			r.Get("/search/suggestions", s.handleSuggestions)
			r.Post("/quiz", s.handleQuiz)

			r.Route("/chats", func(r chi.Router) {
				r.Post("/", s.handleCreateChat)
				r.Get("/{id}", s.handleGetChat)
				r.Post("/{id}/messages", s.handleSendChat)
			})

			r.Post("/feedback", s.handleCreateFeedback)
			r.Get("/feedback", s.handleListFeedback)
		})
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		TLSConfig:         s.opts.TLS,
	}

	errCh := make(chan error, 1)
	go func() {
		if srv.TLSConfig != nil {
			s.logger.Info("https server listening", "addr", s.opts.Addr)
			errCh <- srv.ListenAndServeTLS("", "")
			return
		}
		s.logger.Info("http server listening", "addr", s.opts.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	}
}

// requestLogger logs each request with slog.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// requireSetup rejects classification endpoints until onboarding is done.
func (s *Server) requireSetup(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.app.SetupComplete() {
			s.fail(w, r, http.StatusConflict, "error.setup", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// language picks the response language: ?lang, then Accept-Language, then
// the saved setting.
func (s *Server) language(r *http.Request) model.Language {
	if lang, ok := model.ParseLanguage(r.URL.Query().Get("lang")); ok {
		return lang
	}
	if header := r.Header.Get("Accept-Language"); header != "" {
		return i18n.Match(header)
	}
	return s.app.Settings().Language
}

func (s *Server) localizer(r *http.Request) *i18n.Localizer {
	return s.locales[s.language(r)]
}

func (s *Server) conversation(id string) (*chat.Conversation, bool) {
	return s.chats.get(id)
}
