// Package api serves transcripts over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ccollicutt/wareader/pkg/config"
	"github.com/ccollicutt/wareader/pkg/output"
	"github.com/ccollicutt/wareader/pkg/parser"
	"github.com/ccollicutt/wareader/pkg/store"
)

// Options configures the server.
type Options struct {
	// Listen is the host:port to bind.
	Listen string

	// MaxBodyBytes caps uploaded exports.
	MaxBodyBytes int64

	// SystemPhrases are the notice phrases used when parsing uploads.
	SystemPhrases []string

	// Colors overrides the participant palette.
	Colors []string

	// Store enables the transcript endpoints. It may be nil.
	Store store.Store

	Logger *slog.Logger
}

type Server struct {
	router *chi.Mux
	opts   Options
	parser *parser.Parser
	logger *slog.Logger
}

// NewServer builds the router.
func NewServer(opts Options) *Server {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = config.DefaultMaxBodyBytes
	}
	if opts.Listen == "" {
		opts.Listen = config.DefaultListen
	}
	if len(opts.SystemPhrases) == 0 {
		opts.SystemPhrases = parser.DefaultSystemPhrases
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		opts:   opts,
		parser: parser.New(parser.WithSystemPhrases(opts.SystemPhrases)),
		logger: logger.With("component", "api"),
	}

	router.Get("/health", s.health)
	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/parse", s.parse)
		r.Route("/transcripts", func(r chi.Router) {
			r.Use(s.requireStore)
			r.Get("/", s.listTranscripts)
			r.Get("/{id}", s.getTranscript)
			r.Delete("/{id}", s.deleteTranscript)
		})
	})

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Listen,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server starting", "addr", s.opts.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("API server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parse handles POST /api/v1/parse. The body is the export text. Query
// parameters: self, source, format (json|text|markdown) and save=true to
// keep the transcript when a store is configured.
func (s *Server) parse(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")
	if source == "" {
		source = "upload"
	}

	start := time.Now()
	body := http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	t, err := s.parser.Parse(r.Context(), body, source)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "export exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
		case errors.Is(err, parser.ErrUnreadableInput):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	elapsed := time.Since(start)

	var id string
	if save, _ := strconv.ParseBool(r.URL.Query().Get("save")); save {
		if s.opts.Store == nil {
			writeError(w, http.StatusServiceUnavailable, "no transcript store configured")
			return
		}
		if id, err = s.opts.Store.Save(r.Context(), t); err != nil {
			s.logger.ErrorContext(r.Context(), "Failed to save transcript", "source", source, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to save transcript")
			return
		}
	}

	s.logger.DebugContext(r.Context(), "Parsed upload", "source", source, "records", len(t.Records), "duration", elapsed)
	s.respond(w, r, t, output.ReportOptions{ID: id, Duration: elapsed})
}

func (s *Server) listTranscripts(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.opts.Store.List(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to list transcripts", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list transcripts")
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) getTranscript(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, err := s.opts.Store.Load(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "transcript "+id+" not found")
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to load transcript", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load transcript")
		return
	}
	s.respond(w, r, t, output.ReportOptions{ID: id})
}

func (s *Server) deleteTranscript(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.opts.Store.Delete(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "transcript "+id+" not found")
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to delete transcript", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete transcript")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// respond renders t for the self and format query parameters.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, t *parser.Transcript, opts output.ReportOptions) {
	opts.Self = r.URL.Query().Get("self")
	opts.Colors = s.opts.Colors

	report, err := output.NewReport(r.Context(), t, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" || format == "json" {
		writeJSON(w, http.StatusOK, report)
		return
	}

	formatter, err := output.New(format, output.FormatOptions{})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	contentType := "text/plain; charset=utf-8"
	if formatter.Name() == "markdown" {
		contentType = "text/markdown; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if err := formatter.Format(r.Context(), report, w); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to write response", "error", err)
	}
}

func (s *Server) requireStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.Store == nil {
			writeError(w, http.StatusServiceUnavailable, "no transcript store configured")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
