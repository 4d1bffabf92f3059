// Package server exposes the figure pipeline over HTTP. It is a thin layer:
// request bodies are pipeline options, responses carry the rendered
// artifacts, and all defaulting and validation stays in the pipeline.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dnamaps/arlequin/pkg/buildinfo"
	apperrors "github.com/dnamaps/arlequin/pkg/errors"
	"github.com/dnamaps/arlequin/pkg/pipeline"
)

// maxBodyBytes bounds a figure request body. Option documents are small;
// anything larger is a mistake.
const maxBodyBytes = 1 << 20

// Server serves the figure rendering API.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	addr   string
}

// New creates a server around the given runner.
func New(runner *pipeline.Runner, logger *log.Logger, addr string) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, logger: logger, addr: addr}
}

// Handler builds the router. Exposed for tests.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealthz)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/figures", s.handleRenderFigure)
	})
	return r
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("listening", "addr", s.addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// figureResponse is the success body of POST /api/v1/figures. Artifact bytes
// are base64-encoded by encoding/json.
type figureResponse struct {
	RunID      string             `json:"run_id"`
	FigureHash string             `json:"figure_hash"`
	Artifacts  map[string][]byte  `json:"artifacts"`
	Stats      figureStats        `json:"stats"`
	Cache      pipeline.CacheInfo `json:"cache"`
}

type figureStats struct {
	RowCount     int   `json:"row_count"`
	LoadMillis   int64 `json:"load_ms"`
	LayoutMillis int64 `json:"layout_ms"`
	RenderMillis int64 `json:"render_ms"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) handleRenderFigure(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&opts); err != nil {
		s.writeError(w, http.StatusBadRequest, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "decode request"))
		return
	}
	opts.Logger = s.logger

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	s.writeJSON(w, http.StatusOK, figureResponse{
		RunID:      result.RunID,
		FigureHash: result.FigureHash,
		Artifacts:  result.Artifacts,
		Stats: figureStats{
			RowCount:     result.Stats.RowCount,
			LoadMillis:   result.Stats.LoadTime.Milliseconds(),
			LayoutMillis: result.Stats.LayoutTime.Milliseconds(),
			RenderMillis: result.Stats.RenderTime.Milliseconds(),
		},
		Cache: result.CacheInfo,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// statusFor maps the error taxonomy onto HTTP statuses: every defect in the
// caller's inputs is a 400-class response, everything else is a 500.
func statusFor(err error) int {
	code := apperrors.GetCode(err)
	switch {
	case code == apperrors.ErrCodeNotFound || code == apperrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case code == apperrors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	case apperrors.IsConfig(err), apperrors.IsDataMismatch(err), apperrors.IsShape(err):
		return http.StatusBadRequest
	case code == apperrors.ErrCodeInvalidInput,
		code == apperrors.ErrCodeInvalidFormat,
		code == apperrors.ErrCodeInvalidFigure:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{
		Error: apperrors.UserMessage(err),
		Code:  string(apperrors.GetCode(err)),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response", "err", err)
	}
}

// requestLogger logs one line per request with the chi request id.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}
