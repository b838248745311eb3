package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/trustscan-dev/trustscan/internal/adversarial"
	"github.com/trustscan-dev/trustscan/internal/batch"
	"github.com/trustscan-dev/trustscan/internal/database"
	"github.com/trustscan-dev/trustscan/internal/media"
	"github.com/trustscan-dev/trustscan/internal/model"
	"github.com/trustscan-dev/trustscan/internal/pipeline"
	"github.com/trustscan-dev/trustscan/internal/signal"
)

// AnalyzeFunc analyzes one input path. Injected so handler tests run
// without decoding real media.
type AnalyzeFunc func(ctx context.Context, path string, robustness bool) (*model.TrustReport, error)

// Server exposes the analysis engine over HTTP.
type Server struct {
	orchestrator *batch.Orchestrator
	db           *database.ResultDB
	logger       *slog.Logger
	analyze      AnalyzeFunc
}

// Option configures a Server.
type Option func(*Server)

// WithDatabase attaches a history database; history endpoints return 404
// without one.
func WithDatabase(db *database.ResultDB) Option {
	return func(s *Server) { s.db = db }
}

// WithAnalyzeFunc overrides the analysis entry point.
func WithAnalyzeFunc(fn AnalyzeFunc) Option {
	return func(s *Server) { s.analyze = fn }
}

// New creates an HTTP server over the given orchestrator.
func New(orchestrator *batch.Orchestrator, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		orchestrator: orchestrator,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.analyze == nil {
		s.analyze = func(ctx context.Context, path string, robustness bool) (*model.TrustReport, error) {
			return pipeline.Analyze(ctx, path, pipeline.Config{
				Robustness: robustness,
				Provenance: true,
				Logger:     logger,
			})
		}
	}
	return s
}

// Routes returns the chi router with all API endpoints mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/api/health", s.handleHealth)
	r.Post("/api/analyze", s.handleAnalyze)
	r.Post("/api/robustness", s.handleRobustness)
	r.Post("/api/batch", s.handleBatchCreate)
	r.Get("/api/batch/{id}", s.handleBatchStatus)
	r.Get("/api/history", s.handleHistory)
	return r
}

// ListenAndServe blocks serving the API on addr until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info("api server listening", slog.String("addr", addr))
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// analyzeRequest is the body of POST /api/analyze.
type analyzeRequest struct {
	// File is the path of the media file or frame directory to analyze.
	File string `json:"file"`

	// Robustness enables adversarial replay for this analysis.
	Robustness bool `json:"robustness,omitempty"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.File == "" {
		s.writeError(w, http.StatusBadRequest, "request must carry a non-empty file path")
		return
	}

	report, err := s.analyze(r.Context(), req.File, req.Robustness)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if s.db != nil {
		if err := s.db.SaveReport(r.Context(), report); err != nil {
			s.logger.Warn("failed to persist report",
				slog.String("file", req.File),
				slog.String("error", err.Error()))
		}
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleRobustness(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.File == "" {
		s.writeError(w, http.StatusBadRequest, "request must carry a non-empty file path")
		return
	}

	m, err := media.Load(req.File)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	vision := signal.NewVisionProvider()
	scoreFn := func(ctx context.Context, frames []media.Frame) (float64, error) {
		score, err := vision.Analyze(ctx, &media.Media{Frames: frames})
		if err != nil {
			return 0, err
		}
		return score.Value, nil
	}
	result, err := adversarial.NewTester(s.logger).Test(r.Context(), m.Frames, scoreFn)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// batchRequest is the body of POST /api/batch.
type batchRequest struct {
	// Files lists the inputs to analyze.
	Files []model.FileRef `json:"files"`

	// Robustness enables adversarial replay per file.
	Robustness bool `json:"robustness,omitempty"`
}

// batchResponse acknowledges an accepted batch job.
type batchResponse struct {
	JobID string `json:"job_id"`
}

func (s *Server) handleBatchCreate(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Shape validation happens before any job state exists.
	jobID, err := s.orchestrator.CreateJob(req.Files)
	if err != nil {
		if errors.Is(err, batch.ErrEmptyJob) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	analyze := func(ctx context.Context, file model.FileRef) (*model.TrustReport, error) {
		return s.analyze(ctx, file.Path, req.Robustness)
	}
	// The job outlives this request.
	if err := s.orchestrator.Submit(context.WithoutCancel(r.Context()), jobID, analyze); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusAccepted, batchResponse{JobID: jobID.String()})
}

func (s *Server) handleBatchStatus(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	job, err := s.orchestrator.Status(jobID)
	if err != nil {
		if errors.Is(err, batch.ErrJobNotFound) {
			s.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.writeError(w, http.StatusNotFound, "history persistence is disabled")
		return
	}
	history, err := s.db.GetReportHistory(r.Context(), r.URL.Query().Get("file"))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, history)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode response", slog.String("error", err.Error()))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
