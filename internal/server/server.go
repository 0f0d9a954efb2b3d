// Package server exposes the classification engine and batch orchestrator
// over HTTP for presentation layers that do not embed the CLI.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/payee-cli/internal/align"
	"github.com/sells-group/payee-cli/internal/batch"
	"github.com/sells-group/payee-cli/internal/classify"
	"github.com/sells-group/payee-cli/internal/model"
	"github.com/sells-group/payee-cli/internal/store"
)

// Server wires HTTP routes to the classifier and orchestrator.
type Server struct {
	classifier *classify.TieredClassifier
	runner     *classify.Runner
	orch       *batch.Orchestrator
	store      store.Store
}

// New builds a Server. store may be nil when persistence is disabled.
func New(classifier *classify.TieredClassifier, runner *classify.Runner, orch *batch.Orchestrator, st store.Store) *Server {
	return &Server{classifier: classifier, runner: runner, orch: orch, store: st}
}

// Router assembles the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/classify", s.handleClassify)
	r.Post("/classify/batch", s.handleClassifyBatch)

	r.Route("/jobs", func(r chi.Router) {
		r.Post("/", s.handleSubmitJob)
		r.Get("/", s.handleListJobs)
		r.Get("/{jobID}", s.handlePollJob)
		r.Get("/{jobID}/results", s.handleJobResults)
		r.Post("/{jobID}/cancel", s.handleCancelJob)
		r.Delete("/{jobID}", s.handleDeleteJob)
	})

	return r
}

// ListenAndServe runs the server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	zap.L().Info("starting server", zap.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server listen")
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result := s.classifier.Classify(r.Context(), req.Name)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleClassifyBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Names []string `json:"names"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Names) == 0 {
		writeError(w, http.StatusBadRequest, "names is required")
		return
	}

	names := make([]model.RawName, len(req.Names))
	for i, n := range req.Names {
		names[i] = model.RawName{Text: n, OriginRowIndex: i}
	}

	results, err := s.runner.Run(r.Context(), names, nil)
	if err != nil {
		zap.L().Error("classify batch failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Names   []string            `json:"names"`
		RowData []map[string]string `json:"row_data,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Names) == 0 {
		writeError(w, http.StatusBadRequest, "names is required")
		return
	}
	if len(req.RowData) > 0 && len(req.RowData) != len(req.Names) {
		writeError(w, http.StatusBadRequest, "row_data length must match names")
		return
	}

	names := make([]model.RawName, len(req.Names))
	for i, n := range req.Names {
		names[i] = model.RawName{Text: n, OriginRowIndex: i}
	}

	job, err := s.orch.Submit(r.Context(), names, req.RowData)
	if err != nil {
		zap.L().Error("submit job failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusOK, map[string]any{"jobs": []model.BatchJobRecord{}})
		return
	}

	filter := store.JobFilter{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = model.JobStatus(status)
	}

	jobs, err := s.store.ListJobs(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if jobs == nil {
		jobs = []model.BatchJobRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

func (s *Server) handlePollJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job, err := s.orch.Poll(r.Context(), jobID)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleJobResults(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if s.store == nil {
		writeError(w, http.StatusNotFound, "job tracking is disabled")
		return
	}

	record, err := s.store.GetJob(r.Context(), jobID)
	if err != nil {
		if store.IsNotFound(err) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	results, err := s.orch.RetrieveResults(r.Context(), jobID, record.PayeeNames)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		rows, err := align.Merge(record.OriginalRowData, results)
		if err != nil {
			// Alignment violations must block the export, never degrade it.
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", jobID))
		if err := align.WriteCSV(w, rows); err != nil {
			zap.L().Error("csv export failed", zap.String("job_id", jobID), zap.Error(err))
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job, err := s.orch.Cancel(r.Context(), jobID)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if s.store == nil {
		writeError(w, http.StatusNotFound, "job tracking is disabled")
		return
	}
	if err := s.store.DeleteJob(r.Context(), jobID); err != nil {
		if store.IsNotFound(err) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
