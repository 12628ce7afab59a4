package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-sample-pipeline/internal/logging"
	"go-sample-pipeline/internal/metrics"
	"go-sample-pipeline/internal/model"
	"go-sample-pipeline/internal/pipeline"
	"go-sample-pipeline/internal/store"
	"go-sample-pipeline/pkg/utils"
)

const runsPrefix = "/api/v1/runs/"

// Handler serves the run API
type Handler struct {
	Store    *store.Store
	Outputs  *utils.OutputManager
	Logger   *logging.Logger
	Metrics  *metrics.Metrics
	Defaults model.RunSpec

	ctx context.Context
	wg  sync.WaitGroup
}

// New creates a handler. Runs started through it inherit ctx.
func New(ctx context.Context, s *store.Store, outputs *utils.OutputManager, logger *logging.Logger, m *metrics.Metrics, defaults model.RunSpec) *Handler {
	return &Handler{
		Store:    s,
		Outputs:  outputs,
		Logger:   logger,
		Metrics:  m,
		Defaults: defaults,
		ctx:      ctx,
	}
}

// Wait blocks until every run started by the handler finished
func (h *Handler) Wait() {
	h.wg.Wait()
}

// CreateRun validates a run configuration and starts it asynchronously
// @Summary Start a run
// @Description Start a producer/consumer run. Fields left out of the body keep the server defaults.
// @Tags runs
// @Accept json
// @Produce json
// @Param run body model.RunSpec false "Run configuration"
// @Success 202 {object} map[string]interface{} "Run accepted"
// @Failure 400 {string} string "Invalid configuration"
// @Failure 500 {string} string "Internal server error"
// @Router /runs [post]
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	spec := h.Defaults
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := sonic.Unmarshal(body, &spec); err != nil {
			http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
			return
		}
	}

	// 1. Validate payload
	if err := spec.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// 2. Generate run ID and place outputs under it
	runID := uuid.New().String()
	if spec.OutputFile, err = h.Outputs.GetOutputFilePath(runID, spec.OutputFile); err != nil {
		http.Error(w, "Failed to prepare output directory", http.StatusInternalServerError)
		return
	}
	if spec.SummaryFile != "" {
		if spec.SummaryFile, err = h.Outputs.GetOutputFilePath(runID, spec.SummaryFile); err != nil {
			http.Error(w, "Failed to prepare output directory", http.StatusInternalServerError)
			return
		}
	}

	// 3. Save run to DB
	if err := h.Store.SaveRun(runID, spec); err != nil {
		h.Logger.Error("failed to save run", zap.String("run_id", runID), zap.Error(err))
		http.Error(w, "Failed to save run", http.StatusInternalServerError)
		return
	}

	// 4. Start run asynchronously
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.execute(runID, spec)
	}()

	// 5. Return response
	h.writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"message":   "Run started",
		"runID":     runID,
		"status":    store.StatusPending,
		"createdAt": time.Now().UTC(),
		"links": map[string]string{
			"self":    runsPrefix + runID,
			"results": runsPrefix + runID + "/results",
			"output":  h.Outputs.GetDownloadURL(runID, spec.OutputFile),
		},
	})
}

func (h *Handler) execute(runID string, spec model.RunSpec) {
	logger := h.Logger.Run(runID)
	if err := h.Store.UpdateRunStatus(runID, store.StatusRunning); err != nil {
		logger.Warn("failed to mark run as running", zap.Error(err))
	}

	summary, runErr := pipeline.Run(h.ctx, runID, spec,
		pipeline.WithLogger(h.Logger),
		pipeline.WithMetrics(h.Metrics))

	// the summary already carries runErr among its tracked errors
	if err := h.Store.SaveRunSummary(summary); err != nil {
		logger.Error("failed to save run summary", zap.Error(err))
		if err := h.Store.SaveRunError(runID, "run", runErr); err != nil {
			logger.Error("failed to save run error", zap.Error(err))
		}
	}

	status := store.StatusCompleted
	if runErr != nil {
		status = store.StatusFailed
	}
	if err := h.Store.UpdateRunStatus(runID, status); err != nil {
		logger.Error("failed to update run status", zap.Error(err))
	}
}

// ListRuns retrieves all runs
// @Summary List runs
// @Description Get every run with its configuration and status, newest first
// @Tags runs
// @Produce json
// @Success 200 {array} store.RunRecord "List of runs"
// @Failure 500 {string} string "Internal server error"
// @Router /runs [get]
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Store.ListRuns()
	if err != nil {
		http.Error(w, "Failed to fetch runs", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, runs)
}

// GetRun retrieves a single run
// @Summary Get run
// @Description Retrieve the configuration and status of a run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} store.RunRecord "Run details"
// @Failure 400 {string} string "Invalid run ID"
// @Failure 404 {string} string "Run not found"
// @Router /runs/{id} [get]
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	runID, ok := pathParam(r.URL.Path, runsPrefix, "")
	if !ok {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}

	run, err := h.Store.GetRun(runID)
	if err != nil {
		h.storeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, run)
}

// GetRunResults retrieves the aggregate of a finished run
// @Summary Get run results
// @Description Retrieve the average and partial-sum statistics of a run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} store.RunResult "Run results"
// @Failure 400 {string} string "Invalid run ID"
// @Failure 404 {string} string "No results for run"
// @Router /runs/{id}/results [get]
func (h *Handler) GetRunResults(w http.ResponseWriter, r *http.Request) {
	runID, ok := pathParam(r.URL.Path, runsPrefix, "/results")
	if !ok {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}

	result, err := h.Store.GetRunResult(runID)
	if err != nil {
		h.storeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// GetRunErrors retrieves errors for a run
// @Summary Get run errors
// @Description Retrieve every worker and run error recorded for a run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run errors"
// @Failure 400 {string} string "Invalid run ID"
// @Failure 500 {string} string "Internal server error"
// @Router /runs/{id}/errors [get]
func (h *Handler) GetRunErrors(w http.ResponseWriter, r *http.Request) {
	runID, ok := pathParam(r.URL.Path, runsPrefix, "/errors")
	if !ok {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}

	errs, err := h.Store.GetRunErrors(runID)
	if err != nil {
		http.Error(w, "Failed to retrieve errors", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id": runID,
		"errors": errs,
		"count":  len(errs),
	})
}

// GetRunWorkers retrieves per-worker outcomes of a run
// @Summary Get run workers
// @Description Retrieve what every producer wrote and every consumer read
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Worker results"
// @Failure 400 {string} string "Invalid run ID"
// @Failure 500 {string} string "Internal server error"
// @Router /runs/{id}/workers [get]
func (h *Handler) GetRunWorkers(w http.ResponseWriter, r *http.Request) {
	runID, ok := pathParam(r.URL.Path, runsPrefix, "/workers")
	if !ok {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}

	workers, err := h.Store.GetWorkerResults(runID)
	if err != nil {
		http.Error(w, "Failed to retrieve worker results", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":  runID,
		"workers": workers,
		"count":   len(workers),
	})
}

// DeleteRun deletes a run and its output files
// @Summary Delete run
// @Description Delete a run, its stored results and its output files
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run deleted"
// @Failure 400 {string} string "Invalid run ID"
// @Failure 404 {string} string "Run not found"
// @Failure 500 {string} string "Internal server error"
// @Router /runs/{id} [delete]
func (h *Handler) DeleteRun(w http.ResponseWriter, r *http.Request) {
	runID, ok := pathParam(r.URL.Path, runsPrefix, "")
	if !ok {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}

	run, err := h.Store.GetRun(runID)
	if err != nil {
		h.storeError(w, err)
		return
	}
	if run.Status == store.StatusPending || run.Status == store.StatusRunning {
		http.Error(w, "Run is still in progress", http.StatusConflict)
		return
	}

	if err := h.Outputs.RemoveRunDir(runID); err != nil {
		h.Logger.Warn("failed to delete run directory", zap.String("run_id", runID), zap.Error(err))
	}
	if err := h.Store.DeleteRun(runID); err != nil {
		h.storeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Run and all outputs deleted successfully",
		"run_id":  runID,
	})
}

// DownloadFile serves an output file of a run
// @Summary Download file
// @Description Download the result or summary file of a run
// @Tags files
// @Produce json,plain,application/octet-stream
// @Param runID path string true "Run ID"
// @Param filename path string true "File name"
// @Success 200 {file} file "File download"
// @Failure 400 {string} string "Invalid URL format"
// @Failure 404 {string} string "File not found"
// @Router /download/{runID}/{filename} [get]
func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	// URL format: /api/v1/download/runID/filename
	pathParts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(pathParts) != 5 {
		http.Error(w, fmt.Sprintf("Invalid URL format. Expected 5 parts, got %d", len(pathParts)), http.StatusBadRequest)
		return
	}
	runID, fileName := pathParts[3], pathParts[4]

	filePath, err := h.Outputs.ResolveFile(runID, fileName)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(filePath)))
	w.Header().Set("Content-Type", contentType(h.Outputs.GetFileType(filePath)))
	http.ServeFile(w, r, filePath)
}

func (h *Handler) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}
	h.Logger.Error("store query failed", zap.Error(err))
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func contentType(fileType string) string {
	switch fileType {
	case "json":
		return "application/json"
	case "text":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// pathParam extracts the id between prefix and suffix
func pathParam(path, prefix, suffix string) (string, bool) {
	if len(path) < len(prefix)+len(suffix) || !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		return "", false
	}
	id := path[len(prefix) : len(path)-len(suffix)]
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := sonic.ConfigStd.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Error("failed to encode response", zap.Int("status", status), zap.Error(err))
	}
}
