package pipeline

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"go-sample-pipeline/internal/logging"
	"go-sample-pipeline/internal/metrics"
	"go-sample-pipeline/internal/model"
)

// Stage names used by the tracker
const (
	StageProduction  = "production"
	StageConsumption = "consumption"
	StageAggregation = "aggregation"
	StageExport      = "export"
)

// Tracker records stage timings and errors of a single run
type Tracker struct {
	RunID   string
	metrics model.RunMetrics
	mu      sync.RWMutex
	logger  *logging.Logger
	prom    *metrics.Metrics
}

// NewTracker creates a tracker for one run
func NewTracker(runID string, logger *logging.Logger, prom *metrics.Metrics) *Tracker {
	return &Tracker{
		RunID:  runID,
		logger: logger,
		prom:   prom,
		metrics: model.RunMetrics{
			StartTime: time.Now(),
			Status:    "initializing",
			Errors:    make([]model.ErrorDetail, 0),
		},
	}
}

func (t *Tracker) stage(name string) *model.StageMetrics {
	switch name {
	case StageProduction:
		return &t.metrics.ProductionMetrics
	case StageConsumption:
		return &t.metrics.ConsumptionMetrics
	case StageAggregation:
		return &t.metrics.AggregationMetrics
	case StageExport:
		return &t.metrics.ExportMetrics
	}
	return nil
}

// StartStage marks the start of a pipeline stage
func (t *Tracker) StartStage(name string, workerCount int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.stage(name)
	if s == nil {
		return
	}
	s.StartTime = time.Now()
	s.WorkerCount = workerCount
	s.Status = "running"
	t.metrics.Status = name

	t.logger.Info("stage started", zap.String("stage", name), zap.Int("workers", workerCount))
}

// EndStage marks the end of a pipeline stage
func (t *Tracker) EndStage(name string, recordsProcessed int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.stage(name)
	if s == nil {
		return
	}
	now := time.Now()
	s.EndTime = &now
	s.Duration = now.Sub(s.StartTime)
	s.RecordsProcessed = recordsProcessed
	s.Status = "completed"
	if s.Duration > 0 && recordsProcessed > 0 {
		s.RecordsPerSecond = float64(recordsProcessed) / s.Duration.Seconds()
	}

	switch name {
	case StageProduction:
		t.metrics.RecordsProduced = recordsProcessed
	case StageConsumption:
		t.metrics.RecordsConsumed = recordsProcessed
	}

	t.prom.ObserveStage(name, s.Duration)
	t.logger.Info("stage completed",
		zap.String("stage", name),
		zap.Int64("records", recordsProcessed),
		zap.Duration("duration", s.Duration))
}

// RecordError records a worker or stage error with its context
func (t *Tracker) RecordError(stage string, workerID int, errorType, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.metrics.Errors = append(t.metrics.Errors, model.ErrorDetail{
		Timestamp:    time.Now(),
		Stage:        stage,
		WorkerID:     workerID,
		ErrorType:    errorType,
		ErrorMessage: message,
	})
	t.metrics.ErrorCount++
	if s := t.stage(stage); s != nil {
		s.ErrorCount++
	}
}

// Complete marks the run as completed
func (t *Tracker) Complete() {
	t.finish("completed")
}

// Fail marks the run as failed
func (t *Tracker) Fail() {
	t.finish("failed")
}

func (t *Tracker) finish(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	t.metrics.EndTime = &now
	t.metrics.Status = status
	t.metrics.Duration = now.Sub(t.metrics.StartTime)

	t.prom.RunFinished(status, t.metrics.Duration)
	t.logger.Info("run finished",
		zap.String("status", status),
		zap.Duration("duration", t.metrics.Duration),
		zap.Int64("produced", t.metrics.RecordsProduced),
		zap.Int64("consumed", t.metrics.RecordsConsumed),
		zap.Int64("errors", t.metrics.ErrorCount))
}

// GetMetrics returns a copy of the current run metrics
func (t *Tracker) GetMetrics() model.RunMetrics {
	t.mu.RLock()
	defer t.mu.RUnlock()

	metrics := t.metrics
	metrics.Errors = append([]model.ErrorDetail(nil), t.metrics.Errors...)
	return metrics
}
