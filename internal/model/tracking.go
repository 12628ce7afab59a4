package model

import (
	"fmt"
	"time"
)

// RunState is the orchestrator lifecycle state
type RunState int

const (
	StateInit RunState = iota
	StateProducersRunning
	StateProducersDone
	StateConsumersRunning
	StateConsumersDone
	StateAggregated
	StateClosed
	StateFailed
)

var stateNames = map[RunState]string{
	StateInit:             "INIT",
	StateProducersRunning: "PRODUCERS_RUNNING",
	StateProducersDone:    "PRODUCERS_DONE",
	StateConsumersRunning: "CONSUMERS_RUNNING",
	StateConsumersDone:    "CONSUMERS_DONE",
	StateAggregated:       "AGGREGATED",
	StateClosed:           "CLOSED",
	StateFailed:           "FAILED",
}

func (s RunState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

func (s RunState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *RunState) UnmarshalText(text []byte) error {
	for state, name := range stateNames {
		if name == string(text) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown run state %q", text)
}

// StageMetrics tracks metrics for individual pipeline stages
type StageMetrics struct {
	StartTime        time.Time     `json:"start_time"`
	EndTime          *time.Time    `json:"end_time,omitempty"`
	Duration         time.Duration `json:"duration,omitempty"`
	RecordsProcessed int64         `json:"records_processed"`
	RecordsPerSecond float64       `json:"records_per_second"`
	ErrorCount       int64         `json:"error_count"`
	WorkerCount      int           `json:"worker_count"`
	Status           string        `json:"status"` // "running", "completed"
}

// ErrorDetail represents an error with context
type ErrorDetail struct {
	Timestamp    time.Time `json:"timestamp"`
	Stage        string    `json:"stage"`
	WorkerID     int       `json:"worker_id"`
	ErrorType    string    `json:"error_type"`
	ErrorMessage string    `json:"error_message"`
}

// RunMetrics tracks a whole run
type RunMetrics struct {
	StartTime time.Time     `json:"start_time"`
	EndTime   *time.Time    `json:"end_time,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
	Status    string        `json:"status"`

	ProductionMetrics  StageMetrics `json:"production_metrics"`
	ConsumptionMetrics StageMetrics `json:"consumption_metrics"`
	AggregationMetrics StageMetrics `json:"aggregation_metrics"`
	ExportMetrics      StageMetrics `json:"export_metrics"`

	RecordsProduced int64 `json:"records_produced"`
	RecordsConsumed int64 `json:"records_consumed"`
	ErrorCount      int64 `json:"error_count"`

	Errors []ErrorDetail `json:"errors"`
}
