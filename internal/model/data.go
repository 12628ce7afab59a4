package model

import (
	"fmt"
	"time"
)

// ResultLabel prefixes the single line written to the output sink
const ResultLabel = "Average"

// FormatResult renders the labelled result line with six decimal digits
func FormatResult(average float64) string {
	return fmt.Sprintf("%s: %.6f", ResultLabel, average)
}

// AggregateResult represents the final statistic of a run
type AggregateResult struct {
	TotalSum      int64   `json:"total_sum"`
	ExpectedCount int64   `json:"expected_count"`
	ConsumedCount int64   `json:"consumed_count"`
	Average       float64 `json:"average"`

	// Spread of the consumer partial sums, diagnostic only
	PartialMean   float64 `json:"partial_mean"`
	PartialStdDev float64 `json:"partial_stddev"`
}

// ExportResult represents the result of an export operation
type ExportResult struct {
	Type       string    `json:"type"` // "result", "summary"
	Path       string    `json:"path"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	ExportedAt time.Time `json:"exported_at"`
}

// RunSummary is everything a finished run reports
type RunSummary struct {
	RunID     string           `json:"run_id"`
	Spec      RunSpec          `json:"spec"`
	State     RunState         `json:"state"`
	Producers []ProducerResult `json:"producers"`
	Consumers []WorkerResult   `json:"consumers"`
	Aggregate *AggregateResult `json:"aggregate,omitempty"`
	Exports   []ExportResult   `json:"exports,omitempty"`
	Metrics   RunMetrics       `json:"metrics"`
}
