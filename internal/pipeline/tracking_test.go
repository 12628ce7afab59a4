package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-sample-pipeline/internal/logging"
	"go-sample-pipeline/internal/metrics"
	"go-sample-pipeline/internal/model"
)

func TestTrackerStages(t *testing.T) {
	tr := NewTracker("run-1", logging.NewNop(), metrics.New())

	tr.StartStage(StageProduction, 3)
	tr.EndStage(StageProduction, 1500)
	tr.StartStage(StageConsumption, 10)
	tr.RecordError(StageConsumption, 4, "transport", "short read")
	tr.EndStage(StageConsumption, 1490)
	tr.Complete()

	m := tr.GetMetrics()
	assert.Equal(t, "completed", m.Status)
	assert.Equal(t, int64(1500), m.RecordsProduced)
	assert.Equal(t, int64(1490), m.RecordsConsumed)
	assert.Equal(t, 3, m.ProductionMetrics.WorkerCount)
	assert.Equal(t, "completed", m.ConsumptionMetrics.Status)
	assert.Equal(t, int64(1), m.ConsumptionMetrics.ErrorCount)
	assert.Equal(t, int64(1), m.ErrorCount)
	require.Len(t, m.Errors, 1)
	assert.Equal(t, 4, m.Errors[0].WorkerID)
	assert.NotNil(t, m.EndTime)
}

func TestTrackerMetricsAreCopied(t *testing.T) {
	tr := NewTracker("run-2", logging.NewNop(), metrics.New())
	tr.RecordError(StageExport, -1, "output", "first")

	snapshot := tr.GetMetrics()
	tr.RecordError(StageExport, -1, "output", "second")

	assert.Len(t, snapshot.Errors, 1)
	assert.Len(t, tr.GetMetrics().Errors, 2)
}

func TestTrackerIgnoresUnknownStage(t *testing.T) {
	tr := NewTracker("run-3", logging.NewNop(), metrics.New())
	tr.StartStage("bogus", 1)
	tr.EndStage("bogus", 1)
	tr.Fail()

	assert.Equal(t, "failed", tr.GetMetrics().Status)
}

func TestFileSinkWritesLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.txt")
	require.NoError(t, FileSink{}.WriteLine(path, "Average: 1.000000"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Average: 1.000000\n", string(data))
}

func TestExporterResultFailure(t *testing.T) {
	e := &Exporter{
		RunID:  "run-4",
		Spec:   model.DefaultRunSpec(),
		Sink:   failingSink{},
		Logger: logging.NewNop(),
	}

	res, err := e.ExportResult(12.5)
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.KindOutput))
	assert.False(t, res.Success)
	assert.Equal(t, model.DefaultOutputFile, res.Path)
	assert.NotEmpty(t, res.Error)
}

func TestExporterSummaryToUnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	spec := model.DefaultRunSpec()
	spec.SummaryFile = filepath.Join(blocker, "summary.json")
	e := &Exporter{RunID: "run-5", Spec: spec, Sink: newMemSink(), Logger: logging.NewNop()}

	_, err := e.ExportSummary(&model.RunSummary{RunID: "run-5"})
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.KindOutput))
}
