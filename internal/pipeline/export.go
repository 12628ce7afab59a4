package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"go-sample-pipeline/internal/logging"
	"go-sample-pipeline/internal/model"
)

// Sink writes one line of text to a named file
type Sink interface {
	WriteLine(name, line string) error
}

// FileSink is the default Sink, backed by the local filesystem
type FileSink struct{}

// WriteLine replaces the contents of name with line and a trailing newline
func (FileSink) WriteLine(name, line string) error {
	return writeFile(name, []byte(line+"\n"))
}

// Exporter handles the output of a finished run
type Exporter struct {
	RunID  string
	Spec   model.RunSpec
	Sink   Sink
	Logger *logging.Logger
}

// ExportResult hands the average to the sink. On failure the average is
// still logged so the result is not lost.
func (e *Exporter) ExportResult(average float64) (model.ExportResult, error) {
	line := model.FormatResult(average)
	result := model.ExportResult{
		Type:       "result",
		Path:       e.Spec.OutputFile,
		ExportedAt: time.Now(),
	}

	if err := e.Sink.WriteLine(e.Spec.OutputFile, line); err != nil {
		outErr := model.NewError(model.KindOutput, "export.result", err)
		result.Error = outErr.Error()
		e.Logger.Error("failed to write result, reporting it here instead",
			zap.String("path", e.Spec.OutputFile),
			zap.Float64("average", average),
			zap.String("result", line),
			zap.Error(err))
		return result, outErr
	}

	result.Success = true
	e.Logger.Info("result written", zap.String("path", e.Spec.OutputFile), zap.String("result", line))
	return result, nil
}

// ExportSummary writes the run summary as indented JSON when a summary file is configured
func (e *Exporter) ExportSummary(summary *model.RunSummary) (model.ExportResult, error) {
	result := model.ExportResult{
		Type:       "summary",
		Path:       e.Spec.SummaryFile,
		ExportedAt: time.Now(),
	}

	data, err := sonic.ConfigStd.MarshalIndent(summary, "", "  ")
	if err == nil {
		err = writeFile(e.Spec.SummaryFile, data)
	}
	if err != nil {
		outErr := model.NewError(model.KindOutput, "export.summary", err)
		result.Error = outErr.Error()
		e.Logger.Error("failed to write run summary", zap.String("path", e.Spec.SummaryFile), zap.Error(err))
		return result, outErr
	}

	result.Success = true
	e.Logger.Info("run summary written", zap.String("path", e.Spec.SummaryFile))
	return result, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
