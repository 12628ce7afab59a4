package pipeline

import (
	"errors"
	"io"

	"go.uber.org/zap"

	"go-sample-pipeline/internal/logging"
	"go-sample-pipeline/internal/metrics"
	"go-sample-pipeline/internal/model"
	"go-sample-pipeline/internal/transport"
)

// Consumer reads records from the transport into a local partial sum
type Consumer struct {
	ID      int
	Quota   int // 0 reads until end-of-stream
	Reader  transport.RecordReader
	Logger  *logging.Logger
	Metrics *metrics.Metrics
}

// Run reads up to c.Quota records. A failed read, a premature end-of-stream
// or a corrupted record stops the worker; the partial sum keeps only the
// records actually read.
func (c *Consumer) Run() model.WorkerResult {
	result := model.WorkerResult{WorkerID: c.ID, Quota: c.Quota}

	for c.Quota == 0 || result.RecordsRead < int64(c.Quota) {
		value, err := c.Reader.ReadRecord()
		if err == nil {
			err = validateRecord(value)
		}
		if err != nil {
			if c.Quota == 0 && errors.Is(err, io.EOF) {
				break
			}
			c.Metrics.TransportErrors.WithLabelValues("read").Inc()
			result.Error = model.NewError(model.KindTransport, "consumer.read", err).Error()
			result.ErrorKind = model.KindTransport
			if short := result.ShortBy(); short > 0 {
				c.Metrics.WorkerShortfall.Add(float64(short))
			}
			c.Logger.Warn("read failed, consumer stopping",
				zap.Int64("read", result.RecordsRead),
				zap.Int64("short_by", result.ShortBy()),
				zap.Error(err))
			break
		}

		result.PartialSum += int64(value)
		result.RecordsRead++
		c.Metrics.RecordsConsumed.Inc()
		c.Logger.Debug("read record", zap.Int32("value", int32(value)))
	}

	c.Logger.Debug("consumer completed",
		zap.Int64("read", result.RecordsRead),
		zap.Int64("partial_sum", result.PartialSum))
	return result
}

// StartConsumption launches one goroutine per consumer behind a completion barrier
func StartConsumption(consumers []*Consumer) *Barrier[model.WorkerResult] {
	barrier := NewBarrier[model.WorkerResult](len(consumers))
	for i, c := range consumers {
		barrier.Go(i, c.Run)
	}
	return barrier
}
