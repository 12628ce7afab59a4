package pipeline

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"go-sample-pipeline/internal/logging"
	"go-sample-pipeline/internal/metrics"
	"go-sample-pipeline/internal/model"
	"go-sample-pipeline/internal/transport"
)

// ------------------- Production -------------------

// Producer emits a fixed number of random records into the transport
type Producer struct {
	ID         int
	Values     int
	Writer     transport.RecordWriter
	Serializer *transport.Serializer
	Rand       *rand.Rand
	Limiter    *rate.Limiter // nil disables pacing
	Logger     *logging.Logger
	Metrics    *metrics.Metrics
}

// Run writes p.Values records. A failed write ends the producer; it is never retried.
func (p *Producer) Run(ctx context.Context) model.ProducerResult {
	result := model.ProducerResult{WorkerID: p.ID}
	span := int(model.MaxRecordValue - model.MinRecordValue)

	for i := 0; i < p.Values; i++ {
		value := model.MinRecordValue + model.Record(p.Rand.IntN(span))

		if err := p.Serializer.WriteRecord(p.Writer, value); err != nil {
			p.Metrics.TransportErrors.WithLabelValues("write").Inc()
			p.Logger.Warn("write failed, producer stopping",
				zap.Int64("written", result.RecordsWritten),
				zap.Int("remaining", p.Values-i),
				zap.Error(err))
			result.Error = model.NewError(model.KindTransport, "producer.write", err).Error()
			result.ErrorKind = model.KindTransport
			return result
		}

		result.RecordsWritten++
		result.Sum += int64(value)
		p.Metrics.RecordsProduced.Inc()
		p.Logger.Debug("wrote record", zap.Int32("value", int32(value)))

		if p.Limiter != nil && i < p.Values-1 {
			if err := p.Limiter.Wait(ctx); err != nil {
				p.Logger.Warn("pacing interrupted, producer stopping", zap.Error(err))
				result.Error = model.NewError(model.KindCancelled, "producer.pace", err).Error()
				result.ErrorKind = model.KindCancelled
				return result
			}
		}
	}

	p.Logger.Debug("producer completed", zap.Int64("written", result.RecordsWritten))
	return result
}

// newProducerRand gives each producer its own deterministic stream for a run seed
func newProducerRand(seed uint64, producerID int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(producerID)))
}

// newLimiter paces a producer to one record per interval; zero disables pacing
func newLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// StartProduction launches one goroutine per producer behind a completion barrier
func StartProduction(ctx context.Context, producers []*Producer) *Barrier[model.ProducerResult] {
	barrier := NewBarrier[model.ProducerResult](len(producers))
	for i, p := range producers {
		barrier.Go(i, func() model.ProducerResult {
			return p.Run(ctx)
		})
	}
	return barrier
}
