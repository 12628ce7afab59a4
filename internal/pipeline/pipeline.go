package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-sample-pipeline/internal/logging"
	"go-sample-pipeline/internal/metrics"
	"go-sample-pipeline/internal/model"
	"go-sample-pipeline/internal/transport"
)

// Orchestrator owns one run: it opens the transport, launches both worker
// pools in order, joins them and hands the aggregate to the sink.
type Orchestrator struct {
	RunID string

	spec       model.RunSpec
	logger     *logging.Logger
	metrics    *metrics.Metrics
	sink       Sink
	tracker    *Tracker
	wrapReader func(transport.RecordReader) transport.RecordReader

	mu            sync.RWMutex
	state         model.RunState
	producersDone chan struct{}
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithLogger sets the logger of the run
func WithLogger(l *logging.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithMetrics records the run into m
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithSink replaces the filesystem sink
func WithSink(s Sink) Option {
	return func(o *Orchestrator) { o.sink = s }
}

// WithRunID sets the run identifier instead of a generated one
func WithRunID(id string) Option {
	return func(o *Orchestrator) { o.RunID = id }
}

// WithReaderWrapper wraps the read end each consumer sees
func WithReaderWrapper(wrap func(transport.RecordReader) transport.RecordReader) Option {
	return func(o *Orchestrator) { o.wrapReader = wrap }
}

// New creates an orchestrator for a single run of spec. An Orchestrator
// runs once.
func New(spec model.RunSpec, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		spec:          spec,
		sink:          FileSink{},
		producersDone: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.RunID == "" {
		o.RunID = uuid.New().String()
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}
	if o.metrics == nil {
		o.metrics = metrics.New()
	}
	o.logger = o.logger.Run(o.RunID)
	o.tracker = NewTracker(o.RunID, o.logger, o.metrics)
	return o
}

// State returns the current lifecycle state
func (o *Orchestrator) State() model.RunState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// ProducersDone is closed once every producer has returned and the write end
// is closed. It is advisory: consumers do not depend on it.
func (o *Orchestrator) ProducersDone() <-chan struct{} {
	return o.producersDone
}

func (o *Orchestrator) setState(s model.RunState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = s
	o.logger.Debug("state changed", zap.Stringer("state", s))
}

func (o *Orchestrator) fail(summary *model.RunSummary, err error) (*model.RunSummary, error) {
	o.setState(model.StateFailed)
	o.tracker.RecordError("run", -1, kindOf(err), err.Error())
	o.tracker.Fail()
	summary.State = model.StateFailed
	summary.Metrics = o.tracker.GetMetrics()
	o.logger.Error("run failed", zap.Error(err))
	return summary, err
}

// Run executes the whole pipeline. The returned summary is non-nil even on
// error; an output error still carries the computed aggregate.
func (o *Orchestrator) Run(ctx context.Context) (*model.RunSummary, error) {
	o.metrics.RunsActive.Inc()
	defer o.metrics.RunsActive.Dec()

	spec := o.spec
	if spec.Seed == 0 {
		spec.Seed = uint64(time.Now().UnixNano())
	}
	summary := &model.RunSummary{RunID: o.RunID, Spec: spec}

	if err := spec.Validate(); err != nil {
		return o.fail(summary, err)
	}
	interval, _ := spec.Interval()

	w, r, err := transport.Open(spec.TransportCapacity)
	if err != nil {
		return o.fail(summary, err)
	}
	defer w.Close()
	defer r.Close()
	serializer := transport.NewSerializer()

	o.logger.Info("run started",
		zap.Int("producers", spec.Producers),
		zap.Int("values_per_producer", spec.ValuesPerProducer),
		zap.Int("consumers", spec.Consumers),
		zap.Int("values_per_consumer", spec.ValuesPerConsumer),
		zap.Int("capacity", spec.TransportCapacity),
		zap.Uint64("seed", spec.Seed),
		zap.Bool("overlap", spec.Overlap))

	producers := make([]*Producer, spec.Producers)
	for i := range producers {
		producers[i] = &Producer{
			ID:         i,
			Values:     spec.ValuesPerProducer,
			Writer:     w,
			Serializer: serializer,
			Rand:       newProducerRand(spec.Seed, i),
			Limiter:    newLimiter(interval),
			Logger:     o.logger.Worker("producer", i),
			Metrics:    o.metrics,
		}
	}

	var reader transport.RecordReader = r
	if o.wrapReader != nil {
		reader = o.wrapReader(r)
	}
	consumers := make([]*Consumer, spec.Consumers)
	for i := range consumers {
		consumers[i] = &Consumer{
			ID:      i,
			Quota:   spec.ValuesPerConsumer,
			Reader:  reader,
			Logger:  o.logger.Worker("consumer", i),
			Metrics: o.metrics,
		}
	}

	// Closing the write end after the producer barrier is what lets a
	// starved or draining consumer see end-of-stream.
	finishProduction := func(b *Barrier[model.ProducerResult]) {
		summary.Producers = b.Wait()
		w.Close()
		o.setState(model.StateProducersDone)
		o.tracker.EndStage(StageProduction, sumWritten(summary.Producers))
		close(o.producersDone)
	}

	var consumerResults []model.WorkerResult
	if spec.Overlap {
		o.tracker.StartStage(StageConsumption, len(consumers))
		cb := StartConsumption(consumers)
		o.setState(model.StateConsumersRunning)

		o.tracker.StartStage(StageProduction, len(producers))
		pb := StartProduction(ctx, producers)
		o.setState(model.StateProducersRunning)
		go finishProduction(pb)

		consumerResults = cb.Wait()
		// Producers still blocked on a full buffer get a broken pipe.
		r.Close()
		<-o.producersDone
	} else {
		o.tracker.StartStage(StageProduction, len(producers))
		pb := StartProduction(ctx, producers)
		o.setState(model.StateProducersRunning)
		finishProduction(pb)
		if err := interrupted(ctx, summary.Producers); err != nil {
			o.recordWorkerErrors(summary)
			return o.fail(summary, err)
		}

		o.tracker.StartStage(StageConsumption, len(consumers))
		cb := StartConsumption(consumers)
		o.setState(model.StateConsumersRunning)
		consumerResults = cb.Wait()
	}
	summary.Consumers = consumerResults
	o.setState(model.StateConsumersDone)
	o.tracker.EndStage(StageConsumption, sumRead(consumerResults))
	o.recordWorkerErrors(summary)

	// Interrupted production leaves consumers short; the average would be wrong.
	if err := interrupted(ctx, summary.Producers); err != nil {
		return o.fail(summary, err)
	}

	o.tracker.StartStage(StageAggregation, 1)
	agg, err := AggregateResults(consumerResults, spec.ExpectedCount())
	if err != nil {
		return o.fail(summary, err)
	}
	summary.Aggregate = agg
	o.setState(model.StateAggregated)
	o.tracker.EndStage(StageAggregation, agg.ConsumedCount)
	o.metrics.LastAverage.Set(agg.Average)

	if agg.ConsumedCount != agg.ExpectedCount {
		o.logger.Warn("average computed over fewer records than expected",
			zap.Int64("consumed", agg.ConsumedCount),
			zap.Int64("expected", agg.ExpectedCount))
	}

	exportErr := o.export(summary)

	w.Close()
	r.Close()
	o.setState(model.StateClosed)
	summary.State = model.StateClosed

	if exportErr != nil {
		o.tracker.Fail()
	} else {
		o.tracker.Complete()
	}
	summary.Metrics = o.tracker.GetMetrics()
	return summary, exportErr
}

// export writes the result line first; the summary file is only attempted
// when one is configured. The first error wins.
func (o *Orchestrator) export(summary *model.RunSummary) error {
	exporter := &Exporter{RunID: o.RunID, Spec: summary.Spec, Sink: o.sink, Logger: o.logger}
	exports := 1
	if summary.Spec.SummaryFile != "" {
		exports++
	}
	o.tracker.StartStage(StageExport, exports)

	var firstErr error
	res, err := exporter.ExportResult(summary.Aggregate.Average)
	summary.Exports = append(summary.Exports, res)
	if err != nil {
		firstErr = err
		o.tracker.RecordError(StageExport, -1, kindOf(err), err.Error())
	}

	if summary.Spec.SummaryFile != "" {
		snapshot := *summary
		snapshot.State = model.StateAggregated
		snapshot.Metrics = o.tracker.GetMetrics()
		res, err := exporter.ExportSummary(&snapshot)
		summary.Exports = append(summary.Exports, res)
		if err != nil {
			o.tracker.RecordError(StageExport, -1, kindOf(err), err.Error())
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	var written int64
	for _, e := range summary.Exports {
		if e.Success {
			written++
		}
	}
	o.tracker.EndStage(StageExport, written)
	return firstErr
}

func (o *Orchestrator) recordWorkerErrors(summary *model.RunSummary) {
	for _, p := range summary.Producers {
		if p.Error != "" {
			o.tracker.RecordError(StageProduction, p.WorkerID, p.ErrorKind.String(), p.Error)
		}
	}
	for _, c := range summary.Consumers {
		if c.Error != "" {
			o.tracker.RecordError(StageConsumption, c.WorkerID, c.ErrorKind.String(), c.Error)
		}
	}
}

// Run is a shortcut for New(spec, WithRunID(runID), opts...).Run(ctx)
func Run(ctx context.Context, runID string, spec model.RunSpec, opts ...Option) (*model.RunSummary, error) {
	return New(spec, append([]Option{WithRunID(runID)}, opts...)...).Run(ctx)
}

func kindOf(err error) string {
	for _, k := range []model.Kind{model.KindSetup, model.KindTransport, model.KindConfiguration, model.KindOutput, model.KindCancelled} {
		if model.IsKind(err, k) {
			return k.String()
		}
	}
	return "unknown"
}

// interrupted returns a cancellation error when a producer stopped because
// ctx ended, nil otherwise
func interrupted(ctx context.Context, results []model.ProducerResult) error {
	for _, r := range results {
		if r.ErrorKind != model.KindCancelled {
			continue
		}
		cause := context.Cause(ctx)
		if cause == nil {
			// the limiter gives up early when the deadline cannot be met
			cause = errors.New(r.Error)
		}
		return model.NewError(model.KindCancelled, "run", cause)
	}
	return nil
}

func sumWritten(results []model.ProducerResult) int64 {
	var n int64
	for _, r := range results {
		n += r.RecordsWritten
	}
	return n
}

func sumRead(results []model.WorkerResult) int64 {
	var n int64
	for _, r := range results {
		n += r.RecordsRead
	}
	return n
}
