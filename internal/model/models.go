package model

import (
	"fmt"
	"time"
)

// Record is a single sample travelling through the transport
type Record int32

const (
	// RecordSize is the encoded width of a Record on the transport
	RecordSize = 4

	// MinRecordValue and MaxRecordValue bound produced samples: [MinRecordValue, MaxRecordValue)
	MinRecordValue Record = 0
	MaxRecordValue Record = 1000
)

// Valid reports whether r lies inside the produced sample range
func (r Record) Valid() bool {
	return r >= MinRecordValue && r < MaxRecordValue
}

// Default run parameters
const (
	DefaultProducers         = 3
	DefaultValuesPerProducer = 500
	DefaultConsumers         = 10
	DefaultValuesPerConsumer = 150
	DefaultOutputFile        = "result_output.txt"
	DefaultTransportCapacity = 4096
	DefaultProduceInterval   = time.Millisecond
)

// RunSpec is the struct for POST /api/v1/runs and the validated
// configuration of a single pipeline run
type RunSpec struct {
	Producers         int    `json:"producers" yaml:"producers"`
	ValuesPerProducer int    `json:"valuesPerProducer" yaml:"valuesPerProducer"`
	Consumers         int    `json:"consumers" yaml:"consumers"`
	ValuesPerConsumer int    `json:"valuesPerConsumer" yaml:"valuesPerConsumer"` // 0 = drain until end-of-stream
	OutputFile        string `json:"outputFile" yaml:"outputFile"`
	SummaryFile       string `json:"summaryFile,omitempty" yaml:"summaryFile"`
	TransportCapacity int    `json:"transportCapacity" yaml:"transportCapacity"` // in records
	ProduceInterval   string `json:"produceInterval" yaml:"produceInterval"`     // e.g. "1ms", "0" disables pacing
	Seed              uint64 `json:"seed" yaml:"seed"`                           // 0 = time based
	Overlap           bool   `json:"overlap" yaml:"overlap"`                     // start consumers before producers
}

// DefaultRunSpec returns the default run: 3 producers x 500 values read by 10 consumers x 150
func DefaultRunSpec() RunSpec {
	return RunSpec{
		Producers:         DefaultProducers,
		ValuesPerProducer: DefaultValuesPerProducer,
		Consumers:         DefaultConsumers,
		ValuesPerConsumer: DefaultValuesPerConsumer,
		OutputFile:        DefaultOutputFile,
		TransportCapacity: DefaultTransportCapacity,
		ProduceInterval:   DefaultProduceInterval.String(),
	}
}

// DrainMode reports whether consumers read until end-of-stream instead of a fixed quota
func (s RunSpec) DrainMode() bool {
	return s.ValuesPerConsumer == 0
}

// ExpectedCount is the total number of records the producers will emit
func (s RunSpec) ExpectedCount() int64 {
	return int64(s.Producers) * int64(s.ValuesPerProducer)
}

// Interval parses ProduceInterval. An empty or zero value disables pacing.
func (s RunSpec) Interval() (time.Duration, error) {
	if s.ProduceInterval == "" || s.ProduceInterval == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.ProduceInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid produce interval %q: %w", s.ProduceInterval, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("produce interval must not be negative, got %s", d)
	}
	return d, nil
}

// Validate checks the run configuration before any worker is launched.
// Every failure is a configuration error.
func (s RunSpec) Validate() error {
	fail := func(format string, args ...interface{}) error {
		return NewError(KindConfiguration, "validate", fmt.Errorf(format, args...))
	}

	if s.Producers <= 0 {
		return fail("producers must be positive, got %d", s.Producers)
	}
	if s.Consumers <= 0 {
		return fail("consumers must be positive, got %d", s.Consumers)
	}
	if s.ValuesPerProducer < 0 || s.ValuesPerConsumer < 0 {
		return fail("values per worker must not be negative")
	}
	if s.TransportCapacity <= 0 {
		return fail("transport capacity must be positive, got %d", s.TransportCapacity)
	}
	if s.OutputFile == "" {
		return fail("output file is required")
	}
	if _, err := s.Interval(); err != nil {
		return fail("%v", err)
	}

	expected := s.ExpectedCount()
	if expected == 0 {
		return fail("no records expected: %d producers x %d values", s.Producers, s.ValuesPerProducer)
	}

	if !s.DrainMode() {
		consumed := int64(s.Consumers) * int64(s.ValuesPerConsumer)
		if expected != consumed {
			return fail("producer total %d (%d x %d) does not match consumer total %d (%d x %d)",
				expected, s.Producers, s.ValuesPerProducer, consumed, s.Consumers, s.ValuesPerConsumer)
		}
	}

	// Consumers only start after every producer returned, so the whole run
	// has to fit in the transport buffer.
	if !s.Overlap && expected > int64(s.TransportCapacity) {
		return fail("%d records do not fit a transport of capacity %d without overlap", expected, s.TransportCapacity)
	}

	return nil
}
