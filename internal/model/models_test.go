package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRunSpecIsValid(t *testing.T) {
	spec := DefaultRunSpec()
	require.NoError(t, spec.Validate())
	assert.Equal(t, int64(1500), spec.ExpectedCount())
	assert.False(t, spec.DrainMode())
}

func TestRunSpecValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*RunSpec)
	}{
		{"no producers", func(s *RunSpec) { s.Producers = 0 }},
		{"no consumers", func(s *RunSpec) { s.Consumers = -1 }},
		{"negative quota", func(s *RunSpec) { s.ValuesPerConsumer = -5 }},
		{"zero capacity", func(s *RunSpec) { s.TransportCapacity = 0 }},
		{"no output file", func(s *RunSpec) { s.OutputFile = "" }},
		{"bad interval", func(s *RunSpec) { s.ProduceInterval = "soon" }},
		{"negative interval", func(s *RunSpec) { s.ProduceInterval = "-1ms" }},
		{"nothing produced", func(s *RunSpec) { s.ValuesPerProducer = 0; s.ValuesPerConsumer = 0 }},
		{"totals mismatch", func(s *RunSpec) { s.ValuesPerConsumer = 100 }},
		{"does not fit without overlap", func(s *RunSpec) { s.TransportCapacity = 100 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := DefaultRunSpec()
			tt.modify(&spec)
			err := spec.Validate()
			require.Error(t, err)
			assert.True(t, IsKind(err, KindConfiguration))
		})
	}
}

func TestRunSpecValidateAccepts(t *testing.T) {
	overlap := DefaultRunSpec()
	overlap.Overlap = true
	overlap.TransportCapacity = 1
	assert.NoError(t, overlap.Validate())

	drain := DefaultRunSpec()
	drain.Consumers = 1
	drain.ValuesPerConsumer = 0
	assert.NoError(t, drain.Validate())
	assert.True(t, drain.DrainMode())
}

func TestRunSpecInterval(t *testing.T) {
	spec := DefaultRunSpec()
	d, err := spec.Interval()
	require.NoError(t, err)
	assert.Equal(t, time.Millisecond, d)

	for _, off := range []string{"", "0"} {
		spec.ProduceInterval = off
		d, err = spec.Interval()
		require.NoError(t, err)
		assert.Zero(t, d)
	}
}

func TestRecordValid(t *testing.T) {
	assert.True(t, Record(0).Valid())
	assert.True(t, Record(999).Valid())
	assert.False(t, Record(1000).Valid())
	assert.False(t, Record(-1).Valid())
}

func TestRunStateText(t *testing.T) {
	text, err := StateConsumersDone.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "CONSUMERS_DONE", string(text))

	var s RunState
	require.NoError(t, s.UnmarshalText([]byte("AGGREGATED")))
	assert.Equal(t, StateAggregated, s)
	assert.Error(t, s.UnmarshalText([]byte("BOGUS")))
}

func TestWorkerResultShortBy(t *testing.T) {
	assert.Equal(t, int64(3), WorkerResult{Quota: 5, RecordsRead: 2}.ShortBy())
	assert.Zero(t, WorkerResult{Quota: 0, RecordsRead: 7}.ShortBy())
}

func TestFormatResult(t *testing.T) {
	assert.Equal(t, "Average: 499.500000", FormatResult(499.5))
	assert.Equal(t, "Average: 0.000000", FormatResult(0))
	assert.Equal(t, "Average: 0.333333", FormatResult(1.0/3))
}
