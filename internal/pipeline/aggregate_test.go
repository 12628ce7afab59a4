package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-sample-pipeline/internal/model"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name     string
		sums     []int64
		expected int64
		want     float64
	}{
		{"single", []int64{1000}, 2, 500},
		{"many", []int64{10, 20, 30}, 6, 10},
		{"shortfall still divides by expected", []int64{100}, 4, 25},
		{"no sums", nil, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Aggregate(tt.sums, tt.expected)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestAggregateZeroExpected(t *testing.T) {
	_, err := Aggregate([]int64{1, 2}, 0)
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.KindConfiguration))
}

func TestAggregateResults(t *testing.T) {
	results := []model.WorkerResult{
		{WorkerID: 0, PartialSum: 100, RecordsRead: 2},
		{WorkerID: 1, PartialSum: 300, RecordsRead: 2},
	}

	agg, err := AggregateResults(results, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(400), agg.TotalSum)
	assert.Equal(t, int64(4), agg.ConsumedCount)
	assert.InDelta(t, 100.0, agg.Average, 1e-9)
	assert.InDelta(t, 200.0, agg.PartialMean, 1e-9)
	assert.Greater(t, agg.PartialStdDev, 0.0)

	_, err = AggregateResults(nil, 4)
	assert.True(t, model.IsKind(err, model.KindConfiguration))
}
