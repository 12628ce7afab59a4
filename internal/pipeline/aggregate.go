package pipeline

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"go-sample-pipeline/internal/model"
)

// Aggregate divides the sum of all partial sums by the expected record count.
// Zero expected records is a configuration error, never a silent 0.0.
func Aggregate(partialSums []int64, expectedTotal int64) (float64, error) {
	if expectedTotal <= 0 {
		return 0, model.NewError(model.KindConfiguration, "aggregate",
			fmt.Errorf("expected record count must be positive, got %d", expectedTotal))
	}

	var total int64
	for _, s := range partialSums {
		total += s
	}
	return float64(total) / float64(expectedTotal), nil
}

// AggregateResults merges the consumer results of a run into the final statistic
func AggregateResults(results []model.WorkerResult, expectedTotal int64) (*model.AggregateResult, error) {
	if len(results) == 0 {
		return nil, model.NewError(model.KindConfiguration, "aggregate", errors.New("no consumer results"))
	}

	sums := make([]int64, len(results))
	partials := make([]float64, len(results))
	out := &model.AggregateResult{ExpectedCount: expectedTotal}
	for i, r := range results {
		sums[i] = r.PartialSum
		partials[i] = float64(r.PartialSum)
		out.TotalSum += r.PartialSum
		out.ConsumedCount += r.RecordsRead
	}

	avg, err := Aggregate(sums, expectedTotal)
	if err != nil {
		return nil, err
	}
	out.Average = avg

	if len(partials) > 1 {
		out.PartialMean, out.PartialStdDev = stat.MeanStdDev(partials, nil)
	} else {
		out.PartialMean = partials[0]
	}
	return out, nil
}
