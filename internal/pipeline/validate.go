package pipeline

import (
	"errors"
	"fmt"

	"go-sample-pipeline/internal/model"
)

// ErrCorruptRecord marks a decoded value no producer could have written
var ErrCorruptRecord = errors.New("corrupt record")

// validateRecord checks a decoded record before it is added to a partial sum.
// Producers only emit values in [MinRecordValue, MaxRecordValue), so anything
// else means a torn or foreign frame.
func validateRecord(value model.Record) error {
	if !value.Valid() {
		return fmt.Errorf("%w: %d outside [%d, %d)", ErrCorruptRecord, value, model.MinRecordValue, model.MaxRecordValue)
	}
	return nil
}
