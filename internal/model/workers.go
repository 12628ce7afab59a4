package model

// WorkerResult is the partial aggregate a single consumer publishes when it stops
type WorkerResult struct {
	WorkerID    int    `json:"worker_id"`
	PartialSum  int64  `json:"partial_sum"`
	RecordsRead int64  `json:"records_read"`
	Quota       int    `json:"quota"` // 0 in drain mode
	Error       string `json:"error,omitempty"`
	ErrorKind   Kind   `json:"error_kind,omitempty"`
}

// ShortBy returns how many records the worker missed from its quota
func (r WorkerResult) ShortBy() int64 {
	if r.Quota == 0 {
		return 0
	}
	return int64(r.Quota) - r.RecordsRead
}

// ProducerResult records what a single producer managed to emit
type ProducerResult struct {
	WorkerID       int    `json:"worker_id"`
	RecordsWritten int64  `json:"records_written"`
	Sum            int64  `json:"sum"`
	Error          string `json:"error,omitempty"`
	ErrorKind      Kind   `json:"error_kind,omitempty"`
}
