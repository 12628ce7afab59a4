package transport

import (
	"sync"

	"go-sample-pipeline/internal/model"
)

// Serializer guarantees at most one record write is in flight on a transport.
// Reads are not serialized.
type Serializer struct {
	mu sync.Mutex
}

// NewSerializer creates a serializer for one run
func NewSerializer() *Serializer {
	return &Serializer{}
}

// Acquire blocks until the caller holds exclusive write access
func (s *Serializer) Acquire() {
	s.mu.Lock()
}

// Release gives up write access
func (s *Serializer) Release() {
	s.mu.Unlock()
}

// WriteRecord writes r to w while holding the serializer
func (s *Serializer) WriteRecord(w RecordWriter, r model.Record) error {
	s.Acquire()
	defer s.Release()
	return w.WriteRecord(r)
}
