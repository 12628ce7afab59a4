// Package transport provides the bounded byte FIFO that connects producers
// and consumers of a run.
//
// A pipe has two ends. The write end accepts raw bytes and blocks while the
// buffer is full; a write larger than the free space is split across wake-ups,
// so concurrent writers must hold a Serializer to keep records whole. The read
// end hands out whole records only: every ReadRecord call is atomic and no two
// readers ever receive the same bytes.
//
// Closing either end is idempotent and wakes every goroutine blocked on the
// other end. Readers drain what is buffered and then see io.EOF; writers see
// io.ErrClosedPipe as soon as the read end is gone.
package transport

import (
	"encoding/binary"
	"errors"
	"io"
	"sync"

	"go-sample-pipeline/internal/model"
)

// ErrWriteClosed is returned by a write on a pipe whose write end was already closed
var ErrWriteClosed = errors.New("transport: write on closed write end")

// RecordWriter is the write side used by producers
type RecordWriter interface {
	WriteRecord(model.Record) error
}

// RecordReader is the read side used by consumers
type RecordReader interface {
	ReadRecord() (model.Record, error)
}

type pipe struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond

	buf  []byte // ring buffer
	head int
	size int

	readClosed  bool
	writeClosed bool
}

// WriteEnd is the producer side of a pipe
type WriteEnd struct {
	p *pipe
}

// ReadEnd is the consumer side of a pipe
type ReadEnd struct {
	p *pipe
}

// Open creates a pipe buffering up to capacity records and returns both ends
func Open(capacity int) (*WriteEnd, *ReadEnd, error) {
	if capacity <= 0 {
		return nil, nil, model.NewError(model.KindSetup, "transport.open", errors.New("capacity must be positive"))
	}
	p := &pipe{buf: make([]byte, capacity*model.RecordSize)}
	p.notEmpty = sync.NewCond(&p.mu)
	p.notFull = sync.NewCond(&p.mu)
	return &WriteEnd{p: p}, &ReadEnd{p: p}, nil
}

// Write copies b into the pipe, blocking while the buffer is full.
// It returns the number of bytes accepted before any error.
func (w *WriteEnd) Write(b []byte) (int, error) {
	p := w.p
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for len(b) > 0 {
		if p.readClosed {
			return n, io.ErrClosedPipe
		}
		if p.writeClosed {
			return n, ErrWriteClosed
		}
		free := len(p.buf) - p.size
		if free == 0 {
			p.notFull.Wait()
			continue
		}
		chunk := b
		if len(chunk) > free {
			chunk = chunk[:free]
		}
		for i, c := range chunk {
			p.buf[(p.head+p.size+i)%len(p.buf)] = c
		}
		p.size += len(chunk)
		n += len(chunk)
		b = b[len(chunk):]
		p.notEmpty.Broadcast()
	}
	return n, nil
}

// WriteRecord encodes r as a fixed-width frame and writes it
func (w *WriteEnd) WriteRecord(r model.Record) error {
	var frame [model.RecordSize]byte
	EncodeRecord(frame[:], r)
	_, err := w.Write(frame[:])
	return err
}

// Close closes the write end. Readers drain the buffer and then get io.EOF.
func (w *WriteEnd) Close() error {
	p := w.p
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.writeClosed {
		p.writeClosed = true
		p.notEmpty.Broadcast()
		p.notFull.Broadcast()
	}
	return nil
}

// ReadRecord blocks until a whole frame is buffered and returns it.
// It returns io.EOF once the write end is closed and nothing is left, and
// io.ErrUnexpectedEOF if the write end closed in the middle of a frame.
func (r *ReadEnd) ReadRecord() (model.Record, error) {
	var frame [model.RecordSize]byte
	if err := r.readFrame(frame[:]); err != nil {
		return 0, err
	}
	return DecodeRecord(frame[:]), nil
}

func (r *ReadEnd) readFrame(dst []byte) error {
	p := r.p
	p.mu.Lock()
	defer p.mu.Unlock()

	for p.size < len(dst) {
		if p.readClosed {
			return io.ErrClosedPipe
		}
		if p.writeClosed {
			if p.size == 0 {
				return io.EOF
			}
			return io.ErrUnexpectedEOF
		}
		p.notEmpty.Wait()
	}

	for i := range dst {
		dst[i] = p.buf[(p.head+i)%len(p.buf)]
	}
	p.head = (p.head + len(dst)) % len(p.buf)
	p.size -= len(dst)
	p.notFull.Broadcast()
	return nil
}

// Close closes the read end. Blocked and future writes fail with io.ErrClosedPipe.
func (r *ReadEnd) Close() error {
	p := r.p
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.readClosed {
		p.readClosed = true
		p.notEmpty.Broadcast()
		p.notFull.Broadcast()
	}
	return nil
}

// Buffered returns the number of whole records waiting to be read
func (r *ReadEnd) Buffered() int {
	p := r.p
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.size / model.RecordSize
}

// EncodeRecord writes r into dst as little-endian int32
func EncodeRecord(dst []byte, r model.Record) {
	binary.LittleEndian.PutUint32(dst, uint32(int32(r)))
}

// DecodeRecord reads a little-endian int32 frame
func DecodeRecord(src []byte) model.Record {
	return model.Record(int32(binary.LittleEndian.Uint32(src)))
}
