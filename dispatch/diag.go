package dispatch

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Record is the diagnostic entry emitted for each dispatched request.
type Record struct {
	RequestID string
	Method    string
	Path      string
	Status    int
	Size      int64
	Duration  time.Duration
	Err       error
}

// Recorder writes diagnostic records off the request path. Record never
// blocks: when the queue is full the record is dropped and counted.
type Recorder struct {
	ch      chan Record
	write   func(Record)
	onDrop  func()
	dropped atomic.Int64

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewRecorder starts a recorder logging "resp" entries to logger.
func NewRecorder(size int, logger *zap.Logger, onDrop func()) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return newRecorder(size, func(rec Record) {
		fields := []zap.Field{
			zap.String("request_id", rec.RequestID),
			zap.String("method", rec.Method),
			zap.String("path", rec.Path),
			zap.Int("status", rec.Status),
			zap.Int64("size", rec.Size),
			zap.Duration("duration", rec.Duration),
		}
		if rec.Err != nil {
			logger.Warn("resp", append(fields, zap.Error(rec.Err))...)
			return
		}
		logger.Info("resp", fields...)
	}, onDrop)
}

func newRecorder(size int, write func(Record), onDrop func()) *Recorder {
	if size < 1 {
		size = 1
	}
	r := &Recorder{
		ch:     make(chan Record, size),
		write:  write,
		onDrop: onDrop,
	}
	r.wg.Add(1)
	go r.run()
	return r
}

func (r *Recorder) run() {
	defer r.wg.Done()
	for rec := range r.ch {
		r.safeWrite(rec)
	}
}

func (r *Recorder) safeWrite(rec Record) {
	defer func() { _ = recover() }()
	r.write(rec)
}

// Record queues rec and reports whether it was accepted.
func (r *Recorder) Record(rec Record) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.closed {
		select {
		case r.ch <- rec:
			return true
		default:
		}
	}

	r.dropped.Add(1)
	if r.onDrop != nil {
		r.onDrop()
	}
	return false
}

// Dropped reports how many records were discarded.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Close stops accepting records and waits for the queued ones to be written.
func (r *Recorder) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.ch)
	}
	r.mu.Unlock()
	r.wg.Wait()
}
