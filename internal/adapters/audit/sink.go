// Package audit appends one JSON line per accepted guess to an audit log.
//
// Records are handed to a bounded queue drained by a single writer goroutine,
// so request handlers do not wait on the disk. When the queue is full the
// entry is written synchronously instead of being dropped.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/okian/ben/pkg/logger"
	"github.com/okian/ben/pkg/metrics"
)

const (
	defaultQueueSize = 1024
	filePermission   = 0o640
	dirPermission    = 0o750
)

// Sink receives audit entries.
type Sink interface {
	// Start launches background delivery. Entries recorded before Start are
	// kept and delivered once it runs.
	Start(ctx context.Context)

	// Record hands an entry to the sink.
	Record(ctx context.Context, e Entry) error

	// Close flushes pending entries and releases the underlying writer.
	Close(ctx context.Context) error
}

// Discard is a Sink that drops everything.
var Discard Sink = discard{}

type discard struct{}

func (discard) Start(context.Context)               {}
func (discard) Record(context.Context, Entry) error { return nil }
func (discard) Close(context.Context) error         { return nil }

// FileSink writes entries as JSON lines.
type FileSink struct {
	queueSize int
	logger    logger.Logger

	wmu sync.Mutex // serializes writes to w
	w   io.Writer
	c   io.Closer

	mu      sync.RWMutex // guards queue sends against close
	closed  bool
	queue   chan Entry
	started bool
	done    chan struct{}
}

// Open returns the sink for path. An empty path yields Discard.
func Open(path string, opts ...Option) (Sink, error) {
	if path == "" {
		return Discard, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, dirPermission); err != nil {
			return nil, fmt.Errorf("failed to create audit directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	s := NewWriterSink(f, opts...)
	s.c = f
	return s, nil
}

// NewWriterSink writes entries to w. w is not closed by Close.
func NewWriterSink(w io.Writer, opts ...Option) *FileSink {
	s := &FileSink{
		queueSize: defaultQueueSize,
		logger:    logger.Get().Named("audit"),
		w:         w,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.queue = make(chan Entry, s.queueSize)
	return s
}

// Start launches the writer goroutine. Calling it again is a no-op.
func (s *FileSink) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.closed {
		return
	}
	s.started = true
	go s.run(ctx)
}

func (s *FileSink) run(ctx context.Context) {
	defer close(s.done)
	for e := range s.queue {
		metrics.UpdateAuditQueue(len(s.queue))
		if err := s.write(e); err != nil {
			s.logger.Error(ctx, "failed to write audit entry",
				logger.String("request_id", e.RequestID),
				logger.Error(err),
			)
		}
	}
}

// Record queues e, or writes it directly when the queue is full.
func (s *FileSink) Record(ctx context.Context, e Entry) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrClosed
	}
	select {
	case s.queue <- e:
		s.mu.RUnlock()
		metrics.UpdateAuditQueue(len(s.queue))
		return nil
	default:
	}
	s.mu.RUnlock()

	metrics.RecordAuditQueueFull()
	return s.write(e)
}

// Close stops accepting entries, waits for the queue to drain and closes the
// file. ctx bounds the wait.
func (s *FileSink) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.queue)
	started := s.started
	s.mu.Unlock()

	if started {
		select {
		case <-s.done:
		case <-ctx.Done():
			s.logger.Warn(ctx, "audit drain timed out", logger.Int("pending", len(s.queue)))
			return fmt.Errorf("audit drain timed out: %w", ctx.Err())
		}
	} else {
		for e := range s.queue {
			if err := s.write(e); err != nil {
				s.logger.Error(ctx, "failed to write audit entry", logger.Error(err))
			}
		}
	}
	metrics.UpdateAuditQueue(0)

	s.wmu.Lock()
	defer s.wmu.Unlock()
	if s.c != nil {
		return s.c.Close()
	}
	return nil
}

// write encodes e as one line. A single Write call per line keeps lines
// whole under O_APPEND.
func (s *FileSink) write(e Entry) error {
	b, err := json.Marshal(e)
	if err != nil {
		metrics.RecordAuditError()
		return fmt.Errorf("failed to encode audit entry: %w", err)
	}
	b = append(b, '\n')

	s.wmu.Lock()
	defer s.wmu.Unlock()
	if _, err := s.w.Write(b); err != nil {
		metrics.RecordAuditError()
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	metrics.RecordAuditWritten()
	return nil
}
