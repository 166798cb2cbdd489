package middleware

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"CryptoCast/internal/domain/models"
	domrepo "CryptoCast/internal/domain/repository"
)

var _ domrepo.OutcomeArchive = (*RetryBuffer)(nil)

// ErrBufferFull is returned by Record when a failed outcome could not be
// queued and is lost.
var ErrBufferFull = errors.New("archive retry buffer full")

// RetryBuffer sits between the request controller and a remote archive sink.
// A failed write is queued for background retries with exponential backoff
// and Record reports success. Only an outcome dropped on a full queue is
// returned as an error.
type RetryBuffer struct {
	next           domrepo.OutcomeArchive
	metrics        domrepo.Metrics
	bufSize        int
	minBackoff     time.Duration
	maxBackoff     time.Duration
	attemptTimeout time.Duration

	bufCh     chan models.Outcome
	stopCh    chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

type BufferOption func(*RetryBuffer)

// WithBufferSize sets how many failed outcomes are kept for retry.
func WithBufferSize(n int) BufferOption {
	return func(p *RetryBuffer) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// WithBackoff sets the retry delay bounds.
func WithBackoff(min, max time.Duration) BufferOption {
	return func(p *RetryBuffer) {
		if min > 0 && max >= min {
			p.minBackoff = min
			p.maxBackoff = max
		}
	}
}

// WithAttemptTimeout bounds each background retry.
func WithAttemptTimeout(d time.Duration) BufferOption {
	return func(p *RetryBuffer) {
		if d > 0 {
			p.attemptTimeout = d
		}
	}
}

// NewRetryBuffer wraps next and starts the retry loop. Close stops it.
func NewRetryBuffer(next domrepo.OutcomeArchive, metrics domrepo.Metrics, opts ...BufferOption) *RetryBuffer {
	p := &RetryBuffer{
		next:           next,
		metrics:        metrics,
		bufSize:        256,
		minBackoff:     50 * time.Millisecond,
		maxBackoff:     5 * time.Second,
		attemptTimeout: 5 * time.Second,
		stopCh:         make(chan struct{}),
		done:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan models.Outcome, p.bufSize)
	go p.run()
	return p
}

// Record forwards o downstream and queues it for retry on failure.
func (p *RetryBuffer) Record(ctx context.Context, o models.Outcome) error {
	err := p.next.Record(ctx, o)
	if err == nil || p.enqueue(o, "archive_buffer_full") {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrBufferFull, err)
}

// Pending returns the number of outcomes waiting for a retry.
func (p *RetryBuffer) Pending() int {
	return len(p.bufCh)
}

// Close stops retrying and closes the wrapped sink. Queued outcomes that
// were never delivered are counted as dropped.
func (p *RetryBuffer) Close() error {
	p.closeOnce.Do(func() {
		close(p.stopCh)
		<-p.done
		for n := len(p.bufCh); n > 0; n-- {
			<-p.bufCh
			p.metrics.RecordError("archive_buffer_drop")
		}
	})
	return p.next.Close()
}

func (p *RetryBuffer) enqueue(o models.Outcome, fullKind string) bool {
	select {
	case p.bufCh <- o:
		return true
	default:
		p.metrics.RecordError(fullKind)
		return false
	}
}

func (p *RetryBuffer) run() {
	defer close(p.done)
	backoff := p.minBackoff
	for {
		select {
		case <-p.stopCh:
			return
		case o := <-p.bufCh:
			ctx, cancel := context.WithTimeout(context.Background(), p.attemptTimeout)
			err := p.next.Record(ctx, o)
			cancel()
			if err == nil {
				backoff = p.minBackoff
				continue
			}

			p.metrics.RecordError("archive_retry")
			p.enqueue(o, "archive_buffer_drop")

			timer := time.NewTimer(backoff)
			select {
			case <-p.stopCh:
				timer.Stop()
				return
			case <-timer.C:
			}
			backoff *= 2
			if backoff > p.maxBackoff {
				backoff = p.maxBackoff
			}
		}
	}
}
