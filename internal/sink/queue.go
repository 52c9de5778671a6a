// internal/sink/queue.go
package sink

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/vue-bridge/internal/sensor"
)

// DefaultQueueSize bounds each queued output.
const DefaultQueueSize = 256

var (
	// ErrQueueFull is returned when the delivery goroutine cannot keep up.
	ErrQueueFull = errors.New("sink: queue full")

	// ErrClosed is returned by Write after Close.
	ErrClosed = errors.New("sink: output closed")
)

type pending struct {
	meta  sensor.Meta
	at    time.Time
	value float64
}

// Queued hands values to a slow output from one background goroutine.
// Write never blocks; delivery errors are logged by the goroutine.
type Queued struct {
	out  sensor.Output
	name string
	log  *zap.Logger
	q    chan pending
	done chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewQueued starts delivery to out. A non-positive size means DefaultQueueSize.
func NewQueued(name string, out sensor.Output, size int, log *zap.Logger) *Queued {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	q := &Queued{
		out:  out,
		name: name,
		log:  log.With(zap.String("output", name)),
		q:    make(chan pending, size),
		done: make(chan struct{}),
	}
	go q.run()
	return q
}

// Write implements sensor.Output.
func (q *Queued) Write(m sensor.Meta, at time.Time, v float64) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	select {
	case q.q <- pending{meta: m, at: at, value: v}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *Queued) run() {
	defer close(q.done)
	for p := range q.q {
		if err := q.out.Write(p.meta, p.at, p.value); err != nil {
			q.log.Warn("output write failed", zap.String("sensor", p.meta.Name), zap.Error(err))
		}
	}
}

// Close stops accepting values and waits for the queue to drain.
func (q *Queued) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.q)
	q.mu.Unlock()

	<-q.done
	return nil
}
