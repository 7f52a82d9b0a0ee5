// Package transport provides the in-process messaging substrate: ordered
// point-to-point queues with a single consumer, fan-out topics, and a hub
// that resolves both by name so channel identifiers can travel in messages.
package transport

import (
	"context"
	"errors"
	"sync"

	"github.com/efreitasn/stockbroker/internal/protocol"
)

var (
	ErrQueueFull   = errors.New("queue full")
	ErrQueueClosed = errors.New("queue closed")
)

// Queue is a bounded, ordered point-to-point channel. Any number of senders,
// exactly one consumer: Consume runs the handler in a single goroutine, so
// callbacks for one queue never overlap and arrive in send order.
type Queue struct {
	name      string
	ch        chan protocol.Envelope
	done      chan struct{}
	closeOnce sync.Once
}

// NewQueue allocates a queue with the given capacity.
func NewQueue(name string, capacity int) *Queue {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue{
		name: name,
		ch:   make(chan protocol.Envelope, capacity),
		done: make(chan struct{}),
	}
}

// Name returns the queue's name.
func (q *Queue) Name() string { return q.name }

// Send enqueues an envelope without blocking. Sends racing a Close may be
// accepted or refused; they never panic.
func (q *Queue) Send(env protocol.Envelope) error {
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}
	select {
	case q.ch <- env:
		return nil
	case <-q.done:
		return ErrQueueClosed
	default:
		return ErrQueueFull
	}
}

// Close stops the queue. Buffered envelopes not yet consumed are dropped;
// teardown delivery is best-effort.
func (q *Queue) Close() {
	q.closeOnce.Do(func() { close(q.done) })
}

// Consume runs handler for each envelope until the context is done or the
// queue is closed.
func (q *Queue) Consume(ctx context.Context, handler func(protocol.Envelope)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.done:
			return
		case env := <-q.ch:
			handler(env)
		}
	}
}
