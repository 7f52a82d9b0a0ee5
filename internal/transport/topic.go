package transport

import (
	"context"
	"sync"

	"github.com/efreitasn/stockbroker/internal/protocol"
)

// Topic is a fan-out channel: every envelope published is delivered to each
// current subscriber's private buffer in publish order. Publication never
// blocks; a subscriber whose buffer is full misses the envelope.
type Topic struct {
	name string
	mu   sync.RWMutex
	subs map[string]*Subscription // subscriber id → subscription
	buf  int
}

// NewTopic creates a topic whose subscribers get buffers of the given size.
func NewTopic(name string, buffer int) *Topic {
	if buffer <= 0 {
		buffer = 1
	}
	return &Topic{name: name, subs: make(map[string]*Subscription), buf: buffer}
}

// Name returns the topic's name.
func (t *Topic) Name() string { return t.name }

// Subscribe attaches a subscriber. Subscribing again under the same id
// returns the existing subscription.
func (t *Topic) Subscribe(id string) *Subscription {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s, ok := t.subs[id]; ok {
		return s
	}
	s := &Subscription{
		topic: t,
		id:    id,
		q:     NewQueue(t.name+"#"+id, t.buf),
	}
	t.subs[id] = s
	return s
}

// Unsubscribe detaches the subscriber and closes its buffer. A no-op for
// unknown ids.
func (t *Topic) Unsubscribe(id string) {
	t.mu.Lock()
	s, ok := t.subs[id]
	if ok {
		delete(t.subs, id)
	}
	t.mu.Unlock()

	if ok {
		s.q.Close()
	}
}

// Publish fans the envelope out to every current subscriber. Dropped
// deliveries (full or closed buffers) are counted in the return value.
func (t *Topic) Publish(env protocol.Envelope) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	dropped := 0
	for _, s := range t.subs {
		if err := s.q.Send(env); err != nil {
			dropped++
		}
	}
	return dropped
}

// SubscriberCount returns the number of attached subscribers.
func (t *Topic) SubscriberCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.subs)
}

// Close detaches and closes every subscriber.
func (t *Topic) Close() {
	t.mu.Lock()
	subs := t.subs
	t.subs = make(map[string]*Subscription)
	t.mu.Unlock()

	for _, s := range subs {
		s.q.Close()
	}
}

// Subscription is one subscriber's attachment to a topic.
type Subscription struct {
	topic *Topic
	id    string
	q     *Queue
}

// Consume runs handler for each published envelope, in publish order, until
// the context is done or the subscription is cancelled.
func (s *Subscription) Consume(ctx context.Context, handler func(protocol.Envelope)) {
	s.q.Consume(ctx, handler)
}

// Cancel detaches the subscription from its topic.
func (s *Subscription) Cancel() {
	s.topic.Unsubscribe(s.id)
}
