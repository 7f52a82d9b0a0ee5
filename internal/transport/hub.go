package transport

import (
	"errors"
	"sync"
)

var ErrQueueExists = errors.New("queue already exists")

// Hub is the named registry of queues and topics. Channel identifiers travel
// in messages as names and are resolved here by both sides.
type Hub struct {
	mu     sync.RWMutex
	queues map[string]*Queue
	topics map[string]*Topic
	buf    int
}

// NewHub creates a hub whose queues and topic buffers use the given capacity.
func NewHub(buffer int) *Hub {
	return &Hub{
		queues: make(map[string]*Queue),
		topics: make(map[string]*Topic),
		buf:    buffer,
	}
}

// CreateQueue allocates a named queue. It fails if the name is taken.
func (h *Hub) CreateQueue(name string) (*Queue, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.queues[name]; ok {
		return nil, ErrQueueExists
	}
	q := NewQueue(name, h.buf)
	h.queues[name] = q
	return q, nil
}

// Queue resolves a queue by name.
func (h *Hub) Queue(name string) (*Queue, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	q, ok := h.queues[name]
	return q, ok
}

// RemoveQueue closes and drops a named queue. A no-op for unknown names.
func (h *Hub) RemoveQueue(name string) {
	h.mu.Lock()
	q, ok := h.queues[name]
	if ok {
		delete(h.queues, name)
	}
	h.mu.Unlock()

	if ok {
		q.Close()
	}
}

// Topic resolves a topic by name, creating it on first use.
func (h *Hub) Topic(name string) *Topic {
	h.mu.Lock()
	defer h.mu.Unlock()

	t, ok := h.topics[name]
	if !ok {
		t = NewTopic(name, h.buf)
		h.topics[name] = t
	}
	return t
}

// Close closes every queue and topic.
func (h *Hub) Close() {
	h.mu.Lock()
	queues := h.queues
	topics := h.topics
	h.queues = make(map[string]*Queue)
	h.topics = make(map[string]*Topic)
	h.mu.Unlock()

	for _, q := range queues {
		q.Close()
	}
	for _, t := range topics {
		t.Close()
	}
}
