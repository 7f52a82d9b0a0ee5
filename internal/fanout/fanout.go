// Package fanout distributes stock events to watching clients: one topic per
// symbol, plus the server-side subscription registry behind watch/unwatch.
package fanout

import (
	"sync"

	"go.uber.org/zap"

	"github.com/efreitasn/stockbroker/internal/domain"
	"github.com/efreitasn/stockbroker/internal/protocol"
	"github.com/efreitasn/stockbroker/internal/transport"
)

// Fanout publishes stock events and tracks which client watches which
// symbol. Publication is fire-and-forget: a slow subscriber drops events and
// never blocks the publisher.
type Fanout struct {
	hub *transport.Hub
	log *zap.Logger

	mu      sync.Mutex
	symbols map[string]bool
	subs    map[string]map[string]bool // clientID → watched symbols
}

// New creates a fanout and provisions one topic per listed symbol.
func New(hub *transport.Hub, symbols []string, log *zap.Logger) *Fanout {
	f := &Fanout{
		hub:     hub,
		log:     log,
		symbols: make(map[string]bool, len(symbols)),
		subs:    make(map[string]map[string]bool),
	}
	for _, sym := range symbols {
		f.symbols[sym] = true
		hub.Topic(protocol.TopicName(sym))
	}
	return f
}

// Watch records the client's subscription to the symbol. It reports whether
// the client was already subscribed; repeated watches are a no-op. Unlisted
// symbols return domain.ErrUnknownStock.
func (f *Fanout) Watch(clientID, symbol string) (already bool, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.symbols[symbol] {
		return false, domain.ErrUnknownStock
	}
	watched := f.subs[clientID]
	if watched == nil {
		watched = make(map[string]bool)
		f.subs[clientID] = watched
	}
	if watched[symbol] {
		return true, nil
	}
	watched[symbol] = true
	return false, nil
}

// Unwatch removes the client's subscription to the symbol. It reports
// whether the subscription existed; unwatching an absent subscription is not
// an error. Unlisted symbols return domain.ErrUnknownStock.
func (f *Fanout) Unwatch(clientID, symbol string) (wasSubscribed bool, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.symbols[symbol] {
		return false, domain.ErrUnknownStock
	}
	watched := f.subs[clientID]
	if !watched[symbol] {
		return false, nil
	}
	delete(watched, symbol)
	if len(watched) == 0 {
		delete(f.subs, clientID)
	}
	return true, nil
}

// Watched returns whether the client currently watches the symbol.
func (f *Fanout) Watched(clientID, symbol string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subs[clientID][symbol]
}

// DropClient removes every subscription of a deregistering client and
// detaches it from all topics.
func (f *Fanout) DropClient(clientID string) {
	f.mu.Lock()
	watched := f.subs[clientID]
	delete(f.subs, clientID)
	symbols := make([]string, 0, len(watched))
	for sym := range watched {
		symbols = append(symbols, sym)
	}
	f.mu.Unlock()

	for _, sym := range symbols {
		f.hub.Topic(protocol.TopicName(sym)).Unsubscribe(clientID)
	}
}

// Publish sends one event to the symbol's topic and to no other topic.
func (f *Fanout) Publish(symbol string, ev protocol.StockEvent) {
	topic := f.hub.Topic(protocol.TopicName(symbol))
	if dropped := topic.Publish(protocol.Envelope{Msg: ev}); dropped > 0 {
		f.log.Warn("dropped topic deliveries",
			zap.String("symbol", symbol),
			zap.String("event", string(ev.Event)),
			zap.Int("dropped", dropped),
		)
	}
}
