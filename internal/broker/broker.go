package broker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/efreitasn/stockbroker/internal/engine"
	"github.com/efreitasn/stockbroker/internal/fanout"
	"github.com/efreitasn/stockbroker/internal/protocol"
	"github.com/efreitasn/stockbroker/internal/store"
	"github.com/efreitasn/stockbroker/internal/transport"
)

// DefaultRegistrationQueue is the shared queue clients send Register to.
const DefaultRegistrationQueue = "broker.registration"

// Broker ties the session registry to the shared registration queue.
type Broker struct {
	Registry *SessionRegistry
	regQueue *transport.Queue
	log      *zap.Logger
}

// New creates a broker and provisions its registration queue on the hub.
func New(
	hub *transport.Hub,
	st *store.Store,
	fo *fanout.Fanout,
	eng *engine.TradingEngine,
	registrationQueue string,
	log *zap.Logger,
) (*Broker, error) {
	if registrationQueue == "" {
		registrationQueue = DefaultRegistrationQueue
	}
	regQ, err := hub.CreateQueue(registrationQueue)
	if err != nil {
		return nil, fmt.Errorf("provision registration queue %q: %w", registrationQueue, err)
	}
	return &Broker{
		Registry: NewSessionRegistry(hub, st, fo, eng, log),
		regQueue: regQ,
		log:      log,
	}, nil
}

// Start consumes the registration queue until the context is cancelled.
// Registrations are processed strictly in arrival order.
func (b *Broker) Start(ctx context.Context) {
	go b.regQueue.Consume(ctx, func(env protocol.Envelope) {
		b.Registry.Register(ctx, env)
	})
	b.log.Info("broker started", zap.String("registration_queue", b.regQueue.Name()))
}

// Stop tears down every session and closes the registration queue.
func (b *Broker) Stop() {
	b.Registry.DeregisterAll()
	b.regQueue.Close()
	b.log.Info("broker stopped")
}
