// Package broker implements the broker side of the session protocol: the
// registration handshake, per-client request dispatch, and session teardown.
package broker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/efreitasn/stockbroker/internal/domain"
	"github.com/efreitasn/stockbroker/internal/engine"
	"github.com/efreitasn/stockbroker/internal/fanout"
	"github.com/efreitasn/stockbroker/internal/protocol"
	"github.com/efreitasn/stockbroker/internal/store"
	"github.com/efreitasn/stockbroker/internal/transport"
)

// session is one registered client's runtime state: the provisioned channel
// pair and the cancel handle of its consumer goroutine.
type session struct {
	clientID   string
	toBroker   *transport.Queue
	fromBroker *transport.Queue
	cancel     context.CancelFunc
}

// SessionRegistry maps client identifiers to live sessions. All mutations
// run under one registry-wide mutex so two racing registrations of the same
// identifier cannot both provision channels.
type SessionRegistry struct {
	hub    *transport.Hub
	store  *store.Store
	fanout *fanout.Fanout
	engine *engine.TradingEngine
	log    *zap.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry(
	hub *transport.Hub,
	st *store.Store,
	fo *fanout.Fanout,
	eng *engine.TradingEngine,
	log *zap.Logger,
) *SessionRegistry {
	return &SessionRegistry{
		hub:      hub,
		store:    st,
		fanout:   fo,
		engine:   eng,
		log:      log,
		sessions: make(map[string]*session),
	}
}

// Register processes one registration request. On success it provisions the
// private channel pair, creates the session, starts its consumer, and sends
// exactly one correlated RegisterAck to the request's reply destination. A
// duplicate identifier is refused without any side effect.
func (r *SessionRegistry) Register(ctx context.Context, env protocol.Envelope) {
	msg, ok := env.Msg.(protocol.Register)
	if !ok {
		r.log.Warn("non-register message on registration queue",
			zap.String("kind", string(env.Msg.Kind())))
		r.sendReply(env, protocol.TransactionRefusal{Reason: "Malformed request: expected a register message."})
		return
	}
	if msg.ClientID == "" {
		r.sendReply(env, protocol.TransactionRefusal{Reason: "Client name must not be empty."})
		return
	}
	if msg.InitialFunds.IsNegative() {
		r.sendReply(env, protocol.TransactionRefusal{Reason: "Initial funds must not be negative."})
		return
	}

	r.mu.Lock()
	if r.store.HasClient(msg.ClientID) {
		r.mu.Unlock()
		r.log.Info("duplicate registration refused", zap.String("client_id", msg.ClientID))
		r.sendReply(env, protocol.TransactionRefusal{
			Reason: "Client " + msg.ClientID + " already registered.",
		})
		return
	}

	toName := msg.ClientID + ".to-broker"
	fromName := msg.ClientID + ".from-broker"

	toQ, err := r.hub.CreateQueue(toName)
	if err != nil {
		r.mu.Unlock()
		r.log.Error("channel provisioning failed",
			zap.String("client_id", msg.ClientID), zap.Error(err))
		r.sendReply(env, protocol.TransactionRefusal{Reason: "Client " + msg.ClientID + " already registered."})
		return
	}
	fromQ, err := r.hub.CreateQueue(fromName)
	if err != nil {
		r.hub.RemoveQueue(toName)
		r.mu.Unlock()
		r.log.Error("channel provisioning failed",
			zap.String("client_id", msg.ClientID), zap.Error(err))
		r.sendReply(env, protocol.TransactionRefusal{Reason: "Client " + msg.ClientID + " already registered."})
		return
	}

	if err := r.store.CreateClient(&domain.ClientSession{
		ClientID:   msg.ClientID,
		Funds:      msg.InitialFunds,
		ToBroker:   toName,
		FromBroker: fromName,
	}); err != nil {
		r.hub.RemoveQueue(toName)
		r.hub.RemoveQueue(fromName)
		r.mu.Unlock()
		r.sendReply(env, protocol.TransactionRefusal{
			Reason: "Client " + msg.ClientID + " already registered.",
		})
		return
	}

	sctx, cancel := context.WithCancel(ctx)
	sess := &session{
		clientID:   msg.ClientID,
		toBroker:   toQ,
		fromBroker: fromQ,
		cancel:     cancel,
	}
	r.sessions[msg.ClientID] = sess
	go toQ.Consume(sctx, func(env protocol.Envelope) {
		r.dispatch(sess, env)
	})
	r.mu.Unlock()

	r.log.Info("client registered",
		zap.String("client_id", msg.ClientID),
		zap.String("to_broker", toName),
		zap.String("from_broker", fromName),
	)
	r.sendReply(env, protocol.RegisterAck{
		ClientID:   msg.ClientID,
		ToBroker:   toName,
		FromBroker: fromName,
	})
}

// Deregister tears a session down: stops its consumer, closes and removes
// its channels, drops its subscriptions, removes the account. Idempotent; it
// reports whether a session was present.
func (r *SessionRegistry) Deregister(clientID string) bool {
	r.mu.Lock()
	sess, ok := r.sessions[clientID]
	delete(r.sessions, clientID)
	r.mu.Unlock()

	if !ok {
		return false
	}

	sess.cancel()
	r.hub.RemoveQueue(sess.toBroker.Name())
	r.hub.RemoveQueue(sess.fromBroker.Name())
	r.fanout.DropClient(clientID)
	r.store.RemoveClient(clientID)

	r.log.Info("client deregistered", zap.String("client_id", clientID))
	return true
}

// DeregisterAll tears every session down, for broker shutdown.
func (r *SessionRegistry) DeregisterAll() {
	r.mu.Lock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		r.Deregister(id)
	}
}

// SessionCount returns the number of live sessions.
func (r *SessionRegistry) SessionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// sendReply emits a correlated reply to the request's reply destination.
// Best-effort: an unreachable or full destination is logged, never fatal.
func (r *SessionRegistry) sendReply(env protocol.Envelope, msg protocol.Message) {
	if env.ReplyTo == "" {
		r.log.Warn("registration request without reply destination")
		return
	}
	q, ok := r.hub.Queue(env.ReplyTo)
	if !ok {
		r.log.Warn("reply destination unreachable", zap.String("reply_to", env.ReplyTo))
		return
	}
	if err := q.Send(protocol.Envelope{CorrelationID: env.CorrelationID, Msg: msg}); err != nil {
		r.log.Warn("reply send failed",
			zap.String("reply_to", env.ReplyTo), zap.Error(err))
	}
}
