// Package client implements the protocol client: the blocking registration
// handshake and the asynchronous request/reply session on the provisioned
// channel pair, with callback delivery for replies and topic events.
package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/efreitasn/stockbroker/internal/domain"
	"github.com/efreitasn/stockbroker/internal/protocol"
	"github.com/efreitasn/stockbroker/internal/transport"
)

// DefaultRegistrationTimeout bounds the wait for the registration reply.
const DefaultRegistrationTimeout = 30 * time.Second

// MessageHandler receives every reply and topic event delivered to the
// client. It may be invoked from more than one delivery goroutine, but
// messages from any single channel arrive in order.
type MessageHandler func(protocol.Message)

// Config holds the client's protocol settings.
type Config struct {
	RegistrationQueue   string
	RegistrationTimeout time.Duration
}

// BrokerClient is one client's connection to the broker. Register is the
// only blocking call; every other request is sent asynchronously and its
// reply arrives through the message handler.
type BrokerClient struct {
	hub      *transport.Hub
	clientID string
	cfg      Config
	log      *zap.Logger

	onMessage MessageHandler

	runCtx   context.Context
	cancel   context.CancelFunc
	toBroker *transport.Queue

	mu   sync.Mutex
	subs map[string]*transport.Subscription // symbol → topic subscription
}

// New creates an unregistered client.
func New(hub *transport.Hub, clientID string, cfg Config, log *zap.Logger) *BrokerClient {
	if cfg.RegistrationQueue == "" {
		cfg.RegistrationQueue = "broker.registration"
	}
	if cfg.RegistrationTimeout <= 0 {
		cfg.RegistrationTimeout = DefaultRegistrationTimeout
	}
	return &BrokerClient{
		hub:      hub,
		clientID: clientID,
		cfg:      cfg,
		log:      log,
		subs:     make(map[string]*transport.Subscription),
	}
}

// ClientID returns the client's identifier.
func (c *BrokerClient) ClientID() string { return c.clientID }

// Register performs the registration handshake: it sends a Register request
// carrying a fresh correlation token and a private reply destination, then
// blocks until the correlated reply arrives or the timeout elapses
// (domain.ErrRegistrationTimeout). On success the client attaches its
// consumer to the provisioned from-broker channel and handler starts
// receiving messages.
func (c *BrokerClient) Register(ctx context.Context, initialFunds decimal.Decimal, handler MessageHandler) error {
	if c.toBroker != nil {
		return fmt.Errorf("client %s already registered", c.clientID)
	}
	c.onMessage = handler

	replyName := "reply." + uuid.NewString()
	replyQ, err := c.hub.CreateQueue(replyName)
	if err != nil {
		return fmt.Errorf("provision reply queue: %w", err)
	}
	defer c.hub.RemoveQueue(replyName)

	regQ, ok := c.hub.Queue(c.cfg.RegistrationQueue)
	if !ok {
		return fmt.Errorf("registration queue %q unreachable", c.cfg.RegistrationQueue)
	}

	token := uuid.NewString()
	replies := make(chan protocol.Message, 1)
	waitCtx, stopWait := context.WithCancel(ctx)
	defer stopWait()
	go replyQ.Consume(waitCtx, func(env protocol.Envelope) {
		if env.CorrelationID != token {
			return
		}
		select {
		case replies <- env.Msg:
		default:
		}
	})

	err = regQ.Send(protocol.Envelope{
		CorrelationID: token,
		ReplyTo:       replyName,
		Msg:           protocol.Register{ClientID: c.clientID, InitialFunds: initialFunds},
	})
	if err != nil {
		return fmt.Errorf("send registration request: %w", err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.cfg.RegistrationTimeout):
		return domain.ErrRegistrationTimeout
	case msg := <-replies:
		switch m := msg.(type) {
		case protocol.RegisterAck:
			return c.open(m)
		case protocol.TransactionRefusal:
			return fmt.Errorf("registration refused: %s", m.Reason)
		default:
			return fmt.Errorf("unexpected registration reply kind %s", msg.Kind())
		}
	}
}

// open resolves the provisioned channel pair and starts the reply consumer.
func (c *BrokerClient) open(ack protocol.RegisterAck) error {
	if ack.ClientID != c.clientID {
		return fmt.Errorf("registration acknowledgement for unexpected client %q", ack.ClientID)
	}
	toQ, ok := c.hub.Queue(ack.ToBroker)
	if !ok {
		return fmt.Errorf("provisioned channel %q unreachable", ack.ToBroker)
	}
	fromQ, ok := c.hub.Queue(ack.FromBroker)
	if !ok {
		return fmt.Errorf("provisioned channel %q unreachable", ack.FromBroker)
	}

	c.runCtx, c.cancel = context.WithCancel(context.Background())
	c.toBroker = toQ
	go fromQ.Consume(c.runCtx, c.handleMessage)

	c.log.Info("registered with broker",
		zap.String("client_id", c.clientID),
		zap.String("to_broker", ack.ToBroker),
		zap.String("from_broker", ack.FromBroker),
	)
	return nil
}

// handleMessage delivers one broker reply to the message handler, managing
// topic attachments on subscription acknowledgements first.
func (c *BrokerClient) handleMessage(env protocol.Envelope) {
	if ack, ok := env.Msg.(protocol.SubscriptionAck); ok {
		c.applySubscription(ack)
	}
	if c.onMessage != nil {
		c.onMessage(env.Msg)
	}
}

// applySubscription attaches or detaches the topic consumer for a symbol
// according to the broker's acknowledgement.
func (c *BrokerClient) applySubscription(ack protocol.SubscriptionAck) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ack.Subscribed {
		if _, ok := c.subs[ack.Symbol]; ok {
			return
		}
		sub := c.hub.Topic(protocol.TopicName(ack.Symbol)).Subscribe(c.clientID)
		c.subs[ack.Symbol] = sub
		go sub.Consume(c.runCtx, func(env protocol.Envelope) {
			if c.onMessage != nil {
				c.onMessage(env.Msg)
			}
		})
		return
	}

	if sub, ok := c.subs[ack.Symbol]; ok {
		delete(c.subs, ack.Symbol)
		sub.Cancel()
	}
}

// send issues an asynchronous request on the to-broker channel.
func (c *BrokerClient) send(msg protocol.Message) error {
	if c.toBroker == nil {
		return fmt.Errorf("client %s is not registered", c.clientID)
	}
	return c.toBroker.Send(protocol.Envelope{ClientID: c.clientID, Msg: msg})
}

// RequestList asks for the stock list. The reply arrives via the handler.
func (c *BrokerClient) RequestList() error {
	return c.send(protocol.RequestList{})
}

// RequestInfo asks for one stock's snapshot.
func (c *BrokerClient) RequestInfo(symbol string) error {
	return c.send(protocol.RequestInfo{Symbol: symbol})
}

// RequestProfile asks for the client's own funds and holdings.
func (c *BrokerClient) RequestProfile() error {
	return c.send(protocol.RequestProfile{})
}

// Buy asks to purchase quantity shares of symbol.
func (c *BrokerClient) Buy(symbol string, quantity int64) error {
	return c.send(protocol.Buy{Symbol: symbol, Quantity: quantity})
}

// Sell asks to sell quantity shares of symbol.
func (c *BrokerClient) Sell(symbol string, quantity int64) error {
	return c.send(protocol.Sell{Symbol: symbol, Quantity: quantity})
}

// Watch subscribes to a symbol's topic events. A watch for a symbol the
// client already follows is suppressed locally and never reaches the broker.
func (c *BrokerClient) Watch(symbol string) error {
	c.mu.Lock()
	_, already := c.subs[symbol]
	c.mu.Unlock()
	if already {
		c.log.Debug("watch suppressed, already subscribed",
			zap.String("client_id", c.clientID), zap.String("symbol", symbol))
		return nil
	}
	return c.send(protocol.Watch{Symbol: symbol})
}

// Unwatch removes the subscription to a symbol's topic events.
func (c *BrokerClient) Unwatch(symbol string) error {
	return c.send(protocol.Unwatch{Symbol: symbol})
}

// Watching returns whether the client currently consumes the symbol's topic.
func (c *BrokerClient) Watching(symbol string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.subs[symbol]
	return ok
}

// Deregister asks the broker to tear the session down and closes the
// client. No reply is expected.
func (c *BrokerClient) Deregister() error {
	err := c.send(protocol.Deregister{})
	c.Close()
	return err
}

// Close stops all delivery goroutines and detaches topic subscriptions. The
// broker-side session, if any, is left to Deregister.
func (c *BrokerClient) Close() {
	if c.cancel != nil {
		c.cancel()
	}

	c.mu.Lock()
	subs := c.subs
	c.subs = make(map[string]*transport.Subscription)
	c.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
}
