// Package protocol defines the message schema exchanged between clients and
// the broker over the transport: correlated registration messages, per-client
// request/reply messages, and the stock events published on topic channels.
package protocol

import (
	"github.com/shopspring/decimal"

	"github.com/efreitasn/stockbroker/internal/domain"
)

// Kind discriminates message types on the wire.
type Kind string

const (
	KindRegister        Kind = "REGISTER"
	KindRegisterAck     Kind = "REGISTER_ACK"
	KindRequestList     Kind = "REQUEST_LIST"
	KindStockListReply  Kind = "STOCK_LIST_REPLY"
	KindRequestInfo     Kind = "REQUEST_INFO"
	KindStockInfoReply  Kind = "STOCK_INFO_REPLY"
	KindRequestProfile  Kind = "REQUEST_PROFILE"
	KindProfileReply    Kind = "PROFILE_REPLY"
	KindBuy             Kind = "BUY"
	KindSell            Kind = "SELL"
	KindConfirmation    Kind = "TRANSACTION_CONFIRMATION"
	KindRefusal         Kind = "TRANSACTION_REFUSAL"
	KindWatch           Kind = "WATCH"
	KindUnwatch         Kind = "UNWATCH"
	KindSubscriptionAck Kind = "SUBSCRIPTION_ACK"
	KindDeregister      Kind = "DEREGISTER"
	KindStockEvent      Kind = "STOCK_EVENT"
)

// Message is implemented by every payload carried in an Envelope.
type Message interface {
	Kind() Kind
}

// Register asks the broker to create a session for ClientID. Sent on the
// shared registration queue with a correlation token and a reply destination.
type Register struct {
	ClientID     string
	InitialFunds decimal.Decimal
}

func (Register) Kind() Kind { return KindRegister }

// RegisterAck is the correlated reply to a successful Register. It carries
// the names of the provisioned private channel pair.
type RegisterAck struct {
	ClientID   string
	ToBroker   string // client → broker
	FromBroker string // broker → client
}

func (RegisterAck) Kind() Kind { return KindRegisterAck }

// RequestList asks for a snapshot of every listed stock.
type RequestList struct{}

func (RequestList) Kind() Kind { return KindRequestList }

// StockListReply answers a RequestList.
type StockListReply struct {
	Stocks []domain.StockSnapshot
}

func (StockListReply) Kind() Kind { return KindStockListReply }

// RequestInfo asks for a single stock's snapshot.
type RequestInfo struct {
	Symbol string
}

func (RequestInfo) Kind() Kind { return KindRequestInfo }

// StockInfoReply answers a RequestInfo.
type StockInfoReply struct {
	Stock domain.StockSnapshot
}

func (StockInfoReply) Kind() Kind { return KindStockInfoReply }

// RequestProfile asks for the requesting client's funds and holdings.
type RequestProfile struct{}

func (RequestProfile) Kind() Kind { return KindRequestProfile }

// ProfileReply answers a RequestProfile.
type ProfileReply struct {
	ClientID string
	Funds    decimal.Decimal
	Holdings []domain.HoldingSnapshot
}

func (ProfileReply) Kind() Kind { return KindProfileReply }

// Buy asks to purchase Quantity shares of Symbol at the current price.
type Buy struct {
	Symbol   string
	Quantity int64
}

func (Buy) Kind() Kind { return KindBuy }

// Sell asks to sell Quantity shares of Symbol back to the venue.
type Sell struct {
	Symbol   string
	Quantity int64
}

func (Sell) Kind() Kind { return KindSell }

// TransactionConfirmation reports a committed trade.
type TransactionConfirmation struct {
	Text string
}

func (TransactionConfirmation) Kind() Kind { return KindConfirmation }

// TransactionRefusal is the negative reply to any request, carrying a
// human-readable reason.
type TransactionRefusal struct {
	Reason string
}

func (TransactionRefusal) Kind() Kind { return KindRefusal }

// Watch subscribes the requesting client to Symbol's topic events.
type Watch struct {
	Symbol string
}

func (Watch) Kind() Kind { return KindWatch }

// Unwatch removes the requesting client's subscription to Symbol.
type Unwatch struct {
	Symbol string
}

func (Unwatch) Kind() Kind { return KindUnwatch }

// SubscriptionAck answers Watch and Unwatch. Subscribed reflects the state
// after the request; Note signals "already subscribed" / "not subscribed"
// for the idempotent cases.
type SubscriptionAck struct {
	Symbol     string
	Subscribed bool
	Note       string
}

func (SubscriptionAck) Kind() Kind { return KindSubscriptionAck }

// Deregister tears the requesting client's session down. No reply is sent.
type Deregister struct{}

func (Deregister) Kind() Kind { return KindDeregister }
