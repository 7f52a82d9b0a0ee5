package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClientSession represents a registered client: the account state mutated by
// the trading engine plus the names of the private channel pair provisioned
// at registration. Exactly one session exists per client identifier.
type ClientSession struct {
	ClientID   string
	Funds      decimal.Decimal  // never negative
	Holdings   map[string]int64 // symbol → owned quantity, entry removed at zero
	ToBroker   string           // client → broker queue name
	FromBroker string           // broker → client queue name
	CreatedAt  time.Time
}

// HoldingSnapshot is one entry of a profile's holdings copy.
type HoldingSnapshot struct {
	Symbol   string
	Quantity int64
}

// ProfileSnapshot is a copy of a client's account state taken under the
// store lock.
type ProfileSnapshot struct {
	ClientID string
	Funds    decimal.Decimal
	Holdings []HoldingSnapshot
}
