// Package store holds the broker's shared mutable state: the account and
// inventory store guarded by a single coarse lock, and the btree-backed
// price-tick history.
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/efreitasn/stockbroker/internal/domain"
)

// Store is the account & inventory store. One mutex guards both maps so two
// concurrent trades, or a trade concurrent with a price tick, never
// interleave partially. All reads return detached copies.
type Store struct {
	mu      sync.Mutex
	stocks  map[string]*domain.Stock
	clients map[string]*domain.ClientSession
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		stocks:  make(map[string]*domain.Stock),
		clients: make(map[string]*domain.ClientSession),
	}
}

// AddStock lists a stock with the full issue available for sale.
func (s *Store) AddStock(symbol string, total int64, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stocks[symbol] = &domain.Stock{
		Symbol:    symbol,
		Total:     total,
		Available: total,
		Price:     price,
	}
}

// Symbols returns the listed symbols in lexical order.
func (s *Store) Symbols() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	symbols := make([]string, 0, len(s.stocks))
	for sym := range s.stocks {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return symbols
}

// ListStocks returns a snapshot of every listed stock, ordered by symbol.
func (s *Store) ListStocks() []domain.StockSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snaps := make([]domain.StockSnapshot, 0, len(s.stocks))
	for _, st := range s.stocks {
		snaps = append(snaps, st.Snapshot())
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Symbol < snaps[j].Symbol })
	return snaps
}

// StockInfo returns a single stock's snapshot. It returns
// domain.ErrUnknownStock for unlisted symbols.
func (s *Store) StockInfo(symbol string) (domain.StockSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.stocks[symbol]
	if !ok {
		return domain.StockSnapshot{}, domain.ErrUnknownStock
	}
	return st.Snapshot(), nil
}

// HasStock returns true if the symbol is listed.
func (s *Store) HasStock(symbol string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.stocks[symbol]
	return ok
}

// SetPrice updates a stock's current price under the store lock. It reports
// whether the price actually changed. Unlisted symbols return
// domain.ErrUnknownStock.
func (s *Store) SetPrice(symbol string, price decimal.Decimal) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.stocks[symbol]
	if !ok {
		return false, domain.ErrUnknownStock
	}
	if st.Price.Equal(price) {
		return false, nil
	}
	st.Price = price
	return true, nil
}

// CreateClient adds a session to the store. It returns
// domain.ErrDuplicateClient if the identifier is already registered.
func (s *Store) CreateClient(c *domain.ClientSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.clients[c.ClientID]; exists {
		return domain.ErrDuplicateClient
	}
	if c.Holdings == nil {
		c.Holdings = make(map[string]int64)
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	s.clients[c.ClientID] = c
	return nil
}

// RemoveClient drops a session. It reports whether the client was present.
func (s *Store) RemoveClient(clientID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.clients[clientID]
	delete(s.clients, clientID)
	return ok
}

// HasClient returns true if the client identifier has a live session.
func (s *Store) HasClient(clientID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.clients[clientID]
	return ok
}

// Profile returns a copy of the client's funds and holdings, ordered by
// symbol. It returns domain.ErrUnknownClient for unknown identifiers.
func (s *Store) Profile(clientID string) (domain.ProfileSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[clientID]
	if !ok {
		return domain.ProfileSnapshot{}, domain.ErrUnknownClient
	}

	holdings := make([]domain.HoldingSnapshot, 0, len(c.Holdings))
	for sym, qty := range c.Holdings {
		holdings = append(holdings, domain.HoldingSnapshot{Symbol: sym, Quantity: qty})
	}
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Symbol < holdings[j].Symbol })

	return domain.ProfileSnapshot{
		ClientID: c.ClientID,
		Funds:    c.Funds,
		Holdings: holdings,
	}, nil
}

// ExecuteBuy atomically validates and commits a purchase: debit the client's
// funds by quantity*price, decrement the stock's available count, credit the
// holding. No mutation occurs on any failure path. It returns the lot and
// the post-trade available count.
func (s *Store) ExecuteBuy(clientID, symbol string, quantity int64) (domain.Lot, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.stocks[symbol]
	if !ok {
		return domain.Lot{}, 0, domain.ErrUnknownStock
	}
	c, ok := s.clients[clientID]
	if !ok {
		return domain.Lot{}, 0, domain.ErrUnknownClient
	}
	if quantity > st.Available {
		return domain.Lot{}, 0, domain.ErrInsufficientInventory
	}
	cost := domain.Cost(st.Price, quantity)
	if c.Funds.Cmp(cost) < 0 {
		return domain.Lot{}, 0, domain.ErrInsufficientFunds
	}

	c.Funds = c.Funds.Sub(cost)
	st.Available -= quantity
	c.Holdings[symbol] += quantity

	return domain.Lot{Symbol: symbol, Quantity: quantity, UnitPrice: st.Price}, st.Available, nil
}

// ExecuteSell atomically validates and commits a sale: decrement the
// client's holding (removing it at zero), increment the stock's available
// count, credit quantity*price to the client's funds. No mutation occurs on
// any failure path. It returns the unit price used and the post-trade
// available count.
func (s *Store) ExecuteSell(clientID, symbol string, quantity int64) (decimal.Decimal, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[clientID]
	if !ok {
		return decimal.Zero, 0, domain.ErrUnknownClient
	}
	held, ok := c.Holdings[symbol]
	if !ok {
		return decimal.Zero, 0, domain.ErrNoSuchHolding
	}
	if quantity > held {
		return decimal.Zero, 0, domain.ErrInsufficientHolding
	}
	st, ok := s.stocks[symbol]
	if !ok {
		return decimal.Zero, 0, domain.ErrUnknownStock
	}

	if held == quantity {
		delete(c.Holdings, symbol)
	} else {
		c.Holdings[symbol] = held - quantity
	}
	st.Available += quantity
	c.Funds = c.Funds.Add(domain.Cost(st.Price, quantity))

	return st.Price, st.Available, nil
}
