// Package engine implements the trading operations: buy and sell against the
// account & inventory store, plus the read-only snapshots behind list, info
// and profile.
package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/efreitasn/stockbroker/internal/domain"
	"github.com/efreitasn/stockbroker/internal/protocol"
	"github.com/efreitasn/stockbroker/internal/store"
)

// Publisher distributes stock events after a trade commits.
type Publisher interface {
	Publish(symbol string, ev protocol.StockEvent)
}

// TradingEngine validates and executes trading requests. The store's coarse
// lock makes each trade atomic; the engine publishes the matching event only
// after the mutation has committed.
type TradingEngine struct {
	store *store.Store
	pub   Publisher
	log   *zap.Logger
}

// New creates a trading engine.
func New(st *store.Store, pub Publisher, log *zap.Logger) *TradingEngine {
	return &TradingEngine{store: st, pub: pub, log: log}
}

// Buy purchases quantity shares of symbol for the client at the current
// price. On success the committed lot is reported and a STOCK_BOUGHT event
// is published to the symbol's topic.
func (e *TradingEngine) Buy(clientID, symbol string, quantity int64) (domain.Lot, error) {
	if quantity <= 0 {
		return domain.Lot{}, &domain.ValidationError{Message: "quantity must be a positive integer"}
	}

	lot, remaining, err := e.store.ExecuteBuy(clientID, symbol, quantity)
	if err != nil {
		return domain.Lot{}, err
	}

	e.log.Info("buy executed",
		zap.String("client_id", clientID),
		zap.String("symbol", symbol),
		zap.Int64("quantity", quantity),
		zap.String("unit_price", lot.UnitPrice.String()),
	)
	e.pub.Publish(symbol, protocol.StockEvent{
		Event:     protocol.EventStockBought,
		Symbol:    symbol,
		Remaining: remaining,
	})
	return lot, nil
}

// Sell sells quantity shares of symbol back to the venue at the current
// price. On success the unit price used is reported and a STOCK_SOLD event
// is published to the symbol's topic.
func (e *TradingEngine) Sell(clientID, symbol string, quantity int64) (domain.Lot, error) {
	if quantity <= 0 {
		return domain.Lot{}, &domain.ValidationError{Message: "quantity must be a positive integer"}
	}

	price, remaining, err := e.store.ExecuteSell(clientID, symbol, quantity)
	if err != nil {
		return domain.Lot{}, err
	}

	e.log.Info("sell executed",
		zap.String("client_id", clientID),
		zap.String("symbol", symbol),
		zap.Int64("quantity", quantity),
		zap.String("unit_price", price.String()),
	)
	e.pub.Publish(symbol, protocol.StockEvent{
		Event:     protocol.EventStockSold,
		Symbol:    symbol,
		Remaining: remaining,
	})
	return domain.Lot{Symbol: symbol, Quantity: quantity, UnitPrice: price}, nil
}

// ListStocks returns a snapshot of every listed stock.
func (e *TradingEngine) ListStocks() []domain.StockSnapshot {
	return e.store.ListStocks()
}

// Info returns a single stock's snapshot.
func (e *TradingEngine) Info(symbol string) (domain.StockSnapshot, error) {
	return e.store.StockInfo(symbol)
}

// Profile returns the client's funds and holdings snapshot.
func (e *TradingEngine) Profile(clientID string) (domain.ProfileSnapshot, error) {
	return e.store.Profile(clientID)
}

// ConfirmationText renders the human-readable confirmation for a committed
// trade, with the price truncated to two fraction digits for display.
func ConfirmationText(verb string, lot domain.Lot) string {
	return fmt.Sprintf("Confirmation: %d stocks of %s %s. Price: %s",
		lot.Quantity, lot.Symbol, verb, domain.FormatAmount(lot.UnitPrice))
}

// RefusalText renders the human-readable reason for a refused trade.
func RefusalText(err error) string {
	switch {
	case err == nil:
		return ""
	case err == domain.ErrUnknownStock:
		return "No such stock."
	case err == domain.ErrUnknownClient:
		return "No such client."
	case err == domain.ErrInsufficientInventory:
		return "Requested stock quantity is not available."
	case err == domain.ErrInsufficientFunds:
		return "Insufficient funds."
	case err == domain.ErrNoSuchHolding:
		return "Client has no stocks of this type."
	case err == domain.ErrInsufficientHolding:
		return "Client has not enough stocks of this type."
	case err == domain.ErrMalformedRequest:
		return "Malformed request."
	default:
		return err.Error()
	}
}
