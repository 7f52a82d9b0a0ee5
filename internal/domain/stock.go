package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Stock represents a single listed stock held by the venue.
// Price is mutated only by the price feed; Available only by the trading
// engine. Both mutations happen under the store lock.
type Stock struct {
	Symbol    string
	Total     int64 // shares issued by the venue
	Available int64 // unsold shares, 0 <= Available <= Total
	Price     decimal.Decimal
}

// StockSnapshot is a copy of a stock's state taken under the store lock.
// Snapshots never alias live store entries.
type StockSnapshot struct {
	Symbol    string
	Total     int64
	Available int64
	Price     decimal.Decimal
}

// Snapshot returns a detached copy of the stock.
func (s *Stock) Snapshot() StockSnapshot {
	return StockSnapshot{
		Symbol:    s.Symbol,
		Total:     s.Total,
		Available: s.Available,
		Price:     s.Price,
	}
}

func (s StockSnapshot) String() string {
	return fmt.Sprintf("%s -- price: %s -- available: %d -- sum: %d",
		s.Symbol, FormatAmount(s.Price), s.Available, s.Total)
}

// Lot is a quantity of one stock acquired in a single trade at one price.
type Lot struct {
	Symbol    string
	Quantity  int64
	UnitPrice decimal.Decimal
}
