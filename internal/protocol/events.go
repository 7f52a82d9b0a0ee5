package protocol

import "github.com/shopspring/decimal"

// EventKind identifies the stock events published on topic channels.
type EventKind string

const (
	EventPriceChanged EventKind = "PRICE_CHANGED"
	EventStockSold    EventKind = "STOCK_SOLD"
	EventStockBought  EventKind = "STOCK_BOUGHT"
)

// StockEvent is published to the topic of a single symbol. Price is set for
// PRICE_CHANGED; Remaining carries the post-trade available count for
// STOCK_SOLD and STOCK_BOUGHT.
type StockEvent struct {
	Event     EventKind
	Symbol    string
	Price     decimal.Decimal
	Remaining int64
}

func (StockEvent) Kind() Kind { return KindStockEvent }

// TopicName returns the topic channel name for a stock symbol. One topic
// exists per symbol.
func TopicName(symbol string) string {
	return "stock." + symbol
}
