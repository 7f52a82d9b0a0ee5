// Package feed implements the background price ticker: it consumes dated
// price rows from a CSV source and applies them to the store, one row per
// configured interval.
package feed

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/efreitasn/stockbroker/internal/domain"
	"github.com/efreitasn/stockbroker/internal/protocol"
	"github.com/efreitasn/stockbroker/internal/store"
)

// Publisher distributes PRICE_CHANGED events after a tick commits.
type Publisher interface {
	Publish(symbol string, ev protocol.StockEvent)
}

// PriceFeed replays a CSV of dated price rows against the store. It runs
// once through the source; a read failure stops the feed and leaves stale
// prices in effect. Trading stays available throughout.
type PriceFeed struct {
	store    *store.Store
	history  *store.HistoryStore
	pub      Publisher
	interval time.Duration
	log      *zap.Logger
}

// New creates a price feed ticking at the given interval.
func New(st *store.Store, history *store.HistoryStore, pub Publisher, interval time.Duration, log *zap.Logger) *PriceFeed {
	return &PriceFeed{
		store:    st,
		history:  history,
		pub:      pub,
		interval: interval,
		log:      log,
	}
}

// RunFile opens path and runs the feed over it.
func (f *PriceFeed) RunFile(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		f.log.Error("price feed source unavailable", zap.String("path", path), zap.Error(err))
		return err
	}
	defer file.Close()
	return f.Run(ctx, file)
}

// Run consumes the source row by row. The header row names a Date column
// plus one column per symbol. For each data row every parseable cell sets
// that symbol's price under the store lock and is recorded in the history;
// a cell that actually changed the price produces one PRICE_CHANGED event
// on that symbol's topic. The feed then sleeps for the configured interval.
func (f *PriceFeed) Run(ctx context.Context, r io.Reader) error {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		f.log.Error("price feed header unreadable", zap.Error(err))
		return fmt.Errorf("read price feed header: %w", err)
	}

	// Column index → symbol; the Date column is informational only.
	symbols := make(map[int]string, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if strings.EqualFold(name, "Date") {
			continue
		}
		symbols[i] = name
	}

	rows := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		row, err := cr.Read()
		if err == io.EOF {
			f.log.Info("price feed exhausted", zap.Int("rows", rows))
			return nil
		}
		if err != nil {
			f.log.Error("price feed read failed, feed stopped", zap.Error(err))
			return fmt.Errorf("read price feed row: %w", err)
		}
		rows++

		f.applyRow(row, symbols)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(f.interval):
		}
	}
}

// applyRow sets each symbol's price from the row. Blank and unparseable
// cells are skipped; unknown symbols are ignored.
func (f *PriceFeed) applyRow(row []string, symbols map[int]string) {
	now := time.Now()
	for i, symbol := range symbols {
		if i >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[i])
		if cell == "" {
			continue
		}
		price, err := decimal.NewFromString(cell)
		if err != nil {
			f.log.Warn("unparseable price cell skipped",
				zap.String("symbol", symbol),
				zap.String("cell", cell),
			)
			continue
		}

		changed, err := f.store.SetPrice(symbol, price)
		if err == domain.ErrUnknownStock {
			continue
		}
		f.history.Record(symbol, price, now)
		if !changed {
			continue
		}
		f.pub.Publish(symbol, protocol.StockEvent{
			Event:  protocol.EventPriceChanged,
			Symbol: symbol,
			Price:  price,
		})
	}
}
