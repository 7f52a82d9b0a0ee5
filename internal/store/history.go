package store

import (
	"sync"
	"time"

	"github.com/google/btree"
	"github.com/shopspring/decimal"
)

// PriceTick is one recorded price observation for a symbol.
type PriceTick struct {
	Seq   uint64
	At    time.Time
	Price decimal.Decimal
}

// tickLess orders ticks by sequence, oldest first.
func tickLess(a, b PriceTick) bool {
	return a.Seq < b.Seq
}

// HistoryStore keeps an ordered per-symbol history of price ticks. Each feed
// tick is recorded; the HTTP surface reads recent windows from it.
type HistoryStore struct {
	mu       sync.RWMutex
	seq      uint64
	bySymbol map[string]*btree.BTreeG[PriceTick]
	maxTicks int
}

// NewHistoryStore creates a history store keeping at most maxTicks entries
// per symbol. maxTicks <= 0 means unbounded.
func NewHistoryStore(maxTicks int) *HistoryStore {
	return &HistoryStore{
		bySymbol: make(map[string]*btree.BTreeG[PriceTick]),
		maxTicks: maxTicks,
	}
}

// Record appends a price observation for the symbol.
func (h *HistoryStore) Record(symbol string, price decimal.Decimal, at time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()

	tree, ok := h.bySymbol[symbol]
	if !ok {
		const degree = 16
		tree = btree.NewG[PriceTick](degree, tickLess)
		h.bySymbol[symbol] = tree
	}

	h.seq++
	tree.ReplaceOrInsert(PriceTick{Seq: h.seq, At: at, Price: price})

	if h.maxTicks > 0 {
		for tree.Len() > h.maxTicks {
			tree.DeleteMin()
		}
	}
}

// Recent returns up to n of the newest ticks for the symbol, oldest first.
// Unknown symbols return an empty slice.
func (h *HistoryStore) Recent(symbol string, n int) []PriceTick {
	h.mu.RLock()
	defer h.mu.RUnlock()

	tree, ok := h.bySymbol[symbol]
	if !ok || n <= 0 {
		return []PriceTick{}
	}

	ticks := make([]PriceTick, 0, n)
	tree.Descend(func(t PriceTick) bool {
		ticks = append(ticks, t)
		return len(ticks) < n
	})

	// Descend collects newest first; flip to chronological order.
	for i, j := 0, len(ticks)-1; i < j; i, j = i+1, j-1 {
		ticks[i], ticks[j] = ticks[j], ticks[i]
	}
	return ticks
}

// Len returns the number of recorded ticks for the symbol.
func (h *HistoryStore) Len(symbol string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	tree, ok := h.bySymbol[symbol]
	if !ok {
		return 0
	}
	return tree.Len()
}
