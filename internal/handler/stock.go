package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/efreitasn/stockbroker/internal/domain"
	"github.com/efreitasn/stockbroker/internal/engine"
	"github.com/efreitasn/stockbroker/internal/store"
)

// StockHandler handles HTTP requests for stock endpoints.
type StockHandler struct {
	engine  *engine.TradingEngine
	history *store.HistoryStore
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(eng *engine.TradingEngine, history *store.HistoryStore) *StockHandler {
	return &StockHandler{engine: eng, history: history}
}

// stockResponse is the JSON shape of one stock snapshot.
type stockResponse struct {
	Symbol    string `json:"symbol"`
	Total     int64  `json:"total"`
	Available int64  `json:"available"`
	Price     string `json:"price"`
}

func toStockResponse(s domain.StockSnapshot) stockResponse {
	return stockResponse{
		Symbol:    s.Symbol,
		Total:     s.Total,
		Available: s.Available,
		Price:     domain.FormatAmount(s.Price),
	}
}

// List handles GET /stocks.
func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	snaps := h.engine.ListStocks()
	stocks := make([]stockResponse, len(snaps))
	for i, s := range snaps {
		stocks[i] = toStockResponse(s)
	}
	WriteJSON(w, http.StatusOK, map[string]any{"stocks": stocks})
}

// Info handles GET /stocks/{symbol}.
func (h *StockHandler) Info(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	snap, err := h.engine.Info(symbol)
	if err != nil {
		mapError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toStockResponse(snap))
}

// tickResponse is one history entry in the JSON response.
type tickResponse struct {
	At    string `json:"at"`
	Price string `json:"price"`
}

// History handles GET /stocks/{symbol}/history?limit=.
func (h *StockHandler) History(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		var err error
		limit, err = strconv.Atoi(l)
		if err != nil || limit < 1 || limit > 1000 {
			WriteError(w, http.StatusBadRequest, "validation_error", "limit must be an integer between 1 and 1000")
			return
		}
	}

	if _, err := h.engine.Info(symbol); err != nil {
		mapError(w, err)
		return
	}

	ticks := h.history.Recent(symbol, limit)
	out := make([]tickResponse, len(ticks))
	for i, t := range ticks {
		out[i] = tickResponse{
			At:    t.At.UTC().Format(time.RFC3339),
			Price: domain.FormatAmount(t.Price),
		}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"symbol": symbol, "ticks": out})
}
