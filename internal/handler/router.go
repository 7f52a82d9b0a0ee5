// Package handler exposes a read-only HTTP surface over the venue's state:
// stock snapshots, price history, and client profiles, for operators and
// monitoring. All trading happens over the message protocol, never here.
package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/efreitasn/stockbroker/internal/engine"
	"github.com/efreitasn/stockbroker/internal/store"
)

// NewRouter creates a chi router with all routes registered and request
// logging middleware.
func NewRouter(eng *engine.TradingEngine, history *store.HistoryStore, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(requestLogging(logger))

	stockH := NewStockHandler(eng, history)
	clientH := NewClientHandler(eng)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/stocks", stockH.List)
	r.Get("/stocks/{symbol}", stockH.Info)
	r.Get("/stocks/{symbol}/history", stockH.History)

	r.Get("/clients/{client_id}/profile", clientH.Profile)

	return r
}

// requestLogging returns middleware that logs each request's method, path,
// status code, and duration.
func requestLogging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}
