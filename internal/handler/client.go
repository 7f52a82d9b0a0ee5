package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/efreitasn/stockbroker/internal/domain"
	"github.com/efreitasn/stockbroker/internal/engine"
)

// ClientHandler handles HTTP requests for client endpoints.
type ClientHandler struct {
	engine *engine.TradingEngine
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(eng *engine.TradingEngine) *ClientHandler {
	return &ClientHandler{engine: eng}
}

// holdingResponse is one holding entry in the profile response.
type holdingResponse struct {
	Symbol   string `json:"symbol"`
	Quantity int64  `json:"quantity"`
}

// profileResponse is the JSON response for GET /clients/{client_id}/profile.
type profileResponse struct {
	ClientID string            `json:"client_id"`
	Funds    string            `json:"funds"`
	Holdings []holdingResponse `json:"holdings"`
}

// Profile handles GET /clients/{client_id}/profile.
func (h *ClientHandler) Profile(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "client_id")

	profile, err := h.engine.Profile(clientID)
	if err != nil {
		mapError(w, err)
		return
	}

	holdings := make([]holdingResponse, len(profile.Holdings))
	for i, hs := range profile.Holdings {
		holdings[i] = holdingResponse{Symbol: hs.Symbol, Quantity: hs.Quantity}
	}
	WriteJSON(w, http.StatusOK, profileResponse{
		ClientID: profile.ClientID,
		Funds:    domain.FormatAmount(profile.Funds),
		Holdings: holdings,
	})
}

// mapError maps domain errors to HTTP responses.
func mapError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrUnknownStock):
		WriteError(w, http.StatusNotFound, "unknown_stock", "No such stock.")
	case errors.Is(err, domain.ErrUnknownClient):
		WriteError(w, http.StatusNotFound, "unknown_client", "No such client.")
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
