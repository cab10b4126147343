package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/swaplane/twap-engine/orders"
)

// OrderProvider returns the reconciled order history for an account.
type OrderProvider interface {
	Orders(ctx context.Context, account string) ([]orders.Order, error)
}

type OrderResponse struct {
	orders.Order
	Status   orders.Status `json:"status"`
	Progress float64       `json:"progress"`
}

type OrdersHandler struct {
	providersByChain map[uint64]OrderProvider
}

func NewOrdersHandler(providersByChain map[uint64]OrderProvider) *OrdersHandler {
	return &OrdersHandler{
		providersByChain: providersByChain,
	}
}

// HandleOrders returns the merged order history for the requested account
// with derived status and fill progress attached
func (h *OrdersHandler) HandleOrders(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	chainId, ok := new(big.Int).SetString(vars["chainId"], 10)
	if !ok {
		JSONError(w, fmt.Errorf("invalid chainId"), http.StatusBadRequest)
		return
	}

	account := r.URL.Query().Get("account")
	if account == "" {
		JSONError(w, fmt.Errorf("missing account"), http.StatusBadRequest)
		return
	}

	provider, ok := h.providersByChain[chainId.Uint64()]
	if !ok {
		JSONError(w, fmt.Errorf("no orders for chainID: %d", chainId.Uint64()), http.StatusNotFound)
		return
	}

	history, err := provider.Orders(r.Context(), account)
	if err != nil {
		JSONError(w, err, http.StatusInternalServerError)
		return
	}

	now := time.Now()
	resp := make([]OrderResponse, 0, len(history))
	for _, o := range history {
		resp = append(resp, OrderResponse{
			Order:    o,
			Status:   o.ComputeStatus(now),
			Progress: o.Progress(),
		})
	}

	data, _ := json.Marshal(resp)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
