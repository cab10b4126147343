package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/suite"

	"github.com/swaplane/twap-engine/api/handlers"
	"github.com/swaplane/twap-engine/orders"
)

type stubProvider struct {
	orders []orders.Order
	err    error
}

func (p *stubProvider) Orders(ctx context.Context, account string) ([]orders.Order, error) {
	return p.orders, p.err
}

type OrdersHandlerTestSuite struct {
	suite.Suite
}

func TestRunOrdersHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(OrdersHandlerTestSuite))
}

func (s *OrdersHandlerTestSuite) Test_HandleOrders_InvalidChainID() {
	handler := handlers.NewOrdersHandler(map[uint64]handlers.OrderProvider{})

	req := httptest.NewRequest(http.MethodGet, "/v1/chains/1/orders?account=0xmaker", nil)
	req = mux.SetURLVars(req, map[string]string{
		"chainId": "invalid",
	})

	recorder := httptest.NewRecorder()

	handler.HandleOrders(recorder, req)

	s.Equal(http.StatusBadRequest, recorder.Code)
}

func (s *OrdersHandlerTestSuite) Test_HandleOrders_MissingAccount() {
	handler := handlers.NewOrdersHandler(map[uint64]handlers.OrderProvider{})

	req := httptest.NewRequest(http.MethodGet, "/v1/chains/1/orders", nil)
	req = mux.SetURLVars(req, map[string]string{
		"chainId": "1",
	})

	recorder := httptest.NewRecorder()

	handler.HandleOrders(recorder, req)

	s.Equal(http.StatusBadRequest, recorder.Code)
}

func (s *OrdersHandlerTestSuite) Test_HandleOrders_ChainNotFound() {
	handler := handlers.NewOrdersHandler(map[uint64]handlers.OrderProvider{})

	req := httptest.NewRequest(http.MethodGet, "/v1/chains/1/orders?account=0xmaker", nil)
	req = mux.SetURLVars(req, map[string]string{
		"chainId": "1",
	})

	recorder := httptest.NewRecorder()

	handler.HandleOrders(recorder, req)

	s.Equal(http.StatusNotFound, recorder.Code)
}

func (s *OrdersHandlerTestSuite) Test_HandleOrders_ProviderError() {
	handler := handlers.NewOrdersHandler(map[uint64]handlers.OrderProvider{
		1: &stubProvider{err: errors.New("indexer down")},
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/chains/1/orders?account=0xmaker", nil)
	req = mux.SetURLVars(req, map[string]string{
		"chainId": "1",
	})

	recorder := httptest.NewRecorder()

	handler.HandleOrders(recorder, req)

	s.Equal(http.StatusInternalServerError, recorder.Code)
}

func (s *OrdersHandlerTestSuite) Test_HandleOrders_ValidOrders() {
	future := time.Now().Add(time.Hour).UnixMilli()
	handler := handlers.NewOrdersHandler(map[uint64]handlers.OrderProvider{
		1: &stubProvider{orders: []orders.Order{
			{
				ID:              5,
				Maker:           "0xmaker",
				SrcAmount:       orders.NewBigInt(big.NewInt(1000)),
				FilledSrcAmount: orders.NewBigInt(big.NewInt(250)),
				DeadlineMillis:  future,
			},
		}},
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/chains/1/orders?account=0xmaker", nil)
	req = mux.SetURLVars(req, map[string]string{
		"chainId": "1",
	})

	recorder := httptest.NewRecorder()

	handler.HandleOrders(recorder, req)

	s.Equal(http.StatusOK, recorder.Code)

	data, err := io.ReadAll(recorder.Body)
	s.Nil(err)

	var resp []handlers.OrderResponse
	s.Nil(json.Unmarshal(data, &resp))
	s.Len(resp, 1)
	s.Equal(uint64(5), resp[0].ID)
	s.Equal(orders.StatusOpen, resp[0].Status)
	s.Equal(float64(25), resp[0].Progress)
}
