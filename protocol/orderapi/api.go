package orderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/swaplane/twap-engine/orders"
)

type SignedOrder struct {
	ID              uint64         `json:"id"`
	TxHash          string         `json:"txHash"`
	Swapper         string         `json:"swapper"`
	Exchange        string         `json:"exchange"`
	InToken         string         `json:"inToken"`
	OutToken        string         `json:"outToken"`
	InAmount        *orders.BigInt `json:"inAmount"`
	ChunkAmount     *orders.BigInt `json:"chunkAmount"`
	MinChunkOut     *orders.BigInt `json:"minChunkOut"`
	FilledInAmount  *orders.BigInt `json:"filledInAmount"`
	FilledOutAmount *orders.BigInt `json:"filledOutAmount"`
	Deadline        int64          `json:"deadline"`
	FillDelayMillis int64          `json:"fillDelayMillis"`
	CreatedAt       int64          `json:"createdAt"`
	Status          string         `json:"status"`
}

type ordersResponse struct {
	Orders []SignedOrder `json:"orders"`
}

type submitRequest struct {
	Order     *apitypes.TypedData `json:"order"`
	Signature string              `json:"signature"`
}

type submitResponse struct {
	ID uint64 `json:"id"`
}

// OrderAPI is the REST source for signature-based orders. It both reads the
// chunk-tracked order history and relays new signed typed-data orders.
type OrderAPI struct {
	URL        string
	ChainID    uint64
	HTTPClient *http.Client
}

func NewOrderAPI(url string, chainID uint64) *OrderAPI {
	return &OrderAPI{
		URL:     url,
		ChainID: chainID,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Orders fetches the signed-order history for the account.
func (a *OrderAPI) Orders(ctx context.Context, account string) ([]orders.Order, error) {
	url := fmt.Sprintf("%s/orders?swapper=%s&chainId=%d", a.URL, account, a.ChainID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d, %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	s := new(ordersResponse)
	if err := json.Unmarshal(body, s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	result := make([]orders.Order, 0, len(s.Orders))
	for _, o := range s.Orders {
		result = append(result, orders.Order{
			ID:              o.ID,
			TxHash:          o.TxHash,
			Maker:           o.Swapper,
			Exchange:        o.Exchange,
			SrcToken:        o.InToken,
			DstToken:        o.OutToken,
			SrcAmount:       o.InAmount,
			SrcChunkAmount:  o.ChunkAmount,
			DstMinAmount:    o.MinChunkOut,
			FilledSrcAmount: zeroIfNil(o.FilledInAmount),
			FilledDstAmount: zeroIfNil(o.FilledOutAmount),
			DeadlineMillis:  o.Deadline,
			FillDelayMillis: o.FillDelayMillis,
			CreatedAtMillis: o.CreatedAt,
			Canceled:        o.Status == "canceled",
		})
	}
	return result, nil
}

// SubmitOrder relays a signed typed-data order and returns the id the API
// assigned to it.
func (a *OrderAPI) SubmitOrder(ctx context.Context, order *apitypes.TypedData, signature []byte) (uint64, error) {
	body, err := json.Marshal(submitRequest{
		Order:     order,
		Signature: hexutil.Encode(signature),
	})
	if err != nil {
		return 0, err
	}

	url := fmt.Sprintf("%s/orders/new", a.URL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		data, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("unexpected status code: %d, %s", resp.StatusCode, string(data))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response body: %w", err)
	}

	s := new(submitResponse)
	if err := json.Unmarshal(data, s); err != nil {
		return 0, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return s.ID, nil
}

func zeroIfNil(b *orders.BigInt) *orders.BigInt {
	if b == nil || b.Int == nil {
		return orders.NewBigInt(big.NewInt(0))
	}
	return b
}
