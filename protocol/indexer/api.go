package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/swaplane/twap-engine/orders"
)

const pageSize = 1000

const createdOrdersQuery = `
query ($exchange: String!, $maker: String!, $first: Int!, $skip: Int!) {
  orderCreateds(
    where: { exchange: $exchange, maker: $maker }
    orderBy: timestamp
    orderDirection: desc
    first: $first
    skip: $skip
  ) {
    twapId
    transactionHash
    maker
    exchange
    srcToken
    dstToken
    srcAmount
    srcBidAmount
    dstMinAmount
    deadline
    fillDelay
    timestamp
  }
}`

const orderFillsQuery = `
query ($exchange: String!, $maker: String!, $first: Int!, $skip: Int!) {
  orderFilleds(
    where: { exchange: $exchange, maker: $maker }
    first: $first
    skip: $skip
  ) {
    twapId
    srcAmountIn
    dstAmountOut
  }
}`

const canceledOrdersQuery = `
query ($exchange: String!, $maker: String!) {
  orderCanceleds(where: { exchange: $exchange, maker: $maker }, first: 1000) {
    twapId
  }
}`

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type createdRecord struct {
	TwapID          uint64          `json:"twapId,string"`
	TransactionHash string          `json:"transactionHash"`
	Maker           string          `json:"maker"`
	Exchange        string          `json:"exchange"`
	SrcToken        string          `json:"srcToken"`
	DstToken        string          `json:"dstToken"`
	SrcAmount       *orders.BigInt  `json:"srcAmount"`
	SrcBidAmount    *orders.BigInt  `json:"srcBidAmount"`
	DstMinAmount    *orders.BigInt  `json:"dstMinAmount"`
	Deadline        int64           `json:"deadline,string"`
	FillDelay       int64           `json:"fillDelay,string"`
	Timestamp       int64           `json:"timestamp,string"`
}

type fillRecord struct {
	TwapID       uint64         `json:"twapId,string"`
	SrcAmountIn  *orders.BigInt `json:"srcAmountIn"`
	DstAmountOut *orders.BigInt `json:"dstAmountOut"`
}

type canceledRecord struct {
	TwapID uint64 `json:"twapId,string"`
}

// IndexerAPI reads order-creation, fill and cancellation records from the
// exchange subgraph. It covers protocol versions settled fully on-chain; the
// signature-based versions live on the order API instead.
type IndexerAPI struct {
	URL        string
	Exchange   string
	HTTPClient *http.Client
}

func NewIndexerAPI(url string, exchange string) *IndexerAPI {
	return &IndexerAPI{
		URL:      url,
		Exchange: exchange,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Orders fetches the full order history for the account and folds fill and
// cancellation records into it.
func (a *IndexerAPI) Orders(ctx context.Context, account string) ([]orders.Order, error) {
	created, err := a.createdOrders(ctx, account)
	if err != nil {
		return nil, err
	}
	if len(created) == 0 {
		return []orders.Order{}, nil
	}

	fills, err := a.fills(ctx, account)
	if err != nil {
		return nil, err
	}
	canceled, err := a.canceledIDs(ctx, account)
	if err != nil {
		return nil, err
	}

	result := make([]orders.Order, 0, len(created))
	for _, c := range created {
		fill, ok := fills[c.TwapID]
		if !ok {
			fill = fillTotal{src: new(big.Int), dst: new(big.Int)}
		}
		_, isCanceled := canceled[c.TwapID]

		result = append(result, orders.Order{
			ID:              c.TwapID,
			TxHash:          c.TransactionHash,
			Maker:           c.Maker,
			Exchange:        c.Exchange,
			SrcToken:        c.SrcToken,
			DstToken:        c.DstToken,
			SrcAmount:       c.SrcAmount,
			SrcChunkAmount:  c.SrcBidAmount,
			DstMinAmount:    c.DstMinAmount,
			FilledSrcAmount: orders.NewBigInt(fill.src),
			FilledDstAmount: orders.NewBigInt(fill.dst),
			DeadlineMillis:  c.Deadline * 1000,
			FillDelayMillis: c.FillDelay * 1000,
			CreatedAtMillis: c.Timestamp * 1000,
			Canceled:        isCanceled,
		})
	}
	return result, nil
}

func (a *IndexerAPI) createdOrders(ctx context.Context, account string) ([]createdRecord, error) {
	var all []createdRecord
	for skip := 0; ; skip += pageSize {
		var page struct {
			OrderCreateds []createdRecord `json:"orderCreateds"`
		}
		err := a.query(ctx, createdOrdersQuery, map[string]any{
			"exchange": a.Exchange,
			"maker":    account,
			"first":    pageSize,
			"skip":     skip,
		}, &page)
		if err != nil {
			return nil, err
		}

		all = append(all, page.OrderCreateds...)
		if len(page.OrderCreateds) < pageSize {
			return all, nil
		}
	}
}

type fillTotal struct {
	src *big.Int
	dst *big.Int
}

func (a *IndexerAPI) fills(ctx context.Context, account string) (map[uint64]fillTotal, error) {
	totals := make(map[uint64]fillTotal)
	for skip := 0; ; skip += pageSize {
		var page struct {
			OrderFilleds []fillRecord `json:"orderFilleds"`
		}
		err := a.query(ctx, orderFillsQuery, map[string]any{
			"exchange": a.Exchange,
			"maker":    account,
			"first":    pageSize,
			"skip":     skip,
		}, &page)
		if err != nil {
			return nil, err
		}

		for _, f := range page.OrderFilleds {
			t, ok := totals[f.TwapID]
			if !ok {
				t = fillTotal{src: new(big.Int), dst: new(big.Int)}
			}
			if f.SrcAmountIn != nil && f.SrcAmountIn.Int != nil {
				t.src.Add(t.src, f.SrcAmountIn.Int)
			}
			if f.DstAmountOut != nil && f.DstAmountOut.Int != nil {
				t.dst.Add(t.dst, f.DstAmountOut.Int)
			}
			totals[f.TwapID] = t
		}
		if len(page.OrderFilleds) < pageSize {
			break
		}
	}
	return totals, nil
}

func (a *IndexerAPI) canceledIDs(ctx context.Context, account string) (map[uint64]struct{}, error) {
	var page struct {
		OrderCanceleds []canceledRecord `json:"orderCanceleds"`
	}
	err := a.query(ctx, canceledOrdersQuery, map[string]any{
		"exchange": a.Exchange,
		"maker":    account,
	}, &page)
	if err != nil {
		return nil, err
	}

	ids := make(map[uint64]struct{}, len(page.OrderCanceleds))
	for _, c := range page.OrderCanceleds {
		ids[c.TwapID] = struct{}{}
	}
	return ids, nil
}

func (a *IndexerAPI) query(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(request{Query: query, Variables: variables})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d, %s", resp.StatusCode, a.URL)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	s := new(response)
	if err := json.Unmarshal(data, s); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	if len(s.Errors) > 0 {
		return fmt.Errorf("indexer query failed: %s", s.Errors[0].Message)
	}

	return json.Unmarshal(s.Data, out)
}
