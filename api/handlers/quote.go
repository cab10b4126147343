package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/swaplane/twap-engine/amount"
	"github.com/swaplane/twap-engine/config"
	"github.com/swaplane/twap-engine/twap"
)

// PriceSource returns the USD price for a token symbol.
type PriceSource interface {
	TokenPrice(ctx context.Context, symbol string) (float64, error)
}

// ChainQuoteEnv is the per-chain market environment quotes are derived in.
type ChainQuoteEnv struct {
	Tokens          map[string]config.TokenConfig
	MinChunkSizeUsd uint64
	MaxOrderSizeUsd uint64
}

type DurationRequest struct {
	Unit  string  `json:"unit"`
	Value float64 `json:"value"`
}

func (d *DurationRequest) toDuration() (twap.Duration, error) {
	units := map[string]twap.Unit{
		"minutes": twap.Minutes,
		"hours":   twap.Hours,
		"days":    twap.Days,
		"weeks":   twap.Weeks,
		"months":  twap.Months,
		"years":   twap.Years,
	}
	unit, ok := units[d.Unit]
	if !ok {
		return twap.Duration{}, fmt.Errorf("unknown duration unit %s", d.Unit)
	}
	return twap.Duration{Unit: unit, Value: d.Value}, nil
}

type QuoteRequest struct {
	SrcToken  string `json:"srcToken"`
	DstToken  string `json:"dstToken"`
	SrcAmount string `json:"srcAmount"`
	Kind      string `json:"kind"`

	Chunks    *int64           `json:"chunks,omitempty"`
	FillDelay *DurationRequest `json:"fillDelay,omitempty"`
	Duration  *DurationRequest `json:"duration,omitempty"`

	LimitPrice   string `json:"limitPrice,omitempty"`
	TriggerPrice string `json:"triggerPrice,omitempty"`

	Balance *BigInt `json:"balance,omitempty"`
}

type QuoteError struct {
	Kind  string `json:"kind"`
	Value string `json:"value,omitempty"`
}

type QuoteResponse struct {
	Kind              string `json:"kind"`
	Chunks            int64  `json:"chunks"`
	MaxPossibleChunks int64  `json:"maxPossibleChunks"`

	SrcAmount             *BigInt `json:"srcAmount"`
	SrcChunkAmount        *BigInt `json:"srcChunkAmount"`
	DstAmount             *BigInt `json:"dstAmount,omitempty"`
	DstMinAmountPerChunk  *BigInt `json:"dstMinAmountPerChunk"`
	TriggerAmountPerChunk *BigInt `json:"triggerAmountPerChunk,omitempty"`

	FillDelayMillis int64 `json:"fillDelayMillis"`
	DurationMillis  int64 `json:"durationMillis"`
	DeadlineMillis  int64 `json:"deadlineMillis"`

	MarketPrice string `json:"marketPrice"`

	Error *QuoteError `json:"error,omitempty"`
}

type QuoteHandler struct {
	prices     PriceSource
	chainsByID map[uint64]ChainQuoteEnv
}

func NewQuoteHandler(prices PriceSource, chainsByID map[uint64]ChainQuoteEnv) *QuoteHandler {
	return &QuoteHandler{
		prices:     prices,
		chainsByID: chainsByID,
	}
}

// HandleQuote derives the full order parameter set for a draft and attaches
// the first validation error that would block submission
func (h *QuoteHandler) HandleQuote(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	chainId, ok := new(big.Int).SetString(vars["chainId"], 10)
	if !ok {
		JSONError(w, fmt.Errorf("invalid chainId"), http.StatusBadRequest)
		return
	}

	env, ok := h.chainsByID[chainId.Uint64()]
	if !ok {
		JSONError(w, fmt.Errorf("no quotes for chainID: %d", chainId.Uint64()), http.StatusNotFound)
		return
	}

	req := new(QuoteRequest)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		JSONError(w, err, http.StatusBadRequest)
		return
	}

	srcToken, ok := env.Tokens[req.SrcToken]
	if !ok {
		JSONError(w, fmt.Errorf("unknown token %s", req.SrcToken), http.StatusBadRequest)
		return
	}
	dstToken, ok := env.Tokens[req.DstToken]
	if !ok {
		JSONError(w, fmt.Errorf("unknown token %s", req.DstToken), http.StatusBadRequest)
		return
	}

	resp, err := h.quote(r.Context(), req, env, srcToken, dstToken)
	if err != nil {
		JSONError(w, err, http.StatusInternalServerError)
		return
	}

	data, _ := json.Marshal(resp)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *QuoteHandler) quote(
	ctx context.Context,
	req *QuoteRequest,
	env ChainQuoteEnv,
	srcToken config.TokenConfig,
	dstToken config.TokenConfig,
) (*QuoteResponse, error) {
	srcUsd, err := h.prices.TokenPrice(ctx, req.SrcToken)
	if err != nil {
		return nil, err
	}
	dstUsd, err := h.prices.TokenPrice(ctx, req.DstToken)
	if err != nil {
		return nil, err
	}

	marketPrice := decimal.Zero
	if dstUsd != 0 {
		marketPrice = decimal.NewFromFloat(srcUsd).Div(decimal.NewFromFloat(dstUsd))
	}

	kind := twap.OrderKind(req.Kind)
	if kind == "" {
		kind = twap.KindTwapMarket
	}

	limitPrice := parsePrice(req.LimitPrice)
	triggerPrice := parsePrice(req.TriggerPrice)
	effectivePrice := limitPrice
	if kind.IsMarketOrder() || effectivePrice.IsZero() {
		effectivePrice = marketPrice
	}

	srcAmountRaw, ok := amount.ToRaw(srcToken.Decimals, req.SrcAmount)
	if !ok {
		srcAmountRaw = big.NewInt(0)
	}
	srcUsdDec := decimal.NewFromFloat(srcUsd)
	minChunkUsd := decimal.NewFromInt(int64(env.MinChunkSizeUsd))

	maxChunks := twap.MaxPossibleChunks(req.SrcAmount, srcUsdDec, minChunkUsd)
	chunks := twap.Chunks(maxChunks, kind.IsLimitOnly(), req.Chunks)
	srcChunkAmount := twap.SrcChunkAmount(srcAmountRaw, chunks)

	var typedFillDelay *twap.Duration
	if req.FillDelay != nil {
		d, err := req.FillDelay.toDuration()
		if err != nil {
			return nil, err
		}
		typedFillDelay = &d
	}
	var typedDuration *twap.Duration
	if req.Duration != nil {
		d, err := req.Duration.toDuration()
		if err != nil {
			return nil, err
		}
		typedDuration = &d
	}

	fillDelay := twap.FillDelay(kind.IsLimitOnly(), typedFillDelay)
	duration := twap.OrderDuration(twap.MinDuration(fillDelay, chunks), typedDuration)
	deadline := twap.Deadline(time.Now(), duration)

	dstMinAmount := twap.DestMinAmountPerChunk(srcChunkAmount, effectivePrice, kind.IsMarketOrder(), srcToken.Decimals, dstToken.Decimals)

	resp := &QuoteResponse{
		Kind:                 string(kind),
		Chunks:               chunks,
		MaxPossibleChunks:    maxChunks,
		SrcAmount:            &BigInt{srcAmountRaw},
		SrcChunkAmount:       &BigInt{srcChunkAmount},
		DstMinAmountPerChunk: &BigInt{dstMinAmount},
		FillDelayMillis:      fillDelay.Millis(),
		DurationMillis:       duration.Millis(),
		DeadlineMillis:       deadline,
		MarketPrice:          marketPrice.String(),
	}

	if dstAmount, ok := twap.DestTokenAmount(req.SrcAmount, effectivePrice, dstToken.Decimals); ok {
		resp.DstAmount = &BigInt{dstAmount}
	}
	if triggerAmount, ok := twap.TriggerAmountPerChunk(srcChunkAmount, triggerPrice, srcToken.Decimals, dstToken.Decimals); ok {
		resp.TriggerAmountPerChunk = &BigInt{triggerAmount}
	}

	validation := twap.DraftValidation{
		Kind:              kind,
		SrcAmount:         srcAmountRaw,
		SrcAmountUI:       req.SrcAmount,
		OneSrcTokenUsd:    srcUsdDec,
		MinChunkSizeUsd:   minChunkUsd,
		MaxOrderSizeUsd:   decimal.NewFromInt(int64(env.MaxOrderSizeUsd)),
		LimitPrice:        limitPrice,
		TriggerPrice:      triggerPrice,
		MarketPrice:       marketPrice,
		Chunks:            chunks,
		MaxPossibleChunks: maxChunks,
		FillDelay:         fillDelay,
		Duration:          duration,
	}
	if req.Balance != nil {
		validation.Balance = req.Balance.Int
	}

	if err := validation.Validate(); err != nil {
		resp.Error = &QuoteError{
			Kind:  string(err.Kind),
			Value: err.Value,
		}
	}
	return resp, nil
}

func parsePrice(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}

	price, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return price
}
