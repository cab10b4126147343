package twap

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// DraftValidation is the full set of resolved order parameters subject to
// submission gating.
type DraftValidation struct {
	Kind OrderKind

	Balance     *big.Int
	SrcAmount   *big.Int
	SrcAmountUI string

	OneSrcTokenUsd  decimal.Decimal
	MinChunkSizeUsd decimal.Decimal
	MaxOrderSizeUsd decimal.Decimal

	LimitPrice   decimal.Decimal
	TriggerPrice decimal.Decimal
	MarketPrice  decimal.Decimal

	Chunks            int64
	MaxPossibleChunks int64
	FillDelay         Duration
	Duration          Duration
}

// Validate composes every field validation into a single first-error-wins
// result. Priority: balance, price consistency, chunk and size bounds, fill
// delay, duration.
func (v DraftValidation) Validate() *ValidationError {
	if v.Balance != nil && v.SrcAmount != nil && v.Balance.Cmp(v.SrcAmount) < 0 {
		return newValidationError(ErrInsufficientBalance, v.Balance.String())
	}

	if !v.Kind.IsMarketOrder() && v.LimitPrice.IsZero() && v.TriggerPrice.IsZero() {
		return newValidationError(ErrMissingLimitPrice, "")
	}
	if err := TriggerPriceError(v.Kind, v.TriggerPrice, v.MarketPrice); err != nil {
		return err
	}

	if err := ChunksError(v.Chunks, v.MaxPossibleChunks); err != nil {
		return err
	}
	if err := MinTradeSizeError(v.SrcAmountUI, v.OneSrcTokenUsd, v.MinChunkSizeUsd, v.Chunks); err != nil {
		return err
	}
	if err := MaxOrderSizeError(v.SrcAmountUI, v.OneSrcTokenUsd, v.MaxOrderSizeUsd); err != nil {
		return err
	}

	if err := FillDelayError(v.FillDelay); err != nil {
		return err
	}

	return DurationError(v.Duration)
}
