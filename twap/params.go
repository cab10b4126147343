package twap

import (
	"math/big"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/swaplane/twap-engine/amount"
)

const (
	MinFillDelayMillis int64 = 5 * 60 * 1000
	MaxFillDelayMillis int64 = 30 * 24 * 60 * 60 * 1000

	MinDurationMillis int64 = 5 * 60 * 1000
	MaxDurationMillis int64 = 30 * 24 * 60 * 60 * 1000

	// Safety margin added on top of the order duration to absorb clock and
	// confirmation skew between submission and inclusion.
	DeadlineMarginMillis int64 = 60 * 1000
)

// DefaultFillDelay is used for limit-only orders and whenever the user has not
// typed a fill delay.
var DefaultFillDelay = Duration{Unit: Minutes, Value: 5}

// MaxPossibleChunks returns the highest chunk count the source amount supports
// given the minimum USD size of a single chunk. Unknown or zero inputs resolve
// to a single chunk.
func MaxPossibleChunks(srcAmountUI string, oneSrcTokenUsd, minChunkSizeUsd decimal.Decimal) int64 {
	if srcAmountUI == "" || oneSrcTokenUsd.IsZero() || minChunkSizeUsd.IsZero() {
		return 1
	}

	src, err := decimal.NewFromString(srcAmountUI)
	if err != nil {
		return 1
	}

	chunks := src.Div(minChunkSizeUsd).Mul(oneSrcTokenUsd).Truncate(0).IntPart()
	if chunks < 1 {
		return 1
	}
	return chunks
}

// Chunks resolves the effective chunk count. A limit-only order never splits.
func Chunks(maxPossibleChunks int64, isLimitOnly bool, typedChunks *int64) int64 {
	if isLimitOnly {
		return 1
	}
	if typedChunks != nil {
		return *typedChunks
	}
	return maxPossibleChunks
}

func ChunksError(chunks int64, maxPossibleChunks int64) *ValidationError {
	if chunks < 1 {
		return newValidationError(ErrMinChunks, "1")
	}
	if chunks > maxPossibleChunks {
		return newValidationError(ErrMaxChunks, strconv.FormatInt(maxPossibleChunks, 10))
	}
	return nil
}

// SrcChunkAmount is the raw source amount per chunk, floored. Missing inputs
// resolve to zero rather than an error.
func SrcChunkAmount(srcAmount *big.Int, chunks int64) *big.Int {
	if srcAmount == nil || chunks == 0 {
		return big.NewInt(0)
	}

	return new(big.Int).Div(srcAmount, big.NewInt(chunks))
}

// FillDelay resolves the delay between chunk executions. Limit-only orders and
// unset values use the minimum default.
func FillDelay(isLimitOnly bool, typedFillDelay *Duration) Duration {
	if isLimitOnly || typedFillDelay == nil {
		return DefaultFillDelay
	}
	return *typedFillDelay
}

func FillDelayError(fillDelay Duration) *ValidationError {
	millis := fillDelay.Millis()
	if millis < MinFillDelayMillis {
		return newValidationError(ErrMinFillDelay, strconv.FormatInt(MinFillDelayMillis, 10))
	}
	if millis > MaxFillDelayMillis {
		return newValidationError(ErrMaxFillDelay, strconv.FormatInt(MaxFillDelayMillis, 10))
	}
	return nil
}

// MinDuration is the shortest duration in which all chunks can execute at the
// given fill delay, expressed in the largest fitting unit.
func MinDuration(fillDelay Duration, chunks int64) Duration {
	return DurationFromMillis(fillDelay.Millis() * 2 * chunks)
}

// OrderDuration resolves the order duration, preferring the user-typed value.
func OrderDuration(minDuration Duration, typedDuration *Duration) Duration {
	if typedDuration != nil {
		return *typedDuration
	}
	return minDuration
}

func DurationError(duration Duration) *ValidationError {
	millis := duration.Millis()
	if millis < MinDurationMillis {
		return newValidationError(ErrMinOrderDuration, strconv.FormatInt(MinDurationMillis, 10))
	}
	if millis > MaxDurationMillis {
		return newValidationError(ErrMaxOrderDuration, strconv.FormatInt(MaxDurationMillis, 10))
	}
	return nil
}

// Deadline is the absolute order expiry in epoch milliseconds. The extra
// minute must be reproduced exactly, any deviation changes on-chain validity.
func Deadline(now time.Time, duration Duration) int64 {
	return now.UnixMilli() + duration.Millis() + DeadlineMarginMillis
}

// DestTokenAmount is the expected total destination amount in raw units.
// Returns false when the price or amount is unknown, to distinguish "unknown"
// from "zero".
func DestTokenAmount(srcAmountUI string, price decimal.Decimal, dstDecimals uint8) (*big.Int, bool) {
	if srcAmountUI == "" || price.IsZero() {
		return nil, false
	}

	src, err := decimal.NewFromString(srcAmountUI)
	if err != nil {
		return nil, false
	}

	return amount.FromDecimal(dstDecimals, price.Mul(src)), true
}

// DestMinAmountPerChunk is the on-chain minimum destination amount for a
// single chunk. Market orders and unknown prices resolve to 1, the protocol
// sentinel for "no minimum enforced". Zero is reserved on-chain.
func DestMinAmountPerChunk(srcChunkAmount *big.Int, price decimal.Decimal, isMarketOrder bool, srcDecimals, dstDecimals uint8) *big.Int {
	if isMarketOrder || price.IsZero() || srcChunkAmount == nil {
		return big.NewInt(1)
	}

	dst := amount.FromDecimal(dstDecimals, amount.ToDecimal(srcDecimals, srcChunkAmount).Mul(price))
	if dst.Cmp(big.NewInt(1)) < 0 {
		return big.NewInt(1)
	}
	return dst
}

// TriggerAmountPerChunk converts a trigger price into the per-chunk raw
// destination amount at which the order activates. Returns false when no
// trigger price is set.
func TriggerAmountPerChunk(srcChunkAmount *big.Int, triggerPrice decimal.Decimal, srcDecimals, dstDecimals uint8) (*big.Int, bool) {
	if triggerPrice.IsZero() || srcChunkAmount == nil {
		return nil, false
	}

	return amount.FromDecimal(dstDecimals, amount.ToDecimal(srcDecimals, srcChunkAmount).Mul(triggerPrice)), true
}

// MinTradeSizeError flags a source amount whose single-chunk USD value is
// below the exchange minimum.
func MinTradeSizeError(srcAmountUI string, oneSrcTokenUsd, minChunkSizeUsd decimal.Decimal, chunks int64) *ValidationError {
	if srcAmountUI == "" || oneSrcTokenUsd.IsZero() || chunks == 0 {
		return nil
	}

	src, err := decimal.NewFromString(srcAmountUI)
	if err != nil {
		return nil
	}

	chunkUsd := src.Mul(oneSrcTokenUsd).Div(decimal.NewFromInt(chunks))
	if chunkUsd.LessThan(minChunkSizeUsd) {
		return newValidationError(ErrMinTradeSize, minChunkSizeUsd.String())
	}
	return nil
}

func MaxOrderSizeError(srcAmountUI string, oneSrcTokenUsd, maxOrderSizeUsd decimal.Decimal) *ValidationError {
	if srcAmountUI == "" || oneSrcTokenUsd.IsZero() || maxOrderSizeUsd.IsZero() {
		return nil
	}

	src, err := decimal.NewFromString(srcAmountUI)
	if err != nil {
		return nil
	}

	if src.Mul(oneSrcTokenUsd).GreaterThan(maxOrderSizeUsd) {
		return newValidationError(ErrMaxOrderSize, maxOrderSizeUsd.String())
	}
	return nil
}
