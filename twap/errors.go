package twap

import "fmt"

type ErrorKind string

const (
	ErrMinChunks             ErrorKind = "MIN_CHUNKS"
	ErrMaxChunks             ErrorKind = "MAX_CHUNKS"
	ErrMinTradeSize          ErrorKind = "MIN_TRADE_SIZE"
	ErrMaxFillDelay          ErrorKind = "MAX_FILL_DELAY"
	ErrMinFillDelay          ErrorKind = "MIN_FILL_DELAY"
	ErrMaxOrderDuration      ErrorKind = "MAX_ORDER_DURATION"
	ErrMinOrderDuration      ErrorKind = "MIN_ORDER_DURATION"
	ErrMissingLimitPrice     ErrorKind = "MISSING_LIMIT_PRICE"
	ErrInsufficientBalance   ErrorKind = "INSUFFICIENT_BALANCE"
	ErrMaxOrderSize          ErrorKind = "MAX_ORDER_SIZE"
	ErrStopLossAboveMarket   ErrorKind = "STOP_LOSS_TRIGGER_PRICE_GREATER_THAN_MARKET_PRICE"
	ErrTakeProfitBelowMarket ErrorKind = "TAKE_PROFIT_TRIGGER_PRICE_LOWER_THAN_MARKET_PRICE"
)

// ValidationError is a locally computed order validation failure. Value carries
// the violated bound for message formatting and is never interpreted by the
// engine itself.
type ValidationError struct {
	Kind  ErrorKind
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Value)
}

func newValidationError(kind ErrorKind, value string) *ValidationError {
	return &ValidationError{
		Kind:  kind,
		Value: value,
	}
}
