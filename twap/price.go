package twap

import "github.com/shopspring/decimal"

// OrderKind selects the pricing behavior of an order.
type OrderKind string

const (
	KindTwapMarket OrderKind = "twap-market"
	KindTwapLimit  OrderKind = "twap-limit"
	KindLimit      OrderKind = "limit"
	KindStopLoss   OrderKind = "stop-loss"
	KindTakeProfit OrderKind = "take-profit"
)

// IsLimitOnly reports whether the order is a plain limit order, which never
// splits into chunks.
func (k OrderKind) IsLimitOnly() bool {
	return k == KindLimit
}

func (k OrderKind) IsMarketOrder() bool {
	return k == KindTwapMarket
}

var oneHundred = decimal.NewFromInt(100)

// PriceDeltaPercent is the percent difference between the limit price and the
// market price, rounded half up to two decimal places. Under inverted display
// the two prices swap roles.
func PriceDeltaPercent(limitPrice, marketPrice decimal.Decimal, inverted bool) decimal.Decimal {
	from, to := limitPrice, marketPrice
	if inverted {
		from, to = to, from
	}
	if to.IsZero() {
		return decimal.Zero
	}

	return from.Div(to).Sub(decimal.NewFromInt(1)).Mul(oneHundred).Round(2)
}

// TriggerPriceError checks trigger price consistency against the market
// price: a stop-loss must trigger below market, a take-profit above it.
func TriggerPriceError(kind OrderKind, triggerPrice, marketPrice decimal.Decimal) *ValidationError {
	if triggerPrice.IsZero() || marketPrice.IsZero() {
		return nil
	}

	switch kind {
	case KindStopLoss:
		if triggerPrice.GreaterThan(marketPrice) {
			return newValidationError(ErrStopLossAboveMarket, marketPrice.String())
		}
	case KindTakeProfit:
		if triggerPrice.LessThan(marketPrice) {
			return newValidationError(ErrTakeProfitBelowMarket, marketPrice.String())
		}
	}
	return nil
}
