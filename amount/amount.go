package amount

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// ToRaw converts a human-readable token amount into its raw integer
// representation. The result is truncated towards zero, never rounded up.
// Returns false when the input is missing or not a valid decimal number.
func ToRaw(decimals uint8, ui string) (*big.Int, bool) {
	if ui == "" {
		return nil, false
	}

	d, err := decimal.NewFromString(ui)
	if err != nil {
		return nil, false
	}

	return d.Shift(int32(decimals)).Truncate(0).BigInt(), true
}

// ToUI converts a raw integer token amount into its human-readable decimal
// representation. Conversion goes through an arbitrary-precision decimal to
// avoid binary floating-point artifacts.
func ToUI(decimals uint8, raw *big.Int) (string, bool) {
	if raw == nil {
		return "", false
	}

	return decimal.NewFromBigInt(raw, -int32(decimals)).String(), true
}

// FromDecimal floors a decimal value into a raw integer amount with the given
// token decimals.
func FromDecimal(decimals uint8, d decimal.Decimal) *big.Int {
	return d.Shift(int32(decimals)).Truncate(0).BigInt()
}

// ToDecimal lifts a raw integer amount into a decimal value with the given
// token decimals.
func ToDecimal(decimals uint8, raw *big.Int) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}

	return decimal.NewFromBigInt(raw, -int32(decimals))
}
