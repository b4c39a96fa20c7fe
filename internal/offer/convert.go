package offer

import (
	"github.com/shopspring/decimal"
)

// Scale is the number of fixed-point decimal digits the wire protocol's
// amount field carries.
const Scale = 7

var scaleFactor = decimal.New(1, Scale)

// convert turns a user-facing (amount, price) quoted in base-asset terms
// into the protocol's native fields: the quantity of the selling asset as a
// 7-decimal fixed-point integer, and the price of 1 unit of selling in terms
// of buying as a decimal string.
//
// A short already matches the native semantics (selling the base), so the
// amount is scaled exactly and the price passes through. Any residual
// fraction beyond 7 digits is a caller error, never truncated.
//
// A long sells the counter: the amount becomes amount*price in counter
// units, rounded half-to-even at scale 0 after scaling, and the price is
// inverted. The inversion is decimal division kept to at least 16
// significant digits so the downstream fraction conversion loses nothing
// economically meaningful.
func convert(amount, price decimal.Decimal, direction TradeDirection) (int64, string, error) {
	if direction == DirectionShort {
		scaled := amount.Mul(scaleFactor)
		if !scaled.IsInteger() {
			return 0, "", ErrNonIntegralAtScale
		}

		scaledAmount, err := toInt64(scaled)
		if err != nil {
			return 0, "", err
		}

		return scaledAmount, price.String(), nil
	}

	if price.IsZero() {
		return 0, "", ErrDivisionByZero
	}

	scaled := amount.Mul(price).Mul(scaleFactor).RoundBank(0)
	scaledAmount, err := toInt64(scaled)
	if err != nil {
		return 0, "", err
	}

	return scaledAmount, invertPrice(price).String(), nil
}

// invertPrice computes 1/p in decimal, rounded half-to-even to 16
// significant digits regardless of the price's magnitude.
func invertPrice(p decimal.Decimal) decimal.Decimal {
	integerDigits := p.NumDigits() + int(p.Exponent())
	if integerDigits < 1 {
		integerDigits = 1
	}

	places := int32(16 + integerDigits)
	inverted := decimal.New(1, 0).DivRound(p, places+2)

	if extra := inverted.NumDigits() - 16; extra > 0 {
		inverted = inverted.RoundBank(-inverted.Exponent() - int32(extra))
	}

	return inverted
}

func toInt64(d decimal.Decimal) (int64, error) {
	bi := d.BigInt()
	if !bi.IsInt64() {
		return 0, ErrAmountOverflow
	}

	return bi.Int64(), nil
}
