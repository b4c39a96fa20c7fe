package entity

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"
)

var (
	ErrInvalidPrice    = errors.New("price must be a positive decimal number")
	ErrPriceOutOfRange = errors.New("price cannot be represented as a 32-bit fraction")
)

// Price is an exact fraction N/D. Invariant: D > 0.
type Price struct {
	N int32
	D int32
}

var maxPriceTerm = big.NewInt(math.MaxInt32)

// PriceFromString converts a decimal string into the closest fraction whose
// numerator and denominator both fit in an int32, using continued-fraction
// convergents. Decimals already expressible within the bound convert exactly.
func PriceFromString(s string) (Price, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Price{}, ErrInvalidPrice
	}

	number, ok := new(big.Rat).SetString(s)
	if !ok {
		return Price{}, fmt.Errorf("%w: %q", ErrInvalidPrice, s)
	}
	if number.Sign() <= 0 {
		return Price{}, fmt.Errorf("%w: %q", ErrInvalidPrice, s)
	}

	return bestFraction(number)
}

func bestFraction(number *big.Rat) (Price, error) {
	maxRat := new(big.Rat).SetInt(maxPriceTerm)
	if number.Cmp(maxRat) > 0 {
		return Price{}, ErrPriceOutOfRange
	}

	fractions := [][2]*big.Int{
		{big.NewInt(0), big.NewInt(1)},
		{big.NewInt(1), big.NewInt(0)},
	}

	remainder := new(big.Rat).Set(number)
	for {
		whole := new(big.Int).Quo(remainder.Num(), remainder.Denom())

		last := fractions[len(fractions)-1]
		prev := fractions[len(fractions)-2]

		h := new(big.Int).Add(new(big.Int).Mul(whole, last[0]), prev[0])
		k := new(big.Int).Add(new(big.Int).Mul(whole, last[1]), prev[1])
		if h.Cmp(maxPriceTerm) > 0 || k.Cmp(maxPriceTerm) > 0 {
			break
		}

		fractions = append(fractions, [2]*big.Int{h, k})

		fractional := new(big.Rat).Sub(remainder, new(big.Rat).SetInt(whole))
		if fractional.Sign() == 0 {
			break
		}

		remainder = fractional.Inv(fractional)
	}

	best := fractions[len(fractions)-1]
	if best[0].Sign() == 0 || best[1].Sign() == 0 {
		return Price{}, ErrPriceOutOfRange
	}

	return Price{N: int32(best[0].Int64()), D: int32(best[1].Int64())}, nil
}

func (p Price) String() string {
	return fmt.Sprintf("%d/%d", p.N, p.D)
}

// Rat returns the price as an exact rational number.
func (p Price) Rat() *big.Rat {
	return big.NewRat(int64(p.N), int64(p.D))
}
