package offer

import (
	"fmt"
	"strings"

	"github.com/krobus00/dex-offer-service/internal/entity"
)

type TradeDirection string

const (
	// DirectionLong buys the base asset and sells the counter asset.
	DirectionLong TradeDirection = "LONG"
	// DirectionShort sells the base asset and buys the counter asset.
	DirectionShort TradeDirection = "SHORT"
)

// ParseDirection maps a request string onto a TradeDirection. An empty
// string defaults to long, matching trader intuition for a pair order.
func ParseDirection(s string) (TradeDirection, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(DirectionLong):
		return DirectionLong, nil
	case string(DirectionShort):
		return DirectionShort, nil
	default:
		return "", fmt.Errorf("unknown trade direction: %q", s)
	}
}

// Resolve determines which side of the pair is bought and which is sold.
func Resolve(base, counter entity.Asset, direction TradeDirection) (buying, selling entity.Asset) {
	if direction == DirectionShort {
		return counter, base
	}

	return base, counter
}
