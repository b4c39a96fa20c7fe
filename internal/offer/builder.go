package offer

import (
	"fmt"

	"github.com/krobus00/dex-offer-service/internal/entity"
	"github.com/shopspring/decimal"
)

// OrderIntent is the fully computed manage-offer operation, expressed in the
// protocol's native fields. Values are immutable once built.
type OrderIntent struct {
	selling       entity.Asset
	buying        entity.Asset
	amount        int64
	price         entity.Price
	offerID       uint64
	sourceAccount string
}

// Selling is the asset being sold by this operation.
func (o OrderIntent) Selling() entity.Asset { return o.selling }

// Buying is the asset being bought by this operation.
func (o OrderIntent) Buying() entity.Asset { return o.buying }

// Amount is the quantity of the selling asset, scaled by 10^7.
func (o OrderIntent) Amount() int64 { return o.amount }

// Price of 1 unit of selling in terms of buying.
func (o OrderIntent) Price() entity.Price { return o.price }

// OfferID is 0 for a new offer, or the ID of an existing offer to modify.
func (o OrderIntent) OfferID() uint64 { return o.offerID }

// SourceAccount is the optional account the operation is attributed to.
// It is stored verbatim; key validation happens at the signing boundary.
func (o OrderIntent) SourceAccount() string { return o.sourceAccount }

// Builder collects the human-facing trade parameters. It performs no
// computation until Build, which validates everything and produces an
// immutable OrderIntent. The zero retained state makes builders disposable;
// each Build call is independent and safe to run concurrently across
// builders.
type Builder struct {
	base          entity.Asset
	counter       entity.Asset
	amount        string
	price         string
	direction     TradeDirection
	offerID       uint64
	sourceAccount string
}

// NewBuilder starts an offer for the given pair. Amount and price are quoted
// in base-asset terms. The direction defaults to long (buy base).
func NewBuilder(base, counter entity.Asset, amount, price string) *Builder {
	return &Builder{
		base:      base,
		counter:   counter,
		amount:    amount,
		price:     price,
		direction: DirectionLong,
	}
}

// Direction sets the trade direction for the pair.
func (b *Builder) Direction(direction TradeDirection) *Builder {
	b.direction = direction
	return b
}

// OfferID targets an existing offer for modification. 0 creates a new offer.
func (b *Builder) OfferID(offerID uint64) *Builder {
	b.offerID = offerID
	return b
}

// SourceAccount attaches the operation's source account address.
func (b *Builder) SourceAccount(account string) *Builder {
	b.sourceAccount = account
	return b
}

// Build validates the collected parameters, resolves the trade direction and
// converts the decimal inputs into protocol fields. Construction is
// all-or-nothing; no partial intent is ever returned.
func (b *Builder) Build() (OrderIntent, error) {
	if b.base.IsZero() || b.counter.IsZero() {
		return OrderIntent{}, ErrNilAsset
	}
	if b.base == b.counter {
		return OrderIntent{}, ErrSameAsset
	}

	amount, err := parsePositiveDecimal("amount", b.amount)
	if err != nil {
		return OrderIntent{}, err
	}

	price, err := decimal.NewFromString(b.price)
	if err != nil {
		return OrderIntent{}, fmt.Errorf("%w: price %q", ErrInvalidDecimal, b.price)
	}
	if price.IsNegative() {
		return OrderIntent{}, fmt.Errorf("%w: price %q", ErrInvalidDecimal, b.price)
	}
	if price.IsZero() && b.direction == DirectionShort {
		return OrderIntent{}, fmt.Errorf("%w: price %q", ErrInvalidDecimal, b.price)
	}

	buying, selling := Resolve(b.base, b.counter, b.direction)

	scaledAmount, submittedPrice, err := convert(amount, price, b.direction)
	if err != nil {
		return OrderIntent{}, err
	}

	fraction, err := entity.PriceFromString(submittedPrice)
	if err != nil {
		return OrderIntent{}, err
	}

	return OrderIntent{
		selling:       selling,
		buying:        buying,
		amount:        scaledAmount,
		price:         fraction,
		offerID:       b.offerID,
		sourceAccount: b.sourceAccount,
	}, nil
}

func parsePositiveDecimal(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s %q", ErrInvalidDecimal, field, value)
	}
	if !d.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%w: %s %q", ErrInvalidDecimal, field, value)
	}

	return d, nil
}
