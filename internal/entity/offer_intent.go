package entity

import (
	"database/sql"
	"time"
)

const (
	OfferIntentStatusBuilt     = "BUILT"
	OfferIntentStatusSubmitted = "SUBMITTED"
	OfferIntentStatusFailed    = "FAILED"
)

// OfferIntentRequest is the human-facing trade intent as received on the
// API or the event stream. Amount and price stay raw decimal strings until
// the offer builder converts them.
type OfferIntentRequest struct {
	RequestID     string `json:"request_id"`
	Base          string `json:"base"`
	Counter       string `json:"counter"`
	Amount        string `json:"amount"`
	Price         string `json:"price"`
	Direction     string `json:"direction"`
	OfferID       uint64 `json:"offer_id"`
	SourceAccount string `json:"source_account"`
	RequestedAt   int64  `json:"requested_at"`
	Source        string `json:"source"`
}

type OfferIntentRequestEvent struct {
	RetryCount int                `json:"retry"`
	Data       OfferIntentRequest `json:"data"`
}

// OfferIntent is the persisted record of a built (or failed) intent,
// carrying both the raw request and the computed protocol fields.
type OfferIntent struct {
	ID            string         `db:"id" json:"id"`
	RequestID     string         `db:"request_id" json:"request_id"`
	BaseAsset     string         `db:"base_asset" json:"base_asset"`
	CounterAsset  string         `db:"counter_asset" json:"counter_asset"`
	Direction     string         `db:"direction" json:"direction"`
	RawAmount     string         `db:"raw_amount" json:"raw_amount"`
	RawPrice      string         `db:"raw_price" json:"raw_price"`
	SellingAsset  string         `db:"selling_asset" json:"selling_asset"`
	BuyingAsset   string         `db:"buying_asset" json:"buying_asset"`
	ScaledAmount  int64          `db:"scaled_amount" json:"scaled_amount"`
	PriceN        int32          `db:"price_n" json:"price_n"`
	PriceD        int32          `db:"price_d" json:"price_d"`
	OfferID       int64          `db:"offer_id" json:"offer_id"`
	SourceAccount sql.NullString `db:"source_account" json:"source_account"`
	Payload       []byte         `db:"payload" json:"payload"`
	Status        string         `db:"status" json:"status"`
	ErrorMessage  sql.NullString `db:"error_message" json:"error_message"`
	Source        sql.NullString `db:"source" json:"source"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

func (o OfferIntent) TableName() string {
	return "offer_intents"
}
