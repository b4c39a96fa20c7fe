package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/krobus00/dex-offer-service/internal/entity"
)

type OfferIntentRepository struct {
	db *sqlx.DB
}

func NewOfferIntentRepository(db *sqlx.DB) *OfferIntentRepository {
	return &OfferIntentRepository{db: db}
}

func (r *OfferIntentRepository) Create(ctx context.Context, intent *entity.OfferIntent) error {
	queryBuilder := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Insert(intent.TableName()).
		Columns(
			"request_id",
			"base_asset",
			"counter_asset",
			"direction",
			"raw_amount",
			"raw_price",
			"selling_asset",
			"buying_asset",
			"scaled_amount",
			"price_n",
			"price_d",
			"offer_id",
			"source_account",
			"payload",
			"status",
			"error_message",
			"source",
			"created_at",
			"updated_at",
		).
		Values(
			intent.RequestID,
			intent.BaseAsset,
			intent.CounterAsset,
			intent.Direction,
			intent.RawAmount,
			intent.RawPrice,
			intent.SellingAsset,
			intent.BuyingAsset,
			intent.ScaledAmount,
			intent.PriceN,
			intent.PriceD,
			intent.OfferID,
			intent.SourceAccount,
			intent.Payload,
			intent.Status,
			intent.ErrorMessage,
			intent.Source,
			intent.CreatedAt,
			intent.UpdatedAt,
		).
		Suffix("RETURNING id")

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return err
	}

	var id string
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&id)
	if err != nil {
		return err
	}

	intent.ID = id

	return nil
}

func (r *OfferIntentRepository) GetByRequestID(ctx context.Context, requestID string) (*entity.OfferIntent, error) {
	var intent entity.OfferIntent
	err := r.db.GetContext(ctx, &intent, "SELECT * FROM offer_intents WHERE request_id = $1", requestID)
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

func (r *OfferIntentRepository) ListByStatus(ctx context.Context, statuses []string) ([]entity.OfferIntent, error) {
	if len(statuses) == 0 {
		return []entity.OfferIntent{}, nil
	}

	queryBuilder := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select("*").
		From("offer_intents").
		Where(sq.Eq{"status": statuses}).
		OrderBy("created_at desc")

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, err
	}

	var intents []entity.OfferIntent
	err = r.db.SelectContext(ctx, &intents, query, args...)
	if err != nil {
		return nil, err
	}

	return intents, nil
}

func (r *OfferIntentRepository) UpdateStatus(ctx context.Context, intent *entity.OfferIntent) error {
	queryBuilder := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Update(intent.TableName()).
		Set("status", intent.Status).
		Set("error_message", intent.ErrorMessage).
		Set("updated_at", intent.UpdatedAt).
		Where(sq.Eq{"id": intent.ID})

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}
