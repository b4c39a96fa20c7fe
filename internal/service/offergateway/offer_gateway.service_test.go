package offergateway

import (
	"context"
	"errors"
	"testing"

	"github.com/krobus00/dex-offer-service/internal/entity"
	"github.com/krobus00/dex-offer-service/internal/offer"
	"github.com/krobus00/dex-offer-service/internal/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIntentStore struct {
	intents        []entity.OfferIntent
	listedStatuses []string
	updated        []entity.OfferIntent
	listErr        error
	updateErr      error
}

func (s *stubIntentStore) Create(_ context.Context, intent *entity.OfferIntent) error {
	s.intents = append(s.intents, *intent)
	return nil
}

func (s *stubIntentStore) GetByRequestID(_ context.Context, requestID string) (*entity.OfferIntent, error) {
	for i := range s.intents {
		if s.intents[i].RequestID == requestID {
			return &s.intents[i], nil
		}
	}
	return nil, errors.New("not found")
}

func (s *stubIntentStore) ListByStatus(_ context.Context, statuses []string) ([]entity.OfferIntent, error) {
	s.listedStatuses = statuses
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.intents, nil
}

func (s *stubIntentStore) UpdateStatus(_ context.Context, intent *entity.OfferIntent) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updated = append(s.updated, *intent)
	return nil
}

func testRequest(t *testing.T) entity.OfferIntentRequest {
	t.Helper()

	return entity.OfferIntentRequest{
		RequestID: "req-1",
		Base:      "native",
		Counter:   "USD:" + xdr.EncodeAccountID([32]byte{9}),
		Amount:    "100",
		Price:     "2",
		Direction: "short",
		Source:    "test",
	}
}

func TestBuildFromRequest(t *testing.T) {
	t.Parallel()

	intent, direction, payload, err := buildFromRequest(testRequest(t))
	require.NoError(t, err)

	assert.Equal(t, "native", intent.Selling().String())
	assert.Equal(t, int64(1_000_000_000), intent.Amount())
	assert.Equal(t, entity.Price{N: 2, D: 1}, intent.Price())
	assert.Equal(t, offer.DirectionShort, direction)
	assert.NotEmpty(t, payload)
}

func TestBuildFromRequestErrors(t *testing.T) {
	t.Parallel()

	t.Run("bad base asset", func(t *testing.T) {
		t.Parallel()

		req := testRequest(t)
		req.Base = "???"
		_, _, _, err := buildFromRequest(req)
		assert.Error(t, err)
	})

	t.Run("bad direction", func(t *testing.T) {
		t.Parallel()

		req := testRequest(t)
		req.Direction = "sideways"
		_, _, _, err := buildFromRequest(req)
		assert.Error(t, err)
	})

	t.Run("non integral amount", func(t *testing.T) {
		t.Parallel()

		req := testRequest(t)
		req.Amount = "1.12345678"
		_, _, _, err := buildFromRequest(req)
		assert.ErrorIs(t, err, offer.ErrNonIntegralAtScale)
	})

	t.Run("zero price long", func(t *testing.T) {
		t.Parallel()

		req := testRequest(t)
		req.Direction = "long"
		req.Price = "0"
		_, _, _, err := buildFromRequest(req)
		assert.ErrorIs(t, err, offer.ErrDivisionByZero)
	})
}

func TestBuiltIntentRecord(t *testing.T) {
	t.Parallel()

	req := testRequest(t)
	intent, direction, payload, err := buildFromRequest(req)
	require.NoError(t, err)

	record := builtIntentRecord(req, intent, direction, payload)

	assert.Equal(t, "req-1", record.RequestID)
	assert.Equal(t, entity.OfferIntentStatusBuilt, record.Status)
	assert.Equal(t, "SHORT", record.Direction)
	assert.Equal(t, "native", record.SellingAsset)
	assert.Equal(t, req.Counter, record.BuyingAsset)
	assert.Equal(t, int64(1_000_000_000), record.ScaledAmount)
	assert.Equal(t, int32(2), record.PriceN)
	assert.Equal(t, int32(1), record.PriceD)
	assert.Equal(t, payload, record.Payload)
	assert.False(t, record.SourceAccount.Valid)
	assert.True(t, record.Source.Valid)
	assert.False(t, record.CreatedAt.IsZero())
}

func TestFailedIntentRecord(t *testing.T) {
	t.Parallel()

	req := testRequest(t)
	req.Amount = "1.12345678"

	_, _, _, buildErr := buildFromRequest(req)
	require.Error(t, buildErr)

	record := failedIntentRecord(req, buildErr)

	assert.Equal(t, entity.OfferIntentStatusFailed, record.Status)
	assert.True(t, record.ErrorMessage.Valid)
	assert.Contains(t, record.ErrorMessage.String, "not integral")
	assert.Empty(t, record.Payload)
}

func TestReconcileBuiltIntents(t *testing.T) {
	t.Parallel()

	store := &stubIntentStore{
		intents: []entity.OfferIntent{
			{ID: "intent-1", RequestID: "req-1", Status: entity.OfferIntentStatusBuilt},
			{ID: "intent-2", RequestID: "req-2", Status: entity.OfferIntentStatusBuilt},
		},
	}
	service := NewOfferGatewayService(store, nil, nil)

	err := service.ReconcileBuiltIntents(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{entity.OfferIntentStatusBuilt}, store.listedStatuses)
	require.Len(t, store.updated, 2)
	for _, intent := range store.updated {
		assert.Equal(t, entity.OfferIntentStatusSubmitted, intent.Status)
		assert.False(t, intent.UpdatedAt.IsZero())
	}
}

func TestReconcileBuiltIntentsEmpty(t *testing.T) {
	t.Parallel()

	store := &stubIntentStore{}
	service := NewOfferGatewayService(store, nil, nil)

	err := service.ReconcileBuiltIntents(context.Background())
	require.NoError(t, err)
	assert.Empty(t, store.updated)
}

func TestReconcileBuiltIntentsErrors(t *testing.T) {
	t.Parallel()

	t.Run("list fails", func(t *testing.T) {
		t.Parallel()

		store := &stubIntentStore{listErr: errors.New("db down")}
		service := NewOfferGatewayService(store, nil, nil)

		err := service.ReconcileBuiltIntents(context.Background())
		assert.ErrorIs(t, err, ErrGetIntentFailed)
	})

	t.Run("update fails", func(t *testing.T) {
		t.Parallel()

		store := &stubIntentStore{
			intents:   []entity.OfferIntent{{ID: "intent-1", Status: entity.OfferIntentStatusBuilt}},
			updateErr: errors.New("db down"),
		}
		service := NewOfferGatewayService(store, nil, nil)

		err := service.ReconcileBuiltIntents(context.Background())
		assert.ErrorIs(t, err, ErrUpdateIntentFailed)
	})
}
