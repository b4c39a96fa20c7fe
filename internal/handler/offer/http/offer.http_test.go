package http

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/krobus00/dex-offer-service/internal/config"
	"github.com/krobus00/dex-offer-service/internal/entity"
	"github.com/krobus00/dex-offer-service/internal/service/offergateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOfferService struct {
	buildErr error
	asyncErr error
	intent   *entity.OfferIntent
	lastReq  entity.OfferIntentRequest
}

func (s *stubOfferService) BuildOffer(_ context.Context, req entity.OfferIntentRequest) (*entity.OfferIntent, error) {
	s.lastReq = req
	if s.buildErr != nil {
		return nil, s.buildErr
	}
	return s.intent, nil
}

func (s *stubOfferService) BuildOfferAsync(_ context.Context, req entity.OfferIntentRequest) error {
	s.lastReq = req
	return s.asyncErr
}

func setTestConfig(t *testing.T) {
	t.Helper()

	previous := config.Env
	config.Env = &config.EnvConfig{
		APIKeys: []config.APIKeyConfig{
			{Name: "test", Key: "test-key", Active: true},
		},
	}
	t.Cleanup(func() { config.Env = previous })
}

func testIntent() *entity.OfferIntent {
	now := time.Now().UTC()
	return &entity.OfferIntent{
		ID:           "intent-1",
		RequestID:    "req-1",
		BaseAsset:    "native",
		CounterAsset: "USD:GISSUER",
		Direction:    "SHORT",
		RawAmount:    "100",
		RawPrice:     "2",
		SellingAsset: "native",
		BuyingAsset:  "USD:GISSUER",
		ScaledAmount: 1_000_000_000,
		PriceN:       2,
		PriceD:       1,
		Payload:      []byte{0xDE, 0xAD},
		Status:       entity.OfferIntentStatusBuilt,
		SourceAccount: sql.NullString{
			String: "GSOURCE",
			Valid:  true,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func doRequest(t *testing.T, handler http.HandlerFunc, body map[string]any, apiKey string) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/offer/v1/offers", bytes.NewReader(raw))
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	recorder := httptest.NewRecorder()
	handler(recorder, req)

	return recorder
}

func validBody() map[string]any {
	return map[string]any{
		"base":    "native",
		"counter": "USD:GISSUER",
		"amount":  "100",
		"price":   "2",
	}
}

func TestBuildOfferHTTP(t *testing.T) {
	setTestConfig(t)

	service := &stubOfferService{intent: testIntent()}
	handler := NewOfferHTTPHandler(service)

	recorder := doRequest(t, handler.BuildOffer, validBody(), "test-key")
	require.Equal(t, http.StatusOK, recorder.Code)

	var resp BuildOfferResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, "intent-1", resp.ID)
	assert.Equal(t, int64(1_000_000_000), resp.ScaledAmount)
	assert.Equal(t, int32(2), resp.PriceN)
	assert.Equal(t, "dead", resp.Payload)
	require.NotNil(t, resp.SourceAccount)
	assert.Equal(t, "GSOURCE", *resp.SourceAccount)

	// request id generated when omitted
	assert.NotEmpty(t, service.lastReq.RequestID)
}

func TestBuildOfferHTTPErrors(t *testing.T) {
	setTestConfig(t)

	t.Run("missing api key", func(t *testing.T) {
		handler := NewOfferHTTPHandler(&stubOfferService{intent: testIntent()})
		recorder := doRequest(t, handler.BuildOffer, validBody(), "")
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("wrong api key", func(t *testing.T) {
		handler := NewOfferHTTPHandler(&stubOfferService{intent: testIntent()})
		recorder := doRequest(t, handler.BuildOffer, validBody(), "other-key")
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("missing required fields", func(t *testing.T) {
		handler := NewOfferHTTPHandler(&stubOfferService{intent: testIntent()})
		body := validBody()
		delete(body, "amount")
		recorder := doRequest(t, handler.BuildOffer, body, "test-key")
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		handler := NewOfferHTTPHandler(&stubOfferService{intent: testIntent()})
		req := httptest.NewRequest(http.MethodGet, "/offer/v1/offers", nil)
		recorder := httptest.NewRecorder()
		handler.BuildOffer(recorder, req)
		assert.Equal(t, http.StatusMethodNotAllowed, recorder.Code)
	})

	t.Run("duplicate request", func(t *testing.T) {
		handler := NewOfferHTTPHandler(&stubOfferService{buildErr: offergateway.ErrDuplicateRequest})
		recorder := doRequest(t, handler.BuildOffer, validBody(), "test-key")
		assert.Equal(t, http.StatusConflict, recorder.Code)
	})

	t.Run("invalid intent", func(t *testing.T) {
		handler := NewOfferHTTPHandler(&stubOfferService{buildErr: offergateway.ErrInvalidIntentRequest})
		recorder := doRequest(t, handler.BuildOffer, validBody(), "test-key")
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("internal error", func(t *testing.T) {
		handler := NewOfferHTTPHandler(&stubOfferService{buildErr: offergateway.ErrCreateIntentFailed})
		recorder := doRequest(t, handler.BuildOffer, validBody(), "test-key")
		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	})
}

func TestBuildOfferAsyncHTTP(t *testing.T) {
	setTestConfig(t)

	service := &stubOfferService{}
	handler := NewOfferHTTPHandler(service)

	raw, err := json.Marshal(validBody())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/offer/v1/offers/async", bytes.NewReader(raw))
	req.Header.Set("X-API-Key", "test-key")
	recorder := httptest.NewRecorder()
	handler.BuildOfferAsync(recorder, req)

	require.Equal(t, http.StatusAccepted, recorder.Code)

	var resp BuildOfferAsyncResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, "queued", resp.Status)
	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, resp.RequestID, service.lastReq.RequestID)
}
