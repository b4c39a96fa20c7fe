package http

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/guregu/null/v5"
	"github.com/krobus00/dex-offer-service/internal/config"
	"github.com/krobus00/dex-offer-service/internal/entity"
	"github.com/krobus00/dex-offer-service/internal/service/offergateway"
)

var (
	errAPIKeyMissing  = errors.New("api key is required")
	errAPIKeyInvalid  = errors.New("invalid api key")
	errAPIKeyInactive = errors.New("api key is inactive")
	errAPIKeyExpired  = errors.New("api key is expired")
)

// OfferService is the part of the gateway service the handler needs.
type OfferService interface {
	BuildOffer(ctx context.Context, req entity.OfferIntentRequest) (*entity.OfferIntent, error)
	BuildOfferAsync(ctx context.Context, req entity.OfferIntentRequest) error
}

type BuildOfferRequest struct {
	ApiKey        string `json:"api_key"`
	RequestID     string `json:"request_id"`
	Base          string `json:"base"`
	Counter       string `json:"counter"`
	Amount        string `json:"amount"`
	Price         string `json:"price"`
	Direction     string `json:"direction"`
	OfferID       uint64 `json:"offer_id"`
	SourceAccount string `json:"source_account"`
	Source        string `json:"source"`
}

type BuildOfferResponse struct {
	ID            string  `json:"id"`
	RequestID     string  `json:"request_id"`
	Base          string  `json:"base"`
	Counter       string  `json:"counter"`
	Direction     string  `json:"direction"`
	Selling       string  `json:"selling"`
	Buying        string  `json:"buying"`
	RawAmount     string  `json:"raw_amount"`
	RawPrice      string  `json:"raw_price"`
	ScaledAmount  int64   `json:"scaled_amount"`
	PriceN        int32   `json:"price_n"`
	PriceD        int32   `json:"price_d"`
	OfferID       int64   `json:"offer_id"`
	SourceAccount *string `json:"source_account,omitempty"`
	Payload       string  `json:"payload"`
	Status        string  `json:"status"`
	ErrorMessage  *string `json:"error_message,omitempty"`
	CreatedAt     int64   `json:"created_at"`
	UpdatedAt     int64   `json:"updated_at"`
}

type BuildOfferAsyncResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
}

type Handler struct {
	offerService OfferService
}

func NewOfferHTTPHandler(offerService OfferService) *Handler {
	return &Handler{offerService: offerService}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/offer/v1/offers", h.BuildOffer)
	mux.HandleFunc("/offer/v1/offers/async", h.BuildOfferAsync)
}

func (h *Handler) BuildOffer(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	intent, err := h.offerService.BuildOffer(r.Context(), mapHTTPRequestToIntentRequest(req))
	if err != nil {
		switch {
		case errors.Is(err, offergateway.ErrDuplicateRequest):
			writeJSON(w, http.StatusConflict, map[string]any{"error": "duplicate request"})
		case errors.Is(err, offergateway.ErrInvalidIntentRequest):
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, mapIntentToHTTPResponse(intent))
}

func (h *Handler) BuildOfferAsync(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	intentReq := mapHTTPRequestToIntentRequest(req)

	err := h.offerService.BuildOfferAsync(r.Context(), intentReq)
	if err != nil {
		switch {
		case errors.Is(err, offergateway.ErrPublishIntentEventFailed):
			writeJSON(w, http.StatusBadGateway, map[string]any{"error": err.Error()})
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusAccepted, BuildOfferAsyncResponse{
		RequestID: intentReq.RequestID,
		Status:    "queued",
	})
}

func (h *Handler) decodeRequest(w http.ResponseWriter, r *http.Request) (*BuildOfferRequest, bool) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return nil, false
	}

	defer r.Body.Close()

	var req BuildOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json body"})
		return nil, false
	}

	if err := validateAPIKey(resolveAPIKey(r, &req)); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": err.Error()})
		return nil, false
	}

	if strings.TrimSpace(req.Base) == "" || strings.TrimSpace(req.Counter) == "" || strings.TrimSpace(req.Amount) == "" || strings.TrimSpace(req.Price) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "missing required fields"})
		return nil, false
	}

	if strings.TrimSpace(req.RequestID) == "" {
		req.RequestID = uuid.NewString()
	}

	return &req, true
}

func mapHTTPRequestToIntentRequest(req *BuildOfferRequest) entity.OfferIntentRequest {
	return entity.OfferIntentRequest{
		RequestID:     strings.TrimSpace(req.RequestID),
		Base:          strings.TrimSpace(req.Base),
		Counter:       strings.TrimSpace(req.Counter),
		Amount:        strings.TrimSpace(req.Amount),
		Price:         strings.TrimSpace(req.Price),
		Direction:     strings.TrimSpace(req.Direction),
		OfferID:       req.OfferID,
		SourceAccount: strings.TrimSpace(req.SourceAccount),
		RequestedAt:   time.Now().UTC().UnixMilli(),
		Source:        strings.TrimSpace(req.Source),
	}
}

func mapIntentToHTTPResponse(intent *entity.OfferIntent) *BuildOfferResponse {
	return &BuildOfferResponse{
		ID:            intent.ID,
		RequestID:     intent.RequestID,
		Base:          intent.BaseAsset,
		Counter:       intent.CounterAsset,
		Direction:     intent.Direction,
		Selling:       intent.SellingAsset,
		Buying:        intent.BuyingAsset,
		RawAmount:     intent.RawAmount,
		RawPrice:      intent.RawPrice,
		ScaledAmount:  intent.ScaledAmount,
		PriceN:        intent.PriceN,
		PriceD:        intent.PriceD,
		OfferID:       intent.OfferID,
		SourceAccount: null.NewString(intent.SourceAccount.String, intent.SourceAccount.Valid).Ptr(),
		Payload:       hex.EncodeToString(intent.Payload),
		Status:        intent.Status,
		ErrorMessage:  null.NewString(intent.ErrorMessage.String, intent.ErrorMessage.Valid).Ptr(),
		CreatedAt:     intent.CreatedAt.UnixMilli(),
		UpdatedAt:     intent.UpdatedAt.UnixMilli(),
	}
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func resolveAPIKey(r *http.Request, req *BuildOfferRequest) string {
	if headerKey := strings.TrimSpace(r.Header.Get("X-API-Key")); headerKey != "" {
		return headerKey
	}

	return strings.TrimSpace(req.ApiKey)
}

func validateAPIKey(rawAPIKey string) error {
	apiKey := strings.TrimSpace(rawAPIKey)
	if apiKey == "" {
		return errAPIKeyMissing
	}

	if config.Env == nil || len(config.Env.APIKeys) == 0 {
		return errAPIKeyInvalid
	}

	now := time.Now().UTC()
	for _, candidate := range config.Env.APIKeys {
		storedKey := strings.TrimSpace(candidate.Key)
		if storedKey == "" {
			continue
		}

		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(storedKey)) != 1 {
			continue
		}

		if !candidate.Active {
			return errAPIKeyInactive
		}

		expiredAt, hasExpiry, err := parseExpiry(candidate.ExpiredAt)
		if err != nil {
			return errAPIKeyInvalid
		}
		if !hasExpiry {
			return nil
		}

		if !now.Before(expiredAt) {
			return errAPIKeyExpired
		}

		return nil
	}

	return errAPIKeyInvalid
}

func parseExpiry(value any) (time.Time, bool, error) {
	if value == nil {
		return time.Time{}, false, nil
	}

	switch v := value.(type) {
	case time.Time:
		if v.IsZero() {
			return time.Time{}, false, nil
		}
		return v.UTC(), true, nil
	case string:
		raw := strings.TrimSpace(v)
		if raw == "" {
			return time.Time{}, false, nil
		}

		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			return parsed.UTC(), true, nil
		}

		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, false, err
		}

		return parsed.UTC().Add(24 * time.Hour), true, nil
	default:
		return time.Time{}, false, errAPIKeyInvalid
	}
}
