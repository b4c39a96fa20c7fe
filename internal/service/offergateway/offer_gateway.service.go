package offergateway

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/krobus00/dex-offer-service/internal/config"
	"github.com/krobus00/dex-offer-service/internal/constant"
	"github.com/krobus00/dex-offer-service/internal/entity"
	"github.com/krobus00/dex-offer-service/internal/offer"
	"github.com/krobus00/dex-offer-service/internal/util"
	"github.com/krobus00/dex-offer-service/internal/xdr"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidIntentRequest     = errors.New("invalid offer intent request")
	ErrDuplicateRequest         = errors.New("duplicate offer intent request")
	ErrGetIntentFailed          = errors.New("failed to get offer intent")
	ErrCreateIntentFailed       = errors.New("failed to create offer intent")
	ErrUpdateIntentFailed       = errors.New("failed to update offer intent")
	ErrPublishIntentEventFailed = errors.New("failed to publish offer intent event")
)

const buildLockTTL = 15 * time.Second

// IntentStore is the part of the intent history repository the service needs.
type IntentStore interface {
	Create(ctx context.Context, intent *entity.OfferIntent) error
	GetByRequestID(ctx context.Context, requestID string) (*entity.OfferIntent, error)
	ListByStatus(ctx context.Context, statuses []string) ([]entity.OfferIntent, error)
	UpdateStatus(ctx context.Context, intent *entity.OfferIntent) error
}

type OfferGatewayService struct {
	intentRepo IntentStore
	js         nats.JetStreamContext
	locks      RequestLockStore
}

func NewOfferGatewayService(intentRepo IntentStore, js nats.JetStreamContext, locks RequestLockStore) *OfferGatewayService {
	return &OfferGatewayService{
		intentRepo: intentRepo,
		js:         js,
		locks:      locks,
	}
}

func (s *OfferGatewayService) JetstreamEventInit(ctx context.Context) error {
	streamConfig := &nats.StreamConfig{
		Name:      constant.OfferStreamName,
		Subjects:  []string{constant.OfferStreamSubjectAll},
		Retention: nats.WorkQueuePolicy,
		Storage:   nats.FileStorage,
		MaxAge:    24 * time.Hour,
	}

	stream, err := s.js.StreamInfo(constant.OfferStreamName, nats.Context(ctx))
	if err != nil && !errors.Is(err, nats.ErrStreamNotFound) {
		logrus.Error(err)
		return err
	}

	if stream == nil {
		logrus.Infof("creating stream: %s", constant.OfferStreamName)
		_, err = s.js.AddStream(streamConfig, nats.Context(ctx))
		return err
	}

	logrus.Infof("updating stream: %s", constant.OfferStreamName)
	_, err = s.js.UpdateStream(streamConfig, nats.Context(ctx))
	if err != nil {
		logrus.Error(err)
		return err
	}

	return nil
}

// ReconcileBuiltIntents sweeps records a previous worker left in BUILT and
// marks them SUBMITTED. A BUILT record already carries its final payload, so
// the sweep only moves the status forward.
func (s *OfferGatewayService) ReconcileBuiltIntents(ctx context.Context) error {
	intents, err := s.intentRepo.ListByStatus(ctx, []string{entity.OfferIntentStatusBuilt})
	if err != nil {
		logrus.Error(err)
		return ErrGetIntentFailed
	}

	now := time.Now().UTC()
	for i := range intents {
		intent := &intents[i]
		intent.Status = entity.OfferIntentStatusSubmitted
		intent.UpdatedAt = now
		if err := s.intentRepo.UpdateStatus(ctx, intent); err != nil {
			logrus.Error(err)
			return ErrUpdateIntentFailed
		}
	}

	if len(intents) > 0 {
		logrus.Infof("reconciled %d built offer intents", len(intents))
	}

	return nil
}

func (s *OfferGatewayService) JetstreamEventSubscribe(ctx context.Context) error {
	err := s.JetstreamEventInit(ctx)
	if err != nil {
		logrus.Error(err)
		return err
	}

	_, err = s.js.QueueSubscribe(
		constant.OfferStreamSubjectBuildOffer,
		constant.OfferQueueName,
		func(msg *nats.Msg) {
			err := util.ProcessWithTimeout(config.Env.NatsJetstream.TimeoutHandler["build_offer"], msg, s.handleBuildOfferEvent)
			if err != nil {
				logrus.Errorf("error processing message: %v", err)
				return
			}

			err = msg.Ack()
			if err != nil {
				logrus.Errorf("failed to acknowledge message: %v", err)
				return
			}
		},
		nats.ManualAck(),
		nats.Durable(constant.OfferQueueGroup),
	)
	util.ContinueOrFatal(err)

	return nil
}

func (s *OfferGatewayService) handleBuildOfferEvent(ctx context.Context, msg *nats.Msg) (err error) {
	logger := logrus.WithFields(logrus.Fields{
		"req": string(msg.Data),
	})

	var req *entity.OfferIntentRequestEvent
	err = json.Unmarshal(msg.Data, &req)
	if err != nil {
		logger.Error(err)
		return err
	}

	defer func() {
		if err != nil {
			logger.Error(err)
			req.RetryCount++
			if req.RetryCount >= config.Env.NatsJetstream.MaxRetries {
				return
			}

			err := util.PublishEvent(s.js, constant.OfferStreamSubjectBuildOffer, req)
			if err != nil {
				logger.Error(err)
				return
			}
		}
	}()

	intent, err := s.BuildOffer(ctx, req.Data)
	if err != nil {
		if errors.Is(err, ErrInvalidIntentRequest) || errors.Is(err, ErrDuplicateRequest) {
			// caller input errors never become valid on retry
			req.RetryCount = config.Env.NatsJetstream.MaxRetries
			return nil
		}
		logger.Error(err)
		return err
	}

	// the worker stops at the serialization boundary: the payload is final,
	// network submission belongs to a downstream system
	intent.Status = entity.OfferIntentStatusSubmitted
	intent.UpdatedAt = time.Now().UTC()
	err = s.intentRepo.UpdateStatus(ctx, intent)
	if err != nil {
		logger.Error(err)
		return ErrUpdateIntentFailed
	}

	return nil
}

// BuildOffer converts a trade intent into a manage-offer operation, encodes
// its wire payload and persists the record. Same request_id twice is a
// duplicate, whether caught by the redis lock or the stored history.
func (s *OfferGatewayService) BuildOffer(ctx context.Context, req entity.OfferIntentRequest) (*entity.OfferIntent, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if s.locks != nil {
		owner := uuid.NewString()
		acquired, err := s.locks.Acquire(ctx, req.RequestID, buildLockTTL, owner)
		if err != nil {
			logrus.Error(err)
			return nil, err
		}
		if !acquired {
			logrus.Warnf("build already in progress, request ID: %s", req.RequestID)
			return nil, ErrDuplicateRequest
		}
		defer func() {
			if err := s.locks.Release(ctx, req.RequestID, owner); err != nil {
				logrus.Error(err)
			}
		}()
	}

	existing, err := s.intentRepo.GetByRequestID(ctx, req.RequestID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		logrus.Error(err)
		return nil, ErrGetIntentFailed
	}

	if existing != nil {
		logrus.Warnf("duplicate offer intent request, request ID: %s", req.RequestID)
		return nil, ErrDuplicateRequest
	}

	intent, direction, payload, buildErr := buildFromRequest(req)
	if buildErr != nil {
		record := failedIntentRecord(req, buildErr)
		if err := s.intentRepo.Create(ctx, record); err != nil {
			logrus.Error(err)
		}

		return nil, fmt.Errorf("%w: %w", ErrInvalidIntentRequest, buildErr)
	}

	record := builtIntentRecord(req, intent, direction, payload)
	err = s.intentRepo.Create(ctx, record)
	if err != nil {
		logrus.Error(err)
		return nil, ErrCreateIntentFailed
	}

	return record, nil
}

func (s *OfferGatewayService) BuildOfferAsync(ctx context.Context, req entity.OfferIntentRequest) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	event := entity.OfferIntentRequestEvent{
		RetryCount: 0,
		Data:       req,
	}

	err := util.PublishEvent(s.js, constant.OfferStreamSubjectBuildOffer, event)
	if err != nil {
		logrus.Error(err)
		return ErrPublishIntentEventFailed
	}

	return nil
}

func buildFromRequest(req entity.OfferIntentRequest) (offer.OrderIntent, offer.TradeDirection, []byte, error) {
	base, err := entity.ParseAsset(req.Base)
	if err != nil {
		return offer.OrderIntent{}, "", nil, err
	}

	counter, err := entity.ParseAsset(req.Counter)
	if err != nil {
		return offer.OrderIntent{}, "", nil, err
	}

	direction, err := offer.ParseDirection(req.Direction)
	if err != nil {
		return offer.OrderIntent{}, "", nil, err
	}

	builder := offer.NewBuilder(base, counter, req.Amount, req.Price).
		Direction(direction).
		OfferID(req.OfferID)
	if strings.TrimSpace(req.SourceAccount) != "" {
		builder = builder.SourceAccount(strings.TrimSpace(req.SourceAccount))
	}

	intent, err := builder.Build()
	if err != nil {
		return offer.OrderIntent{}, "", nil, err
	}

	payload, err := xdr.EncodeManageOffer(intent)
	if err != nil {
		return offer.OrderIntent{}, "", nil, err
	}

	return intent, direction, payload, nil
}

func builtIntentRecord(req entity.OfferIntentRequest, intent offer.OrderIntent, direction offer.TradeDirection, payload []byte) *entity.OfferIntent {
	now := time.Now().UTC()

	return &entity.OfferIntent{
		RequestID:     req.RequestID,
		BaseAsset:     req.Base,
		CounterAsset:  req.Counter,
		Direction:     string(direction),
		RawAmount:     req.Amount,
		RawPrice:      req.Price,
		SellingAsset:  intent.Selling().String(),
		BuyingAsset:   intent.Buying().String(),
		ScaledAmount:  intent.Amount(),
		PriceN:        intent.Price().N,
		PriceD:        intent.Price().D,
		OfferID:       int64(intent.OfferID()),
		SourceAccount: nullString(intent.SourceAccount()),
		Payload:       payload,
		Status:        entity.OfferIntentStatusBuilt,
		Source:        nullString(req.Source),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func failedIntentRecord(req entity.OfferIntentRequest, buildErr error) *entity.OfferIntent {
	now := time.Now().UTC()

	return &entity.OfferIntent{
		RequestID:     req.RequestID,
		BaseAsset:     req.Base,
		CounterAsset:  req.Counter,
		Direction:     strings.ToUpper(strings.TrimSpace(req.Direction)),
		RawAmount:     req.Amount,
		RawPrice:      req.Price,
		OfferID:       int64(req.OfferID),
		SourceAccount: nullString(strings.TrimSpace(req.SourceAccount)),
		Status:        entity.OfferIntentStatusFailed,
		ErrorMessage:  nullString(buildErr.Error()),
		Source:        nullString(req.Source),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func nullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}

	return sql.NullString{String: s, Valid: true}
}
