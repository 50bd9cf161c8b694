package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-backoffice/internal/apperror"
	"github.com/fekuna/omnipos-backoffice/internal/event"
	"github.com/fekuna/omnipos-backoffice/internal/inventory"
	"github.com/fekuna/omnipos-backoffice/pkg/broker"
	"github.com/fekuna/omnipos-backoffice/pkg/logger"
)

const maxBackoff = 30 * time.Second

// Reader is the consuming side of the broker. *broker.KafkaConsumer
// satisfies it.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

var _ Reader = (*broker.KafkaConsumer)(nil)

type InventoryListener struct {
	consumer Reader
	uc       inventory.UseCase
	logger   logger.ZapLogger
	backoff  time.Duration
}

func NewInventoryListener(consumer Reader, uc inventory.UseCase, logger logger.ZapLogger) *InventoryListener {
	return &InventoryListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
		backoff:  time.Second,
	}
}

// Start consumes until ctx is cancelled. A message is committed once it was
// booked or found unusable; storage failures are retried on the same message.
func (l *InventoryListener) Start(ctx context.Context) {
	l.logger.Info("Starting stock listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping stock listener")
			return
		default:
			msg, err := l.consumer.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to fetch kafka message", zap.Error(err))
				if !l.sleep(ctx, l.backoff) {
					return
				}
				continue
			}
			if !l.processMessage(ctx, msg.Value) {
				return
			}
			if err := l.consumer.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
				l.logger.Error("Failed to commit kafka message", zap.Int64("offset", msg.Offset), zap.Error(err))
			}
		}
	}
}

// processMessage reports false only when ctx ended before the message was
// handled.
func (l *InventoryListener) processMessage(ctx context.Context, value []byte) bool {
	var e event.SaleEvent
	if err := json.Unmarshal(value, &e); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return true
	}

	var handle func(context.Context, *event.SaleEvent) error
	switch e.EventType {
	case event.TypeSalePaid:
		handle = l.uc.ApplySale
	case event.TypeSaleCancelled:
		handle = l.uc.RestoreSale
	default:
		return true
	}

	l.logger.Info("Processing sale event",
		zap.String("event_type", e.EventType),
		zap.String("sale_id", e.Payload.SaleID),
		zap.String("etablissement_id", e.Payload.EstablishmentID),
	)
	wait := l.backoff
	for {
		err := handle(ctx, &e)
		if err == nil {
			return true
		}
		if apperror.IsValidation(err) {
			l.logger.Error("Dropping unusable sale event", zap.String("sale_id", e.Payload.SaleID), zap.Error(err))
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		l.logger.Error("Failed to book sale event, retrying",
			zap.String("sale_id", e.Payload.SaleID),
			zap.Duration("retry_in", wait),
			zap.Error(err),
		)
		if !l.sleep(ctx, wait) {
			return false
		}
		wait = min(wait*2, maxBackoff)
	}
}

func (l *InventoryListener) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
