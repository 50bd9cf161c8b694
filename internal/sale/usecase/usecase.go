package usecase

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/fekuna/omnipos-backoffice/internal/event"
	"github.com/fekuna/omnipos-backoffice/internal/model"
	"github.com/fekuna/omnipos-backoffice/internal/sale"
	"github.com/fekuna/omnipos-backoffice/internal/sale/dto"
	"github.com/fekuna/omnipos-backoffice/pkg/broker"
	"github.com/fekuna/omnipos-backoffice/pkg/logger"
)

// Publisher sends one message. *broker.KafkaProducer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, key, value []byte) error
}

var _ Publisher = (*broker.KafkaProducer)(nil)

type saleUseCase struct {
	sale.Repository
	publisher Publisher
	logger    logger.ZapLogger
	now       func() time.Time
}

// NewSaleUseCase accepts a nil publisher, in which case status changes are not
// announced.
func NewSaleUseCase(repo sale.Repository, publisher Publisher, log logger.ZapLogger) sale.UseCase {
	return &saleUseCase{Repository: repo, publisher: publisher, logger: log, now: time.Now}
}

// MarkPaid settles the sale then publishes VentePayee keyed by establishment.
// A publish failure is logged; the sale stays paid.
func (uc *saleUseCase) MarkPaid(ctx context.Context, id string) (*model.Sale, error) {
	s, err := uc.Repository.MarkPaid(ctx, id)
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, s, event.NewSalePaid(s, uc.now()))
	return s, nil
}

// Cancel voids the sale. A sale that had been paid is announced as
// VenteAnnulee so the stock it took is booked back.
func (uc *saleUseCase) Cancel(ctx context.Context, id string, in *dto.CancelSaleInput) (*model.Sale, error) {
	s, err := uc.Repository.Cancel(ctx, id, in)
	if err != nil {
		return nil, err
	}
	if s.PaidAt != nil {
		uc.publish(ctx, s, event.NewSaleCancelled(s, uc.now()))
	}
	return s, nil
}

func (uc *saleUseCase) publish(ctx context.Context, s *model.Sale, e event.SaleEvent) {
	if uc.publisher == nil {
		return
	}
	data, err := json.Marshal(e)
	if err != nil {
		uc.logger.Error("failed to encode sale event", zap.String("sale_id", s.ID), zap.Error(err))
		return
	}
	if err := uc.publisher.Publish(ctx, []byte(s.EstablishmentID), data); err != nil {
		uc.logger.Error("failed to publish sale event",
			zap.String("event_type", e.EventType),
			zap.String("sale_id", s.ID),
			zap.String("numero_ticket", s.TicketNumber),
			zap.Error(err),
		)
	}
}
