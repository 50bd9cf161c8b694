package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-backoffice/internal/apperror"
	"github.com/fekuna/omnipos-backoffice/internal/event"
	"github.com/fekuna/omnipos-backoffice/internal/model"
	"github.com/fekuna/omnipos-backoffice/internal/sale"
	"github.com/fekuna/omnipos-backoffice/internal/sale/dto"
	"github.com/fekuna/omnipos-backoffice/pkg/logger"
)

type fakeRepo struct {
	sale.Repository
	sale *model.Sale
	err  error
}

func (f *fakeRepo) MarkPaid(_ context.Context, id string) (*model.Sale, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sale.Status = model.SalePaid
	return f.sale, nil
}

func (f *fakeRepo) Cancel(_ context.Context, id string, _ *dto.CancelSaleInput) (*model.Sale, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sale.Status = model.SaleCancelled
	return f.sale, nil
}

type message struct {
	key, value []byte
}

type fakePublisher struct {
	sent []message
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, key, value []byte) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, message{key, value})
	return nil
}

func paidSale() *model.Sale {
	return &model.Sale{
		BaseModel:       model.BaseModel{ID: "v1"},
		EstablishmentID: "e1",
		TicketNumber:    "2026031400003",
		Lines:           []model.SaleLine{{ProductID: "p1", Quantity: 3}},
	}
}

func TestMarkPaid_PublishesSalePaid(t *testing.T) {
	pub := &fakePublisher{}
	uc := NewSaleUseCase(&fakeRepo{sale: paidSale()}, pub, logger.NewNop())

	s, err := uc.MarkPaid(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, model.SalePaid, s.Status)

	require.Len(t, pub.sent, 1)
	assert.Equal(t, "e1", string(pub.sent[0].key))
	var e event.SaleEvent
	require.NoError(t, json.Unmarshal(pub.sent[0].value, &e))
	assert.Equal(t, event.TypeSalePaid, e.EventType)
	assert.Equal(t, "v1", e.Payload.SaleID)
	assert.Equal(t, []event.SaleLineItem{{ProductID: "p1", Quantity: 3}}, e.Payload.Lines)
}

func TestMarkPaid_RepositoryErrorPublishesNothing(t *testing.T) {
	pub := &fakePublisher{}
	uc := NewSaleUseCase(&fakeRepo{err: apperror.Validation("ventes.mark_paid", "paiements insuffisants")}, pub, logger.NewNop())

	_, err := uc.MarkPaid(context.Background(), "v1")
	assert.True(t, apperror.IsValidation(err))
	assert.Empty(t, pub.sent)
}

func TestMarkPaid_PublishFailureKeepsSalePaid(t *testing.T) {
	uc := NewSaleUseCase(&fakeRepo{sale: paidSale()}, &fakePublisher{err: errors.New("broker down")}, logger.NewNop())

	s, err := uc.MarkPaid(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, model.SalePaid, s.Status)
}

func TestMarkPaid_WithoutPublisher(t *testing.T) {
	uc := NewSaleUseCase(&fakeRepo{sale: paidSale()}, nil, logger.NewNop())

	_, err := uc.MarkPaid(context.Background(), "v1")
	assert.NoError(t, err)
}

func TestCancel_PaidSalePublishesCancellation(t *testing.T) {
	paidAt := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	s := paidSale()
	s.PaidAt = &paidAt
	pub := &fakePublisher{}
	uc := NewSaleUseCase(&fakeRepo{sale: s}, pub, logger.NewNop())

	out, err := uc.Cancel(context.Background(), "v1", &dto.CancelSaleInput{Reason: "erreur de caisse", CancelledBy: "u1"})
	require.NoError(t, err)
	assert.Equal(t, model.SaleCancelled, out.Status)

	require.Len(t, pub.sent, 1)
	var e event.SaleEvent
	require.NoError(t, json.Unmarshal(pub.sent[0].value, &e))
	assert.Equal(t, event.TypeSaleCancelled, e.EventType)
	assert.Equal(t, "v1", e.Payload.SaleID)
	assert.Equal(t, "e1", string(pub.sent[0].key))
}

func TestCancel_UnpaidSalePublishesNothing(t *testing.T) {
	pub := &fakePublisher{}
	uc := NewSaleUseCase(&fakeRepo{sale: paidSale()}, pub, logger.NewNop())

	_, err := uc.Cancel(context.Background(), "v1", &dto.CancelSaleInput{Reason: "client parti", CancelledBy: "u1"})
	require.NoError(t, err)
	assert.Empty(t, pub.sent)
}
