package sale

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-backoffice/internal/model"
	"github.com/fekuna/omnipos-backoffice/internal/pagination"
	"github.com/fekuna/omnipos-backoffice/internal/sale/dto"
)

type Repository interface {
	List(ctx context.Context, f *dto.SaleFilters) ([]model.Sale, error)
	ListPaginated(ctx context.Context, f *dto.SaleFilters, p pagination.Params) (*pagination.Result[model.Sale], error)
	FindByID(ctx context.Context, id string) (*model.Sale, error)
	FindByTicket(ctx context.Context, establishmentID, ticketNumber string) (*model.Sale, error)
	Create(ctx context.Context, in *dto.CreateSaleInput) (*model.Sale, error)
	AddLine(ctx context.Context, saleID string, in *dto.LineInput) (*model.Sale, error)
	RemoveLine(ctx context.Context, saleID, lineID string) (*model.Sale, error)
	AddPayment(ctx context.Context, saleID string, in *dto.PaymentInput) (*model.Payment, error)
	MarkPaid(ctx context.Context, id string) (*model.Sale, error)
	Cancel(ctx context.Context, id string, in *dto.CancelSaleInput) (*model.Sale, error)
	Summarize(ctx context.Context, establishmentID string, from, to time.Time) (*model.SalesSummary, error)
}
