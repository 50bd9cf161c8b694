package cashsession

import (
	"context"

	"github.com/fekuna/omnipos-backoffice/internal/cashsession/dto"
	"github.com/fekuna/omnipos-backoffice/internal/model"
	"github.com/fekuna/omnipos-backoffice/internal/pagination"
)

type Repository interface {
	List(ctx context.Context, f *dto.CashSessionFilters) ([]model.CashSession, error)
	ListPaginated(ctx context.Context, f *dto.CashSessionFilters, p pagination.Params) (*pagination.Result[model.CashSession], error)
	FindByID(ctx context.Context, id string) (*model.CashSession, error)
	FindOpen(ctx context.Context, establishmentID, employeeID string) (*model.CashSession, error)
	Open(ctx context.Context, in *dto.OpenCashSessionInput) (*model.CashSession, error)
	ComputeTotals(ctx context.Context, id string) (*model.CashSession, error)
	Close(ctx context.Context, id string, in *dto.CloseCashSessionInput) (*model.CashSession, error)
}
