package customer

import (
	"context"

	"github.com/fekuna/omnipos-backoffice/internal/customer/dto"
	"github.com/fekuna/omnipos-backoffice/internal/model"
	"github.com/fekuna/omnipos-backoffice/internal/pagination"
)

type Repository interface {
	List(ctx context.Context, f *dto.CustomerFilters) ([]model.Customer, error)
	ListPaginated(ctx context.Context, f *dto.CustomerFilters, p pagination.Params) (*pagination.Result[model.Customer], error)
	FindByID(ctx context.Context, id string) (*model.Customer, error)
	FindByPhone(ctx context.Context, establishmentID, phone string) (*model.Customer, error)
	Create(ctx context.Context, in *dto.CreateCustomerInput) (*model.Customer, error)
	Update(ctx context.Context, id string, in *dto.UpdateCustomerInput) (*model.Customer, error)
	SoftDelete(ctx context.Context, id string) error

	// Balance adjustments are applied as atomic increments and return the
	// updated customer.
	AddPoints(ctx context.Context, id string, delta int) (*model.Customer, error)
	AddPrepaidBalance(ctx context.Context, id string, delta float64) (*model.Customer, error)
	AddCreditBalance(ctx context.Context, id string, delta float64) (*model.Customer, error)
}
