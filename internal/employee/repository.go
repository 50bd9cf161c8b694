package employee

import (
	"context"

	"github.com/fekuna/omnipos-backoffice/internal/employee/dto"
	"github.com/fekuna/omnipos-backoffice/internal/model"
	"github.com/fekuna/omnipos-backoffice/internal/pagination"
)

type Repository interface {
	List(ctx context.Context, f *dto.EmployeeFilters) ([]model.Employee, error)
	ListPaginated(ctx context.Context, f *dto.EmployeeFilters, p pagination.Params) (*pagination.Result[model.Employee], error)
	FindByID(ctx context.Context, id string) (*model.Employee, error)
	FindByEmail(ctx context.Context, email string) (*model.Employee, error)
	Create(ctx context.Context, in *dto.CreateEmployeeInput) (*model.Employee, error)
	Update(ctx context.Context, id string, in *dto.UpdateEmployeeInput) (*model.Employee, error)
	SoftDelete(ctx context.Context, id string) error

	// Authenticate and AuthenticatePin return nil when the credentials do not
	// match an active employee.
	Authenticate(ctx context.Context, email, password string) (*model.Employee, error)
	AuthenticatePin(ctx context.Context, establishmentID, pin string) (*model.Employee, error)
	TouchLastLogin(ctx context.Context, id string) error
}
