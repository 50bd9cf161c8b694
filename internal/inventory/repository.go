package inventory

import (
	"context"

	"github.com/fekuna/omnipos-backoffice/internal/inventory/dto"
	"github.com/fekuna/omnipos-backoffice/internal/model"
	"github.com/fekuna/omnipos-backoffice/internal/pagination"
)

// Repository is the stock movement ledger. Movements are never updated or
// deleted once written.
type Repository interface {
	List(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, error)
	ListPaginated(ctx context.Context, f *dto.MovementFilters, p pagination.Params) (*pagination.Result[model.StockMovement], error)
	FindByID(ctx context.Context, id string) (*model.StockMovement, error)
	Create(ctx context.Context, in *dto.CreateMovementInput) (*model.StockMovement, error)

	RegisterEntry(ctx context.Context, in *dto.CreateMovementInput) (*model.StockMovement, error)
	RegisterExit(ctx context.Context, in *dto.CreateMovementInput) (*model.StockMovement, error)
	RegisterAdjustment(ctx context.Context, in *dto.CreateMovementInput) (*model.StockMovement, error)
	RegisterLoss(ctx context.Context, in *dto.CreateMovementInput) (*model.StockMovement, error)
	RegisterInventory(ctx context.Context, in *dto.CreateMovementInput) (*model.StockMovement, error)

	Apply(ctx context.Context, in *dto.ApplyMovementInput) (*model.StockMovement, error)
}
