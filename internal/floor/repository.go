package floor

import (
	"context"

	"github.com/fekuna/omnipos-backoffice/internal/floor/dto"
	"github.com/fekuna/omnipos-backoffice/internal/model"
)

type ZoneRepository interface {
	List(ctx context.Context, f *dto.ZoneFilters) ([]model.Zone, error)
	FindByID(ctx context.Context, id string) (*model.Zone, error)
	Create(ctx context.Context, in *dto.CreateZoneInput) (*model.Zone, error)
	Update(ctx context.Context, id string, in *dto.UpdateZoneInput) (*model.Zone, error)
	Delete(ctx context.Context, id string) error
}

type TableRepository interface {
	List(ctx context.Context, f *dto.TableFilters) ([]model.Table, error)
	FindByID(ctx context.Context, id string) (*model.Table, error)
	Create(ctx context.Context, in *dto.CreateTableInput) (*model.Table, error)
	Update(ctx context.Context, id string, in *dto.UpdateTableInput) (*model.Table, error)
	UpdateStatus(ctx context.Context, id string, status model.TableStatus) (*model.Table, error)
	UpdatePosition(ctx context.Context, id string, pos dto.Position) (*model.Table, error)
	Delete(ctx context.Context, id string) error
}
