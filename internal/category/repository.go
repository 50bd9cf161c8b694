package category

import (
	"context"

	"github.com/fekuna/omnipos-backoffice/internal/category/dto"
	"github.com/fekuna/omnipos-backoffice/internal/model"
	"github.com/fekuna/omnipos-backoffice/internal/pagination"
)

type Repository interface {
	List(ctx context.Context, f *dto.CategoryFilters) ([]model.Category, error)
	ListPaginated(ctx context.Context, f *dto.CategoryFilters, p pagination.Params) (*pagination.Result[model.Category], error)
	FindByID(ctx context.Context, id string) (*model.Category, error)
	Create(ctx context.Context, in *dto.CreateCategoryInput) (*model.Category, error)
	Update(ctx context.Context, id string, in *dto.UpdateCategoryInput) (*model.Category, error)
	SoftDelete(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
