package product

import (
	"context"

	"github.com/fekuna/omnipos-backoffice/internal/model"
	"github.com/fekuna/omnipos-backoffice/internal/pagination"
	"github.com/fekuna/omnipos-backoffice/internal/product/dto"
)

type Repository interface {
	List(ctx context.Context, f *dto.ProductFilters) ([]model.Product, error)
	ListPaginated(ctx context.Context, f *dto.ProductFilters, p pagination.Params) (*pagination.Result[model.Product], error)
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindByBarcode(ctx context.Context, establishmentID, barcode string) (*model.Product, error)
	Create(ctx context.Context, in *dto.CreateProductInput) (*model.Product, error)
	Update(ctx context.Context, id string, in *dto.UpdateProductInput) (*model.Product, error)
	SoftDelete(ctx context.Context, id string) error

	IsBarcodeUnique(ctx context.Context, establishmentID, barcode, excludeID string) (bool, error)

	ListSupplements(ctx context.Context, productID string) ([]model.Supplement, error)
	AddSupplement(ctx context.Context, in *dto.CreateSupplementInput) (*model.Supplement, error)
	DeleteSupplement(ctx context.Context, id string) error
}
