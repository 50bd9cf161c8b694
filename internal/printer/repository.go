package printer

import (
	"context"

	"github.com/fekuna/omnipos-backoffice/internal/model"
	"github.com/fekuna/omnipos-backoffice/internal/printer/dto"
)

type Repository interface {
	List(ctx context.Context, establishmentID string) ([]model.Printer, error)
	FindByID(ctx context.Context, id string) (*model.Printer, error)
	Create(ctx context.Context, in *dto.CreatePrinterInput) (*model.Printer, error)
	Update(ctx context.Context, id string, in *dto.UpdatePrinterInput) (*model.Printer, error)
	Delete(ctx context.Context, id string) error
}
