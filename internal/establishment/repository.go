package establishment

import (
	"context"

	"github.com/fekuna/omnipos-backoffice/internal/establishment/dto"
	"github.com/fekuna/omnipos-backoffice/internal/model"
)

type Repository interface {
	FindByID(ctx context.Context, id string) (*model.Establishment, error)
	ListAll(ctx context.Context) ([]model.Establishment, error)
	Create(ctx context.Context, in *dto.CreateEstablishmentInput) (*model.Establishment, error)
	Update(ctx context.Context, id string, in *dto.UpdateEstablishmentInput) (*model.Establishment, error)

	// NextTicketNumber reserves and returns the next ticket number of the day.
	NextTicketNumber(ctx context.Context, id string) (string, error)
}
