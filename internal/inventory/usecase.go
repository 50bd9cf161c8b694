package inventory

import (
	"context"

	"github.com/fekuna/omnipos-backoffice/internal/event"
)

type UseCase interface {
	// ApplySale books one SORTIE per product of a paid sale. Redelivered
	// events are applied once.
	ApplySale(ctx context.Context, e *event.SaleEvent) error

	// RestoreSale books back, as ENTREE, the SORTIE movements a cancelled
	// sale took.
	RestoreSale(ctx context.Context, e *event.SaleEvent) error
}
