package audit

import (
	"context"

	"github.com/fekuna/omnipos-backoffice/internal/audit/dto"
	"github.com/fekuna/omnipos-backoffice/internal/model"
	"github.com/fekuna/omnipos-backoffice/internal/pagination"
)

// Repository reads and appends audit entries. Entries are immutable.
type Repository interface {
	List(ctx context.Context, f *dto.AuditFilters) ([]model.AuditLog, error)
	ListPaginated(ctx context.Context, f *dto.AuditFilters, p pagination.Params) (*pagination.Result[model.AuditLog], error)
	FindByID(ctx context.Context, id string) (*model.AuditLog, error)
	Record(ctx context.Context, in *dto.RecordInput) (*model.AuditLog, error)
}
