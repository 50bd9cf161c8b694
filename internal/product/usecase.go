package product

import (
	"context"

	"github.com/fekuna/omnipos-backoffice/internal/model"
	"github.com/fekuna/omnipos-backoffice/internal/pagination"
)

// UseCase is the catalog repository behind a list cache and a search index.
// Writes invalidate the establishment's cached lists and refresh the index.
type UseCase interface {
	Repository

	// Search matches nom, code_barre and description through the index,
	// falling back to the database when the index is unavailable.
	Search(ctx context.Context, establishmentID, query string, p pagination.Params) (*pagination.Result[model.Product], error)
}
