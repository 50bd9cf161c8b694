package dto

import "github.com/fekuna/omnipos-backoffice/internal/model"

type ProductFilters struct {
	EstablishmentID string        `json:"etablissement_id"`
	CategoryID      string        `json:"categorie_id,omitempty"`
	Active          *bool         `json:"actif,omitempty"`
	Search          string        `json:"search,omitempty"`     // nom, code_barre
	LowStock        bool          `json:"low_stock,omitempty"`
	Channel         model.Channel `json:"channel,omitempty"`
	SortBy          string        `json:"sort_by,omitempty"`    // nom, prix, created_at
	SortOrder       string        `json:"sort_order,omitempty"` // asc, desc
}
