package dto

import (
	"github.com/fekuna/omnipos-backoffice/internal/model"
	"github.com/fekuna/omnipos-backoffice/internal/numeric"
)

type CreateZoneInput struct {
	EstablishmentID string  `json:"etablissement_id"`
	Name            string  `json:"nom"`
	Description     *string `json:"description"`
	Color           *string `json:"couleur"`
	SortOrder       int     `json:"ordre"`
}

type UpdateZoneInput struct {
	Name        *string `json:"nom"`
	Description *string `json:"description"`
	Color       *string `json:"couleur"`
	SortOrder   *int    `json:"ordre"`
	Active      *bool   `json:"actif"`
}

type CreateTableInput struct {
	EstablishmentID string           `json:"etablissement_id"`
	ZoneID          *string          `json:"zone_id"`
	Number          string           `json:"numero"`
	Capacity        int              `json:"capacite"`
	Shape           model.TableShape `json:"forme"`
	Position        Position         `json:"position"`
}

type UpdateTableInput struct {
	ZoneID   *string           `json:"zone_id"` // "" detaches the table from its zone
	Number   *string           `json:"numero"`
	Capacity *int              `json:"capacite"`
	Shape    *model.TableShape `json:"forme"`
	Active   *bool             `json:"actif"`
}

// Position places a table on the floor plan.
type Position struct {
	X      numeric.Number `json:"x"`
	Y      numeric.Number `json:"y"`
	Width  numeric.Number `json:"largeur"`
	Height numeric.Number `json:"hauteur"`
}
