package dto

import (
	"github.com/fekuna/omnipos-backoffice/internal/model"
	"github.com/fekuna/omnipos-backoffice/internal/numeric"
)

// CreateMovementInput records a movement from a caller-observed stock level.
// For AJUSTEMENT and INVENTAIRE, Quantity is the counted level.
type CreateMovementInput struct {
	ProductID      string             `json:"produit_id"`
	Type           model.MovementType `json:"type"`
	Quantity       numeric.Number     `json:"quantite"`
	QuantityBefore numeric.Number     `json:"quantite_avant"`
	Reason         *string            `json:"motif"`
	Reference      *string            `json:"reference"`
	UnitPrice      *numeric.Number    `json:"prix_unitaire"`
	UserID         *string            `json:"utilisateur_id"`
}

// ApplyMovementInput is CreateMovementInput without the before snapshot: the
// current product stock is read under lock instead.
type ApplyMovementInput struct {
	ProductID string             `json:"produit_id"`
	Type      model.MovementType `json:"type"`
	Quantity  numeric.Number     `json:"quantite"`
	Reason    *string            `json:"motif"`
	Reference *string            `json:"reference"`
	UnitPrice *numeric.Number    `json:"prix_unitaire"`
	UserID    *string            `json:"utilisateur_id"`

	// OnlyTracked makes Apply a no-op on products that do not manage stock.
	OnlyTracked bool `json:"-"`
	// OncePerReference makes Apply a no-op when the product already has a
	// movement of the same type for Reference.
	OncePerReference bool `json:"-"`
}
