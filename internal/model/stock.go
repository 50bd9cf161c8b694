package model

import (
	"time"

	"github.com/fekuna/omnipos-backoffice/internal/numeric"
)

type MovementType string

const (
	MovementEntry      MovementType = "ENTREE"
	MovementExit       MovementType = "SORTIE"
	MovementAdjustment MovementType = "AJUSTEMENT"
	MovementLoss       MovementType = "PERTE"
	MovementInventory  MovementType = "INVENTAIRE"
)

func (t MovementType) Valid() bool {
	switch t {
	case MovementEntry, MovementExit, MovementAdjustment, MovementLoss, MovementInventory:
		return true
	}
	return false
}

// SetsLevel reports whether quantity is the target level rather than a delta.
func (t MovementType) SetsLevel() bool {
	return t == MovementAdjustment || t == MovementInventory
}

// StockMovement is an append-only ledger row. QuantityBefore/QuantityAfter
// are snapshots taken when the movement was recorded.
type StockMovement struct {
	ID             string          `db:"id" json:"id"`
	ProductID      string          `db:"produit_id" json:"produit_id"`
	Type           MovementType    `db:"type" json:"type"`
	Quantity       numeric.Number  `db:"quantite" json:"quantite"`
	QuantityBefore numeric.Number  `db:"quantite_avant" json:"quantite_avant"`
	QuantityAfter  numeric.Number  `db:"quantite_apres" json:"quantite_apres"`
	Reason         *string         `db:"motif" json:"motif"`
	Reference      *string         `db:"reference" json:"reference"`
	UnitPrice      *numeric.Number `db:"prix_unitaire" json:"prix_unitaire"`
	UserID         *string         `db:"utilisateur_id" json:"utilisateur_id"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}
