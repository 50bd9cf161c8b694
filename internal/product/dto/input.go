package dto

import "github.com/fekuna/omnipos-backoffice/internal/numeric"

// CreateProductInput accepts prices either as JSON numbers or numeric strings.
type CreateProductInput struct {
	EstablishmentID   string          `json:"etablissement_id"`
	CategoryID        *string         `json:"categorie_id"`
	Name              string          `json:"nom"`
	Description       *string         `json:"description"`
	Barcode           *string         `json:"code_barre"`
	ImageURL          *string         `json:"image_url"`
	SellPrice         numeric.Number  `json:"prix_vente"`
	PurchasePrice     numeric.Number  `json:"prix_achat"`
	VATRate           *numeric.Number `json:"taux_tva"`
	TrackStock        bool            `json:"gerer_stock"`
	StockMin          numeric.Number  `json:"stock_min"`
	StockMax          *numeric.Number `json:"stock_max"`
	Unit              string          `json:"unite"`
	AvailableDirect   *bool           `json:"disponible_direct"`
	AvailableTable    *bool           `json:"disponible_table"`
	AvailableDelivery *bool           `json:"disponible_livraison"`
	AvailableTakeout  *bool           `json:"disponible_emporter"`
}

// UpdateProductInput is a partial update. Stock levels are not editable here;
// they move through stock movements only.
type UpdateProductInput struct {
	CategoryID        *string         `json:"categorie_id"`
	Name              *string         `json:"nom"`
	Description       *string         `json:"description"`
	Barcode           *string         `json:"code_barre"`
	ImageURL          *string         `json:"image_url"`
	SellPrice         *numeric.Number `json:"prix_vente"`
	PurchasePrice     *numeric.Number `json:"prix_achat"`
	VATRate           *numeric.Number `json:"taux_tva"`
	TrackStock        *bool           `json:"gerer_stock"`
	StockMin          *numeric.Number `json:"stock_min"`
	StockMax          *numeric.Number `json:"stock_max"`
	Unit              *string         `json:"unite"`
	AvailableDirect   *bool           `json:"disponible_direct"`
	AvailableTable    *bool           `json:"disponible_table"`
	AvailableDelivery *bool           `json:"disponible_livraison"`
	AvailableTakeout  *bool           `json:"disponible_emporter"`
	Active            *bool           `json:"actif"`
}

type CreateSupplementInput struct {
	ProductID string         `json:"produit_id"`
	Name      string         `json:"nom"`
	Price     numeric.Number `json:"prix"`
}
