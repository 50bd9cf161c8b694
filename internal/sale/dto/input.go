package dto

import (
	"github.com/fekuna/omnipos-backoffice/internal/model"
	"github.com/fekuna/omnipos-backoffice/internal/numeric"
)

// LineInput names a product to sell. Label, unit price and VAT rate come from
// the catalog; SupplementIDs must be active supplements of that product.
type LineInput struct {
	ProductID     string         `json:"produit_id"`
	Quantity      numeric.Number `json:"quantite"`
	Discount      numeric.Number `json:"remise"`
	Notes         *string        `json:"notes"`
	SupplementIDs []string       `json:"supplements"`
}

type CreateSaleInput struct {
	EstablishmentID string         `json:"etablissement_id"`
	Type            model.SaleType `json:"type"`
	ClientID        *string        `json:"client_id"`
	TableID         *string        `json:"table_id"`
	CashierID       string         `json:"utilisateur_id"`
	CashSessionID   *string        `json:"session_caisse_id"`
	Covers          int            `json:"nombre_couverts"`
	Discount        numeric.Number `json:"remise"`
	DeliveryFee     numeric.Number `json:"frais_livraison"`
	DeliveryAddress *string        `json:"adresse_livraison"`
	Notes           *string        `json:"notes"`
	Lines           []LineInput    `json:"lignes"`
}

// PaymentInput records one tender. AmountReceived only matters for cash.
type PaymentInput struct {
	Mode           model.PaymentMode `json:"mode_paiement"`
	Amount         numeric.Number    `json:"montant"`
	AmountReceived *numeric.Number   `json:"montant_recu"`
	Reference      *string           `json:"reference"`
}

type CancelSaleInput struct {
	CancelledBy string `json:"annule_par"`
	Reason      string `json:"motif_annulation"`
}
