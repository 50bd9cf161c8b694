package model

import (
	"time"

	"github.com/fekuna/omnipos-backoffice/internal/numeric"
)

type SaleType string

const (
	SaleDirect   SaleType = "DIRECT"
	SaleTable    SaleType = "TABLE"
	SaleDelivery SaleType = "LIVRAISON"
	SaleTakeout  SaleType = "EMPORTER"
)

func (t SaleType) Valid() bool {
	switch t {
	case SaleDirect, SaleTable, SaleDelivery, SaleTakeout:
		return true
	}
	return false
}

type SaleStatus string

const (
	SaleInProgress SaleStatus = "EN_COURS"
	SalePaid       SaleStatus = "PAYEE"
	SaleCancelled  SaleStatus = "ANNULEE"
)

type PaymentMode string

const (
	PaymentCash          PaymentMode = "ESPECES"
	PaymentCard          PaymentMode = "CARTE"
	PaymentAirtelMoney   PaymentMode = "AIRTEL_MONEY"
	PaymentMoovMoney     PaymentMode = "MOOV_MONEY"
	PaymentCheck         PaymentMode = "CHEQUE"
	PaymentTransfer      PaymentMode = "VIREMENT"
	PaymentAccountCredit PaymentMode = "COMPTE_CLIENT"
	PaymentMixed         PaymentMode = "MIXTE"
)

func (m PaymentMode) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentAirtelMoney, PaymentMoovMoney,
		PaymentCheck, PaymentTransfer, PaymentAccountCredit, PaymentMixed:
		return true
	}
	return false
}

func (m PaymentMode) IsMobileMoney() bool {
	return m == PaymentAirtelMoney || m == PaymentMoovMoney
}

type Sale struct {
	BaseModel
	EstablishmentID string         `db:"etablissement_id" json:"etablissement_id"`
	TicketNumber    string         `db:"numero_ticket" json:"numero_ticket"`
	Type            SaleType       `db:"type" json:"type"`
	Status          SaleStatus     `db:"statut" json:"statut"`
	ClientID        *string        `db:"client_id" json:"client_id"`
	TableID         *string        `db:"table_id" json:"table_id"`
	CashierID       string         `db:"utilisateur_id" json:"utilisateur_id"`
	CashSessionID   *string        `db:"session_caisse_id" json:"session_caisse_id"`
	Covers          int            `db:"nombre_couverts" json:"nombre_couverts"`
	Subtotal        numeric.Number `db:"sous_total" json:"sous_total"`
	VATTotal        numeric.Number `db:"total_tva" json:"total_tva"`
	DiscountTotal   numeric.Number `db:"total_remise" json:"total_remise"`
	Discount        numeric.Number `db:"remise" json:"remise"`
	DeliveryFee     numeric.Number `db:"frais_livraison" json:"frais_livraison"`
	Total           numeric.Number `db:"total_final" json:"total_final"`
	DeliveryAddress *string        `db:"adresse_livraison" json:"adresse_livraison"`
	Notes           *string        `db:"notes" json:"notes"`
	CancelReason    *string        `db:"motif_annulation" json:"motif_annulation"`
	CancelledBy     *string        `db:"annule_par" json:"annule_par"`
	CancelledAt     *time.Time     `db:"annule_le" json:"annule_le"`
	PaidAt          *time.Time     `db:"paye_le" json:"paye_le"`
	Lines           []SaleLine     `db:"-" json:"lignes,omitempty"`
	Payments        []Payment      `db:"-" json:"paiements,omitempty"`
}

type SaleLine struct {
	ID          string           `db:"id" json:"id"`
	SaleID      string           `db:"vente_id" json:"vente_id"`
	ProductID   string           `db:"produit_id" json:"produit_id"`
	Label       string           `db:"nom_produit" json:"nom_produit"`
	Quantity    numeric.Number   `db:"quantite" json:"quantite"`
	UnitPrice   numeric.Number   `db:"prix_unitaire" json:"prix_unitaire"`
	VATRate     numeric.Number   `db:"taux_tva" json:"taux_tva"`
	Discount    numeric.Number   `db:"remise" json:"remise"`
	Subtotal    numeric.Number   `db:"sous_total" json:"sous_total"`
	VATAmount   numeric.Number   `db:"montant_tva" json:"montant_tva"`
	Total       numeric.Number   `db:"total" json:"total"`
	Notes       *string          `db:"notes" json:"notes"`
	Position    int              `db:"position" json:"position"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	Supplements []LineSupplement `db:"-" json:"supplements,omitempty"`
}

type LineSupplement struct {
	ID           string         `db:"id" json:"id"`
	SaleLineID   string         `db:"ligne_vente_id" json:"ligne_vente_id"`
	SupplementID *string        `db:"supplement_id" json:"supplement_id"`
	Name         string         `db:"nom" json:"nom"`
	Price        numeric.Number `db:"prix" json:"prix"`
}

type Payment struct {
	ID             string          `db:"id" json:"id"`
	SaleID         string          `db:"vente_id" json:"vente_id"`
	Mode           PaymentMode     `db:"mode_paiement" json:"mode_paiement"`
	Amount         numeric.Number  `db:"montant" json:"montant"`
	AmountReceived *numeric.Number `db:"montant_recu" json:"montant_recu"`
	ChangeGiven    *numeric.Number `db:"monnaie_rendue" json:"monnaie_rendue"`
	Reference      *string         `db:"reference" json:"reference"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

// SalesSummary aggregates paid sales over a period.
type SalesSummary struct {
	SaleCount     int                     `json:"nombre_ventes"`
	Revenue       float64                 `json:"chiffre_affaires"`
	VATTotal      float64                 `json:"total_tva"`
	DiscountTotal float64                 `json:"total_remises"`
	AverageTicket float64                 `json:"panier_moyen"`
	ByPaymentMode map[PaymentMode]float64 `json:"par_mode_paiement"`
	ByType        map[SaleType]float64    `json:"par_type"`
	Cancelled     int                     `json:"ventes_annulees"`
}
