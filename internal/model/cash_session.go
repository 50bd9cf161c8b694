package model

import (
	"time"

	"github.com/fekuna/omnipos-backoffice/internal/numeric"
)

type CashSessionStatus string

const (
	CashSessionOpen   CashSessionStatus = "OUVERTE"
	CashSessionClosed CashSessionStatus = "FERMEE"
)

type CashSession struct {
	BaseModel
	EstablishmentID string            `db:"etablissement_id" json:"etablissement_id"`
	EmployeeID      string            `db:"utilisateur_id" json:"utilisateur_id"`
	Status          CashSessionStatus `db:"statut" json:"statut"`
	OpeningFloat    numeric.Number    `db:"fond_caisse" json:"fond_caisse"`
	TotalCash       numeric.Number    `db:"total_especes" json:"total_especes"`
	TotalCard       numeric.Number    `db:"total_cartes" json:"total_cartes"`
	TotalMobile     numeric.Number    `db:"total_mobile_money" json:"total_mobile_money"`
	TotalOther      numeric.Number    `db:"total_autres" json:"total_autres"`
	TotalSales      numeric.Number    `db:"total_ventes" json:"total_ventes"`
	SaleCount       int               `db:"nombre_ventes" json:"nombre_ventes"`
	CountedCash     *numeric.Number   `db:"especes_comptees" json:"especes_comptees"`
	Variance        *numeric.Number   `db:"ecart" json:"ecart"`
	OpeningNotes    *string           `db:"notes_ouverture" json:"notes_ouverture"`
	ClosingNotes    *string           `db:"notes_cloture" json:"notes_cloture"`
	OpenedAt        time.Time         `db:"ouverte_le" json:"ouverte_le"`
	ClosedAt        *time.Time        `db:"fermee_le" json:"fermee_le"`
}

// ExpectedCash is what the drawer should hold: opening float plus cash takings.
func (s *CashSession) ExpectedCash() float64 {
	return numeric.Round2(s.OpeningFloat.Float64() + s.TotalCash.Float64())
}
