package dto

import "github.com/fekuna/omnipos-backoffice/internal/numeric"

type OpenCashSessionInput struct {
	EstablishmentID string         `json:"etablissement_id"`
	EmployeeID      string         `json:"utilisateur_id"`
	OpeningFloat    numeric.Number `json:"fond_caisse"`
	Notes           *string        `json:"notes_ouverture"`
}

type CloseCashSessionInput struct {
	CountedCash numeric.Number `json:"especes_comptees"`
	Notes       *string        `json:"notes_cloture"`
}
