package model

import "github.com/fekuna/omnipos-backoffice/internal/numeric"

// Customer is a customer account with prepaid and credit balances.
type Customer struct {
	BaseModel
	EstablishmentID string         `db:"etablissement_id" json:"etablissement_id"`
	LastName        string         `db:"nom" json:"nom"`
	FirstName       *string        `db:"prenom" json:"prenom"`
	Phone           *string        `db:"telephone" json:"telephone"`
	Email           *string        `db:"email" json:"email"`
	Address         *string        `db:"adresse" json:"adresse"`
	PrepaidBalance  numeric.Number `db:"solde_prepaye" json:"solde_prepaye"`
	CreditBalance   numeric.Number `db:"solde_credit" json:"solde_credit"`
	CreditLimit     numeric.Number `db:"limite_credit" json:"limite_credit"`
	LoyaltyPoints   int            `db:"points_fidelite" json:"points_fidelite"`
	Notes           *string        `db:"notes" json:"notes"`
	Active          bool           `db:"actif" json:"actif"`
}
