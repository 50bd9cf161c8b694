package dto

import "github.com/fekuna/omnipos-backoffice/internal/numeric"

type CreateCustomerInput struct {
	EstablishmentID string          `json:"etablissement_id"`
	LastName        string          `json:"nom"`
	FirstName       *string         `json:"prenom"`
	Phone           *string         `json:"telephone"`
	Email           *string         `json:"email"`
	Address         *string         `json:"adresse"`
	CreditLimit     *numeric.Number `json:"limite_credit"`
	Notes           *string         `json:"notes"`
}

// UpdateCustomerInput is a partial update. Balances and points only move
// through the Add* operations.
type UpdateCustomerInput struct {
	LastName    *string         `json:"nom"`
	FirstName   *string         `json:"prenom"`
	Phone       *string         `json:"telephone"`
	Email       *string         `json:"email"`
	Address     *string         `json:"adresse"`
	CreditLimit *numeric.Number `json:"limite_credit"`
	Notes       *string         `json:"notes"`
	Active      *bool           `json:"actif"`
}
