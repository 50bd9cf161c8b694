package dto

import "github.com/fekuna/omnipos-backoffice/internal/model"

type CreateEmployeeInput struct {
	EstablishmentID string     `json:"etablissement_id"`
	LastName        string     `json:"nom"`
	FirstName       string     `json:"prenom"`
	Email           string     `json:"email"`
	Phone           *string    `json:"telephone"`
	Password        string     `json:"password"`
	Pin             *string    `json:"pin"`
	Role            model.Role `json:"role"`
	AllowedRoutes   []string   `json:"routes_autorisees"`
}

// UpdateEmployeeInput is a partial update. Password and Pin are re-hashed
// when supplied.
type UpdateEmployeeInput struct {
	LastName      *string     `json:"nom"`
	FirstName     *string     `json:"prenom"`
	Email         *string     `json:"email"`
	Phone         *string     `json:"telephone"`
	Password      *string     `json:"password"`
	Pin           *string     `json:"pin"`
	Role          *model.Role `json:"role"`
	AllowedRoutes *[]string   `json:"routes_autorisees"`
	Active        *bool       `json:"actif"`
}
