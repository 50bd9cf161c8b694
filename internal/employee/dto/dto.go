package dto

import "github.com/fekuna/omnipos-backoffice/internal/model"

type EmployeeFilters struct {
	EstablishmentID string
	Role            model.Role
	Active          *bool
	Search          string // nom, prenom, email
}
