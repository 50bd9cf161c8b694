package dto

type CustomerFilters struct {
	EstablishmentID string
	Active          *bool
	Search          string // nom, prenom, telephone
}
