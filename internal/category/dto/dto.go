package dto

type CategoryFilters struct {
	EstablishmentID string
	Active          *bool
	Search          string
}
