package dto

import "github.com/fekuna/omnipos-backoffice/internal/model"

type ZoneFilters struct {
	EstablishmentID string
	Active          *bool
}

type TableFilters struct {
	EstablishmentID string
	ZoneID          string
	Status          model.TableStatus
	Active          *bool
}
