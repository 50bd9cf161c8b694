package dto

import (
	"time"

	"github.com/fekuna/omnipos-backoffice/internal/model"
)

type MovementFilters struct {
	EstablishmentID string
	ProductID       string
	Type            model.MovementType
	Reference       string
	From            *time.Time // inclusive
	To              *time.Time // exclusive
}
