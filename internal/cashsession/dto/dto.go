package dto

import (
	"time"

	"github.com/fekuna/omnipos-backoffice/internal/model"
)

type CashSessionFilters struct {
	EstablishmentID string
	Status          model.CashSessionStatus
	EmployeeID      string
	From            *time.Time // on ouverte_le, inclusive
	To              *time.Time // exclusive
}
