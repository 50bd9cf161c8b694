package dto

import (
	"time"

	"github.com/fekuna/omnipos-backoffice/internal/model"
)

type SaleFilters struct {
	EstablishmentID string
	Status          model.SaleStatus
	Type            model.SaleType
	ClientID        string
	CashierID       string
	SessionID       string
	TableID         string
	From            *time.Time // inclusive
	To              *time.Time // exclusive
}
