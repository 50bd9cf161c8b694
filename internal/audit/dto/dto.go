package dto

import (
	"time"

	"github.com/fekuna/omnipos-backoffice/internal/model"
)

type AuditFilters struct {
	EstablishmentID string
	Action          model.AuditAction
	Entity          string
	EntityID        string
	UserID          string
	From            *time.Time
	To              *time.Time
}

// RecordInput describes one audited event. Before and After are serialized
// as JSON snapshots; either may be nil.
type RecordInput struct {
	EstablishmentID string
	UserID          *string
	Action          model.AuditAction
	Entity          string
	EntityID        *string
	Before          any
	After           any
	IPAddress       *string
}
