// Package event holds the messages exchanged over the broker.
package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/fekuna/omnipos-backoffice/internal/model"
)

const (
	TypeSalePaid      = "VentePayee"
	TypeSaleCancelled = "VenteAnnulee"
)

// SaleEvent announces a change of sale status. Events of one establishment
// share a partition key and arrive in order.
type SaleEvent struct {
	EventID   string      `json:"event_id"`
	EventType string      `json:"event_type"`
	Payload   SalePayload `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

type SalePayload struct {
	SaleID          string         `json:"vente_id"`
	EstablishmentID string         `json:"etablissement_id"`
	TicketNumber    string         `json:"numero_ticket"`
	CashierID       string         `json:"utilisateur_id"`
	Lines           []SaleLineItem `json:"lignes"`
}

type SaleLineItem struct {
	ProductID string  `json:"produit_id"`
	Quantity  float64 `json:"quantite"`
}

// NewSalePaid builds the event for a sale that just became PAYEE. It carries
// one item per line, in line order.
func NewSalePaid(s *model.Sale, now time.Time) SaleEvent {
	return newSaleEvent(TypeSalePaid, s, now)
}

// NewSaleCancelled builds the event for a paid sale that was cancelled.
func NewSaleCancelled(s *model.Sale, now time.Time) SaleEvent {
	return newSaleEvent(TypeSaleCancelled, s, now)
}

func newSaleEvent(eventType string, s *model.Sale, now time.Time) SaleEvent {
	lines := make([]SaleLineItem, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, SaleLineItem{ProductID: l.ProductID, Quantity: l.Quantity.Float64()})
	}
	return SaleEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Payload: SalePayload{
			SaleID:          s.ID,
			EstablishmentID: s.EstablishmentID,
			TicketNumber:    s.TicketNumber,
			CashierID:       s.CashierID,
			Lines:           lines,
		},
		Timestamp: now,
	}
}
