package model

import (
	"time"

	"github.com/fekuna/omnipos-backoffice/internal/numeric"
)

// Establishment is the tenant. Every other row hangs off one.
type Establishment struct {
	BaseModel
	Name             string         `db:"nom" json:"nom"`
	Address          *string        `db:"adresse" json:"adresse"`
	Phone            *string        `db:"telephone" json:"telephone"`
	Email            *string        `db:"email" json:"email"`
	TaxID            *string        `db:"nif" json:"nif"`
	TradeRegister    *string        `db:"rccm" json:"rccm"`
	LogoURL          *string        `db:"logo_url" json:"logo_url"`
	Currency         string         `db:"devise" json:"devise"`
	StandardVATRate  numeric.Number `db:"taux_tva_standard" json:"taux_tva_standard"`
	ReducedVATRate   numeric.Number `db:"taux_tva_reduit" json:"taux_tva_reduit"`
	TicketFooter     *string        `db:"message_ticket" json:"message_ticket"`
	LastTicketNumber int            `db:"dernier_numero_ticket" json:"dernier_numero_ticket"`
	LastTicketDate   *time.Time     `db:"date_dernier_ticket" json:"date_dernier_ticket"`
	Active           bool           `db:"actif" json:"actif"`
}
