package dto

type CreateEstablishmentInput struct {
	Name            string   `json:"nom"`
	Address         *string  `json:"adresse"`
	Phone           *string  `json:"telephone"`
	Email           *string  `json:"email"`
	TaxID           *string  `json:"nif"`
	TradeRegister   *string  `json:"rccm"`
	LogoURL         *string  `json:"logo_url"`
	Currency        string   `json:"devise"`
	StandardVATRate *float64 `json:"taux_tva_standard"`
	ReducedVATRate  *float64 `json:"taux_tva_reduit"`
	TicketFooter    *string  `json:"message_ticket"`
}

// UpdateEstablishmentInput is a partial update; nil fields are left untouched.
type UpdateEstablishmentInput struct {
	Name            *string  `json:"nom"`
	Address         *string  `json:"adresse"`
	Phone           *string  `json:"telephone"`
	Email           *string  `json:"email"`
	TaxID           *string  `json:"nif"`
	TradeRegister   *string  `json:"rccm"`
	LogoURL         *string  `json:"logo_url"`
	Currency        *string  `json:"devise"`
	StandardVATRate *float64 `json:"taux_tva_standard"`
	ReducedVATRate  *float64 `json:"taux_tva_reduit"`
	TicketFooter    *string  `json:"message_ticket"`
	Active          *bool    `json:"actif"`
}
