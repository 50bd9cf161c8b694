package dto

type CreateCategoryInput struct {
	EstablishmentID string  `json:"etablissement_id"`
	Name            string  `json:"nom"`
	Description     *string `json:"description"`
	Color           *string `json:"couleur"`
	Icon            *string `json:"icone"`
	SortOrder       int     `json:"ordre"`
	PrinterID       *string `json:"imprimante_id"`
}

type UpdateCategoryInput struct {
	Name        *string `json:"nom"`
	Description *string `json:"description"`
	Color       *string `json:"couleur"`
	Icon        *string `json:"icone"`
	SortOrder   *int    `json:"ordre"`
	PrinterID   *string `json:"imprimante_id"` // "" unlinks the printer
	Active      *bool   `json:"actif"`
}
