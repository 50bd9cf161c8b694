package dto

import "github.com/fekuna/omnipos-backoffice/internal/model"

type CreatePrinterInput struct {
	EstablishmentID string            `json:"etablissement_id"`
	Name            string            `json:"nom"`
	Type            model.PrinterType `json:"type"`
	Connection      string            `json:"connexion"` // usb, reseau, bluetooth
	Address         *string           `json:"adresse"`
	PaperWidth      int               `json:"largeur_papier"`
}

type UpdatePrinterInput struct {
	Name       *string            `json:"nom"`
	Type       *model.PrinterType `json:"type"`
	Connection *string            `json:"connexion"`
	Address    *string            `json:"adresse"`
	PaperWidth *int               `json:"largeur_papier"`
	Active     *bool              `json:"actif"`
}
