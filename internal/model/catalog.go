package model

import "github.com/fekuna/omnipos-backoffice/internal/numeric"

type Category struct {
	BaseModel
	EstablishmentID string  `db:"etablissement_id" json:"etablissement_id"`
	Name            string  `db:"nom" json:"nom"`
	Description     *string `db:"description" json:"description"`
	Color           *string `db:"couleur" json:"couleur"`
	Icon            *string `db:"icone" json:"icone"`
	SortOrder       int     `db:"ordre" json:"ordre"`
	PrinterID       *string `db:"imprimante_id" json:"imprimante_id"`
	Active          bool    `db:"actif" json:"actif"`
}

type Channel string

const (
	ChannelDirect   Channel = "DIRECT"
	ChannelTable    Channel = "TABLE"
	ChannelDelivery Channel = "LIVRAISON"
	ChannelTakeout  Channel = "EMPORTER"
)

type Product struct {
	BaseModel
	EstablishmentID   string          `db:"etablissement_id" json:"etablissement_id"`
	CategoryID        *string         `db:"categorie_id" json:"categorie_id"`
	Name              string          `db:"nom" json:"nom"`
	Description       *string         `db:"description" json:"description"`
	Barcode           *string         `db:"code_barre" json:"code_barre"`
	ImageURL          *string         `db:"image_url" json:"image_url"`
	SellPrice         numeric.Number  `db:"prix_vente" json:"prix_vente"`
	PurchasePrice     numeric.Number  `db:"prix_achat" json:"prix_achat"`
	VATRate           numeric.Number  `db:"taux_tva" json:"taux_tva"`
	TrackStock        bool            `db:"gerer_stock" json:"gerer_stock"`
	StockCurrent      numeric.Number  `db:"stock_actuel" json:"stock_actuel"`
	StockMin          numeric.Number  `db:"stock_min" json:"stock_min"`
	StockMax          *numeric.Number `db:"stock_max" json:"stock_max"`
	Unit              string          `db:"unite" json:"unite"`
	AvailableDirect   bool            `db:"disponible_direct" json:"disponible_direct"`
	AvailableTable    bool            `db:"disponible_table" json:"disponible_table"`
	AvailableDelivery bool            `db:"disponible_livraison" json:"disponible_livraison"`
	AvailableTakeout  bool            `db:"disponible_emporter" json:"disponible_emporter"`
	Active            bool            `db:"actif" json:"actif"`
	Supplements       []Supplement    `db:"-" json:"supplements,omitempty"`
}

// AvailableOn reports whether the product can be sold on channel.
func (p *Product) AvailableOn(c Channel) bool {
	switch c {
	case ChannelDirect:
		return p.AvailableDirect
	case ChannelTable:
		return p.AvailableTable
	case ChannelDelivery:
		return p.AvailableDelivery
	case ChannelTakeout:
		return p.AvailableTakeout
	}
	return false
}

func (p *Product) IsLowStock() bool {
	return p.TrackStock && p.StockCurrent <= p.StockMin
}

type Supplement struct {
	ID        string         `db:"id" json:"id"`
	ProductID string         `db:"produit_id" json:"produit_id"`
	Name      string         `db:"nom" json:"nom"`
	Price     numeric.Number `db:"prix" json:"prix"`
	Active    bool           `db:"actif" json:"actif"`
}

type PrinterType string

const (
	PrinterTicket  PrinterType = "TICKET"
	PrinterKitchen PrinterType = "CUISINE"
	PrinterBar     PrinterType = "BAR"
)

func (t PrinterType) Valid() bool {
	switch t {
	case PrinterTicket, PrinterKitchen, PrinterBar:
		return true
	}
	return false
}

type Printer struct {
	BaseModel
	EstablishmentID string      `db:"etablissement_id" json:"etablissement_id"`
	Name            string      `db:"nom" json:"nom"`
	Type            PrinterType `db:"type" json:"type"`
	Connection      string      `db:"connexion" json:"connexion"`
	Address         *string     `db:"adresse" json:"adresse"`
	PaperWidth      int         `db:"largeur_papier" json:"largeur_papier"`
	Active          bool        `db:"actif" json:"actif"`
}
