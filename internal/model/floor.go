package model

import "github.com/fekuna/omnipos-backoffice/internal/numeric"

type Zone struct {
	BaseModel
	EstablishmentID string  `db:"etablissement_id" json:"etablissement_id"`
	Name            string  `db:"nom" json:"nom"`
	Description     *string `db:"description" json:"description"`
	Color           *string `db:"couleur" json:"couleur"`
	SortOrder       int     `db:"ordre" json:"ordre"`
	Active          bool    `db:"actif" json:"actif"`
}

type TableShape string

const (
	ShapeRound     TableShape = "RONDE"
	ShapeSquare    TableShape = "CARREE"
	ShapeRectangle TableShape = "RECTANGULAIRE"
)

func (s TableShape) Valid() bool {
	switch s {
	case ShapeRound, ShapeSquare, ShapeRectangle:
		return true
	}
	return false
}

type TableStatus string

const (
	TableFree      TableStatus = "LIBRE"
	TableOccupied  TableStatus = "OCCUPEE"
	TablePreparing TableStatus = "EN_PREPARATION"
	TableBilling   TableStatus = "ADDITION"
	TableToClean   TableStatus = "A_NETTOYER"
)

func (s TableStatus) Valid() bool {
	switch s {
	case TableFree, TableOccupied, TablePreparing, TableBilling, TableToClean:
		return true
	}
	return false
}

type Table struct {
	BaseModel
	EstablishmentID string         `db:"etablissement_id" json:"etablissement_id"`
	ZoneID          *string        `db:"zone_id" json:"zone_id"`
	Number          string         `db:"numero" json:"numero"`
	Capacity        int            `db:"capacite" json:"capacite"`
	Shape           TableShape     `db:"forme" json:"forme"`
	Status          TableStatus    `db:"statut" json:"statut"`
	PositionX       numeric.Number `db:"position_x" json:"position_x"`
	PositionY       numeric.Number `db:"position_y" json:"position_y"`
	Width           numeric.Number `db:"largeur" json:"largeur"`
	Height          numeric.Number `db:"hauteur" json:"hauteur"`
	Active          bool           `db:"actif" json:"actif"`
}
