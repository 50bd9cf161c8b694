package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fekuna/omnipos-backoffice/internal/apperror"
	"github.com/fekuna/omnipos-backoffice/internal/db"
	"github.com/fekuna/omnipos-backoffice/internal/model"
	"github.com/fekuna/omnipos-backoffice/internal/printer/dto"
)

const defaultPaperWidth = 80

type PGRepository struct {
	DB  *db.Client
	Now func() time.Time
}

func NewPGRepository(client *db.Client) *PGRepository {
	return &PGRepository{DB: client, Now: time.Now}
}

func (r *PGRepository) List(ctx context.Context, establishmentID string) ([]model.Printer, error) {
	const op = "imprimantes.list"
	if err := db.RequireTenant(op, establishmentID); err != nil {
		return nil, err
	}
	out := []model.Printer{}
	err := r.DB.Select(ctx, op, &out,
		`SELECT * FROM imprimantes WHERE etablissement_id = $1 ORDER BY nom ASC, id ASC`, establishmentID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Printer, error) {
	args := map[string]interface{}{"id": id}
	query := `SELECT * FROM imprimantes WHERE id = :id` + r.DB.TenantClause("etablissement_id", args)

	var p model.Printer
	found, err := r.DB.NamedGet(ctx, "imprimantes.find", &p, query, args)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

func (r *PGRepository) Create(ctx context.Context, in *dto.CreatePrinterInput) (*model.Printer, error) {
	const op = "imprimantes.create"
	if err := db.RequireTenant(op, in.EstablishmentID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperror.Validation(op, "le nom est requis")
	}
	if !in.Type.Valid() {
		return nil, apperror.Validation(op, "type d'imprimante inconnu: %s", in.Type)
	}

	now := r.Now()
	p := &model.Printer{
		BaseModel:       model.BaseModel{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		EstablishmentID: in.EstablishmentID,
		Name:            strings.TrimSpace(in.Name),
		Type:            in.Type,
		Connection:      in.Connection,
		Address:         in.Address,
		PaperWidth:      in.PaperWidth,
		Active:          true,
	}
	if p.Connection == "" {
		p.Connection = "reseau"
	}
	if p.PaperWidth <= 0 {
		p.PaperWidth = defaultPaperWidth
	}
	query := `
		INSERT INTO imprimantes (id, etablissement_id, nom, type, connexion, adresse, largeur_papier, actif, created_at, updated_at)
		VALUES (:id, :etablissement_id, :nom, :type, :connexion, :adresse, :largeur_papier, :actif, :created_at, :updated_at)
		RETURNING *
	`
	var out model.Printer
	if _, err := r.DB.NamedGet(ctx, op, &out, query, p); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *PGRepository) Update(ctx context.Context, id string, in *dto.UpdatePrinterInput) (*model.Printer, error) {
	const op = "imprimantes.update"
	if in.Type != nil && !in.Type.Valid() {
		return nil, apperror.Validation(op, "type d'imprimante inconnu: %s", *in.Type)
	}
	b := db.Update("imprimantes").
		Set("nom", in.Name).
		Set("connexion", in.Connection).
		Set("adresse", in.Address).
		Set("largeur_papier", in.PaperWidth).
		Set("actif", in.Active).
		WhereEq("id", id).
		Returning("*")
	if in.Type != nil {
		b.Set("type", string(*in.Type))
	}
	if t := r.DB.Tenant(); t != "" {
		b.WhereEq("etablissement_id", t)
	}

	query, args := b.Build(r.Now())
	var out model.Printer
	found, err := r.DB.NamedGet(ctx, op, &out, query, args)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperror.NotFound(op, "imprimante", id)
	}
	return &out, nil
}

// Delete removes the printer; categories routed to it fall back to none.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	return r.DB.Delete(ctx, "imprimantes", "imprimante", id)
}
