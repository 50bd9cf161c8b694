package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fekuna/omnipos-backoffice/internal/apperror"
	"github.com/fekuna/omnipos-backoffice/internal/db"
	"github.com/fekuna/omnipos-backoffice/internal/floor/dto"
	"github.com/fekuna/omnipos-backoffice/internal/model"
)

type ZoneRepository struct {
	DB  *db.Client
	Now func() time.Time
}

func NewZoneRepository(client *db.Client) *ZoneRepository {
	return &ZoneRepository{DB: client, Now: time.Now}
}

func (r *ZoneRepository) List(ctx context.Context, f *dto.ZoneFilters) ([]model.Zone, error) {
	const op = "zones.list"
	if err := db.RequireTenant(op, f.EstablishmentID); err != nil {
		return nil, err
	}
	conditions := []string{"etablissement_id = :etablissement_id"}
	args := map[string]interface{}{"etablissement_id": f.EstablishmentID}
	if f.Active != nil {
		conditions = append(conditions, "actif = :actif")
		args["actif"] = *f.Active
	}

	out := []model.Zone{}
	query := "SELECT * FROM zones WHERE " + strings.Join(conditions, " AND ") + " ORDER BY ordre ASC, nom ASC, id ASC"
	if err := r.DB.NamedSelect(ctx, op, &out, query, args); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ZoneRepository) FindByID(ctx context.Context, id string) (*model.Zone, error) {
	args := map[string]interface{}{"id": id}
	query := `SELECT * FROM zones WHERE id = :id` + r.DB.TenantClause("etablissement_id", args)

	var z model.Zone
	found, err := r.DB.NamedGet(ctx, "zones.find", &z, query, args)
	if err != nil || !found {
		return nil, err
	}
	return &z, nil
}

func (r *ZoneRepository) Create(ctx context.Context, in *dto.CreateZoneInput) (*model.Zone, error) {
	const op = "zones.create"
	if err := db.RequireTenant(op, in.EstablishmentID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperror.Validation(op, "le nom est requis")
	}
	now := r.Now()
	z := &model.Zone{
		BaseModel:       model.BaseModel{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		EstablishmentID: in.EstablishmentID,
		Name:            strings.TrimSpace(in.Name),
		Description:     in.Description,
		Color:           in.Color,
		SortOrder:       in.SortOrder,
		Active:          true,
	}
	query := `
		INSERT INTO zones (id, etablissement_id, nom, description, couleur, ordre, actif, created_at, updated_at)
		VALUES (:id, :etablissement_id, :nom, :description, :couleur, :ordre, :actif, :created_at, :updated_at)
		RETURNING *
	`
	var out model.Zone
	if _, err := r.DB.NamedGet(ctx, op, &out, query, z); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ZoneRepository) Update(ctx context.Context, id string, in *dto.UpdateZoneInput) (*model.Zone, error) {
	const op = "zones.update"
	b := db.Update("zones").
		Set("nom", in.Name).
		Set("description", in.Description).
		Set("couleur", in.Color).
		Set("ordre", in.SortOrder).
		Set("actif", in.Active).
		WhereEq("id", id).
		Returning("*")
	if t := r.DB.Tenant(); t != "" {
		b.WhereEq("etablissement_id", t)
	}

	query, args := b.Build(r.Now())
	var out model.Zone
	found, err := r.DB.NamedGet(ctx, op, &out, query, args)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperror.NotFound(op, "zone", id)
	}
	return &out, nil
}

// Delete removes the zone; its tables stay, detached.
func (r *ZoneRepository) Delete(ctx context.Context, id string) error {
	return r.DB.Delete(ctx, "zones", "zone", id)
}
