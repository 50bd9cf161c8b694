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

type TableRepository struct {
	DB  *db.Client
	Now func() time.Time
}

func NewTableRepository(client *db.Client) *TableRepository {
	return &TableRepository{DB: client, Now: time.Now}
}

func (r *TableRepository) List(ctx context.Context, f *dto.TableFilters) ([]model.Table, error) {
	const op = "tables.list"
	if err := db.RequireTenant(op, f.EstablishmentID); err != nil {
		return nil, err
	}
	conditions := []string{"etablissement_id = :etablissement_id"}
	args := map[string]interface{}{"etablissement_id": f.EstablishmentID}

	if f.ZoneID != "" {
		conditions = append(conditions, "zone_id = :zone_id")
		args["zone_id"] = f.ZoneID
	}
	if f.Status != "" {
		conditions = append(conditions, "statut = :statut")
		args["statut"] = string(f.Status)
	}
	if f.Active != nil {
		conditions = append(conditions, "actif = :actif")
		args["actif"] = *f.Active
	}

	out := []model.Table{}
	// length first so that "T2" sorts before "T10".
	query := "SELECT * FROM tables WHERE " + strings.Join(conditions, " AND ") +
		" ORDER BY length(numero) ASC, numero ASC, id ASC"
	if err := r.DB.NamedSelect(ctx, op, &out, query, args); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *TableRepository) FindByID(ctx context.Context, id string) (*model.Table, error) {
	args := map[string]interface{}{"id": id}
	query := `SELECT * FROM tables WHERE id = :id` + r.DB.TenantClause("etablissement_id", args)

	var t model.Table
	found, err := r.DB.NamedGet(ctx, "tables.find", &t, query, args)
	if err != nil || !found {
		return nil, err
	}
	return &t, nil
}

// Create adds a table. The number is unique within the establishment.
func (r *TableRepository) Create(ctx context.Context, in *dto.CreateTableInput) (*model.Table, error) {
	const op = "tables.create"
	if err := db.RequireTenant(op, in.EstablishmentID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Number) == "" {
		return nil, apperror.Validation(op, "le numéro est requis")
	}
	shape := in.Shape
	if shape == "" {
		shape = model.ShapeSquare
	}
	if !shape.Valid() {
		return nil, apperror.Validation(op, "forme inconnue: %s", shape)
	}
	capacity := in.Capacity
	if capacity <= 0 {
		capacity = 4
	}

	now := r.Now()
	t := &model.Table{
		BaseModel:       model.BaseModel{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		EstablishmentID: in.EstablishmentID,
		ZoneID:          in.ZoneID,
		Number:          strings.TrimSpace(in.Number),
		Capacity:        capacity,
		Shape:           shape,
		Status:          model.TableFree,
		PositionX:       in.Position.X,
		PositionY:       in.Position.Y,
		Width:           in.Position.Width,
		Height:          in.Position.Height,
		Active:          true,
	}
	if t.Width <= 0 {
		t.Width = 80
	}
	if t.Height <= 0 {
		t.Height = 80
	}
	query := `
		INSERT INTO tables (
			id, etablissement_id, zone_id, numero, capacite, forme, statut,
			position_x, position_y, largeur, hauteur, actif, created_at, updated_at
		)
		VALUES (
			:id, :etablissement_id, :zone_id, :numero, :capacite, :forme, :statut,
			:position_x, :position_y, :largeur, :hauteur, :actif, :created_at, :updated_at
		)
		RETURNING *
	`
	var out model.Table
	if _, err := r.DB.NamedGet(ctx, op, &out, query, t); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *TableRepository) Update(ctx context.Context, id string, in *dto.UpdateTableInput) (*model.Table, error) {
	const op = "tables.update"
	if in.Shape != nil && !in.Shape.Valid() {
		return nil, apperror.Validation(op, "forme inconnue: %s", *in.Shape)
	}
	b := db.Update("tables").
		Set("numero", in.Number).
		Set("capacite", in.Capacity).
		Set("actif", in.Active)
	if in.Shape != nil {
		b.Set("forme", string(*in.Shape))
	}
	if in.ZoneID != nil {
		if *in.ZoneID == "" {
			b.SetNull("zone_id")
		} else {
			b.Set("zone_id", *in.ZoneID)
		}
	}
	return r.update(ctx, op, id, b)
}

func (r *TableRepository) UpdateStatus(ctx context.Context, id string, status model.TableStatus) (*model.Table, error) {
	const op = "tables.update_status"
	if !status.Valid() {
		return nil, apperror.Validation(op, "statut inconnu: %s", status)
	}
	return r.update(ctx, op, id, db.Update("tables").Set("statut", string(status)))
}

func (r *TableRepository) UpdatePosition(ctx context.Context, id string, pos dto.Position) (*model.Table, error) {
	const op = "tables.update_position"
	b := db.Update("tables").
		Set("position_x", pos.X).
		Set("position_y", pos.Y)
	if pos.Width > 0 {
		b.Set("largeur", pos.Width)
	}
	if pos.Height > 0 {
		b.Set("hauteur", pos.Height)
	}
	return r.update(ctx, op, id, b)
}

func (r *TableRepository) update(ctx context.Context, op, id string, b *db.UpdateBuilder) (*model.Table, error) {
	b.WhereEq("id", id).Returning("*")
	if t := r.DB.Tenant(); t != "" {
		b.WhereEq("etablissement_id", t)
	}

	query, args := b.Build(r.Now())
	var out model.Table
	found, err := r.DB.NamedGet(ctx, op, &out, query, args)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperror.NotFound(op, "table", id)
	}
	return &out, nil
}

func (r *TableRepository) Delete(ctx context.Context, id string) error {
	return r.DB.Delete(ctx, "tables", "table", id)
}
