package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fekuna/omnipos-backoffice/internal/apperror"
	"github.com/fekuna/omnipos-backoffice/internal/category/dto"
	"github.com/fekuna/omnipos-backoffice/internal/db"
	"github.com/fekuna/omnipos-backoffice/internal/model"
	"github.com/fekuna/omnipos-backoffice/internal/pagination"
)

type PGRepository struct {
	DB  *db.Client
	Now func() time.Time
}

func NewPGRepository(client *db.Client) *PGRepository {
	return &PGRepository{DB: client, Now: time.Now}
}

func buildWhere(f *dto.CategoryFilters) (string, map[string]interface{}) {
	conditions := []string{"etablissement_id = :etablissement_id"}
	args := map[string]interface{}{"etablissement_id": f.EstablishmentID}

	if f.Active != nil {
		conditions = append(conditions, "actif = :actif")
		args["actif"] = *f.Active
	}
	if f.Search != "" {
		conditions = append(conditions, "(nom ILIKE :search OR description ILIKE :search)")
		args["search"] = "%" + f.Search + "%"
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

const orderBy = " ORDER BY ordre ASC, nom ASC, id ASC"

func (r *PGRepository) List(ctx context.Context, f *dto.CategoryFilters) ([]model.Category, error) {
	const op = "categories.list"
	if err := db.RequireTenant(op, f.EstablishmentID); err != nil {
		return nil, err
	}
	where, args := buildWhere(f)

	out := []model.Category{}
	if err := r.DB.NamedSelect(ctx, op, &out, "SELECT * FROM categories"+where+orderBy, args); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PGRepository) ListPaginated(ctx context.Context, f *dto.CategoryFilters, p pagination.Params) (*pagination.Result[model.Category], error) {
	const op = "categories.list_paginated"
	if err := db.RequireTenant(op, f.EstablishmentID); err != nil {
		return nil, err
	}
	where, args := buildWhere(f)
	return db.Paginate[model.Category](ctx, r.DB, op,
		"SELECT count(*) FROM categories"+where,
		"SELECT * FROM categories"+where+orderBy,
		args, p)
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	args := map[string]interface{}{"id": id}
	query := `SELECT * FROM categories WHERE id = :id` + r.DB.TenantClause("etablissement_id", args)

	var c model.Category
	found, err := r.DB.NamedGet(ctx, "categories.find", &c, query, args)
	if err != nil || !found {
		return nil, err
	}
	return &c, nil
}

func (r *PGRepository) Create(ctx context.Context, in *dto.CreateCategoryInput) (*model.Category, error) {
	const op = "categories.create"
	if err := db.RequireTenant(op, in.EstablishmentID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperror.Validation(op, "le nom est requis")
	}

	now := r.Now()
	c := &model.Category{
		BaseModel:       model.BaseModel{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		EstablishmentID: in.EstablishmentID,
		Name:            strings.TrimSpace(in.Name),
		Description:     in.Description,
		Color:           in.Color,
		Icon:            in.Icon,
		SortOrder:       in.SortOrder,
		PrinterID:       in.PrinterID,
		Active:          true,
	}
	query := `
		INSERT INTO categories (id, etablissement_id, nom, description, couleur, icone, ordre, imprimante_id, actif, created_at, updated_at)
		VALUES (:id, :etablissement_id, :nom, :description, :couleur, :icone, :ordre, :imprimante_id, :actif, :created_at, :updated_at)
		RETURNING *
	`
	var out model.Category
	if _, err := r.DB.NamedGet(ctx, op, &out, query, c); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *PGRepository) Update(ctx context.Context, id string, in *dto.UpdateCategoryInput) (*model.Category, error) {
	const op = "categories.update"
	b := db.Update("categories").
		Set("nom", in.Name).
		Set("description", in.Description).
		Set("couleur", in.Color).
		Set("icone", in.Icon).
		Set("ordre", in.SortOrder).
		Set("actif", in.Active).
		WhereEq("id", id).
		Returning("*")
	if in.PrinterID != nil {
		if *in.PrinterID == "" {
			b.SetNull("imprimante_id")
		} else {
			b.Set("imprimante_id", *in.PrinterID)
		}
	}
	if t := r.DB.Tenant(); t != "" {
		b.WhereEq("etablissement_id", t)
	}

	query, args := b.Build(r.Now())
	var out model.Category
	found, err := r.DB.NamedGet(ctx, op, &out, query, args)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperror.NotFound(op, "catégorie", id)
	}
	return &out, nil
}

func (r *PGRepository) SoftDelete(ctx context.Context, id string) error {
	return r.DB.SoftDelete(ctx, "categories", "catégorie", id, r.Now())
}

// Delete removes the category. Products keep existing with no category.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	return r.DB.Delete(ctx, "categories", "catégorie", id)
}
