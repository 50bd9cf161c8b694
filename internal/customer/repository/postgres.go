package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fekuna/omnipos-backoffice/internal/apperror"
	"github.com/fekuna/omnipos-backoffice/internal/customer/dto"
	"github.com/fekuna/omnipos-backoffice/internal/db"
	"github.com/fekuna/omnipos-backoffice/internal/model"
	"github.com/fekuna/omnipos-backoffice/internal/numeric"
	"github.com/fekuna/omnipos-backoffice/internal/pagination"
)

type PGRepository struct {
	DB  *db.Client
	Now func() time.Time
}

func NewPGRepository(client *db.Client) *PGRepository {
	return &PGRepository{DB: client, Now: time.Now}
}

func buildWhere(f *dto.CustomerFilters) (string, map[string]interface{}) {
	conditions := []string{"etablissement_id = :etablissement_id"}
	args := map[string]interface{}{"etablissement_id": f.EstablishmentID}

	if f.Active != nil {
		conditions = append(conditions, "actif = :actif")
		args["actif"] = *f.Active
	}
	if f.Search != "" {
		conditions = append(conditions, "(nom ILIKE :search OR prenom ILIKE :search OR telephone ILIKE :search)")
		args["search"] = "%" + f.Search + "%"
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

const orderBy = " ORDER BY nom ASC, prenom ASC NULLS FIRST, id ASC"

func (r *PGRepository) List(ctx context.Context, f *dto.CustomerFilters) ([]model.Customer, error) {
	const op = "clients.list"
	if err := db.RequireTenant(op, f.EstablishmentID); err != nil {
		return nil, err
	}
	where, args := buildWhere(f)

	out := []model.Customer{}
	if err := r.DB.NamedSelect(ctx, op, &out, "SELECT * FROM clients"+where+orderBy, args); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PGRepository) ListPaginated(ctx context.Context, f *dto.CustomerFilters, p pagination.Params) (*pagination.Result[model.Customer], error) {
	const op = "clients.list_paginated"
	if err := db.RequireTenant(op, f.EstablishmentID); err != nil {
		return nil, err
	}
	where, args := buildWhere(f)
	return db.Paginate[model.Customer](ctx, r.DB, op,
		"SELECT count(*) FROM clients"+where,
		"SELECT * FROM clients"+where+orderBy,
		args, p)
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	args := map[string]interface{}{"id": id}
	query := `SELECT * FROM clients WHERE id = :id` + r.DB.TenantClause("etablissement_id", args)

	var c model.Customer
	found, err := r.DB.NamedGet(ctx, "clients.find", &c, query, args)
	if err != nil || !found {
		return nil, err
	}
	return &c, nil
}

// FindByPhone returns the most recent active customer with that phone number.
func (r *PGRepository) FindByPhone(ctx context.Context, establishmentID, phone string) (*model.Customer, error) {
	const op = "clients.find_by_phone"
	if err := db.RequireTenant(op, establishmentID); err != nil {
		return nil, err
	}
	var c model.Customer
	found, err := r.DB.Get(ctx, op, &c,
		`SELECT * FROM clients WHERE etablissement_id = $1 AND telephone = $2 AND actif = true
		ORDER BY created_at DESC LIMIT 1`,
		establishmentID, strings.TrimSpace(phone))
	if err != nil || !found {
		return nil, err
	}
	return &c, nil
}

func (r *PGRepository) Create(ctx context.Context, in *dto.CreateCustomerInput) (*model.Customer, error) {
	const op = "clients.create"
	if err := db.RequireTenant(op, in.EstablishmentID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.LastName) == "" {
		return nil, apperror.Validation(op, "le nom est requis")
	}

	now := r.Now()
	c := &model.Customer{
		BaseModel:       model.BaseModel{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		EstablishmentID: in.EstablishmentID,
		LastName:        strings.TrimSpace(in.LastName),
		FirstName:       in.FirstName,
		Phone:           in.Phone,
		Email:           in.Email,
		Address:         in.Address,
		Notes:           in.Notes,
		Active:          true,
	}
	if in.CreditLimit != nil {
		c.CreditLimit = *in.CreditLimit
	}
	query := `
		INSERT INTO clients (
			id, etablissement_id, nom, prenom, telephone, email, adresse,
			solde_prepaye, solde_credit, limite_credit, points_fidelite, notes, actif, created_at, updated_at
		)
		VALUES (
			:id, :etablissement_id, :nom, :prenom, :telephone, :email, :adresse,
			0, 0, :limite_credit, 0, :notes, :actif, :created_at, :updated_at
		)
		RETURNING *
	`
	var out model.Customer
	if _, err := r.DB.NamedGet(ctx, op, &out, query, c); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *PGRepository) Update(ctx context.Context, id string, in *dto.UpdateCustomerInput) (*model.Customer, error) {
	const op = "clients.update"
	if in.CreditLimit != nil && *in.CreditLimit < 0 {
		return nil, apperror.Validation(op, "la limite de crédit ne peut pas être négative")
	}
	b := db.Update("clients").
		Set("nom", in.LastName).
		Set("prenom", in.FirstName).
		Set("telephone", in.Phone).
		Set("email", in.Email).
		Set("adresse", in.Address).
		Set("limite_credit", in.CreditLimit).
		Set("notes", in.Notes).
		Set("actif", in.Active).
		WhereEq("id", id).
		Returning("*")
	if t := r.DB.Tenant(); t != "" {
		b.WhereEq("etablissement_id", t)
	}

	query, args := b.Build(r.Now())
	var out model.Customer
	found, err := r.DB.NamedGet(ctx, op, &out, query, args)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperror.NotFound(op, "client", id)
	}
	return &out, nil
}

func (r *PGRepository) SoftDelete(ctx context.Context, id string) error {
	return r.DB.SoftDelete(ctx, "clients", "client", id, r.Now())
}

func (r *PGRepository) AddPoints(ctx context.Context, id string, delta int) (*model.Customer, error) {
	return r.adjust(ctx, "clients.add_points", id,
		"points_fidelite", "points_fidelite + :delta >= 0",
		delta, "points de fidélité insuffisants")
}

func (r *PGRepository) AddPrepaidBalance(ctx context.Context, id string, delta float64) (*model.Customer, error) {
	return r.adjust(ctx, "clients.add_prepaid", id,
		"solde_prepaye", "solde_prepaye + :delta >= 0",
		numeric.Number(delta), "solde prépayé insuffisant")
}

// AddCreditBalance moves the amount owed. A positive limite_credit caps it.
func (r *PGRepository) AddCreditBalance(ctx context.Context, id string, delta float64) (*model.Customer, error) {
	return r.adjust(ctx, "clients.add_credit", id,
		"solde_credit", "solde_credit + :delta >= 0 AND (limite_credit <= 0 OR solde_credit + :delta <= limite_credit)",
		numeric.Number(delta), "limite de crédit dépassée")
}

// adjust increments col by delta in a single statement when guard holds. When
// no row is updated it tells a missing customer from a refused adjustment.
func (r *PGRepository) adjust(ctx context.Context, op, id, col, guard string, delta interface{}, refusal string) (*model.Customer, error) {
	args := map[string]interface{}{"id": id, "delta": delta, "now": r.Now()}
	query := "UPDATE clients SET " + col + " = " + col + " + :delta, updated_at = :now" +
		" WHERE id = :id AND " + guard + r.DB.TenantClause("etablissement_id", args) +
		" RETURNING *"

	var out model.Customer
	err := r.DB.InTx(ctx, op, func(q db.Querier) error {
		found, err := db.NamedGet(ctx, q, &out, query, args)
		if err != nil || found {
			return err
		}
		var exists bool
		if _, err := db.NamedGet(ctx, q, &exists,
			"SELECT EXISTS (SELECT 1 FROM clients WHERE id = :id"+r.DB.TenantClause("etablissement_id", args)+")", args); err != nil {
			return err
		}
		if !exists {
			return apperror.NotFound(op, "client", id)
		}
		return apperror.Validation(op, "%s", refusal)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
