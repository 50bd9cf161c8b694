package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fekuna/omnipos-backoffice/internal/apperror"
	"github.com/fekuna/omnipos-backoffice/internal/audit/dto"
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

func buildWhere(f *dto.AuditFilters) (string, map[string]interface{}) {
	conditions := []string{"etablissement_id = :etablissement_id"}
	args := map[string]interface{}{"etablissement_id": f.EstablishmentID}

	if f.Action != "" {
		conditions = append(conditions, "action = :action")
		args["action"] = string(f.Action)
	}
	if f.Entity != "" {
		conditions = append(conditions, "entite = :entite")
		args["entite"] = f.Entity
	}
	if f.EntityID != "" {
		conditions = append(conditions, "entite_id = :entite_id")
		args["entite_id"] = f.EntityID
	}
	if f.UserID != "" {
		conditions = append(conditions, "utilisateur_id = :utilisateur_id")
		args["utilisateur_id"] = f.UserID
	}
	if f.From != nil {
		conditions = append(conditions, "created_at >= :from")
		args["from"] = *f.From
	}
	if f.To != nil {
		conditions = append(conditions, "created_at < :to")
		args["to"] = *f.To
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

const orderBy = " ORDER BY created_at DESC, id ASC"

func (r *PGRepository) List(ctx context.Context, f *dto.AuditFilters) ([]model.AuditLog, error) {
	const op = "audit_logs.list"
	if err := db.RequireTenant(op, f.EstablishmentID); err != nil {
		return nil, err
	}
	where, args := buildWhere(f)

	out := []model.AuditLog{}
	if err := r.DB.NamedSelect(ctx, op, &out, "SELECT * FROM audit_logs"+where+orderBy, args); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PGRepository) ListPaginated(ctx context.Context, f *dto.AuditFilters, p pagination.Params) (*pagination.Result[model.AuditLog], error) {
	const op = "audit_logs.list_paginated"
	if err := db.RequireTenant(op, f.EstablishmentID); err != nil {
		return nil, err
	}
	where, args := buildWhere(f)
	return db.Paginate[model.AuditLog](ctx, r.DB, op,
		"SELECT count(*) FROM audit_logs"+where,
		"SELECT * FROM audit_logs"+where+orderBy,
		args, p)
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.AuditLog, error) {
	args := map[string]interface{}{"id": id}
	query := `SELECT * FROM audit_logs WHERE id = :id` + r.DB.TenantClause("etablissement_id", args)

	var l model.AuditLog
	found, err := r.DB.NamedGet(ctx, "audit_logs.find", &l, query, args)
	if err != nil || !found {
		return nil, err
	}
	return &l, nil
}

func (r *PGRepository) Record(ctx context.Context, in *dto.RecordInput) (*model.AuditLog, error) {
	const op = "audit_logs.record"
	if err := db.RequireTenant(op, in.EstablishmentID); err != nil {
		return nil, err
	}
	if !in.Action.Valid() {
		return nil, apperror.Validation(op, "action inconnue: %s", in.Action)
	}
	if strings.TrimSpace(in.Entity) == "" {
		return nil, apperror.Validation(op, "l'entité est requise")
	}

	l, err := NewEntry(in, r.Now())
	if err != nil {
		return nil, apperror.Validation(op, "instantané illisible: %v", err)
	}
	if _, err := r.DB.NamedExec(ctx, op, insertEntry, l); err != nil {
		return nil, err
	}
	return l, nil
}

// RecordTx appends the entry within an existing transaction so it commits
// with the change it describes.
func RecordTx(ctx context.Context, q db.Querier, in *dto.RecordInput, now time.Time) error {
	l, err := NewEntry(in, now)
	if err != nil {
		return err
	}
	_, err = db.NamedExec(ctx, q, insertEntry, l)
	return err
}

// NewEntry serializes the snapshots of in into an audit row.
func NewEntry(in *dto.RecordInput, now time.Time) (*model.AuditLog, error) {
	before, err := model.ToJSON(in.Before)
	if err != nil {
		return nil, err
	}
	after, err := model.ToJSON(in.After)
	if err != nil {
		return nil, err
	}
	return &model.AuditLog{
		ID:              uuid.NewString(),
		EstablishmentID: in.EstablishmentID,
		UserID:          in.UserID,
		Action:          in.Action,
		Entity:          in.Entity,
		EntityID:        in.EntityID,
		Before:          before,
		After:           after,
		IPAddress:       in.IPAddress,
		CreatedAt:       now,
	}, nil
}

const insertEntry = `
	INSERT INTO audit_logs (
		id, etablissement_id, utilisateur_id, action, entite, entite_id,
		anciennes_valeurs, nouvelles_valeurs, adresse_ip, created_at
	)
	VALUES (
		:id, :etablissement_id, :utilisateur_id, :action, :entite, :entite_id,
		:anciennes_valeurs, :nouvelles_valeurs, :adresse_ip, :created_at
	)
`
