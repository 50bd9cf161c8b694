package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fekuna/omnipos-backoffice/internal/apperror"
	auditdto "github.com/fekuna/omnipos-backoffice/internal/audit/dto"
	auditrepo "github.com/fekuna/omnipos-backoffice/internal/audit/repository"
	"github.com/fekuna/omnipos-backoffice/internal/cashsession/dto"
	"github.com/fekuna/omnipos-backoffice/internal/db"
	"github.com/fekuna/omnipos-backoffice/internal/model"
	"github.com/fekuna/omnipos-backoffice/internal/numeric"
	"github.com/fekuna/omnipos-backoffice/internal/pagination"
)

const entity = "session_caisse"

type PGRepository struct {
	DB  *db.Client
	Now func() time.Time
}

func NewPGRepository(client *db.Client) *PGRepository {
	return &PGRepository{DB: client, Now: time.Now}
}

func buildWhere(f *dto.CashSessionFilters) (string, map[string]interface{}) {
	conditions := []string{"etablissement_id = :etablissement_id"}
	args := map[string]interface{}{"etablissement_id": f.EstablishmentID}

	if f.Status != "" {
		conditions = append(conditions, "statut = :statut")
		args["statut"] = string(f.Status)
	}
	if f.EmployeeID != "" {
		conditions = append(conditions, "utilisateur_id = :utilisateur_id")
		args["utilisateur_id"] = f.EmployeeID
	}
	if f.From != nil {
		conditions = append(conditions, "ouverte_le >= :from")
		args["from"] = *f.From
	}
	if f.To != nil {
		conditions = append(conditions, "ouverte_le < :to")
		args["to"] = *f.To
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

const orderBy = " ORDER BY ouverte_le DESC, id ASC"

func (r *PGRepository) List(ctx context.Context, f *dto.CashSessionFilters) ([]model.CashSession, error) {
	const op = "sessions_caisse.list"
	if err := db.RequireTenant(op, f.EstablishmentID); err != nil {
		return nil, err
	}
	where, args := buildWhere(f)

	out := []model.CashSession{}
	if err := r.DB.NamedSelect(ctx, op, &out, "SELECT * FROM sessions_caisse"+where+orderBy, args); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PGRepository) ListPaginated(ctx context.Context, f *dto.CashSessionFilters, p pagination.Params) (*pagination.Result[model.CashSession], error) {
	const op = "sessions_caisse.list_paginated"
	if err := db.RequireTenant(op, f.EstablishmentID); err != nil {
		return nil, err
	}
	where, args := buildWhere(f)
	return db.Paginate[model.CashSession](ctx, r.DB, op,
		"SELECT count(*) FROM sessions_caisse"+where,
		"SELECT * FROM sessions_caisse"+where+orderBy,
		args, p)
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.CashSession, error) {
	args := map[string]interface{}{"id": id}
	query := `SELECT * FROM sessions_caisse WHERE id = :id` + r.DB.TenantClause("etablissement_id", args)

	var s model.CashSession
	found, err := r.DB.NamedGet(ctx, "sessions_caisse.find", &s, query, args)
	if err != nil || !found {
		return nil, err
	}
	return &s, nil
}

// FindOpen returns the employee's open session, or nil.
func (r *PGRepository) FindOpen(ctx context.Context, establishmentID, employeeID string) (*model.CashSession, error) {
	const op = "sessions_caisse.find_open"
	if err := db.RequireTenant(op, establishmentID); err != nil {
		return nil, err
	}
	var s *model.CashSession
	err := r.DB.InTx(ctx, op, func(q db.Querier) (err error) {
		s, err = findOpen(ctx, q, establishmentID, employeeID)
		return err
	})
	return s, err
}

func findOpen(ctx context.Context, q db.Querier, establishmentID, employeeID string) (*model.CashSession, error) {
	var s model.CashSession
	found, err := db.Get(ctx, q, &s,
		`SELECT * FROM sessions_caisse WHERE etablissement_id = $1 AND utilisateur_id = $2 AND statut = $3`,
		establishmentID, employeeID, model.CashSessionOpen)
	if err != nil || !found {
		return nil, err
	}
	return &s, nil
}

// Open starts a session for the employee. An employee holds at most one open
// session; a second one is a Conflict.
func (r *PGRepository) Open(ctx context.Context, in *dto.OpenCashSessionInput) (*model.CashSession, error) {
	const op = "sessions_caisse.open"
	if err := db.RequireTenant(op, in.EstablishmentID); err != nil {
		return nil, err
	}
	if in.EmployeeID == "" {
		return nil, apperror.Validation(op, "utilisateur_id est requis")
	}
	if in.OpeningFloat < 0 {
		return nil, apperror.Validation(op, "le fond de caisse ne peut pas être négatif")
	}

	now := r.Now()
	s := &model.CashSession{
		BaseModel:       model.BaseModel{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		EstablishmentID: in.EstablishmentID,
		EmployeeID:      in.EmployeeID,
		Status:          model.CashSessionOpen,
		OpeningFloat:    numeric.Number(numeric.Round2(in.OpeningFloat.Float64())),
		OpeningNotes:    in.Notes,
		OpenedAt:        now,
	}

	err := r.DB.InTx(ctx, op, func(q db.Querier) error {
		current, err := findOpen(ctx, q, in.EstablishmentID, in.EmployeeID)
		if err != nil {
			return err
		}
		if current != nil {
			return apperror.Conflict(op, "une session de caisse est déjà ouverte pour cet utilisateur")
		}
		if _, err := db.NamedExec(ctx, q, `
			INSERT INTO sessions_caisse (
				id, etablissement_id, utilisateur_id, statut, fond_caisse,
				total_especes, total_cartes, total_mobile_money, total_autres, total_ventes, nombre_ventes,
				especes_comptees, ecart, notes_ouverture, notes_cloture, ouverte_le, fermee_le, created_at, updated_at
			)
			VALUES (
				:id, :etablissement_id, :utilisateur_id, :statut, :fond_caisse,
				0, 0, 0, 0, 0, 0,
				NULL, NULL, :notes_ouverture, NULL, :ouverte_le, NULL, :created_at, :updated_at
			)`, s); err != nil {
			return err
		}
		return r.audit(ctx, q, model.AuditCashOpen, s, nil, s, now)
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ComputeTotals refreshes the session totals from the payments of its paid
// sales.
func (r *PGRepository) ComputeTotals(ctx context.Context, id string) (*model.CashSession, error) {
	const op = "sessions_caisse.compute_totals"
	now := r.Now()

	var out *model.CashSession
	err := r.DB.InTx(ctx, op, func(q db.Querier) error {
		s, err := r.lock(ctx, q, op, id)
		if err != nil {
			return err
		}
		if err := refreshTotals(ctx, q, s, now); err != nil {
			return err
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Close reconciles the counted cash against the expected drawer and closes
// the session.
func (r *PGRepository) Close(ctx context.Context, id string, in *dto.CloseCashSessionInput) (*model.CashSession, error) {
	const op = "sessions_caisse.close"
	if in.CountedCash < 0 {
		return nil, apperror.Validation(op, "le montant compté ne peut pas être négatif")
	}
	now := r.Now()

	var out *model.CashSession
	err := r.DB.InTx(ctx, op, func(q db.Querier) error {
		s, err := r.lock(ctx, q, op, id)
		if err != nil {
			return err
		}
		if s.Status != model.CashSessionOpen {
			return apperror.Validation(op, "la session de caisse est déjà fermée")
		}
		before := *s
		if err := refreshTotals(ctx, q, s, now); err != nil {
			return err
		}

		s.Reconcile(in.CountedCash.Float64())
		s.Status, s.ClosingNotes, s.ClosedAt = model.CashSessionClosed, in.Notes, &now
		if _, err := db.NamedExec(ctx, q, `
			UPDATE sessions_caisse
			SET statut = :statut, especes_comptees = :especes_comptees, ecart = :ecart,
				notes_cloture = :notes_cloture, fermee_le = :fermee_le, updated_at = :updated_at
			WHERE id = :id`, s); err != nil {
			return err
		}
		if err := r.audit(ctx, q, model.AuditCashClose, s, &before, s, now); err != nil {
			return err
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PGRepository) lock(ctx context.Context, q db.Querier, op, id string) (*model.CashSession, error) {
	args := map[string]interface{}{"id": id}
	query := `SELECT * FROM sessions_caisse WHERE id = :id` + r.DB.TenantClause("etablissement_id", args) + ` FOR UPDATE`

	var s model.CashSession
	found, err := db.NamedGet(ctx, q, &s, query, args)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperror.NotFound(op, entity, id)
	}
	return &s, nil
}

func refreshTotals(ctx context.Context, q db.Querier, s *model.CashSession, now time.Time) error {
	var sales struct {
		Count int            `db:"nombre"`
		Total numeric.Number `db:"total"`
	}
	if _, err := db.Get(ctx, q, &sales,
		`SELECT count(*) AS nombre, COALESCE(sum(total_final), 0) AS total
		FROM ventes WHERE session_caisse_id = $1 AND statut = $2`,
		s.ID, model.SalePaid); err != nil {
		return err
	}

	var modes []struct {
		Mode  model.PaymentMode `db:"mode_paiement"`
		Total numeric.Number    `db:"total"`
	}
	if err := q.SelectContext(ctx, &modes, `
		SELECT p.mode_paiement, sum(p.montant) AS total
		FROM paiements p JOIN ventes v ON v.id = p.vente_id
		WHERE v.session_caisse_id = $1 AND v.statut = $2
		GROUP BY p.mode_paiement`,
		s.ID, model.SalePaid); err != nil {
		return err
	}
	byMode := make(map[model.PaymentMode]float64, len(modes))
	for _, m := range modes {
		byMode[m.Mode] = m.Total.Float64()
	}

	s.ApplyPaymentTotals(byMode, sales.Count, sales.Total.Float64())
	s.UpdatedAt = now
	_, err := db.NamedExec(ctx, q, `
		UPDATE sessions_caisse
		SET total_especes = :total_especes, total_cartes = :total_cartes, total_mobile_money = :total_mobile_money,
			total_autres = :total_autres, total_ventes = :total_ventes, nombre_ventes = :nombre_ventes,
			updated_at = :updated_at
		WHERE id = :id`, s)
	return err
}

func (r *PGRepository) audit(ctx context.Context, q db.Querier, action model.AuditAction, s *model.CashSession, before, after any, now time.Time) error {
	in := &auditdto.RecordInput{
		EstablishmentID: s.EstablishmentID,
		Action:          action,
		Entity:          entity,
		EntityID:        &s.ID,
		Before:          before,
		After:           after,
	}
	if u, ok := r.DB.User(); ok {
		in.UserID = &u.UserID
	} else {
		in.UserID = &s.EmployeeID
	}
	return auditrepo.RecordTx(ctx, q, in, now)
}
