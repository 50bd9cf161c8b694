package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fekuna/omnipos-backoffice/internal/apperror"
	"github.com/fekuna/omnipos-backoffice/internal/db"
	"github.com/fekuna/omnipos-backoffice/internal/establishment/dto"
	"github.com/fekuna/omnipos-backoffice/internal/model"
	"github.com/fekuna/omnipos-backoffice/internal/numeric"
	"github.com/fekuna/omnipos-backoffice/internal/ticket"
)

const (
	defaultCurrency    = "XAF"
	defaultStandardVAT = 18
	defaultReducedVAT  = 10
)

type PGRepository struct {
	DB  *db.Client
	Now func() time.Time
}

func NewPGRepository(client *db.Client) *PGRepository {
	return &PGRepository{DB: client, Now: time.Now}
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Establishment, error) {
	args := map[string]interface{}{"id": id}
	query := `SELECT * FROM etablissements WHERE id = :id` + r.DB.TenantClause("id", args)

	var e model.Establishment
	found, err := r.DB.NamedGet(ctx, "etablissements.find", &e, query, args)
	if err != nil || !found {
		return nil, err
	}
	return &e, nil
}

// ListAll returns every establishment visible to the client. Through a user
// client row-level security narrows it to the caller's own establishment.
func (r *PGRepository) ListAll(ctx context.Context) ([]model.Establishment, error) {
	out := []model.Establishment{}
	err := r.DB.Select(ctx, "etablissements.list", &out, `SELECT * FROM etablissements ORDER BY nom ASC`)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Create provisions a tenant. Only the service client may do so.
func (r *PGRepository) Create(ctx context.Context, in *dto.CreateEstablishmentInput) (*model.Establishment, error) {
	const op = "etablissements.create"
	if !r.DB.IsService() {
		return nil, apperror.Validation(op, "création d'établissement réservée au service")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperror.Validation(op, "le nom est requis")
	}

	now := r.Now()
	e := &model.Establishment{
		BaseModel:       model.BaseModel{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		Name:            strings.TrimSpace(in.Name),
		Address:         in.Address,
		Phone:           in.Phone,
		Email:           in.Email,
		TaxID:           in.TaxID,
		TradeRegister:   in.TradeRegister,
		LogoURL:         in.LogoURL,
		Currency:        in.Currency,
		StandardVATRate: defaultStandardVAT,
		ReducedVATRate:  defaultReducedVAT,
		TicketFooter:    in.TicketFooter,
		Active:          true,
	}
	if e.Currency == "" {
		e.Currency = defaultCurrency
	}
	if in.StandardVATRate != nil {
		e.StandardVATRate = numeric.Number(*in.StandardVATRate)
	}
	if in.ReducedVATRate != nil {
		e.ReducedVATRate = numeric.Number(*in.ReducedVATRate)
	}

	query := `
		INSERT INTO etablissements (
			id, nom, adresse, telephone, email, nif, rccm, logo_url, devise,
			taux_tva_standard, taux_tva_reduit, message_ticket,
			dernier_numero_ticket, date_dernier_ticket, actif, created_at, updated_at
		)
		VALUES (
			:id, :nom, :adresse, :telephone, :email, :nif, :rccm, :logo_url, :devise,
			:taux_tva_standard, :taux_tva_reduit, :message_ticket,
			0, NULL, :actif, :created_at, :updated_at
		)
		RETURNING *
	`
	var out model.Establishment
	if _, err := r.DB.NamedGet(ctx, op, &out, query, e); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *PGRepository) Update(ctx context.Context, id string, in *dto.UpdateEstablishmentInput) (*model.Establishment, error) {
	const op = "etablissements.update"
	if t := r.DB.Tenant(); t != "" && t != id {
		return nil, apperror.NotFound(op, "etablissement", id)
	}

	b := db.Update("etablissements").
		Set("nom", in.Name).
		Set("adresse", in.Address).
		Set("telephone", in.Phone).
		Set("email", in.Email).
		Set("nif", in.TaxID).
		Set("rccm", in.TradeRegister).
		Set("logo_url", in.LogoURL).
		Set("devise", in.Currency).
		Set("taux_tva_standard", in.StandardVATRate).
		Set("taux_tva_reduit", in.ReducedVATRate).
		Set("message_ticket", in.TicketFooter).
		Set("actif", in.Active).
		WhereEq("id", id).
		Returning("*")

	query, args := b.Build(r.Now())
	var out model.Establishment
	found, err := r.DB.NamedGet(ctx, op, &out, query, args)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperror.NotFound(op, "etablissement", id)
	}
	return &out, nil
}

func (r *PGRepository) NextTicketNumber(ctx context.Context, id string) (string, error) {
	if t := r.DB.Tenant(); t != "" && t != id {
		return "", apperror.NotFound(opNextTicket, "etablissement", id)
	}
	var number string
	err := r.DB.InTx(ctx, opNextTicket, func(q db.Querier) (err error) {
		number, err = NextTicket(ctx, q, id, r.Now())
		return err
	})
	return number, err
}

const opNextTicket = "etablissements.next_ticket"

// NextTicket reserves the ticket number following the establishment's stored
// (number, date) pair and persists the new pair. The establishment row stays
// locked until q's transaction ends, so concurrent callers serialize.
func NextTicket(ctx context.Context, q db.Querier, establishmentID string, now time.Time) (string, error) {
	var state struct {
		LastNumber int        `db:"dernier_numero_ticket"`
		LastDate   *time.Time `db:"date_dernier_ticket"`
	}
	found, err := db.Get(ctx, q, &state,
		`SELECT dernier_numero_ticket, date_dernier_ticket FROM etablissements WHERE id = $1 FOR UPDATE`,
		establishmentID)
	if err != nil {
		return "", err
	}
	if !found {
		return "", apperror.NotFound(opNextTicket, "etablissement", establishmentID)
	}

	n, number := ticket.Next(state.LastNumber, state.LastDate, now)
	_, err = q.ExecContext(ctx,
		`UPDATE etablissements SET dernier_numero_ticket = $2, date_dernier_ticket = $3, updated_at = $3 WHERE id = $1`,
		establishmentID, n, now)
	if err != nil {
		return "", err
	}
	return number, nil
}
