package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fekuna/omnipos-backoffice/internal/apperror"
	auditdto "github.com/fekuna/omnipos-backoffice/internal/audit/dto"
	auditrepo "github.com/fekuna/omnipos-backoffice/internal/audit/repository"
	"github.com/fekuna/omnipos-backoffice/internal/db"
	estrepo "github.com/fekuna/omnipos-backoffice/internal/establishment/repository"
	"github.com/fekuna/omnipos-backoffice/internal/model"
	"github.com/fekuna/omnipos-backoffice/internal/numeric"
	"github.com/fekuna/omnipos-backoffice/internal/pagination"
	"github.com/fekuna/omnipos-backoffice/internal/sale/dto"
)

type PGRepository struct {
	DB  *db.Client
	Now func() time.Time
}

func NewPGRepository(client *db.Client) *PGRepository {
	return &PGRepository{DB: client, Now: time.Now}
}

func buildWhere(f *dto.SaleFilters) (string, map[string]interface{}) {
	conditions := []string{"etablissement_id = :etablissement_id"}
	args := map[string]interface{}{"etablissement_id": f.EstablishmentID}

	eq := func(col, v string) {
		if v != "" {
			conditions = append(conditions, col+" = :"+col)
			args[col] = v
		}
	}
	eq("statut", string(f.Status))
	eq("type", string(f.Type))
	eq("client_id", f.ClientID)
	eq("utilisateur_id", f.CashierID)
	eq("session_caisse_id", f.SessionID)
	eq("table_id", f.TableID)

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

// List returns sale headers. Lines and payments are only loaded by FindByID.
func (r *PGRepository) List(ctx context.Context, f *dto.SaleFilters) ([]model.Sale, error) {
	const op = "ventes.list"
	if err := db.RequireTenant(op, f.EstablishmentID); err != nil {
		return nil, err
	}
	where, args := buildWhere(f)

	out := []model.Sale{}
	if err := r.DB.NamedSelect(ctx, op, &out, "SELECT * FROM ventes"+where+orderBy, args); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PGRepository) ListPaginated(ctx context.Context, f *dto.SaleFilters, p pagination.Params) (*pagination.Result[model.Sale], error) {
	const op = "ventes.list_paginated"
	if err := db.RequireTenant(op, f.EstablishmentID); err != nil {
		return nil, err
	}
	where, args := buildWhere(f)
	return db.Paginate[model.Sale](ctx, r.DB, op,
		"SELECT count(*) FROM ventes"+where,
		"SELECT * FROM ventes"+where+orderBy,
		args, p)
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Sale, error) {
	args := map[string]interface{}{"id": id}
	return r.findOne(ctx, "ventes.find", `SELECT * FROM ventes WHERE id = :id`, args)
}

func (r *PGRepository) FindByTicket(ctx context.Context, establishmentID, ticketNumber string) (*model.Sale, error) {
	const op = "ventes.find_by_ticket"
	if err := db.RequireTenant(op, establishmentID); err != nil {
		return nil, err
	}
	args := map[string]interface{}{"etablissement_id": establishmentID, "numero_ticket": strings.TrimSpace(ticketNumber)}
	return r.findOne(ctx, op,
		`SELECT * FROM ventes WHERE etablissement_id = :etablissement_id AND numero_ticket = :numero_ticket`, args)
}

func (r *PGRepository) findOne(ctx context.Context, op, query string, args map[string]interface{}) (*model.Sale, error) {
	query += r.DB.TenantClause("etablissement_id", args)

	var s model.Sale
	var found bool
	err := r.DB.InTx(ctx, op, func(q db.Querier) (err error) {
		found, err = db.NamedGet(ctx, q, &s, query, args)
		if err != nil || !found {
			return err
		}
		return loadDetails(ctx, q, &s)
	})
	if err != nil || !found {
		return nil, err
	}
	return &s, nil
}

// loadDetails attaches lines (with their supplements) and payments to s.
func loadDetails(ctx context.Context, q db.Querier, s *model.Sale) error {
	lines := []model.SaleLine{}
	if err := q.SelectContext(ctx, &lines,
		`SELECT * FROM lignes_vente WHERE vente_id = $1 ORDER BY position ASC, id ASC`, s.ID); err != nil {
		return err
	}
	sups := []model.LineSupplement{}
	if err := q.SelectContext(ctx, &sups, `
		SELECT lvs.* FROM lignes_vente_supplements lvs
		JOIN lignes_vente lv ON lv.id = lvs.ligne_vente_id
		WHERE lv.vente_id = $1
		ORDER BY lvs.nom ASC, lvs.id ASC`, s.ID); err != nil {
		return err
	}
	byLine := make(map[string][]model.LineSupplement, len(lines))
	for _, sp := range sups {
		byLine[sp.SaleLineID] = append(byLine[sp.SaleLineID], sp)
	}
	for i := range lines {
		lines[i].Supplements = byLine[lines[i].ID]
	}

	payments := []model.Payment{}
	if err := q.SelectContext(ctx, &payments,
		`SELECT * FROM paiements WHERE vente_id = $1 ORDER BY created_at ASC, id ASC`, s.ID); err != nil {
		return err
	}
	s.Lines, s.Payments = lines, payments
	return nil
}

// Create opens a sale: it reserves the next ticket number, prices every line
// from the catalog and stores the sale with its lines in one transaction.
func (r *PGRepository) Create(ctx context.Context, in *dto.CreateSaleInput) (*model.Sale, error) {
	const op = "ventes.create"
	if err := db.RequireTenant(op, in.EstablishmentID); err != nil {
		return nil, err
	}
	if t := r.DB.Tenant(); t != "" && t != in.EstablishmentID {
		return nil, apperror.NotFound(op, "etablissement", in.EstablishmentID)
	}
	if in.Type == "" {
		in.Type = model.SaleDirect
	}
	if !in.Type.Valid() {
		return nil, apperror.Validation(op, "type de vente inconnu: %s", in.Type)
	}
	if in.CashierID == "" {
		return nil, apperror.Validation(op, "utilisateur_id est requis")
	}
	if in.Discount < 0 || in.DeliveryFee < 0 || in.Covers < 0 {
		return nil, apperror.Validation(op, "remise, frais de livraison et couverts doivent être positifs")
	}
	for i := range in.Lines {
		if err := validateLine(op, &in.Lines[i]); err != nil {
			return nil, err
		}
	}

	now := r.Now()
	s := &model.Sale{
		BaseModel:       model.BaseModel{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		EstablishmentID: in.EstablishmentID,
		Type:            in.Type,
		Status:          model.SaleInProgress,
		ClientID:        emptyToNil(in.ClientID),
		TableID:         emptyToNil(in.TableID),
		CashierID:       in.CashierID,
		CashSessionID:   emptyToNil(in.CashSessionID),
		Covers:          in.Covers,
		Discount:        in.Discount,
		DeliveryFee:     in.DeliveryFee,
		DeliveryAddress: in.DeliveryAddress,
		Notes:           in.Notes,
		Payments:        []model.Payment{},
	}

	err := r.DB.InTx(ctx, op, func(q db.Querier) error {
		number, err := estrepo.NextTicket(ctx, q, in.EstablishmentID, now)
		if err != nil {
			return err
		}
		s.TicketNumber = number

		lines := make([]model.SaleLine, 0, len(in.Lines))
		for i := range in.Lines {
			l, err := buildLine(ctx, q, op, s, &in.Lines[i], i+1, now)
			if err != nil {
				return err
			}
			lines = append(lines, *l)
		}
		s.ApplyTotals(lines)
		s.Lines = lines

		if _, err := db.NamedExec(ctx, q, insertSale, s); err != nil {
			return err
		}
		for i := range lines {
			if err := insertLine(ctx, q, &lines[i]); err != nil {
				return err
			}
		}
		if s.DiscountTotal > 0 {
			return r.audit(ctx, q, model.AuditDiscountApplied, s, nil, discountSnapshot(s), now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

const insertSale = `
	INSERT INTO ventes (
		id, etablissement_id, numero_ticket, type, statut, client_id, table_id, utilisateur_id,
		session_caisse_id, nombre_couverts, sous_total, total_tva, total_remise, remise,
		frais_livraison, total_final, adresse_livraison, notes, motif_annulation, annule_par,
		annule_le, paye_le, created_at, updated_at
	)
	VALUES (
		:id, :etablissement_id, :numero_ticket, :type, :statut, :client_id, :table_id, :utilisateur_id,
		:session_caisse_id, :nombre_couverts, :sous_total, :total_tva, :total_remise, :remise,
		:frais_livraison, :total_final, :adresse_livraison, :notes, :motif_annulation, :annule_par,
		:annule_le, :paye_le, :created_at, :updated_at
	)
`

func validateLine(op string, in *dto.LineInput) error {
	if in.ProductID == "" {
		return apperror.Validation(op, "produit_id est requis")
	}
	if in.Quantity <= 0 {
		return apperror.Validation(op, "la quantité doit être positive")
	}
	if in.Discount < 0 {
		return apperror.Validation(op, "la remise ne peut pas être négative")
	}
	return nil
}

// buildLine prices in from the product and its supplements as they are now.
// Later catalog changes do not alter the stored line.
func buildLine(ctx context.Context, q db.Querier, op string, s *model.Sale, in *dto.LineInput, position int, now time.Time) (*model.SaleLine, error) {
	var p struct {
		Name   string         `db:"nom"`
		Price  numeric.Number `db:"prix_vente"`
		VAT    numeric.Number `db:"taux_tva"`
		Active bool           `db:"actif"`
	}
	found, err := db.Get(ctx, q, &p,
		`SELECT nom, prix_vente, taux_tva, actif FROM produits WHERE id = $1 AND etablissement_id = $2`,
		in.ProductID, s.EstablishmentID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperror.NotFound(op, "produit", in.ProductID)
	}
	if !p.Active {
		return nil, apperror.Validation(op, "le produit %s n'est plus en vente", p.Name)
	}

	l := &model.SaleLine{
		ID:        uuid.NewString(),
		SaleID:    s.ID,
		ProductID: in.ProductID,
		Label:     p.Name,
		Quantity:  in.Quantity,
		UnitPrice: p.Price,
		VATRate:   p.VAT,
		Discount:  in.Discount,
		Notes:     in.Notes,
		Position:  position,
		CreatedAt: now,
	}

	if len(in.SupplementIDs) > 0 {
		available := []model.Supplement{}
		if err := q.SelectContext(ctx, &available,
			`SELECT * FROM supplements_produits WHERE produit_id = $1 AND actif = true`, in.ProductID); err != nil {
			return nil, err
		}
		index := make(map[string]model.Supplement, len(available))
		for _, sp := range available {
			index[sp.ID] = sp
		}
		for _, id := range in.SupplementIDs {
			sp, ok := index[id]
			if !ok {
				return nil, apperror.Validation(op, "supplément %s indisponible pour %s", id, p.Name)
			}
			supplementID := sp.ID
			l.Supplements = append(l.Supplements, model.LineSupplement{
				ID:           uuid.NewString(),
				SaleLineID:   l.ID,
				SupplementID: &supplementID,
				Name:         sp.Name,
				Price:        sp.Price,
			})
		}
	}
	l.ComputeTotals()
	return l, nil
}

func insertLine(ctx context.Context, q db.Querier, l *model.SaleLine) error {
	_, err := db.NamedExec(ctx, q, `
		INSERT INTO lignes_vente (
			id, vente_id, produit_id, nom_produit, quantite, prix_unitaire, taux_tva, remise,
			sous_total, montant_tva, total, notes, position, created_at
		)
		VALUES (
			:id, :vente_id, :produit_id, :nom_produit, :quantite, :prix_unitaire, :taux_tva, :remise,
			:sous_total, :montant_tva, :total, :notes, :position, :created_at
		)`, l)
	if err != nil {
		return err
	}
	for i := range l.Supplements {
		_, err := db.NamedExec(ctx, q, `
			INSERT INTO lignes_vente_supplements (id, ligne_vente_id, supplement_id, nom, prix)
			VALUES (:id, :ligne_vente_id, :supplement_id, :nom, :prix)`, &l.Supplements[i])
		if err != nil {
			return err
		}
	}
	return nil
}

// lock loads the sale with its details and holds its row until the
// transaction ends.
func (r *PGRepository) lock(ctx context.Context, q db.Querier, op, id string) (*model.Sale, error) {
	args := map[string]interface{}{"id": id}
	query := `SELECT * FROM ventes WHERE id = :id` + r.DB.TenantClause("etablissement_id", args) + ` FOR UPDATE`

	var s model.Sale
	found, err := db.NamedGet(ctx, q, &s, query, args)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperror.NotFound(op, "vente", id)
	}
	if err := loadDetails(ctx, q, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// lockOpen is lock restricted to sales still EN_COURS.
func (r *PGRepository) lockOpen(ctx context.Context, q db.Querier, op, id string) (*model.Sale, error) {
	s, err := r.lock(ctx, q, op, id)
	if err != nil {
		return nil, err
	}
	if s.Status != model.SaleInProgress {
		return nil, apperror.Validation(op, "la vente %s est %s", s.TicketNumber, s.Status)
	}
	return s, nil
}

// saveTotals recomputes the sale amounts from s.Lines and persists them.
func saveTotals(ctx context.Context, q db.Querier, s *model.Sale, now time.Time) error {
	s.ApplyTotals(s.Lines)
	s.UpdatedAt = now
	_, err := db.NamedExec(ctx, q, `
		UPDATE ventes
		SET sous_total = :sous_total, total_tva = :total_tva, total_remise = :total_remise,
			total_final = :total_final, updated_at = :updated_at
		WHERE id = :id`, s)
	return err
}

func (r *PGRepository) AddLine(ctx context.Context, saleID string, in *dto.LineInput) (*model.Sale, error) {
	const op = "ventes.add_line"
	if err := validateLine(op, in); err != nil {
		return nil, err
	}
	now := r.Now()

	var out *model.Sale
	err := r.DB.InTx(ctx, op, func(q db.Querier) error {
		s, err := r.lockOpen(ctx, q, op, saleID)
		if err != nil {
			return err
		}
		position := 1
		for _, l := range s.Lines {
			if l.Position >= position {
				position = l.Position + 1
			}
		}
		l, err := buildLine(ctx, q, op, s, in, position, now)
		if err != nil {
			return err
		}
		if err := insertLine(ctx, q, l); err != nil {
			return err
		}
		s.Lines = append(s.Lines, *l)
		if err := saveTotals(ctx, q, s, now); err != nil {
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

func (r *PGRepository) RemoveLine(ctx context.Context, saleID, lineID string) (*model.Sale, error) {
	const op = "ventes.remove_line"
	now := r.Now()

	var out *model.Sale
	err := r.DB.InTx(ctx, op, func(q db.Querier) error {
		s, err := r.lockOpen(ctx, q, op, saleID)
		if err != nil {
			return err
		}
		idx := -1
		for i := range s.Lines {
			if s.Lines[i].ID == lineID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return apperror.NotFound(op, "ligne de vente", lineID)
		}
		if _, err := db.Exec(ctx, q, `DELETE FROM lignes_vente WHERE id = $1 AND vente_id = $2`, lineID, s.ID); err != nil {
			return err
		}
		s.Lines = append(s.Lines[:idx], s.Lines[idx+1:]...)
		if err := saveTotals(ctx, q, s, now); err != nil {
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

// AddPayment records a tender against an open sale. Cash payments store the
// amount received and the change given back. Account payments are charged to
// the sale's client within its credit limit.
func (r *PGRepository) AddPayment(ctx context.Context, saleID string, in *dto.PaymentInput) (*model.Payment, error) {
	const op = "paiements.create"
	if !in.Mode.Valid() {
		return nil, apperror.Validation(op, "mode de paiement inconnu: %s", in.Mode)
	}
	if in.Amount <= 0 {
		return nil, apperror.Validation(op, "le montant doit être positif")
	}

	now := r.Now()
	p := &model.Payment{
		ID:        uuid.NewString(),
		SaleID:    saleID,
		Mode:      in.Mode,
		Amount:    numeric.Number(numeric.Round2(in.Amount.Float64())),
		Reference: in.Reference,
		CreatedAt: now,
	}
	if in.Mode == model.PaymentCash {
		received := p.Amount
		if in.AmountReceived != nil {
			received = *in.AmountReceived
		}
		change := numeric.Number(model.ChangeDue(p.Amount.Float64(), received.Float64()))
		if change < 0 {
			return nil, apperror.Validation(op, "montant reçu insuffisant")
		}
		p.AmountReceived, p.ChangeGiven = &received, &change
	}

	err := r.DB.InTx(ctx, op, func(q db.Querier) error {
		s, err := r.lockOpen(ctx, q, op, saleID)
		if err != nil {
			return err
		}
		if in.Mode == model.PaymentAccountCredit {
			if err := chargeAccount(ctx, q, op, s, p.Amount, now); err != nil {
				return err
			}
		}
		_, err = db.NamedExec(ctx, q, `
			INSERT INTO paiements (id, vente_id, mode_paiement, montant, montant_recu, monnaie_rendue, reference, created_at)
			VALUES (:id, :vente_id, :mode_paiement, :montant, :montant_recu, :monnaie_rendue, :reference, :created_at)`, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func chargeAccount(ctx context.Context, q db.Querier, op string, s *model.Sale, amount numeric.Number, now time.Time) error {
	if s.ClientID == nil {
		return apperror.Validation(op, "un paiement sur compte exige un client")
	}
	n, err := db.Exec(ctx, q, `
		UPDATE clients SET solde_credit = solde_credit + $2, updated_at = $3
		WHERE id = $1 AND etablissement_id = $4
		AND (limite_credit <= 0 OR solde_credit + $2 <= limite_credit)`,
		*s.ClientID, amount, now, s.EstablishmentID)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.Validation(op, "limite de crédit dépassée")
	}
	return nil
}

// refundAccount lowers the client's credit balance by the sale's COMPTE_CLIENT
// payments. The balance does not go below zero when the client already
// settled part of it.
func refundAccount(ctx context.Context, q db.Querier, s *model.Sale, now time.Time) error {
	if s.ClientID == nil {
		return nil
	}
	charged := decimal.Zero
	for _, p := range s.Payments {
		if p.Mode == model.PaymentAccountCredit {
			charged = charged.Add(p.Amount.Decimal())
		}
	}
	if charged.IsZero() {
		return nil
	}
	_, err := db.Exec(ctx, q, `
		UPDATE clients SET solde_credit = GREATEST(solde_credit - $2, 0), updated_at = $3
		WHERE id = $1 AND etablissement_id = $4`,
		*s.ClientID, charged.String(), now, s.EstablishmentID)
	return err
}

// MarkPaid settles an open sale once its payments cover the total.
func (r *PGRepository) MarkPaid(ctx context.Context, id string) (*model.Sale, error) {
	const op = "ventes.mark_paid"
	now := r.Now()

	var out *model.Sale
	err := r.DB.InTx(ctx, op, func(q db.Querier) error {
		s, err := r.lockOpen(ctx, q, op, id)
		if err != nil {
			return err
		}
		var paid float64
		for _, p := range s.Payments {
			paid += p.Amount.Float64()
		}
		if numeric.Round2(paid) < s.Total.Float64() {
			return apperror.Validation(op, "paiements insuffisants: %.2f sur %.2f", paid, s.Total.Float64())
		}
		s.Status, s.PaidAt, s.UpdatedAt = model.SalePaid, &now, now
		if _, err := db.NamedExec(ctx, q,
			`UPDATE ventes SET statut = :statut, paye_le = :paye_le, updated_at = :updated_at WHERE id = :id`, s); err != nil {
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

// Cancel voids an open or paid sale. The sale and its lines are kept; what
// its account payments charged to the client is taken back.
func (r *PGRepository) Cancel(ctx context.Context, id string, in *dto.CancelSaleInput) (*model.Sale, error) {
	const op = "ventes.cancel"
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, apperror.Validation(op, "le motif d'annulation est requis")
	}
	if in.CancelledBy == "" {
		return nil, apperror.Validation(op, "annule_par est requis")
	}
	now := r.Now()

	var out *model.Sale
	err := r.DB.InTx(ctx, op, func(q db.Querier) error {
		s, err := r.lock(ctx, q, op, id)
		if err != nil {
			return err
		}
		if s.Status == model.SaleCancelled {
			return apperror.Validation(op, "la vente %s est déjà annulée", s.TicketNumber)
		}
		previous := s.Status
		by := in.CancelledBy
		s.Status, s.CancelReason, s.CancelledBy, s.CancelledAt, s.UpdatedAt = model.SaleCancelled, &reason, &by, &now, now
		if _, err := db.NamedExec(ctx, q, `
			UPDATE ventes
			SET statut = :statut, motif_annulation = :motif_annulation, annule_par = :annule_par,
				annule_le = :annule_le, updated_at = :updated_at
			WHERE id = :id`, s); err != nil {
			return err
		}
		if err := refundAccount(ctx, q, s, now); err != nil {
			return err
		}
		if err := r.audit(ctx, q, model.AuditSaleCancel, s, map[string]any{"statut": previous}, s, now); err != nil {
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

func discountSnapshot(s *model.Sale) map[string]any {
	return map[string]any{
		"numero_ticket": s.TicketNumber,
		"remise":        s.Discount,
		"total_remise":  s.DiscountTotal,
		"total_final":   s.Total,
	}
}

// audit appends an entry in the same transaction as the change. The acting
// user is the bound identity, or the cashier for the service client.
func (r *PGRepository) audit(ctx context.Context, q db.Querier, action model.AuditAction, s *model.Sale, before, after any, now time.Time) error {
	in := &auditdto.RecordInput{
		EstablishmentID: s.EstablishmentID,
		UserID:          &s.CashierID,
		Action:          action,
		Entity:          "vente",
		EntityID:        &s.ID,
		Before:          before,
		After:           after,
	}
	if u, ok := r.DB.User(); ok {
		in.UserID = &u.UserID
	}
	return auditrepo.RecordTx(ctx, q, in, now)
}

// Summarize aggregates the paid sales created in [from, to).
func (r *PGRepository) Summarize(ctx context.Context, establishmentID string, from, to time.Time) (*model.SalesSummary, error) {
	const op = "ventes.summarize"
	if err := db.RequireTenant(op, establishmentID); err != nil {
		return nil, err
	}
	if !to.After(from) {
		return nil, apperror.Validation(op, "période invalide")
	}

	var totals struct {
		Count    int            `db:"nombre"`
		Revenue  numeric.Number `db:"chiffre_affaires"`
		VAT      numeric.Number `db:"total_tva"`
		Discount numeric.Number `db:"total_remise"`
	}
	type bucket struct {
		Key   string         `db:"cle"`
		Total numeric.Number `db:"total"`
	}
	var modes, types []bucket
	var cancelled int

	err := r.DB.InTx(ctx, op, func(q db.Querier) error {
		if _, err := db.Get(ctx, q, &totals, `
			SELECT count(*) AS nombre, COALESCE(sum(total_final), 0) AS chiffre_affaires,
				COALESCE(sum(total_tva), 0) AS total_tva, COALESCE(sum(total_remise), 0) AS total_remise
			FROM ventes
			WHERE etablissement_id = $1 AND statut = $2 AND created_at >= $3 AND created_at < $4`,
			establishmentID, model.SalePaid, from, to); err != nil {
			return err
		}
		if err := q.SelectContext(ctx, &modes, `
			SELECT p.mode_paiement AS cle, sum(p.montant) AS total
			FROM paiements p JOIN ventes v ON v.id = p.vente_id
			WHERE v.etablissement_id = $1 AND v.statut = $2 AND v.created_at >= $3 AND v.created_at < $4
			GROUP BY p.mode_paiement`,
			establishmentID, model.SalePaid, from, to); err != nil {
			return err
		}
		if err := q.SelectContext(ctx, &types, `
			SELECT type AS cle, sum(total_final) AS total
			FROM ventes
			WHERE etablissement_id = $1 AND statut = $2 AND created_at >= $3 AND created_at < $4
			GROUP BY type`,
			establishmentID, model.SalePaid, from, to); err != nil {
			return err
		}
		_, err := db.Get(ctx, q, &cancelled, `
			SELECT count(*) FROM ventes
			WHERE etablissement_id = $1 AND statut = $2 AND created_at >= $3 AND created_at < $4`,
			establishmentID, model.SaleCancelled, from, to)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := &model.SalesSummary{
		SaleCount:     totals.Count,
		Revenue:       numeric.Round2(totals.Revenue.Float64()),
		VATTotal:      numeric.Round2(totals.VAT.Float64()),
		DiscountTotal: numeric.Round2(totals.Discount.Float64()),
		ByPaymentMode: make(map[model.PaymentMode]float64, len(modes)),
		ByType:        make(map[model.SaleType]float64, len(types)),
		Cancelled:     cancelled,
	}
	if out.SaleCount > 0 {
		out.AverageTicket = numeric.Round2(out.Revenue / float64(out.SaleCount))
	}
	for _, b := range modes {
		out.ByPaymentMode[model.PaymentMode(b.Key)] = numeric.Round2(b.Total.Float64())
	}
	for _, b := range types {
		out.ByType[model.SaleType(b.Key)] = numeric.Round2(b.Total.Float64())
	}
	return out, nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
