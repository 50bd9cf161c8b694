package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fekuna/omnipos-backoffice/internal/apperror"
	"github.com/fekuna/omnipos-backoffice/internal/db"
	"github.com/fekuna/omnipos-backoffice/internal/inventory/dto"
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

// Movements carry no establishment column; they are scoped through their product.
const fromMovements = " FROM mouvements_stock m JOIN produits p ON p.id = m.produit_id"

func buildWhere(f *dto.MovementFilters) (string, map[string]interface{}) {
	conditions := []string{"p.etablissement_id = :etablissement_id"}
	args := map[string]interface{}{"etablissement_id": f.EstablishmentID}

	if f.ProductID != "" {
		conditions = append(conditions, "m.produit_id = :produit_id")
		args["produit_id"] = f.ProductID
	}
	if f.Type != "" {
		conditions = append(conditions, "m.type = :type")
		args["type"] = string(f.Type)
	}
	if f.Reference != "" {
		conditions = append(conditions, "m.reference = :reference")
		args["reference"] = f.Reference
	}
	if f.From != nil {
		conditions = append(conditions, "m.created_at >= :from")
		args["from"] = *f.From
	}
	if f.To != nil {
		conditions = append(conditions, "m.created_at < :to")
		args["to"] = *f.To
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

const orderBy = " ORDER BY m.created_at DESC, m.id ASC"

func (r *PGRepository) List(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, error) {
	const op = "mouvements_stock.list"
	if err := db.RequireTenant(op, f.EstablishmentID); err != nil {
		return nil, err
	}
	where, args := buildWhere(f)

	out := []model.StockMovement{}
	if err := r.DB.NamedSelect(ctx, op, &out, "SELECT m.*"+fromMovements+where+orderBy, args); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PGRepository) ListPaginated(ctx context.Context, f *dto.MovementFilters, p pagination.Params) (*pagination.Result[model.StockMovement], error) {
	const op = "mouvements_stock.list_paginated"
	if err := db.RequireTenant(op, f.EstablishmentID); err != nil {
		return nil, err
	}
	where, args := buildWhere(f)
	return db.Paginate[model.StockMovement](ctx, r.DB, op,
		"SELECT count(*)"+fromMovements+where,
		"SELECT m.*"+fromMovements+where+orderBy,
		args, p)
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.StockMovement, error) {
	args := map[string]interface{}{"id": id}
	query := "SELECT m.*" + fromMovements + " WHERE m.id = :id" + r.DB.TenantClause("p.etablissement_id", args)

	var m model.StockMovement
	found, err := r.DB.NamedGet(ctx, "mouvements_stock.find", &m, query, args)
	if err != nil || !found {
		return nil, err
	}
	return &m, nil
}

// Create appends a movement whose quantite_apres is derived from the
// caller-supplied quantite_avant. Product stock is left untouched; use Apply
// to move it.
func (r *PGRepository) Create(ctx context.Context, in *dto.CreateMovementInput) (*model.StockMovement, error) {
	const op = "mouvements_stock.create"
	if err := validate(op, in.ProductID, in.Type, in.Quantity); err != nil {
		return nil, err
	}
	m := r.newMovement(in.ProductID, in.Type, in.Quantity, in.QuantityBefore.Float64())
	m.Reason, m.Reference, m.UnitPrice, m.UserID = in.Reason, in.Reference, in.UnitPrice, in.UserID

	err := r.DB.InTx(ctx, op, func(q db.Querier) error {
		if err := r.checkProduct(ctx, q, op, in.ProductID); err != nil {
			return err
		}
		return insert(ctx, q, m)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *PGRepository) RegisterEntry(ctx context.Context, in *dto.CreateMovementInput) (*model.StockMovement, error) {
	return r.register(ctx, model.MovementEntry, in)
}

func (r *PGRepository) RegisterExit(ctx context.Context, in *dto.CreateMovementInput) (*model.StockMovement, error) {
	return r.register(ctx, model.MovementExit, in)
}

func (r *PGRepository) RegisterAdjustment(ctx context.Context, in *dto.CreateMovementInput) (*model.StockMovement, error) {
	return r.register(ctx, model.MovementAdjustment, in)
}

func (r *PGRepository) RegisterLoss(ctx context.Context, in *dto.CreateMovementInput) (*model.StockMovement, error) {
	return r.register(ctx, model.MovementLoss, in)
}

func (r *PGRepository) RegisterInventory(ctx context.Context, in *dto.CreateMovementInput) (*model.StockMovement, error) {
	return r.register(ctx, model.MovementInventory, in)
}

func (r *PGRepository) register(ctx context.Context, t model.MovementType, in *dto.CreateMovementInput) (*model.StockMovement, error) {
	cp := *in
	cp.Type = t
	return r.Create(ctx, &cp)
}

// Apply moves the product's stock. The product row is locked, its current
// stock becomes quantite_avant, and a result below zero is refused. It returns
// nil when OnlyTracked is set and the product does not manage stock, or when
// OncePerReference is set and the movement was already booked.
func (r *PGRepository) Apply(ctx context.Context, in *dto.ApplyMovementInput) (*model.StockMovement, error) {
	const op = "mouvements_stock.apply"
	if err := validate(op, in.ProductID, in.Type, in.Quantity); err != nil {
		return nil, err
	}

	var m *model.StockMovement
	err := r.DB.InTx(ctx, op, func(q db.Querier) error {
		args := map[string]interface{}{"id": in.ProductID}
		query := `SELECT stock_actuel, gerer_stock FROM produits WHERE id = :id` +
			r.DB.TenantClause("etablissement_id", args) + ` FOR UPDATE`

		var product struct {
			Stock   numeric.Number `db:"stock_actuel"`
			Tracked bool           `db:"gerer_stock"`
		}
		found, err := db.NamedGet(ctx, q, &product, query, args)
		if err != nil {
			return err
		}
		if !found {
			return apperror.NotFound(op, "produit", in.ProductID)
		}
		if in.OnlyTracked && !product.Tracked {
			return nil
		}
		if in.OncePerReference && in.Reference != nil {
			var booked bool
			if _, err := db.Get(ctx, q, &booked, `
				SELECT EXISTS (
					SELECT 1 FROM mouvements_stock WHERE produit_id = $1 AND reference = $2 AND type = $3
				)`, in.ProductID, *in.Reference, string(in.Type)); err != nil {
				return err
			}
			if booked {
				return nil
			}
		}
		current := product.Stock

		m = r.newMovement(in.ProductID, in.Type, in.Quantity, current.Float64())
		m.Reason, m.Reference, m.UnitPrice, m.UserID = in.Reason, in.Reference, in.UnitPrice, in.UserID
		if m.QuantityAfter < 0 {
			return apperror.Validation(op, "stock insuffisant: %s disponible, %s demandé",
				current.Decimal().String(), in.Quantity.Decimal().String())
		}
		if err := insert(ctx, q, m); err != nil {
			return err
		}
		_, err = db.Exec(ctx, q,
			`UPDATE produits SET stock_actuel = $2, updated_at = $3 WHERE id = $1`,
			in.ProductID, m.QuantityAfter, m.CreatedAt)
		return err
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func validate(op, productID string, t model.MovementType, quantity numeric.Number) error {
	if productID == "" {
		return apperror.Validation(op, "produit_id est requis")
	}
	if !t.Valid() {
		return apperror.Validation(op, "type de mouvement inconnu: %s", t)
	}
	if quantity < 0 {
		return apperror.Validation(op, "la quantité ne peut pas être négative")
	}
	return nil
}

// newMovement derives quantite_apres from before. All three quantities are
// taken at the column scale first so the stored row keeps
// quantite_apres = quantite_avant +/- quantite.
func (r *PGRepository) newMovement(productID string, t model.MovementType, quantity numeric.Number, before float64) *model.StockMovement {
	before = numeric.Round3(before)
	q := numeric.Round3(quantity.Float64())
	return &model.StockMovement{
		ID:             uuid.NewString(),
		ProductID:      productID,
		Type:           t,
		Quantity:       numeric.Number(q),
		QuantityBefore: numeric.Number(before),
		QuantityAfter:  numeric.Number(model.QuantityAfter(t, before, q)),
		CreatedAt:      r.Now(),
	}
}

// checkProduct refuses movements on products outside the bound establishment.
func (r *PGRepository) checkProduct(ctx context.Context, q db.Querier, op, productID string) error {
	args := map[string]interface{}{"id": productID}
	var exists bool
	_, err := db.NamedGet(ctx, q, &exists,
		`SELECT EXISTS (SELECT 1 FROM produits WHERE id = :id`+r.DB.TenantClause("etablissement_id", args)+`)`, args)
	if err != nil {
		return err
	}
	if !exists {
		return apperror.NotFound(op, "produit", productID)
	}
	return nil
}

func insert(ctx context.Context, q db.Querier, m *model.StockMovement) error {
	_, err := db.NamedExec(ctx, q, `
		INSERT INTO mouvements_stock (
			id, produit_id, type, quantite, quantite_avant, quantite_apres,
			motif, reference, prix_unitaire, utilisateur_id, created_at
		)
		VALUES (
			:id, :produit_id, :type, :quantite, :quantite_avant, :quantite_apres,
			:motif, :reference, :prix_unitaire, :utilisateur_id, :created_at
		)`, m)
	return err
}
