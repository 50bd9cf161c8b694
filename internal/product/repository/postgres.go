package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fekuna/omnipos-backoffice/internal/apperror"
	"github.com/fekuna/omnipos-backoffice/internal/db"
	"github.com/fekuna/omnipos-backoffice/internal/model"
	"github.com/fekuna/omnipos-backoffice/internal/pagination"
	"github.com/fekuna/omnipos-backoffice/internal/product/dto"
)

var channelColumns = map[model.Channel]string{
	model.ChannelDirect:   "disponible_direct",
	model.ChannelTable:    "disponible_table",
	model.ChannelDelivery: "disponible_livraison",
	model.ChannelTakeout:  "disponible_emporter",
}

type PGRepository struct {
	DB  *db.Client
	Now func() time.Time
}

func NewPGRepository(client *db.Client) *PGRepository {
	return &PGRepository{DB: client, Now: time.Now}
}

func buildWhere(f *dto.ProductFilters) (string, map[string]interface{}) {
	conditions := []string{"etablissement_id = :etablissement_id"}
	args := map[string]interface{}{"etablissement_id": f.EstablishmentID}

	if f.CategoryID != "" {
		conditions = append(conditions, "categorie_id = :categorie_id")
		args["categorie_id"] = f.CategoryID
	}
	if f.Active != nil {
		conditions = append(conditions, "actif = :actif")
		args["actif"] = *f.Active
	}
	if f.Search != "" {
		conditions = append(conditions, "(nom ILIKE :search OR code_barre ILIKE :search)")
		args["search"] = "%" + f.Search + "%"
	}
	if f.LowStock {
		conditions = append(conditions, "gerer_stock = true AND stock_actuel <= stock_min")
	}
	if col, ok := channelColumns[f.Channel]; ok {
		conditions = append(conditions, col+" = true")
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// orderClause whitelists the sortable columns.
func orderClause(f *dto.ProductFilters) string {
	orderBy := "nom"
	switch f.SortBy {
	case "prix":
		orderBy = "prix_vente"
	case "created_at":
		orderBy = "created_at"
	}
	if strings.ToLower(f.SortOrder) == "desc" {
		orderBy += " DESC"
	} else {
		orderBy += " ASC"
	}
	return " ORDER BY " + orderBy + ", id ASC"
}

func (r *PGRepository) List(ctx context.Context, f *dto.ProductFilters) ([]model.Product, error) {
	const op = "produits.list"
	if err := db.RequireTenant(op, f.EstablishmentID); err != nil {
		return nil, err
	}
	where, args := buildWhere(f)

	out := []model.Product{}
	if err := r.DB.NamedSelect(ctx, op, &out, "SELECT * FROM produits"+where+orderClause(f), args); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PGRepository) ListPaginated(ctx context.Context, f *dto.ProductFilters, p pagination.Params) (*pagination.Result[model.Product], error) {
	const op = "produits.list_paginated"
	if err := db.RequireTenant(op, f.EstablishmentID); err != nil {
		return nil, err
	}
	where, args := buildWhere(f)
	return db.Paginate[model.Product](ctx, r.DB, op,
		"SELECT count(*) FROM produits"+where,
		"SELECT * FROM produits"+where+orderClause(f),
		args, p)
}

// FindByID returns the product with its active supplements.
func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	const op = "produits.find"
	args := map[string]interface{}{"id": id}
	query := `SELECT * FROM produits WHERE id = :id` + r.DB.TenantClause("etablissement_id", args)

	var p model.Product
	var found bool
	err := r.DB.InTx(ctx, op, func(q db.Querier) (err error) {
		found, err = db.NamedGet(ctx, q, &p, query, args)
		if err != nil || !found {
			return err
		}
		p.Supplements = []model.Supplement{}
		return q.SelectContext(ctx, &p.Supplements,
			`SELECT * FROM supplements_produits WHERE produit_id = $1 AND actif = true ORDER BY nom ASC, id ASC`, id)
	})
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

func (r *PGRepository) FindByBarcode(ctx context.Context, establishmentID, barcode string) (*model.Product, error) {
	const op = "produits.find_by_barcode"
	if err := db.RequireTenant(op, establishmentID); err != nil {
		return nil, err
	}
	var p model.Product
	found, err := r.DB.Get(ctx, op, &p,
		`SELECT * FROM produits WHERE etablissement_id = $1 AND code_barre = $2 AND actif = true`,
		establishmentID, barcode)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

func (r *PGRepository) IsBarcodeUnique(ctx context.Context, establishmentID, barcode, excludeID string) (bool, error) {
	if barcode == "" {
		return true, nil
	}
	var count int
	query := `SELECT count(*) FROM produits WHERE etablissement_id = $1 AND code_barre = $2`
	args := []interface{}{establishmentID, barcode}
	if excludeID != "" {
		query += ` AND id <> $3`
		args = append(args, excludeID)
	}
	if _, err := r.DB.Get(ctx, "produits.barcode_unique", &count, query, args...); err != nil {
		return false, err
	}
	return count == 0, nil
}

func (r *PGRepository) Create(ctx context.Context, in *dto.CreateProductInput) (*model.Product, error) {
	const op = "produits.create"
	if err := db.RequireTenant(op, in.EstablishmentID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperror.Validation(op, "le nom est requis")
	}
	if in.SellPrice < 0 || in.PurchasePrice < 0 {
		return nil, apperror.Validation(op, "les prix ne peuvent pas être négatifs")
	}
	barcode := emptyToNil(in.Barcode)
	if barcode != nil {
		unique, err := r.IsBarcodeUnique(ctx, in.EstablishmentID, *barcode, "")
		if err != nil {
			return nil, err
		}
		if !unique {
			return nil, apperror.Conflict(op, "le code-barres %s existe déjà", *barcode)
		}
	}

	unit := in.Unit
	if unit == "" {
		unit = "unite"
	}
	now := r.Now()
	args := map[string]interface{}{
		"id":                   uuid.NewString(),
		"etablissement_id":     in.EstablishmentID,
		"categorie_id":         emptyToNil(in.CategoryID),
		"nom":                  strings.TrimSpace(in.Name),
		"description":          in.Description,
		"code_barre":           barcode,
		"image_url":            in.ImageURL,
		"prix_vente":           in.SellPrice,
		"prix_achat":           in.PurchasePrice,
		"taux_tva":             in.VATRate,
		"gerer_stock":          in.TrackStock,
		"stock_min":            in.StockMin,
		"stock_max":            in.StockMax,
		"unite":                unit,
		"disponible_direct":    boolOr(in.AvailableDirect, true),
		"disponible_table":     boolOr(in.AvailableTable, true),
		"disponible_livraison": boolOr(in.AvailableDelivery, true),
		"disponible_emporter":  boolOr(in.AvailableTakeout, true),
		"now":                  now,
	}
	// An omitted VAT rate falls back to the establishment's standard rate.
	query := `
		INSERT INTO produits (
			id, etablissement_id, categorie_id, nom, description, code_barre, image_url,
			prix_vente, prix_achat, taux_tva, gerer_stock, stock_actuel, stock_min, stock_max, unite,
			disponible_direct, disponible_table, disponible_livraison, disponible_emporter,
			actif, created_at, updated_at
		)
		VALUES (
			:id, :etablissement_id, :categorie_id, :nom, :description, :code_barre, :image_url,
			:prix_vente, :prix_achat,
			COALESCE(:taux_tva, (SELECT taux_tva_standard FROM etablissements WHERE id = :etablissement_id), 0),
			:gerer_stock, 0, :stock_min, :stock_max, :unite,
			:disponible_direct, :disponible_table, :disponible_livraison, :disponible_emporter,
			true, :now, :now
		)
		RETURNING *
	`
	var out model.Product
	if _, err := r.DB.NamedGet(ctx, op, &out, query, args); err != nil {
		return nil, err
	}
	out.Supplements = []model.Supplement{}
	return &out, nil
}

func (r *PGRepository) Update(ctx context.Context, id string, in *dto.UpdateProductInput) (*model.Product, error) {
	const op = "produits.update"
	if (in.SellPrice != nil && *in.SellPrice < 0) || (in.PurchasePrice != nil && *in.PurchasePrice < 0) {
		return nil, apperror.Validation(op, "les prix ne peuvent pas être négatifs")
	}

	b := db.Update("produits").
		Set("nom", in.Name).
		Set("description", in.Description).
		Set("image_url", in.ImageURL).
		Set("prix_vente", in.SellPrice).
		Set("prix_achat", in.PurchasePrice).
		Set("taux_tva", in.VATRate).
		Set("gerer_stock", in.TrackStock).
		Set("stock_min", in.StockMin).
		Set("stock_max", in.StockMax).
		Set("unite", in.Unit).
		Set("disponible_direct", in.AvailableDirect).
		Set("disponible_table", in.AvailableTable).
		Set("disponible_livraison", in.AvailableDelivery).
		Set("disponible_emporter", in.AvailableTakeout).
		Set("actif", in.Active).
		WhereEq("id", id).
		Returning("*")
	if in.CategoryID != nil {
		if *in.CategoryID == "" {
			b.SetNull("categorie_id")
		} else {
			b.Set("categorie_id", *in.CategoryID)
		}
	}
	if in.Barcode != nil {
		if *in.Barcode == "" {
			b.SetNull("code_barre")
		} else {
			b.Set("code_barre", *in.Barcode)
		}
	}
	if t := r.DB.Tenant(); t != "" {
		b.WhereEq("etablissement_id", t)
	}

	query, args := b.Build(r.Now())
	var out model.Product
	found, err := r.DB.NamedGet(ctx, op, &out, query, args)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperror.NotFound(op, "produit", id)
	}
	return &out, nil
}

func (r *PGRepository) SoftDelete(ctx context.Context, id string) error {
	return r.DB.SoftDelete(ctx, "produits", "produit", id, r.Now())
}

func (r *PGRepository) ListSupplements(ctx context.Context, productID string) ([]model.Supplement, error) {
	args := map[string]interface{}{"produit_id": productID}
	query := `
		SELECT s.* FROM supplements_produits s
		JOIN produits p ON p.id = s.produit_id
		WHERE s.produit_id = :produit_id` + r.DB.TenantClause("p.etablissement_id", args) + `
		ORDER BY s.nom ASC, s.id ASC`

	out := []model.Supplement{}
	if err := r.DB.NamedSelect(ctx, "supplements_produits.list", &out, query, args); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PGRepository) AddSupplement(ctx context.Context, in *dto.CreateSupplementInput) (*model.Supplement, error) {
	const op = "supplements_produits.create"
	if in.ProductID == "" || strings.TrimSpace(in.Name) == "" {
		return nil, apperror.Validation(op, "produit et nom sont requis")
	}
	if in.Price < 0 {
		return nil, apperror.Validation(op, "le prix ne peut pas être négatif")
	}
	args := map[string]interface{}{
		"id":         uuid.NewString(),
		"produit_id": in.ProductID,
		"nom":        strings.TrimSpace(in.Name),
		"prix":       in.Price,
	}
	// The SELECT guards against attaching a supplement to another tenant's product.
	query := `
		INSERT INTO supplements_produits (id, produit_id, nom, prix, actif)
		SELECT :id, p.id, :nom, :prix, true FROM produits p
		WHERE p.id = :produit_id` + r.DB.TenantClause("p.etablissement_id", args) + `
		RETURNING *`

	var out model.Supplement
	found, err := r.DB.NamedGet(ctx, op, &out, query, args)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperror.NotFound(op, "produit", in.ProductID)
	}
	return &out, nil
}

func (r *PGRepository) DeleteSupplement(ctx context.Context, id string) error {
	const op = "supplements_produits.delete"
	args := map[string]interface{}{"id": id}
	query := `
		DELETE FROM supplements_produits s USING produits p
		WHERE p.id = s.produit_id AND s.id = :id` + r.DB.TenantClause("p.etablissement_id", args)

	n, err := r.DB.NamedExec(ctx, op, query, args)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound(op, "supplément", id)
	}
	return nil
}

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
