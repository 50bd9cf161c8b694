package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/fekuna/omnipos-backoffice/internal/apperror"
	"github.com/fekuna/omnipos-backoffice/internal/db"
	"github.com/fekuna/omnipos-backoffice/internal/employee/dto"
	"github.com/fekuna/omnipos-backoffice/internal/model"
	"github.com/fekuna/omnipos-backoffice/internal/pagination"
)

// employeeColumns is the read projection. The hashes are never part of it;
// has_pin is derived instead.
const employeeColumns = `id, etablissement_id, nom, prenom, email, telephone, role,
	(pin_hash IS NOT NULL) AS has_pin, routes_autorisees, actif, derniere_connexion,
	created_at, updated_at`

const minPasswordLength = 8

// credentials is only used inside this package to verify logins.
type credentials struct {
	model.Employee
	PasswordHash string  `db:"password_hash"`
	PinHash      *string `db:"pin_hash"`
}

type PGRepository struct {
	DB  *db.Client
	Now func() time.Time
}

func NewPGRepository(client *db.Client) *PGRepository {
	return &PGRepository{DB: client, Now: time.Now}
}

func buildWhere(f *dto.EmployeeFilters) (string, map[string]interface{}) {
	conditions := []string{"etablissement_id = :etablissement_id"}
	args := map[string]interface{}{"etablissement_id": f.EstablishmentID}

	if f.Role != "" {
		conditions = append(conditions, "role = :role")
		args["role"] = string(f.Role)
	}
	if f.Active != nil {
		conditions = append(conditions, "actif = :actif")
		args["actif"] = *f.Active
	}
	if f.Search != "" {
		conditions = append(conditions, "(nom ILIKE :search OR prenom ILIKE :search OR email ILIKE :search)")
		args["search"] = "%" + f.Search + "%"
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

const orderBy = " ORDER BY nom ASC, prenom ASC, id ASC"

func (r *PGRepository) List(ctx context.Context, f *dto.EmployeeFilters) ([]model.Employee, error) {
	const op = "utilisateurs.list"
	if err := db.RequireTenant(op, f.EstablishmentID); err != nil {
		return nil, err
	}
	where, args := buildWhere(f)

	out := []model.Employee{}
	query := "SELECT " + employeeColumns + " FROM utilisateurs" + where + orderBy
	if err := r.DB.NamedSelect(ctx, op, &out, query, args); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PGRepository) ListPaginated(ctx context.Context, f *dto.EmployeeFilters, p pagination.Params) (*pagination.Result[model.Employee], error) {
	const op = "utilisateurs.list_paginated"
	if err := db.RequireTenant(op, f.EstablishmentID); err != nil {
		return nil, err
	}
	where, args := buildWhere(f)

	return db.Paginate[model.Employee](ctx, r.DB, op,
		"SELECT count(*) FROM utilisateurs"+where,
		"SELECT "+employeeColumns+" FROM utilisateurs"+where+orderBy,
		args, p)
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Employee, error) {
	args := map[string]interface{}{"id": id}
	query := "SELECT " + employeeColumns + " FROM utilisateurs WHERE id = :id" +
		r.DB.TenantClause("etablissement_id", args)

	var e model.Employee
	found, err := r.DB.NamedGet(ctx, "utilisateurs.find", &e, query, args)
	if err != nil || !found {
		return nil, err
	}
	return &e, nil
}

func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*model.Employee, error) {
	args := map[string]interface{}{"email": normalizeEmail(email)}
	query := "SELECT " + employeeColumns + " FROM utilisateurs WHERE lower(email) = :email" +
		r.DB.TenantClause("etablissement_id", args)

	var e model.Employee
	found, err := r.DB.NamedGet(ctx, "utilisateurs.find_by_email", &e, query, args)
	if err != nil || !found {
		return nil, err
	}
	return &e, nil
}

func (r *PGRepository) Create(ctx context.Context, in *dto.CreateEmployeeInput) (*model.Employee, error) {
	const op = "utilisateurs.create"
	if err := db.RequireTenant(op, in.EstablishmentID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.LastName) == "" || normalizeEmail(in.Email) == "" {
		return nil, apperror.Validation(op, "nom et email sont requis")
	}
	if !in.Role.Valid() {
		return nil, apperror.Validation(op, "rôle inconnu: %s", in.Role)
	}
	if len(in.Password) < minPasswordLength {
		return nil, apperror.Validation(op, "le mot de passe doit contenir au moins %d caractères", minPasswordLength)
	}

	passwordHash, err := hash(op, in.Password)
	if err != nil {
		return nil, err
	}

	now := r.Now()
	args := map[string]interface{}{
		"id":                uuid.NewString(),
		"etablissement_id":  in.EstablishmentID,
		"nom":               strings.TrimSpace(in.LastName),
		"prenom":            strings.TrimSpace(in.FirstName),
		"email":             normalizeEmail(in.Email),
		"telephone":         in.Phone,
		"password_hash":     passwordHash,
		"pin_hash":          nil,
		"role":              string(in.Role),
		"routes_autorisees": model.StringList(in.AllowedRoutes),
		"created_at":        now,
	}
	query := `
		INSERT INTO utilisateurs (
			id, etablissement_id, nom, prenom, email, telephone, password_hash, pin_hash,
			role, routes_autorisees, actif, created_at, updated_at
		)
		VALUES (
			:id, :etablissement_id, :nom, :prenom, :email, :telephone, :password_hash, :pin_hash,
			:role, :routes_autorisees, true, :created_at, :created_at
		)
		RETURNING ` + employeeColumns

	var out model.Employee
	err = r.DB.InTx(ctx, op, func(q db.Querier) error {
		if in.Pin != nil {
			pinHash, err := r.checkedPinHash(ctx, q, op, in.EstablishmentID, "", *in.Pin)
			if err != nil {
				return err
			}
			args["pin_hash"] = pinHash
		}
		_, err := db.NamedGet(ctx, q, &out, query, args)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *PGRepository) Update(ctx context.Context, id string, in *dto.UpdateEmployeeInput) (*model.Employee, error) {
	const op = "utilisateurs.update"
	if in.Role != nil && !in.Role.Valid() {
		return nil, apperror.Validation(op, "rôle inconnu: %s", *in.Role)
	}

	b := db.Update("utilisateurs").
		Set("nom", in.LastName).
		Set("prenom", in.FirstName).
		Set("telephone", in.Phone).
		Set("actif", in.Active).
		WhereEq("id", id).
		Returning(employeeColumns)
	if in.Email != nil {
		b.Set("email", normalizeEmail(*in.Email))
	}
	if in.Role != nil {
		b.Set("role", string(*in.Role))
	}
	if in.AllowedRoutes != nil {
		b.Set("routes_autorisees", model.StringList(*in.AllowedRoutes))
	}
	if in.Password != nil {
		if len(*in.Password) < minPasswordLength {
			return nil, apperror.Validation(op, "le mot de passe doit contenir au moins %d caractères", minPasswordLength)
		}
		h, err := hash(op, *in.Password)
		if err != nil {
			return nil, err
		}
		b.Set("password_hash", h)
	}
	if t := r.DB.Tenant(); t != "" {
		b.WhereEq("etablissement_id", t)
	}

	var out model.Employee
	var found bool
	err := r.DB.InTx(ctx, op, func(q db.Querier) error {
		if in.Pin != nil {
			var establishmentID string
			ok, err := db.Get(ctx, q, &establishmentID, `SELECT etablissement_id FROM utilisateurs WHERE id = $1`, id)
			if err != nil {
				return err
			}
			if !ok {
				return apperror.NotFound(op, "utilisateur", id)
			}
			pinHash, err := r.checkedPinHash(ctx, q, op, establishmentID, id, *in.Pin)
			if err != nil {
				return err
			}
			b.Set("pin_hash", pinHash)
		}
		query, args := b.Build(r.Now())
		var err error
		found, err = db.NamedGet(ctx, q, &out, query, args)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperror.NotFound(op, "utilisateur", id)
	}
	return &out, nil
}

func (r *PGRepository) SoftDelete(ctx context.Context, id string) error {
	return r.DB.SoftDelete(ctx, "utilisateurs", "utilisateur", id, r.Now())
}

// Authenticate checks an email/password pair. Logins happen before any
// identity exists, so this is normally called on the service client.
func (r *PGRepository) Authenticate(ctx context.Context, email, password string) (*model.Employee, error) {
	var c credentials
	found, err := r.DB.Get(ctx, "utilisateurs.authenticate", &c,
		"SELECT "+employeeColumns+", password_hash, pin_hash FROM utilisateurs WHERE lower(email) = $1 AND actif = true",
		normalizeEmail(email))
	if err != nil || !found {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) != nil {
		return nil, nil
	}
	return &c.Employee, nil
}

// AuthenticatePin finds the active employee of the establishment whose PIN
// matches. PIN hashes are salted, so every candidate is compared.
func (r *PGRepository) AuthenticatePin(ctx context.Context, establishmentID, pin string) (*model.Employee, error) {
	const op = "utilisateurs.authenticate_pin"
	if err := db.RequireTenant(op, establishmentID); err != nil {
		return nil, err
	}
	candidates := []credentials{}
	err := r.DB.Select(ctx, op, &candidates,
		"SELECT "+employeeColumns+", password_hash, pin_hash FROM utilisateurs WHERE etablissement_id = $1 AND actif = true AND pin_hash IS NOT NULL",
		establishmentID)
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		if bcrypt.CompareHashAndPassword([]byte(*candidates[i].PinHash), []byte(pin)) == nil {
			return &candidates[i].Employee, nil
		}
	}
	return nil, nil
}

func (r *PGRepository) TouchLastLogin(ctx context.Context, id string) error {
	const op = "utilisateurs.touch_last_login"
	n, err := r.DB.Exec(ctx, op, `UPDATE utilisateurs SET derniere_connexion = $2 WHERE id = $1`, id, r.Now())
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound(op, "utilisateur", id)
	}
	return nil
}

// checkedPinHash validates pin, makes sure no other employee of the
// establishment already uses it and returns its hash.
func (r *PGRepository) checkedPinHash(ctx context.Context, q db.Querier, op, establishmentID, excludeID, pin string) (string, error) {
	if err := ValidatePin(pin); err != nil {
		return "", apperror.Validation(op, "%s", err.Error())
	}
	hashes := []string{}
	err := q.SelectContext(ctx, &hashes,
		`SELECT pin_hash FROM utilisateurs WHERE etablissement_id = $1 AND pin_hash IS NOT NULL AND id::text <> $2`,
		establishmentID, excludeID)
	if err != nil {
		return "", err
	}
	for _, h := range hashes {
		if bcrypt.CompareHashAndPassword([]byte(h), []byte(pin)) == nil {
			return "", apperror.Conflict(op, "ce code PIN est déjà utilisé")
		}
	}
	return hash(op, pin)
}

// ValidatePin accepts 4 to 6 digits.
func ValidatePin(pin string) error {
	if len(pin) < 4 || len(pin) > 6 {
		return fmt.Errorf("le code PIN doit contenir entre 4 et 6 chiffres")
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return fmt.Errorf("le code PIN ne doit contenir que des chiffres")
		}
	}
	return nil
}

func hash(op, secret string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", apperror.Wrap(op, err)
	}
	return string(h), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
