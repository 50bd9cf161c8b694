package model

import (
	"strings"
	"time"
)

type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleManager    Role = "MANAGER"
	RoleCashier    Role = "CAISSIER"
	RoleServer     Role = "SERVEUR"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleManager, RoleCashier, RoleServer:
		return true
	}
	return false
}

// defaultRoutes lists the application areas each role reaches when the
// employee has no explicit allow-list. A trailing "*" matches any sub-path.
var defaultRoutes = map[Role][]string{
	RoleSuperAdmin: {"*"},
	RoleAdmin:      {"*"},
	RoleManager:    {"/caisse*", "/ventes*", "/produits*", "/stocks*", "/clients*", "/rapports*", "/employes*", "/salle*"},
	RoleCashier:    {"/caisse*", "/ventes*", "/clients*"},
	RoleServer:     {"/caisse*", "/salle*"},
}

// Employee never carries the password or PIN hashes; those only live in
// the credential lookups of the employee repository.
type Employee struct {
	BaseModel
	EstablishmentID string     `db:"etablissement_id" json:"etablissement_id"`
	LastName        string     `db:"nom" json:"nom"`
	FirstName       string     `db:"prenom" json:"prenom"`
	Email           string     `db:"email" json:"email"`
	Phone           *string    `db:"telephone" json:"telephone"`
	Role            Role       `db:"role" json:"role"`
	HasPin          bool       `db:"has_pin" json:"has_pin"`
	AllowedRoutes   StringList `db:"routes_autorisees" json:"routes_autorisees"`
	Active          bool       `db:"actif" json:"actif"`
	LastLoginAt     *time.Time `db:"derniere_connexion" json:"derniere_connexion"`
}

func (e *Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// CanAccess checks route against the explicit allow-list when it is non-empty,
// otherwise against the role defaults.
func (e *Employee) CanAccess(route string) bool {
	patterns := []string(e.AllowedRoutes)
	if len(patterns) == 0 {
		patterns = defaultRoutes[e.Role]
	}
	for _, p := range patterns {
		if matchRoute(p, route) {
			return true
		}
	}
	return false
}

func matchRoute(pattern, route string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(route, prefix)
	}
	return pattern == route
}
