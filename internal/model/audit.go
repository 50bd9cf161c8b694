package model

import "time"

type AuditAction string

const (
	AuditCreate          AuditAction = "CREATE"
	AuditUpdate          AuditAction = "UPDATE"
	AuditDelete          AuditAction = "DELETE"
	AuditLogin           AuditAction = "LOGIN"
	AuditLogout          AuditAction = "LOGOUT"
	AuditCashOpen        AuditAction = "CAISSE_OUVERTURE"
	AuditCashClose       AuditAction = "CAISSE_CLOTURE"
	AuditSaleCancel      AuditAction = "ANNULATION_VENTE"
	AuditDiscountApplied AuditAction = "REMISE_APPLIQUEE"
)

func (a AuditAction) Valid() bool {
	switch a {
	case AuditCreate, AuditUpdate, AuditDelete, AuditLogin, AuditLogout,
		AuditCashOpen, AuditCashClose, AuditSaleCancel, AuditDiscountApplied:
		return true
	}
	return false
}

type AuditLog struct {
	ID              string      `db:"id" json:"id"`
	EstablishmentID string      `db:"etablissement_id" json:"etablissement_id"`
	UserID          *string     `db:"utilisateur_id" json:"utilisateur_id"`
	Action          AuditAction `db:"action" json:"action"`
	Entity          string      `db:"entite" json:"entite"`
	EntityID        *string     `db:"entite_id" json:"entite_id"`
	Before          JSON        `db:"anciennes_valeurs" json:"anciennes_valeurs"`
	After           JSON        `db:"nouvelles_valeurs" json:"nouvelles_valeurs"`
	IPAddress       *string     `db:"adresse_ip" json:"adresse_ip"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
}

// Session is a login session token.
type Session struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"utilisateur_id" json:"utilisateur_id"`
	Token     string    `db:"token" json:"-"`
	ExpiresAt time.Time `db:"expire_le" json:"expire_le"`
	IPAddress *string   `db:"adresse_ip" json:"adresse_ip"`
	UserAgent *string   `db:"user_agent" json:"user_agent"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
