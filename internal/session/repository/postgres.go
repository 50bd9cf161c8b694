package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/fekuna/omnipos-backoffice/internal/apperror"
	"github.com/fekuna/omnipos-backoffice/internal/db"
	"github.com/fekuna/omnipos-backoffice/internal/model"
)

const tokenBytes = 32

type PGRepository struct {
	DB  *db.Client
	Now func() time.Time
}

func NewPGRepository(client *db.Client) *PGRepository {
	return &PGRepository{DB: client, Now: time.Now}
}

// NewToken returns a random 64 character hex token.
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func (r *PGRepository) Create(ctx context.Context, userID string, ttl time.Duration, ip, userAgent *string) (*model.Session, error) {
	const op = "sessions.create"
	if userID == "" {
		return nil, apperror.Validation(op, "utilisateur_id est requis")
	}
	if ttl <= 0 {
		return nil, apperror.Validation(op, "la durée de session doit être positive")
	}
	token, err := NewToken()
	if err != nil {
		return nil, apperror.Wrap(op, err)
	}

	now := r.Now()
	s := &model.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: now.Add(ttl),
		IPAddress: ip,
		UserAgent: userAgent,
		CreatedAt: now,
	}
	_, err = r.DB.NamedExec(ctx, op, `
		INSERT INTO sessions (id, utilisateur_id, token, expire_le, adresse_ip, user_agent, created_at)
		VALUES (:id, :utilisateur_id, :token, :expire_le, :adresse_ip, :user_agent, :created_at)`, s)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// FindByToken returns nil for unknown and expired tokens alike.
func (r *PGRepository) FindByToken(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, nil
	}
	var s model.Session
	found, err := r.DB.Get(ctx, "sessions.find_by_token", &s,
		`SELECT * FROM sessions WHERE token = $1 AND expire_le > $2`, token, r.Now())
	if err != nil || !found {
		return nil, err
	}
	return &s, nil
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	const op = "sessions.delete"
	n, err := r.DB.Exec(ctx, op, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound(op, "session", id)
	}
	return nil
}

// DeleteForUser ends every session of the user, e.g. on logout everywhere.
func (r *PGRepository) DeleteForUser(ctx context.Context, userID string) (int64, error) {
	return r.DB.Exec(ctx, "sessions.delete_for_user", `DELETE FROM sessions WHERE utilisateur_id = $1`, userID)
}

// DeleteExpired purges sessions past expiry across all establishments. It
// needs the service client.
func (r *PGRepository) DeleteExpired(ctx context.Context) (int64, error) {
	const op = "sessions.delete_expired"
	if !r.DB.IsService() {
		return 0, apperror.Validation(op, "purge des sessions réservée au service")
	}
	return r.DB.Exec(ctx, op, `DELETE FROM sessions WHERE expire_le <= $1`, r.Now())
}
