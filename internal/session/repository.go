package session

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-backoffice/internal/model"
)

type Repository interface {
	Create(ctx context.Context, userID string, ttl time.Duration, ip, userAgent *string) (*model.Session, error)
	FindByToken(ctx context.Context, token string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteForUser(ctx context.Context, userID string) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
}
