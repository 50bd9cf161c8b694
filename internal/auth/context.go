package auth

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/metadata"

	"github.com/fekuna/omnipos-backoffice/internal/model"
)

var ErrMissingContext = errors.New("auth: incomplete security context")

// UserContext is the identity every tenant-bound query runs under.
type UserContext struct {
	UserID          string
	EstablishmentID string
	Role            model.Role
}

func (u UserContext) Validate() error {
	if u.UserID == "" || u.EstablishmentID == "" || !u.Role.Valid() {
		return ErrMissingContext
	}
	return nil
}

type ctxKey struct{}

func WithUserContext(ctx context.Context, u UserContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// FromContext returns the identity stored by WithUserContext. Only trusted
// in-process code sets it; request headers never reach it.
func FromContext(ctx context.Context) (UserContext, bool) {
	u, ok := ctx.Value(ctxKey{}).(UserContext)
	return u, ok
}

// BearerFromIncomingContext reads the token of an "authorization: Bearer ..."
// entry in incoming gRPC metadata. The token still has to be verified.
func BearerFromIncomingContext(ctx context.Context) (string, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", false
	}
	scheme, token, ok := strings.Cut(first(md, "authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func first(md metadata.MD, key string) string {
	if val := md.Get(key); len(val) > 0 {
		return val[0]
	}
	return ""
}
