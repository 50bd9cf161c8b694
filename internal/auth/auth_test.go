package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"

	"github.com/fekuna/omnipos-backoffice/internal/model"
)

var secret = []byte("test-secret")

func validUser() UserContext {
	return UserContext{UserID: "u-1", EstablishmentID: "e-1", Role: model.RoleCashier}
}

func TestUserContext_Validate(t *testing.T) {
	assert.NoError(t, validUser().Validate())

	u := validUser()
	u.EstablishmentID = ""
	assert.ErrorIs(t, u.Validate(), ErrMissingContext)

	u = validUser()
	u.Role = "PATRON"
	assert.ErrorIs(t, u.Validate(), ErrMissingContext)
}

func TestFromContext(t *testing.T) {
	ctx := WithUserContext(context.Background(), validUser())
	u, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, validUser(), u)

	_, ok = FromContext(context.Background())
	assert.False(t, ok)
}

func TestFromContext_IgnoresIdentityHeaders(t *testing.T) {
	md := metadata.Pairs("x-user-id", "u-9", "x-establishment-id", "e-9", "x-role", "ADMIN")
	ctx := metadata.NewIncomingContext(context.Background(), md)

	_, ok := FromContext(ctx)
	assert.False(t, ok)
}

func TestBearerFromIncomingContext(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{"bearer", "Bearer abc.def.ghi", "abc.def.ghi", true},
		{"lower case scheme", "bearer abc", "abc", true},
		{"basic", "Basic dXNlcjpwYXNz", "", false},
		{"no token", "Bearer ", "", false},
		{"bare token", "abc", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", tt.header))
			got, ok := BearerFromIncomingContext(ctx)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := BearerFromIncomingContext(context.Background())
	assert.False(t, ok)
}

func TestSignAndParseClaims(t *testing.T) {
	token, err := SignClaims(secret, validUser(), time.Hour)
	require.NoError(t, err)

	claims, err := ParseClaims(secret, token)
	require.NoError(t, err)
	assert.Equal(t, validUser(), claims.UserContext())

	_, err = ParseClaims([]byte("other"), token)
	assert.Error(t, err)
}

func TestParseClaims_Expired(t *testing.T) {
	token, err := SignClaims(secret, validUser(), -time.Minute)
	require.NoError(t, err)

	_, err = ParseClaims(secret, token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseClaims_RejectsIncompleteClaims(t *testing.T) {
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u-1"}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = ParseClaims(secret, token)
	assert.ErrorIs(t, err, ErrMissingContext)
}

func TestSignClaims_RequiresCompleteContext(t *testing.T) {
	_, err := SignClaims(secret, UserContext{UserID: "u-1"}, time.Hour)
	assert.ErrorIs(t, err, ErrMissingContext)
}
