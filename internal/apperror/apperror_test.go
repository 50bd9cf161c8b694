package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

type emptyErr struct{}

func (emptyErr) Error() string { return "" }

func TestMessage(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}

	assert.Equal(t, "duplicate key value violates unique constraint", Message(fmt.Errorf("insert: %w", pgErr)))
	assert.Equal(t, "boom", Message(errors.New("boom")))
	assert.Equal(t, FallbackMessage, Message(emptyErr{}))
	assert.Equal(t, FallbackMessage, Message(nil))
}

func TestWrap_ClassifiesPgErrors(t *testing.T) {
	cases := map[string]Kind{
		"23505": KindConflict,
		"23503": KindValidation,
		"23514": KindValidation,
		"22P02": KindValidation,
		"57014": KindStorage,
	}
	for code, want := range cases {
		err := Wrap("produits.create", &pgconn.PgError{Code: code, Message: "x"})

		var appErr *Error
		require.True(t, errors.As(err, &appErr), code)
		assert.Equal(t, want, appErr.Kind, code)
		assert.Equal(t, code, appErr.Code)
		assert.Equal(t, "produits.create", appErr.Op)
	}
}

func TestWrap_PassesThroughClassified(t *testing.T) {
	inner := Validation("clients.update", "solde insuffisant")
	err := Wrap("outer", inner)

	assert.Same(t, inner, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, "clients.update: solde insuffisant", err.Error())
}

func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, Wrap("x", nil))
}

func TestWrap_UnwrapsToCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap("ventes.list", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindStorage, KindOf(err))
	assert.Equal(t, "ventes.list: connection refused", err.Error())
}

func TestGRPCStatus(t *testing.T) {
	assert.Equal(t, codes.InvalidArgument, GRPCStatus(Validation("op", "bad")).Code())
	assert.Equal(t, codes.NotFound, GRPCStatus(NotFound("op", "produit", "42")).Code())
	assert.Equal(t, codes.AlreadyExists, GRPCStatus(Conflict("op", "dup")).Code())
	assert.Equal(t, codes.Internal, GRPCStatus(errors.New("db down")).Code())
	assert.Equal(t, codes.OK, GRPCStatus(nil).Code())

	assert.Equal(t, "produit 42 introuvable", GRPCStatus(NotFound("op", "produit", "42")).Message())
}
