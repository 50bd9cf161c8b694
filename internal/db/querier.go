package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// Querier is what repositories run statements against. *sqlx.Tx satisfies it.
type Querier interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// Get fetches one row into dest. found is false when no row matched.
func Get(ctx context.Context, q Querier, dest interface{}, query string, args ...interface{}) (bool, error) {
	err := q.GetContext(ctx, dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// NamedGet is Get with :name parameters bound from arg (struct or map).
func NamedGet(ctx context.Context, q Querier, dest interface{}, query string, arg interface{}) (bool, error) {
	bound, args, err := q.BindNamed(query, arg)
	if err != nil {
		return false, err
	}
	return Get(ctx, q, dest, bound, args...)
}

func NamedSelect(ctx context.Context, q Querier, dest interface{}, query string, arg interface{}) error {
	bound, args, err := q.BindNamed(query, arg)
	if err != nil {
		return err
	}
	return q.SelectContext(ctx, dest, bound, args...)
}

// NamedExec runs a write and returns the number of affected rows.
func NamedExec(ctx context.Context, q Querier, query string, arg interface{}) (int64, error) {
	res, err := sqlx.NamedExecContext(ctx, q, query, arg)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func Exec(ctx context.Context, q Querier, query string, args ...interface{}) (int64, error) {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
