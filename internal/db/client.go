package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-backoffice/internal/apperror"
	"github.com/fekuna/omnipos-backoffice/internal/auth"
	"github.com/fekuna/omnipos-backoffice/pkg/logger"
)

const setClaimsQuery = `SELECT
	set_config('app.current_user_id', $1, true),
	set_config('app.current_establishment_id', $2, true),
	set_config('app.current_role', $3, true)`

// Client runs statements under one identity. A user client publishes its
// claims to the row-level security policies at the start of every
// transaction. The service client connects with a role that bypasses them.
type Client struct {
	db      *sqlx.DB
	user    *auth.UserContext
	tenant  string
	service bool
	metrics *Metrics
	log     logger.ZapLogger
}

// Tenant is the establishment single-row lookups are restricted to, or ""
// for an unscoped service client.
func (c *Client) Tenant() string { return c.tenant }

func (c *Client) IsService() bool { return c.service }

// User returns the bound identity; ok is false for the service client.
func (c *Client) User() (auth.UserContext, bool) {
	if c.user == nil {
		return auth.UserContext{}, false
	}
	return *c.user, true
}

// ScopedTo returns a service client whose single-row lookups are restricted
// to establishmentID. It is a no-op on user clients.
func (c *Client) ScopedTo(establishmentID string) *Client {
	if !c.service {
		return c
	}
	cp := *c
	cp.tenant = establishmentID
	return &cp
}

// InTx runs fn in a single transaction carrying the client's claims. The
// error is classified under op.
func (c *Client) InTx(ctx context.Context, op string, fn func(q Querier) error) error {
	start := time.Now()
	err := c.inTx(ctx, fn)
	c.metrics.observe(op, start, err)
	if err == nil {
		return nil
	}
	err = apperror.Wrap(op, err)
	if apperror.KindOf(err) == apperror.KindStorage {
		c.log.Error("query failed", zap.String("op", op), zap.String("tenant", c.tenant), zap.Error(err))
	}
	return err
}

func (c *Client) inTx(ctx context.Context, fn func(q Querier) error) (err error) {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if c.user != nil {
		if _, err = tx.ExecContext(ctx, setClaimsQuery, c.user.UserID, c.user.EstablishmentID, string(c.user.Role)); err != nil {
			return fmt.Errorf("set claims: %w", err)
		}
	}
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (c *Client) Get(ctx context.Context, op string, dest interface{}, query string, args ...interface{}) (bool, error) {
	var found bool
	err := c.InTx(ctx, op, func(q Querier) (err error) {
		found, err = Get(ctx, q, dest, query, args...)
		return err
	})
	return found, err
}

func (c *Client) NamedGet(ctx context.Context, op string, dest interface{}, query string, arg interface{}) (bool, error) {
	var found bool
	err := c.InTx(ctx, op, func(q Querier) (err error) {
		found, err = NamedGet(ctx, q, dest, query, arg)
		return err
	})
	return found, err
}

func (c *Client) Select(ctx context.Context, op string, dest interface{}, query string, args ...interface{}) error {
	return c.InTx(ctx, op, func(q Querier) error {
		return q.SelectContext(ctx, dest, query, args...)
	})
}

func (c *Client) NamedSelect(ctx context.Context, op string, dest interface{}, query string, arg interface{}) error {
	return c.InTx(ctx, op, func(q Querier) error {
		return NamedSelect(ctx, q, dest, query, arg)
	})
}

func (c *Client) Exec(ctx context.Context, op string, query string, args ...interface{}) (int64, error) {
	var n int64
	err := c.InTx(ctx, op, func(q Querier) (err error) {
		n, err = Exec(ctx, q, query, args...)
		return err
	})
	return n, err
}

func (c *Client) NamedExec(ctx context.Context, op string, query string, arg interface{}) (int64, error) {
	var n int64
	err := c.InTx(ctx, op, func(q Querier) (err error) {
		n, err = NamedExec(ctx, q, query, arg)
		return err
	})
	return n, err
}

// TenantClause returns " AND <col> = :tenant" and records the argument when
// the client is bound to an establishment, "" otherwise.
func (c *Client) TenantClause(col string, args map[string]interface{}) string {
	if c.tenant == "" {
		return ""
	}
	args["tenant"] = c.tenant
	return " AND " + col + " = :tenant"
}

// RequireTenant rejects listings issued without an establishment id.
func RequireTenant(op, establishmentID string) error {
	if establishmentID == "" {
		return apperror.Validation(op, "etablissement_id est requis")
	}
	return nil
}
