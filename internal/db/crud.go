package db

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-backoffice/internal/apperror"
	"github.com/fekuna/omnipos-backoffice/internal/pagination"
)

// Paginate counts the rows matched by countQuery and fetches the requested
// window of listQuery, both in one transaction. listQuery must carry a
// deterministic ORDER BY and no LIMIT.
func Paginate[T any](ctx context.Context, c *Client, op, countQuery, listQuery string, args map[string]interface{}, p pagination.Params) (*pagination.Result[T], error) {
	p = p.Normalize()
	out := []T{}
	var count int
	listQuery = fmt.Sprintf("%s LIMIT %d OFFSET %d", listQuery, p.Limit(), p.Offset())

	err := c.InTx(ctx, op, func(q Querier) error {
		if _, err := NamedGet(ctx, q, &count, countQuery, args); err != nil {
			return err
		}
		return NamedSelect(ctx, q, &out, listQuery, args)
	})
	if err != nil {
		return nil, err
	}
	return pagination.NewResult(out, count, p), nil
}

// SoftDelete deactivates the row. Repeating it is harmless; a missing or
// foreign row is a NotFound error.
func (c *Client) SoftDelete(ctx context.Context, table, entity, id string, now time.Time) error {
	op := table + ".soft_delete"
	args := map[string]interface{}{"id": id, "now": now}
	query := "UPDATE " + table + " SET actif = false, updated_at = :now WHERE id = :id" +
		c.TenantClause("etablissement_id", args)

	n, err := c.NamedExec(ctx, op, query, args)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound(op, entity, id)
	}
	return nil
}

// Delete removes the row for good. Reserved to entities no ledger refers to.
func (c *Client) Delete(ctx context.Context, table, entity, id string) error {
	op := table + ".delete"
	args := map[string]interface{}{"id": id}
	query := "DELETE FROM " + table + " WHERE id = :id" + c.TenantClause("etablissement_id", args)

	n, err := c.NamedExec(ctx, op, query, args)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound(op, entity, id)
	}
	return nil
}
