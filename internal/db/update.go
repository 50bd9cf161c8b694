package db

import (
	"reflect"
	"sort"
	"strings"
	"time"
)

// UpdateBuilder assembles a partial UPDATE from the fields a caller supplied.
// Columns render in sorted order and updated_at is always stamped.
type UpdateBuilder struct {
	table     string
	sets      map[string]interface{}
	where     []string
	args      map[string]interface{}
	returning string
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{
		table: table,
		sets:  map[string]interface{}{},
		args:  map[string]interface{}{},
	}
}

// Set assigns col. A nil pointer means "not supplied" and is skipped; a
// non-nil pointer is dereferenced.
func (b *UpdateBuilder) Set(col string, v interface{}) *UpdateBuilder {
	if v == nil {
		return b
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return b
		}
		v = rv.Elem().Interface()
	}
	b.sets[col] = v
	return b
}

// SetNull assigns NULL to col.
func (b *UpdateBuilder) SetNull(col string) *UpdateBuilder {
	b.sets[col] = nil
	return b
}

// WhereEq adds "col = value" to the WHERE clause.
func (b *UpdateBuilder) WhereEq(col string, v interface{}) *UpdateBuilder {
	name := "where_" + col
	b.where = append(b.where, col+" = :"+name)
	b.args[name] = v
	return b
}

func (b *UpdateBuilder) Returning(cols string) *UpdateBuilder {
	b.returning = cols
	return b
}

// Len is the number of caller-supplied columns.
func (b *UpdateBuilder) Len() int { return len(b.sets) }

// Build renders the named query and its arguments.
func (b *UpdateBuilder) Build(now time.Time) (string, map[string]interface{}) {
	cols := make([]string, 0, len(b.sets))
	for col := range b.sets {
		if col != "updated_at" {
			cols = append(cols, col)
		}
	}
	sort.Strings(cols)

	args := make(map[string]interface{}, len(b.sets)+len(b.args)+1)
	assignments := make([]string, 0, len(cols)+1)
	for _, col := range cols {
		assignments = append(assignments, col+" = :"+col)
		args[col] = b.sets[col]
	}
	assignments = append(assignments, "updated_at = :updated_at")
	args["updated_at"] = now

	for k, v := range b.args {
		args[k] = v
	}

	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(b.table)
	sb.WriteString(" SET ")
	sb.WriteString(strings.Join(assignments, ", "))
	if len(b.where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.where, " AND "))
	}
	if b.returning != "" {
		sb.WriteString(" RETURNING ")
		sb.WriteString(b.returning)
	}
	return sb.String(), args
}
