// Package migrations carries the database schema as ordered SQL files and
// applies the ones a database has not seen yet.
package migrations

import (
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-backoffice/pkg/logger"
)

//go:embed *.sql
var files embed.FS

// lockKey serializes concurrent runners through pg_advisory_lock.
const lockKey int64 = 7_305_118_204

type Migration struct {
	Version  int
	Name     string
	SQL      string
	Checksum string
}

type Status struct {
	Migration
	AppliedAt *time.Time
}

type applied struct {
	Version   int       `db:"version"`
	Name      string    `db:"name"`
	Checksum  string    `db:"checksum"`
	AppliedAt time.Time `db:"applied_at"`
}

// Load returns the embedded migrations ordered by version.
func Load() ([]Migration, error) {
	return parse(files)
}

func parse(fsys fs.FS) ([]Migration, error) {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, err
	}
	seen := make(map[int]string, len(names))
	out := make([]Migration, 0, len(names))
	for _, name := range names {
		prefix, rest, ok := strings.Cut(name, "_")
		version, err := strconv.Atoi(prefix)
		if !ok || err != nil || version <= 0 || rest == ".sql" {
			return nil, fmt.Errorf("migration %q: expected NNN_name.sql", name)
		}
		if other, dup := seen[version]; dup {
			return nil, fmt.Errorf("migration %q: version %d already used by %q", name, version, other)
		}
		seen[version] = name

		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}
		sum := sha256.Sum256(body)
		out = append(out, Migration{
			Version:  version,
			Name:     strings.TrimSuffix(rest, path.Ext(rest)),
			SQL:      string(body),
			Checksum: hex.EncodeToString(sum[:]),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// pending returns the migrations missing from done. A recorded migration
// whose file changed since it ran is an error.
func pending(all []Migration, done map[int]string) ([]Migration, error) {
	var out []Migration
	for _, m := range all {
		sum, ok := done[m.Version]
		if !ok {
			out = append(out, m)
			continue
		}
		if sum != m.Checksum {
			return nil, fmt.Errorf("migration %03d_%s was modified after being applied", m.Version, m.Name)
		}
	}
	return out, nil
}

const createTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		name       TEXT NOT NULL,
		checksum   TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

// Apply runs every pending migration, each in its own transaction, and
// returns how many ran. Runners on other hosts wait on the advisory lock.
func Apply(ctx context.Context, db *sqlx.DB, log logger.ZapLogger) (int, error) {
	all, err := Load()
	if err != nil {
		return 0, err
	}

	conn, err := db.Connx(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, lockKey); err != nil {
		return 0, fmt.Errorf("advisory lock: %w", err)
	}
	defer func() {
		if _, err := conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockKey); err != nil {
			log.Warn("advisory unlock failed", zap.Error(err))
		}
	}()

	if _, err := conn.ExecContext(ctx, createTable); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}
	rows := []applied{}
	if err := conn.SelectContext(ctx, &rows, `SELECT version, name, checksum, applied_at FROM schema_migrations`); err != nil {
		return 0, fmt.Errorf("read schema_migrations: %w", err)
	}
	done := make(map[int]string, len(rows))
	for _, r := range rows {
		done[r.Version] = r.Checksum
	}

	todo, err := pending(all, done)
	if err != nil {
		return 0, err
	}
	for _, m := range todo {
		if err := run(ctx, conn, m); err != nil {
			return 0, fmt.Errorf("migration %03d_%s: %w", m.Version, m.Name, err)
		}
		log.Info("migration applied", zap.Int("version", m.Version), zap.String("name", m.Name))
	}
	return len(todo), nil
}

func run(ctx context.Context, conn *sqlx.Conn, m Migration) (err error) {
	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	// Without arguments pgx sends the file through the simple protocol, which
	// accepts several statements at once.
	if _, err = tx.ExecContext(ctx, m.SQL); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name, checksum) VALUES ($1, $2, $3)`,
		m.Version, m.Name, m.Checksum); err != nil {
		return err
	}
	return tx.Commit()
}

// List reports every known migration with the time it was applied, if ever.
func List(ctx context.Context, db *sqlx.DB) ([]Status, error) {
	all, err := Load()
	if err != nil {
		return nil, err
	}
	var exists bool
	if err := db.GetContext(ctx, &exists, `SELECT to_regclass('schema_migrations') IS NOT NULL`); err != nil {
		return nil, err
	}
	rows := []applied{}
	if exists {
		if err := db.SelectContext(ctx, &rows, `SELECT version, name, checksum, applied_at FROM schema_migrations`); err != nil {
			return nil, err
		}
	}
	at := make(map[int]time.Time, len(rows))
	for _, r := range rows {
		at[r.Version] = r.AppliedAt
	}

	out := make([]Status, 0, len(all))
	for _, m := range all {
		s := Status{Migration: m}
		if t, ok := at[m.Version]; ok {
			s.AppliedAt = &t
		}
		out = append(out, s)
	}
	return out, nil
}

// Grant gives the row-level-security role DML rights on every table. The
// policies still decide which rows it sees.
func Grant(ctx context.Context, db *sqlx.DB, role string) error {
	if strings.TrimSpace(role) == "" {
		return fmt.Errorf("grant: role is required")
	}
	ident := pgx.Identifier{role}.Sanitize()
	stmts := []string{
		"GRANT USAGE ON SCHEMA public TO " + ident,
		"GRANT SELECT, INSERT, UPDATE, DELETE ON ALL TABLES IN SCHEMA public TO " + ident,
		"REVOKE ALL ON schema_migrations FROM " + ident,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("grant %s: %w", role, err)
		}
	}
	return nil
}
