package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/uptrace/bun"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type rawExecutor interface {
	NewRaw(query string, args ...any) *bun.RawQuery
}

// Migrate applies every embedded migration not yet recorded in schema_migrations.
// Concurrent callers are serialized on an advisory lock.
func Migrate(ctx context.Context, db *bun.DB) error {
	migs, err := loadMigrations(migrationsFS)
	if err != nil {
		return err
	}

	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext('talentdesk:migrations'))").Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewRaw(`CREATE TABLE IF NOT EXISTS schema_migrations (
			name text PRIMARY KEY,
			applied_at timestamptz NOT NULL DEFAULT now()
		)`).Exec(ctx); err != nil {
			return err
		}

		for _, m := range migs {
			var applied int
			if err := tx.NewRaw("SELECT count(*) FROM schema_migrations WHERE name = ?", m.name).Scan(ctx, &applied); err != nil {
				return err
			}
			if applied > 0 {
				continue
			}
			if err := applyStatements(ctx, tx, m.statements); err != nil {
				return fmt.Errorf("migration %s: %w", m.name, err)
			}
			if _, err := tx.NewRaw("INSERT INTO schema_migrations (name) VALUES (?)", m.name).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

type migration struct {
	name       string
	statements []string
}

func loadMigrations(fsys fs.FS) ([]migration, error) {
	names, err := fs.Glob(fsys, "migrations/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	out := make([]migration, 0, len(names))
	for _, name := range names {
		b, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}
		upSQL, err := extractGooseUp(string(b))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out = append(out, migration{
			name:       strings.TrimPrefix(name, "migrations/"),
			statements: splitSQLStatements(upSQL),
		})
	}
	return out, nil
}

func applyStatements(ctx context.Context, exec rawExecutor, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := exec.NewRaw(stmt).Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

func extractGooseUp(sql string) (string, error) {
	upMarker := "-- +goose Up"
	downMarker := "-- +goose Down"

	upIdx := strings.Index(sql, upMarker)
	if upIdx < 0 {
		return "", fmt.Errorf("missing goose up marker")
	}
	afterUp := sql[upIdx+len(upMarker):]
	afterUp = strings.TrimLeft(afterUp, "\r\n")

	downIdx := strings.Index(afterUp, downMarker)
	if downIdx < 0 {
		return strings.TrimSpace(afterUp), nil
	}
	return strings.TrimSpace(afterUp[:downIdx]), nil
}

// splitSQLStatements splits on semicolons. Migrations must not use semicolons inside
// literals or function bodies.
func splitSQLStatements(sql string) []string {
	parts := strings.Split(sql, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(stripLineComments(p))
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func stripLineComments(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "--") {
			continue
		}
		kept = append(kept, l)
	}
	return strings.Join(kept, "\n")
}
