package postgres

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"talentdesk/backend/internal/store"
)

func TestLockOrder(t *testing.T) {
	got := lockOrder([]string{"iv-b", "iv-a", "iv-b"})
	want := []string{"iv-a", "iv-b"}
	if len(got) != len(want) {
		t.Fatalf("lockOrder = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("lockOrder = %v, want %v", got, want)
		}
	}
}

func TestLockOrder_DoesNotMutateInput(t *testing.T) {
	in := []string{"b", "a"}
	_ = lockOrder(in)
	if in[0] != "b" || in[1] != "a" {
		t.Fatalf("input mutated: %v", in)
	}
}

func TestMapWriteError(t *testing.T) {
	other := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "exclusion violation", err: &pgconn.PgError{Code: "23P01", ConstraintName: noOverlapConstraint}, want: store.ErrConflict},
		{name: "wrapped exclusion violation", err: fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23P01", ConstraintName: noOverlapConstraint}), want: store.ErrConflict},
		{name: "duplicate key", err: &pgconn.PgError{Code: "23505"}, want: store.ErrConflict},
		{name: "other exclusion constraint", err: &pgconn.PgError{Code: "23P01", ConstraintName: "something_else"}},
		{name: "non pg error", err: other, want: other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapWriteError(tt.err)
			if tt.want == nil {
				if got != tt.err {
					t.Fatalf("mapWriteError = %v, want original error", got)
				}
				return
			}
			if got != tt.want {
				t.Fatalf("mapWriteError = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractGooseUp(t *testing.T) {
	sql := "-- +goose Up\nCREATE TABLE a (id int);\n\n-- +goose Down\nDROP TABLE a;\n"
	up, err := extractGooseUp(sql)
	if err != nil {
		t.Fatalf("extractGooseUp error: %v", err)
	}
	if up != "CREATE TABLE a (id int);" {
		t.Fatalf("up = %q", up)
	}

	if _, err := extractGooseUp("CREATE TABLE a (id int);"); err == nil {
		t.Fatalf("expected error for missing marker")
	}
}

func TestSplitSQLStatements_DropsCommentsAndBlanks(t *testing.T) {
	sql := "-- leading comment\nCREATE TABLE a (id int);\n\n;\nCREATE INDEX a_idx ON a (id);"
	stmts := splitSQLStatements(sql)
	if len(stmts) != 2 {
		t.Fatalf("len(stmts) = %d, want 2: %q", len(stmts), stmts)
	}
	if stmts[0] != "CREATE TABLE a (id int)" {
		t.Fatalf("stmts[0] = %q", stmts[0])
	}
}

func TestLoadMigrations_Embedded(t *testing.T) {
	migs, err := loadMigrations(migrationsFS)
	if err != nil {
		t.Fatalf("loadMigrations error: %v", err)
	}
	if len(migs) < 2 {
		t.Fatalf("len(migs) = %d, want at least 2", len(migs))
	}
	if migs[0].name != "0001_interviews.sql" {
		t.Fatalf("first migration = %q", migs[0].name)
	}

	var sawConstraint bool
	for _, m := range migs {
		for _, stmt := range m.statements {
			if strings.Contains(stmt, "DROP TABLE") {
				t.Fatalf("%s: down statement leaked into up: %q", m.name, stmt)
			}
			if strings.Contains(stmt, noOverlapConstraint) {
				sawConstraint = true
			}
		}
	}
	if !sawConstraint {
		t.Fatalf("no migration declares %s", noOverlapConstraint)
	}
}
