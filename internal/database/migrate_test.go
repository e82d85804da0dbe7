package database

import (
	"io/fs"
	"strings"
	"testing"
)

// TestMigrationURL проверяет замену схемы DSN.
func TestMigrationURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "postgres://u:p@localhost:5432/db?sslmode=disable", want: "pgx5://u:p@localhost:5432/db?sslmode=disable"},
		{input: "postgresql://u:p@localhost:5432/db", want: "pgx5://u:p@localhost:5432/db"},
		{input: "pgx5://already", want: "pgx5://already"},
	}

	for _, tt := range tests {
		if got := migrationURL(tt.input); got != tt.want {
			t.Fatalf("migrationURL(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// TestMigrationsArePaired проверяет, что у каждой up-миграции есть down.
func TestMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected embedded migrations")
	}

	names := make(map[string]bool, len(entries))
	for _, entry := range entries {
		names[entry.Name()] = true
	}

	for name := range names {
		if strings.HasSuffix(name, ".up.sql") {
			down := strings.TrimSuffix(name, ".up.sql") + ".down.sql"
			if !names[down] {
				t.Fatalf("missing %s", down)
			}
		}
	}
}
