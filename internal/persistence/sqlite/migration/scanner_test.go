package migration

import (
	"errors"
	"testing"
	"testing/fstest"
)

func TestFileScanner_ScanMigrations(t *testing.T) {
	t.Parallel()

	t.Run("orders migrations numerically and reads descriptions", func(t *testing.T) {
		t.Parallel()

		fsys := fstest.MapFS{
			"migrations/010_add_index.sql":      {Data: []byte("CREATE INDEX idx ON t(a);")},
			"migrations/002_create_t.sql":       {Data: []byte("-- Description: Create t table\nCREATE TABLE t (a TEXT);")},
			"migrations/001_init.sql":           {Data: []byte("CREATE TABLE s (a TEXT);")},
			"migrations/README.md":              {Data: []byte("ignored")},
			"migrations/nested/003_ignored.sql": {Data: []byte("SELECT 1;")},
		}

		migrations, err := NewFileScanner().ScanMigrations(fsys, "migrations")
		if err != nil {
			t.Fatalf("ScanMigrations returned error: %v", err)
		}
		if len(migrations) != 3 {
			t.Fatalf("expected 3 migrations, got %d", len(migrations))
		}
		versions := []string{migrations[0].Version, migrations[1].Version, migrations[2].Version}
		if versions[0] != "001" || versions[1] != "002" || versions[2] != "010" {
			t.Fatalf("unexpected order: %v", versions)
		}
		if migrations[1].Description != "Create t table" {
			t.Fatalf("expected description from comment, got %q", migrations[1].Description)
		}
		if migrations[0].Description != "init" {
			t.Fatalf("expected description from filename, got %q", migrations[0].Description)
		}
		if migrations[0].Checksum == "" || migrations[0].Checksum == migrations[1].Checksum {
			t.Fatalf("expected distinct checksums, got %q and %q", migrations[0].Checksum, migrations[1].Checksum)
		}
	})

	t.Run("rejects duplicate versions", func(t *testing.T) {
		t.Parallel()

		fsys := fstest.MapFS{
			"m/001_a.sql": {Data: []byte("SELECT 1;")},
			"m/001_b.sql": {Data: []byte("SELECT 2;")},
		}
		_, err := NewFileScanner().ScanMigrations(fsys, "m")
		if !errors.Is(err, ErrDuplicateVersion) {
			t.Fatalf("expected ErrDuplicateVersion, got %v", err)
		}
	})

	t.Run("rejects malformed names and empty files", func(t *testing.T) {
		t.Parallel()

		_, err := NewFileScanner().ScanMigrations(fstest.MapFS{"m/init.sql": {Data: []byte("SELECT 1;")}}, "m")
		if !errors.Is(err, ErrInvalidMigrationFile) {
			t.Fatalf("expected ErrInvalidMigrationFile for bad name, got %v", err)
		}

		_, err = NewFileScanner().ScanMigrations(fstest.MapFS{"m/001_empty.sql": {Data: []byte("  \n")}}, "m")
		if !errors.Is(err, ErrInvalidMigrationFile) {
			t.Fatalf("expected ErrInvalidMigrationFile for empty file, got %v", err)
		}
	})
}

func TestSplitStatements(t *testing.T) {
	t.Parallel()

	statements := splitStatements("-- header\nCREATE TABLE a (x TEXT);\n\n-- only a comment;\nCREATE TABLE b (y TEXT);\n")
	if len(statements) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(statements), statements)
	}
	if statements[0] != "CREATE TABLE a (x TEXT)" {
		t.Fatalf("unexpected first statement %q", statements[0])
	}
}
