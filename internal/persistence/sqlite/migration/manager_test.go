package migration

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func openTestDB(t *testing.T) *SQLiteExecutor {
	t.Helper()

	db, err := Open(TempFileTestSQLiteConfig(filepath.Join(t.TempDir(), "migrate.db")))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteExecutor(db)
}

func TestManager_RunMigrations(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("applies pending migrations once", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		executor := openTestDB(t)
		source := fstest.MapFS{
			"m/001_people.sql": {Data: []byte("CREATE TABLE people (id INTEGER PRIMARY KEY, name TEXT NOT NULL);")},
			"m/002_seed.sql":   {Data: []byte("INSERT INTO people (name) VALUES ('a');\nINSERT INTO people (name) VALUES ('b');")},
		}

		manager := NewManager(NewFileScanner(), executor, source, "m", logger)
		if err := manager.RunMigrations(ctx); err != nil {
			t.Fatalf("RunMigrations failed: %v", err)
		}
		if err := manager.RunMigrations(ctx); err != nil {
			t.Fatalf("second RunMigrations failed: %v", err)
		}

		var count int
		if err := executor.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM people").Scan(&count); err != nil {
			t.Fatalf("count query failed: %v", err)
		}
		if count != 2 {
			t.Fatalf("expected seed to run once, got %d rows", count)
		}

		status, err := manager.Status(ctx)
		if err != nil {
			t.Fatalf("Status failed: %v", err)
		}
		if status.CurrentVersion != "002" || len(status.Pending) != 0 || len(status.Applied) != 2 {
			t.Fatalf("unexpected status: %+v", status)
		}
	})

	t.Run("rolls back a failing migration", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		executor := openTestDB(t)
		source := fstest.MapFS{
			"m/001_broken.sql": {Data: []byte("CREATE TABLE ok (id INTEGER);\nINSERT INTO missing VALUES (1);")},
		}

		err := NewManager(NewFileScanner(), executor, source, "m", logger).RunMigrations(ctx)
		if !errors.Is(err, ErrMigrationFailed) {
			t.Fatalf("expected ErrMigrationFailed, got %v", err)
		}

		var name string
		err = executor.db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'ok'").Scan(&name)
		if err == nil {
			t.Fatalf("expected table from failed migration to be rolled back")
		}

		applied, err := executor.GetAppliedVersions(ctx)
		if err != nil {
			t.Fatalf("GetAppliedVersions failed: %v", err)
		}
		if len(applied) != 0 {
			t.Fatalf("expected no recorded migrations, got %+v", applied)
		}
	})

	t.Run("refuses to run when an applied version disappeared", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		executor := openTestDB(t)
		first := fstest.MapFS{"m/001_a.sql": {Data: []byte("CREATE TABLE a (id INTEGER);")}}
		if err := NewManager(NewFileScanner(), executor, first, "m", logger).RunMigrations(ctx); err != nil {
			t.Fatalf("RunMigrations failed: %v", err)
		}

		second := fstest.MapFS{"m/002_b.sql": {Data: []byte("CREATE TABLE b (id INTEGER);")}}
		err := NewManager(NewFileScanner(), executor, second, "m", logger).RunMigrations(ctx)
		if !errors.Is(err, ErrUnknownAppliedVersion) {
			t.Fatalf("expected ErrUnknownAppliedVersion, got %v", err)
		}
	})
}

func TestSQLiteConfig_DataSourceName(t *testing.T) {
	t.Parallel()

	cfg := SQLiteConfig{DSN: "data/app.db", EnableForeignKeys: true, JournalMode: "WAL"}
	if got, want := cfg.DataSourceName(), "data/app.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"; got != want {
		t.Fatalf("DataSourceName() = %q, want %q", got, want)
	}

	cfg.DSN = "file:app.db?cache=shared"
	if got, want := cfg.DataSourceName(), "file:app.db?cache=shared&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"; got != want {
		t.Fatalf("DataSourceName() = %q, want %q", got, want)
	}

	if err := (SQLiteConfig{DSN: "x.db", JournalMode: "FAST"}).Validate(); err == nil {
		t.Fatalf("expected invalid journal mode to be rejected")
	}
}
