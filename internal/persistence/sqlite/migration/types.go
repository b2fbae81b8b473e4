package migration

import (
	"context"
	"io/fs"
	"time"
)

// Migration is a single versioned schema change read from a migration source.
type Migration struct {
	Version     string // zero padded numeric prefix, e.g. "001"
	Description string
	SQL         string
	FilePath    string
	Checksum    string
}

// AppliedMigration is a row of the schema_migrations table.
type AppliedMigration struct {
	Version       string
	AppliedAt     time.Time
	ExecutionTime time.Duration
	Checksum      string
}

// Status summarises applied and pending migrations.
type Status struct {
	CurrentVersion string
	Applied        []AppliedMigration
	Pending        []Migration
}

// FileScanner reads migration files from a filesystem.
type FileScanner interface {
	ScanMigrations(fsys fs.FS, dir string) ([]Migration, error)
	ValidateFileName(name string) error
}

// Executor applies migrations and tracks them in schema_migrations.
type Executor interface {
	InitializeVersionTable(ctx context.Context) error
	ExecuteMigration(ctx context.Context, migration Migration) error
	RecordMigration(ctx context.Context, migration Migration, executionTime time.Duration) error
	GetAppliedVersions(ctx context.Context) ([]AppliedMigration, error)
}
