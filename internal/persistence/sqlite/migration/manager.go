package migration

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"time"
)

// Manager applies pending migrations from a source filesystem.
type Manager struct {
	scanner  FileScanner
	executor Executor
	source   fs.FS
	dir      string
	logger   *slog.Logger
}

// NewManager constructs a Manager reading migrations from dir within source.
func NewManager(scanner FileScanner, executor Executor, source fs.FS, dir string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		scanner:  scanner,
		executor: executor,
		source:   source,
		dir:      dir,
		logger:   logger.With("component", "migration"),
	}
}

// RunMigrations applies every pending migration in version order. Each
// migration is recorded only after its transaction commits.
func (m *Manager) RunMigrations(ctx context.Context) error {
	start := time.Now()

	status, err := m.Status(ctx)
	if err != nil {
		return err
	}

	m.logger.InfoContext(ctx, "checking database schema version",
		"current_version", status.CurrentVersion,
		"pending", len(status.Pending),
	)
	if len(status.Pending) == 0 {
		return nil
	}

	for i, migration := range status.Pending {
		logger := m.logger.With(
			"version", migration.Version,
			"description", migration.Description,
			"file", migration.FilePath,
		)
		logger.InfoContext(ctx, "executing migration", "position", i+1, "total", len(status.Pending))

		migrationStart := time.Now()
		if err := m.executor.ExecuteMigration(ctx, migration); err != nil {
			logger.ErrorContext(ctx, "migration failed", "error", err)
			return NewMigrationError(migration.Version, migration.FilePath, "execute migration",
				fmt.Errorf("%w: %w", ErrMigrationFailed, err))
		}

		elapsed := time.Since(migrationStart)
		if err := m.executor.RecordMigration(ctx, migration, elapsed); err != nil {
			logger.ErrorContext(ctx, "failed to record migration", "error", err)
			return NewMigrationError(migration.Version, migration.FilePath, "record migration", err)
		}
		logger.InfoContext(ctx, "migration applied", "duration", elapsed)
	}

	m.logger.InfoContext(ctx, "database migrations completed",
		"applied", len(status.Pending),
		"duration", time.Since(start),
	)
	return nil
}

// Status compares the migration source against schema_migrations.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return Status{}, fmt.Errorf("failed to initialize version table: %w", err)
	}

	available, err := m.scanner.ScanMigrations(m.source, m.dir)
	if err != nil {
		return Status{}, fmt.Errorf("failed to scan migrations: %w", err)
	}

	applied, err := m.executor.GetAppliedVersions(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("failed to get applied versions: %w", err)
	}

	byVersion := make(map[string]Migration, len(available))
	for _, migration := range available {
		byVersion[migration.Version] = migration
	}

	status := Status{Applied: applied}
	appliedSet := make(map[string]bool, len(applied))
	for _, record := range applied {
		appliedSet[record.Version] = true
		status.CurrentVersion = record.Version

		source, ok := byVersion[record.Version]
		if !ok {
			return Status{}, fmt.Errorf("%w: version %s", ErrUnknownAppliedVersion, record.Version)
		}
		if record.Checksum != "" && record.Checksum != source.Checksum {
			m.logger.WarnContext(ctx, "applied migration differs from source file",
				"version", record.Version,
				"file", source.FilePath,
			)
		}
	}

	for _, migration := range available {
		if !appliedSet[migration.Version] {
			status.Pending = append(status.Pending, migration)
		}
	}
	return status, nil
}
