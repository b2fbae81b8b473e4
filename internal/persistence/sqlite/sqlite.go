package sqlite

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/example/hotel-booking/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationDir = "migrations"

// Storage bundles the SQLite repositories around one connection pool.
type Storage struct {
	pool   *ConnectionPool
	logger *slog.Logger

	Users    *UserRepository
	Services *ServiceRepository
	Bookings *BookingRepository
	Sessions *SessionRepository
}

// Open connects to the database file at dsn with production settings.
func Open(dsn string, logger *slog.Logger) (*Storage, error) {
	return OpenWithConfig(migration.DefaultSQLiteConfig(dsn), logger)
}

// OpenWithConfig connects using explicit SQLite settings.
func OpenWithConfig(config migration.SQLiteConfig, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pool, err := NewConnectionPool(config)
	if err != nil {
		return nil, err
	}
	return &Storage{
		pool:     pool,
		logger:   logger,
		Users:    NewUserRepository(pool),
		Services: NewServiceRepository(pool),
		Bookings: NewBookingRepository(pool),
		Sessions: NewSessionRepository(pool),
	}, nil
}

// Migrate applies the embedded schema migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	manager := migration.NewManager(
		migration.NewFileScanner(),
		migration.NewSQLiteExecutor(s.pool.DB()),
		migrationFiles,
		migrationDir,
		s.logger,
	)
	if err := manager.RunMigrations(ctx); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

// Ping reports whether the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}
