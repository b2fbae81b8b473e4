package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/example/hotel-booking/internal/persistence/sqlite"
	"github.com/example/hotel-booking/internal/persistence/sqlite/migration"
)

// SQLiteHarness is a migrated temp-file database for integration tests.
type SQLiteHarness struct {
	Storage *sqlite.Storage

	Users    *sqlite.UserRepository
	Services *sqlite.ServiceRepository
	Bookings *sqlite.BookingRepository
	Sessions *sqlite.SessionRepository
}

// Close releases the database. It is also registered with tb.Cleanup.
func (h *SQLiteHarness) Close() {
	if h != nil && h.Storage != nil {
		_ = h.Storage.Close()
		h.Storage = nil
	}
}

// NewSQLiteHarness opens and migrates a fresh database under tb.TempDir.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "booking.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	storage, err := sqlite.OpenWithConfig(migration.TempFileTestSQLiteConfig(path), logger)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	if err := storage.Migrate(context.Background()); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Storage:  storage,
		Users:    storage.Users,
		Services: storage.Services,
		Bookings: storage.Bookings,
		Sessions: storage.Sessions,
	}
	tb.Cleanup(harness.Close)
	return harness
}

// SeedServices inserts catalog rows, failing the test on error.
func (h *SQLiteHarness) SeedServices(tb testing.TB, services ...ServiceFixture) {
	tb.Helper()
	for _, svc := range services {
		if err := h.Services.UpsertService(context.Background(), svc.Persistence()); err != nil {
			tb.Fatalf("failed to seed service %d: %v", svc.ID, err)
		}
	}
}
