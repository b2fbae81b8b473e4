package persistence_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/hotel-booking/internal/persistence"
	"github.com/example/hotel-booking/internal/testfixtures"
)

type repositories struct {
	users    persistence.UserRepository
	services persistence.ServiceRepository
	bookings persistence.BookingRepository
	sessions persistence.SessionRepository
}

func newRepositories(t *testing.T) repositories {
	t.Helper()
	harness := testfixtures.NewSQLiteHarness(t)
	return repositories{
		users:    harness.Users,
		services: harness.Services,
		bookings: harness.Bookings,
		sessions: harness.Sessions,
	}
}

func TestRepositories_UserLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repos := newRepositories(t)

	user := testfixtures.NewUserFixture(
		testfixtures.WithUserID("user-1"),
		testfixtures.WithUserEmail("alice@example.com"),
		testfixtures.WithUserName("Alice"),
		testfixtures.WithUserPhone("0912-000-111"),
		testfixtures.WithUserCreatedAt(testfixtures.ReferenceTime()),
	)
	if err := repos.users.CreateUser(ctx, user.Persistence()); err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	byEmail, err := repos.users.GetUserByEmail(ctx, " alice@example.com ")
	if err != nil {
		t.Fatalf("GetUserByEmail returned error: %v", err)
	}
	if byEmail.ID != "user-1" || byEmail.Role != "user" || byEmail.Phone == nil || *byEmail.Phone != "0912-000-111" {
		t.Fatalf("unexpected user %+v", byEmail)
	}
	if !byEmail.CreatedAt.Equal(testfixtures.ReferenceTime()) {
		t.Fatalf("expected created at %v, got %v", testfixtures.ReferenceTime(), byEmail.CreatedAt)
	}

	if _, err := repos.users.GetUserByEmail(ctx, "ALICE@example.com"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected case-sensitive lookup to miss, got %v", err)
	}

	dup := testfixtures.NewUserFixture(testfixtures.WithUserEmail("alice@example.com"))
	if err := repos.users.CreateUser(ctx, dup.Persistence()); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestRepositories_BookingLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repos := newRepositories(t)

	first := testfixtures.NewBookingFixture(
		testfixtures.WithBookingBooker("Ann Lee", "111", "ann@example.com"),
		testfixtures.WithBookingStay("2025-05-01", "2025-05-03"),
		testfixtures.WithBookingBookedAt(testfixtures.ReferenceTime()),
	)
	second := testfixtures.NewBookingFixture(
		testfixtures.WithBookingBooker("Bob Stone", "222", "ann@example.com"),
		testfixtures.WithBookingStay("2025-06-10", "2025-06-12"),
		testfixtures.WithBookingServiceName("Deluxe Suite"),
	)

	firstID, err := repos.bookings.CreateBooking(ctx, first.Persistence())
	if err != nil {
		t.Fatalf("CreateBooking returned error: %v", err)
	}
	secondID, err := repos.bookings.CreateBooking(ctx, second.Persistence())
	if err != nil {
		t.Fatalf("CreateBooking returned error: %v", err)
	}
	if secondID <= firstID {
		t.Fatalf("expected increasing ids, got %d then %d", firstID, secondID)
	}

	mine, err := repos.bookings.ListBookingsByEmail(ctx, "ann@example.com")
	if err != nil {
		t.Fatalf("ListBookingsByEmail returned error: %v", err)
	}
	if len(mine) != 2 || mine[0].ID != secondID {
		t.Fatalf("expected both bookings newest first, got %+v", mine)
	}

	june, err := repos.bookings.SearchBookings(ctx, persistence.BookingFilter{CheckInFrom: "2025-06-01", CheckInUntil: "2025-06-30"})
	if err != nil {
		t.Fatalf("SearchBookings returned error: %v", err)
	}
	if len(june) != 1 || june[0].BookerName != "Bob Stone" {
		t.Fatalf("expected only the June booking, got %+v", june)
	}

	changes := persistence.BookingChanges{
		BookerName:  "Ann Smith",
		BookerPhone: "999",
		BookerEmail: "ann.smith@example.com",
		CheckIn:     "2025-07-01",
		CheckOut:    "2025-07-04",
	}
	if err := repos.bookings.UpdateBooking(ctx, firstID, changes); err != nil {
		t.Fatalf("UpdateBooking returned error: %v", err)
	}
	updated, err := repos.bookings.GetBooking(ctx, firstID)
	if err != nil {
		t.Fatalf("GetBooking returned error: %v", err)
	}
	if updated.BookerName != "Ann Smith" || updated.ServiceName != first.ServiceName || updated.Details != first.Details {
		t.Fatalf("unexpected booking after update %+v", updated)
	}
	if !updated.BookedAt.Equal(testfixtures.ReferenceTime()) {
		t.Fatalf("book date must not change, got %v", updated.BookedAt)
	}

	if err := repos.bookings.DeleteBooking(ctx, firstID); err != nil {
		t.Fatalf("DeleteBooking returned error: %v", err)
	}
	if _, err := repos.bookings.GetBooking(ctx, firstID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repos.bookings.DeleteBooking(ctx, firstID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if err := repos.bookings.UpdateBooking(ctx, firstID, changes); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
}

func TestRepositories_ServiceRenameKeepsBookingLabel(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	harness := testfixtures.NewSQLiteHarness(t)

	room := testfixtures.NewServiceFixture(testfixtures.WithServiceID(10), testfixtures.WithServiceName("Garden Villa"), testfixtures.WithServicePrice(320))
	harness.SeedServices(t, room)

	id, err := harness.Bookings.CreateBooking(ctx, testfixtures.NewBookingFixture(testfixtures.WithBookingServiceName(room.Name)).Persistence())
	if err != nil {
		t.Fatalf("CreateBooking returned error: %v", err)
	}

	harness.SeedServices(t, testfixtures.NewServiceFixture(testfixtures.WithServiceID(10), testfixtures.WithServiceName("Garden Villa Deluxe")))

	svc, err := harness.Services.GetService(ctx, 10)
	if err != nil {
		t.Fatalf("GetService returned error: %v", err)
	}
	if svc.Name != "Garden Villa Deluxe" {
		t.Fatalf("expected renamed service, got %q", svc.Name)
	}
	booking, err := harness.Bookings.GetBooking(ctx, id)
	if err != nil {
		t.Fatalf("GetBooking returned error: %v", err)
	}
	if booking.ServiceName != "Garden Villa" {
		t.Fatalf("booking must keep the original label, got %q", booking.ServiceName)
	}
}

func TestRepositories_SessionLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repos := newRepositories(t)
	now := testfixtures.ReferenceTime()

	user := testfixtures.NewUserFixture(testfixtures.WithUserID("user-session"))
	if err := repos.users.CreateUser(ctx, user.Persistence()); err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	expiring := testfixtures.NewSessionFixture(
		testfixtures.WithSessionUserID(user.ID),
		testfixtures.WithSessionToken("expiring"),
		testfixtures.WithSessionTimestamps(now, now),
		testfixtures.WithSessionExpiresAt(now.Add(time.Hour)),
	)
	forever := testfixtures.NewSessionFixture(
		testfixtures.WithSessionUserID(user.ID),
		testfixtures.WithSessionToken("forever"),
		testfixtures.WithSessionTimestamps(now, now),
	)
	for _, s := range []testfixtures.SessionFixture{expiring, forever} {
		if _, err := repos.sessions.CreateSession(ctx, s.Persistence()); err != nil {
			t.Fatalf("CreateSession(%s) returned error: %v", s.Token, err)
		}
	}

	orphan := testfixtures.NewSessionFixture(testfixtures.WithSessionUserID("missing"))
	if _, err := repos.sessions.CreateSession(ctx, orphan.Persistence()); !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
	}

	deleted, err := repos.sessions.DeleteInactiveSessions(ctx, now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("DeleteInactiveSessions returned error: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected only the expired session to be pruned, got %d", deleted)
	}
	if _, err := repos.sessions.GetSession(ctx, "expiring"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected expired session to be gone, got %v", err)
	}

	revoked, err := repos.sessions.RevokeSession(ctx, "forever", now.Add(time.Minute))
	if err != nil {
		t.Fatalf("RevokeSession returned error: %v", err)
	}
	if revoked.RevokedAt == nil {
		t.Fatalf("expected revoked_at to be set")
	}
	if deleted, err := repos.sessions.DeleteInactiveSessions(ctx, now); err != nil || deleted != 1 {
		t.Fatalf("expected revoked session to be pruned, got %d, %v", deleted, err)
	}
}
