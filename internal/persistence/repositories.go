package persistence

import (
	"context"
	"time"
)

// UserRepository stores accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
}

// ServiceRepository exposes the read-only catalog plus the upsert used by seeding.
type ServiceRepository interface {
	ListServices(ctx context.Context) ([]Service, error)
	GetService(ctx context.Context, id int64) (Service, error)
	UpsertService(ctx context.Context, service Service) error
}

// BookingRepository stores reservations.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) (int64, error)
	GetBooking(ctx context.Context, id int64) (Booking, error)
	ListBookingsByEmail(ctx context.Context, email string) ([]Booking, error)
	SearchBookings(ctx context.Context, filter BookingFilter) ([]Booking, error)
	UpdateBooking(ctx context.Context, id int64, changes BookingChanges) error
	DeleteBooking(ctx context.Context, id int64) error
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteInactiveSessions(ctx context.Context, reference time.Time) (int64, error)
}
