package persistence

import "time"

// User represents an account row. Role is stored as text and validated by the schema.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         string
	Phone        *string
	CreatedAt    time.Time
}

// Service represents a bookable offering from the catalog.
type Service struct {
	ID          int64
	Name        string
	Description string
	Price       float64
}

// Booking represents a row of the book_order table.
type Booking struct {
	ID          int64
	BookedAt    time.Time
	BookerName  string
	BookerPhone string
	BookerEmail string
	CheckIn     string
	CheckOut    string
	ServiceName string
	Details     string
}

// BookingChanges holds the booking columns an administrator may rewrite.
type BookingChanges struct {
	BookerName  string
	BookerPhone string
	BookerEmail string
	CheckIn     string
	CheckOut    string
}

// BookingFilter narrows booking searches. Empty fields impose no filter; the
// date range applies only when both bounds are set.
type BookingFilter struct {
	Text         string
	CheckInFrom  string
	CheckInUntil string
}

// Session represents an authentication session persisted for a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}
