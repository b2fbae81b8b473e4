package application

import "time"

// UserRecord is an account as held by the credential store.
type UserRecord struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	Phone        *string
	CreatedAt    time.Time
}

// Identity is the user a session token resolves to. It is loaded from the
// credential store on every resolution.
type Identity struct {
	UserID string
	Email  string
	Name   string
	Role   Role
	Phone  *string
}

// IsAdmin reports whether the identity holds the administrator role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// RegisterParams captures the data required to create an account.
type RegisterParams struct {
	Email    string `field:"email" validate:"required,email,max=254"`
	Name     string `field:"name" validate:"required,max=100"`
	Password string `field:"password" validate:"required,max=128"`
	Phone    string `field:"phone" validate:"omitempty,max=32"`
}

// Session represents an authenticated session issued to a user.
// A nil ExpiresAt means the session does not expire.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// AuthenticateParams captures the data required to authenticate a user.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult captures the outcome of a successful authentication attempt.
type AuthenticateResult struct {
	User    UserRecord
	Session Session
}

// Service is a bookable offering from the catalog.
type Service struct {
	ID          int64
	Name        string
	Description string
	Price       float64
}

// Booking is a persisted reservation. ServiceName is the catalog label copied
// at creation time.
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

// BookingOptions holds the guest counts, add-ons, and note folded into the
// details text of a booking.
type BookingOptions struct {
	Adults   int      `field:"adults" validate:"min=1,max=20"`
	Children int      `field:"children" validate:"min=0,max=20"`
	AddOns   []string `field:"addons" validate:"dive,oneof=Breakfast 'Airport Pickup' 'Late Check-out' 'Extra Bed'"`
	Note     string   `field:"note" validate:"max=1000"`
}

// CreateBookingParams wraps the data required to create a booking.
type CreateBookingParams struct {
	ServiceID   int64          `field:"service_id" validate:"gt=0"`
	BookerName  string         `field:"name" validate:"required,max=100"`
	BookerPhone string         `field:"phone" validate:"required,max=32"`
	BookerEmail string         `field:"email" validate:"required,email,max=254"`
	CheckIn     string         `field:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut    string         `field:"check_out" validate:"required,datetime=2006-01-02"`
	Options     BookingOptions `field:"options"`
}

// UpdateBookingParams holds the five fields an administrator may change.
type UpdateBookingParams struct {
	BookerName  string `field:"name" validate:"required,max=100"`
	BookerPhone string `field:"phone" validate:"required,max=32"`
	BookerEmail string `field:"email" validate:"required,email,max=254"`
	CheckIn     string `field:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut    string `field:"check_out" validate:"required,datetime=2006-01-02"`
}

// SearchQuery filters the administrator booking listing. Empty fields impose
// no filter; the date range applies only when both bounds are set.
type SearchQuery struct {
	Text string
	From string `field:"start_date" validate:"omitempty,datetime=2006-01-02"`
	To   string `field:"end_date" validate:"omitempty,datetime=2006-01-02"`
}
