package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/hotel-booking/internal/application"
	"github.com/example/hotel-booking/internal/persistence"
)

var (
	userCounter    uint64
	serviceCounter uint64
	bookingCounter uint64
	sessionCounter uint64
)

var referenceTime = time.Date(2025, time.March, 1, 9, 30, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic account that can be materialised
// for application or persistence tests.
type UserFixture struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         application.Role
	Phone        *string
	CreatedAt    time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	fixture := UserFixture{
		ID:           id,
		Email:        fmt.Sprintf("%s@example.com", id),
		Name:         fmt.Sprintf("User %03d", idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		Role:         application.RoleUser,
		CreatedAt:    referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

func WithUserID(id string) UserOption {
	return func(f *UserFixture) { f.ID = id }
}

func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) { f.Email = email }
}

func WithUserName(name string) UserOption {
	return func(f *UserFixture) { f.Name = name }
}

func WithUserPasswordHash(hash string) UserOption {
	return func(f *UserFixture) { f.PasswordHash = hash }
}

// WithUserAdmin grants the administrator role.
func WithUserAdmin() UserOption {
	return func(f *UserFixture) { f.Role = application.RoleAdmin }
}

func WithUserPhone(phone string) UserOption {
	return func(f *UserFixture) { f.Phone = &phone }
}

func WithUserCreatedAt(t time.Time) UserOption {
	return func(f *UserFixture) { f.CreatedAt = t }
}

// Application converts the fixture into the credential store record.
func (f UserFixture) Application() application.UserRecord {
	return application.UserRecord{
		ID:           f.ID,
		Email:        f.Email,
		Name:         f.Name,
		PasswordHash: f.PasswordHash,
		Role:         f.Role,
		Phone:        cloneString(f.Phone),
		CreatedAt:    f.CreatedAt,
	}
}

// Persistence converts the fixture into a users row.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:           f.ID,
		Email:        f.Email,
		Name:         f.Name,
		PasswordHash: f.PasswordHash,
		Role:         f.Role.String(),
		Phone:        cloneString(f.Phone),
		CreatedAt:    f.CreatedAt,
	}
}

// ---------------------------- Service fixtures ----------------------------

// ServiceFixture is a catalog entry.
type ServiceFixture struct {
	ID          int64
	Name        string
	Description string
	Price       float64
}

type ServiceOption func(*ServiceFixture)

func NewServiceFixture(opts ...ServiceOption) ServiceFixture {
	idx := atomic.AddUint64(&serviceCounter, 1)
	fixture := ServiceFixture{
		ID:          int64(idx),
		Name:        fmt.Sprintf("Room %03d", idx),
		Description: fmt.Sprintf("Room %03d description", idx),
		Price:       100,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

func WithServiceID(id int64) ServiceOption {
	return func(f *ServiceFixture) { f.ID = id }
}

func WithServiceName(name string) ServiceOption {
	return func(f *ServiceFixture) { f.Name = name }
}

func WithServiceDescription(description string) ServiceOption {
	return func(f *ServiceFixture) { f.Description = description }
}

func WithServicePrice(price float64) ServiceOption {
	return func(f *ServiceFixture) { f.Price = price }
}

func (f ServiceFixture) Application() application.Service {
	return application.Service{ID: f.ID, Name: f.Name, Description: f.Description, Price: f.Price}
}

func (f ServiceFixture) Persistence() persistence.Service {
	return persistence.Service{ID: f.ID, Name: f.Name, Description: f.Description, Price: f.Price}
}

// ---------------------------- Booking fixtures ----------------------------

// BookingFixture is a stored reservation. ID stays zero so the database
// assigns it.
type BookingFixture struct {
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

type BookingOption func(*BookingFixture)

func NewBookingFixture(opts ...BookingOption) BookingFixture {
	idx := atomic.AddUint64(&bookingCounter, 1)
	fixture := BookingFixture{
		BookedAt:    referenceTime.Add(time.Duration(idx) * time.Minute),
		BookerName:  fmt.Sprintf("Guest %03d", idx),
		BookerPhone: fmt.Sprintf("0900-000-%03d", idx),
		BookerEmail: fmt.Sprintf("guest-%03d@example.com", idx),
		CheckIn:     "2025-05-01",
		CheckOut:    "2025-05-03",
		ServiceName: "Standard Room",
		Details:     application.FormatDetails(application.DefaultBookingOptions()),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

func WithBookingBookedAt(t time.Time) BookingOption {
	return func(f *BookingFixture) { f.BookedAt = t }
}

func WithBookingBooker(name, phone, email string) BookingOption {
	return func(f *BookingFixture) {
		f.BookerName = name
		f.BookerPhone = phone
		f.BookerEmail = email
	}
}

func WithBookingEmail(email string) BookingOption {
	return func(f *BookingFixture) { f.BookerEmail = email }
}

// WithBookingStay sets the check-in and check-out dates (YYYY-MM-DD).
func WithBookingStay(checkIn, checkOut string) BookingOption {
	return func(f *BookingFixture) {
		f.CheckIn = checkIn
		f.CheckOut = checkOut
	}
}

func WithBookingServiceName(name string) BookingOption {
	return func(f *BookingFixture) { f.ServiceName = name }
}

func WithBookingDetails(details string) BookingOption {
	return func(f *BookingFixture) { f.Details = details }
}

func (f BookingFixture) Application() application.Booking {
	return application.Booking{
		ID:          f.ID,
		BookedAt:    f.BookedAt,
		BookerName:  f.BookerName,
		BookerPhone: f.BookerPhone,
		BookerEmail: f.BookerEmail,
		CheckIn:     f.CheckIn,
		CheckOut:    f.CheckOut,
		ServiceName: f.ServiceName,
		Details:     f.Details,
	}
}

func (f BookingFixture) Persistence() persistence.Booking {
	return persistence.Booking{
		ID:          f.ID,
		BookedAt:    f.BookedAt,
		BookerName:  f.BookerName,
		BookerPhone: f.BookerPhone,
		BookerEmail: f.BookerEmail,
		CheckIn:     f.CheckIn,
		CheckOut:    f.CheckOut,
		ServiceName: f.ServiceName,
		Details:     f.Details,
	}
}

// ---------------------------- Session fixtures ----------------------------

// SessionFixture is an issued session. A nil ExpiresAt never expires.
type SessionFixture struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

type SessionOption func(*SessionFixture)

func NewSessionFixture(opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	fixture := SessionFixture{
		ID:        fmt.Sprintf("session-%03d", idx),
		UserID:    fmt.Sprintf("user-%03d", idx),
		Token:     fmt.Sprintf("token-%03d", idx),
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

func WithSessionID(id string) SessionOption {
	return func(f *SessionFixture) { f.ID = id }
}

func WithSessionUserID(id string) SessionOption {
	return func(f *SessionFixture) { f.UserID = id }
}

func WithSessionToken(token string) SessionOption {
	return func(f *SessionFixture) { f.Token = token }
}

func WithSessionExpiresAt(t time.Time) SessionOption {
	return func(f *SessionFixture) { f.ExpiresAt = &t }
}

func WithSessionRevokedAt(t time.Time) SessionOption {
	return func(f *SessionFixture) { f.RevokedAt = &t }
}

func WithSessionTimestamps(created, updated time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

func (f SessionFixture) Application() application.Session {
	return application.Session{
		ID:        f.ID,
		UserID:    f.UserID,
		Token:     f.Token,
		ExpiresAt: cloneTime(f.ExpiresAt),
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
		RevokedAt: cloneTime(f.RevokedAt),
	}
}

func (f SessionFixture) Persistence() persistence.Session {
	return persistence.Session{
		ID:        f.ID,
		UserID:    f.UserID,
		Token:     f.Token,
		ExpiresAt: cloneTime(f.ExpiresAt),
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
		RevokedAt: cloneTime(f.RevokedAt),
	}
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
