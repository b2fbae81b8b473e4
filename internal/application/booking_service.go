package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// BookingRepository captures the persistence operations needed by the booking service.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) (int64, error)
	GetBooking(ctx context.Context, id int64) (Booking, error)
	ListBookingsByEmail(ctx context.Context, email string) ([]Booking, error)
	SearchBookings(ctx context.Context, query SearchQuery) ([]Booking, error)
	UpdateBooking(ctx context.Context, id int64, params UpdateBookingParams) error
	DeleteBooking(ctx context.Context, id int64) error
}

// BookingService orchestrates validation and persistence for reservations.
type BookingService struct {
	bookings BookingRepository
	services ServiceRepository
	now      func() time.Time
	logger   *slog.Logger
}

// NewBookingService wires dependencies for the booking service.
func NewBookingService(bookings BookingRepository, services ServiceRepository, now func() time.Time) *BookingService {
	return NewBookingServiceWithLogger(bookings, services, now, nil)
}

// NewBookingServiceWithLogger wires dependencies for the booking service with a specified logger.
func NewBookingServiceWithLogger(bookings BookingRepository, services ServiceRepository, now func() time.Time, logger *slog.Logger) *BookingService {
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		bookings: bookings,
		services: services,
		now:      now,
		logger:   defaultLogger(logger),
	}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

func (s *BookingService) ready() error {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil {
		return fmt.Errorf("booking repository not configured")
	}
	return nil
}

// Create stores a booking for the given service and returns its identifier.
// The service name is copied into the booking and never changes afterwards.
func (s *BookingService) Create(ctx context.Context, params CreateBookingParams) (bookingID int64, err error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	if s.services == nil {
		return 0, fmt.Errorf("service repository not configured")
	}

	logger := s.loggerWith(ctx, "Create", "service_id", params.ServiceID)
	defer func() {
		logResult(ctx, logger, err, "failed to create booking", "booking created", "booking_id", bookingID)
	}()

	var service Service
	service, err = s.services.GetService(ctx, params.ServiceID)
	if err != nil {
		return
	}

	normalized := normalizeCreateBookingParams(params)
	if vErr := validateStruct(normalized); vErr.HasErrors() {
		err = vErr
		return
	}

	booking := Booking{
		BookedAt:    s.now(),
		BookerName:  normalized.BookerName,
		BookerPhone: normalized.BookerPhone,
		BookerEmail: normalized.BookerEmail,
		CheckIn:     normalized.CheckIn,
		CheckOut:    normalized.CheckOut,
		ServiceName: service.Name,
		Details:     FormatDetails(normalized.Options),
	}

	bookingID, err = s.bookings.CreateBooking(ctx, booking)
	return
}

// Get returns one booking or ErrNotFound.
func (s *BookingService) Get(ctx context.Context, id int64) (Booking, error) {
	if err := s.ready(); err != nil {
		return Booking{}, err
	}
	if id <= 0 {
		return Booking{}, ErrNotFound
	}
	return s.bookings.GetBooking(ctx, id)
}

// ListByEmail returns the bookings stored under email, newest first.
func (s *BookingService) ListByEmail(ctx context.Context, email string) ([]Booking, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, nil
	}

	bookings, err := s.bookings.ListBookingsByEmail(ctx, email)
	if err != nil {
		s.loggerWith(ctx, "ListByEmail").ErrorContext(ctx, "failed to list bookings", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	return bookings, nil
}

// Search filters all bookings by free text and check-in range, newest first.
func (s *BookingService) Search(ctx context.Context, query SearchQuery) ([]Booking, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	normalized := SearchQuery{
		Text: strings.TrimSpace(query.Text),
		From: strings.TrimSpace(query.From),
		To:   strings.TrimSpace(query.To),
	}
	if vErr := validateStruct(normalized); vErr.HasErrors() {
		return nil, vErr
	}
	if normalized.From == "" || normalized.To == "" {
		normalized.From, normalized.To = "", ""
	}

	bookings, err := s.bookings.SearchBookings(ctx, normalized)
	if err != nil {
		s.loggerWith(ctx, "Search").ErrorContext(ctx, "failed to search bookings", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	return bookings, nil
}

// Update replaces the name, phone, email, and stay dates of a booking.
func (s *BookingService) Update(ctx context.Context, id int64, params UpdateBookingParams) (err error) {
	if err := s.ready(); err != nil {
		return err
	}

	logger := s.loggerWith(ctx, "Update", "booking_id", id)
	defer func() {
		logResult(ctx, logger, err, "failed to update booking", "booking updated")
	}()

	if id <= 0 {
		err = ErrNotFound
		return
	}

	normalized := UpdateBookingParams{
		BookerName:  strings.TrimSpace(params.BookerName),
		BookerPhone: strings.TrimSpace(params.BookerPhone),
		BookerEmail: strings.TrimSpace(params.BookerEmail),
		CheckIn:     strings.TrimSpace(params.CheckIn),
		CheckOut:    strings.TrimSpace(params.CheckOut),
	}
	if vErr := validateStruct(normalized); vErr.HasErrors() {
		err = vErr
		return
	}

	err = s.bookings.UpdateBooking(ctx, id, normalized)
	return
}

// Delete removes a booking permanently.
func (s *BookingService) Delete(ctx context.Context, id int64) (err error) {
	if err := s.ready(); err != nil {
		return err
	}

	logger := s.loggerWith(ctx, "Delete", "booking_id", id)
	defer func() {
		logResult(ctx, logger, err, "failed to delete booking", "booking deleted")
	}()

	if id <= 0 {
		err = ErrNotFound
		return
	}
	err = s.bookings.DeleteBooking(ctx, id)
	return
}

func normalizeCreateBookingParams(params CreateBookingParams) CreateBookingParams {
	addOns := make([]string, 0, len(params.Options.AddOns))
	for _, addOn := range params.Options.AddOns {
		if trimmed := strings.TrimSpace(addOn); trimmed != "" {
			addOns = append(addOns, trimmed)
		}
	}
	return CreateBookingParams{
		ServiceID:   params.ServiceID,
		BookerName:  strings.TrimSpace(params.BookerName),
		BookerPhone: strings.TrimSpace(params.BookerPhone),
		BookerEmail: strings.TrimSpace(params.BookerEmail),
		CheckIn:     strings.TrimSpace(params.CheckIn),
		CheckOut:    strings.TrimSpace(params.CheckOut),
		Options: BookingOptions{
			Adults:   params.Options.Adults,
			Children: params.Options.Children,
			AddOns:   addOns,
			Note:     strings.TrimSpace(params.Options.Note),
		},
	}
}
