package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/hotel-booking/internal/persistence"
)

const bookingColumns = `book_id, book_date, booker_name, booker_phone, booker_email,
	check_in_date, check_out_date, booked_rooms, details`

// BookingRepository implements persistence.BookingRepository using SQLite.
type BookingRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewBookingRepository creates a new SQLite booking repository.
func NewBookingRepository(pool *ConnectionPool) *BookingRepository {
	return &BookingRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateBooking inserts a booking and returns its AUTOINCREMENT identifier.
// The supplied ID is ignored.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking persistence.Booking) (int64, error) {
	var id int64
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO book_order (book_date, booker_name, booker_phone, booker_email,
				check_in_date, check_out_date, booked_rooms, details)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			formatTime(booking.BookedAt),
			booking.BookerName,
			booking.BookerPhone,
			booking.BookerEmail,
			booking.CheckIn,
			booking.CheckOut,
			booking.ServiceName,
			booking.Details,
		)
		if err != nil {
			return r.mapper.MapError(err)
		}
		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read booking id: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetBooking retrieves a booking by id.
func (r *BookingRepository) GetBooking(ctx context.Context, id int64) (persistence.Booking, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+bookingColumns+` FROM book_order WHERE book_id = ?`, id)
	booking, err := scanBooking(row)
	if err != nil {
		return persistence.Booking{}, r.mapper.MapError(err)
	}
	return booking, nil
}

// ListBookingsByEmail returns bookings whose stored email equals email, newest first.
func (r *BookingRepository) ListBookingsByEmail(ctx context.Context, email string) ([]persistence.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+`
		FROM book_order
		WHERE booker_email = ?
		ORDER BY book_id DESC`, email)
}

// SearchBookings filters bookings by free text and check-in range, newest first.
// Text matches a case-insensitive substring of the booker name or a substring
// of the decimal booking id. The range is inclusive and applies only when both
// bounds are present.
func (r *BookingRepository) SearchBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error) {
	query, args := buildSearchQuery(filter)
	return r.list(ctx, query, args...)
}

func buildSearchQuery(filter persistence.BookingFilter) (string, []any) {
	var (
		conditions []string
		args       []any
	)

	if text := strings.TrimSpace(filter.Text); text != "" {
		pattern := "%" + escapeLike(strings.ToLower(text)) + "%"
		conditions = append(conditions,
			`(`+foldCaseFunction+`(booker_name) LIKE ? ESCAPE '\' OR CAST(book_id AS TEXT) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}

	from := strings.TrimSpace(filter.CheckInFrom)
	until := strings.TrimSpace(filter.CheckInUntil)
	if from != "" && until != "" {
		conditions = append(conditions, `check_in_date BETWEEN ? AND ?`)
		args = append(args, from, until)
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + bookingColumns + ` FROM book_order`)
	if len(conditions) > 0 {
		b.WriteString(` WHERE `)
		b.WriteString(strings.Join(conditions, ` AND `))
	}
	b.WriteString(` ORDER BY book_id DESC`)
	return b.String(), args
}

// UpdateBooking rewrites the five editable columns. booked_rooms and details
// are never touched.
func (r *BookingRepository) UpdateBooking(ctx context.Context, id int64, changes persistence.BookingChanges) error {
	result, err := r.helper.Exec(ctx, `
		UPDATE book_order
		SET booker_name = ?, booker_phone = ?, booker_email = ?, check_in_date = ?, check_out_date = ?
		WHERE book_id = ?`,
		changes.BookerName,
		changes.BookerPhone,
		changes.BookerEmail,
		changes.CheckIn,
		changes.CheckOut,
		id,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireAffected(result)
}

// DeleteBooking physically removes a booking.
func (r *BookingRepository) DeleteBooking(ctx context.Context, id int64) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM book_order WHERE book_id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireAffected(result)
}

func (r *BookingRepository) list(ctx context.Context, query string, args ...any) ([]persistence.Booking, error) {
	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var bookings []persistence.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return bookings, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (persistence.Booking, error) {
	var (
		booking  persistence.Booking
		bookedAt string
	)
	err := row.Scan(
		&booking.ID,
		&bookedAt,
		&booking.BookerName,
		&booking.BookerPhone,
		&booking.BookerEmail,
		&booking.CheckIn,
		&booking.CheckOut,
		&booking.ServiceName,
		&booking.Details,
	)
	if err != nil {
		return persistence.Booking{}, err
	}
	if booking.BookedAt, err = parseTime(bookedAt); err != nil {
		return persistence.Booking{}, fmt.Errorf("failed to parse book_date: %w", err)
	}
	return booking, nil
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}
