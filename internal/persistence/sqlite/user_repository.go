package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/hotel-booking/internal/persistence"
)

// UserRepository implements persistence.UserRepository using SQLite.
type UserRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(pool *ConnectionPool) *UserRepository {
	return &UserRepository{
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateUser inserts a user. The UNIQUE constraint on email rejects
// duplicates with persistence.ErrDuplicate, including concurrent inserts.
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) error {
	if user.ID == "" || user.PasswordHash == "" {
		return persistence.ErrConstraintViolation
	}

	const query = `
		INSERT INTO users (id, email, name, password_hash, role, phone, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.helper.Exec(ctx, query,
		user.ID,
		normalizeEmail(user.Email),
		user.Name,
		user.PasswordHash,
		user.Role,
		nullableString(user.Phone),
		formatTime(user.CreatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (r *UserRepository) GetUser(ctx context.Context, id string) (persistence.User, error) {
	if id == "" {
		return persistence.User{}, persistence.ErrNotFound
	}
	return r.getUser(ctx, "id", id)
}

// GetUserByEmail retrieves a user by exact email match. Matching is case
// sensitive; surrounding whitespace is ignored.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	normalized := normalizeEmail(email)
	if normalized == "" {
		return persistence.User{}, persistence.ErrNotFound
	}
	return r.getUser(ctx, "email", normalized)
}

func (r *UserRepository) getUser(ctx context.Context, column, value string) (persistence.User, error) {
	query := fmt.Sprintf(`
		SELECT id, email, name, password_hash, role, phone, created_at
		FROM users
		WHERE %s = ?`, column)

	var (
		user      persistence.User
		phone     sql.NullString
		createdAt string
	)
	err := r.helper.QueryRow(ctx, query, value).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.Role,
		&phone,
		&createdAt,
	)
	if err != nil {
		return persistence.User{}, r.mapper.MapError(err)
	}

	if phone.Valid {
		user.Phone = &phone.String
	}
	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.User{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

func nullableString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}
