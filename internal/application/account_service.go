package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// UserRepository captures the persistence operations needed by the account service.
type UserRepository interface {
	CreateUser(ctx context.Context, user UserRecord) error
	GetUser(ctx context.Context, id string) (UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (UserRecord, error)
}

// PasswordHasher produces a digest for a raw password.
type PasswordHasher func(password string) (string, error)

// PasswordVerifier compares a stored hash with a candidate password.
type PasswordVerifier func(hashedPassword, password string) error

// AccountService is the credential store: registration, lookup, and login checks.
type AccountService struct {
	users        UserRepository
	hashPassword PasswordHasher
	verify       PasswordVerifier
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewAccountService wires dependencies for the account service.
func NewAccountService(users UserRepository, hasher PasswordHasher, verify PasswordVerifier, idGenerator func() string, now func() time.Time) *AccountService {
	return NewAccountServiceWithLogger(users, hasher, verify, idGenerator, now, nil)
}

// NewAccountServiceWithLogger wires dependencies for the account service with a specified logger.
func NewAccountServiceWithLogger(users UserRepository, hasher PasswordHasher, verify PasswordVerifier, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AccountService {
	if hasher == nil {
		hasher = HashPassword
	}
	if verify == nil {
		verify = VerifyPassword
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AccountService{
		users:        users,
		hashPassword: hasher,
		verify:       verify,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *AccountService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AccountService", operation, attrs...)
}

// Register creates an account with role user and returns its identifier.
// Duplicate emails fail with ErrDuplicateEmail.
func (s *AccountService) Register(ctx context.Context, params RegisterParams) (userID string, err error) {
	if s == nil {
		return "", fmt.Errorf("AccountService is nil")
	}
	if s.users == nil {
		return "", fmt.Errorf("user repository not configured")
	}

	normalized := normalizeRegisterParams(params)
	logger := s.loggerWith(ctx, "Register", "email", normalized.Email)
	defer func() {
		logResult(ctx, logger, err, "registration failed", "account registered", "user_id", userID)
	}()

	if vErr := validateStruct(normalized); vErr.HasErrors() {
		err = vErr
		return
	}

	var hash string
	hash, err = s.hashPassword(normalized.Password)
	if err != nil {
		err = fmt.Errorf("hash password: %w", err)
		return
	}

	user := UserRecord{
		ID:           s.idGenerator(),
		Email:        normalized.Email,
		Name:         normalized.Name,
		PasswordHash: hash,
		Role:         RoleUser,
		CreatedAt:    s.now(),
	}
	if normalized.Phone != "" {
		phone := normalized.Phone
		user.Phone = &phone
	}

	if err = s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			err = ErrDuplicateEmail
		}
		return
	}

	userID = user.ID
	return
}

// FindByEmail returns the account registered under email. Matching is exact.
func (s *AccountService) FindByEmail(ctx context.Context, email string) (UserRecord, error) {
	if s == nil {
		return UserRecord{}, fmt.Errorf("AccountService is nil")
	}
	if s.users == nil {
		return UserRecord{}, fmt.Errorf("user repository not configured")
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return UserRecord{}, ErrNotFound
	}
	return s.users.GetUserByEmail(ctx, email)
}

// FindByID returns the account with the given identifier.
func (s *AccountService) FindByID(ctx context.Context, id string) (UserRecord, error) {
	if s == nil {
		return UserRecord{}, fmt.Errorf("AccountService is nil")
	}
	if s.users == nil {
		return UserRecord{}, fmt.Errorf("user repository not configured")
	}
	if strings.TrimSpace(id) == "" {
		return UserRecord{}, ErrNotFound
	}
	return s.users.GetUser(ctx, id)
}

// VerifyLogin checks a password against the stored digest. An unknown email
// and a wrong password both return ErrInvalidCredentials.
func (s *AccountService) VerifyLogin(ctx context.Context, email, password string) (user UserRecord, err error) {
	if s == nil {
		return UserRecord{}, fmt.Errorf("AccountService is nil")
	}
	if s.users == nil {
		return UserRecord{}, fmt.Errorf("user repository not configured")
	}

	email = strings.TrimSpace(email)
	logger := s.loggerWith(ctx, "VerifyLogin", "email", email)
	defer func() {
		logResult(ctx, logger, err, "login rejected", "login verified", "user_id", user.ID)
	}()

	if email == "" || password == "" {
		err = ErrInvalidCredentials
		return
	}

	var record UserRecord
	record, err = s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Spend the same hashing work as a real comparison.
			_ = s.verify(s.placeholderHash(), password)
			err = ErrInvalidCredentials
		}
		return
	}

	if err = s.verify(record.PasswordHash, password); err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			logger.ErrorContext(ctx, "stored password hash unusable", "user_id", record.ID, "error", err)
		}
		err = ErrInvalidCredentials
		return
	}

	user = record
	return
}

func (s *AccountService) placeholderHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hashPassword("placeholder-password")
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}

func normalizeRegisterParams(params RegisterParams) RegisterParams {
	return RegisterParams{
		Email:    strings.TrimSpace(params.Email),
		Name:     strings.TrimSpace(params.Name),
		Password: params.Password,
		Phone:    strings.TrimSpace(params.Phone),
	}
}
