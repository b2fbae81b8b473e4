package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// CredentialStore exposes the account operations required by the auth service.
type CredentialStore interface {
	VerifyLogin(ctx context.Context, email, password string) (UserRecord, error)
	FindByID(ctx context.Context, id string) (UserRecord, error)
}

// SessionRepository captures the persistence interactions for issued sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteInactiveSessions(ctx context.Context, reference time.Time) (int64, error)
}

// AuthService issues, resolves, and invalidates sessions.
type AuthService struct {
	credentials    CredentialStore
	sessions       SessionRepository
	tokenGenerator func() string
	now            func() time.Time
	sessionTTL     time.Duration
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService. A sessionTTL of zero issues
// sessions that never expire.
func NewAuthService(credentials CredentialStore, sessions SessionRepository, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration) *AuthService {
	return NewAuthServiceWithLogger(credentials, sessions, tokenGenerator, now, sessionTTL, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(credentials CredentialStore, sessions SessionRepository, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	if tokenGenerator == nil {
		tokenGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL < 0 {
		sessionTTL = 0
	}
	return &AuthService{
		credentials:    credentials,
		sessions:       sessions,
		tokenGenerator: tokenGenerator,
		now:            now,
		sessionTTL:     sessionTTL,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Authenticate validates credentials and issues a new session token.
func (s *AuthService) Authenticate(ctx context.Context, params AuthenticateParams) (result AuthenticateResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.credentials == nil {
		err = fmt.Errorf("credential store not configured")
		return
	}
	if s.sessions == nil {
		err = fmt.Errorf("session repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Authenticate")
	defer func() {
		logResult(ctx, logger, err, "authentication failed", "authentication succeeded",
			"user_id", result.User.ID,
			"session_id", result.Session.ID,
		)
	}()

	var user UserRecord
	user, err = s.credentials.VerifyLogin(ctx, params.Email, params.Password)
	if err != nil {
		return
	}

	now := s.now()
	id := s.tokenGenerator()
	token := s.tokenGenerator()
	if token == "" {
		token = id
	}
	if token == "" {
		err = fmt.Errorf("token generator returned an empty token")
		return
	}

	session := Session{
		ID:        id,
		UserID:    user.ID,
		Token:     token,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if s.sessionTTL > 0 {
		expiresAt := now.Add(s.sessionTTL)
		session.ExpiresAt = &expiresAt
	}

	session, err = s.sessions.CreateSession(ctx, session)
	if err != nil {
		return
	}

	result = AuthenticateResult{User: user, Session: session}
	return
}

// Resolve maps a session token to the identity it was issued for. The user is
// read from the credential store on every call.
func (s *AuthService) Resolve(ctx context.Context, token string) (identity Identity, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.sessions == nil {
		err = fmt.Errorf("session repository not configured")
		return
	}
	if s.credentials == nil {
		err = fmt.Errorf("credential store not configured")
		return
	}

	trimmed := strings.TrimSpace(token)
	logger := s.loggerWith(ctx, "Resolve", "token_provided", trimmed != "")
	defer func() {
		if err != nil {
			if ErrorKind(err) == "unexpected" {
				logger.ErrorContext(ctx, "session resolution failed", "error", err, "error_kind", ErrorKind(err))
				return
			}
			logger.DebugContext(ctx, "session rejected", "error_kind", ErrorKind(err))
			return
		}
		logger.DebugContext(ctx, "session resolved", "user_id", identity.UserID)
	}()

	if trimmed == "" {
		err = ErrUnauthenticated
		return
	}

	var session Session
	session, err = s.sessions.GetSession(ctx, trimmed)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrUnauthenticated
		}
		return
	}

	if session.RevokedAt != nil {
		err = ErrSessionRevoked
		return
	}
	if session.ExpiresAt != nil && !session.ExpiresAt.After(s.now()) {
		err = ErrSessionExpired
		return
	}

	var user UserRecord
	user, err = s.credentials.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrUnauthenticated
		}
		return
	}

	identity = Identity{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
		Phone:  user.Phone,
	}
	return
}

// Invalidate revokes the session identified by token.
func (s *AuthService) Invalidate(ctx context.Context, token string) (err error) {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if s.sessions == nil {
		return fmt.Errorf("session repository not configured")
	}

	trimmed := strings.TrimSpace(token)
	logger := s.loggerWith(ctx, "Invalidate", "token_provided", trimmed != "")
	defer func() {
		logResult(ctx, logger, err, "failed to revoke session", "session revoked")
	}()

	if trimmed == "" {
		err = ErrUnauthenticated
		return
	}

	if _, err = s.sessions.RevokeSession(ctx, trimmed, s.now()); err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrUnauthenticated
		}
		return
	}
	return nil
}

// PruneSessions deletes revoked sessions and sessions past their expiry.
func (s *AuthService) PruneSessions(ctx context.Context) (deleted int64, err error) {
	if s == nil {
		return 0, fmt.Errorf("AuthService is nil")
	}
	if s.sessions == nil {
		return 0, fmt.Errorf("session repository not configured")
	}

	logger := s.loggerWith(ctx, "PruneSessions")
	defer func() {
		logResult(ctx, logger, err, "failed to prune sessions", "sessions pruned", "deleted", deleted)
	}()

	deleted, err = s.sessions.DeleteInactiveSessions(ctx, s.now())
	return
}
