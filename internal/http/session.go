package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

const (
	defaultSessionCookieName = "booking_session"
	sessionTokenKey          = "token"
)

// SessionOptions configures the signed browser cookie.
type SessionOptions struct {
	CookieName string
	// TTL of zero issues a browser-session cookie with no expiry.
	TTL    time.Duration
	Secure bool
}

// SessionStore keeps the opaque session token and pending flash messages in a
// signed cookie. No user data is stored in the cookie.
type SessionStore struct {
	store *sessions.CookieStore
	name  string
}

// NewSessionStore creates a cookie store signed with secret.
func NewSessionStore(secret []byte, opts SessionOptions) *SessionStore {
	store := sessions.NewCookieStore(secret)

	maxAge := 0
	if opts.TTL > 0 {
		maxAge = int(opts.TTL / time.Second)
	}
	store.MaxAge(maxAge)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = opts.Secure
	store.Options.SameSite = http.SameSiteLaxMode

	name := opts.CookieName
	if name == "" {
		name = defaultSessionCookieName
	}
	return &SessionStore{store: store, name: name}
}

// session returns the cookie session for r. A cookie that fails signature
// checks yields an empty session; the store still hands one back together
// with the decode error.
func (s *SessionStore) session(r *http.Request) *sessions.Session {
	session, _ := s.store.Get(r, s.name)
	if session == nil {
		session = sessions.NewSession(s.store, s.name)
	}
	return session
}

// Token returns the session token carried by the request, if any.
func (s *SessionStore) Token(r *http.Request) string {
	token, _ := s.session(r).Values[sessionTokenKey].(string)
	return token
}

// SetToken stores token in the cookie.
func (s *SessionStore) SetToken(w http.ResponseWriter, r *http.Request, token string) error {
	session := s.session(r)
	session.Values[sessionTokenKey] = token
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("save session cookie: %w", err)
	}
	return nil
}

// ClearToken removes the token and keeps pending flashes.
func (s *SessionStore) ClearToken(w http.ResponseWriter, r *http.Request) error {
	session := s.session(r)
	if _, ok := session.Values[sessionTokenKey]; !ok {
		return nil
	}
	delete(session.Values, sessionTokenKey)
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("save session cookie: %w", err)
	}
	return nil
}

// AddFlash queues a message for the next rendered page.
func (s *SessionStore) AddFlash(w http.ResponseWriter, r *http.Request, message string) error {
	session := s.session(r)
	session.AddFlash(message)
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("save session cookie: %w", err)
	}
	return nil
}

// Flashes drains queued messages. The cookie is rewritten only when something
// was consumed.
func (s *SessionStore) Flashes(w http.ResponseWriter, r *http.Request) ([]string, error) {
	session := s.session(r)
	values := session.Flashes()
	if len(values) == 0 {
		return nil, nil
	}

	messages := make([]string, 0, len(values))
	for _, v := range values {
		if msg, ok := v.(string); ok {
			messages = append(messages, msg)
		}
	}
	if err := session.Save(r, w); err != nil {
		return messages, fmt.Errorf("save session cookie: %w", err)
	}
	return messages, nil
}
