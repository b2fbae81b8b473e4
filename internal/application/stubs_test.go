package application

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

func cheapHasher(password string) (string, error) {
	return CreatePasswordHash(password, testArgon2idParams)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func sequence(values ...string) func() string {
	var mu sync.Mutex
	next := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		if next >= len(values) {
			return "fallback-" + strconv.Itoa(next)
		}
		value := values[next]
		next++
		return value
	}
}

// userRepositoryStub provides an in-memory UserRepository with a unique email index.
type userRepositoryStub struct {
	mu        sync.Mutex
	byID      map[string]UserRecord
	createErr error
	getErr    error
	lookups   int
}

func newUserRepositoryStub(users ...UserRecord) *userRepositoryStub {
	stub := &userRepositoryStub{byID: make(map[string]UserRecord)}
	for _, user := range users {
		stub.byID[user.ID] = user
	}
	return stub
}

func (s *userRepositoryStub) CreateUser(ctx context.Context, user UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	for _, existing := range s.byID {
		if existing.Email == user.Email {
			return ErrAlreadyExists
		}
	}
	s.byID[user.ID] = user
	return nil
}

func (s *userRepositoryStub) GetUser(ctx context.Context, id string) (UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return UserRecord{}, s.getErr
	}
	user, ok := s.byID[id]
	if !ok {
		return UserRecord{}, ErrNotFound
	}
	return user, nil
}

func (s *userRepositoryStub) GetUserByEmail(ctx context.Context, email string) (UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	if s.getErr != nil {
		return UserRecord{}, s.getErr
	}
	for _, user := range s.byID {
		if user.Email == email {
			return user, nil
		}
	}
	return UserRecord{}, ErrNotFound
}

// credentialStoreStub implements CredentialStore for tests.
type credentialStoreStub struct {
	user      UserRecord
	password  string
	verifyErr error
	findErr   error
	findCalls int
}

func (c *credentialStoreStub) VerifyLogin(ctx context.Context, email, password string) (UserRecord, error) {
	if c.verifyErr != nil {
		return UserRecord{}, c.verifyErr
	}
	if email != c.user.Email || password != c.password {
		return UserRecord{}, ErrInvalidCredentials
	}
	return c.user, nil
}

func (c *credentialStoreStub) FindByID(ctx context.Context, id string) (UserRecord, error) {
	c.findCalls++
	if c.findErr != nil {
		return UserRecord{}, c.findErr
	}
	if id != c.user.ID {
		return UserRecord{}, ErrNotFound
	}
	return c.user, nil
}

// sessionRepositoryStub provides an in-memory implementation of SessionRepository for tests.
type sessionRepositoryStub struct {
	mu          sync.Mutex
	sessions    map[string]Session
	createErr   error
	getErr      error
	deleteErr   error
	deleteCalls []time.Time
}

func newSessionRepositoryStub() *sessionRepositoryStub {
	return &sessionRepositoryStub{sessions: make(map[string]Session)}
}

func (s *sessionRepositoryStub) seed(session Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = session
}

func (s *sessionRepositoryStub) CreateSession(ctx context.Context, session Session) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return Session{}, s.createErr
	}
	s.sessions[session.Token] = session
	return session, nil
}

func (s *sessionRepositoryStub) GetSession(ctx context.Context, token string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return Session{}, s.getErr
	}
	session, ok := s.sessions[token]
	if !ok {
		return Session{}, ErrNotFound
	}
	return session, nil
}

func (s *sessionRepositoryStub) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok {
		return Session{}, ErrNotFound
	}
	if session.RevokedAt == nil {
		at := revokedAt
		session.RevokedAt = &at
	}
	s.sessions[token] = session
	return session, nil
}

func (s *sessionRepositoryStub) DeleteInactiveSessions(ctx context.Context, reference time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCalls = append(s.deleteCalls, reference)
	if s.deleteErr != nil {
		return 0, s.deleteErr
	}
	var deleted int64
	for token, session := range s.sessions {
		if session.RevokedAt != nil || (session.ExpiresAt != nil && !session.ExpiresAt.After(reference)) {
			delete(s.sessions, token)
			deleted++
		}
	}
	return deleted, nil
}

// serviceRepositoryStub serves a fixed catalog.
type serviceRepositoryStub struct {
	services []Service
	err      error
}

func (s *serviceRepositoryStub) ListServices(ctx context.Context) ([]Service, error) {
	if s.err != nil {
		return nil, s.err
	}
	return append([]Service(nil), s.services...), nil
}

func (s *serviceRepositoryStub) GetService(ctx context.Context, id int64) (Service, error) {
	if s.err != nil {
		return Service{}, s.err
	}
	for _, service := range s.services {
		if service.ID == id {
			return service, nil
		}
	}
	return Service{}, ErrNotFound
}

// bookingRepositoryStub keeps bookings in memory with AUTOINCREMENT style ids.
type bookingRepositoryStub struct {
	mu        sync.Mutex
	nextID    int64
	bookings  map[int64]Booking
	createErr error
	queries   []SearchQuery
}

func newBookingRepositoryStub() *bookingRepositoryStub {
	return &bookingRepositoryStub{bookings: make(map[int64]Booking)}
}

func (s *bookingRepositoryStub) CreateBooking(ctx context.Context, booking Booking) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return 0, s.createErr
	}
	s.nextID++
	booking.ID = s.nextID
	s.bookings[booking.ID] = booking
	return booking.ID, nil
}

func (s *bookingRepositoryStub) GetBooking(ctx context.Context, id int64) (Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	booking, ok := s.bookings[id]
	if !ok {
		return Booking{}, ErrNotFound
	}
	return booking, nil
}

func (s *bookingRepositoryStub) ListBookingsByEmail(ctx context.Context, email string) ([]Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Booking
	for _, booking := range s.bookings {
		if booking.BookerEmail == email {
			out = append(out, booking)
		}
	}
	sortDescending(out)
	return out, nil
}

func (s *bookingRepositoryStub) SearchBookings(ctx context.Context, query SearchQuery) ([]Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	var out []Booking
	for _, booking := range s.bookings {
		if query.Text != "" &&
			!strings.Contains(strings.ToLower(booking.BookerName), strings.ToLower(query.Text)) &&
			!strings.Contains(strconv.FormatInt(booking.ID, 10), query.Text) {
			continue
		}
		if query.From != "" && query.To != "" && (booking.CheckIn < query.From || booking.CheckIn > query.To) {
			continue
		}
		out = append(out, booking)
	}
	sortDescending(out)
	return out, nil
}

func (s *bookingRepositoryStub) UpdateBooking(ctx context.Context, id int64, params UpdateBookingParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	booking, ok := s.bookings[id]
	if !ok {
		return ErrNotFound
	}
	booking.BookerName = params.BookerName
	booking.BookerPhone = params.BookerPhone
	booking.BookerEmail = params.BookerEmail
	booking.CheckIn = params.CheckIn
	booking.CheckOut = params.CheckOut
	s.bookings[id] = booking
	return nil
}

func (s *bookingRepositoryStub) DeleteBooking(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[id]; !ok {
		return ErrNotFound
	}
	delete(s.bookings, id)
	return nil
}

func sortDescending(bookings []Booking) {
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].ID > bookings[j].ID })
}
