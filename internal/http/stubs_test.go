package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/example/hotel-booking/internal/application"
)

var testSessionSecret = []byte("0123456789abcdef0123456789abcdef")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type accountServiceStub struct {
	mu       sync.Mutex
	err      error
	userID   string
	received []application.RegisterParams
}

func (s *accountServiceStub) Register(ctx context.Context, params application.RegisterParams) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received = append(s.received, params)
	if s.err != nil {
		return "", s.err
	}
	return s.userID, nil
}

type authServiceStub struct {
	mu          sync.Mutex
	result      application.AuthenticateResult
	err         error
	invalidated []string
}

func (s *authServiceStub) Authenticate(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error) {
	if s.err != nil {
		return application.AuthenticateResult{}, s.err
	}
	return s.result, nil
}

func (s *authServiceStub) Invalidate(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidated = append(s.invalidated, token)
	return nil
}

type resolverStub struct {
	identities map[string]application.Identity
	errs       map[string]error
}

func (s resolverStub) Resolve(ctx context.Context, token string) (application.Identity, error) {
	if err, ok := s.errs[token]; ok {
		return application.Identity{}, err
	}
	if identity, ok := s.identities[token]; ok {
		return identity, nil
	}
	return application.Identity{}, application.ErrUnauthenticated
}

type catalogServiceStub struct {
	services []application.Service
	err      error
}

func (s catalogServiceStub) ListAll(ctx context.Context) ([]application.Service, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.services, nil
}

func (s catalogServiceStub) GetByID(ctx context.Context, id int64) (application.Service, error) {
	for _, svc := range s.services {
		if svc.ID == id {
			return svc, nil
		}
	}
	return application.Service{}, application.ErrNotFound
}

// bookingServiceStub satisfies both the public and administrator booking
// interfaces and records mutations.
type bookingServiceStub struct {
	mu          sync.Mutex
	bookings    map[int64]application.Booking
	nextID      int64
	createErr   error
	created     []application.CreateBookingParams
	queries     []application.SearchQuery
	updated     map[int64]application.UpdateBookingParams
	deleted     []int64
	mutateCalls int
}

func newBookingServiceStub(bookings ...application.Booking) *bookingServiceStub {
	stub := &bookingServiceStub{bookings: map[int64]application.Booking{}, updated: map[int64]application.UpdateBookingParams{}}
	for _, b := range bookings {
		stub.bookings[b.ID] = b
		if b.ID > stub.nextID {
			stub.nextID = b.ID
		}
	}
	return stub
}

func (s *bookingServiceStub) Create(ctx context.Context, params application.CreateBookingParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mutateCalls++
	if s.createErr != nil {
		return 0, s.createErr
	}
	s.created = append(s.created, params)
	s.nextID++
	s.bookings[s.nextID] = application.Booking{
		ID:          s.nextID,
		BookerName:  params.BookerName,
		BookerPhone: params.BookerPhone,
		BookerEmail: params.BookerEmail,
		CheckIn:     params.CheckIn,
		CheckOut:    params.CheckOut,
		Details:     application.FormatDetails(params.Options),
	}
	return s.nextID, nil
}

func (s *bookingServiceStub) Get(ctx context.Context, id int64) (application.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return application.Booking{}, application.ErrNotFound
	}
	return b, nil
}

func (s *bookingServiceStub) ListByEmail(ctx context.Context, email string) ([]application.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []application.Booking
	for _, b := range s.bookings {
		if b.BookerEmail == email {
			out = append(out, b)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *bookingServiceStub) Search(ctx context.Context, query application.SearchQuery) ([]application.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	out := make([]application.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		if query.Text != "" && !strings.Contains(strings.ToLower(b.BookerName), strings.ToLower(query.Text)) {
			continue
		}
		out = append(out, b)
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *bookingServiceStub) Update(ctx context.Context, id int64, params application.UpdateBookingParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mutateCalls++
	b, ok := s.bookings[id]
	if !ok {
		return application.ErrNotFound
	}
	s.updated[id] = params
	b.BookerName = params.BookerName
	b.BookerPhone = params.BookerPhone
	b.BookerEmail = params.BookerEmail
	b.CheckIn = params.CheckIn
	b.CheckOut = params.CheckOut
	s.bookings[id] = b
	return nil
}

func (s *bookingServiceStub) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mutateCalls++
	if _, ok := s.bookings[id]; !ok {
		return application.ErrNotFound
	}
	delete(s.bookings, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *bookingServiceStub) mutations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutateCalls
}

func sortNewestFirst(bookings []application.Booking) {
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].ID > bookings[j].ID })
}

type pingerStub struct {
	err error
}

func (p pingerStub) Ping(ctx context.Context) error {
	return p.err
}

const (
	userToken  = "user-token"
	adminToken = "admin-token"
)

var (
	testUser = application.Identity{
		UserID: "user-1",
		Email:  "guest@example.com",
		Name:   "Guest",
		Role:   application.RoleUser,
	}
	testAdmin = application.Identity{
		UserID: "admin-1",
		Email:  "admin@example.com",
		Name:   "Admin",
		Role:   application.RoleAdmin,
	}
	testServices = []application.Service{
		{ID: 1, Name: "Standard Room", Description: "Queen bed", Price: 100},
		{ID: 2, Name: "Deluxe Suite", Description: "Ocean view", Price: 250.5},
	}
)

// testApp wires the full router against stubs.
type testApp struct {
	handler  http.Handler
	sessions *SessionStore
	accounts *accountServiceStub
	auth     *authServiceStub
	bookings *bookingServiceStub
	resolver resolverStub
}

type testAppOptions struct {
	bookings        bookingService
	adminBookings   bookingAdminService
	unguardedDelete bool
	resolverErrs    map[string]error
	pinger          Pinger
	logger          *slog.Logger
	csrfKey         []byte
}

func newTestApp(t *testing.T, opts testAppOptions) *testApp {
	t.Helper()

	logger := opts.logger
	if logger == nil {
		logger = discardLogger()
	}

	sessions := NewSessionStore(testSessionSecret, SessionOptions{})
	views, err := NewViews(sessions)
	if err != nil {
		t.Fatalf("NewViews returned error: %v", err)
	}

	app := &testApp{
		sessions: sessions,
		accounts: &accountServiceStub{userID: "user-new"},
		auth:     &authServiceStub{},
		bookings: newBookingServiceStub(),
		resolver: resolverStub{
			identities: map[string]application.Identity{userToken: testUser, adminToken: testAdmin},
			errs:       opts.resolverErrs,
		},
	}

	var bookings bookingService = app.bookings
	if opts.bookings != nil {
		bookings = opts.bookings
	}
	var adminBookings bookingAdminService = app.bookings
	if opts.adminBookings != nil {
		adminBookings = opts.adminBookings
	}
	catalog := catalogServiceStub{services: testServices}

	app.handler = NewRouter(RouterConfig{
		Auth:            NewAuthHandler(app.accounts, app.auth, sessions, views, logger),
		Catalog:         NewCatalogHandler(catalog, bookings, views, logger),
		Bookings:        NewBookingHandler(catalog, bookings, sessions, views, logger),
		Admin:           NewAdminHandler(adminBookings, views, logger),
		Health:          NewHealthHandler(opts.pinger, logger),
		UnguardedDelete: opts.unguardedDelete,
		Logger:          logger,
		Middleware: []func(http.Handler) http.Handler{
			RequestLogger(logger),
			CSRFProtection(opts.csrfKey, false, logger),
			LoadSession(sessions, app.resolver, logger),
		},
	})
	return app
}

// sessionCookie returns the signed cookie a browser would hold after login.
func (a *testApp) sessionCookie(t *testing.T, token string) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if err := a.sessions.SetToken(rec, req, token); err != nil {
		t.Fatalf("SetToken returned error: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("expected a session cookie")
	}
	return cookies[0]
}

func (a *testApp) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		if c != nil {
			req.AddCookie(c)
		}
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodGet, path, nil), cookies...)
}

func (a *testApp) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req, cookies...)
}

// responseCookie returns the last cookie named name set by rec.
func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			found = c
		}
	}
	return found
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d (body %q)", want, rec.Code, rec.Body.String())
	}
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	assertStatus(t, rec, http.StatusSeeOther)
	if got := rec.Header().Get("Location"); got != location {
		t.Fatalf("expected redirect to %q, got %q", location, got)
	}
}

func assertBodyContains(t *testing.T, rec *httptest.ResponseRecorder, fragments ...string) {
	t.Helper()
	body := rec.Body.String()
	for _, fragment := range fragments {
		if !strings.Contains(body, fragment) {
			t.Fatalf("expected body to contain %q, got %q", fragment, body)
		}
	}
}

var testNow = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
