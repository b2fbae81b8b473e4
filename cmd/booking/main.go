package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/hotel-booking/internal/application"
	"github.com/example/hotel-booking/internal/config"
	httptransport "github.com/example/hotel-booking/internal/http"
	"github.com/example/hotel-booking/internal/jobs"
	"github.com/example/hotel-booking/internal/logging"
	"github.com/example/hotel-booking/internal/metrics"
	"github.com/example/hotel-booking/internal/persistence"
	"github.com/example/hotel-booking/internal/persistence/sqlite"
	"github.com/example/hotel-booking/internal/seed"
)

func main() {
	bootstrap := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := config.LoadDotEnv(); err != nil {
		bootstrap.Error("failed to read .env", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		bootstrap.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, logCloser := logging.New(os.Stdout, logging.Options{Level: cfg.SlogLevel(), File: cfg.LogFile})
	defer closeQuietly(logCloser)

	if err := run(cfg, logger); err != nil {
		logger.Error("booking service stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := sqlite.Open(cfg.SQLiteDSN, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(ctx); err != nil {
		return err
	}

	if cfg.SeedFile != "" {
		if err := applySeed(ctx, cfg.SeedFile, storage, logger); err != nil {
			return err
		}
	}

	metrics.Register()

	app := newApp(appDeps{
		Storage: storage,
		Config:  cfg,
		Logger:  logger,
	})

	scheduler := jobs.NewScheduler(logger)
	if err := scheduler.RegisterSessionPruning(cfg.SessionPruneSchedule, app.auth); err != nil {
		return err
	}
	scheduler.Start()
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := scheduler.Stop(stopCtx); err != nil {
			logger.Error("failed to stop scheduler", "error", err)
		}
	}()

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("booking site listening", "addr", server.Addr, "csrf", cfg.CSRFEnabled())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func applySeed(ctx context.Context, path string, storage *sqlite.Storage, logger *slog.Logger) error {
	file, err := seed.LoadFile(path)
	if err != nil {
		return err
	}
	if err := file.Validate(); err != nil {
		return err
	}
	result, err := seed.NewSeeder(storage.Services, storage.Users, uuid.NewString, time.Now, logger).Apply(ctx, file)
	if err != nil {
		return err
	}
	logger.Info("seed applied",
		"services", result.ServicesUpserted,
		"administrators_created", result.AdministratorsCreated,
		"administrators_skipped", result.AdministratorsSkipped,
	)
	return nil
}

// appDeps carries what newApp needs. Zero-valued functions fall back to the
// production implementations.
type appDeps struct {
	Storage *sqlite.Storage
	Config  config.Config
	Logger  *slog.Logger

	Now            func() time.Time
	IDGenerator    func() string
	PasswordHasher application.PasswordHasher
}

type app struct {
	handler http.Handler
	auth    *application.AuthService
}

func newApp(deps appDeps) *app {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	idGenerator := deps.IDGenerator
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	hasher := deps.PasswordHasher
	if hasher == nil {
		hasher = application.HashPassword
	}
	cfg := deps.Config
	logger := deps.Logger

	userRepo := newUserRepositoryAdapter(deps.Storage.Users)
	serviceRepo := newServiceRepositoryAdapter(deps.Storage.Services)
	bookingRepo := newBookingRepositoryAdapter(deps.Storage.Bookings)
	sessionRepo := newSessionRepositoryAdapter(deps.Storage.Sessions)

	accountService := application.NewAccountServiceWithLogger(userRepo, hasher, application.VerifyPassword, idGenerator, now, logger)
	authService := application.NewAuthServiceWithLogger(accountService, sessionRepo, idGenerator, now, cfg.SessionTTL, logger)
	catalogService := application.NewCatalogServiceWithLogger(serviceRepo, logger)
	bookingService := application.NewBookingServiceWithLogger(bookingRepo, serviceRepo, now, logger)

	sessions := httptransport.NewSessionStore([]byte(cfg.SessionSecret), httptransport.SessionOptions{
		TTL:    cfg.SessionTTL,
		Secure: cfg.CookieSecure,
	})
	views := httptransport.MustNewViews(sessions)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:            httptransport.NewAuthHandler(accountService, authService, sessions, views, logger),
		Catalog:         httptransport.NewCatalogHandler(catalogService, bookingService, views, logger),
		Bookings:        httptransport.NewBookingHandler(catalogService, bookingService, sessions, views, logger),
		Admin:           httptransport.NewAdminHandler(bookingService, views, logger),
		Health:          httptransport.NewHealthHandler(deps.Storage, logger),
		Metrics:         metrics.Handler(),
		UnguardedDelete: cfg.AdminDeleteUnguarded,
		Logger:          logger,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.CSRFProtection([]byte(cfg.CSRFKey), cfg.CookieSecure, logger),
			httptransport.LoadSession(sessions, authService, logger),
		},
	})

	return &app{handler: router, auth: authService}
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}

// mapError translates persistence sentinels into the application errors the
// services branch on.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return application.ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return errors.Join(application.ErrAlreadyExists, err)
	}
	return err
}

type userRepositoryAdapter struct {
	repo persistence.UserRepository
}

func newUserRepositoryAdapter(repo persistence.UserRepository) *userRepositoryAdapter {
	return &userRepositoryAdapter{repo: repo}
}

func (a *userRepositoryAdapter) CreateUser(ctx context.Context, user application.UserRecord) error {
	if !user.Role.Valid() {
		return fmt.Errorf("create user %s: unknown role %d", user.Email, user.Role)
	}
	return mapError(a.repo.CreateUser(ctx, toPersistenceUser(user)))
}

func (a *userRepositoryAdapter) GetUser(ctx context.Context, id string) (application.UserRecord, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.UserRecord{}, mapError(err)
	}
	return toApplicationUser(stored)
}

func (a *userRepositoryAdapter) GetUserByEmail(ctx context.Context, email string) (application.UserRecord, error) {
	stored, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return application.UserRecord{}, mapError(err)
	}
	return toApplicationUser(stored)
}

type serviceRepositoryAdapter struct {
	repo persistence.ServiceRepository
}

func newServiceRepositoryAdapter(repo persistence.ServiceRepository) *serviceRepositoryAdapter {
	return &serviceRepositoryAdapter{repo: repo}
}

func (a *serviceRepositoryAdapter) ListServices(ctx context.Context) ([]application.Service, error) {
	stored, err := a.repo.ListServices(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	services := make([]application.Service, 0, len(stored))
	for _, s := range stored {
		services = append(services, toApplicationService(s))
	}
	return services, nil
}

func (a *serviceRepositoryAdapter) GetService(ctx context.Context, id int64) (application.Service, error) {
	stored, err := a.repo.GetService(ctx, id)
	if err != nil {
		return application.Service{}, mapError(err)
	}
	return toApplicationService(stored), nil
}

type bookingRepositoryAdapter struct {
	repo persistence.BookingRepository
}

func newBookingRepositoryAdapter(repo persistence.BookingRepository) *bookingRepositoryAdapter {
	return &bookingRepositoryAdapter{repo: repo}
}

func (a *bookingRepositoryAdapter) CreateBooking(ctx context.Context, booking application.Booking) (int64, error) {
	id, err := a.repo.CreateBooking(ctx, toPersistenceBooking(booking))
	return id, mapError(err)
}

func (a *bookingRepositoryAdapter) GetBooking(ctx context.Context, id int64) (application.Booking, error) {
	stored, err := a.repo.GetBooking(ctx, id)
	if err != nil {
		return application.Booking{}, mapError(err)
	}
	return toApplicationBooking(stored), nil
}

func (a *bookingRepositoryAdapter) ListBookingsByEmail(ctx context.Context, email string) ([]application.Booking, error) {
	stored, err := a.repo.ListBookingsByEmail(ctx, email)
	if err != nil {
		return nil, mapError(err)
	}
	return toApplicationBookings(stored), nil
}

func (a *bookingRepositoryAdapter) SearchBookings(ctx context.Context, query application.SearchQuery) ([]application.Booking, error) {
	stored, err := a.repo.SearchBookings(ctx, persistence.BookingFilter{
		Text:         query.Text,
		CheckInFrom:  query.From,
		CheckInUntil: query.To,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return toApplicationBookings(stored), nil
}

func (a *bookingRepositoryAdapter) UpdateBooking(ctx context.Context, id int64, params application.UpdateBookingParams) error {
	return mapError(a.repo.UpdateBooking(ctx, id, persistence.BookingChanges{
		BookerName:  params.BookerName,
		BookerPhone: params.BookerPhone,
		BookerEmail: params.BookerEmail,
		CheckIn:     params.CheckIn,
		CheckOut:    params.CheckOut,
	}))
}

func (a *bookingRepositoryAdapter) DeleteBooking(ctx context.Context, id int64) error {
	return mapError(a.repo.DeleteBooking(ctx, id))
}

type sessionRepositoryAdapter struct {
	repo persistence.SessionRepository
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.CreateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, mapError(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, token string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, mapError(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (application.Session, error) {
	stored, err := a.repo.RevokeSession(ctx, token, revokedAt)
	if err != nil {
		return application.Session{}, mapError(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) DeleteInactiveSessions(ctx context.Context, reference time.Time) (int64, error) {
	deleted, err := a.repo.DeleteInactiveSessions(ctx, reference)
	return deleted, mapError(err)
}

func toApplicationUser(model persistence.User) (application.UserRecord, error) {
	role, err := application.ParseRole(model.Role)
	if err != nil {
		return application.UserRecord{}, err
	}
	return application.UserRecord{
		ID:           model.ID,
		Email:        model.Email,
		Name:         model.Name,
		PasswordHash: model.PasswordHash,
		Role:         role,
		Phone:        cloneString(model.Phone),
		CreatedAt:    model.CreatedAt,
	}, nil
}

func toPersistenceUser(user application.UserRecord) persistence.User {
	return persistence.User{
		ID:           user.ID,
		Email:        user.Email,
		Name:         user.Name,
		PasswordHash: user.PasswordHash,
		Role:         user.Role.String(),
		Phone:        cloneString(user.Phone),
		CreatedAt:    user.CreatedAt,
	}
}

func toApplicationService(model persistence.Service) application.Service {
	return application.Service{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		Price:       model.Price,
	}
}

func toApplicationBooking(model persistence.Booking) application.Booking {
	return application.Booking{
		ID:          model.ID,
		BookedAt:    model.BookedAt,
		BookerName:  model.BookerName,
		BookerPhone: model.BookerPhone,
		BookerEmail: model.BookerEmail,
		CheckIn:     model.CheckIn,
		CheckOut:    model.CheckOut,
		ServiceName: model.ServiceName,
		Details:     model.Details,
	}
}

func toApplicationBookings(models []persistence.Booking) []application.Booking {
	bookings := make([]application.Booking, 0, len(models))
	for _, m := range models {
		bookings = append(bookings, toApplicationBooking(m))
	}
	return bookings
}

func toPersistenceBooking(booking application.Booking) persistence.Booking {
	return persistence.Booking{
		ID:          booking.ID,
		BookedAt:    booking.BookedAt,
		BookerName:  booking.BookerName,
		BookerPhone: booking.BookerPhone,
		BookerEmail: booking.BookerEmail,
		CheckIn:     booking.CheckIn,
		CheckOut:    booking.CheckOut,
		ServiceName: booking.ServiceName,
		Details:     booking.Details,
	}
}

func toApplicationSession(model persistence.Session) application.Session {
	return application.Session{
		ID:        model.ID,
		UserID:    model.UserID,
		Token:     model.Token,
		ExpiresAt: cloneTime(model.ExpiresAt),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
		RevokedAt: cloneTime(model.RevokedAt),
	}
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:        session.ID,
		UserID:    session.UserID,
		Token:     session.Token,
		ExpiresAt: cloneTime(session.ExpiresAt),
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		RevokedAt: cloneTime(session.RevokedAt),
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
