package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/hotel-booking/internal/application"
)

// FastArgon2idParams keep password hashing cheap enough for table tests.
var FastArgon2idParams = application.Argon2idParams{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  8,
	KeyLength:   16,
}

// FastPasswordHasher hashes with FastArgon2idParams. VerifyPassword reads the
// parameters back from the encoded hash.
func FastPasswordHasher(password string) (string, error) {
	return application.CreatePasswordHash(password, FastArgon2idParams)
}

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Logger      *slog.Logger
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

func WithLogger(logger *slog.Logger) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Logger = logger
	}
}

// NewAccountService builds the credential store with the fast hasher.
func (f *ServiceFactory) NewAccountService(users application.UserRepository) *application.AccountService {
	return application.NewAccountServiceWithLogger(
		users,
		FastPasswordHasher,
		application.VerifyPassword,
		f.IDGenerator.NextFunc(),
		f.Clock.NowFunc(),
		f.Logger,
	)
}

// AuthServiceDeps captures dependencies for constructing an auth service.
type AuthServiceDeps struct {
	Credentials    application.CredentialStore
	Sessions       application.SessionRepository
	TokenGenerator func() string
	SessionTTL     time.Duration
}

// NewAuthService builds an auth service using the supplied dependencies.
func (f *ServiceFactory) NewAuthService(deps AuthServiceDeps) *application.AuthService {
	token := deps.TokenGenerator
	if token == nil {
		token = f.IDGenerator.NextFunc()
	}
	return application.NewAuthServiceWithLogger(
		deps.Credentials,
		deps.Sessions,
		token,
		f.Clock.NowFunc(),
		deps.SessionTTL,
		f.Logger,
	)
}

func (f *ServiceFactory) NewBookingService(bookings application.BookingRepository, services application.ServiceRepository) *application.BookingService {
	return application.NewBookingServiceWithLogger(bookings, services, f.Clock.NowFunc(), f.Logger)
}

func (f *ServiceFactory) NewCatalogService(services application.ServiceRepository) *application.CatalogService {
	return application.NewCatalogServiceWithLogger(services, f.Logger)
}
