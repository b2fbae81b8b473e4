package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/hotel-booking/internal/application"
)

type RouterConfig struct {
	Auth     *AuthHandler
	Catalog  *CatalogHandler
	Bookings *BookingHandler
	Admin    *AdminHandler
	Health   *HealthHandler
	Metrics  http.Handler
	// UnguardedDelete exposes POST /admin/delete/{id} without the
	// authentication and role checks.
	UnguardedDelete bool
	Logger          *slog.Logger
	Middleware      []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	logger := defaultLogger(cfg.Logger)

	handle := func(pattern string, h http.Handler) {
		mux.Handle(pattern, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			recordRoute(r.Context(), r.Pattern)
			h.ServeHTTP(w, r)
		}))
	}
	authenticated := func(h http.HandlerFunc) http.Handler {
		return RequireAuthenticated()(h)
	}
	adminOnly := func(h http.HandlerFunc) http.Handler {
		return RequireAuthenticated()(RequireRole(application.RoleAdmin, logger)(h))
	}

	if cfg.Catalog != nil {
		handle("/{$}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Catalog.Index(w, r)
		}))
		handle("/search", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Catalog.Search(w, r)
		}))
	}

	if cfg.Auth != nil {
		handle("/register", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Auth.RegisterForm(w, r)
			case http.MethodPost:
				cfg.Auth.Register(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		handle("/login", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Auth.LoginForm(w, r)
			case http.MethodPost:
				cfg.Auth.Login(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		handle("/logout", authenticated(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Auth.Logout(w, r)
		}))
	}

	if cfg.Bookings != nil {
		handle("/book/{serviceID}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Bookings.BookForm(w, r)
			case http.MethodPost:
				cfg.Bookings.Book(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		handle("/details/{id}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Bookings.Details(w, r)
		}))
		handle("/my_bookings", authenticated(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Bookings.MyBookings(w, r)
		}))
	}

	if cfg.Admin != nil {
		handle("/admin", adminOnly(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Admin.List(w, r)
			case http.MethodPost:
				cfg.Admin.Search(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		handle("/admin/edit/{id}", adminOnly(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Admin.EditForm(w, r)
			case http.MethodPost:
				cfg.Admin.Update(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		handle("/admin/export.csv", adminOnly(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Admin.Export(w, r)
		}))

		deleteBooking := func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Admin.Delete(w, r)
		}
		if cfg.UnguardedDelete {
			logger.Warn("booking deletion route is not access controlled", "route", "/admin/delete/{id}")
			handle("/admin/delete/{id}", http.HandlerFunc(deleteBooking))
		} else {
			handle("/admin/delete/{id}", adminOnly(deleteBooking))
		}
	}

	if cfg.Health != nil {
		handle("/healthz", http.HandlerFunc(cfg.Health.Live))
		handle("/readyz", http.HandlerFunc(cfg.Health.Ready))
	}
	if cfg.Metrics != nil {
		handle("/metrics", cfg.Metrics)
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
