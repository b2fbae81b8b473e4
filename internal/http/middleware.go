package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/gorilla/csrf"

	"github.com/example/hotel-booking/internal/application"
	"github.com/example/hotel-booking/internal/logging"
	"github.com/example/hotel-booking/internal/metrics"
)

const unmatchedRoute = "unmatched"

// IdentityResolver turns a session token into the current identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (application.Identity, error)
}

// LoadSession resolves the cookie token and attaches the identity to the
// request context. Requests without a usable session continue anonymously
// and a stale token is removed from the cookie.
func LoadSession(sessions *SessionStore, resolver IdentityResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger, nil)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessions.Token(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				if application.IsAuthenticationFailure(err) {
					responder.loggerFor(r.Context()).InfoContext(r.Context(), "discarding stale session", "error_kind", application.ErrorKind(err))
					if clearErr := sessions.ClearToken(w, r); clearErr != nil {
						responder.loggerFor(r.Context()).ErrorContext(r.Context(), "failed to clear session cookie", "error", clearErr)
					}
					next.ServeHTTP(w, r)
					return
				}
				responder.loggerFor(r.Context()).ErrorContext(r.Context(), "session lookup failed", "error", err, "error_kind", application.ErrorKind(err))
				responder.writeText(r.Context(), w, http.StatusInternalServerError, msgInternalError)
				return
			}

			ctx := logging.WithAttrs(ContextWithIdentity(r.Context(), identity), "user_id", identity.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuthenticated sends anonymous requests to the login page, keeping
// the requested path so the user returns to it afterwards.
func RequireAuthenticated() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := IdentityFromContext(r.Context()); !ok {
				http.Redirect(w, r, loginRedirectTarget(r), http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole rejects identities whose role differs from role. It expects
// RequireAuthenticated to have run first.
func RequireRole(role application.Role, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger, nil)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				http.Redirect(w, r, loginRedirectTarget(r), http.StatusSeeOther)
				return
			}
			if identity.Role != role {
				responder.loggerFor(r.Context()).WarnContext(r.Context(), "role check rejected request",
					"user_id", identity.UserID,
					"role", identity.Role.String(),
					"required", role.String(),
					"error_kind", application.ErrorKind(application.ErrForbidden),
				)
				responder.writeText(r.Context(), w, http.StatusForbidden, msgAccessDenied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CSRFProtection returns gorilla/csrf protection for unsafe methods, or nil
// when no key is configured. NewRouter skips nil middleware.
func CSRFProtection(key []byte, secure bool, logger *slog.Logger) func(http.Handler) http.Handler {
	if len(key) == 0 {
		return nil
	}
	responder := newResponder(logger, nil)

	return csrf.Protect(key,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			responder.loggerFor(r.Context()).WarnContext(r.Context(), "csrf check failed", "reason", csrf.FailureReason(r))
			responder.writeText(r.Context(), w, http.StatusForbidden, "Forbidden: invalid form token.")
		})),
	)
}

func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	var counter atomic.Uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := counter.Add(1)
			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			route := &routeHolder{}
			ctx := contextWithRouteHolder(ContextWithLogger(r.Context(), logger), route)
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			start := time.Now()
			logger.InfoContext(ctx, "request started")
			next.ServeHTTP(recorder, r.WithContext(ctx))
			elapsed := time.Since(start)

			pattern := route.pattern
			if pattern == "" {
				pattern = unmatchedRoute
			}
			metrics.ObserveHTTPRequest(r.Method, pattern, recorder.status, elapsed)
			logger.InfoContext(ctx, "request completed", "status", recorder.status, "route", pattern, "duration", elapsed)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(status int) {
	if !r.wroteHeader {
		r.status = status
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func loginRedirectTarget(r *http.Request) string {
	return "/login?next=" + url.QueryEscape(r.URL.RequestURI())
}
