package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/example/hotel-booking/internal/application"
	"github.com/example/hotel-booking/internal/metrics"
)

type accountService interface {
	Register(ctx context.Context, params application.RegisterParams) (string, error)
}

type authService interface {
	Authenticate(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error)
	Invalidate(ctx context.Context, token string) error
}

// AuthHandler serves registration, login, and logout.
type AuthHandler struct {
	accounts  accountService
	auth      authService
	sessions  *SessionStore
	responder responder
	logger    *slog.Logger
}

func NewAuthHandler(accounts accountService, auth authService, sessions *SessionStore, views *Views, logger *slog.Logger) *AuthHandler {
	base := defaultLogger(logger)
	return &AuthHandler{
		accounts:  accounts,
		auth:      auth,
		sessions:  sessions,
		responder: newResponder(base, views),
		logger:    base,
	}
}

func (h *AuthHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AuthHandler", operation, attrs...)
}

func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.responder.render(w, r, http.StatusOK, pageRegister, viewData{Title: "Register", Content: registerForm{}})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.accounts == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	form := parseRegisterForm(r)
	logger := h.log(r.Context(), "Register")

	userID, err := h.accounts.Register(r.Context(), form.params())
	if err != nil {
		if errors.Is(err, application.ErrDuplicateEmail) {
			metrics.IncRegistration(metrics.OutcomeDuplicate)
			logger.WarnContext(r.Context(), "registration rejected", "error_kind", application.ErrorKind(err))
			if flashErr := h.sessions.AddFlash(w, r, msgDuplicateEmail); flashErr != nil {
				logger.ErrorContext(r.Context(), "failed to queue flash", "error", flashErr)
			}
			h.responder.redirect(w, r, "/register")
			return
		}
		if vErr, ok := validationErrors(err); ok {
			metrics.IncRegistration(metrics.OutcomeInvalid)
			form.Password = ""
			h.responder.render(w, r, http.StatusUnprocessableEntity, pageRegister, viewData{
				Title:   "Register",
				Message: msgInvalidInput,
				Errors:  vErr.FieldErrors,
				Content: form,
			})
			return
		}
		metrics.IncRegistration(metrics.OutcomeFailure)
		h.responder.handleServiceError(w, r, err, "")
		return
	}

	metrics.IncRegistration(metrics.OutcomeSuccess)
	logger.InfoContext(r.Context(), "user registered", "user_id", userID)
	h.responder.redirect(w, r, "/login")
}

func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.responder.render(w, r, http.StatusOK, pageLogin, viewData{
		Title:   "Login",
		Content: loginForm{Next: r.URL.Query().Get("next")},
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.auth == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	form := loginForm{Email: r.PostFormValue("email"), Next: r.PostFormValue("next")}
	if form.Next == "" {
		form.Next = r.URL.Query().Get("next")
	}
	logger := h.log(r.Context(), "Login")

	result, err := h.auth.Authenticate(r.Context(), application.AuthenticateParams{
		Email:    form.Email,
		Password: r.PostFormValue("password"),
	})
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			metrics.IncLoginAttempt(metrics.OutcomeFailure)
			logger.WarnContext(r.Context(), "authentication rejected", "error_kind", application.ErrorKind(err))
			h.responder.render(w, r, http.StatusUnauthorized, pageLogin, viewData{
				Title:   "Login",
				Flashes: []string{msgLoginFailed},
				Content: form,
			})
			return
		}
		logger.ErrorContext(r.Context(), "authentication failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(w, r, err, "")
		return
	}

	if err := h.sessions.SetToken(w, r, result.Session.Token); err != nil {
		logger.ErrorContext(r.Context(), "failed to store session cookie", "error", err)
		h.responder.renderError(w, r, http.StatusInternalServerError, msgInternalError)
		return
	}

	metrics.IncLoginAttempt(metrics.OutcomeSuccess)
	logger.InfoContext(r.Context(), "user authenticated", "user_id", result.User.ID)
	h.responder.redirect(w, r, safeNext(form.Next))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.auth == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Logout")
	token := h.sessions.Token(r)
	if token != "" {
		if err := h.auth.Invalidate(r.Context(), token); err != nil && !application.IsAuthenticationFailure(err) {
			logger.ErrorContext(r.Context(), "failed to invalidate session", "error", err, "error_kind", application.ErrorKind(err))
			h.responder.handleServiceError(w, r, err, "")
			return
		}
	}
	if err := h.sessions.ClearToken(w, r); err != nil {
		logger.ErrorContext(r.Context(), "failed to clear session cookie", "error", err)
	}

	logger.InfoContext(r.Context(), "session invalidated")
	h.responder.redirect(w, r, "/")
}
