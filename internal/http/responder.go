package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/example/hotel-booking/internal/application"
)

const (
	msgBookingNotFound   = "Booking not found"
	msgServiceNotFound   = "Service not found"
	msgInvalidBookingID  = "Invalid Input: ID must be numeric."
	msgAccessDenied      = "Access Denied: You are not an administrator."
	msgDuplicateEmail    = "Email already exists."
	msgLoginFailed       = "Login failed. Please check your email and password."
	msgBookingSuccessful = "Booking Successful! Thank you for your reservation."
	msgInvalidInput      = "Please correct the highlighted fields."
	msgInternalError     = "Something went wrong. Please try again later."
)

type responder struct {
	logger *slog.Logger
	views  *Views
}

func newResponder(logger *slog.Logger, views *Views) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger, views: views}
}

// render writes a full page. Template failures fall back to a plain 500.
func (r responder) render(w http.ResponseWriter, req *http.Request, status int, page string, data viewData) {
	ctx := req.Context()
	if r.views == nil {
		r.writeText(ctx, w, status, data.Message)
		return
	}
	if err := r.views.render(w, req, status, page, data); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to render page", "page", page, "error", err)
		if w.Header().Get("Content-Type") == "" {
			r.writeText(ctx, w, http.StatusInternalServerError, msgInternalError)
		}
	}
}

// writeText writes a terse plain text body.
func (r responder) writeText(ctx context.Context, w http.ResponseWriter, status int, message string) {
	if w == nil {
		return
	}
	if message == "" {
		message = http.StatusText(status)
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(message)); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to write response", "error", err)
	}
}

func (r responder) redirect(w http.ResponseWriter, req *http.Request, location string) {
	http.Redirect(w, req, location, http.StatusSeeOther)
}

func (r responder) renderError(w http.ResponseWriter, req *http.Request, status int, message string) {
	r.render(w, req, status, pageError, viewData{Title: http.StatusText(status), Message: message})
}

// handleServiceError maps application errors that no handler treats
// specially. notFound is the message shown for ErrNotFound.
func (r responder) handleServiceError(w http.ResponseWriter, req *http.Request, err error, notFound string) {
	ctx := req.Context()
	if err == nil {
		err = errors.New("unknown error")
	}

	switch {
	case errors.Is(err, application.ErrNotFound):
		r.renderError(w, req, http.StatusNotFound, notFound)
	case application.IsAuthenticationFailure(err):
		r.redirect(w, req, loginRedirectTarget(req))
	case errors.Is(err, application.ErrForbidden):
		r.writeText(ctx, w, http.StatusForbidden, msgAccessDenied)
	default:
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "error", err, "error_kind", application.ErrorKind(err))
		r.renderError(w, req, http.StatusInternalServerError, msgInternalError)
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func validationErrors(err error) (*application.ValidationError, bool) {
	var vErr *application.ValidationError
	if errors.As(err, &vErr) && vErr.HasErrors() {
		return vErr, true
	}
	return nil, false
}
