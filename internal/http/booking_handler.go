package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/example/hotel-booking/internal/application"
	"github.com/example/hotel-booking/internal/metrics"
)

type bookingService interface {
	Create(ctx context.Context, params application.CreateBookingParams) (int64, error)
	Get(ctx context.Context, id int64) (application.Booking, error)
	ListByEmail(ctx context.Context, email string) ([]application.Booking, error)
}

type bookContent struct {
	Service application.Service
	AddOns  []string
	Form    bookingForm
}

// BookingHandler serves the booking form, booking details, and the signed-in
// user's own bookings.
type BookingHandler struct {
	catalog   catalogService
	bookings  bookingService
	sessions  *SessionStore
	responder responder
	logger    *slog.Logger
}

func NewBookingHandler(catalog catalogService, bookings bookingService, sessions *SessionStore, views *Views, logger *slog.Logger) *BookingHandler {
	base := defaultLogger(logger)
	return &BookingHandler{
		catalog:   catalog,
		bookings:  bookings,
		sessions:  sessions,
		responder: newResponder(base, views),
		logger:    base,
	}
}

func (h *BookingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BookingHandler", operation, attrs...)
}

func (h *BookingHandler) service(w http.ResponseWriter, r *http.Request) (application.Service, bool) {
	id, ok := parseBookingID(r.PathValue("serviceID"))
	if !ok {
		h.responder.renderError(w, r, http.StatusNotFound, msgServiceNotFound)
		return application.Service{}, false
	}
	service, err := h.catalog.GetByID(r.Context(), id)
	if err != nil {
		if !errors.Is(err, application.ErrNotFound) {
			h.log(r.Context(), "LoadService", "service_id", id).ErrorContext(r.Context(), "failed to load service", "error", err, "error_kind", application.ErrorKind(err))
		}
		h.responder.handleServiceError(w, r, err, msgServiceNotFound)
		return application.Service{}, false
	}
	return service, true
}

func (h *BookingHandler) BookForm(w http.ResponseWriter, r *http.Request) {
	service, ok := h.service(w, r)
	if !ok {
		return
	}

	form := newBookingForm()
	if identity, ok := IdentityFromContext(r.Context()); ok {
		form.Name = identity.Name
		form.Email = identity.Email
		if identity.Phone != nil {
			form.Phone = *identity.Phone
		}
	}
	h.renderBookForm(w, r, http.StatusOK, service, form, nil)
}

func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.bookings == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	service, ok := h.service(w, r)
	if !ok {
		return
	}

	form := parseBookingForm(r)
	logger := h.log(r.Context(), "Book", "service_id", service.ID)

	params, formErr := form.params(service.ID)
	if formErr.HasErrors() {
		h.renderBookForm(w, r, http.StatusUnprocessableEntity, service, form, formErr)
		return
	}

	id, err := h.bookings.Create(r.Context(), params)
	if err != nil {
		if vErr, ok := validationErrors(err); ok {
			h.renderBookForm(w, r, http.StatusUnprocessableEntity, service, form, vErr)
			return
		}
		logger.ErrorContext(r.Context(), "failed to create booking", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(w, r, err, msgServiceNotFound)
		return
	}

	metrics.IncBookingCreated(service.Name)
	if err := h.sessions.AddFlash(w, r, msgBookingSuccessful); err != nil {
		logger.ErrorContext(r.Context(), "failed to queue flash", "error", err)
	}
	logger.InfoContext(r.Context(), "booking submitted", "booking_id", id)
	h.responder.redirect(w, r, fmt.Sprintf("/details/%d", id))
}

func (h *BookingHandler) renderBookForm(w http.ResponseWriter, r *http.Request, status int, service application.Service, form bookingForm, vErr *application.ValidationError) {
	data := viewData{
		Title:   "Book " + service.Name,
		Content: bookContent{Service: service, AddOns: application.AvailableAddOns, Form: form},
	}
	if vErr.HasErrors() {
		data.Message = msgInvalidInput
		data.Errors = vErr.FieldErrors
	}
	h.responder.render(w, r, status, pageBook, data)
}

func (h *BookingHandler) Details(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.bookings == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := parseBookingID(r.PathValue("id"))
	if !ok {
		h.responder.renderError(w, r, http.StatusNotFound, msgBookingNotFound)
		return
	}

	booking, err := h.bookings.Get(r.Context(), id)
	if err != nil {
		if !errors.Is(err, application.ErrNotFound) {
			h.log(r.Context(), "Details", "booking_id", id).ErrorContext(r.Context(), "failed to load booking", "error", err, "error_kind", application.ErrorKind(err))
		}
		h.responder.handleServiceError(w, r, err, msgBookingNotFound)
		return
	}

	h.responder.render(w, r, http.StatusOK, pageDetails, viewData{
		Title:   fmt.Sprintf("Booking #%d", booking.ID),
		Content: booking,
	})
}

func (h *BookingHandler) MyBookings(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.bookings == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(w, r, application.ErrUnauthenticated, "")
		return
	}

	bookings, err := h.bookings.ListByEmail(r.Context(), identity.Email)
	if err != nil {
		h.log(r.Context(), "MyBookings").ErrorContext(r.Context(), "failed to list bookings", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(w, r, err, msgBookingNotFound)
		return
	}

	h.responder.render(w, r, http.StatusOK, pageMyBookings, viewData{Title: "My Bookings", Content: bookings})
}
