package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/example/hotel-booking/internal/application"
)

type catalogService interface {
	ListAll(ctx context.Context) ([]application.Service, error)
	GetByID(ctx context.Context, id int64) (application.Service, error)
}

type bookingLookup interface {
	Get(ctx context.Context, id int64) (application.Booking, error)
}

type indexContent struct {
	Services  []application.Service
	BookingID string
	Result    *application.Booking
}

// CatalogHandler serves the landing page and the public booking lookup.
type CatalogHandler struct {
	catalog   catalogService
	bookings  bookingLookup
	responder responder
	logger    *slog.Logger
}

func NewCatalogHandler(catalog catalogService, bookings bookingLookup, views *Views, logger *slog.Logger) *CatalogHandler {
	base := defaultLogger(logger)
	return &CatalogHandler{catalog: catalog, bookings: bookings, responder: newResponder(base, views), logger: base}
}

func (h *CatalogHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "CatalogHandler", operation, attrs...)
}

// Index lists the catalog. A booking_id query parameter runs the same lookup
// as Search.
func (h *CatalogHandler) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Has("booking_id") {
		h.lookup(w, r, r.URL.Query().Get("booking_id"))
		return
	}
	h.renderIndex(w, r, http.StatusOK, indexContent{}, "")
}

func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	h.lookup(w, r, r.PostFormValue("booking_id"))
}

func (h *CatalogHandler) lookup(w http.ResponseWriter, r *http.Request, raw string) {
	if h == nil || h.bookings == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	content := indexContent{BookingID: raw}
	id, ok := parseBookingID(raw)
	if !ok {
		h.renderIndex(w, r, http.StatusUnprocessableEntity, content, msgInvalidBookingID)
		return
	}

	logger := h.log(r.Context(), "Search", "booking_id", id)
	booking, err := h.bookings.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			logger.InfoContext(r.Context(), "booking lookup missed")
			h.renderIndex(w, r, http.StatusNotFound, content, msgBookingNotFound)
			return
		}
		logger.ErrorContext(r.Context(), "booking lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(w, r, err, msgBookingNotFound)
		return
	}

	content.Result = &booking
	h.renderIndex(w, r, http.StatusOK, content, "")
}

func (h *CatalogHandler) renderIndex(w http.ResponseWriter, r *http.Request, status int, content indexContent, message string) {
	services, err := h.catalog.ListAll(r.Context())
	if err != nil {
		h.log(r.Context(), "Index").ErrorContext(r.Context(), "failed to list services", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(w, r, err, msgServiceNotFound)
		return
	}
	content.Services = services
	h.responder.render(w, r, status, pageIndex, viewData{Message: message, Content: content})
}
