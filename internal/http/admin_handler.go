package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/example/hotel-booking/internal/application"
	"github.com/example/hotel-booking/internal/metrics"
)

type bookingAdminService interface {
	Get(ctx context.Context, id int64) (application.Booking, error)
	Search(ctx context.Context, query application.SearchQuery) ([]application.Booking, error)
	Update(ctx context.Context, id int64, params application.UpdateBookingParams) error
	Delete(ctx context.Context, id int64) error
}

type adminContent struct {
	Query    application.SearchQuery
	Bookings []application.Booking
}

type editContent struct {
	ID   int64
	Form updateForm
}

// bookingCSVRow is one line of the administrator export.
type bookingCSVRow struct {
	ID          int64  `csv:"book_id"`
	BookedAt    string `csv:"book_date"`
	ServiceName string `csv:"booked_rooms"`
	BookerName  string `csv:"booker_name"`
	BookerPhone string `csv:"booker_phone"`
	BookerEmail string `csv:"booker_email"`
	CheckIn     string `csv:"check_in_date"`
	CheckOut    string `csv:"check_out_date"`
	Details     string `csv:"details"`
}

// AdminHandler serves the administrator booking management pages.
type AdminHandler struct {
	bookings  bookingAdminService
	responder responder
	logger    *slog.Logger
}

func NewAdminHandler(bookings bookingAdminService, views *Views, logger *slog.Logger) *AdminHandler {
	base := defaultLogger(logger)
	return &AdminHandler{bookings: bookings, responder: newResponder(base, views), logger: base}
}

func (h *AdminHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	attrs = append(attrs, actorAttrs(ctx)...)
	return handlerLogger(ctx, h.logger, "AdminHandler", operation, attrs...)
}

func actorAttrs(ctx context.Context) []any {
	if identity, ok := IdentityFromContext(ctx); ok {
		return []any{"actor_id", identity.UserID}
	}
	return nil
}

// List shows every booking, newest first.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, application.SearchQuery{}, nil)
}

// Search filters bookings by the posted name or id text and check-in range.
func (h *AdminHandler) Search(w http.ResponseWriter, r *http.Request) {
	query, formErr := parseSearchForm(r)
	h.search(w, r, query, formErr)
}

func (h *AdminHandler) search(w http.ResponseWriter, r *http.Request, query application.SearchQuery, formErr *application.ValidationError) {
	if h == nil || h.bookings == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	content := adminContent{Query: query}
	if formErr.HasErrors() {
		h.renderAdmin(w, r, http.StatusUnprocessableEntity, content, formErr)
		return
	}

	bookings, err := h.bookings.Search(r.Context(), query)
	if err != nil {
		if vErr, ok := validationErrors(err); ok {
			h.renderAdmin(w, r, http.StatusUnprocessableEntity, content, vErr)
			return
		}
		h.log(r.Context(), "Search").ErrorContext(r.Context(), "failed to search bookings", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(w, r, err, msgBookingNotFound)
		return
	}

	content.Bookings = bookings
	h.renderAdmin(w, r, http.StatusOK, content, nil)
}

func (h *AdminHandler) renderAdmin(w http.ResponseWriter, r *http.Request, status int, content adminContent, vErr *application.ValidationError) {
	data := viewData{Title: "Manage Bookings", Content: content}
	if vErr.HasErrors() {
		data.Message = msgInvalidInput
		data.Errors = vErr.FieldErrors
	}
	h.responder.render(w, r, status, pageAdmin, data)
}

func (h *AdminHandler) EditForm(w http.ResponseWriter, r *http.Request) {
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
			h.log(r.Context(), "EditForm", "booking_id", id).ErrorContext(r.Context(), "failed to load booking", "error", err, "error_kind", application.ErrorKind(err))
		}
		h.responder.handleServiceError(w, r, err, msgBookingNotFound)
		return
	}

	h.renderEdit(w, r, http.StatusOK, editContent{ID: id, Form: updateFormFromBooking(booking)}, nil)
}

func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.bookings == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := parseBookingID(r.PathValue("id"))
	if !ok {
		h.responder.renderError(w, r, http.StatusNotFound, msgBookingNotFound)
		return
	}

	form := parseUpdateForm(r)
	content := editContent{ID: id, Form: form}
	logger := h.log(r.Context(), "Update", "booking_id", id)

	params, formErr := form.params()
	if formErr.HasErrors() {
		h.renderEdit(w, r, http.StatusUnprocessableEntity, content, formErr)
		return
	}

	if err := h.bookings.Update(r.Context(), id, params); err != nil {
		if vErr, ok := validationErrors(err); ok {
			h.renderEdit(w, r, http.StatusUnprocessableEntity, content, vErr)
			return
		}
		if !errors.Is(err, application.ErrNotFound) {
			logger.ErrorContext(r.Context(), "failed to update booking", "error", err, "error_kind", application.ErrorKind(err))
		}
		h.responder.handleServiceError(w, r, err, msgBookingNotFound)
		return
	}

	metrics.IncBookingUpdated()
	logger.InfoContext(r.Context(), "booking updated by administrator")
	h.responder.redirect(w, r, "/admin")
}

func (h *AdminHandler) renderEdit(w http.ResponseWriter, r *http.Request, status int, content editContent, vErr *application.ValidationError) {
	data := viewData{Title: fmt.Sprintf("Edit Booking #%d", content.ID), Content: content}
	if vErr.HasErrors() {
		data.Message = msgInvalidInput
		data.Errors = vErr.FieldErrors
	}
	h.responder.render(w, r, status, pageEdit, data)
}

func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.bookings == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := parseBookingID(r.PathValue("id"))
	if !ok {
		h.responder.renderError(w, r, http.StatusNotFound, msgBookingNotFound)
		return
	}

	logger := h.log(r.Context(), "Delete", "booking_id", id)
	if err := h.bookings.Delete(r.Context(), id); err != nil {
		if !errors.Is(err, application.ErrNotFound) {
			logger.ErrorContext(r.Context(), "failed to delete booking", "error", err, "error_kind", application.ErrorKind(err))
		}
		h.responder.handleServiceError(w, r, err, msgBookingNotFound)
		return
	}

	metrics.IncBookingDeleted()
	logger.InfoContext(r.Context(), "booking cancelled")
	h.responder.redirect(w, r, "/admin")
}

// Export writes every booking as CSV.
func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.bookings == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Export")
	bookings, err := h.bookings.Search(r.Context(), application.SearchQuery{})
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to load bookings", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(w, r, err, msgBookingNotFound)
		return
	}

	rows := make([]*bookingCSVRow, 0, len(bookings))
	for _, b := range bookings {
		rows = append(rows, &bookingCSVRow{
			ID:          b.ID,
			BookedAt:    b.BookedAt.UTC().Format(time.RFC3339),
			ServiceName: spreadsheetSafe(b.ServiceName),
			BookerName:  spreadsheetSafe(b.BookerName),
			BookerPhone: spreadsheetSafe(b.BookerPhone),
			BookerEmail: spreadsheetSafe(b.BookerEmail),
			CheckIn:     spreadsheetSafe(b.CheckIn),
			CheckOut:    spreadsheetSafe(b.CheckOut),
			Details:     spreadsheetSafe(b.Details),
		})
	}

	var buf bytes.Buffer
	if err := gocsv.Marshal(rows, &buf); err != nil {
		logger.ErrorContext(r.Context(), "failed to encode bookings", "error", err)
		h.responder.renderError(w, r, http.StatusInternalServerError, msgInternalError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="bookings.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logger.ErrorContext(r.Context(), "failed to write export", "error", err)
		return
	}
	logger.InfoContext(r.Context(), "bookings exported", "count", len(rows))
}

// spreadsheetSafe quotes cells a spreadsheet would otherwise evaluate as a
// formula.
func spreadsheetSafe(value string) string {
	if value == "" {
		return value
	}
	switch value[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + value
	}
	return value
}
