package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/spf13/cast"

	"github.com/example/hotel-booking/internal/application"
)

const dateLayout = "2006-01-02"

type registerForm struct {
	Email    string
	Name     string
	Password string
	Phone    string
}

func parseRegisterForm(r *http.Request) registerForm {
	return registerForm{
		Email:    r.PostFormValue("email"),
		Name:     r.PostFormValue("name"),
		Password: r.PostFormValue("password"),
		Phone:    r.PostFormValue("phone"),
	}
}

func (f registerForm) params() application.RegisterParams {
	return application.RegisterParams{
		Email:    f.Email,
		Name:     f.Name,
		Password: f.Password,
		Phone:    f.Phone,
	}
}

type loginForm struct {
	Email string
	Next  string
}

// bookingForm keeps the submitted values as text so the page can be
// re-rendered exactly as entered.
type bookingForm struct {
	Name     string
	Phone    string
	Email    string
	CheckIn  string
	CheckOut string
	Adults   string
	Children string
	AddOns   []string
	Note     string
}

func newBookingForm() bookingForm {
	defaults := application.DefaultBookingOptions()
	return bookingForm{
		Adults:   strconv.Itoa(defaults.Adults),
		Children: strconv.Itoa(defaults.Children),
	}
}

func parseBookingForm(r *http.Request) bookingForm {
	_ = r.ParseForm()
	return bookingForm{
		Name:     r.PostFormValue("booker_name"),
		Phone:    r.PostFormValue("booker_phone"),
		Email:    r.PostFormValue("booker_email"),
		CheckIn:  r.PostFormValue("check_in_date"),
		CheckOut: r.PostFormValue("check_out_date"),
		Adults:   r.PostFormValue("adults"),
		Children: r.PostFormValue("children"),
		AddOns:   r.PostForm["addons"],
		Note:     r.PostFormValue("special_requests"),
	}
}

// params converts the form into service input. Conversion problems are
// reported with the same field keys the service validation uses.
func (f bookingForm) params(serviceID int64) (application.CreateBookingParams, *application.ValidationError) {
	vErr := &application.ValidationError{FieldErrors: map[string]string{}}
	defaults := application.DefaultBookingOptions()

	params := application.CreateBookingParams{
		ServiceID:   serviceID,
		BookerName:  f.Name,
		BookerPhone: f.Phone,
		BookerEmail: f.Email,
		CheckIn:     normalizeDate(vErr, "check_in", f.CheckIn),
		CheckOut:    normalizeDate(vErr, "check_out", f.CheckOut),
		Options: application.BookingOptions{
			Adults:   parseCount(vErr, "adults", f.Adults, defaults.Adults),
			Children: parseCount(vErr, "children", f.Children, defaults.Children),
			AddOns:   f.AddOns,
			Note:     f.Note,
		},
	}
	return params, vErr
}

type updateForm struct {
	Name     string
	Phone    string
	Email    string
	CheckIn  string
	CheckOut string
}

func updateFormFromBooking(b application.Booking) updateForm {
	return updateForm{
		Name:     b.BookerName,
		Phone:    b.BookerPhone,
		Email:    b.BookerEmail,
		CheckIn:  b.CheckIn,
		CheckOut: b.CheckOut,
	}
}

func parseUpdateForm(r *http.Request) updateForm {
	return updateForm{
		Name:     r.PostFormValue("booker_name"),
		Phone:    r.PostFormValue("booker_phone"),
		Email:    r.PostFormValue("booker_email"),
		CheckIn:  r.PostFormValue("check_in_date"),
		CheckOut: r.PostFormValue("check_out_date"),
	}
}

func (f updateForm) params() (application.UpdateBookingParams, *application.ValidationError) {
	vErr := &application.ValidationError{FieldErrors: map[string]string{}}
	params := application.UpdateBookingParams{
		BookerName:  f.Name,
		BookerPhone: f.Phone,
		BookerEmail: f.Email,
		CheckIn:     normalizeDate(vErr, "check_in", f.CheckIn),
		CheckOut:    normalizeDate(vErr, "check_out", f.CheckOut),
	}
	return params, vErr
}

func parseSearchForm(r *http.Request) (application.SearchQuery, *application.ValidationError) {
	vErr := &application.ValidationError{FieldErrors: map[string]string{}}
	query := application.SearchQuery{
		Text: strings.TrimSpace(r.PostFormValue("search_query")),
		From: normalizeDate(vErr, "start_date", r.PostFormValue("start_date")),
		To:   normalizeDate(vErr, "end_date", r.PostFormValue("end_date")),
	}
	return query, vErr
}

// normalizeDate accepts the common date spellings and rewrites them as
// YYYY-MM-DD. Blank input stays blank so required checks can report it.
func normalizeDate(vErr *application.ValidationError, field, raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}
	if _, err := time.Parse(dateLayout, value); err == nil {
		return value
	}
	parsed, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		addFieldError(vErr, field, strings.ReplaceAll(field, "_", " ")+" must be a date (YYYY-MM-DD)")
		return value
	}
	return parsed.Format(dateLayout)
}

// parseCount coerces a guest count. Blank input takes the default.
func parseCount(vErr *application.ValidationError, field, raw string, fallback int) int {
	value := strings.TrimSpace(raw)
	if value == "" {
		return fallback
	}
	decimal, ok := canonicalDecimal(value)
	if !ok {
		addFieldError(vErr, field, field+" must be a whole number")
		return fallback
	}
	n, err := cast.ToIntE(decimal)
	if err != nil {
		addFieldError(vErr, field, field+" must be a whole number")
		return fallback
	}
	return n
}

// canonicalDecimal accepts an optional minus sign followed by decimal digits
// and drops leading zeros, so cast never sees an octal or hex prefix.
func canonicalDecimal(value string) (string, bool) {
	sign, digits := "", value
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	if digits == "" {
		return "", false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return "", false
		}
	}
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return "0", true
	}
	return sign + digits, true
}

func addFieldError(vErr *application.ValidationError, field, message string) {
	if vErr.FieldErrors == nil {
		vErr.FieldErrors = make(map[string]string)
	}
	if _, exists := vErr.FieldErrors[field]; !exists {
		vErr.FieldErrors[field] = message
	}
}

// parseBookingID accepts only decimal digits, surrounding spaces allowed.
func parseBookingID(raw string) (int64, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, false
	}
	for _, c := range value {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
