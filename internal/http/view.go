package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/gorilla/csrf"

	"github.com/example/hotel-booking/internal/application"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageIndex      = "index.html"
	pageRegister   = "register.html"
	pageLogin      = "login.html"
	pageBook       = "book.html"
	pageDetails    = "details.html"
	pageMyBookings = "my_bookings.html"
	pageAdmin      = "admin.html"
	pageEdit       = "edit.html"
	pageError      = "error.html"
)

var pageNames = []string{
	pageIndex, pageRegister, pageLogin, pageBook, pageDetails,
	pageMyBookings, pageAdmin, pageEdit, pageError,
}

// viewData is the root value every page template receives.
type viewData struct {
	Title    string
	Identity *application.Identity
	Flashes  []string
	Message  string
	Errors   map[string]string
	Content  any
}

// Views renders the embedded page templates inside the shared layout.
type Views struct {
	pages    map[string]*template.Template
	sessions *SessionStore
}

// baseFuncs are replaced per request; they exist so the templates parse.
var baseFuncs = template.FuncMap{
	"csrfField": func() template.HTML { return "" },
	"price":     formatPrice,
	"join":      strings.Join,
	"checked":   containsString,
}

// NewViews parses every page together with the layout. Flashes are drained
// from sessions when a page is rendered.
func NewViews(sessions *SessionStore) (*Views, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tpl, err := template.New("layout.html").Funcs(baseFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = tpl
	}
	return &Views{pages: pages, sessions: sessions}, nil
}

// MustNewViews is NewViews for package initialisation and tests.
func MustNewViews(sessions *SessionStore) *Views {
	views, err := NewViews(sessions)
	if err != nil {
		panic(err)
	}
	return views
}

func (v *Views) render(w http.ResponseWriter, r *http.Request, status int, page string, data viewData) error {
	base, ok := v.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	tpl, err := base.Clone()
	if err != nil {
		return fmt.Errorf("clone template %s: %w", page, err)
	}
	tpl.Funcs(template.FuncMap{
		"csrfField": func() template.HTML { return csrf.TemplateField(r) },
	})

	if data.Identity == nil {
		if identity, ok := IdentityFromContext(r.Context()); ok {
			data.Identity = &identity
		}
	}

	var flashErr error
	if v.sessions != nil {
		var flashes []string
		flashes, flashErr = v.sessions.Flashes(w, r)
		data.Flashes = append(flashes, data.Flashes...)
	}

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("execute template %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return flashErr
}

func formatPrice(price float64) string {
	return fmt.Sprintf("%.2f", price)
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
