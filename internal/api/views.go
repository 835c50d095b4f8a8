package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/phrazzld/guidematch/internal/domain"
	"github.com/phrazzld/guidematch/internal/platform/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names.
const (
	pageLogin    = "login"
	pageRegister = "register"
	pageProfile  = "profile"
)

// commonLanguages are offered as checkboxes on the register form.
var commonLanguages = []string{"English", "French", "German", "Italian", "Japanese", "Mandarin", "Portuguese", "Spanish"}

var templateFuncs = template.FuncMap{
	"join": strings.Join,
}

// registerForm holds the submitted values echoed back into a form after a
// failed attempt. Passwords are never echoed.
type registerForm struct {
	UserType       string
	Email          string
	Username       string
	Languages      []string
	OtherLanguages string
	Destination    string
	Location       string
}

// HasLanguage reports whether the canonical tag was submitted.
func (f registerForm) HasLanguage(tag string) bool {
	return slices.Contains(f.Languages, tag)
}

// pageData is the root value every template renders.
type pageData struct {
	Title             string
	Flash             string
	Error             string
	LoggedIn          bool
	IsTourist         bool
	UserTypes         []string
	CommonLanguages   []string
	CertificateAccept string
	Form              registerForm
	Profile           *ProfileResponse
}

// Views renders the embedded HTML pages.
type Views struct {
	pages  map[string]*template.Template
	accept string
}

// NewViews parses every page together with the shared layout. allowed lists
// the certificate extensions the upload field should offer.
func NewViews(allowed []string) (*Views, error) {
	v := &Views{
		pages:  make(map[string]*template.Template),
		accept: strings.Join(allowed, ","),
	}
	for _, page := range []string{pageLogin, pageRegister, pageProfile} {
		t, err := template.New(page).Funcs(templateFuncs).ParseFS(templateFS,
			"templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", page, err)
		}
		v.pages[page] = t
	}
	return v, nil
}

// Render writes page with the given status. The page is rendered into a
// buffer first so a template failure never produces half a page.
func (v *Views) Render(w http.ResponseWriter, r *http.Request, status int, page string, data pageData) {
	t, ok := v.pages[page]
	if !ok {
		logger.FromContext(r.Context()).Error("unknown page", slog.String("page", page))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	data.UserTypes = []string{domain.RoleTourist.Label(), domain.RoleGuide.Label()}
	data.CommonLanguages = commonLanguages
	data.CertificateAccept = v.accept

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		logger.FromContext(r.Context()).Error("failed to render page",
			slog.String("page", page),
			slog.String("error", err.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		logger.FromContext(r.Context()).Debug("failed to write page", slog.String("error", err.Error()))
	}
}
