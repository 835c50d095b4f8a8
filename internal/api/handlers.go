package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/phrazzld/guidematch/internal/api/shared"
	"github.com/phrazzld/guidematch/internal/domain"
	"github.com/phrazzld/guidematch/internal/platform/logger"
	"github.com/phrazzld/guidematch/internal/platform/metrics"
	"github.com/phrazzld/guidematch/internal/redact"
	"github.com/phrazzld/guidematch/internal/service/auth"
	"github.com/phrazzld/guidematch/internal/service/registration"
	"github.com/phrazzld/guidematch/internal/store"
)

const (
	// multipartMemory is how much of a multipart body is kept in memory
	// before file parts spill to temporary files.
	multipartMemory = 1 << 20

	// formOverhead is the allowance for non-file fields on top of the
	// certificate size limit.
	formOverhead = 1 << 20

	registrationSuccess = "Registration successful. Please log in."
)

// Authenticator logs accounts in and out.
type Authenticator interface {
	Login(ctx context.Context, email, password string, role domain.Role) (*auth.LoginResult, error)
	Logout(ctx context.Context, token string) error
}

// Registrar creates accounts.
type Registrar interface {
	Register(ctx context.Context, in registration.Input) (int64, error)
}

// Matcher finds the guides matching a tourist.
type Matcher interface {
	MatchesFor(ctx context.Context, tourist *domain.Account) ([]*domain.Account, error)
}

// AccountFinder loads the account behind a session.
type AccountFinder interface {
	FindByID(ctx context.Context, role domain.Role, id int64) (*domain.Account, error)
}

// HandlerConfig carries the HTTP settings the handlers need.
type HandlerConfig struct {
	Cookie         shared.SessionCookie
	MaxUploadBytes int64
}

// Handler serves the HTML pages and the JSON profile endpoint.
type Handler struct {
	auth      Authenticator
	registrar Registrar
	matcher   Matcher
	accounts  AccountFinder
	views     *Views
	cookie    shared.SessionCookie
	maxBody   int64
	logger    *slog.Logger
}

// NewHandler creates a Handler with the given dependencies.
func NewHandler(
	authenticator Authenticator,
	registrar Registrar,
	matcher Matcher,
	accounts AccountFinder,
	views *Views,
	cfg HandlerConfig,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		auth:      authenticator,
		registrar: registrar,
		matcher:   matcher,
		accounts:  accounts,
		views:     views,
		cookie:    cfg.Cookie,
		maxBody:   cfg.MaxUploadBytes + formOverhead,
		logger:    logger.With(slog.String("component", "http_handler")),
	}
}

// Index handles GET /: the login page.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, r, http.StatusOK, pageLogin, h.page(w, r, "Log in"))
}

// Login handles POST /login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	data := h.page(w, r, "Log in")

	if err := r.ParseForm(); err != nil {
		h.fail(w, r, pageLogin, data, http.StatusBadRequest, "Some of the details you entered are not valid.", err)
		return
	}

	email := r.PostForm.Get("email")
	data.Form = registerForm{Email: email, UserType: r.PostForm.Get("user_type")}

	// An unknown user_type leaves role empty; the auth service rejects it
	// the same way it rejects an unknown email.
	role, _ := domain.ParseRole(data.Form.UserType)

	result, err := h.auth.Login(r.Context(), email, r.PostForm.Get("password"), role)
	metrics.RecordLogin(roleLabel(role), err)
	if err != nil {
		h.fail(w, r, pageLogin, data, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err,
			shared.WithElevatedLogLevel())
		return
	}

	h.cookie.Set(w, result.Token, result.ExpiresAt)
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// RegisterForm handles GET /register.
func (h *Handler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, r, http.StatusOK, pageRegister, h.page(w, r, "Register"))
}

// Register handles POST /register. On success it flashes a confirmation and
// sends the client to the login page; on failure it re-renders the form.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	data := h.page(w, r, "Register")

	if r.ContentLength > h.maxBody {
		err := &http.MaxBytesError{Limit: h.maxBody}
		h.fail(w, r, pageRegister, data, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)

	in, cleanup, err := h.parseRegistration(r)
	defer cleanup()
	data.Form = formFromInput(in)
	if err != nil {
		status := http.StatusBadRequest
		message := "Some of the details you entered are not valid."
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			status, message = MapErrorToStatusCode(err), GetSafeErrorMessage(err)
		}
		h.fail(w, r, pageRegister, data, status, message, err)
		return
	}

	_, err = h.registrar.Register(r.Context(), in)
	metrics.RecordRegistration(roleLabel(in.Role), err)
	if err != nil {
		h.fail(w, r, pageRegister, data, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	setFlash(w, registrationSuccess)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Profile handles GET /profile. The route requires a session.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	profile, err := h.loadProfile(r.Context(), identity)
	if errors.Is(err, store.ErrAccountNotFound) {
		// The session outlived its account.
		h.cookie.Clear(w)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := h.page(w, r, "Profile")
	data.IsTourist = identity.Role == domain.RoleTourist
	if err != nil {
		h.fail(w, r, pageProfile, data, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	data.Profile = profile
	h.views.Render(w, r, http.StatusOK, pageProfile, data)
}

// APIProfile handles GET /api/profile. The route requires a session.
func (h *Handler) APIProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Login required")
		return
	}

	profile, err := h.loadProfile(r.Context(), identity)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Login required", err)
			return
		}
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, profile)
}

// Logout handles GET /logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := h.cookie.Token(r); token != "" {
		if err := h.auth.Logout(r.Context(), token); err != nil {
			logger.FromContextOrDefault(r.Context(), h.logger).Error("failed to end session",
				slog.String("error", redact.Error(err)))
		}
	}
	h.cookie.Clear(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// loadProfile fetches the account and, for tourists, its matching guides.
func (h *Handler) loadProfile(ctx context.Context, identity domain.SessionIdentity) (*ProfileResponse, error) {
	account, err := h.accounts.FindByID(ctx, identity.Role, identity.AccountID)
	if err != nil {
		return nil, err
	}

	var matches []*domain.Account
	if account.Role == domain.RoleTourist {
		matches, err = h.matcher.MatchesFor(ctx, account)
		if err != nil {
			return nil, err
		}
		metrics.RecordMatches(len(matches))
	}

	profile := newProfileResponse(account, matches)
	return &profile, nil
}

// parseRegistration reads a multipart or urlencoded registration form. The
// returned cleanup func closes the certificate and removes temporary files.
func (h *Handler) parseRegistration(r *http.Request) (registration.Input, func(), error) {
	var in registration.Input
	cleanup := func() {}

	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if r.MultipartForm != nil {
		form := r.MultipartForm
		cleanup = func() { _ = form.RemoveAll() }
	}
	if err != nil {
		return in, cleanup, err
	}

	role, _ := domain.ParseRole(r.PostForm.Get("user_type"))
	in = registration.Input{
		Role:        role,
		Email:       r.PostForm.Get("email"),
		Username:    r.PostForm.Get("username"),
		Password:    r.PostForm.Get("password"),
		Languages:   splitLanguages(r.PostForm["language_preferences"]),
		Destination: r.PostForm.Get("destination"),
		Location:    r.PostForm.Get("location"),
	}

	if r.MultipartForm == nil {
		return in, cleanup, nil
	}

	file, header, err := r.FormFile("certificate")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return in, cleanup, nil
	case err != nil:
		return in, cleanup, err
	}

	removeForm := cleanup
	cleanup = func() {
		_ = file.Close()
		removeForm()
	}
	in.Certificate = &registration.Upload{
		Filename: header.Filename,
		Reader:   file,
		Size:     header.Size,
	}
	return in, cleanup, nil
}

// page starts the data for a page, consuming any pending flash message.
func (h *Handler) page(w http.ResponseWriter, r *http.Request, title string) pageData {
	_, loggedIn := shared.IdentityFromContext(r.Context())
	return pageData{
		Title:    title,
		Flash:    takeFlash(w, r),
		LoggedIn: loggedIn,
	}
}

// fail logs err and re-renders page with message.
func (h *Handler) fail(
	w http.ResponseWriter,
	r *http.Request,
	page string,
	data pageData,
	status int,
	message string,
	err error,
	opts ...shared.ResponseOption,
) {
	shared.LogError(r, status, message, err, opts...)
	data.Error = message
	h.views.Render(w, r, status, page, data)
}

// splitLanguages accepts repeated fields as well as comma-separated lists.
func splitLanguages(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// formFromInput echoes the submitted values back into the register form.
// Languages offered as checkboxes are re-checked; the rest go back into the
// free-text field.
func formFromInput(in registration.Input) registerForm {
	form := registerForm{
		Email:       in.Email,
		Username:    in.Username,
		Destination: in.Destination,
		Location:    in.Location,
	}
	if in.Role.Valid() {
		form.UserType = in.Role.Label()
	}

	var other []string
	for _, tag := range domain.NewLanguageSet(in.Languages...).Tags() {
		if slices.Contains(commonLanguages, tag) {
			form.Languages = append(form.Languages, tag)
		} else {
			other = append(other, tag)
		}
	}
	form.OtherLanguages = strings.Join(other, ", ")
	return form
}

func roleLabel(role domain.Role) string {
	if !role.Valid() {
		return "unknown"
	}
	return string(role)
}
