package domain

import (
	"fmt"
	"strings"
	"time"
)

// Account is a registered tourist or guide. Both kinds share one shape; Role
// tags which one it is and decides how Place is interpreted: the destination
// for a tourist, the location for a guide.
type Account struct {
	ID              int64       `json:"id"`
	Role            Role        `json:"role"`
	Email           string      `json:"email"`
	Username        string      `json:"username"`
	PasswordDigest  string      `json:"-"`
	Languages       LanguageSet `json:"language_preferences"`
	Place           *string     `json:"place,omitempty"`
	CertificatePath *string     `json:"certificate_path,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

// NewAccountParams carries the fields needed to build a new account.
type NewAccountParams struct {
	Role            Role
	Email           string
	Username        string
	PasswordDigest  string
	Languages       []string
	Place           string
	CertificatePath *string
}

// NewAccount builds a validated account ready for insertion. The email is
// normalized, the languages and place are canonicalized, and a blank place
// is recorded as absent.
func NewAccount(p NewAccountParams) (*Account, error) {
	a := &Account{
		Role:            p.Role,
		Email:           NormalizeEmail(p.Email),
		Username:        strings.TrimSpace(p.Username),
		PasswordDigest:  p.PasswordDigest,
		Languages:       NewLanguageSet(p.Languages...),
		Place:           canonicalPlace(p.Place),
		CertificatePath: p.CertificatePath,
		CreatedAt:       time.Now().UTC(),
	}

	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks the fields every stored account must have.
func (a *Account) Validate() error {
	if !a.Role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, a.Role)
	}
	if a.Email == "" {
		return ErrEmptyEmail
	}
	if a.Username == "" {
		return ErrEmptyUsername
	}
	if a.PasswordDigest == "" {
		return ErrEmptyPasswordDigest
	}
	return nil
}

// Destination returns the tourist's destination. It reports false for guides
// and for tourists who did not give one.
func (a *Account) Destination() (string, bool) {
	if a.Role != RoleTourist || a.Place == nil {
		return "", false
	}
	return *a.Place, true
}

// Location returns the guide's location. It reports false for tourists and
// for guides who did not give one.
func (a *Account) Location() (string, bool) {
	if a.Role != RoleGuide || a.Place == nil {
		return "", false
	}
	return *a.Place, true
}

// Identity returns the session identity for this account.
func (a *Account) Identity() SessionIdentity {
	return SessionIdentity{AccountID: a.ID, Role: a.Role}
}

// NormalizeEmail trims and lower-cases an email address. It is applied both
// when accounts are stored and when they are looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CanonicalPlace canonicalizes a destination or location for lookups.
func CanonicalPlace(place string) string {
	return Canonicalize(place)
}

func canonicalPlace(place string) *string {
	c := Canonicalize(place)
	if c == "" {
		return nil
	}
	return &c
}
