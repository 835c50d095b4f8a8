package api

import (
	"time"

	"github.com/phrazzld/guidematch/internal/domain"
)

// AccountResponse is the public view of an account. It never carries the
// password digest.
type AccountResponse struct {
	ID                  int64     `json:"id"`
	UserType            string    `json:"user_type"`
	Email               string    `json:"email"`
	Username            string    `json:"username"`
	LanguagePreferences []string  `json:"language_preferences"`
	Destination         string    `json:"destination,omitempty"`
	Location            string    `json:"location,omitempty"`
	HasCertificate      bool      `json:"has_certificate"`
	CreatedAt           time.Time `json:"created_at"`
}

// GuideResponse is a matching guide as shown to a tourist.
type GuideResponse struct {
	ID                  int64    `json:"id"`
	Username            string   `json:"username"`
	Email               string   `json:"email"`
	LanguagePreferences []string `json:"language_preferences"`
	Location            string   `json:"location"`
	SharedLanguages     []string `json:"shared_languages"`
}

// ProfileResponse is the body of GET /api/profile. Matches is empty for guides.
type ProfileResponse struct {
	Account AccountResponse `json:"account"`
	Matches []GuideResponse `json:"matches"`
}

func newAccountResponse(a *domain.Account) AccountResponse {
	resp := AccountResponse{
		ID:                  a.ID,
		UserType:            a.Role.Label(),
		Email:               a.Email,
		Username:            a.Username,
		LanguagePreferences: a.Languages.Tags(),
		HasCertificate:      a.CertificatePath != nil,
		CreatedAt:           a.CreatedAt,
	}
	if d, ok := a.Destination(); ok {
		resp.Destination = d
	}
	if l, ok := a.Location(); ok {
		resp.Location = l
	}
	return resp
}

func newGuideResponses(tourist *domain.Account, guides []*domain.Account) []GuideResponse {
	out := make([]GuideResponse, 0, len(guides))
	for _, g := range guides {
		location, _ := g.Location()
		out = append(out, GuideResponse{
			ID:                  g.ID,
			Username:            g.Username,
			Email:               g.Email,
			LanguagePreferences: g.Languages.Tags(),
			Location:            location,
			SharedLanguages:     tourist.Languages.Intersection(g.Languages).Tags(),
		})
	}
	return out
}

func newProfileResponse(account *domain.Account, matches []*domain.Account) ProfileResponse {
	return ProfileResponse{
		Account: newAccountResponse(account),
		Matches: newGuideResponses(account, matches),
	}
}
