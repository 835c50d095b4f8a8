package domain

import (
	"fmt"
	"strings"
)

// Role identifies which kind of account a record or session belongs to.
type Role string

const (
	// RoleTourist is a user seeking a guide at a destination.
	RoleTourist Role = "tourist"

	// RoleGuide is a user offering tours at a location.
	RoleGuide Role = "guide"
)

// ParseRole converts a submitted user_type value into a Role.
// It accepts the form labels ("Tourist", "Tour Guide") as well as the
// stored values, ignoring case and surrounding whitespace.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.Join(strings.Fields(s), " ")) {
	case "tourist":
		return RoleTourist, nil
	case "tour guide", "guide":
		return RoleGuide, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleTourist || r == RoleGuide
}

// Label returns the human-facing name used on forms.
func (r Role) Label() string {
	switch r {
	case RoleTourist:
		return "Tourist"
	case RoleGuide:
		return "Tour Guide"
	default:
		return string(r)
	}
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}
