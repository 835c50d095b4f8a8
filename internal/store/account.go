package store

import (
	"context"

	"github.com/phrazzld/guidematch/internal/domain"
)

// AccountStore defines the interface for tourist and guide persistence.
// Each role is its own account kind: emails are unique within a kind, but a
// tourist and a guide may share one.
type AccountStore interface {
	// Insert saves a new account of the kind named by account.Role and sets
	// account.ID to the generated id.
	// Returns ErrEmailExists if the email is already taken for that kind.
	Insert(ctx context.Context, account *domain.Account) (int64, error)

	// InsertTourist saves a new tourist account.
	// Returns ErrEmailExists if a tourist with that email exists.
	InsertTourist(ctx context.Context, account *domain.Account) (int64, error)

	// InsertGuide saves a new guide account.
	// Returns ErrEmailExists if a guide with that email exists.
	InsertGuide(ctx context.Context, account *domain.Account) (int64, error)

	// FindByEmail retrieves an account of the given kind by email.
	// Returns ErrAccountNotFound if there is none.
	FindByEmail(ctx context.Context, role domain.Role, email string) (*domain.Account, error)

	// FindByID retrieves an account of the given kind by id.
	// Returns ErrAccountNotFound if there is none.
	FindByID(ctx context.Context, role domain.Role, id int64) (*domain.Account, error)

	// FindGuidesByLocation returns every guide whose canonical location equals
	// location, in insertion order.
	FindGuidesByLocation(ctx context.Context, location string) ([]*domain.Account, error)
}
