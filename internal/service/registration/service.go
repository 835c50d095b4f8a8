// Package registration creates tourist and guide accounts.
package registration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/guidematch/internal/domain"
	"github.com/phrazzld/guidematch/internal/platform/filestore"
	"github.com/phrazzld/guidematch/internal/platform/logger"
	"github.com/phrazzld/guidematch/internal/store"
)

// maxPasswordBytes is bcrypt's input limit.
const maxPasswordBytes = 72

var validate = validator.New()

// PasswordHasher turns a raw password into a digest.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// CertificateStore persists uploaded certificates. Save returns an error
// wrapping filestore.ErrRejected when the upload itself is unacceptable.
type CertificateStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Remove(ctx context.Context, ref string) error
}

// Upload is an uploaded certificate file.
type Upload struct {
	Filename string
	Reader   io.Reader
	Size     int64
}

// Input is a registration request. Destination is read for tourists and
// Location for guides; the other one is ignored.
type Input struct {
	Role        domain.Role
	Email       string
	Username    string
	Password    string
	Languages   []string
	Destination string
	Location    string
	Certificate *Upload
}

// place returns the role-appropriate place field.
func (in Input) place() string {
	if in.Role == domain.RoleGuide {
		return in.Location
	}
	return in.Destination
}

// Service registers new accounts.
type Service struct {
	accounts     store.AccountStore
	certificates CertificateStore
	hasher       PasswordHasher
	logger       *slog.Logger
}

// NewService creates a registration service.
func NewService(
	accounts store.AccountStore,
	certificates CertificateStore,
	hasher PasswordHasher,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		accounts:     accounts,
		certificates: certificates,
		hasher:       hasher,
		logger:       logger.With(slog.String("component", "registration_service")),
	}
}

// Register validates the input, stores the certificate if one was uploaded
// and inserts the account. It returns the new account id.
func (s *Service) Register(ctx context.Context, in Input) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := validateInput(in); err != nil {
		log.Info("registration rejected", slog.String("reason", err.Error()))
		return 0, err
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	var certificatePath *string
	if in.Certificate != nil {
		ref, err := s.certificates.Save(ctx, in.Certificate.Filename, in.Certificate.Reader)
		if err != nil {
			if errors.Is(err, filestore.ErrRejected) {
				return 0, &FieldError{Field: "certificate", Err: fmt.Errorf("%w: %w", ErrInvalidCertificate, err)}
			}
			return 0, fmt.Errorf("failed to store certificate: %w", err)
		}
		certificatePath = &ref
	}

	account, err := domain.NewAccount(domain.NewAccountParams{
		Role:            in.Role,
		Email:           in.Email,
		Username:        in.Username,
		PasswordDigest:  digest,
		Languages:       in.Languages,
		Place:           in.place(),
		CertificatePath: certificatePath,
	})
	if err != nil {
		s.discardCertificate(ctx, certificatePath)
		return 0, fmt.Errorf("%w: %w", ErrInvalidField, err)
	}

	id, err := s.accounts.Insert(ctx, account)
	if err != nil {
		s.discardCertificate(ctx, certificatePath)
		if errors.Is(err, store.ErrEmailExists) {
			log.Info("registration with taken email", slog.String("role", string(in.Role)))
			return 0, &FieldError{Field: "email", Err: ErrEmailTaken}
		}
		return 0, fmt.Errorf("failed to save account: %w", err)
	}

	log.Info("account registered",
		slog.Int64("account_id", id),
		slog.String("role", string(account.Role)),
		slog.Int("languages", account.Languages.Len()),
		slog.Bool("certificate", certificatePath != nil))
	return id, nil
}

func (s *Service) discardCertificate(ctx context.Context, ref *string) {
	if ref == nil {
		return
	}
	if err := s.certificates.Remove(ctx, *ref); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to remove orphaned certificate",
			slog.String("ref", *ref),
			slog.String("error", err.Error()))
	}
}

func validateInput(in Input) error {
	if !in.Role.Valid() {
		return invalid("user_type", fmt.Sprintf("unknown role %q", in.Role))
	}

	email := strings.TrimSpace(in.Email)
	switch {
	case email == "":
		return missing("email")
	case strings.TrimSpace(in.Username) == "":
		return missing("username")
	case in.Password == "":
		return missing("password")
	}

	if err := validate.Var(email, "email"); err != nil {
		return invalid("email", "not an email address")
	}
	if len(in.Password) > maxPasswordBytes {
		return invalid("password", fmt.Sprintf("longer than %d bytes", maxPasswordBytes))
	}
	return nil
}
