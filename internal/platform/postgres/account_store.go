package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/guidematch/internal/domain"
	"github.com/phrazzld/guidematch/internal/platform/logger"
	"github.com/phrazzld/guidematch/internal/store"
)

// accountTable names the table backing one account kind and the column that
// holds its place (destination or location).
type accountTable struct {
	name  string
	place string
}

// tableFor is the only place that decides which table serves a role.
func tableFor(role domain.Role) (accountTable, error) {
	switch role {
	case domain.RoleTourist:
		return accountTable{name: "tourists", place: "destination"}, nil
	case domain.RoleGuide:
		return accountTable{name: "guides", place: "location"}, nil
	default:
		return accountTable{}, fmt.Errorf("%w: %w: %q", store.ErrInvalidEntity, domain.ErrInvalidRole, role)
	}
}

// PostgresAccountStore implements the store.AccountStore interface
// using a PostgreSQL database as the storage backend.
type PostgresAccountStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAccountStore creates a new PostgreSQL implementation of the AccountStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresAccountStore(db store.DBTX, logger *slog.Logger) *PostgresAccountStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAccountStore{
		db:     db,
		logger: logger.With(slog.String("component", "account_store")),
	}
}

// Ensure PostgresAccountStore implements store.AccountStore interface
var _ store.AccountStore = (*PostgresAccountStore)(nil)

// Insert implements store.AccountStore.Insert.
// It validates the account, stores it in the table for its role and sets
// account.ID to the generated id.
func (s *PostgresAccountStore) Insert(ctx context.Context, account *domain.Account) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := account.Validate(); err != nil {
		log.Warn("account validation failed during insert",
			slog.String("error", err.Error()),
			slog.String("role", string(account.Role)))
		return 0, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	table, err := tableFor(account.Role)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (email, username, password_digest, language_preferences, %s, certificate_path, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, table.name, table.place)

	var id int64
	err = s.db.QueryRowContext(
		ctx,
		query,
		account.Email,
		account.Username,
		account.PasswordDigest,
		account.Languages,
		account.Place,
		account.CertificatePath,
		account.CreatedAt,
	).Scan(&id)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Info("email already registered",
				slog.String("table", table.name))
			return 0, MapUniqueViolation(err, store.ErrEmailExists)
		}
		log.Error("failed to insert account",
			slog.String("error", err.Error()),
			slog.String("table", table.name))
		return 0, store.NewStoreError(table.name, "insert", "failed to insert account", MapError(err))
	}

	account.ID = id
	log.Info("account created",
		slog.Int64("account_id", id),
		slog.String("role", string(account.Role)))
	return id, nil
}

// InsertTourist implements store.AccountStore.InsertTourist.
func (s *PostgresAccountStore) InsertTourist(ctx context.Context, account *domain.Account) (int64, error) {
	account.Role = domain.RoleTourist
	return s.Insert(ctx, account)
}

// InsertGuide implements store.AccountStore.InsertGuide.
func (s *PostgresAccountStore) InsertGuide(ctx context.Context, account *domain.Account) (int64, error) {
	account.Role = domain.RoleGuide
	return s.Insert(ctx, account)
}

// FindByEmail implements store.AccountStore.FindByEmail.
// The email is normalized the same way it was when the account was stored.
func (s *PostgresAccountStore) FindByEmail(
	ctx context.Context,
	role domain.Role,
	email string,
) (*domain.Account, error) {
	table, err := tableFor(role)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, email, username, password_digest, language_preferences, %s, certificate_path, created_at
		FROM %s
		WHERE email = $1
	`, table.place, table.name)

	return s.findOne(ctx, role, query, domain.NormalizeEmail(email))
}

// FindByID implements store.AccountStore.FindByID.
func (s *PostgresAccountStore) FindByID(ctx context.Context, role domain.Role, id int64) (*domain.Account, error) {
	table, err := tableFor(role)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, email, username, password_digest, language_preferences, %s, certificate_path, created_at
		FROM %s
		WHERE id = $1
	`, table.place, table.name)

	return s.findOne(ctx, role, query, id)
}

// FindGuidesByLocation implements store.AccountStore.FindGuidesByLocation.
// A blank location matches nothing.
func (s *PostgresAccountStore) FindGuidesByLocation(
	ctx context.Context,
	location string,
) ([]*domain.Account, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	location = domain.CanonicalPlace(location)
	if location == "" {
		return []*domain.Account{}, nil
	}

	query := `
		SELECT id, email, username, password_digest, language_preferences, location, certificate_path, created_at
		FROM guides
		WHERE location = $1
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query, location)
	if err != nil {
		log.Error("failed to query guides by location",
			slog.String("error", err.Error()),
			slog.String("location", location))
		return nil, store.NewStoreError("guides", "find", "failed to query guides", MapError(err))
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			log.Error("failed to close rows", slog.String("error", cerr.Error()))
		}
	}()

	guides := []*domain.Account{}
	for rows.Next() {
		guide, err := scanAccount(rows, domain.RoleGuide)
		if err != nil {
			log.Error("failed to scan guide row", slog.String("error", err.Error()))
			return nil, store.NewStoreError("guides", "find", "failed to scan guide", err)
		}
		guides = append(guides, guide)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("guides", "find", "failed to iterate guides", MapError(err))
	}

	log.Debug("guides retrieved",
		slog.String("location", location),
		slog.Int("count", len(guides)))
	return guides, nil
}

func (s *PostgresAccountStore) findOne(
	ctx context.Context,
	role domain.Role,
	query string,
	arg any,
) (*domain.Account, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	account, err := scanAccount(s.db.QueryRowContext(ctx, query, arg), role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("account not found", slog.String("role", string(role)))
			return nil, store.ErrAccountNotFound
		}
		log.Error("failed to get account",
			slog.String("error", err.Error()),
			slog.String("role", string(role)))
		return nil, store.NewStoreError(string(role), "find", "failed to get account", MapError(err))
	}
	return account, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner, role domain.Role) (*domain.Account, error) {
	account := &domain.Account{Role: role}
	var place, certificate sql.NullString

	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.Username,
		&account.PasswordDigest,
		&account.Languages,
		&place,
		&certificate,
		&account.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if place.Valid {
		account.Place = &place.String
	}
	if certificate.Valid {
		account.CertificatePath = &certificate.String
	}
	return account, nil
}
