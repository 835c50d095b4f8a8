package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/guidematch/internal/domain"
	"github.com/phrazzld/guidematch/internal/mocks"
	"github.com/phrazzld/guidematch/internal/service/auth"
	"github.com/phrazzld/guidematch/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

type fixture struct {
	accounts *mocks.MockAccountStore
	sessions *mocks.MockSessionStore
	hasher   *auth.BcryptHasher
	service  *auth.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	hasher, err := auth.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(testSecret)
	require.NoError(t, err)

	f := &fixture{
		accounts: mocks.NewMockAccountStore(),
		sessions: mocks.NewMockSessionStore(),
		hasher:   hasher,
	}
	f.service, err = auth.NewService(f.accounts, f.sessions, hasher, tokens, time.Hour, nil)
	require.NoError(t, err)
	return f
}

func (f *fixture) register(t *testing.T, role domain.Role, email, password string) *domain.Account {
	t.Helper()

	digest, err := f.hasher.Hash(password)
	require.NoError(t, err)
	account, err := domain.NewAccount(domain.NewAccountParams{
		Role:           role,
		Email:          email,
		Username:       "user",
		PasswordDigest: digest,
	})
	require.NoError(t, err)
	_, err = f.accounts.Insert(context.Background(), account)
	require.NoError(t, err)
	return account
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	tourist := f.register(t, domain.RoleTourist, "ana@example.com", "pw-ana")
	f.register(t, domain.RoleGuide, "ana@example.com", "pw-guide")

	tests := []struct {
		name     string
		email    string
		password string
		role     domain.Role
		wantErr  error
	}{
		{"valid tourist", "ana@example.com", "pw-ana", domain.RoleTourist, nil},
		{"email normalized", "  ANA@example.com ", "pw-ana", domain.RoleTourist, nil},
		{"same email other role", "ana@example.com", "pw-guide", domain.RoleGuide, nil},
		{"wrong password", "ana@example.com", "nope", domain.RoleTourist, auth.ErrBadCredentials},
		{"role mismatch password", "ana@example.com", "pw-ana", domain.RoleGuide, auth.ErrBadCredentials},
		{"unknown email", "bob@example.com", "pw-ana", domain.RoleTourist, auth.ErrAccountNotFound},
		{"invalid role", "ana@example.com", "pw-ana", domain.Role("admin"), auth.ErrAccountNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			identity, err := f.service.Authenticate(context.Background(), tt.email, tt.password, tt.role)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
				assert.Nil(t, identity)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.role, identity.Role)
			if tt.role == domain.RoleTourist {
				assert.Equal(t, tourist.ID, identity.AccountID)
			}
		})
	}
}

func TestAuthenticateUnknownEmailStillComparesPassword(t *testing.T) {
	t.Parallel()

	verifier := &mocks.MockPasswordVerifier{}
	tokens, err := auth.NewTokenService(testSecret)
	require.NoError(t, err)
	svc, err := auth.NewService(mocks.NewMockAccountStore(), mocks.NewMockSessionStore(), verifier, tokens, time.Hour, nil)
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), "ghost@example.com", "pw", domain.RoleGuide)
	assert.ErrorIs(t, err, auth.ErrAccountNotFound)
	assert.Equal(t, 1, verifier.Calls())
	assert.Equal(t, "hashed:guidematch-timing-equalizer", verifier.CompareCalledWith.HashedPassword)
}

func TestAuthenticateStoreFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	boom := errors.New("connection refused")
	f.accounts.FindByEmailFn = func(ctx context.Context, role domain.Role, email string) (*domain.Account, error) {
		return nil, boom
	}

	_, err := f.service.Authenticate(context.Background(), "a@example.com", "pw", domain.RoleTourist)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLoginResolveLogout(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	guide := f.register(t, domain.RoleGuide, "gia@example.com", "pw-gia")
	ctx := context.Background()

	result, err := f.service.Login(ctx, "gia@example.com", "pw-gia", domain.RoleGuide)
	require.NoError(t, err)
	assert.Equal(t, guide.Identity(), result.Identity)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, 1, f.sessions.Len())

	identity, err := f.service.Resolve(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, guide.Identity(), *identity)

	require.NoError(t, f.service.Logout(ctx, result.Token))
	assert.Equal(t, 0, f.sessions.Len())

	_, err = f.service.Resolve(ctx, result.Token)
	assert.ErrorIs(t, err, auth.ErrSessionRevoked)
	assert.ErrorIs(t, err, auth.ErrNoSession)

	assert.NoError(t, f.service.Logout(ctx, result.Token), "logout is idempotent")
	assert.NoError(t, f.service.Logout(ctx, "garbage"))
}

func TestLoginFailureCreatesNoSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.register(t, domain.RoleTourist, "tom@example.com", "pw-tom")

	_, err := f.service.Login(context.Background(), "tom@example.com", "wrong", domain.RoleTourist)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Equal(t, 0, f.sessions.Len())
}

func TestResolveExpiredSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.register(t, domain.RoleTourist, "eve@example.com", "pw-eve")
	ctx := context.Background()

	result, err := f.service.Login(ctx, "eve@example.com", "pw-eve", domain.RoleTourist)
	require.NoError(t, err)

	// The row expires before the token does.
	f.sessions.Now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err = f.service.Resolve(ctx, result.Token)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestResolveMissingToken(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.service.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, auth.ErrMissingToken)
}

func TestSessionJanitorSweep(t *testing.T) {
	t.Parallel()

	sessions := mocks.NewMockSessionStore()
	ctx := context.Background()
	identity := domain.SessionIdentity{AccountID: 1, Role: domain.RoleGuide}

	require.NoError(t, sessions.Create(ctx, domain.NewSession(identity, time.Minute, time.Now().Add(-time.Hour))))
	require.NoError(t, sessions.Create(ctx, domain.NewSession(identity, time.Hour, time.Now())))

	janitor := auth.NewSessionJanitor(sessions, time.Minute, nil)
	n, err := janitor.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, sessions.Len())

	_, err = sessions.Get(ctx, uuid.Nil)
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestSessionJanitorRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		auth.NewSessionJanitor(mocks.NewMockSessionStore(), time.Millisecond, nil).Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop after cancel")
	}
}
