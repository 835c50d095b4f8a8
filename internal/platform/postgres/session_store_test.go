package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/guidematch/internal/domain"
	"github.com/phrazzld/guidematch/internal/platform/postgres"
	"github.com/phrazzld/guidematch/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStoreLifecycle(t *testing.T) {
	withTx(t, func(tx *sql.Tx) {
		ctx := context.Background()
		sessions := postgres.NewPostgresSessionStore(tx, nil)

		identity := domain.SessionIdentity{AccountID: 42, Role: domain.RoleGuide}
		session := domain.NewSession(identity, time.Hour, time.Now())
		require.NoError(t, sessions.Create(ctx, session))

		got, err := sessions.Get(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, identity, got.Identity())

		require.NoError(t, sessions.Delete(ctx, session.ID))
		_, err = sessions.Get(ctx, session.ID)
		assert.ErrorIs(t, err, store.ErrSessionNotFound)

		assert.NoError(t, sessions.Delete(ctx, session.ID), "delete is idempotent")
	})
}

func TestSessionStoreExpiry(t *testing.T) {
	withTx(t, func(tx *sql.Tx) {
		ctx := context.Background()
		sessions := postgres.NewPostgresSessionStore(tx, nil)

		identity := domain.SessionIdentity{AccountID: 7, Role: domain.RoleTourist}
		expired := domain.NewSession(identity, time.Minute, time.Now().Add(-time.Hour))
		live := domain.NewSession(identity, time.Hour, time.Now())
		require.NoError(t, sessions.Create(ctx, expired))
		require.NoError(t, sessions.Create(ctx, live))

		_, err := sessions.Get(ctx, expired.ID)
		assert.ErrorIs(t, err, store.ErrSessionExpired)

		n, err := sessions.DeleteExpired(ctx, time.Now())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 1)

		_, err = sessions.Get(ctx, expired.ID)
		assert.ErrorIs(t, err, store.ErrSessionNotFound)
		_, err = sessions.Get(ctx, live.ID)
		assert.NoError(t, err)

		_, err = sessions.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrSessionNotFound)
	})
}
