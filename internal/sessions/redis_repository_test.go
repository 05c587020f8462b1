package sessions

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisRepository_CreateGetDeactivate(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	repo := NewRedisRepository(client, "test:session:")

	ctx := context.Background()
	s := &Session{
		SessionID: "s1",
		CPF:       "12345678901",
		Active:    true,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(5 * time.Second),
	}

	require.NoError(t, repo.Create(ctx, s))

	got, err := repo.GetByID(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.True(t, got.Active)
	require.Equal(t, s.CPF, got.CPF)

	// deactivation keeps the record but flips state and records the initiator
	require.NoError(t, repo.Deactivate(ctx, "s1", InitiatorAdmin))
	got2, err := repo.GetByID(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got2)
	require.False(t, got2.Active)
	require.Equal(t, InitiatorAdmin, got2.LogoutInitiator)
	require.NotNil(t, got2.ClosedAt)
}

func TestRedisRepository_TTLExpiry(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	repo := NewRedisRepository(client, "test:session:")

	ctx := context.Background()
	s := &Session{
		SessionID: "s2",
		CPF:       "12345678901",
		Active:    true,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(1 * time.Second),
	}

	require.NoError(t, repo.Create(ctx, s))

	// visible immediately
	got, err := repo.GetByID(ctx, "s2")
	require.NoError(t, err)
	require.NotNil(t, got)

	// advance miniredis clock past TTL
	m.FastForward(2 * time.Second)

	got2, err := repo.GetByID(ctx, "s2")
	require.NoError(t, err)
	require.Nil(t, got2)
}

func TestRedisRepository_DeactivateUnknownIsNoop(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	repo := NewRedisRepository(client, "")

	require.NoError(t, repo.Deactivate(context.Background(), "missing", InitiatorUserRequested))
}
