package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/absarsolarch/ab-3/internal/config"
)

func testSelector(cfg *config.Config) *Selector {
	s := NewSelector(cfg, zap.NewNop())
	s.RedisWait = time.Millisecond
	s.PostgresWait = time.Millisecond
	s.DialTimeout = 200 * time.Millisecond
	return s
}

func sentinelConfig(redisAddr string) *config.Config {
	cfg := &config.Config{}
	cfg.Database.Host = config.DBHostTestMode
	cfg.Redis.Addr = redisAddr
	return cfg
}

func TestSelect_SentinelHostPicksRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	repo, backend, err := testSelector(sentinelConfig(mr.Addr())).Select(context.Background())
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, backend)

	// An empty store is seeded with exactly one sample record.
	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Test Property 1", list[0].Title)
	assert.Equal(t, int64(1), list[0].ID)
}

func TestSelect_SeedsOnlyWhenEmpty(t *testing.T) {
	mr := miniredis.RunT(t)

	_, _, err := testSelector(sentinelConfig(mr.Addr())).Select(context.Background())
	require.NoError(t, err)

	// A second process lifetime against the same store must not reseed.
	repo, _, err := testSelector(sentinelConfig(mr.Addr())).Select(context.Background())
	require.NoError(t, err)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSelect_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	repo, backend, err := testSelector(sentinelConfig(addr)).Select(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Nil(t, repo)
	assert.Equal(t, BackendNone, backend)
}

func TestSelect_PostgresUnreachable(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Host = "127.0.0.1"
	cfg.Database.Port = 1
	cfg.Database.User = "postgres"
	cfg.Database.Password = "postgres"
	cfg.Database.Database = "properties"
	cfg.Database.SSLMode = "disable"

	repo, backend, err := testSelector(cfg).Select(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Nil(t, repo)
	assert.Equal(t, BackendNone, backend)
}
