package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/forge/internal/storage/postgres"
	"github.com/cory-johannsen/forge/internal/testutil"
)

func TestPool_HealthAndClose(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	ctx := context.Background()

	cfg := pc.Config
	cfg.MaxConns, cfg.MinConns, cfg.MaxConnLifetime = 0, 0, 0
	pool, err := postgres.NewPool(ctx, cfg)
	require.NoError(t, err, "zero pool limits fall back to the driver defaults")
	assert.NotNil(t, pool.DB())
	require.NoError(t, pool.Health(ctx, 5*time.Second))

	pool.Close()
	assert.Error(t, pool.Health(ctx, time.Second), "a closed pool is unusable")

	bad := pc.Config
	bad.Password = "wrong"
	_, err = postgres.NewPool(ctx, bad)
	assert.Error(t, err)
}
