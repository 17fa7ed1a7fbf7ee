package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusingh-54/supply-chain-analytics/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.HTTP.Addr = "127.0.0.1:0"
	cfg.Log.Level = "error"
	return cfg
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Type = "tape"

	_, err := New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestStartStopLifecycle(t *testing.T) {
	a, err := New(testConfig(t))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, a.Start(ctx))

	// Double start is rejected.
	assert.Error(t, a.Start(ctx))

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, a.Stop(stopCtx))

	// Stop after stop is a no-op.
	require.NoError(t, a.Stop(stopCtx))
}

func TestStartWithGraphDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Graph.Enabled = false

	a, err := New(cfg)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, a.Start(ctx))
	assert.Nil(t, a.syncer)

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, a.Stop(stopCtx))
}
