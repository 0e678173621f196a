package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fastygo/checkout/domain"
	"github.com/fastygo/checkout/internal/config"
	"github.com/fastygo/checkout/internal/services/lifecycle"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		AppName: "checkout-test",
		RunOnce: true,
		Storage: config.StorageConfig{Driver: config.DriverSQLite, SQLitePath: filepath.Join(dir, "checkout.db")},
		Buffer:  config.BufferConfig{Path: filepath.Join(dir, "buffer.db"), SyncInterval: time.Second, MaxRetry: 3},
		Context: config.ContextConfig{ShutdownTimeout: 5 * time.Second},
	}
}

func TestSeedScenario(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := zap.New(core)
	manager := lifecycle.New(time.Second, log)
	ctx := context.Background()

	a, err := build(ctx, testConfig(t), log, manager)
	require.NoError(t, err)
	defer func() { require.NoError(t, manager.Shutdown(ctx)) }()

	require.NoError(t, runScenario(ctx, a.bus, seedSteps(), log))

	orders, err := a.orders.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 50.0, orders[0].Total())
	assert.Zero(t, a.processor.Size())

	assert.Equal(t, 1, logs.FilterMessage("first handler of event: CustomerCreated").Len())
	assert.Equal(t, 1, logs.FilterMessage("second handler of event: CustomerCreated").Len())
	assert.Equal(t, 1, logs.FilterMessage("OrderPlaced").Len())
	assert.Equal(t, 1, logs.FilterMessage("OrderItemsChanged").Len())

	// replaying against the same store creates a second order
	require.NoError(t, runScenario(ctx, a.bus, seedSteps(), log))
	orders, err = a.orders.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}

func TestRunScenario_StopsAtFirstFailure(t *testing.T) {
	manager := lifecycle.New(time.Second, nil)
	ctx := context.Background()

	a, err := build(ctx, testConfig(t), zap.NewNop(), manager)
	require.NoError(t, err)
	defer manager.Shutdown(ctx)

	steps := []step{
		{name: qryOrder, query: true, payload: "missing"},
		{name: qryOrders, query: true},
	}
	err = runScenario(ctx, a.bus, steps, zap.NewNop())
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	err = runScenario(ctx, a.bus, []step{{name: cmdPlaceOrder, payload: "not an input"}}, zap.NewNop())
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestBuild_EmptySQLitePath(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.SQLitePath = ""
	manager := lifecycle.New(time.Second, nil)

	_, err := build(context.Background(), cfg, zap.NewNop(), manager)
	assert.Error(t, err)
	assert.NoError(t, manager.Shutdown(context.Background()))
}
