package monitor

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/checkout/internal/infrastructure/buffer"
	"github.com/fastygo/checkout/internal/infrastructure/sqlite"
)

func TestMonitor_Refresh(t *testing.T) {
	var down atomic.Bool
	checks := map[string]Check{
		"store": func(context.Context) error {
			if down.Load() {
				return errors.New("connection refused")
			}
			return nil
		},
	}

	store, err := buffer.Open(filepath.Join(t.TempDir(), "buffer.db"), "")
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Enqueue(buffer.Item{Entity: buffer.EntityOrder}))

	m := New(checks, store, time.Minute, nil)
	assert.True(t, m.IsOnline(), "online until the first check says otherwise")

	status := m.Refresh(context.Background())
	assert.True(t, status.Healthy())
	assert.Equal(t, 1, status.BufferSize)
	assert.True(t, m.IsOnline())

	down.Store(true)
	m.Refresh(context.Background())
	assert.False(t, m.IsOnline())
	assert.Equal(t, map[string]bool{"store": false}, m.GetStatus().Components)
}

func TestMonitor_SQLiteCheck(t *testing.T) {
	db, err := sqlite.Open(context.Background(), sqlite.MemoryPath, nil)
	require.NoError(t, err)

	m := New(map[string]Check{"sqlite": SQLiteCheck(db)}, nil, time.Minute, nil)
	assert.True(t, m.Refresh(context.Background()).Healthy())

	require.NoError(t, db.Close())
	assert.False(t, m.Refresh(context.Background()).Healthy())
}

func TestMonitor_StartStop(t *testing.T) {
	var calls atomic.Int32
	m := New(map[string]Check{"noop": func(context.Context) error {
		calls.Add(1)
		return nil
	}}, nil, 10*time.Millisecond, nil)

	m.Start()
	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	m.Stop()
	m.Stop()
}

func TestMonitor_AdvisoryDoesNotAffectOnline(t *testing.T) {
	client := redislib.NewClient(&redislib.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	m := New(map[string]Check{"store": func(context.Context) error { return nil }}, nil, time.Minute, nil)
	m.AddAdvisory("redis", RedisCheck(client))

	status := m.Refresh(context.Background())
	assert.True(t, status.Healthy())
	assert.Equal(t, map[string]bool{"redis": false}, status.Advisory)
	assert.True(t, m.IsOnline())
}
