package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/checkout/internal/infrastructure/buffer"
)

const checkTimeout = 3 * time.Second

// Check probes one dependency; nil means reachable.
type Check func(ctx context.Context) error

// PostgresCheck pings a pgx pool.
func PostgresCheck(pool *pgxpool.Pool) Check {
	return func(ctx context.Context) error { return pool.Ping(ctx) }
}

// SQLiteCheck pings an sqlx handle.
func SQLiteCheck(db *sqlx.DB) Check {
	return func(ctx context.Context) error { return db.PingContext(ctx) }
}

// RedisCheck pings a Redis client.
func RedisCheck(client *redislib.Client) Check {
	return func(ctx context.Context) error { return client.Ping(ctx).Err() }
}

// Monitor polls the storage dependencies and exposes whether writes can
// currently reach them.
type Monitor struct {
	checks   map[string]Check
	advisory map[string]Check
	buffer   *buffer.Store

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(checks map[string]Check, buf *buffer.Store, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		checks:   checks,
		advisory: make(map[string]Check),
		buffer:   buf,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

// AddAdvisory registers a check that is reported in the status but does not
// affect IsOnline. Call it before Start.
func (m *Monitor) AddAdvisory(name string, check Check) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advisory[name] = check
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// IsOnline is true once every check has passed. Before the first refresh it
// reports online so writes are attempted rather than buffered.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.status.LastCheck.IsZero() {
		return true
	}
	return m.status.Healthy()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Refresh runs every check once and records the result.
func (m *Monitor) Refresh(ctx context.Context) Status {
	status := Status{
		Components: make(map[string]bool, len(m.checks)),
		BufferSize: m.bufferSize(),
		LastCheck:  time.Now(),
	}
	for name, check := range m.checks {
		status.Components[name] = m.run(ctx, name, check)
	}

	m.mu.RLock()
	advisory := make(map[string]Check, len(m.advisory))
	for name, check := range m.advisory {
		advisory[name] = check
	}
	m.mu.RUnlock()
	if len(advisory) > 0 {
		status.Advisory = make(map[string]bool, len(advisory))
		for name, check := range advisory {
			status.Advisory[name] = m.run(ctx, name, check)
		}
	}

	m.mu.Lock()
	previous := m.status
	m.status = status
	m.mu.Unlock()

	if !previous.LastCheck.IsZero() && previous.Healthy() != status.Healthy() {
		m.logger.Info("storage availability changed", zap.Bool("online", status.Healthy()))
	}
	return status
}

func (m *Monitor) run(ctx context.Context, name string, check Check) bool {
	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	if err := check(checkCtx); err != nil {
		m.logger.Warn("dependency check failed", zap.String("component", name), zap.Error(err))
		return false
	}
	return true
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh(context.Background())
	for {
		select {
		case <-ticker.C:
			m.Refresh(context.Background())
		case <-m.stopCh:
			return
		}
	}
}

func (m *Monitor) bufferSize() int {
	if m.buffer == nil {
		return 0
	}
	size, err := m.buffer.Size()
	if err != nil {
		m.logger.Warn("buffer size check failed", zap.Error(err))
	}
	return size
}
