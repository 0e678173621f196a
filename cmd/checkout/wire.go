package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/checkout/domain/event"
	"github.com/fastygo/checkout/internal/config"
	"github.com/fastygo/checkout/internal/infrastructure/buffer"
	"github.com/fastygo/checkout/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/checkout/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/checkout/internal/infrastructure/redis"
	sqliteInfra "github.com/fastygo/checkout/internal/infrastructure/sqlite"
	"github.com/fastygo/checkout/internal/services"
	"github.com/fastygo/checkout/internal/services/lifecycle"
	"github.com/fastygo/checkout/repository"
	"github.com/fastygo/checkout/repository/postgres"
	redisRepo "github.com/fastygo/checkout/repository/redis"
	"github.com/fastygo/checkout/repository/sqlite"
	"github.com/fastygo/checkout/usecase"
	checkoutUC "github.com/fastygo/checkout/usecase/checkout"
	customerUC "github.com/fastygo/checkout/usecase/customer"
)

const monitorInterval = 10 * time.Second

type stores struct {
	orders    repository.OrderRepository
	customers repository.CustomerRepository
	products  repository.ProductRepository
	checks    map[string]monitor.Check
}

type app struct {
	stores
	monitor   *monitor.Monitor
	processor *services.BufferProcessor
	bus       *usecase.Dispatcher
}

// build opens every dependency named by cfg and registers its shutdown with
// manager, so a partial failure can still be unwound by the caller.
func build(ctx context.Context, cfg *config.Config, log *zap.Logger, manager *lifecycle.Manager) (*app, error) {
	st, err := openStores(ctx, cfg, log, manager)
	if err != nil {
		return nil, err
	}

	var cacheCheck monitor.Check
	if cfg.Redis.Enabled {
		client, err := redisInfra.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			// the cache is optional; reads go straight to storage
			log.Warn("redis unavailable, order cache disabled", zap.Error(err))
		} else {
			manager.Register("redis", func(context.Context) error {
				redisInfra.Close(client, log)
				return nil
			})
			st.orders = redisRepo.NewOrderCache(client, st.orders, cfg.Redis.CacheTTL, log)
			cacheCheck = monitor.RedisCheck(client)
		}
	}

	bufferStore, err := buffer.Open(cfg.Buffer.Path, "")
	if err != nil {
		return nil, fmt.Errorf("open buffer store: %w", err)
	}
	manager.Register("buffer", func(context.Context) error {
		return bufferStore.Close()
	})

	mon := monitor.New(st.checks, bufferStore, monitorInterval, log)
	if cacheCheck != nil {
		mon.AddAdvisory("redis", cacheCheck)
	}
	mon.Start()
	manager.Register("monitor", func(context.Context) error {
		mon.Stop()
		return nil
	})

	processor := services.NewBufferProcessor(
		bufferStore,
		mon,
		st.orders,
		st.customers,
		log,
		services.ProcessorConfig{
			Interval:   cfg.Buffer.SyncInterval,
			BatchSize:  50,
			MaxRetries: cfg.Buffer.MaxRetry,
			Retention:  cfg.Buffer.Retention,
		},
	)
	processor.Start()
	manager.Register("buffer_processor", func(ctx context.Context) error {
		processor.Stop(ctx)
		return nil
	})

	bridge := services.NewBufferBridge(processor)

	events := event.NewDispatcher()
	services.RegisterLogHandlers(events, log)

	customers := customerUC.New(st.customers, events, bridge, log)
	orders := checkoutUC.New(st.orders, st.products, events, bridge, log)

	bus := usecase.NewDispatcher()
	registerOperations(bus, customers, orders, st.products)

	return &app{
		stores:    *st,
		monitor:   mon,
		processor: processor,
		bus:       bus,
	}, nil
}

func openStores(ctx context.Context, cfg *config.Config, log *zap.Logger, manager *lifecycle.Manager) (*stores, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		if err := pgInfra.RunMigrations(cfg, log); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, log)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		manager.Register("postgres", func(context.Context) error {
			pgInfra.Close(pool, log)
			return nil
		})
		return &stores{
			orders:    postgres.NewOrderRepository(pool),
			customers: postgres.NewCustomerRepository(pool),
			products:  postgres.NewProductRepository(pool),
			checks:    map[string]monitor.Check{"postgres": monitor.PostgresCheck(pool)},
		}, nil

	default:
		db, err := sqliteInfra.Open(ctx, cfg.Storage.SQLitePath, log)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		manager.Register("sqlite", func(context.Context) error {
			return db.Close()
		})
		return &stores{
			orders:    sqlite.NewOrderRepository(db),
			customers: sqlite.NewCustomerRepository(db),
			products:  sqlite.NewProductRepository(db),
			checks:    map[string]monitor.Check{"sqlite": monitor.SQLiteCheck(db)},
		}, nil
	}
}
