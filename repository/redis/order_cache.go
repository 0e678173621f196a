package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/checkout/domain"
	"github.com/fastygo/checkout/repository"
)

const (
	defaultOrderTTL = 5 * time.Minute
	generationTTL   = 24 * time.Hour
)

var errStaleFill = errors.New("order changed while loading")

// orderCache is a read-through cache in front of another OrderRepository.
// Cache faults never fail a call; the wrapped repository stays authoritative.
// Every write bumps a per-order generation, and a miss only fills the cache
// when the generation read before loading is still current.
type orderCache struct {
	client *redislib.Client
	next   repository.OrderRepository
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewOrderCache wraps next with a Redis cache keyed by order id.
func NewOrderCache(client *redislib.Client, next repository.OrderRepository, ttl time.Duration, logger *zap.Logger) repository.OrderRepository {
	if ttl <= 0 {
		ttl = defaultOrderTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &orderCache{
		client: client,
		next:   next,
		prefix: "order:",
		ttl:    ttl,
		logger: logger,
	}
}

func (c *orderCache) Create(ctx context.Context, order *domain.Order) error {
	if err := c.next.Create(ctx, order); err != nil {
		return err
	}
	c.evict(ctx, order.ID())
	return nil
}

func (c *orderCache) Update(ctx context.Context, order *domain.Order) error {
	if err := c.next.Update(ctx, order); err != nil {
		return err
	}
	c.evict(ctx, order.ID())
	return nil
}

func (c *orderCache) Find(ctx context.Context, id string) (*domain.Order, error) {
	if order, ok := c.load(ctx, id); ok {
		return order, nil
	}

	gen, ok := c.generation(ctx, id)
	order, err := c.next.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if ok {
		c.store(ctx, order, gen)
	}
	return order, nil
}

func (c *orderCache) FindAll(ctx context.Context) ([]domain.Order, error) {
	return c.next.FindAll(ctx)
}

func (c *orderCache) load(ctx context.Context, id string) (*domain.Order, bool) {
	result, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redislib.Nil) {
			c.logger.Debug("order cache read failed", zap.String("order_id", id), zap.Error(err))
		}
		return nil, false
	}

	var record repository.OrderRecord
	if err := json.Unmarshal(result, &record); err != nil {
		c.logger.Debug("order cache entry unreadable", zap.String("order_id", id), zap.Error(err))
		return nil, false
	}
	order, err := record.ToDomain()
	if err != nil {
		c.logger.Debug("order cache entry invalid", zap.String("order_id", id), zap.Error(err))
		return nil, false
	}
	return order, true
}

func (c *orderCache) generation(ctx context.Context, id string) (int64, bool) {
	gen, err := c.client.Get(ctx, c.generationKey(id)).Int64()
	if err != nil && !errors.Is(err, redislib.Nil) {
		c.logger.Debug("order cache generation read failed", zap.String("order_id", id), zap.Error(err))
		return 0, false
	}
	return gen, true
}

func (c *orderCache) store(ctx context.Context, order *domain.Order, gen int64) {
	payload, err := json.Marshal(repository.NewOrderRecord(order))
	if err != nil {
		return
	}
	genKey := c.generationKey(order.ID())

	err = c.client.Watch(ctx, func(tx *redislib.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redislib.Nil) {
			return err
		}
		if current != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
			pipe.Set(ctx, c.key(order.ID()), payload, c.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleFill), errors.Is(err, redislib.TxFailedErr):
		c.logger.Debug("order cache fill skipped", zap.String("order_id", order.ID()))
	default:
		c.logger.Debug("order cache write failed", zap.String("order_id", order.ID()), zap.Error(err))
	}
}

func (c *orderCache) evict(ctx context.Context, id string) {
	genKey := c.generationKey(id)
	_, err := c.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		pipe.Del(ctx, c.key(id))
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		return nil
	})
	if err != nil {
		c.logger.Debug("order cache evict failed", zap.String("order_id", id), zap.Error(err))
	}
}

func (c *orderCache) key(id string) string {
	return fmt.Sprintf("%s%s", c.prefix, id)
}

func (c *orderCache) generationKey(id string) string {
	return c.key(id) + ":gen"
}
