package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/retailpos/backend/internal/domain/catalog"
	"go.uber.org/zap"
)

// ReferenceCache is a read-through Redis cache in front of a
// catalog.ReferenceReader. Reference data changes rarely relative to how
// often the transaction workflows resolve it, so entries are cached with a
// short TTL rather than invalidated. Customers are deliberately not cached:
// their last-purchase timestamp is written by the engine itself.
type ReferenceCache struct {
	inner  catalog.ReferenceReader
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

var _ catalog.ReferenceReader = (*ReferenceCache)(nil)

// NewReferenceCache wraps the given reader with a Redis cache. The caller
// retains ownership of the Redis client.
func NewReferenceCache(inner catalog.ReferenceReader, client *redis.Client, ttl time.Duration, logger *zap.Logger) *ReferenceCache {
	return &ReferenceCache{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger.Named("refcache"),
	}
}

// readThrough loads the cached value at key, falling back to load on a miss
// or any Redis failure. Cache errors never fail the read.
func readThrough[T any](ctx context.Context, c *ReferenceCache, key string, load func() (*T, error)) (*T, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var value T
		if err := json.Unmarshal(data, &value); err == nil {
			return &value, nil
		}
		c.logger.Warn("Discarding undecodable cache entry", zap.String("key", key))
	} else if err != redis.Nil {
		c.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
	}

	value, err := load()
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(value); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return value, nil
}

func (c *ReferenceCache) GetProduct(ctx context.Context, tenantID, productID uuid.UUID) (*catalog.Product, error) {
	key := fmt.Sprintf("ref:%s:product:%s", tenantID, productID)
	return readThrough(ctx, c, key, func() (*catalog.Product, error) {
		return c.inner.GetProduct(ctx, tenantID, productID)
	})
}

func (c *ReferenceCache) GetCurrency(ctx context.Context, tenantID uuid.UUID, code string) (*catalog.Currency, error) {
	key := fmt.Sprintf("ref:%s:currency:%s", tenantID, code)
	return readThrough(ctx, c, key, func() (*catalog.Currency, error) {
		return c.inner.GetCurrency(ctx, tenantID, code)
	})
}

func (c *ReferenceCache) GetPaymentMethod(ctx context.Context, tenantID, methodID uuid.UUID) (*catalog.PaymentMethod, error) {
	key := fmt.Sprintf("ref:%s:method:%s", tenantID, methodID)
	return readThrough(ctx, c, key, func() (*catalog.PaymentMethod, error) {
		return c.inner.GetPaymentMethod(ctx, tenantID, methodID)
	})
}

func (c *ReferenceCache) GetBranch(ctx context.Context, tenantID, branchID uuid.UUID) (*catalog.Branch, error) {
	key := fmt.Sprintf("ref:%s:branch:%s", tenantID, branchID)
	return readThrough(ctx, c, key, func() (*catalog.Branch, error) {
		return c.inner.GetBranch(ctx, tenantID, branchID)
	})
}

func (c *ReferenceCache) GetTill(ctx context.Context, tenantID, tillID uuid.UUID) (*catalog.Till, error) {
	key := fmt.Sprintf("ref:%s:till:%s", tenantID, tillID)
	return readThrough(ctx, c, key, func() (*catalog.Till, error) {
		return c.inner.GetTill(ctx, tenantID, tillID)
	})
}

func (c *ReferenceCache) GetBranchSettings(ctx context.Context, tenantID, branchID uuid.UUID) (*catalog.BranchSettings, error) {
	key := fmt.Sprintf("ref:%s:settings:%s", tenantID, branchID)
	return readThrough(ctx, c, key, func() (*catalog.BranchSettings, error) {
		return c.inner.GetBranchSettings(ctx, tenantID, branchID)
	})
}

// GetCustomer always hits the underlying reader, see the type comment.
func (c *ReferenceCache) GetCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*catalog.Customer, error) {
	return c.inner.GetCustomer(ctx, tenantID, customerID)
}

func (c *ReferenceCache) GetTenantDefaults(ctx context.Context, tenantID uuid.UUID) (*catalog.TenantDefaults, error) {
	key := fmt.Sprintf("ref:%s:defaults", tenantID)
	return readThrough(ctx, c, key, func() (*catalog.TenantDefaults, error) {
		return c.inner.GetTenantDefaults(ctx, tenantID)
	})
}
