package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ariefcatur/storefront/internal/redisx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Cached is a read-through Redis cache in front of another Source. Redis
// failures fall back to the wrapped source.
type Cached struct {
	Next  Source
	Redis redis.Cmdable
	TTL   time.Duration
	Log   zerolog.Logger
}

func (c *Cached) ListProducts(ctx context.Context) ([]Product, error) {
	b, err := c.Redis.Get(ctx, redisx.KeyCatalog).Bytes()
	switch {
	case err == nil:
		var ps []Product
		if err := json.Unmarshal(b, &ps); err == nil {
			return ps, nil
		}
		c.Log.Warn().Msg("catalog cache entry undecodable, reloading")
	case !errors.Is(err, redis.Nil):
		c.Log.Warn().Err(err).Msg("catalog cache get")
	}

	ps, err := c.Next.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	ttl := c.TTL
	if ttl <= 0 {
		ttl = redisx.TTLCatalog
	}
	if enc, err := json.Marshal(ps); err == nil {
		if err := c.Redis.Set(ctx, redisx.KeyCatalog, enc, ttl).Err(); err != nil {
			c.Log.Warn().Err(err).Msg("catalog cache set")
		}
	}
	return ps, nil
}
