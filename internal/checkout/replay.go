package checkout

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ariefcatur/storefront/internal/cart"
	"github.com/ariefcatur/storefront/internal/redisx"
	"github.com/redis/go-redis/v9"
)

// ReplayCache remembers the result of a checkout per Idempotency-Key so a
// retried request gets the same hosted URL instead of a second order. Each
// entry is bound to the buyer and cart that created it.
type ReplayCache struct {
	Redis redis.Cmdable
	TTL   time.Duration
}

type replayEntry struct {
	OrderID     int64  `json:"order_id"`
	HostedURL   string `json:"hosted_url"`
	Fingerprint string `json:"fingerprint"`
}

// Fingerprint identifies a checkout by buyer email and normalized lines.
// Prices are left out so a retry survives a catalog update.
func Fingerprint(email string, n cart.Normalized) string {
	h := sha256.New()
	h.Write([]byte(email))
	for _, l := range n.Lines {
		h.Write([]byte{0})
		h.Write([]byte(strconv.FormatInt(l.Product.ID, 10) + "x" + strconv.Itoa(l.Quantity)))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns ErrIdempotencyMismatch when key was used for a different request.
func (c *ReplayCache) Get(ctx context.Context, key, fingerprint string) (Result, bool, error) {
	b, err := c.Redis.Get(ctx, fmt.Sprintf(redisx.KeyIdemCheckout, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Result{}, false, nil
	}
	if err != nil {
		return Result{}, false, err
	}
	var e replayEntry
	if err := json.Unmarshal(b, &e); err != nil {
		return Result{}, false, err
	}
	if e.Fingerprint != fingerprint {
		return Result{}, false, ErrIdempotencyMismatch
	}
	return Result{OrderID: e.OrderID, HostedURL: e.HostedURL, Replayed: true}, true, nil
}

func (c *ReplayCache) Put(ctx context.Context, key, fingerprint string, r Result) error {
	ttl := c.TTL
	if ttl <= 0 {
		ttl = redisx.TTLIdempotency
	}
	b, err := json.Marshal(replayEntry{OrderID: r.OrderID, HostedURL: r.HostedURL, Fingerprint: fingerprint})
	if err != nil {
		return err
	}
	return c.Redis.Set(ctx, fmt.Sprintf(redisx.KeyIdemCheckout, key), b, ttl).Err()
}
