package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marketlens/marketlens/internal/domain"
)

// previousKey holds the previous cycle's comparisons, which the delta pass
// reads at the start of the next cycle.
const previousKey = "comparisons:previous"

// previousTTL bounds how long a stale previous cycle survives a stopped
// tracker. A deltaless cold start is preferable to deltas computed against
// hours-old prices.
const previousTTL = 30 * time.Minute

// ComparisonCache implements domain.ComparisonCache on a single Redis key
// holding the previous cycle as a JSON array.
type ComparisonCache struct {
	rdb *redis.Client
}

var _ domain.ComparisonCache = (*ComparisonCache)(nil)

// NewComparisonCache creates a ComparisonCache backed by the given Client.
func NewComparisonCache(c *Client) *ComparisonCache {
	return &ComparisonCache{rdb: c.Underlying()}
}

// SetPrevious replaces the stored previous cycle.
func (cc *ComparisonCache) SetPrevious(ctx context.Context, comps []domain.Comparison) error {
	payload, err := json.Marshal(comps)
	if err != nil {
		return fmt.Errorf("redis: marshal previous comparisons: %w", err)
	}
	if err := cc.rdb.Set(ctx, previousKey, payload, previousTTL).Err(); err != nil {
		return fmt.Errorf("redis: set previous comparisons: %w", err)
	}
	return nil
}

// GetPrevious returns the stored previous cycle, or domain.ErrNotFound when
// no cycle has been stored (or it expired).
func (cc *ComparisonCache) GetPrevious(ctx context.Context) ([]domain.Comparison, error) {
	payload, err := cc.rdb.Get(ctx, previousKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get previous comparisons: %w", err)
	}

	var comps []domain.Comparison
	if err := json.Unmarshal(payload, &comps); err != nil {
		return nil, fmt.Errorf("redis: decode previous comparisons: %w", err)
	}
	return comps, nil
}
