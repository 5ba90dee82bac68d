package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wyfcoding/stocktrader/internal/marketdata/domain"
)

// QuoteRedisCache 基于 Redis 的价格快照缓存
type QuoteRedisCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewQuoteRedisCache 创建一个新的基于 Redis 的价格快照缓存。
func NewQuoteRedisCache(client redis.UniversalClient) *QuoteRedisCache {
	return &QuoteRedisCache{
		client: client,
		prefix: "trader:quote:",
		ttl:    24 * time.Hour,
	}
}

func (r *QuoteRedisCache) Set(ctx context.Context, quote *domain.Quote) error {
	if quote == nil {
		return nil
	}
	key := r.prefix + quote.SecurityID
	data, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("failed to marshal quote: %w", err)
	}
	return r.client.Set(ctx, key, data, r.ttl).Err()
}

func (r *QuoteRedisCache) Get(ctx context.Context, securityID string) (*domain.Quote, error) {
	key := r.prefix + securityID
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quote from redis: %w", err)
	}

	var quote domain.Quote
	if err := json.Unmarshal(data, &quote); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quote: %w", err)
	}
	return &quote, nil
}
