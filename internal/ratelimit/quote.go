package ratelimit

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/remag/internal/config"
)

const keyQuoteClient = "commission:quote:client:%s"

// QuoteLimiter throttles commission quote requests per client.
type QuoteLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewQuoteLimiter(cfg config.Config, client *redis.Client) (*QuoteLimiter, error) {
	if client == nil {
		return nil, nil
	}
	limitCfg := cfg.RateLimit
	if limitCfg.QuoteRate <= 0 {
		return nil, ErrInvalidRate
	}
	if limitCfg.QuoteBurst <= 0 {
		return nil, ErrInvalidBurst
	}

	return &QuoteLimiter{
		bucket: NewTokenBucket(client),
		rate:   limitCfg.QuoteRate,
		burst:  limitCfg.QuoteBurst,
	}, nil
}

func (l *QuoteLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// Allow admits every request when the limiter is disabled.
func (l *QuoteLimiter) Allow(ctx context.Context, clientID string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		clientID = "anonymous"
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyQuoteClient, clientID), l.rate, l.burst)
}
