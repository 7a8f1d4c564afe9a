package service

import (
	"context"
	"sync"
	"time"

	"portfolio_checker/internal/entity"
	"portfolio_checker/internal/port"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const verifiedSetCacheKey = "verified_mints"

// VerifiedTokenCache keeps the verified-token mint set in an explicit TTL
// cache. It is constructed once and handed to whoever needs verification
// lookups; there is no package-level state. The set is lazily refreshed from
// the tag-filtered token list when the TTL lapses.
type VerifiedTokenCache struct {
	tokenClient port.TokenMetadataClient
	cache       *cache.Cache
	logger      *zap.Logger

	mu sync.Mutex // serializes refreshes so only one upstream call runs
}

// NewVerifiedTokenCache creates a new VerifiedTokenCache with the given TTL.
func NewVerifiedTokenCache(tokenClient port.TokenMetadataClient, ttl, cleanupInterval time.Duration, logger *zap.Logger) *VerifiedTokenCache {
	return &VerifiedTokenCache{
		tokenClient: tokenClient,
		cache:       cache.New(ttl, cleanupInterval),
		logger:      logger.Named("VerifiedTokenCache"),
	}
}

// IsVerified implements the port.VerifiedTokenProvider interface. A refresh
// failure is non-fatal: the mint is reported unverified and the next call
// retries.
func (c *VerifiedTokenCache) IsVerified(ctx context.Context, mint string) bool {
	set, err := c.verifiedSet(ctx)
	if err != nil {
		c.logger.Warn("Verified set unavailable, treating mint as unverified",
			zap.String("mint", mint),
			zap.Error(err))
		return false
	}
	_, ok := set[mint]
	return ok
}

// Refresh forces a reload of the verified set, e.g. to warm the cache at
// startup.
func (c *VerifiedTokenCache) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.reload(ctx)
	return err
}

func (c *VerifiedTokenCache) verifiedSet(ctx context.Context) (map[string]struct{}, error) {
	if cached, found := c.cache.Get(verifiedSetCacheKey); found {
		return cached.(map[string]struct{}), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another caller may have refreshed while we waited for the lock.
	if cached, found := c.cache.Get(verifiedSetCacheKey); found {
		return cached.(map[string]struct{}), nil
	}
	return c.reload(ctx)
}

func (c *VerifiedTokenCache) reload(ctx context.Context) (map[string]struct{}, error) {
	records, err := c.tokenClient.GetTokensByTag(ctx, entity.VerifiedTag)
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, len(records))
	for mint := range records {
		set[mint] = struct{}{}
	}
	c.cache.Set(verifiedSetCacheKey, set, cache.DefaultExpiration)

	c.logger.Info("Refreshed verified token set", zap.Int("count", len(set)))
	return set, nil
}
