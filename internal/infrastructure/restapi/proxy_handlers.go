package restapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"portfolio_checker/internal/config"
	"portfolio_checker/internal/entity"
	"portfolio_checker/internal/port"
	"portfolio_checker/pkg/metrics"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ProxyHandler fronts the Jupiter upstreams with short-TTL response caches.
// Freshness is a performance concern here, not correctness: clients must
// tolerate responses up to one fresh window old.
type ProxyHandler struct {
	priceClient port.PriceClient
	tokenClient port.TokenMetadataClient
	priceCache  *cache.Cache
	tokenCache  *cache.Cache
	cfg         *config.Config
	logger      *zap.Logger
}

// NewProxyHandler creates a new instance of ProxyHandler.
func NewProxyHandler(priceClient port.PriceClient, tokenClient port.TokenMetadataClient, cfg *config.Config, logger *zap.Logger) *ProxyHandler {
	priceFresh := time.Duration(cfg.ProxyCache.PriceFreshSeconds) * time.Second
	tokenFresh := time.Duration(cfg.ProxyCache.TokenFreshSeconds) * time.Second
	return &ProxyHandler{
		priceClient: priceClient,
		tokenClient: tokenClient,
		priceCache:  cache.New(priceFresh, 2*priceFresh),
		tokenCache:  cache.New(tokenFresh, 2*tokenFresh),
		cfg:         cfg,
		logger:      logger.Named("ProxyHandler"),
	}
}

// GetPricesHandler serves GET /api/v1/jupiter-price?ids=mint1,mint2.
func (h *ProxyHandler) GetPricesHandler(c *gin.Context) {
	ids := c.Query("ids")
	if ids == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token IDs are required"})
		return
	}

	cacheKey := "price:" + ids
	if h.serveCached(c, h.priceCache, cacheKey, "price", h.cfg.ProxyCache.PriceFreshSeconds, h.cfg.ProxyCache.PriceStaleSeconds) {
		return
	}

	mints := strings.Split(ids, ",")
	prices, err := h.priceClient.GetPrices(c.Request.Context(), mints)
	if err != nil {
		h.logger.Error("Price proxy request failed", zap.Error(err))
		c.JSON(statusFromError(err), gin.H{"error": "Failed to fetch prices", "details": err.Error()})
		return
	}

	h.respondAndCache(c, h.priceCache, cacheKey, "price",
		h.cfg.ProxyCache.PriceFreshSeconds, h.cfg.ProxyCache.PriceStaleSeconds,
		gin.H{"data": prices})
}

// GetMintHandler serves GET /api/v1/mint?mint=addr with the flattened token
// record.
func (h *ProxyHandler) GetMintHandler(c *gin.Context) {
	mint := c.Query("mint")
	if mint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Mint address is required"})
		return
	}

	cacheKey := "mint:" + mint
	if h.serveCached(c, h.tokenCache, cacheKey, "mint", h.cfg.ProxyCache.TokenFreshSeconds, h.cfg.ProxyCache.TokenStaleSeconds) {
		return
	}

	info, err := h.tokenClient.GetMintInfo(c.Request.Context(), mint)
	if err != nil {
		status := statusFromError(err)
		if status == http.StatusNotFound {
			c.JSON(status, gin.H{"error": "Token not found"})
			return
		}
		h.logger.Error("Mint proxy request failed", zap.String("mint", mint), zap.Error(err))
		c.JSON(status, gin.H{"error": "Failed to fetch token info", "details": err.Error()})
		return
	}

	h.respondAndCache(c, h.tokenCache, cacheKey, "mint",
		h.cfg.ProxyCache.TokenFreshSeconds, h.cfg.ProxyCache.TokenStaleSeconds,
		info)
}

// GetTagsHandler serves GET /api/v1/tags?tags=verified with the tag-filtered
// token list, keyed by mint.
func (h *ProxyHandler) GetTagsHandler(c *gin.Context) {
	tags := c.DefaultQuery("tags", entity.VerifiedTag)

	cacheKey := "tags:" + tags
	if h.serveCached(c, h.tokenCache, cacheKey, "tags", h.cfg.ProxyCache.TokenFreshSeconds, h.cfg.ProxyCache.TokenStaleSeconds) {
		return
	}

	records, err := h.tokenClient.GetTokensByTag(c.Request.Context(), tags)
	if err != nil {
		h.logger.Error("Tags proxy request failed", zap.String("tags", tags), zap.Error(err))
		c.JSON(statusFromError(err), gin.H{"error": "Failed to fetch tokens", "details": err.Error()})
		return
	}

	h.respondAndCache(c, h.tokenCache, cacheKey, "tags",
		h.cfg.ProxyCache.TokenFreshSeconds, h.cfg.ProxyCache.TokenStaleSeconds,
		records)
}

// serveCached writes the cached body for key if present and still fresh.
func (h *ProxyHandler) serveCached(c *gin.Context, store *cache.Cache, key, endpoint string, freshSeconds, staleSeconds int) bool {
	cached, found := store.Get(key)
	if !found {
		metrics.ProxyCacheEvents.WithLabelValues(endpoint, "miss").Inc()
		return false
	}
	metrics.ProxyCacheEvents.WithLabelValues(endpoint, "hit").Inc()

	setCacheControl(c, freshSeconds, staleSeconds)
	c.Data(http.StatusOK, "application/json; charset=utf-8", cached.([]byte))
	return true
}

// respondAndCache marshals payload once, stores it under key and writes it.
func (h *ProxyHandler) respondAndCache(c *gin.Context, store *cache.Cache, key, endpoint string, freshSeconds, staleSeconds int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal proxy response", zap.String("endpoint", endpoint), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	store.Set(key, body, cache.DefaultExpiration)
	setCacheControl(c, freshSeconds, staleSeconds)
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func setCacheControl(c *gin.Context, freshSeconds, staleSeconds int) {
	c.Header("Cache-Control", fmt.Sprintf("public, s-maxage=%d, stale-while-revalidate=%d", freshSeconds, staleSeconds))
}
