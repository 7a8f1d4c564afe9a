package restapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"portfolio_checker/internal/config"
	domain_entity "portfolio_checker/internal/domain/entity"
	"portfolio_checker/internal/entity"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockPriceClient struct {
	mu         sync.Mutex
	calls      int
	pricesFunc func(ctx context.Context, mints []string) (map[string]entity.TokenPrice, error)
}

func (m *mockPriceClient) GetPrices(ctx context.Context, mints []string) (map[string]entity.TokenPrice, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.pricesFunc != nil {
		return m.pricesFunc(ctx, mints)
	}
	return map[string]entity.TokenPrice{}, nil
}

type mockTokenClient struct {
	mu       sync.Mutex
	calls    int
	mintFunc func(ctx context.Context, mint string) (*entity.MintInfo, error)
	tagsFunc func(ctx context.Context, tag string) (map[string]entity.TokenRecord, error)
}

func (m *mockTokenClient) GetMintInfo(ctx context.Context, mint string) (*entity.MintInfo, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.mintFunc != nil {
		return m.mintFunc(ctx, mint)
	}
	return nil, fmt.Errorf("%w: no mint data", domain_entity.ErrNotFound)
}

func (m *mockTokenClient) GetTokensByTag(ctx context.Context, tag string) (map[string]entity.TokenRecord, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.tagsFunc != nil {
		return m.tagsFunc(ctx, tag)
	}
	return map[string]entity.TokenRecord{}, nil
}

func proxyTestConfig() *config.Config {
	return &config.Config{
		ProxyCache: config.ProxyCacheConfig{
			PriceFreshSeconds: 10,
			PriceStaleSeconds: 30,
			TokenFreshSeconds: 300,
			TokenStaleSeconds: 600,
		},
	}
}

func proxyTestRouter(prices *mockPriceClient, tokens *mockTokenClient) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewProxyHandler(prices, tokens, proxyTestConfig(), zap.NewNop())
	router.GET("/api/v1/jupiter-price", h.GetPricesHandler)
	router.GET("/api/v1/mint", h.GetMintHandler)
	router.GET("/api/v1/tags", h.GetTagsHandler)
	return router
}

func TestPriceProxyCachesResponse(t *testing.T) {
	prices := &mockPriceClient{
		pricesFunc: func(_ context.Context, mints []string) (map[string]entity.TokenPrice, error) {
			require.Equal(t, []string{"MintA", "MintB"}, mints)
			return map[string]entity.TokenPrice{
				"MintA": {ID: "MintA", Price: "1.5"},
				"MintB": {ID: "MintB", Price: "0.25"},
			}, nil
		},
	}
	router := proxyTestRouter(prices, &mockTokenClient{})

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/v1/jupiter-price?ids=MintA,MintB", nil))
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "public, s-maxage=10, stale-while-revalidate=30", first.Header().Get("Cache-Control"))
	assert.Contains(t, first.Body.String(), `"MintA"`)

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/v1/jupiter-price?ids=MintA,MintB", nil))
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, prices.calls, "second request must come from the cache")
}

func TestPriceProxyRequiresIDs(t *testing.T) {
	prices := &mockPriceClient{}
	router := proxyTestRouter(prices, &mockTokenClient{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/jupiter-price", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, prices.calls)
}

func TestPriceProxyRateLimitedPassesThrough(t *testing.T) {
	prices := &mockPriceClient{
		pricesFunc: func(_ context.Context, _ []string) (map[string]entity.TokenPrice, error) {
			return nil, fmt.Errorf("%w: jupiter price API returned 429", domain_entity.ErrRateLimited)
		},
	}
	router := proxyTestRouter(prices, &mockTokenClient{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/jupiter-price?ids=MintA", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestMintProxyNotFound(t *testing.T) {
	tokens := &mockTokenClient{
		mintFunc: func(_ context.Context, mint string) (*entity.MintInfo, error) {
			return nil, fmt.Errorf("%w: mint %s unknown to jupiter", domain_entity.ErrNotFound, mint)
		},
	}
	router := proxyTestRouter(&mockPriceClient{}, tokens)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/mint?mint=MintMissing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token not found")
}

func TestMintProxyCachesRecord(t *testing.T) {
	tokens := &mockTokenClient{
		mintFunc: func(_ context.Context, mint string) (*entity.MintInfo, error) {
			return &entity.MintInfo{Mint: mint, Name: "Test Token", Symbol: "TST"}, nil
		},
	}
	router := proxyTestRouter(&mockPriceClient{}, tokens)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/mint?mint=MintA", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "public, s-maxage=300, stale-while-revalidate=600", rec.Header().Get("Cache-Control"))
		assert.Contains(t, rec.Body.String(), `"TST"`)
	}
	assert.Equal(t, 1, tokens.calls)
}

func TestTagsProxyDefaultsToVerified(t *testing.T) {
	var gotTag string
	tokens := &mockTokenClient{
		tagsFunc: func(_ context.Context, tag string) (map[string]entity.TokenRecord, error) {
			gotTag = tag
			return map[string]entity.TokenRecord{
				"MintA": {Address: "MintA", Symbol: "TST", Tags: []string{entity.VerifiedTag}},
			}, nil
		},
	}
	router := proxyTestRouter(&mockPriceClient{}, tokens)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tags", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entity.VerifiedTag, gotTag)
	assert.Contains(t, rec.Body.String(), `"MintA"`)
}
