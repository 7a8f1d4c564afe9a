package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: \":9090\"\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, "https://api.mainnet-beta.solana.com", cfg.Solana.RPCURL)
	assert.Equal(t, "https://api.jup.ag", cfg.Jupiter.PriceBaseURL)
	assert.Equal(t, "https://tokens.jup.ag", cfg.Jupiter.TokenBaseURL)
	assert.InDelta(t, 1.0, cfg.PortfolioService.MinEnrichValueUSD, 1e-9)
	assert.Equal(t, 100, cfg.PortfolioService.MaxTokensPerBatchRequest)
	assert.Equal(t, 4, cfg.PortfolioService.MaxConcurrentEnrichments)
	assert.Equal(t, 10, cfg.ProxyCache.PriceFreshSeconds)
	assert.Equal(t, 600, cfg.ProxyCache.TokenStaleSeconds)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
solana:
  rpcURL: "http://localhost:8899"
portfolioService:
  minEnrichValueUSD: 2.5
  maxTokensPerBatchRequest: 50
proxyCache:
  priceFreshSeconds: 5
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8899", cfg.Solana.RPCURL)
	assert.InDelta(t, 2.5, cfg.PortfolioService.MinEnrichValueUSD, 1e-9)
	assert.Equal(t, 50, cfg.PortfolioService.MaxTokensPerBatchRequest)
	assert.Equal(t, 5, cfg.ProxyCache.PriceFreshSeconds)
	assert.Equal(t, 30, cfg.ProxyCache.PriceStaleSeconds)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigBadYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a mapping")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}
