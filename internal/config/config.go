package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds the overall configuration for the application.
type Config struct {
	Server           ServerConfig           `yaml:"server"`
	Solana           SolanaConfig           `yaml:"solana"`
	Jupiter          JupiterConfig          `yaml:"jupiter"`
	PortfolioService PortfolioServiceConfig `yaml:"portfolioService"`
	VerifiedTokens   VerifiedTokensConfig   `yaml:"verifiedTokens"`
	ProxyCache       ProxyCacheConfig       `yaml:"proxyCache"`
	Logging          LoggingConfig          `yaml:"logging"`
}

// ServerConfig holds the server-specific configuration.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
}

// SolanaConfig holds the configuration for the Solana RPC client.
type SolanaConfig struct {
	RPCURL               string `yaml:"rpcURL"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// JupiterConfig holds the configuration for the Jupiter API clients.
type JupiterConfig struct {
	PriceBaseURL         string `yaml:"priceBaseURL"`
	TokenBaseURL         string `yaml:"tokenBaseURL"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
	Referer              string `yaml:"referer"`
}

// PortfolioServiceConfig holds configuration for the PortfolioService.
type PortfolioServiceConfig struct {
	MinEnrichValueUSD        float64 `yaml:"minEnrichValueUSD"`
	MaxTokensPerBatchRequest int     `yaml:"maxTokensPerBatchRequest"`
	MaxConcurrentEnrichments int     `yaml:"maxConcurrentEnrichments"`
	EnrichRateLimit          float64 `yaml:"enrichRateLimit"`
	EnrichBurstLimit         int     `yaml:"enrichBurstLimit"`
}

// VerifiedTokensConfig holds configuration for the verified-token cache.
type VerifiedTokensConfig struct {
	TTLMinutes             int `yaml:"ttlMinutes"`
	CleanupIntervalMinutes int `yaml:"cleanupIntervalMinutes"`
}

// ProxyCacheConfig holds freshness windows for the cached proxy endpoints,
// in seconds. Fresh is how long a cached body is served as-is; stale is the
// additional stale-while-revalidate window advertised to clients.
type ProxyCacheConfig struct {
	PriceFreshSeconds int `yaml:"priceFreshSeconds"`
	PriceStaleSeconds int `yaml:"priceStaleSeconds"`
	TokenFreshSeconds int `yaml:"tokenFreshSeconds"`
	TokenStaleSeconds int `yaml:"tokenStaleSeconds"`
}

// LoggingConfig holds the configuration for logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // e.g., "debug", "info", "warn", "error"
	File  string `yaml:"file"`
}

// LoadConfig loads configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		logrus.Errorf("Failed to unmarshal config data from %s: %v", path, err)
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	applyDefaults(&cfg)

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
	}

	if cfg.Solana.RPCURL == "" {
		cfg.Solana.RPCURL = "https://api.mainnet-beta.solana.com"
		logrus.Infof("Solana.RPCURL not set, defaulting to %s", cfg.Solana.RPCURL)
	}
	if cfg.Solana.RequestTimeoutMillis == 0 {
		cfg.Solana.RequestTimeoutMillis = 15000
	}

	if cfg.Jupiter.PriceBaseURL == "" {
		cfg.Jupiter.PriceBaseURL = "https://api.jup.ag"
		logrus.Infof("Jupiter.PriceBaseURL not set, defaulting to %s", cfg.Jupiter.PriceBaseURL)
	}
	if cfg.Jupiter.TokenBaseURL == "" {
		cfg.Jupiter.TokenBaseURL = "https://tokens.jup.ag"
		logrus.Infof("Jupiter.TokenBaseURL not set, defaulting to %s", cfg.Jupiter.TokenBaseURL)
	}
	if cfg.Jupiter.RequestTimeoutMillis == 0 {
		cfg.Jupiter.RequestTimeoutMillis = 10000
	}

	if cfg.PortfolioService.MinEnrichValueUSD == 0 {
		// Holdings below one dollar are never enriched, which bounds the
		// number of metadata requests per fetch cycle.
		cfg.PortfolioService.MinEnrichValueUSD = 1.0
	}
	if cfg.PortfolioService.MaxTokensPerBatchRequest == 0 {
		cfg.PortfolioService.MaxTokensPerBatchRequest = 100
		logrus.Infof("MaxTokensPerBatchRequest not set, defaulting to %d", cfg.PortfolioService.MaxTokensPerBatchRequest)
	}
	if cfg.PortfolioService.MaxConcurrentEnrichments == 0 {
		cfg.PortfolioService.MaxConcurrentEnrichments = 4
	}
	if cfg.PortfolioService.EnrichRateLimit == 0 {
		cfg.PortfolioService.EnrichRateLimit = 10
	}
	if cfg.PortfolioService.EnrichBurstLimit == 0 {
		cfg.PortfolioService.EnrichBurstLimit = 5
	}

	if cfg.VerifiedTokens.TTLMinutes == 0 {
		cfg.VerifiedTokens.TTLMinutes = 5
	}
	if cfg.VerifiedTokens.CleanupIntervalMinutes == 0 {
		cfg.VerifiedTokens.CleanupIntervalMinutes = 10
	}

	if cfg.ProxyCache.PriceFreshSeconds == 0 {
		cfg.ProxyCache.PriceFreshSeconds = 10
	}
	if cfg.ProxyCache.PriceStaleSeconds == 0 {
		cfg.ProxyCache.PriceStaleSeconds = 30
	}
	if cfg.ProxyCache.TokenFreshSeconds == 0 {
		cfg.ProxyCache.TokenFreshSeconds = 300
	}
	if cfg.ProxyCache.TokenStaleSeconds == 0 {
		cfg.ProxyCache.TokenStaleSeconds = 600
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
