package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	domain_entity "portfolio_checker/internal/domain/entity"
	"portfolio_checker/internal/entity"
	"portfolio_checker/internal/port"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// jupiterTokenClientImpl implements port.TokenMetadataClient against the
// tokens.jup.ag catalogue.
type jupiterTokenClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	referer string
	timeout time.Duration
	logger  *zap.Logger
}

// NewJupiterTokenClient creates a new instance of jupiterTokenClientImpl.
func NewJupiterTokenClient(baseURL, referer string, timeout time.Duration, logger *zap.Logger) port.TokenMetadataClient {
	return &jupiterTokenClientImpl{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		referer: referer,
		timeout: timeout,
		logger:  logger.Named("JupiterTokenClient"),
	}
}

// GetMintInfo implements the port.TokenMetadataClient interface.
func (c *jupiterTokenClientImpl) GetMintInfo(ctx context.Context, mint string) (*entity.MintInfo, error) {
	if mint == "" {
		return nil, fmt.Errorf("%w: mint cannot be empty", domain_entity.ErrInvalidInput)
	}

	requestURL := fmt.Sprintf("%s/token/%s", c.baseURL, url.PathEscape(mint))
	c.logger.Debug("Requesting mint metadata from Jupiter", zap.String("mint", mint))

	rawBody, statusCode, err := doJupiterRequest(ctx, c.client, requestURL, c.referer, c.timeout, "jupiter_token")
	if err != nil {
		c.logger.Error("Failed to execute request to Jupiter token API", zap.String("url", requestURL), zap.Error(err))
		return nil, fmt.Errorf("%w: token request to %s: %v", domain_entity.ErrUpstream, requestURL, err)
	}

	switch statusCode {
	case fasthttp.StatusOK:
		// fall through to parsing
	case fasthttp.StatusNotFound:
		return nil, fmt.Errorf("%w: mint %s unknown to jupiter", domain_entity.ErrNotFound, mint)
	case fasthttp.StatusTooManyRequests:
		c.logger.Warn("Jupiter token API rate limited the request", zap.String("mint", mint))
		return nil, fmt.Errorf("%w: jupiter token API returned 429", domain_entity.ErrRateLimited)
	case fasthttp.StatusBadRequest:
		return nil, fmt.Errorf("%w: jupiter token API returned 400: %s", domain_entity.ErrInvalidInput, string(rawBody))
	default:
		c.logger.Error("Jupiter token API request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", statusCode),
			zap.ByteString("responseBody", rawBody))
		return nil, fmt.Errorf("%w: jupiter token API returned %d", domain_entity.ErrUpstream, statusCode)
	}

	var record entity.TokenRecord
	if err := json.Unmarshal(rawBody, &record); err != nil {
		c.logger.Error("Failed to unmarshal Jupiter token response",
			zap.String("url", requestURL),
			zap.ByteString("responseBody", rawBody),
			zap.Error(err))
		return nil, fmt.Errorf("%w: failed to unmarshal token response: %v", domain_entity.ErrUpstream, err)
	}

	info := record.Flatten()
	return &info, nil
}

// GetTokensByTag implements the port.TokenMetadataClient interface. The
// upstream has served both a mint-keyed object and a plain array for this
// route; both shapes are accepted.
func (c *jupiterTokenClientImpl) GetTokensByTag(ctx context.Context, tag string) (map[string]entity.TokenRecord, error) {
	if tag == "" {
		tag = entity.VerifiedTag
	}

	requestURL := fmt.Sprintf("%s/tokens?tags=%s", c.baseURL, url.QueryEscape(tag))
	c.logger.Debug("Requesting tagged token list from Jupiter", zap.String("tag", tag))

	rawBody, statusCode, err := doJupiterRequest(ctx, c.client, requestURL, c.referer, c.timeout, "jupiter_token")
	if err != nil {
		c.logger.Error("Failed to execute request to Jupiter token API", zap.String("url", requestURL), zap.Error(err))
		return nil, fmt.Errorf("%w: token list request to %s: %v", domain_entity.ErrUpstream, requestURL, err)
	}

	switch statusCode {
	case fasthttp.StatusOK:
		// fall through to parsing
	case fasthttp.StatusTooManyRequests:
		c.logger.Warn("Jupiter token API rate limited the token list request", zap.String("tag", tag))
		return nil, fmt.Errorf("%w: jupiter token API returned 429", domain_entity.ErrRateLimited)
	default:
		c.logger.Error("Jupiter token list request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", statusCode))
		return nil, fmt.Errorf("%w: jupiter token API returned %d", domain_entity.ErrUpstream, statusCode)
	}

	var byMint map[string]entity.TokenRecord
	if err := json.Unmarshal(rawBody, &byMint); err == nil && byMint != nil {
		c.logger.Debug("Fetched tagged token list (object shape)", zap.String("tag", tag), zap.Int("count", len(byMint)))
		return byMint, nil
	}

	var records []entity.TokenRecord
	if err := json.Unmarshal(rawBody, &records); err != nil {
		c.logger.Error("Failed to unmarshal Jupiter token list response as object or array",
			zap.String("url", requestURL),
			zap.Error(err))
		return nil, fmt.Errorf("%w: failed to unmarshal token list response: %v", domain_entity.ErrUpstream, err)
	}

	byMint = make(map[string]entity.TokenRecord, len(records))
	for _, record := range records {
		byMint[record.Address] = record
	}
	c.logger.Debug("Fetched tagged token list (array shape)", zap.String("tag", tag), zap.Int("count", len(byMint)))
	return byMint, nil
}
