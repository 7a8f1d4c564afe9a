package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	domain_entity "portfolio_checker/internal/domain/entity"
	"portfolio_checker/internal/entity"
	"portfolio_checker/internal/port"
	"portfolio_checker/pkg/metrics"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// jupiterPriceClientImpl implements port.PriceClient against Jupiter price v2.
type jupiterPriceClientImpl struct {
	client             *fasthttp.Client
	baseURL            string
	referer            string
	timeout            time.Duration
	logger             *zap.Logger
	maxMintsPerRequest int
}

// NewJupiterPriceClient creates a new instance of jupiterPriceClientImpl.
func NewJupiterPriceClient(baseURL, referer string, timeout time.Duration, logger *zap.Logger, maxMintsPerRequest int) port.PriceClient {
	return &jupiterPriceClientImpl{
		client:             &fasthttp.Client{},
		baseURL:            strings.TrimRight(baseURL, "/"),
		referer:            referer,
		timeout:            timeout,
		logger:             logger.Named("JupiterPriceClient"),
		maxMintsPerRequest: maxMintsPerRequest,
	}
}

// GetPrices implements the port.PriceClient interface. Mints unknown to
// Jupiter are simply absent from the returned map.
func (c *jupiterPriceClientImpl) GetPrices(ctx context.Context, mints []string) (map[string]entity.TokenPrice, error) {
	if len(mints) == 0 {
		return nil, fmt.Errorf("%w: mints cannot be empty", domain_entity.ErrInvalidInput)
	}
	if len(mints) > c.maxMintsPerRequest {
		c.logger.Warn("Number of mints exceeds maxMintsPerRequest",
			zap.Int("requestedCount", len(mints)),
			zap.Int("maxAllowed", c.maxMintsPerRequest))
		return nil, fmt.Errorf("%w: number of mints (%d) exceeds max mints per request (%d)",
			domain_entity.ErrInvalidInput, len(mints), c.maxMintsPerRequest)
	}

	ids := strings.Join(mints, ",")
	requestURL := fmt.Sprintf("%s/price/v2?ids=%s&showExtraInfo=true&includeHistory=true", c.baseURL, ids)

	c.logger.Debug("Requesting token prices from Jupiter", zap.Int("mintCount", len(mints)))

	rawBody, statusCode, err := doJupiterRequest(ctx, c.client, requestURL, c.referer, c.timeout, "jupiter_price")
	if err != nil {
		c.logger.Error("Failed to execute request to Jupiter price API", zap.String("url", requestURL), zap.Error(err))
		return nil, fmt.Errorf("%w: price request to %s: %v", domain_entity.ErrUpstream, requestURL, err)
	}

	switch statusCode {
	case fasthttp.StatusOK:
		// fall through to parsing
	case fasthttp.StatusTooManyRequests:
		c.logger.Warn("Jupiter price API rate limited the request", zap.Int("mintCount", len(mints)))
		return nil, fmt.Errorf("%w: jupiter price API returned 429", domain_entity.ErrRateLimited)
	case fasthttp.StatusBadRequest:
		return nil, fmt.Errorf("%w: jupiter price API returned 400: %s", domain_entity.ErrInvalidInput, string(rawBody))
	default:
		c.logger.Error("Jupiter price API request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", statusCode),
			zap.ByteString("responseBody", rawBody))
		return nil, fmt.Errorf("%w: jupiter price API returned %d", domain_entity.ErrUpstream, statusCode)
	}

	var priceResp entity.PriceResponse
	if err := json.Unmarshal(rawBody, &priceResp); err != nil {
		c.logger.Error("Failed to unmarshal Jupiter price response",
			zap.String("url", requestURL),
			zap.ByteString("responseBody", rawBody),
			zap.Error(err))
		return nil, fmt.Errorf("%w: failed to unmarshal price response: %v", domain_entity.ErrUpstream, err)
	}

	if priceResp.Data == nil {
		priceResp.Data = make(map[string]entity.TokenPrice)
	}

	c.logger.Debug("Successfully fetched token prices",
		zap.Int("requested", len(mints)),
		zap.Int("priced", len(priceResp.Data)))
	return priceResp.Data, nil
}

// doJupiterRequest issues a GET with the shared fasthttp acquire/release
// pattern, honoring the context deadline when present. Returns a copy of the
// body so it outlives the released response.
func doJupiterRequest(ctx context.Context, client *fasthttp.Client, requestURL, referer string, timeout time.Duration, upstream string) ([]byte, int, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetContentTypeBytes([]byte("application/json"))
	if referer != "" {
		req.Header.Set(fasthttp.HeaderReferer, referer)
		req.Header.Set(fasthttp.HeaderOrigin, referer)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	start := time.Now()
	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = client.DoDeadline(req, resp, deadline)
	} else {
		err = client.DoTimeout(req, resp, timeout)
	}
	metrics.UpstreamRequestDuration.WithLabelValues(upstream).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(upstream, "transport_error").Inc()
		return nil, 0, err
	}

	outcome := "success"
	if resp.StatusCode() != fasthttp.StatusOK {
		outcome = fmt.Sprintf("http_%d", resp.StatusCode())
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(upstream, outcome).Inc()

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return body, resp.StatusCode(), nil
}
