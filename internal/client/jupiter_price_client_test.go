package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domain_entity "portfolio_checker/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testMintA = "MintAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

func TestGetPricesParsesResponse(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"data": {
				"` + testMintA + `": {
					"id": "` + testMintA + `",
					"type": "derivedPrice",
					"price": "1.25",
					"extraInfo": {"confidenceLevel": "high"},
					"priceChange": {"24h": -3.5}
				}
			},
			"timeTaken": 0.002
		}`))
	}))
	defer srv.Close()

	pc := NewJupiterPriceClient(srv.URL, "http://localhost:8080", 5*time.Second, zap.NewNop(), 100)
	prices, err := pc.GetPrices(context.Background(), []string{testMintA})
	require.NoError(t, err)

	assert.Equal(t, "/price/v2", gotPath)
	assert.Contains(t, gotQuery, "ids="+testMintA)
	assert.Contains(t, gotQuery, "showExtraInfo=true")

	require.Contains(t, prices, testMintA)
	tp := prices[testMintA]
	assert.Equal(t, "1.25", tp.Price)
	assert.Equal(t, "high", tp.ConfidenceLevel())
	change, ok := tp.PriceChange24h()
	require.True(t, ok)
	assert.InDelta(t, -3.5, change, 1e-9)
}

func TestGetPricesMissingMintAbsentFromResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {}, "timeTaken": 0.001}`))
	}))
	defer srv.Close()

	pc := NewJupiterPriceClient(srv.URL, "", 5*time.Second, zap.NewNop(), 100)
	prices, err := pc.GetPrices(context.Background(), []string{testMintA})
	require.NoError(t, err)
	assert.NotNil(t, prices)
	assert.NotContains(t, prices, testMintA)
}

func TestGetPricesRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	pc := NewJupiterPriceClient(srv.URL, "", 5*time.Second, zap.NewNop(), 100)
	_, err := pc.GetPrices(context.Background(), []string{testMintA})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain_entity.ErrRateLimited)
}

func TestGetPricesServerErrorWrapsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	pc := NewJupiterPriceClient(srv.URL, "", 5*time.Second, zap.NewNop(), 100)
	_, err := pc.GetPrices(context.Background(), []string{testMintA})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain_entity.ErrUpstream)
}

func TestGetPricesValidatesInput(t *testing.T) {
	pc := NewJupiterPriceClient("http://unused.invalid", "", time.Second, zap.NewNop(), 2)

	_, err := pc.GetPrices(context.Background(), nil)
	assert.ErrorIs(t, err, domain_entity.ErrInvalidInput)

	_, err = pc.GetPrices(context.Background(), []string{"a", "b", "c"})
	assert.ErrorIs(t, err, domain_entity.ErrInvalidInput)
}
