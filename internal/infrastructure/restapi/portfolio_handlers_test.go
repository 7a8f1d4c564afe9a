package restapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"portfolio_checker/internal/config"
	"portfolio_checker/internal/domain/entity"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockPortfolioService struct {
	fetchFunc func(ctx context.Context, addresses []string) (*entity.PortfolioResult, error)
}

func (m *mockPortfolioService) FetchPortfolio(ctx context.Context, addresses []string) (*entity.PortfolioResult, error) {
	return m.fetchFunc(ctx, addresses)
}

func portfolioTestRouter(svc *mockPortfolioService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewPortfolioHandler(svc, &config.Config{}, zap.NewNop())
	router.GET("/api/v1/portfolio", h.GetPortfolioHandler)
	return router
}

func TestGetPortfolioRequiresWallets(t *testing.T) {
	called := false
	router := portfolioTestRouter(&mockPortfolioService{
		fetchFunc: func(_ context.Context, _ []string) (*entity.PortfolioResult, error) {
			called = true
			return nil, nil
		},
	})

	for _, target := range []string{"/api/v1/portfolio", "/api/v1/portfolio?wallets=,%20,"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
	assert.False(t, called)
}

func TestGetPortfolioTrimsAndSplitsWallets(t *testing.T) {
	var gotAddresses []string
	router := portfolioTestRouter(&mockPortfolioService{
		fetchFunc: func(_ context.Context, addresses []string) (*entity.PortfolioResult, error) {
			gotAddresses = addresses
			return &entity.PortfolioResult{
				Snapshots: []entity.WalletSnapshot{{Address: "walletA", SolBalance: 1.5}},
				Portfolio: entity.PortfolioView{TotalValueUSD: 225},
				Errors:    []entity.PortfolioError{},
			}, nil
		},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/portfolio?wallets=walletA,%20walletB%20", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"walletA", "walletB"}, gotAddresses)
	assert.Contains(t, rec.Body.String(), `"totalValueUSD":225`)
	assert.Contains(t, rec.Body.String(), `"wallets"`)
}

func TestGetPortfolioErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid input", fmt.Errorf("%w: no wallet addresses given", entity.ErrInvalidInput), http.StatusBadRequest},
		{"invalid address", fmt.Errorf("%w: bad base58", entity.ErrInvalidAddress), http.StatusBadRequest},
		{"rate limited", fmt.Errorf("%w: upstream 429", entity.ErrRateLimited), http.StatusTooManyRequests},
		{"not found", fmt.Errorf("%w: no such mint", entity.ErrNotFound), http.StatusNotFound},
		{"upstream", fmt.Errorf("%w: upstream 500", entity.ErrUpstream), http.StatusBadGateway},
		{"read failed", fmt.Errorf("%w: rpc unreachable", entity.ErrReadFailed), http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := portfolioTestRouter(&mockPortfolioService{
				fetchFunc: func(_ context.Context, _ []string) (*entity.PortfolioResult, error) {
					return nil, tc.err
				},
			})
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/portfolio?wallets=walletA", nil))
			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}
