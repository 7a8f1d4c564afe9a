package restapi

import (
	"errors"
	"net/http"
	"strings"

	"portfolio_checker/internal/config"
	"portfolio_checker/internal/domain/entity"
	"portfolio_checker/internal/port"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PortfolioHandler handles HTTP requests for the portfolio pipeline.
type PortfolioHandler struct {
	portfolioService port.PortfolioService
	cfg              *config.Config
	logger           *zap.Logger
}

// NewPortfolioHandler creates a new instance of PortfolioHandler.
func NewPortfolioHandler(ps port.PortfolioService, cfg *config.Config, logger *zap.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: ps,
		cfg:              cfg,
		logger:           logger.Named("PortfolioHandler"),
	}
}

// GetPortfolioHandler serves GET /api/v1/portfolio?wallets=addr1,addr2.
// The response carries per-wallet snapshots, the reduced cross-wallet view
// and the wallets that failed during the cycle.
func (h *PortfolioHandler) GetPortfolioHandler(c *gin.Context) {
	walletsParam := c.Query("wallets")
	if walletsParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "wallets query parameter is required"})
		return
	}

	addresses := make([]string, 0)
	for _, raw := range strings.Split(walletsParam, ",") {
		if address := strings.TrimSpace(raw); address != "" {
			addresses = append(addresses, address)
		}
	}
	if len(addresses) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "wallets query parameter is required"})
		return
	}

	result, err := h.portfolioService.FetchPortfolio(c.Request.Context(), addresses)
	if err != nil {
		h.logger.Error("Portfolio fetch failed", zap.Error(err))
		c.JSON(statusFromError(err), gin.H{"error": "failed to fetch portfolio", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// statusFromError maps the shared error taxonomy onto HTTP status codes.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, entity.ErrInvalidInput), errors.Is(err, entity.ErrInvalidAddress):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}
