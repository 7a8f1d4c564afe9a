package restapi

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches all API routes to the given router.
func RegisterRoutes(router *gin.Engine, portfolioHandler *PortfolioHandler, proxyHandler *ProxyHandler) {
	v1 := router.Group("/api/v1")
	{
		v1.GET("/portfolio", portfolioHandler.GetPortfolioHandler)

		// Cached pass-throughs to the Jupiter upstreams.
		v1.GET("/jupiter-price", proxyHandler.GetPricesHandler)
		v1.GET("/mint", proxyHandler.GetMintHandler)
		v1.GET("/tags", proxyHandler.GetTagsHandler)
	}
}
