package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	_ "net/http/pprof" // Blank import for pprof
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"portfolio_checker/internal/client"
	"portfolio_checker/internal/config"
	"portfolio_checker/internal/infrastructure/restapi"
	"portfolio_checker/internal/service"
	"portfolio_checker/pkg/blockchain"
	"portfolio_checker/pkg/metrics"
	"portfolio_checker/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
)

func main() {
	// logrus handles the earliest startup logging (config loader uses it);
	// zap is the primary logger everywhere else.
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize zap logger: %v", err)
	}
	defer zapLogger.Sync()

	// Bridge slog users onto the zap core.
	slogHandler := zapslog.NewHandler(zapLogger.Core())
	slog.SetDefault(slog.New(slogHandler))

	// Load configuration
	cfgPath := utils.GetEnv("CONFIG_PATH", "config/config.yaml")
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Warnf("Invalid log level in config: %s. Defaulting to Info.", cfg.Logging.Level)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	if cfg.Logging.File != "" {
		file, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err == nil {
			log.SetOutput(file)
		} else {
			log.Infof("Failed to log to file, using default stdout: %v", err)
		}
	}

	zapLogger.Info("Configuration loaded", zap.String("path", cfgPath))

	// Initialize Prometheus metrics
	metrics.MustRegisterMetrics()

	// Initialize the Solana balance reader
	solanaTimeout := time.Duration(cfg.Solana.RequestTimeoutMillis) * time.Millisecond
	balanceReader := blockchain.NewSolanaBalanceReader(cfg.Solana.RPCURL, solanaTimeout, zapLogger)
	zapLogger.Info("Solana balance reader initialized", zap.String("rpcURL", cfg.Solana.RPCURL))

	// Initialize Jupiter clients
	jupiterTimeout := time.Duration(cfg.Jupiter.RequestTimeoutMillis) * time.Millisecond
	priceClient := client.NewJupiterPriceClient(
		cfg.Jupiter.PriceBaseURL,
		cfg.Jupiter.Referer,
		jupiterTimeout,
		zapLogger,
		cfg.PortfolioService.MaxTokensPerBatchRequest,
	)
	tokenClient := client.NewJupiterTokenClient(
		cfg.Jupiter.TokenBaseURL,
		cfg.Jupiter.Referer,
		jupiterTimeout,
		zapLogger,
	)
	zapLogger.Info("Jupiter clients initialized")

	// The verified-token cache is an explicit object handed to the service,
	// refreshed lazily on its TTL.
	verifiedCache := service.NewVerifiedTokenCache(
		tokenClient,
		time.Duration(cfg.VerifiedTokens.TTLMinutes)*time.Minute,
		time.Duration(cfg.VerifiedTokens.CleanupIntervalMinutes)*time.Minute,
		zapLogger,
	)

	// Warm the verified set in the background; a failure here is not fatal,
	// the cache retries on first use.
	go func() {
		warmCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := verifiedCache.Refresh(warmCtx); err != nil {
			zapLogger.Warn("Failed to warm verified token cache", zap.Error(err))
		}
	}()

	portfolioSvc := service.NewPortfolioService(balanceReader, priceClient, tokenClient, verifiedCache, cfg, zapLogger)
	zapLogger.Info("PortfolioService initialized")

	// Initialize Gin router
	router := gin.New()

	// Setup CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true // Adjust for production
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.Use(restapi.ZapLoggerMiddleware(zapLogger))
	router.Use(gin.Recovery())

	// Setup routes
	portfolioHandler := restapi.NewPortfolioHandler(portfolioSvc, cfg, zapLogger)
	proxyHandler := restapi.NewProxyHandler(priceClient, tokenClient, cfg, zapLogger)
	restapi.RegisterRoutes(router, portfolioHandler, proxyHandler)

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	zapLogger.Info("Prometheus metrics endpoint enabled", zap.String("path", "/metrics"))

	// Pprof endpoints (for debugging performance issues)
	// Make sure to protect these in a production environment
	pprofRouter := router.Group("/debug/pprof")
	{
		pprofRouter.GET("/", gin.WrapF(pprof.Index))
		pprofRouter.GET("/cmdline", gin.WrapF(pprof.Cmdline))
		pprofRouter.GET("/profile", gin.WrapF(pprof.Profile))
		pprofRouter.POST("/symbol", gin.WrapF(pprof.Symbol))
		pprofRouter.GET("/symbol", gin.WrapF(pprof.Symbol))
		pprofRouter.GET("/trace", gin.WrapF(pprof.Trace))
		pprofRouter.GET("/allocs", gin.WrapH(pprof.Handler("allocs")))
		pprofRouter.GET("/block", gin.WrapH(pprof.Handler("block")))
		pprofRouter.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
		pprofRouter.GET("/heap", gin.WrapH(pprof.Handler("heap")))
		pprofRouter.GET("/mutex", gin.WrapH(pprof.Handler("mutex")))
		pprofRouter.GET("/threadcreate", gin.WrapH(pprof.Handler("threadcreate")))
	}
	zapLogger.Info("Pprof endpoints enabled under /debug/pprof")

	// Start server
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		zapLogger.Info(fmt.Sprintf("Server starting on port %s", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting")
}
