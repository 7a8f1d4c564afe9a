package service

import (
	"context"
	"errors"
	"fmt"

	"portfolio_checker/internal/config"
	"portfolio_checker/internal/domain/entity"
	jupiter_entity "portfolio_checker/internal/entity"
	"portfolio_checker/internal/port"
	"portfolio_checker/pkg/metrics"
	"portfolio_checker/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// portfolioServiceImpl implements the port.PortfolioService interface.
type portfolioServiceImpl struct {
	balanceReader port.BalanceReader
	priceClient   port.PriceClient
	tokenClient   port.TokenMetadataClient
	verified      port.VerifiedTokenProvider
	cfg           *config.Config
	logger        *zap.Logger
	enrichLimiter *rate.Limiter
}

// NewPortfolioService creates a new instance of PortfolioService.
func NewPortfolioService(
	balanceReader port.BalanceReader,
	priceClient port.PriceClient,
	tokenClient port.TokenMetadataClient,
	verified port.VerifiedTokenProvider,
	cfg *config.Config,
	logger *zap.Logger,
) port.PortfolioService {
	return &portfolioServiceImpl{
		balanceReader: balanceReader,
		priceClient:   priceClient,
		tokenClient:   tokenClient,
		verified:      verified,
		cfg:           cfg,
		logger:        logger.Named("PortfolioService"),
		enrichLimiter: rate.NewLimiter(
			rate.Limit(cfg.PortfolioService.EnrichRateLimit),
			cfg.PortfolioService.EnrichBurstLimit,
		),
	}
}

// FetchPortfolio runs one full fetch cycle. Wallets are processed strictly
// in input order; a wallet that fails is recorded and skipped so the rest of
// the batch survives. Only metadata enrichment within a single wallet fans
// out concurrently.
func (s *portfolioServiceImpl) FetchPortfolio(ctx context.Context, walletAddresses []string) (*entity.PortfolioResult, error) {
	if len(walletAddresses) == 0 {
		return nil, fmt.Errorf("%w: no wallet addresses given", entity.ErrInvalidInput)
	}

	metrics.PortfolioFetchesTotal.Inc()
	s.logger.Info("Fetching portfolio", zap.Strings("wallets", walletAddresses))

	result := &entity.PortfolioResult{
		Snapshots: make([]entity.WalletSnapshot, 0, len(walletAddresses)),
		Errors:    make([]entity.PortfolioError, 0),
	}
	nativePrices := make(map[string]jupiter_entity.TokenPrice, 1)

	for _, address := range walletAddresses {
		if address == "" {
			continue
		}

		snapshot, nativePrice, err := s.fetchWalletSnapshot(ctx, address)
		if err != nil {
			metrics.WalletFetchErrorsTotal.Inc()
			s.logger.Error("Skipping wallet after fetch failure",
				zap.String("wallet", address),
				zap.Error(err))
			result.Errors = append(result.Errors, entity.PortfolioError{
				WalletAddress: address,
				Message:       err.Error(),
				RateLimited:   errors.Is(err, entity.ErrRateLimited),
			})
			continue
		}

		result.Snapshots = append(result.Snapshots, *snapshot)
		if nativePrice != nil {
			nativePrices[entity.WrappedSOLMint] = *nativePrice
		}
	}

	result.Portfolio = ReducePortfolio(result.Snapshots, nativePrices, s.cfg.PortfolioService.MinEnrichValueUSD)

	s.logger.Info("Portfolio fetch complete",
		zap.Int("walletCount", len(result.Snapshots)),
		zap.Int("errorCount", len(result.Errors)),
		zap.Float64("totalValueUSD", result.Portfolio.TotalValueUSD))
	return result, nil
}

// fetchWalletSnapshot builds the snapshot for one wallet: native balance,
// early native price, batched token prices, then threshold-gated metadata
// enrichment.
func (s *portfolioServiceImpl) fetchWalletSnapshot(ctx context.Context, address string) (*entity.WalletSnapshot, *jupiter_entity.TokenPrice, error) {
	solBalance, err := s.balanceReader.GetNativeBalance(ctx, address)
	if err != nil {
		return nil, nil, err
	}

	// Native price first, so the wallet is valued even with zero holdings.
	nativeResult, err := s.priceClient.GetPrices(ctx, []string{entity.WrappedSOLMint})
	if err != nil {
		return nil, nil, fmt.Errorf("native price lookup for %s: %w", address, err)
	}
	var nativePrice *jupiter_entity.TokenPrice
	if tp, ok := nativeResult[entity.WrappedSOLMint]; ok {
		nativePrice = &tp
	}

	tokenBalances, err := s.balanceReader.GetTokenBalances(ctx, address)
	if err != nil {
		return nil, nil, err
	}

	holdings := make([]entity.TokenHolding, 0, len(tokenBalances))
	mints := make([]string, 0, len(tokenBalances))
	for _, tb := range tokenBalances {
		holdings = append(holdings, entity.TokenHolding{
			Mint:    tb.Mint,
			Symbol:  entity.UnknownSymbol,
			Name:    entity.UnknownName,
			Balance: tb.Balance,
		})
		mints = append(mints, tb.Mint)
	}

	if len(mints) > 0 {
		prices, err := s.fetchPricesBatched(ctx, mints)
		if err != nil {
			return nil, nil, fmt.Errorf("token price lookup for %s: %w", address, err)
		}
		for i := range holdings {
			tp, ok := prices[holdings[i].Mint]
			if !ok {
				// Unknown to the price service; the holding stays unpriced.
				continue
			}
			price := utils.ParseDecimalOrZero(tp.Price)
			value := holdings[i].Balance * price
			holdings[i].Price = &price
			holdings[i].Value = &value
			holdings[i].ConfidenceLevel = tp.ConfidenceLevel()
			if change, hasChange := tp.PriceChange24h(); hasChange {
				c := change
				holdings[i].PriceChange24h = &c
			}
		}

		s.enrichHoldings(ctx, address, holdings)
	}

	return &entity.WalletSnapshot{
		Address:    address,
		SolBalance: solBalance,
		Holdings:   holdings,
	}, nativePrice, nil
}

func (s *portfolioServiceImpl) fetchPricesBatched(ctx context.Context, mints []string) (map[string]jupiter_entity.TokenPrice, error) {
	merged := make(map[string]jupiter_entity.TokenPrice, len(mints))
	for _, batch := range utils.BatchStrings(mints, s.cfg.PortfolioService.MaxTokensPerBatchRequest) {
		prices, err := s.priceClient.GetPrices(ctx, batch)
		if err != nil {
			return nil, err
		}
		for mint, tp := range prices {
			merged[mint] = tp
		}
	}
	return merged, nil
}

// enrichHoldings attaches display metadata to every holding worth at least
// the enrichment threshold. Lookups run concurrently under the rate limiter;
// a failure for one mint never blocks the others.
func (s *portfolioServiceImpl) enrichHoldings(ctx context.Context, address string, holdings []entity.TokenHolding) {
	threshold := s.cfg.PortfolioService.MinEnrichValueUSD

	eg, enrichCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.cfg.PortfolioService.MaxConcurrentEnrichments)

	for i := range holdings {
		if holdings[i].Value == nil || *holdings[i].Value < threshold {
			continue
		}
		idx := i
		eg.Go(func() error {
			if err := s.enrichLimiter.Wait(enrichCtx); err != nil {
				return nil
			}
			info, err := s.tokenClient.GetMintInfo(enrichCtx, holdings[idx].Mint)
			if err != nil {
				// Absorbed: the holding keeps its fallback name and symbol.
				s.logger.Warn("Metadata enrichment failed for mint",
					zap.String("wallet", address),
					zap.String("mint", holdings[idx].Mint),
					zap.Error(err))
				return nil
			}
			// Each goroutine writes a distinct index; no lock needed.
			holdings[idx].Name = info.Name
			holdings[idx].Symbol = info.Symbol
			holdings[idx].Tags = info.Tags
			holdings[idx].LogoURI = info.LogoURI
			return nil
		})
	}
	_ = eg.Wait() // goroutines always return nil; failures are logged per mint

	// Backfill verification for enriched holdings whose record carried no tags.
	for i := range holdings {
		if holdings[i].Value == nil || *holdings[i].Value < threshold {
			continue
		}
		if len(holdings[i].Tags) == 0 && s.verified.IsVerified(ctx, holdings[i].Mint) {
			holdings[i].Tags = []string{jupiter_entity.VerifiedTag}
		}
	}
}
