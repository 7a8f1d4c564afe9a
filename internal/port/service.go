package port

import (
	"context"

	"portfolio_checker/internal/domain/entity"
)

// PortfolioService runs the full aggregation pipeline for a batch of wallets.
type PortfolioService interface {
	// FetchPortfolio reads, prices and enriches every wallet in order, then
	// reduces the snapshots into a cross-wallet view. A wallet that fails is
	// reported in the result's Errors and skipped; the batch continues.
	FetchPortfolio(ctx context.Context, walletAddresses []string) (*entity.PortfolioResult, error)
}
