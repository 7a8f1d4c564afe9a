package service

import (
	"slices"
	"sort"

	"portfolio_checker/internal/domain/entity"
	jupiter_entity "portfolio_checker/internal/entity"
	"portfolio_checker/pkg/utils"
)

// ReducePortfolio merges per-wallet snapshots into a single cross-wallet
// view. It is a pure function: inputs are never mutated and identical inputs
// produce identical output, including ordering.
//
// Snapshots are consumed in slice order and holdings in their per-wallet
// order, so entries with equal total value keep first-encounter order after
// the stable sort. When the same mint carries different prices across
// wallets, the last one written wins.
func ReducePortfolio(snapshots []entity.WalletSnapshot, nativePrices map[string]jupiter_entity.TokenPrice, minValueUSD float64) entity.PortfolioView {
	accumulators := make(map[string]*entity.AccumulatedHolding)
	order := make([]string, 0, 1+len(snapshots))

	upsert := func(mint string) *entity.AccumulatedHolding {
		if acc, ok := accumulators[mint]; ok {
			return acc
		}
		acc := &entity.AccumulatedHolding{Mint: mint}
		accumulators[mint] = acc
		order = append(order, mint)
		return acc
	}

	nativePrice := 0.0
	var nativeChange *float64
	if tp, ok := nativePrices[entity.WrappedSOLMint]; ok {
		nativePrice = utils.ParseDecimalOrZero(tp.Price)
		if change, hasChange := tp.PriceChange24h(); hasChange {
			c := change
			nativeChange = &c
		}
	}

	total := 0.0

	// The native entry is always part of the view, below-threshold or not.
	for _, snap := range snapshots {
		value := snap.SolBalance * nativePrice
		total += value

		acc := upsert(entity.WrappedSOLMint)
		acc.Symbol = entity.SOLSymbol
		acc.Name = entity.SOLName
		acc.TotalBalance += snap.SolBalance
		acc.Price = nativePrice
		acc.TotalValue += value
		acc.LogoURI = entity.SOLLogoURI
		acc.IsVerified = true
		acc.PriceChange24h = nativeChange
	}

	for _, snap := range snapshots {
		for _, holding := range snap.Holdings {
			if holding.Price == nil || holding.Value == nil || *holding.Value < minValueUSD {
				continue
			}
			value := *holding.Value
			total += value

			acc := upsert(holding.Mint)
			acc.Symbol = holding.Symbol
			acc.Name = holding.Name
			acc.TotalBalance += holding.Balance
			acc.Price = *holding.Price
			acc.TotalValue += value
			if holding.LogoURI != "" {
				acc.LogoURI = holding.LogoURI
			}
			acc.IsVerified = slices.Contains(holding.Tags, jupiter_entity.VerifiedTag)
			if holding.PriceChange24h != nil {
				c := *holding.PriceChange24h
				acc.PriceChange24h = &c
			}
		}
	}

	holdings := make([]entity.AccumulatedHolding, 0, len(order))
	for _, mint := range order {
		holdings = append(holdings, *accumulators[mint])
	}
	sort.SliceStable(holdings, func(i, j int) bool {
		return holdings[i].TotalValue > holdings[j].TotalValue
	})

	return entity.PortfolioView{
		TotalValueUSD:       total,
		AccumulatedHoldings: holdings,
	}
}
