package entity

// AccumulatedHolding is the cross-wallet merge of all holdings sharing a
// mint: balances and values are summed, the price is the last one seen.
type AccumulatedHolding struct {
	Mint           string   `json:"mint"`
	Symbol         string   `json:"symbol"`
	Name           string   `json:"name"`
	TotalBalance   float64  `json:"totalBalance"`
	Price          float64  `json:"price"`
	TotalValue     float64  `json:"totalValue"`
	LogoURI        string   `json:"logoURI,omitempty"`
	IsVerified     bool     `json:"isVerified"`
	PriceChange24h *float64 `json:"priceChange24h,omitempty"`
}

// PortfolioView is the derived cross-wallet summary for one fetch cycle,
// sorted descending by total value.
type PortfolioView struct {
	TotalValueUSD       float64              `json:"totalValueUSD"`
	AccumulatedHoldings []AccumulatedHolding `json:"accumulatedHoldings"`
}

// PortfolioResult is the full outcome of one fetch cycle: the per-wallet
// snapshots in input order, the reduced cross-wallet view, and the wallets
// that failed along the way.
type PortfolioResult struct {
	Snapshots []WalletSnapshot `json:"wallets"`
	Portfolio PortfolioView    `json:"portfolio"`
	Errors    []PortfolioError `json:"errors,omitempty"`
}

// PortfolioError records a wallet that could not be processed during a batch.
// The rest of the batch continues without it.
type PortfolioError struct {
	WalletAddress string `json:"walletAddress"`
	Message       string `json:"message"`
	RateLimited   bool   `json:"rateLimited,omitempty"`
}
