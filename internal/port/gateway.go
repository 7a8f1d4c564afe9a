package port

import (
	"context"

	"portfolio_checker/internal/domain/entity"
	jupiter_entity "portfolio_checker/internal/entity"
)

// BalanceReader reads on-chain state for a single wallet address.
// Implementations are specific to the ledger (Solana RPC here).
type BalanceReader interface {
	// GetNativeBalance returns the wallet's native SOL balance, already
	// converted from lamports.
	GetNativeBalance(ctx context.Context, walletAddress string) (float64, error)

	// GetTokenBalances returns one entry per token account owned by the
	// wallet, filtered to positive balances.
	GetTokenBalances(ctx context.Context, walletAddress string) ([]entity.TokenBalance, error)
}

// PriceClient fetches current prices for a batch of mints in one call.
// Mints unknown to the upstream are absent from the result map.
type PriceClient interface {
	GetPrices(ctx context.Context, mints []string) (map[string]jupiter_entity.TokenPrice, error)
}

// TokenMetadataClient fetches token display metadata and tag-filtered lists.
type TokenMetadataClient interface {
	// GetMintInfo returns the flattened record for a single mint.
	GetMintInfo(ctx context.Context, mint string) (*jupiter_entity.MintInfo, error)

	// GetTokensByTag returns all token records carrying the given tag,
	// keyed by mint.
	GetTokensByTag(ctx context.Context, tag string) (map[string]jupiter_entity.TokenRecord, error)
}

// VerifiedTokenProvider answers whether a mint is on the verified list.
type VerifiedTokenProvider interface {
	IsVerified(ctx context.Context, mint string) bool
}
