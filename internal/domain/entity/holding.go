package entity

// WrappedSOLMint is the pseudo-mint used to price native SOL. Jupiter quotes
// native SOL under the wrapped-SOL mint, so the native balance is keyed by it
// everywhere a price or an accumulator entry is needed.
const WrappedSOLMint = "So11111111111111111111111111111111111111112"

// LamportsPerSOL is the fixed divisor between raw lamports and SOL.
const LamportsPerSOL = 1_000_000_000

const (
	SOLSymbol  = "SOL"
	SOLName    = "Solana"
	SOLLogoURI = "https://raw.githubusercontent.com/solana-labs/token-list/main/assets/mainnet/So11111111111111111111111111111111111111112/logo.png"
)

// Fallback display fields for holdings that never received metadata enrichment.
const (
	UnknownSymbol = "Unknown"
	UnknownName   = "Unknown Token"
)

// TokenBalance is one (mint, decimal balance) pair as read from the ledger,
// before any price or metadata enrichment.
type TokenBalance struct {
	Mint    string  `json:"mint"`
	Balance float64 `json:"balance"`
}

// TokenHolding is one wallet's position in a single SPL mint.
// Price, Value, ConfidenceLevel and PriceChange24h are set only when the
// price lookup knew the mint; Name, Symbol, Tags and LogoURI are upgraded
// from their fallbacks only for holdings worth at least the enrichment
// threshold.
type TokenHolding struct {
	Mint            string   `json:"mint"`
	Symbol          string   `json:"symbol"`
	Name            string   `json:"name"`
	Balance         float64  `json:"balance"`
	Price           *float64 `json:"price,omitempty"`
	Value           *float64 `json:"value,omitempty"`
	ConfidenceLevel string   `json:"confidenceLevel,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	LogoURI         string   `json:"logoURI,omitempty"`
	PriceChange24h  *float64 `json:"priceChange24h,omitempty"`
}

// WalletSnapshot holds everything read for one wallet address during a single
// fetch cycle. It is rebuilt from scratch on every cycle, never merged.
type WalletSnapshot struct {
	Address    string         `json:"address"`
	SolBalance float64        `json:"solBalance"`
	Holdings   []TokenHolding `json:"tokens"`
}
