package entity

import "slices"

// VerifiedTag is the tag Jupiter attaches to community-verified tokens.
const VerifiedTag = "verified"

// PriceResponse is the envelope returned by the Jupiter price v2 endpoint.
// Mints with no known price are simply absent from Data.
type PriceResponse struct {
	Data      map[string]TokenPrice `json:"data"`
	TimeTaken float64               `json:"timeTaken"`
}

// TokenPrice is the per-mint price record from Jupiter price v2.
type TokenPrice struct {
	ID          string             `json:"id"`
	Type        string             `json:"type"`
	Price       string             `json:"price"`
	ExtraInfo   *PriceExtraInfo    `json:"extraInfo,omitempty"`
	PriceChange map[string]float64 `json:"priceChange,omitempty"` // keyed by window, e.g. "24h"
}

// PriceChange24h returns the 24h change in percent, if the response carried it.
func (p TokenPrice) PriceChange24h() (float64, bool) {
	change, ok := p.PriceChange["24h"]
	return change, ok
}

// ConfidenceLevel returns the upstream price confidence ("high"|"medium"|"low"),
// or empty when absent.
func (p TokenPrice) ConfidenceLevel() string {
	if p.ExtraInfo == nil {
		return ""
	}
	return p.ExtraInfo.ConfidenceLevel
}

// PriceExtraInfo carries the optional detail block requested with showExtraInfo=true.
type PriceExtraInfo struct {
	QuotedPrice      *QuotedPrice      `json:"quotedPrice,omitempty"`
	ConfidenceLevel  string            `json:"confidenceLevel,omitempty"`
	LastSwappedPrice *LastSwappedPrice `json:"lastSwappedPrice,omitempty"`
}

// QuotedPrice is the current buy/sell quote pair.
type QuotedPrice struct {
	BuyPrice  string `json:"buyPrice"`
	SellPrice string `json:"sellPrice"`
	BuyAt     int64  `json:"buyAt"`
	SellAt    int64  `json:"sellAt"`
}

// LastSwappedPrice is the last executed swap price pair.
type LastSwappedPrice struct {
	LastJupiterSellPrice string `json:"lastJupiterSellPrice"`
	LastJupiterBuyPrice  string `json:"lastJupiterBuyPrice"`
	LastJupiterSellAt    int64  `json:"lastJupiterSellAt"`
	LastJupiterBuyAt     int64  `json:"lastJupiterBuyAt"`
}

// TokenRecord is the raw token record served by tokens.jup.ag.
type TokenRecord struct {
	Address         string           `json:"address"`
	ChainID         int              `json:"chainId"`
	Decimals        uint8            `json:"decimals"`
	Name            string           `json:"name"`
	Symbol          string           `json:"symbol"`
	LogoURI         string           `json:"logoURI,omitempty"`
	Tags            []string         `json:"tags"`
	Extensions      *TokenExtensions `json:"extensions,omitempty"`
	HasMarket       bool             `json:"hasMarket,omitempty"`
	DailyVolume     float64          `json:"dailyVolume,omitempty"`
	FreezeAuthority string           `json:"freezeAuthority,omitempty"`
	MintAuthority   string           `json:"mintAuthority,omitempty"`
}

// TokenExtensions holds the optional off-chain links attached to a token record.
type TokenExtensions struct {
	CoingeckoID string `json:"coingeckoId,omitempty"`
	Description string `json:"description,omitempty"`
	Discord     string `json:"discord,omitempty"`
	Twitter     string `json:"twitter,omitempty"`
	Website     string `json:"website,omitempty"`
}

// MintInfo is the flattened token record the metadata gateway hands out:
// required display fields plus optional extras pulled up from Extensions.
type MintInfo struct {
	Mint            string       `json:"mint"`
	Name            string       `json:"name"`
	Symbol          string       `json:"symbol"`
	Decimals        uint8        `json:"decimals"`
	LogoURI         string       `json:"logoURI,omitempty"`
	Tags            []string     `json:"tags"`
	HasMarket       bool         `json:"hasMarket,omitempty"`
	DailyVolume     float64      `json:"dailyVolume,omitempty"`
	FreezeAuthority string       `json:"freezeAuthority,omitempty"`
	MintAuthority   string       `json:"mintAuthority,omitempty"`
	Socials         TokenSocials `json:"socials"`
	CoingeckoID     string       `json:"coingeckoId,omitempty"`
	Description     string       `json:"description,omitempty"`
}

// TokenSocials groups the social links of a token.
type TokenSocials struct {
	Website string `json:"website,omitempty"`
	Twitter string `json:"twitter,omitempty"`
	Discord string `json:"discord,omitempty"`
}

// Verified reports whether the token carries the verified tag.
func (m MintInfo) Verified() bool {
	return slices.Contains(m.Tags, VerifiedTag)
}

// Flatten converts a raw token record into the gateway's MintInfo shape.
func (t TokenRecord) Flatten() MintInfo {
	info := MintInfo{
		Mint:            t.Address,
		Name:            t.Name,
		Symbol:          t.Symbol,
		Decimals:        t.Decimals,
		LogoURI:         t.LogoURI,
		Tags:            t.Tags,
		HasMarket:       t.HasMarket,
		DailyVolume:     t.DailyVolume,
		FreezeAuthority: t.FreezeAuthority,
		MintAuthority:   t.MintAuthority,
	}
	if t.Extensions != nil {
		info.Socials = TokenSocials{
			Website: t.Extensions.Website,
			Twitter: t.Extensions.Twitter,
			Discord: t.Extensions.Discord,
		}
		info.CoingeckoID = t.Extensions.CoingeckoID
		info.Description = t.Extensions.Description
	}
	return info
}
