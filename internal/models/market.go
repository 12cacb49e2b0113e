package models

// CoinKind — тип выборки рыночных данных для /api/crypto.
type CoinKind string

const (
	CoinsTop      CoinKind = "top"
	CoinsTrending CoinKind = "trending"
	CoinsAI       CoinKind = "ai"
)

// Coin — срез рыночных данных по одной монете.
type Coin struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Symbol           string  `json:"symbol"`
	Slug             string  `json:"slug"`
	Rank             int     `json:"rank"`
	PriceUSD         float64 `json:"price"`
	PercentChange24h float64 `json:"percentChange24h"`
	MarketCapUSD     float64 `json:"marketCap"`
	Volume24hUSD     float64 `json:"volume24h"`
}
