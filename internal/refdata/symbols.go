// Package refdata holds the static reference data the capability services
// share: tradable symbols, market prices, cost bases, holdings and the
// sector/volatility tables the risk engine reads.
package refdata

// SymbolInfo describes one tradable instrument.
type SymbolInfo struct {
	Symbol      string
	BasePrice   float64
	CostBasis   float64
	LotSize     int
	MaxQuantity int
	Sector      string
	Volatility  float64 // risk multiplier, 1.0 = baseline
}

// GlobalMaxOrder caps any single order regardless of symbol limits.
const GlobalMaxOrder = 10000

// AccountBalance is the simulated buying power for BUY validation.
const AccountBalance = 500_000.0

// DefaultCostBasis is used for symbols without a tracked lot history.
const DefaultCostBasis = 50.0

// Symbols is the tradable universe.
var Symbols = map[string]SymbolInfo{
	"AAPL":  {Symbol: "AAPL", BasePrice: 175.50, CostBasis: 165.00, LotSize: 1, MaxQuantity: 5000, Sector: "Technology", Volatility: 1.0},
	"GOOGL": {Symbol: "GOOGL", BasePrice: 140.25, CostBasis: 135.00, LotSize: 1, MaxQuantity: 5000, Sector: "Technology", Volatility: 1.0},
	"MSFT":  {Symbol: "MSFT", BasePrice: 378.90, CostBasis: 360.00, LotSize: 1, MaxQuantity: 5000, Sector: "Technology", Volatility: 1.0},
	"AMZN":  {Symbol: "AMZN", BasePrice: 152.75, CostBasis: 145.00, LotSize: 10, MaxQuantity: 5000, Sector: "Consumer", Volatility: 1.2},
	"TSLA":  {Symbol: "TSLA", BasePrice: 242.80, CostBasis: 230.00, LotSize: 5, MaxQuantity: 2000, Sector: "Automotive", Volatility: 1.8},
	"META":  {Symbol: "META", BasePrice: 356.20, CostBasis: 340.00, LotSize: 1, MaxQuantity: 5000, Sector: "Technology", Volatility: 1.3},
	"NVDA":  {Symbol: "NVDA", BasePrice: 495.60, CostBasis: 475.00, LotSize: 1, MaxQuantity: 3000, Sector: "Technology", Volatility: 1.5},
}

// Holdings is the simulated current position book, shares per symbol.
var Holdings = map[string]int{
	"AAPL":  500,
	"GOOGL": 200,
	"MSFT":  800,
	"TSLA":  300,
	"NVDA":  300,
}

// SectorMultipliers scale the base risk score by sector exposure.
var SectorMultipliers = map[string]float64{
	"Technology": 1.2,
	"Automotive": 1.3,
	"Consumer":   1.1,
}

// RestrictedSymbols lists instruments compliance blocks outright.
var RestrictedSymbols = map[string]bool{
	"RSTR": true,
	"HALT": true,
}

// Lookup returns the reference entry for a symbol.
func Lookup(symbol string) (SymbolInfo, bool) {
	info, ok := Symbols[symbol]
	return info, ok
}

// CostBasis returns the tracked cost basis for a symbol, falling back to
// the default for untracked instruments.
func CostBasis(symbol string) float64 {
	if info, ok := Symbols[symbol]; ok {
		return info.CostBasis
	}
	return DefaultCostBasis
}

// SectorMultiplier returns the risk multiplier for a symbol's sector.
func SectorMultiplier(symbol string) (string, float64) {
	info, ok := Symbols[symbol]
	if !ok {
		return "Unknown", 1.0
	}
	if m, ok := SectorMultipliers[info.Sector]; ok {
		return info.Sector, m
	}
	return info.Sector, 1.0
}

// VolatilityMultiplier returns the per-symbol volatility factor, 1.0 for
// untracked symbols.
func VolatilityMultiplier(symbol string) float64 {
	if info, ok := Symbols[symbol]; ok && info.Volatility > 0 {
		return info.Volatility
	}
	return 1.0
}
