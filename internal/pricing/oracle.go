package pricing

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Oracle supplies a reference price per symbol. The static implementation
// below is a stand-in for a live market-data client; directional
// validation and the market-price endpoint only need this narrow port.
type Oracle interface {
	PriceFor(symbol string) decimal.Decimal
}

// defaultPrice is returned for symbols the table does not know.
var defaultPrice = decimal.NewFromInt(100)

// StaticOracle serves prices from an in-memory table with a fallback for
// unknown symbols. The table can be swapped at runtime (config reload).
type StaticOracle struct {
	mu     sync.RWMutex
	prices map[string]decimal.Decimal
}

// DefaultTable returns the demo price table.
func DefaultTable() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"BTC-USDT":   decimal.NewFromInt(45000),
		"ETH-USDT":   decimal.NewFromInt(3000),
		"BNB-USDT":   decimal.NewFromInt(300),
		"ADA-USDT":   decimal.NewFromFloat(0.5),
		"SOL-USDT":   decimal.NewFromInt(100),
		"DOT-USDT":   decimal.NewFromInt(7),
		"MATIC-USDT": decimal.NewFromFloat(0.8),
		"LINK-USDT":  decimal.NewFromInt(15),
	}
}

// NewStaticOracle creates an oracle over the given table. A nil table
// falls back to the demo defaults.
func NewStaticOracle(table map[string]decimal.Decimal) *StaticOracle {
	if table == nil {
		table = DefaultTable()
	}
	o := &StaticOracle{}
	o.SetTable(table)
	return o
}

// PriceFor returns the table price for symbol, or the default for
// unknown symbols.
func (o *StaticOracle) PriceFor(symbol string) decimal.Decimal {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if price, ok := o.prices[symbol]; ok {
		return price
	}
	return defaultPrice
}

// Symbols returns the symbols the table knows, in no particular order.
func (o *StaticOracle) Symbols() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()

	symbols := make([]string, 0, len(o.prices))
	for s := range o.prices {
		symbols = append(symbols, s)
	}
	return symbols
}

// SetTable replaces the whole price table atomically.
func (o *StaticOracle) SetTable(table map[string]decimal.Decimal) {
	prices := make(map[string]decimal.Decimal, len(table))
	for s, p := range table {
		prices[s] = p
	}

	o.mu.Lock()
	o.prices = prices
	o.mu.Unlock()
}
