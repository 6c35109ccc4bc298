package bracket

import (
	"github.com/shopspring/decimal"

	"github.com/cronix/trading-terminal/internal/domain"
)

// maxTakeProfitLevels caps the number of take-profit legs per order.
const maxTakeProfitLevels = 3

// Spec is a candidate bracket order, either a creation request or the
// merged result of a pending order plus an update patch.
type Spec struct {
	Symbol           string
	Side             domain.Side
	Quantity         decimal.Decimal
	EntryType        domain.EntryType
	EntryPrice       *decimal.Decimal
	StopLossPrice    *decimal.Decimal
	TakeProfitLevels []domain.TakeProfitLevel
}

// ReferencePrice returns the price directional checks should run against:
// the entry price for limit orders, nil for market orders. Market entries
// fill at an unknown price, so stop/take-profit placement cannot be
// checked against it here.
func (s Spec) ReferencePrice() *decimal.Decimal {
	if s.EntryType == domain.EntryTypeLimit {
		return s.EntryPrice
	}
	return nil
}

// Validate checks a candidate bracket order against its internal
// invariants and, when a reference price is supplied, the directional
// placement of its stop-loss and take-profit legs. It is a pure check
// with no side effects; the first violated rule wins so error reporting
// stays deterministic.
func Validate(spec Spec, ref *decimal.Decimal) error {
	if spec.Quantity.LessThanOrEqual(decimal.Zero) {
		return violation(RuleQuantity, "Quantity must be positive")
	}

	if spec.EntryType == domain.EntryTypeLimit {
		if spec.EntryPrice == nil || spec.EntryPrice.LessThanOrEqual(decimal.Zero) {
			return violation(RuleEntryPrice, "Entry price is required for limit orders")
		}
	}

	if ref != nil {
		if spec.Side == domain.SideBuy {
			if spec.StopLossPrice != nil && spec.StopLossPrice.GreaterThanOrEqual(*ref) {
				return violation(RuleStopLoss, "Stop loss must be below entry price for buy orders")
			}
			for i, tp := range spec.TakeProfitLevels {
				if tp.Price.LessThanOrEqual(*ref) {
					return levelViolation(RuleTakeProfitPrice, i+1,
						"Take profit %d must be above entry price for buy orders", i+1)
				}
			}
		} else {
			if spec.StopLossPrice != nil && spec.StopLossPrice.LessThanOrEqual(*ref) {
				return violation(RuleStopLoss, "Stop loss must be above entry price for sell orders")
			}
			for i, tp := range spec.TakeProfitLevels {
				if tp.Price.GreaterThanOrEqual(*ref) {
					return levelViolation(RuleTakeProfitPrice, i+1,
						"Take profit %d must be below entry price for sell orders", i+1)
				}
			}
		}
	}

	if len(spec.TakeProfitLevels) > maxTakeProfitLevels {
		return violation(RuleLevelCount, "Maximum %d take profit levels allowed", maxTakeProfitLevels)
	}

	totalTP := decimal.Zero
	for i, tp := range spec.TakeProfitLevels {
		if tp.Quantity.LessThanOrEqual(decimal.Zero) {
			return levelViolation(RuleLevelQuantity, i+1, "Take profit %d quantity must be positive", i+1)
		}
		if tp.Price.LessThanOrEqual(decimal.Zero) {
			return levelViolation(RuleLevelPrice, i+1, "Take profit %d price must be positive", i+1)
		}
		totalTP = totalTP.Add(tp.Quantity)
	}
	if totalTP.GreaterThan(spec.Quantity) {
		return violation(RuleQuantityBudget, "Total take profit quantities cannot exceed order quantity")
	}

	// An out-of-order level list is rejected, never silently re-sorted:
	// the caller's sequencing decides which leg fires first.
	if len(spec.TakeProfitLevels) > 1 {
		for i := 1; i < len(spec.TakeProfitLevels); i++ {
			prev := spec.TakeProfitLevels[i-1].Price
			cur := spec.TakeProfitLevels[i].Price
			if spec.Side == domain.SideBuy && cur.LessThan(prev) {
				return violation(RuleLevelOrdering,
					"Take profit levels should be ordered from lowest to highest price for buy orders")
			}
			if spec.Side == domain.SideSell && cur.GreaterThan(prev) {
				return violation(RuleLevelOrdering,
					"Take profit levels should be ordered from highest to lowest price for sell orders")
			}
		}
	}

	return nil
}
