package risk

import (
	"math"

	"tradeOrchestrator/internal/domain"
	"tradeOrchestrator/internal/ports"
	"tradeOrchestrator/internal/refdata"
)

// PnLTolerance is the maximum absolute disagreement allowed between the
// supplied PnL and the recomputed expected value, in currency units.
const PnLTolerance = 0.10

// lossRatioLimit caps |PnL| as a percentage of notional before the
// figure is treated as an integrity failure.
const lossRatioLimit = 15.0

// expectedPnL recomputes profit/loss from the canonical cost-basis table.
func expectedPnL(order *domain.Order, price float64) float64 {
	basis := refdata.CostBasis(order.Symbol)
	if order.Side == domain.Buy {
		return -(price - basis) * float64(order.Quantity)
	}
	return (price - basis) * float64(order.Quantity)
}

// validateConsistency cross-checks the supplied PnL against an
// independently recomputed value. Any mismatch blocks execution: a
// disagreement here points at an upstream pricing defect, which is worse
// than an unfavorable trade.
func validateConsistency(order *domain.Order, quote *domain.PricingQuote) error {
	expected := expectedPnL(order, quote.Price)
	supplied := quote.EstimatedPnL

	if math.Abs(supplied-expected) > PnLTolerance {
		return &ports.ConsistencyViolation{
			Symbol:      order.Symbol,
			SuppliedPnL: supplied,
			ExpectedPnL: expected,
			Cause:       "supplied pnl disagrees with recomputation from canonical cost basis",
		}
	}

	notional := order.Notional(quote.Price)
	if notional <= 0 {
		return nil
	}
	ratio := math.Abs(supplied) / notional * 100

	if order.Side == domain.Sell && supplied < 0 && ratio > lossRatioLimit {
		return &ports.ConsistencyViolation{
			Symbol:      order.Symbol,
			SuppliedPnL: supplied,
			ExpectedPnL: expected,
			Cause:       "sell-side loss exceeds 15% of notional, inconsistent with tracked cost basis",
		}
	}

	if ratio > lossRatioLimit {
		return &ports.ConsistencyViolation{
			Symbol:      order.Symbol,
			SuppliedPnL: supplied,
			ExpectedPnL: expected,
			Cause:       "pnl magnitude exceeds 15% of notional integrity bound",
		}
	}
	return nil
}
