// Package risk implements the multi-factor risk scoring engine, the
// compliance pre-checks and the financial consistency validator that
// together decide whether an order may proceed to execution.
package risk

import (
	"fmt"
	"time"

	"tradeOrchestrator/internal/domain"
	"tradeOrchestrator/internal/refdata"
)

// Score thresholds for level mapping.
const (
	highThreshold   = 70.0
	mediumThreshold = 40.0
)

// Factor tiers. Quantity boundaries are strict: 100 stays in the lower
// tier, 101 moves up.
func positionSizeFactor(notional float64) (float64, string) {
	switch {
	case notional > 100_000:
		return 30, fmt.Sprintf("notional %.2f above 100000: position factor 30", notional)
	case notional > 50_000:
		return 20, fmt.Sprintf("notional %.2f above 50000: position factor 20", notional)
	case notional > 10_000:
		return 10, fmt.Sprintf("notional %.2f above 10000: position factor 10", notional)
	default:
		return 5, fmt.Sprintf("notional %.2f within baseline: position factor 5", notional)
	}
}

func pnlFactor(pnl float64) (float64, string) {
	switch {
	case pnl < -5_000:
		return 30, fmt.Sprintf("estimated pnl %.2f below -5000: pnl factor 30", pnl)
	case pnl < -1_000:
		return 20, fmt.Sprintf("estimated pnl %.2f below -1000: pnl factor 20", pnl)
	case pnl < 0:
		return 10, fmt.Sprintf("estimated pnl %.2f negative: pnl factor 10", pnl)
	case pnl > 10_000:
		return 15, fmt.Sprintf("estimated pnl %.2f above 10000: pnl factor 15", pnl)
	default:
		return 5, fmt.Sprintf("estimated pnl %.2f within baseline: pnl factor 5", pnl)
	}
}

func quantityFactor(quantity int) (float64, string) {
	switch {
	case quantity > 500:
		return 20, fmt.Sprintf("quantity %d above 500: quantity factor 20", quantity)
	case quantity > 200:
		return 15, fmt.Sprintf("quantity %d above 200: quantity factor 15", quantity)
	case quantity > 100:
		return 10, fmt.Sprintf("quantity %d above 100: quantity factor 10", quantity)
	default:
		return 5, fmt.Sprintf("quantity %d within baseline: quantity factor 5", quantity)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// levelFor maps a clamped score onto its categorical level.
func levelFor(score float64) domain.RiskLevel {
	switch {
	case score >= highThreshold:
		return domain.RiskHigh
	case score >= mediumThreshold:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

// Score computes the deterministic risk score for an order at the given
// price and estimated PnL, with the full factor breakdown.
func Score(order *domain.Order, price, estimatedPnL float64) *domain.RiskAssessment {
	notional := order.Notional(price)

	posFactor, posWhy := positionSizeFactor(notional)
	pnlF, pnlWhy := pnlFactor(estimatedPnL)
	qtyFactor, qtyWhy := quantityFactor(order.Quantity)

	base := posFactor + pnlF + qtyFactor
	volMult := refdata.VolatilityMultiplier(order.Symbol)
	volAdjusted := base * volMult
	sector, sectorMult := refdata.SectorMultiplier(order.Symbol)
	raw := volAdjusted * sectorMult
	score := clamp(raw, 0, 100)
	level := levelFor(score)

	factors := domain.RiskFactors{
		PositionValue:        notional,
		PositionSizeRisk:     posFactor,
		EstimatedPnL:         estimatedPnL,
		PnLRisk:              pnlF,
		Quantity:             order.Quantity,
		QuantityRisk:         qtyFactor,
		BaseScore:            base,
		VolatilityMultiplier: volMult,
		VolatilityAdjusted:   volAdjusted,
		SectorMultiplier:     sectorMult,
		Sector:               sector,
		RawScore:             raw,
		Rationale: []string{
			posWhy,
			pnlWhy,
			qtyWhy,
			fmt.Sprintf("base %.1f x volatility %.2f = %.2f", base, volMult, volAdjusted),
			fmt.Sprintf("sector %s multiplier %.2f: raw score %.2f", sector, sectorMult, raw),
		},
	}

	return &domain.RiskAssessment{
		OrderID:        order.ID,
		Score:          score,
		Level:          level,
		Approved:       level != domain.RiskHigh,
		Factors:        factors,
		Recommendation: recommendationFor(level, score),
		Timestamp:      time.Now().UTC(),
	}
}

func recommendationFor(level domain.RiskLevel, score float64) string {
	switch level {
	case domain.RiskHigh:
		return fmt.Sprintf("score %.1f is HIGH risk: reject or escalate for manual review", score)
	case domain.RiskMedium:
		return fmt.Sprintf("score %.1f is MEDIUM risk: proceed with monitoring", score)
	default:
		return fmt.Sprintf("score %.1f is LOW risk: proceed", score)
	}
}
