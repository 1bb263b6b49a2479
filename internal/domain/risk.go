package domain

import "time"

// RiskFactors carries every intermediate value of the scoring pipeline so
// an assessment can be audited without re-running the engine.
type RiskFactors struct {
	PositionValue        float64 `json:"position_value"`
	PositionSizeRisk     float64 `json:"position_size_risk"`
	EstimatedPnL         float64 `json:"estimated_pnl"`
	PnLRisk              float64 `json:"pnl_risk"`
	Quantity             int     `json:"quantity"`
	QuantityRisk         float64 `json:"quantity_risk"`
	BaseScore            float64 `json:"base_score"`
	VolatilityMultiplier float64 `json:"volatility_multiplier"`
	VolatilityAdjusted   float64 `json:"volatility_adjusted_score"`
	SectorMultiplier     float64 `json:"sector_multiplier"`
	Sector               string  `json:"sector,omitempty"`
	RawScore             float64 `json:"raw_score"` // Before clamping to [0,100]

	// Rationale holds one human-readable line per factor, in pipeline order.
	Rationale []string `json:"rationale"`
}

// RegulatoryFlags carries institutional filing-threshold results. Either
// flag alone is informational; the risk service decides whether the
// combination blocks.
type RegulatoryFlags struct {
	Requires13F       bool    `json:"requires_13f"`
	Requires13D       bool    `json:"requires_13d"`
	AggregateNotional float64 `json:"aggregate_notional"`
}

// RiskAssessment is the risk stage output for one order.
type RiskAssessment struct {
	OrderID        string           `json:"order_id"`
	Score          float64          `json:"risk_score"` // Always within [0,100]
	Level          RiskLevel        `json:"risk_level"`
	Approved       bool             `json:"approved"`
	Factors        RiskFactors      `json:"risk_factors"`
	Regulatory     *RegulatoryFlags `json:"regulatory,omitempty"`
	Recommendation string           `json:"recommendation"`
	Timestamp      time.Time        `json:"timestamp"`
}

// EscalationResult is the outcome of the high-risk escalation sub-saga.
type EscalationResult struct {
	AutoApproved       bool    `json:"auto_approved"`
	ReviewNote         string  `json:"review_note"`
	PortfolioValue     float64 `json:"portfolio_value"`
	PortfolioImpactPct float64 `json:"portfolio_impact_pct"`
}
