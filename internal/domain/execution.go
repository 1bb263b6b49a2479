package domain

import "time"

// ExecutionRecord is the execution capability's receipt for a trade.
type ExecutionRecord struct {
	OrderID       string      `json:"order_id"`
	Symbol        string      `json:"symbol"`
	Quantity      int         `json:"quantity"`
	Price         float64     `json:"price"`
	Side          OrderSide   `json:"side"`
	Status        OrderStatus `json:"status"`
	ExecutionTime time.Time   `json:"execution_time"`
}

// CancellationImpact summarizes what unwinding an executed order would do
// at current market conditions.
type CancellationImpact struct {
	OriginalPrice  float64 `json:"original_price"`
	CurrentPrice   float64 `json:"current_price"`
	PriceDriftPct  float64 `json:"price_drift_pct"`
	NotionalChange float64 `json:"notional_change"`
}

// CancellationReport is the terminal response of the cancellation saga.
type CancellationReport struct {
	OrderID       string              `json:"order_id"`
	CorrelationID string              `json:"correlation_id"`
	Status        OrderStatus         `json:"status"`
	Message       string              `json:"message"`
	Impact        *CancellationImpact `json:"impact,omitempty"`
	Reassessment  *RiskAssessment     `json:"reassessment,omitempty"`
}
