package domain

import "time"

// PricingQuote is the pricing capability's output for one order.
// It is produced once per order and never mutated afterwards; later
// stages and the final report only read it.
type PricingQuote struct {
	OrderID        string    `json:"order_id"`
	Symbol         string    `json:"symbol"`
	Price          float64   `json:"price"`
	BasePrice      float64   `json:"base_price,omitempty"`      // Pre-discount price (institutional)
	VolumeDiscount float64   `json:"volume_discount,omitempty"` // BasePrice minus Price (institutional)
	BaseAmount     float64   `json:"base_amount"`
	Commission     float64   `json:"commission"`
	Fees           float64   `json:"fees"`
	TotalCost      float64   `json:"total_cost"`
	EstimatedPnL   float64   `json:"estimated_pnl"`
	Timestamp      time.Time `json:"timestamp"`
}

// TaxAnalysis is the output of the loss-sale tax sub-saga. It is attached
// to the order report for SELL orders with a negative estimated PnL and
// never blocks execution.
type TaxAnalysis struct {
	CapitalLoss         float64 `json:"capital_loss"`
	TaxBracket          float64 `json:"tax_bracket"`
	EstimatedTaxBenefit float64 `json:"estimated_tax_benefit"`
	LossType            string  `json:"loss_type"`       // SHORT_TERM or LONG_TERM
	DeductionLimit      float64 `json:"deduction_limit"` // IRS annual cap
	WashSaleRisk        bool    `json:"wash_sale_risk"`
	RecentBuys30d       int     `json:"recent_buys_within_30_days"`
	VerifiedCostBasis   float64 `json:"verified_cost_basis"`
	LotMethod           string  `json:"purchase_lot_method"` // e.g. FIFO
	BasisConfirmed      bool    `json:"accuracy_confirmed"`
}
