package ports

import (
	"context"

	"tradeOrchestrator/internal/domain"
)

// Validator checks an incoming order against reference data and market rules.
type Validator interface {
	// Validate returns the validation verdict for the order. A business
	// rejection is reported through the result, not the error; the error
	// is reserved for infrastructure failures.
	Validate(ctx context.Context, correlationID string, order *domain.Order) (*domain.ValidationResult, error)
}

// Pricer computes quotes, cost breakdowns and tax impact for orders.
type Pricer interface {
	// Price produces the standard quote with commission, fees and
	// estimated PnL against the tracked cost basis.
	Price(ctx context.Context, correlationID string, order *domain.Order) (*domain.PricingQuote, error)
	// PriceInstitutional applies volume-tiered discounts on top of the
	// institutional commission schedule.
	PriceInstitutional(ctx context.Context, correlationID string, order *domain.Order) (*domain.PricingQuote, error)
	// PriceAlgo produces the low-latency quote used by algorithmic flow.
	PriceAlgo(ctx context.Context, correlationID string, order *domain.Order) (*domain.PricingQuote, error)
	// AnalyzeTaxImpact evaluates a realized loss for tax-loss harvesting.
	AnalyzeTaxImpact(ctx context.Context, correlationID string, order *domain.Order, quote *domain.PricingQuote) (*domain.TaxAnalysis, error)
	// CurrentPrice returns the latest market price for a symbol.
	CurrentPrice(ctx context.Context, symbol string) (float64, error)
}

// RiskAssessor scores an order and decides whether it may proceed.
type RiskAssessor interface {
	// Assess runs compliance pre-checks, multi-factor scoring and
	// consistency validation of the supplied quote.
	Assess(ctx context.Context, correlationID string, order *domain.Order, quote *domain.PricingQuote) (*domain.RiskAssessment, error)
	// QuickCheck is the bounded-latency pre-trade check for algorithmic
	// flow. It scores on position size only.
	QuickCheck(ctx context.Context, correlationID string, order *domain.Order, quote *domain.PricingQuote) (*domain.RiskAssessment, error)
}

// Executor places and cancels orders at the venue.
type Executor interface {
	Execute(ctx context.Context, correlationID string, order *domain.Order, price float64) (*domain.ExecutionRecord, error)
	Cancel(ctx context.Context, correlationID string, orderID string) error
}
