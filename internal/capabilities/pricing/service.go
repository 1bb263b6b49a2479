// Package pricing resolves market prices and computes cost breakdowns,
// estimated profit/loss and tax impact for orders.
package pricing

import (
	"context"
	"fmt"
	"time"

	"tradeOrchestrator/internal/domain"
	"tradeOrchestrator/internal/ports"
	"tradeOrchestrator/internal/refdata"
	"tradeOrchestrator/internal/trace"
)

// Commission and fee schedules per workflow.
const (
	standardCommissionRate      = 0.005 // 0.5%
	standardBuyFeePerShare      = 0.01  // exchange fee, BUY only
	secFeeRate                  = 0.0000207
	largeSellFeeRate            = 0.002 // 0.2% surcharge above the large-sell threshold
	largeSellThreshold          = 100_000.0
	institutionalCommissionRate = 0.001  // 0.1%
	algoCommissionRate          = 0.0001 // 0.01%
	algoFeePerShare             = 0.005
)

// Tax parameters for the loss-sale analysis.
const (
	taxBracket     = 0.24
	deductionLimit = 3000.0
)

// Volume discount tiers for institutional orders, applied to the quoted
// price before cost computation.
var discountTiers = []struct {
	minQuantity int
	rate        float64
}{
	{10_000, 0.005},
	{5_000, 0.003},
	{1_000, 0.001},
}

// Config carries the pricing service dependencies and overrides.
type Config struct {
	Logger ports.Logger
	// CostBasisOverride, when set, replaces the reference cost basis for
	// PnL estimation. Used to reproduce basis-divergence scenarios.
	CostBasisOverride func(symbol string) (float64, bool)
	// LargeSellFeeRate overrides the surcharge applied to SELL orders
	// above the large-sell threshold. Zero means the default rate.
	LargeSellFeeRate float64
}

// Service implements the pricing capability.
type Service struct {
	logger            ports.Logger
	costBasisOverride func(symbol string) (float64, bool)
	largeSellFeeRate  float64
	now               func() time.Time
}

// New creates the pricing service.
func New(cfg Config) (*Service, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("missing required dependencies for pricing.Service")
	}
	rate := cfg.LargeSellFeeRate
	if rate == 0 {
		rate = largeSellFeeRate
	}
	return &Service{
		logger:            cfg.Logger,
		costBasisOverride: cfg.CostBasisOverride,
		largeSellFeeRate:  rate,
		now:               time.Now,
	}, nil
}

// CurrentPrice returns the latest market price for a symbol.
func (s *Service) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	info, ok := refdata.Lookup(symbol)
	if !ok {
		return 0, fmt.Errorf("%w: symbol %s", ports.ErrNotFound, symbol)
	}
	return info.BasePrice, nil
}

func (s *Service) costBasis(symbol string) float64 {
	if s.costBasisOverride != nil {
		if basis, ok := s.costBasisOverride(symbol); ok {
			return basis
		}
	}
	return refdata.CostBasis(symbol)
}

// estimatedPnL computes profit/loss against the tracked cost basis.
// BUY orders show the unrealized mark against basis as a negative cost,
// SELL orders show the realized gain or loss.
func (s *Service) estimatedPnL(order *domain.Order, price float64) float64 {
	basis := s.costBasis(order.Symbol)
	if order.Side == domain.Buy {
		return -(price - basis) * float64(order.Quantity)
	}
	return (price - basis) * float64(order.Quantity)
}

// Price produces the standard cost breakdown and PnL estimate.
func (s *Service) Price(ctx context.Context, correlationID string, order *domain.Order) (*domain.PricingQuote, error) {
	ctx, span := trace.StartSpan(ctx, "pricing.Price")
	defer span.End()

	price, err := s.CurrentPrice(ctx, order.Symbol)
	if err != nil {
		return nil, err
	}

	baseAmount := order.Notional(price)
	commission := baseAmount * standardCommissionRate

	var fees float64
	if order.Side == domain.Buy {
		fees = float64(order.Quantity) * standardBuyFeePerShare
	} else {
		fees = baseAmount * secFeeRate
		if baseAmount > largeSellThreshold {
			fees += baseAmount * s.largeSellFeeRate
		}
	}

	quote := &domain.PricingQuote{
		OrderID:      order.ID,
		Symbol:       order.Symbol,
		Price:        price,
		BaseAmount:   baseAmount,
		Commission:   commission,
		Fees:         fees,
		TotalCost:    baseAmount + commission + fees,
		EstimatedPnL: s.estimatedPnL(order, price),
		Timestamp:    s.now().UTC(),
	}

	s.logger.Debug(ctx, "Price: quote produced", map[string]interface{}{
		"correlationID": correlationID,
		"orderID":       order.ID,
		"symbol":        order.Symbol,
		"price":         price,
		"totalCost":     quote.TotalCost,
		"estimatedPnL":  quote.EstimatedPnL,
	})
	return quote, nil
}

// PriceInstitutional applies the volume-tiered discount to the quoted
// price before cost computation, on the institutional commission schedule.
func (s *Service) PriceInstitutional(ctx context.Context, correlationID string, order *domain.Order) (*domain.PricingQuote, error) {
	ctx, span := trace.StartSpan(ctx, "pricing.PriceInstitutional")
	defer span.End()

	basePrice, err := s.CurrentPrice(ctx, order.Symbol)
	if err != nil {
		return nil, err
	}

	price := basePrice
	for _, tier := range discountTiers {
		if order.Quantity >= tier.minQuantity {
			price = basePrice * (1 - tier.rate)
			break
		}
	}

	baseAmount := order.Notional(price)
	commission := baseAmount * institutionalCommissionRate

	quote := &domain.PricingQuote{
		OrderID:        order.ID,
		Symbol:         order.Symbol,
		Price:          price,
		BasePrice:      basePrice,
		VolumeDiscount: basePrice - price,
		BaseAmount:     baseAmount,
		Commission:     commission,
		TotalCost:      baseAmount + commission,
		EstimatedPnL:   s.estimatedPnL(order, price),
		Timestamp:      s.now().UTC(),
	}

	s.logger.Debug(ctx, "PriceInstitutional: quote produced", map[string]interface{}{
		"correlationID":  correlationID,
		"orderID":        order.ID,
		"symbol":         order.Symbol,
		"price":          price,
		"volumeDiscount": quote.VolumeDiscount,
		"totalCost":      quote.TotalCost,
	})
	return quote, nil
}

// PriceAlgo is the reduced-fidelity pricing path for the algorithmic
// workflow. It skips the full cost-breakdown validation and PnL lookup.
func (s *Service) PriceAlgo(ctx context.Context, correlationID string, order *domain.Order) (*domain.PricingQuote, error) {
	ctx, span := trace.StartSpan(ctx, "pricing.PriceAlgo")
	defer span.End()

	price, err := s.CurrentPrice(ctx, order.Symbol)
	if err != nil {
		return nil, err
	}

	baseAmount := order.Notional(price)
	commission := baseAmount * algoCommissionRate
	fees := float64(order.Quantity) * algoFeePerShare

	return &domain.PricingQuote{
		OrderID:    order.ID,
		Symbol:     order.Symbol,
		Price:      price,
		BaseAmount: baseAmount,
		Commission: commission,
		Fees:       fees,
		TotalCost:  baseAmount + commission + fees,
		Timestamp:  s.now().UTC(),
	}, nil
}

// AnalyzeTaxImpact evaluates a realized loss for tax-loss harvesting:
// deductible-loss estimate, wash-sale risk and a cost-basis cross-check.
func (s *Service) AnalyzeTaxImpact(ctx context.Context, correlationID string, order *domain.Order, quote *domain.PricingQuote) (*domain.TaxAnalysis, error) {
	ctx, span := trace.StartSpan(ctx, "pricing.AnalyzeTaxImpact")
	defer span.End()

	if quote == nil || quote.EstimatedPnL >= 0 {
		return nil, fmt.Errorf("%w: tax analysis requires a realized loss", ports.ErrInvalidRequest)
	}

	loss := -quote.EstimatedPnL
	deductible := loss
	if deductible > deductionLimit {
		deductible = deductionLimit
	}

	// Wash-sale risk: buys of the same instrument within the 30-day
	// window would disallow the loss. The simulated book counts current
	// holdings as one recent lot.
	recentBuys := 0
	if refdata.Holdings[order.Symbol] > 0 {
		recentBuys = 1
	}

	basis := s.costBasis(order.Symbol)
	referenceBasis := refdata.CostBasis(order.Symbol)

	analysis := &domain.TaxAnalysis{
		CapitalLoss:         loss,
		TaxBracket:          taxBracket,
		EstimatedTaxBenefit: deductible * taxBracket,
		LossType:            "SHORT_TERM",
		DeductionLimit:      deductionLimit,
		WashSaleRisk:        recentBuys > 0,
		RecentBuys30d:       recentBuys,
		VerifiedCostBasis:   referenceBasis,
		LotMethod:           "FIFO",
		BasisConfirmed:      basis == referenceBasis,
	}

	s.logger.Info(ctx, "AnalyzeTaxImpact: loss sale analyzed", map[string]interface{}{
		"correlationID":  correlationID,
		"orderID":        order.ID,
		"symbol":         order.Symbol,
		"capitalLoss":    loss,
		"taxBenefit":     analysis.EstimatedTaxBenefit,
		"washSaleRisk":   analysis.WashSaleRisk,
		"basisConfirmed": analysis.BasisConfirmed,
	})
	return analysis, nil
}
