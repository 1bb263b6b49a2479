package risk

import (
	"context"
	"fmt"
	"time"

	"tradeOrchestrator/internal/domain"
	"tradeOrchestrator/internal/ports"
	"tradeOrchestrator/internal/refdata"
	"tradeOrchestrator/internal/trace"
)

// Config carries the risk service dependencies.
type Config struct {
	Logger    ports.Logger
	TradeRepo ports.TradeRepository
	// RestrictedSymbols overrides the default restricted list. Nil keeps
	// the reference list; an empty map clears it.
	RestrictedSymbols map[string]bool
}

// Service implements the risk assessment capability.
type Service struct {
	logger     ports.Logger
	tradeRepo  ports.TradeRepository
	restricted map[string]bool
}

// New creates the risk service.
func New(cfg Config) (*Service, error) {
	if cfg.Logger == nil || cfg.TradeRepo == nil {
		return nil, fmt.Errorf("missing required dependencies for risk.Service")
	}
	restricted := cfg.RestrictedSymbols
	if restricted == nil {
		restricted = refdata.RestrictedSymbols
	}
	return &Service{
		logger:     cfg.Logger,
		tradeRepo:  cfg.TradeRepo,
		restricted: restricted,
	}, nil
}

// Assess runs the full risk stage: compliance pre-check, multi-factor
// scoring, consistency validation of the supplied quote and, for
// institutional orders, aggregate-exposure regulatory checks.
func (s *Service) Assess(ctx context.Context, correlationID string, order *domain.Order, quote *domain.PricingQuote) (*domain.RiskAssessment, error) {
	ctx, span := trace.StartSpan(ctx, "risk.Assess")
	defer span.End()

	if order == nil || quote == nil {
		return nil, fmt.Errorf("%w: order and quote are required", ports.ErrInvalidRequest)
	}

	if err := s.complianceCheck(order, quote.Price); err != nil {
		s.logger.Warn(ctx, "Assess: compliance pre-check failed", map[string]interface{}{
			"correlationID": correlationID,
			"orderID":       order.ID,
			"symbol":        order.Symbol,
			"error":         err.Error(),
		})
		return nil, err
	}

	assessment := Score(order, quote.Price, quote.EstimatedPnL)

	if err := validateConsistency(order, quote); err != nil {
		s.logger.Error(ctx, err, "Assess: consistency validation failed", map[string]interface{}{
			"correlationID": correlationID,
			"orderID":       order.ID,
			"symbol":        order.Symbol,
		})
		return nil, err
	}

	if order.Workflow == domain.WorkflowInstitutional {
		if err := s.regulatoryCheck(ctx, order, quote, assessment); err != nil {
			return nil, err
		}
	}

	s.logger.Info(ctx, "Assess: risk scored", map[string]interface{}{
		"correlationID": correlationID,
		"orderID":       order.ID,
		"symbol":        order.Symbol,
		"score":         assessment.Score,
		"level":         assessment.Level,
		"approved":      assessment.Approved,
	})
	return assessment, nil
}

// QuickCheck is the bounded-latency pre-trade check for algorithmic flow.
// It keeps the compliance cap and scores on position size alone.
func (s *Service) QuickCheck(ctx context.Context, correlationID string, order *domain.Order, quote *domain.PricingQuote) (*domain.RiskAssessment, error) {
	ctx, span := trace.StartSpan(ctx, "risk.QuickCheck")
	defer span.End()

	if order == nil || quote == nil {
		return nil, fmt.Errorf("%w: order and quote are required", ports.ErrInvalidRequest)
	}

	if err := s.complianceCheck(order, quote.Price); err != nil {
		return nil, err
	}

	notional := order.Notional(quote.Price)
	posFactor, posWhy := positionSizeFactor(notional)
	score := clamp(posFactor, 0, 100)
	level := levelFor(score)

	assessment := &domain.RiskAssessment{
		OrderID:  order.ID,
		Score:    score,
		Level:    level,
		Approved: level != domain.RiskHigh,
		Factors: domain.RiskFactors{
			PositionValue:    notional,
			PositionSizeRisk: posFactor,
			Quantity:         order.Quantity,
			BaseScore:        posFactor,
			RawScore:         posFactor,
			Rationale:        []string{posWhy, "lightweight pre-trade check: position size only"},
		},
		Recommendation: recommendationFor(level, score),
		Timestamp:      time.Now().UTC(),
	}

	s.logger.Debug(ctx, "QuickCheck: pre-trade check complete", map[string]interface{}{
		"correlationID": correlationID,
		"orderID":       order.ID,
		"score":         score,
		"approved":      assessment.Approved,
	})
	return assessment, nil
}
