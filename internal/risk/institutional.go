package risk

import (
	"context"
	"fmt"

	"tradeOrchestrator/internal/domain"
	"tradeOrchestrator/internal/ports"
)

// Regulatory filing thresholds for institutional flow.
const (
	filing13FNotional = 500_000.0
	filing13DQuantity = 50_000
	// Both filing flags together only block when the score is already
	// elevated.
	regulatoryBlockScore = 60.0
)

// regulatoryCheck computes aggregate cross-portfolio exposure and the
// 13F/13D-style filing flags. Either flag alone never blocks; both flags
// on an elevated score do.
func (s *Service) regulatoryCheck(ctx context.Context, order *domain.Order, quote *domain.PricingQuote, assessment *domain.RiskAssessment) error {
	existing, err := s.tradeRepo.AggregateNotionalBySymbol(ctx, order.Symbol)
	if err != nil {
		return fmt.Errorf("%w: aggregate exposure lookup: %v", ports.ErrUpstreamUnavailable, err)
	}

	aggregate := existing + order.Notional(quote.Price)
	flags := &domain.RegulatoryFlags{
		Requires13F:       aggregate > filing13FNotional,
		Requires13D:       order.Quantity > filing13DQuantity,
		AggregateNotional: aggregate,
	}
	assessment.Regulatory = flags

	if flags.Requires13F && flags.Requires13D && assessment.Score >= regulatoryBlockScore {
		assessment.Approved = false
		assessment.Recommendation = fmt.Sprintf(
			"aggregate notional %.2f and quantity %d both cross filing thresholds at score %.1f: blocked pending filings",
			aggregate, order.Quantity, assessment.Score)
	}
	return nil
}
