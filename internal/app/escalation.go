package app

import (
	"context"
	"fmt"

	"tradeOrchestrator/internal/domain"
	"tradeOrchestrator/internal/trace"
)

// runEscalation is the high-risk sub-saga: a synthesized manager-review
// decision followed by a portfolio-impact computation. Scores below the
// auto-approve limit proceed; anything at or above it holds the order
// for manual review.
func (s *OrderService) runEscalation(ctx context.Context, correlationID string, order *domain.Order, quote *domain.PricingQuote, assessment *domain.RiskAssessment, profile Profile) *domain.EscalationResult {
	ctx, span := trace.StartSpan(ctx, "saga.escalation", trace.WithOrder(correlationID, order.ID))
	defer span.End()

	autoApproved := assessment.Score < profile.AutoApproveLimit

	impact := 0.0
	if s.portfolioValue > 0 {
		impact = order.Notional(quote.Price) / s.portfolioValue * 100
	}

	note := fmt.Sprintf("score %.1f above escalation threshold %.1f: auto-approved under manager review policy",
		assessment.Score, profile.EscalationThreshold)
	if !autoApproved {
		note = fmt.Sprintf("score %.1f at or above auto-approve limit %.1f: held for manual review",
			assessment.Score, profile.AutoApproveLimit)
	}

	s.logger.Warn(ctx, "runEscalation: high-risk order escalated", map[string]interface{}{
		"correlationID":      correlationID,
		"orderID":            order.ID,
		"score":              assessment.Score,
		"autoApproved":       autoApproved,
		"portfolioImpactPct": impact,
	})

	return &domain.EscalationResult{
		AutoApproved:       autoApproved,
		ReviewNote:         note,
		PortfolioValue:     s.portfolioValue,
		PortfolioImpactPct: impact,
	}
}
