package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"tradeOrchestrator/internal/domain"
	"tradeOrchestrator/internal/ports"
	"tradeOrchestrator/internal/trace"
)

// CancelOrder runs the cancellation saga: status check, impact
// calculation at current prices, re-risk-assessment, then the cancel
// call. No lock is taken against a placement saga running on the same
// order ID; that interleaving is undefined and callers should serialize
// per order.
func (s *OrderService) CancelOrder(ctx context.Context, correlationID string, orderID string) (*domain.CancellationReport, error) {
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	ctx, span := trace.StartSpan(ctx, "saga.cancel", trace.WithOrder(correlationID, orderID))
	defer span.End()

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: looking up order: %v", ports.ErrQueryFailed, err)
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order %s", ports.ErrNotFound, orderID)
	}

	report := &domain.CancellationReport{
		OrderID:       orderID,
		CorrelationID: correlationID,
	}

	// Only executed orders can be unwound.
	if order.Status != domain.StatusExecuted {
		report.Status = order.Status
		report.Message = fmt.Sprintf("order in status %s cannot be cancelled", order.Status)
		return report, nil
	}

	record, err := s.tradeRepo.FindTradeByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: looking up trade: %v", ports.ErrQueryFailed, err)
	}
	if record == nil {
		return nil, fmt.Errorf("%w: no trade recorded for order %s", ports.ErrNotFound, orderID)
	}

	currentPrice, err := s.pricer.CurrentPrice(ctx, order.Symbol)
	if err != nil {
		return nil, err
	}
	driftPct := 0.0
	if record.Price > 0 {
		driftPct = (currentPrice - record.Price) / record.Price * 100
	}
	report.Impact = &domain.CancellationImpact{
		OriginalPrice:  record.Price,
		CurrentPrice:   currentPrice,
		PriceDriftPct:  driftPct,
		NotionalChange: float64(record.Quantity) * (currentPrice - record.Price),
	}

	// Re-assess at current conditions before unwinding.
	quote := &domain.PricingQuote{
		OrderID:      orderID,
		Symbol:       order.Symbol,
		Price:        currentPrice,
		BaseAmount:   float64(record.Quantity) * currentPrice,
		EstimatedPnL: 0,
	}
	reassessment, err := s.assessor.QuickCheck(ctx, correlationID, order, quote)
	if err != nil {
		return nil, err
	}
	report.Reassessment = reassessment

	if err := s.executor.Cancel(ctx, correlationID, orderID); err != nil {
		s.logger.Error(ctx, err, "CancelOrder: cancel call failed", map[string]interface{}{
			"correlationID": correlationID,
			"orderID":       orderID,
		})
		return nil, err
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, domain.StatusCancelled); err != nil {
		s.logger.Error(ctx, err, "CancelOrder: failed to persist cancelled status", map[string]interface{}{
			"correlationID": correlationID,
			"orderID":       orderID,
		})
	}

	report.Status = domain.StatusCancelled
	report.Message = "order cancelled"
	s.logger.Info(ctx, "CancelOrder: order cancelled", map[string]interface{}{
		"correlationID": correlationID,
		"orderID":       orderID,
		"priceDriftPct": driftPct,
	})
	return report, nil
}
