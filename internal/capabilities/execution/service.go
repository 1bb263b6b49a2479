// Package execution records trades as executed at the simulated venue.
package execution

import (
	"context"
	"fmt"
	"time"

	"tradeOrchestrator/internal/domain"
	"tradeOrchestrator/internal/ports"
	"tradeOrchestrator/internal/trace"
)

// Service implements the execution capability backed by the trade store.
type Service struct {
	logger    ports.Logger
	tradeRepo ports.TradeRepository
	now       func() time.Time
}

// New creates the execution service.
func New(logger ports.Logger, tradeRepo ports.TradeRepository) (*Service, error) {
	if logger == nil || tradeRepo == nil {
		return nil, fmt.Errorf("missing required dependencies for execution.Service")
	}
	return &Service{logger: logger, tradeRepo: tradeRepo, now: time.Now}, nil
}

// Execute records the trade as executed at the given price.
func (s *Service) Execute(ctx context.Context, correlationID string, order *domain.Order, price float64) (*domain.ExecutionRecord, error) {
	ctx, span := trace.StartSpan(ctx, "execution.Execute")
	defer span.End()

	if order == nil {
		return nil, fmt.Errorf("%w: nil order", ports.ErrInvalidRequest)
	}
	if price <= 0 {
		return nil, fmt.Errorf("%w: non-positive execution price %.4f", ports.ErrInvalidRequest, price)
	}

	record := &domain.ExecutionRecord{
		OrderID:       order.ID,
		Symbol:        order.Symbol,
		Quantity:      order.Quantity,
		Price:         price,
		Side:          order.Side,
		Status:        domain.StatusExecuted,
		ExecutionTime: s.now().UTC(),
	}

	if err := s.tradeRepo.SaveTrade(ctx, record); err != nil {
		s.logger.Error(ctx, err, "Execute: failed to persist trade", map[string]interface{}{
			"correlationID": correlationID,
			"orderID":       order.ID,
		})
		return nil, fmt.Errorf("%w: %v", ports.ErrExecutionFailed, err)
	}

	s.logger.Info(ctx, "Execute: trade executed", map[string]interface{}{
		"correlationID": correlationID,
		"orderID":       order.ID,
		"symbol":        order.Symbol,
		"quantity":      order.Quantity,
		"price":         price,
		"side":          order.Side,
	})
	return record, nil
}

// Cancel marks a previously executed trade as cancelled at the venue.
func (s *Service) Cancel(ctx context.Context, correlationID string, orderID string) error {
	ctx, span := trace.StartSpan(ctx, "execution.Cancel")
	defer span.End()

	record, err := s.tradeRepo.FindTradeByOrderID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("%w: %v", ports.ErrCancelFailed, err)
	}
	if record == nil {
		return fmt.Errorf("%w: order %s", ports.ErrNotFound, orderID)
	}

	if err := s.tradeRepo.UpdateTradeStatus(ctx, orderID, domain.StatusCancelled); err != nil {
		s.logger.Error(ctx, err, "Cancel: failed to update trade status", map[string]interface{}{
			"correlationID": correlationID,
			"orderID":       orderID,
		})
		return fmt.Errorf("%w: %v", ports.ErrCancelFailed, err)
	}

	s.logger.Info(ctx, "Cancel: trade cancelled", map[string]interface{}{
		"correlationID": correlationID,
		"orderID":       orderID,
	})
	return nil
}
