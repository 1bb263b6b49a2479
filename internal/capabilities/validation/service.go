// Package validation implements the order intake checks: symbol existence,
// quantity limits, lot-size normalization, buying power and market hours.
package validation

import (
	"context"
	"fmt"
	"time"

	"tradeOrchestrator/internal/domain"
	"tradeOrchestrator/internal/ports"
	"tradeOrchestrator/internal/refdata"
	"tradeOrchestrator/internal/trace"
)

// EstimatedPrice is the conservative per-share price used for the buying
// power check before any real quote exists.
const EstimatedPrice = 175.0

// InstitutionalMaxOrder replaces the retail caps for institutional flow,
// which routinely trades above the per-symbol limits.
const InstitutionalMaxOrder = 100_000

// Market session bounds, exchange local time.
const (
	marketOpenHour   = 9
	marketOpenMinute = 30
	marketCloseHour  = 23
)

// Service validates incoming orders against reference data.
type Service struct {
	logger ports.Logger
	// now is swappable so market-hour tests can pin the clock.
	now func() time.Time
}

// New creates the validation service.
func New(logger ports.Logger) (*Service, error) {
	if logger == nil {
		return nil, fmt.Errorf("missing required dependencies for validation.Service")
	}
	return &Service{logger: logger, now: time.Now}, nil
}

// WithClock overrides the clock used for market-hours checks.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Validate checks the order and returns a verdict. Business rejections
// come back in the result with Valid=false; the error return is reserved
// for infrastructure failures.
func (s *Service) Validate(ctx context.Context, correlationID string, order *domain.Order) (*domain.ValidationResult, error) {
	ctx, span := trace.StartSpan(ctx, "validation.Validate")
	defer span.End()

	if order == nil {
		return nil, fmt.Errorf("%w: nil order", ports.ErrInvalidRequest)
	}

	reject := func(reason string) *domain.ValidationResult {
		s.logger.Info(ctx, "Validate: order rejected", map[string]interface{}{
			"correlationID": correlationID,
			"orderID":       order.ID,
			"symbol":        order.Symbol,
			"reason":        reason,
		})
		return &domain.ValidationResult{Valid: false, Reason: reason, Timestamp: s.now().UTC()}
	}

	if order.Quantity <= 0 {
		return reject("quantity must be positive"), nil
	}
	if order.Side != domain.Buy && order.Side != domain.Sell {
		return reject(fmt.Sprintf("unknown side %q", order.Side)), nil
	}

	info, ok := refdata.Lookup(order.Symbol)
	if !ok {
		return reject(fmt.Sprintf("unknown symbol %s", order.Symbol)), nil
	}

	if order.Workflow == domain.WorkflowInstitutional {
		if order.Quantity > InstitutionalMaxOrder {
			return reject(fmt.Sprintf("quantity %d exceeds institutional order limit %d", order.Quantity, InstitutionalMaxOrder)), nil
		}
	} else {
		if order.Quantity > refdata.GlobalMaxOrder {
			return reject(fmt.Sprintf("quantity %d exceeds global order limit %d", order.Quantity, refdata.GlobalMaxOrder)), nil
		}
		if order.Quantity > info.MaxQuantity {
			return reject(fmt.Sprintf("quantity %d exceeds %s limit %d", order.Quantity, order.Symbol, info.MaxQuantity)), nil
		}
	}

	if !s.withinMarketHours() {
		return reject("market is closed"), nil
	}

	// Lot-size normalization rounds down to the nearest tradable lot.
	normalized := order.Quantity
	if info.LotSize > 1 {
		normalized = (order.Quantity / info.LotSize) * info.LotSize
		if normalized == 0 {
			return reject(fmt.Sprintf("quantity %d below minimum lot %d", order.Quantity, info.LotSize)), nil
		}
	}

	// Institutional accounts are funded externally, so the retail buying
	// power and holdings checks only apply to the other workflows.
	if order.Workflow != domain.WorkflowInstitutional {
		if order.Side == domain.Buy {
			estimated := float64(normalized) * EstimatedPrice
			if estimated > refdata.AccountBalance {
				return reject(fmt.Sprintf("estimated cost %.2f exceeds account balance %.2f", estimated, refdata.AccountBalance)), nil
			}
		} else {
			held := refdata.Holdings[order.Symbol]
			if normalized > held {
				return reject(fmt.Sprintf("insufficient holdings: selling %d, holding %d", normalized, held)), nil
			}
		}
	}

	s.logger.Debug(ctx, "Validate: order accepted", map[string]interface{}{
		"correlationID":      correlationID,
		"orderID":            order.ID,
		"symbol":             order.Symbol,
		"normalizedQuantity": normalized,
	})

	return &domain.ValidationResult{
		Valid:              true,
		NormalizedQuantity: normalized,
		Timestamp:          s.now().UTC(),
	}, nil
}

func (s *Service) withinMarketHours() bool {
	t := s.now()
	h, m := t.Hour(), t.Minute()
	switch {
	case h < marketOpenHour:
		return false
	case h == marketOpenHour && m < marketOpenMinute:
		return false
	case h >= marketCloseHour:
		return false
	}
	return true
}
