package risk

import (
	"fmt"

	"tradeOrchestrator/internal/domain"
	"tradeOrchestrator/internal/ports"
)

// SingleOrderNotionalCap is the hard compliance limit on one order.
const SingleOrderNotionalCap = 500_000.0

// complianceCheck runs before scoring and fails closed: a breach rejects
// the order no matter how favorable the score would be.
func (s *Service) complianceCheck(order *domain.Order, price float64) error {
	if s.restricted[order.Symbol] {
		return fmt.Errorf("%w: %s is on the restricted list", ports.ErrCompliance, order.Symbol)
	}
	notional := order.Notional(price)
	if notional > SingleOrderNotionalCap {
		return fmt.Errorf("%w: notional %.2f exceeds single-order cap %.2f",
			ports.ErrCompliance, notional, SingleOrderNotionalCap)
	}
	return nil
}
