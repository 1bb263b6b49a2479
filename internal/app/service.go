// Package app hosts the order orchestration service: the placement saga,
// the escalation and tax sub-sagas and the cancellation saga.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tradeOrchestrator/internal/domain"
	"tradeOrchestrator/internal/ports"
)

// OrderService orchestrates order processing across the capability
// services. It holds no per-order state; every saga execution owns its
// own accumulator.
type OrderService struct {
	logger    ports.Logger
	validator ports.Validator
	pricer    ports.Pricer
	assessor  ports.RiskAssessor
	executor  ports.Executor

	orderRepo      ports.OrderRepository
	assessmentRepo ports.AssessmentRepository
	tradeRepo      ports.TradeRepository

	// PortfolioValue backs the escalation portfolio-impact step.
	portfolioValue float64

	profileFor func(domain.Workflow) Profile
}

// Deps bundles the service dependencies.
type Deps struct {
	Logger         ports.Logger
	Validator      ports.Validator
	Pricer         ports.Pricer
	Assessor       ports.RiskAssessor
	Executor       ports.Executor
	OrderRepo      ports.OrderRepository
	AssessmentRepo ports.AssessmentRepository
	TradeRepo      ports.TradeRepository
	PortfolioValue float64
	// ProfileFor overrides the default workflow profiles. Nil keeps them.
	ProfileFor func(domain.Workflow) Profile
}

// DefaultPortfolioValue is the assumed total portfolio for the
// escalation impact computation when no value is configured.
const DefaultPortfolioValue = 2_000_000.0

// NewOrderService creates the orchestration service.
func NewOrderService(d Deps) (*OrderService, error) {
	if d.Logger == nil || d.Validator == nil || d.Pricer == nil || d.Assessor == nil || d.Executor == nil {
		return nil, fmt.Errorf("missing required dependencies for OrderService")
	}
	if d.OrderRepo == nil || d.AssessmentRepo == nil || d.TradeRepo == nil {
		return nil, fmt.Errorf("missing required repositories for OrderService")
	}
	pv := d.PortfolioValue
	if pv <= 0 {
		pv = DefaultPortfolioValue
	}
	profileFor := d.ProfileFor
	if profileFor == nil {
		profileFor = ProfileFor
	}
	return &OrderService{
		logger:         d.Logger,
		validator:      d.Validator,
		pricer:         d.Pricer,
		assessor:       d.Assessor,
		executor:       d.Executor,
		orderRepo:      d.OrderRepo,
		assessmentRepo: d.AssessmentRepo,
		tradeRepo:      d.TradeRepo,
		portfolioValue: pv,
		profileFor:     profileFor,
	}, nil
}

// PlaceOrder runs the placement saga for a new order and returns the
// terminal report. The correlation ID ties together every capability
// call and log event for this order; an empty one is generated.
func (s *OrderService) PlaceOrder(ctx context.Context, correlationID string, order *domain.Order) (*domain.OrderReport, error) {
	if order == nil {
		return nil, fmt.Errorf("%w: nil order", ports.ErrInvalidRequest)
	}
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	if order.Workflow == "" {
		order.Workflow = domain.WorkflowStandard
	}
	order.Status = domain.StatusStarted

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("%w: saving order: %v", ports.ErrQueryFailed, err)
	}

	profile := s.profileFor(order.Workflow)
	report := s.runSaga(ctx, profile, domain.NewSagaState(order, correlationID))

	if err := s.orderRepo.UpdateStatus(ctx, order.ID, report.Status); err != nil {
		s.logger.Error(ctx, err, "PlaceOrder: failed to persist terminal status", map[string]interface{}{
			"correlationID": correlationID,
			"orderID":       order.ID,
			"status":        report.Status,
		})
	}
	return report, nil
}

// GetOrder returns a stored order.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.orderRepo.FindByID(ctx, orderID)
}

// GetAssessment returns the stored risk assessment for an order.
func (s *OrderService) GetAssessment(ctx context.Context, orderID string) (*domain.RiskAssessment, error) {
	return s.assessmentRepo.FindAssessmentByOrderID(ctx, orderID)
}

// ListTrades returns all execution records, most recent first.
func (s *OrderService) ListTrades(ctx context.Context) ([]*domain.ExecutionRecord, error) {
	return s.tradeRepo.FindAllTrades(ctx)
}
