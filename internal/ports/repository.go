package ports

import (
	"context"

	"tradeOrchestrator/internal/domain"
)

// OrderRepository defines the interface for storing and retrieving orders.
type OrderRepository interface {
	// Save persists a new order.
	Save(ctx context.Context, order *domain.Order) error
	// UpdateStatus moves an order to a new status.
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
	// FindByID retrieves an order by its ID.
	// Returns nil, nil if not found.
	FindByID(ctx context.Context, orderID string) (*domain.Order, error)
	// FindAll retrieves all orders, ordered by creation time descending.
	FindAll(ctx context.Context) ([]*domain.Order, error)
}

// AssessmentRepository stores risk assessments keyed by order.
type AssessmentRepository interface {
	SaveAssessment(ctx context.Context, assessment *domain.RiskAssessment) error
	// FindAssessmentByOrderID retrieves the assessment for an order.
	// Returns nil, nil if not found.
	FindAssessmentByOrderID(ctx context.Context, orderID string) (*domain.RiskAssessment, error)
}

// TradeRepository stores execution records for completed trades.
type TradeRepository interface {
	SaveTrade(ctx context.Context, record *domain.ExecutionRecord) error
	// FindTradeByOrderID retrieves the execution record for an order.
	// Returns nil, nil if not found.
	FindTradeByOrderID(ctx context.Context, orderID string) (*domain.ExecutionRecord, error)
	// FindAllTrades retrieves all execution records, most recent first.
	FindAllTrades(ctx context.Context) ([]*domain.ExecutionRecord, error)
	// AggregateNotionalBySymbol sums price*quantity across executed trades
	// for a symbol. Used by institutional regulatory checks.
	AggregateNotionalBySymbol(ctx context.Context, symbol string) (float64, error)
	// UpdateTradeStatus changes the status on a stored execution record.
	UpdateTradeStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
}
