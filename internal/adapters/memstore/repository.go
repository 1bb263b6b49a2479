// Package memstore is an in-memory implementation of the repository
// ports, used by tests and the scenario runner.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"tradeOrchestrator/internal/domain"
	"tradeOrchestrator/internal/ports"
)

// Store implements the ports.OrderRepository, ports.AssessmentRepository
// and ports.TradeRepository interfaces in memory. Safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	orders      map[string]*domain.Order
	assessments map[string]*domain.RiskAssessment
	trades      map[string]*domain.ExecutionRecord
}

// New creates an empty store.
func New() *Store {
	return &Store{
		orders:      make(map[string]*domain.Order),
		assessments: make(map[string]*domain.RiskAssessment),
		trades:      make(map[string]*domain.ExecutionRecord),
	}
}

// Save persists a new order.
func (s *Store) Save(ctx context.Context, order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.orders[order.ID]; exists {
		return fmt.Errorf("order %s: %w", order.ID, ports.ErrDuplicateEntry)
	}
	cp := *order
	s.orders[order.ID] = &cp
	return nil
}

// UpdateStatus moves an order to a new status.
func (s *Store) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return fmt.Errorf("order %s: %w", orderID, ports.ErrNotFound)
	}
	order.Status = status
	return nil
}

// FindByID retrieves an order. Returns nil, nil if not found.
func (s *Store) FindByID(ctx context.Context, orderID string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.orders[orderID]
	if !ok {
		return nil, nil
	}
	cp := *order
	return &cp, nil
}

// FindAll retrieves all orders, newest first.
func (s *Store) FindAll(ctx context.Context) ([]*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Order, 0, len(s.orders))
	for _, order := range s.orders {
		cp := *order
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// SaveAssessment upserts the assessment for an order.
func (s *Store) SaveAssessment(ctx context.Context, a *domain.RiskAssessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.assessments[a.OrderID] = &cp
	return nil
}

// FindAssessmentByOrderID retrieves the assessment for an order.
// Returns nil, nil if not found.
func (s *Store) FindAssessmentByOrderID(ctx context.Context, orderID string) (*domain.RiskAssessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assessments[orderID]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

// SaveTrade persists an execution record.
func (s *Store) SaveTrade(ctx context.Context, rec *domain.ExecutionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.trades[rec.OrderID]; exists {
		return fmt.Errorf("trade for order %s: %w", rec.OrderID, ports.ErrDuplicateEntry)
	}
	cp := *rec
	s.trades[rec.OrderID] = &cp
	return nil
}

// FindTradeByOrderID retrieves the execution record for an order.
// Returns nil, nil if not found.
func (s *Store) FindTradeByOrderID(ctx context.Context, orderID string) (*domain.ExecutionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.trades[orderID]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

// FindAllTrades retrieves all execution records, most recent first.
func (s *Store) FindAllTrades(ctx context.Context) ([]*domain.ExecutionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.ExecutionRecord, 0, len(s.trades))
	for _, rec := range s.trades {
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExecutionTime.After(out[j].ExecutionTime) })
	return out, nil
}

// AggregateNotionalBySymbol sums price*quantity across executed trades.
func (s *Store) AggregateNotionalBySymbol(ctx context.Context, symbol string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0.0
	for _, rec := range s.trades {
		if rec.Symbol == symbol && rec.Status == domain.StatusExecuted {
			total += rec.Price * float64(rec.Quantity)
		}
	}
	return total, nil
}

// UpdateTradeStatus changes the status on a stored execution record.
func (s *Store) UpdateTradeStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.trades[orderID]
	if !ok {
		return fmt.Errorf("trade for order %s: %w", orderID, ports.ErrNotFound)
	}
	rec.Status = status
	return nil
}
