package domain

import "time"

// Order is one trade order moving through the processing saga.
// Quantity is mutated exactly once, by lot-size normalization during
// validation; every later stage sees the normalized value.
type Order struct {
	ID        string      // Unique order identifier (UUID)
	Symbol    string      // Instrument symbol (e.g. "AAPL")
	Quantity  int         // Requested, then lot-normalized, share count
	Side      OrderSide   // BUY or SELL
	Workflow  Workflow    // Processing profile driving this order
	Status    OrderStatus // Last known status, updated by the saga
	CreatedAt time.Time
}

// Notional returns price * quantity for the order at a given price.
func (o *Order) Notional(price float64) float64 {
	return float64(o.Quantity) * price
}

// ValidationResult is the validation capability's verdict on an order.
type ValidationResult struct {
	Valid              bool      `json:"valid"`
	Reason             string    `json:"reason,omitempty"`
	NormalizedQuantity int       `json:"normalized_quantity"`
	Timestamp          time.Time `json:"timestamp"`
}
