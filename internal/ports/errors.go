package ports

import (
	"errors"
	"fmt"
)

// Standard application-level errors.
// Adapters and capability services wrap underlying failures with these
// so the orchestration layer can classify outcomes without knowing the source.
var (
	// General Errors
	ErrUnknown            = errors.New("unknown error occurred")
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrNotFound           = errors.New("resource not found")
	ErrTimeout            = errors.New("operation timed out")
	ErrContextCanceled    = errors.New("operation canceled via context")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Saga Stage Errors
	ErrValidation          = errors.New("order failed validation")
	ErrUpstreamTimeout     = errors.New("capability call timed out")
	ErrUpstreamUnavailable = errors.New("capability is unavailable")
	ErrCompliance          = errors.New("order blocked by compliance rule")
	ErrConsistency         = errors.New("supplied data failed consistency validation")
	ErrExecutionFailed     = errors.New("failed to execute order")
	ErrCancelFailed        = errors.New("failed to cancel order")

	// Database Specific Errors
	ErrDuplicateEntry = errors.New("database record already exists")
	ErrDBConnection   = errors.New("database connection error")
	ErrQueryFailed    = errors.New("database query failed")
	ErrUpdateFailed   = errors.New("database update failed")
	ErrDeleteFailed   = errors.New("database delete failed")
)

// ConsistencyViolation carries the recomputed-vs-supplied detail behind
// an ErrConsistency so the report can explain what disagreed.
type ConsistencyViolation struct {
	Symbol      string
	SuppliedPnL float64
	ExpectedPnL float64
	Cause       string
}

func (v *ConsistencyViolation) Error() string {
	return fmt.Sprintf("consistency violation for %s: %s (supplied pnl %.2f, expected %.2f)",
		v.Symbol, v.Cause, v.SuppliedPnL, v.ExpectedPnL)
}

func (v *ConsistencyViolation) Unwrap() error { return ErrConsistency }
