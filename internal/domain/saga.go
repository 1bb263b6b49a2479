package domain

import "time"

// ExecutionFlow is the per-stage breakdown attached to an OrderReport.
// Sections for stages that never ran are omitted entirely.
type ExecutionFlow struct {
	Validation  *ValidationResult `json:"validation,omitempty"`
	Pricing     *PricingQuote     `json:"pricing,omitempty"`
	Risk        *RiskAssessment   `json:"risk,omitempty"`
	Escalation  *EscalationResult `json:"escalation,omitempty"`
	TaxAnalysis *TaxAnalysis      `json:"tax_analysis,omitempty"`
	Execution   *ExecutionRecord  `json:"execution,omitempty"`
}

// OrderReport is the terminal response of the placement saga. FailureStage
// names the furthest stage that captured a failure, empty on success or
// business rejection. Latencies are millisecond counts; StageLatency only
// carries stages that actually ran.
type OrderReport struct {
	OrderID       string          `json:"order_id"`
	CorrelationID string          `json:"correlation_id"`
	Status        OrderStatus     `json:"status"`
	Message       string          `json:"message"`
	FailureStage  Stage           `json:"failure_stage,omitempty"`
	Latency       int64           `json:"latency_ms"`
	StageLatency  map[Stage]int64 `json:"stage_latency_ms"`
	Flow          ExecutionFlow   `json:"flow"`
}

// SagaState accumulates stage results as the placement saga advances.
// Each stage writes its outcome here instead of signalling through
// control flow, so a later failure still reports everything captured
// before it.
type SagaState struct {
	Order         *Order
	CorrelationID string
	StartedAt     time.Time

	Validation  *ValidationResult
	Pricing     *PricingQuote
	Risk        *RiskAssessment
	Escalation  *EscalationResult
	TaxAnalysis *TaxAnalysis
	Execution   *ExecutionRecord

	StageLatency map[Stage]time.Duration

	FurthestStage Stage
	StageErr      error
}

// NewSagaState seeds an accumulator for an order run.
func NewSagaState(order *Order, correlationID string) *SagaState {
	return &SagaState{
		Order:         order,
		CorrelationID: correlationID,
		StartedAt:     time.Now(),
		StageLatency:  make(map[Stage]time.Duration),
	}
}

// Capture records a stage failure, keeping the furthest stage reached.
func (s *SagaState) Capture(stage Stage, err error) {
	if s.FurthestStage == "" || s.FurthestStage.Before(stage) {
		s.FurthestStage = stage
		s.StageErr = err
	}
}

// RecordLatency stores how long a stage took, whether it succeeded or not.
func (s *SagaState) RecordLatency(stage Stage, d time.Duration) {
	s.StageLatency[stage] = d
}

// LatencyBreakdown converts the captured stage durations to millisecond
// counts for the report.
func (s *SagaState) LatencyBreakdown() map[Stage]int64 {
	out := make(map[Stage]int64, len(s.StageLatency))
	for stage, d := range s.StageLatency {
		out[stage] = d.Milliseconds()
	}
	return out
}

// Flow assembles the report flow from whatever stages completed.
func (s *SagaState) Flow() ExecutionFlow {
	return ExecutionFlow{
		Validation:  s.Validation,
		Pricing:     s.Pricing,
		Risk:        s.Risk,
		Escalation:  s.Escalation,
		TaxAnalysis: s.TaxAnalysis,
		Execution:   s.Execution,
	}
}
