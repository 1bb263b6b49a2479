package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tradeOrchestrator/internal/domain"
	"tradeOrchestrator/internal/monitoring"
	"tradeOrchestrator/internal/ports"
	"tradeOrchestrator/internal/trace"
)

// runStage wraps one saga step with a span, the profile's deadline and
// latency capture, and classifies deadline expiry as an upstream timeout.
// Calls are at-most-once: an expired deadline fails the stage, never a
// retry.
func (s *OrderService) runStage(ctx context.Context, state *domain.SagaState, stage domain.Stage, timeout time.Duration, fn func(ctx context.Context) error) error {
	ctx, span := trace.StartSpan(ctx, "saga."+string(stage), trace.WithOrder(state.CorrelationID, state.Order.ID))
	defer span.End()

	stageCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := fn(stageCtx)
	elapsed := time.Since(start)
	state.RecordLatency(stage, elapsed)
	monitoring.RecordStageLatency(string(stage), string(state.Order.Workflow), elapsed)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s stage exceeded %s", ports.ErrUpstreamTimeout, stage, timeout)
		}
		return err
	}
	return nil
}

// runSaga drives an order through Validate, Price, Risk and Execute for
// the given profile, accumulating each stage's output in the state so a
// failure still reports everything captured before it.
func (s *OrderService) runSaga(ctx context.Context, profile Profile, state *domain.SagaState) *domain.OrderReport {
	order := state.Order
	corr := state.CorrelationID

	s.logger.Info(ctx, "runSaga: order processing started", map[string]interface{}{
		"correlationID": corr,
		"orderID":       order.ID,
		"symbol":        order.Symbol,
		"workflow":      order.Workflow,
	})

	// Stage 1: validation.
	err := s.runStage(ctx, state, domain.StageValidation, profile.ValidationTimeout, func(ctx context.Context) error {
		result, err := s.validator.Validate(ctx, corr, order)
		if err != nil {
			return err
		}
		state.Validation = result
		return nil
	})
	if err != nil {
		return s.fail(ctx, state, domain.StageValidation, err)
	}
	if !state.Validation.Valid {
		return s.reject(ctx, state, fmt.Sprintf("validation failed: %s", state.Validation.Reason))
	}
	order.Quantity = state.Validation.NormalizedQuantity

	// Stage 2: pricing, per profile.
	err = s.runStage(ctx, state, domain.StagePricing, profile.PricingTimeout, func(ctx context.Context) error {
		var (
			quote *domain.PricingQuote
			err   error
		)
		switch {
		case profile.InstitutionalPricing:
			quote, err = s.pricer.PriceInstitutional(ctx, corr, order)
		case profile.QuickRisk:
			quote, err = s.pricer.PriceAlgo(ctx, corr, order)
		default:
			quote, err = s.pricer.Price(ctx, corr, order)
		}
		if err != nil {
			return err
		}
		state.Pricing = quote
		return nil
	})
	if err != nil {
		return s.fail(ctx, state, domain.StagePricing, err)
	}

	// Stage 3: risk assessment.
	err = s.runStage(ctx, state, domain.StageRisk, profile.RiskTimeout, func(ctx context.Context) error {
		var (
			assessment *domain.RiskAssessment
			err        error
		)
		if profile.QuickRisk {
			assessment, err = s.assessor.QuickCheck(ctx, corr, order, state.Pricing)
		} else {
			assessment, err = s.assessor.Assess(ctx, corr, order, state.Pricing)
		}
		if err != nil {
			return err
		}
		state.Risk = assessment
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ports.ErrCompliance):
			return s.reject(ctx, state, err.Error())
		case errors.Is(err, ports.ErrConsistency):
			// Fails closed: a consistency mismatch points at an upstream
			// defect and blocks regardless of the score.
			return s.reject(ctx, state, err.Error())
		default:
			return s.fail(ctx, state, domain.StageRisk, err)
		}
	}

	assessment := state.Risk
	monitoring.RecordRiskScore(assessment.Score)
	if err := s.assessmentRepo.SaveAssessment(ctx, assessment); err != nil {
		s.logger.Error(ctx, err, "runSaga: failed to persist assessment", map[string]interface{}{
			"correlationID": corr,
			"orderID":       order.ID,
		})
	}

	// Escalation runs before the high-risk gate so a score just past the
	// threshold can still auto-approve.
	if profile.Escalates(assessment.Score) {
		escalation := s.runEscalation(ctx, corr, order, state.Pricing, assessment, profile)
		state.Escalation = escalation
		if !escalation.AutoApproved {
			return s.terminal(ctx, state, domain.StatusPendingApproval,
				fmt.Sprintf("risk score %.1f requires manual approval", assessment.Score))
		}
		// The review decision supersedes the engine verdict. Flip the
		// assessment and re-persist it so the stored record matches the
		// order that executes.
		assessment.Approved = true
		if err := s.assessmentRepo.SaveAssessment(ctx, assessment); err != nil {
			s.logger.Error(ctx, err, "runSaga: failed to persist escalated assessment", map[string]interface{}{
				"correlationID": corr,
				"orderID":       order.ID,
			})
		}
	} else if assessment.Level == domain.RiskHigh && !assessment.Approved {
		return s.reject(ctx, state, fmt.Sprintf("risk level HIGH at score %.1f", assessment.Score))
	} else if !assessment.Approved {
		return s.reject(ctx, state, assessment.Recommendation)
	}

	// Loss-sale tax analysis is advisory: it attaches to the report and
	// never blocks execution.
	if profile.TaxAnalysis && order.Side == domain.Sell && state.Pricing.EstimatedPnL < 0 {
		analysis, err := s.pricer.AnalyzeTaxImpact(ctx, corr, order, state.Pricing)
		if err != nil {
			s.logger.Warn(ctx, "runSaga: tax analysis failed, continuing", map[string]interface{}{
				"correlationID": corr,
				"orderID":       order.ID,
				"error":         err.Error(),
			})
		} else {
			state.TaxAnalysis = analysis
		}
	}

	// Stage 4: execution.
	err = s.runStage(ctx, state, domain.StageExecution, profile.ExecutionTimeout, func(ctx context.Context) error {
		record, err := s.executor.Execute(ctx, corr, order, state.Pricing.Price)
		if err != nil {
			return err
		}
		state.Execution = record
		return nil
	})
	if err != nil {
		// No compensation: validation and normalization effects stay as
		// they are when execution fails after risk approval.
		return s.fail(ctx, state, domain.StageExecution, err)
	}

	return s.terminal(ctx, state, domain.StatusExecuted, "order executed")
}

// fail builds the FAILED report, attributing the failing stage and
// keeping every stage output captured before it.
func (s *OrderService) fail(ctx context.Context, state *domain.SagaState, stage domain.Stage, err error) *domain.OrderReport {
	state.Capture(stage, err)
	monitoring.RecordError(errorKind(err))
	s.logger.Error(ctx, err, "saga stage failed", map[string]interface{}{
		"correlationID": state.CorrelationID,
		"orderID":       state.Order.ID,
		"stage":         stage,
	})
	report := s.report(state, domain.StatusFailed, err.Error())
	report.FailureStage = stage
	monitoring.RecordOrder(string(report.Status), string(state.Order.Workflow))
	return report
}

func (s *OrderService) reject(ctx context.Context, state *domain.SagaState, reason string) *domain.OrderReport {
	return s.terminal(ctx, state, domain.StatusRejected, reason)
}

func (s *OrderService) terminal(ctx context.Context, state *domain.SagaState, status domain.OrderStatus, message string) *domain.OrderReport {
	s.logger.Info(ctx, "saga finished", map[string]interface{}{
		"correlationID": state.CorrelationID,
		"orderID":       state.Order.ID,
		"status":        status,
		"message":       message,
	})
	report := s.report(state, status, message)
	monitoring.RecordOrder(string(status), string(state.Order.Workflow))
	return report
}

func (s *OrderService) report(state *domain.SagaState, status domain.OrderStatus, message string) *domain.OrderReport {
	state.Order.Status = status
	return &domain.OrderReport{
		OrderID:       state.Order.ID,
		CorrelationID: state.CorrelationID,
		Status:        status,
		Message:       message,
		Latency:       time.Since(state.StartedAt).Milliseconds(),
		StageLatency:  state.LatencyBreakdown(),
		Flow:          state.Flow(),
	}
}

// errorKind maps an error onto its taxonomy label for metrics.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ports.ErrValidation):
		return "validation"
	case errors.Is(err, ports.ErrUpstreamTimeout):
		return "upstream_timeout"
	case errors.Is(err, ports.ErrUpstreamUnavailable):
		return "upstream_unavailable"
	case errors.Is(err, ports.ErrCompliance):
		return "compliance"
	case errors.Is(err, ports.ErrConsistency):
		return "consistency"
	default:
		return "unexpected"
	}
}
