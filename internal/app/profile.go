package app

import (
	"time"

	"tradeOrchestrator/internal/domain"
)

// Profile parameterizes the saga for one workflow. The three workflows
// share a single driver; everything that differs between them lives here.
type Profile struct {
	Workflow domain.Workflow

	ValidationTimeout time.Duration
	PricingTimeout    time.Duration
	RiskTimeout       time.Duration
	ExecutionTimeout  time.Duration

	// Escalation sub-saga (Standard only). Zero threshold disables it.
	EscalationThreshold float64
	AutoApproveLimit    float64

	// TaxAnalysis enables the loss-sale sub-saga for SELL orders with
	// negative estimated PnL.
	TaxAnalysis bool

	// InstitutionalPricing routes through the volume-discount path.
	InstitutionalPricing bool

	// QuickRisk swaps the full engine for the bounded pre-trade check.
	QuickRisk bool
}

// ProfileFor returns the saga parameters for a workflow.
func ProfileFor(w domain.Workflow) Profile {
	switch w {
	case domain.WorkflowInstitutional:
		return Profile{
			Workflow:             domain.WorkflowInstitutional,
			ValidationTimeout:    5 * time.Second,
			PricingTimeout:       5 * time.Second,
			RiskTimeout:          10 * time.Second,
			ExecutionTimeout:     5 * time.Second,
			InstitutionalPricing: true,
		}
	case domain.WorkflowAlgorithmic:
		return Profile{
			Workflow:          domain.WorkflowAlgorithmic,
			ValidationTimeout: 5 * time.Second,
			PricingTimeout:    2 * time.Second,
			RiskTimeout:       50 * time.Millisecond,
			ExecutionTimeout:  5 * time.Second,
			QuickRisk:         true,
		}
	default:
		return Profile{
			Workflow:            domain.WorkflowStandard,
			ValidationTimeout:   5 * time.Second,
			PricingTimeout:      5 * time.Second,
			RiskTimeout:         15 * time.Second,
			ExecutionTimeout:    5 * time.Second,
			EscalationThreshold: 75,
			AutoApproveLimit:    85,
			TaxAnalysis:         true,
		}
	}
}

// Escalates reports whether a score triggers the escalation sub-saga.
func (p Profile) Escalates(score float64) bool {
	return p.EscalationThreshold > 0 && score > p.EscalationThreshold
}
