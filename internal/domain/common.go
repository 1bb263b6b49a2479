package domain

// OrderSide represents the side of an order (BUY or SELL).
type OrderSide string

const (
	Buy  OrderSide = "BUY"
	Sell OrderSide = "SELL"
)

// Workflow identifies which processing profile drives an order.
type Workflow string

const (
	WorkflowStandard      Workflow = "STANDARD"
	WorkflowInstitutional Workflow = "INSTITUTIONAL"
	WorkflowAlgorithmic   Workflow = "ALGORITHMIC"
)

// ParseWorkflow maps a request string onto a known workflow.
// An empty string selects the standard profile.
func ParseWorkflow(s string) (Workflow, bool) {
	switch Workflow(s) {
	case WorkflowStandard, "":
		return WorkflowStandard, true
	case WorkflowInstitutional:
		return WorkflowInstitutional, true
	case WorkflowAlgorithmic:
		return WorkflowAlgorithmic, true
	default:
		return "", false
	}
}

// OrderStatus is the state reported for an order.
type OrderStatus string

const (
	StatusStarted         OrderStatus = "STARTED"
	StatusExecuted        OrderStatus = "EXECUTED"
	StatusRejected        OrderStatus = "REJECTED"
	StatusFailed          OrderStatus = "FAILED"
	StatusPendingApproval OrderStatus = "PENDING_APPROVAL"
	StatusCancelled       OrderStatus = "CANCELLED"
)

// RiskLevel is the categorical risk band derived from the score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Stage names the saga stages. The names are part of the reported surface
// (failure attribution), so they are stable strings rather than iota values.
type Stage string

const (
	StageValidation Stage = "validation"
	StagePricing    Stage = "pricing_calculation"
	StageRisk       Stage = "risk_assessment"
	StageExecution  Stage = "execution"
)

// stageRank orders stages by completion position for failure attribution.
var stageRank = map[Stage]int{
	StageValidation: 0,
	StagePricing:    1,
	StageRisk:       2,
	StageExecution:  3,
}

// Before reports whether s completes before other on the nominal path.
func (s Stage) Before(other Stage) bool {
	return stageRank[s] < stageRank[other]
}
