package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeOrchestrator/internal/adapters/memstore"
	"tradeOrchestrator/internal/domain"
	"tradeOrchestrator/internal/ports"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

type mockValidator struct {
	calls    int
	validate func(ctx context.Context, corr string, order *domain.Order) (*domain.ValidationResult, error)
}

func (m *mockValidator) Validate(ctx context.Context, corr string, order *domain.Order) (*domain.ValidationResult, error) {
	m.calls++
	return m.validate(ctx, corr, order)
}

type mockPricer struct {
	priceCalls         int
	institutionalCalls int
	algoCalls          int
	price              func(ctx context.Context, corr string, order *domain.Order) (*domain.PricingQuote, error)
	taxAnalysis        func(ctx context.Context, corr string, order *domain.Order, quote *domain.PricingQuote) (*domain.TaxAnalysis, error)
	currentPrice       float64
}

func (m *mockPricer) Price(ctx context.Context, corr string, order *domain.Order) (*domain.PricingQuote, error) {
	m.priceCalls++
	return m.price(ctx, corr, order)
}

func (m *mockPricer) PriceInstitutional(ctx context.Context, corr string, order *domain.Order) (*domain.PricingQuote, error) {
	m.institutionalCalls++
	return m.price(ctx, corr, order)
}

func (m *mockPricer) PriceAlgo(ctx context.Context, corr string, order *domain.Order) (*domain.PricingQuote, error) {
	m.algoCalls++
	return m.price(ctx, corr, order)
}

func (m *mockPricer) AnalyzeTaxImpact(ctx context.Context, corr string, order *domain.Order, quote *domain.PricingQuote) (*domain.TaxAnalysis, error) {
	if m.taxAnalysis == nil {
		return nil, errors.New("no tax analysis configured")
	}
	return m.taxAnalysis(ctx, corr, order, quote)
}

func (m *mockPricer) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	if m.currentPrice == 0 {
		return 175.50, nil
	}
	return m.currentPrice, nil
}

type mockAssessor struct {
	assessCalls int
	quickCalls  int
	assess      func(ctx context.Context, corr string, order *domain.Order, quote *domain.PricingQuote) (*domain.RiskAssessment, error)
}

func (m *mockAssessor) Assess(ctx context.Context, corr string, order *domain.Order, quote *domain.PricingQuote) (*domain.RiskAssessment, error) {
	m.assessCalls++
	return m.assess(ctx, corr, order, quote)
}

func (m *mockAssessor) QuickCheck(ctx context.Context, corr string, order *domain.Order, quote *domain.PricingQuote) (*domain.RiskAssessment, error) {
	m.quickCalls++
	return m.assess(ctx, corr, order, quote)
}

type mockExecutor struct {
	executeCalls int
	cancelCalls  int
	execute      func(ctx context.Context, corr string, order *domain.Order, price float64) (*domain.ExecutionRecord, error)
	cancelErr    error
}

func (m *mockExecutor) Execute(ctx context.Context, corr string, order *domain.Order, price float64) (*domain.ExecutionRecord, error) {
	m.executeCalls++
	if m.execute == nil {
		return &domain.ExecutionRecord{
			OrderID:       order.ID,
			Symbol:        order.Symbol,
			Quantity:      order.Quantity,
			Price:         price,
			Side:          order.Side,
			Status:        domain.StatusExecuted,
			ExecutionTime: time.Now().UTC(),
		}, nil
	}
	return m.execute(ctx, corr, order, price)
}

func (m *mockExecutor) Cancel(ctx context.Context, corr string, orderID string) error {
	m.cancelCalls++
	return m.cancelErr
}

func validOK(ctx context.Context, corr string, order *domain.Order) (*domain.ValidationResult, error) {
	return &domain.ValidationResult{Valid: true, NormalizedQuantity: order.Quantity, Timestamp: time.Now().UTC()}, nil
}

func quoteOK(ctx context.Context, corr string, order *domain.Order) (*domain.PricingQuote, error) {
	return &domain.PricingQuote{
		OrderID:      order.ID,
		Symbol:       order.Symbol,
		Price:        175.50,
		BaseAmount:   float64(order.Quantity) * 175.50,
		EstimatedPnL: -1050,
		Timestamp:    time.Now().UTC(),
	}, nil
}

func assessmentWithScore(score float64) func(ctx context.Context, corr string, order *domain.Order, quote *domain.PricingQuote) (*domain.RiskAssessment, error) {
	return func(ctx context.Context, corr string, order *domain.Order, quote *domain.PricingQuote) (*domain.RiskAssessment, error) {
		level := domain.RiskLow
		switch {
		case score >= 70:
			level = domain.RiskHigh
		case score >= 40:
			level = domain.RiskMedium
		}
		return &domain.RiskAssessment{
			OrderID:   order.ID,
			Score:     score,
			Level:     level,
			Approved:  level != domain.RiskHigh,
			Timestamp: time.Now().UTC(),
		}, nil
	}
}

type fixture struct {
	service   *OrderService
	store     *memstore.Store
	validator *mockValidator
	pricer    *mockPricer
	assessor  *mockAssessor
	executor  *mockExecutor
}

func newFixture(t *testing.T, opts ...func(*Deps)) *fixture {
	t.Helper()
	f := &fixture{
		store:     memstore.New(),
		validator: &mockValidator{validate: validOK},
		pricer:    &mockPricer{price: quoteOK},
		assessor:  &mockAssessor{assess: assessmentWithScore(42)},
		executor:  &mockExecutor{},
	}

	deps := Deps{
		Logger:         &mockLogger{},
		Validator:      f.validator,
		Pricer:         f.pricer,
		Assessor:       f.assessor,
		Executor:       f.executor,
		OrderRepo:      f.store,
		AssessmentRepo: f.store,
		TradeRepo:      f.store,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	service, err := NewOrderService(deps)
	require.NoError(t, err)
	f.service = service
	return f
}

func standardOrder() *domain.Order {
	return &domain.Order{Symbol: "AAPL", Quantity: 100, Side: domain.Buy, Workflow: domain.WorkflowStandard}
}

func TestPlaceOrderExecutes(t *testing.T) {
	f := newFixture(t)
	order := standardOrder()

	report, err := f.service.PlaceOrder(context.Background(), "corr-1", order)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusExecuted, report.Status)
	assert.Equal(t, "corr-1", report.CorrelationID)
	assert.Empty(t, report.FailureStage)
	require.NotNil(t, report.Flow.Validation)
	require.NotNil(t, report.Flow.Pricing)
	require.NotNil(t, report.Flow.Risk)
	require.NotNil(t, report.Flow.Execution)
	assert.Nil(t, report.Flow.Escalation)

	stored, err := f.store.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, domain.StatusExecuted, stored.Status)

	saved, err := f.store.FindAssessmentByOrderID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.NotNil(t, saved)

	for _, stage := range []domain.Stage{domain.StageValidation, domain.StagePricing, domain.StageRisk, domain.StageExecution} {
		assert.Contains(t, report.StageLatency, stage)
	}
}

func TestPlaceOrderGeneratesIdentifiers(t *testing.T) {
	f := newFixture(t)
	order := standardOrder()

	report, err := f.service.PlaceOrder(context.Background(), "", order)
	require.NoError(t, err)
	assert.NotEmpty(t, report.OrderID)
	assert.NotEmpty(t, report.CorrelationID)
}

func TestPlaceOrderValidationRejection(t *testing.T) {
	f := newFixture(t)
	f.validator.validate = func(ctx context.Context, corr string, order *domain.Order) (*domain.ValidationResult, error) {
		return &domain.ValidationResult{Valid: false, Reason: "market is closed"}, nil
	}

	report, err := f.service.PlaceOrder(context.Background(), "corr-2", standardOrder())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusRejected, report.Status)
	assert.Contains(t, report.Message, "market is closed")
	assert.Zero(t, f.pricer.priceCalls)
	assert.Zero(t, f.executor.executeCalls)
}

func TestPlaceOrderPricingFailureAttribution(t *testing.T) {
	f := newFixture(t)
	f.pricer.price = func(ctx context.Context, corr string, order *domain.Order) (*domain.PricingQuote, error) {
		return nil, ports.ErrUpstreamUnavailable
	}

	report, err := f.service.PlaceOrder(context.Background(), "corr-3", standardOrder())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusFailed, report.Status)
	assert.Equal(t, domain.StagePricing, report.FailureStage)
	// Validation output stays in the trail; untouched stages are omitted.
	assert.NotNil(t, report.Flow.Validation)
	assert.Nil(t, report.Flow.Pricing)
	assert.Nil(t, report.Flow.Risk)
	assert.Nil(t, report.Flow.Execution)
	assert.Zero(t, f.assessor.assessCalls)

	// Latency is recorded for the stages that ran, including the failed one.
	assert.Contains(t, report.StageLatency, domain.StageValidation)
	assert.Contains(t, report.StageLatency, domain.StagePricing)
	assert.NotContains(t, report.StageLatency, domain.StageRisk)
	assert.NotContains(t, report.StageLatency, domain.StageExecution)
}

func TestPlaceOrderHighRiskRejected(t *testing.T) {
	f := newFixture(t)
	// Score 72 is HIGH but below the escalation threshold.
	f.assessor.assess = assessmentWithScore(72)

	report, err := f.service.PlaceOrder(context.Background(), "corr-4", standardOrder())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusRejected, report.Status)
	assert.Nil(t, report.Flow.Escalation)
	assert.Zero(t, f.executor.executeCalls)
}

func TestPlaceOrderEscalationAutoApproves(t *testing.T) {
	f := newFixture(t)
	f.assessor.assess = assessmentWithScore(78)
	order := standardOrder()

	report, err := f.service.PlaceOrder(context.Background(), "corr-5", order)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusExecuted, report.Status)
	require.NotNil(t, report.Flow.Escalation)
	assert.True(t, report.Flow.Escalation.AutoApproved)
	assert.Greater(t, report.Flow.Escalation.PortfolioImpactPct, 0.0)
	assert.Equal(t, 1, f.executor.executeCalls)

	// The review decision overrides the engine verdict, both on the
	// report trail and on the stored assessment.
	require.NotNil(t, report.Flow.Risk)
	assert.True(t, report.Flow.Risk.Approved)
	saved, err := f.store.FindAssessmentByOrderID(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.True(t, saved.Approved)
}

func TestPlaceOrderEscalationHeldForManualApproval(t *testing.T) {
	f := newFixture(t)
	f.assessor.assess = assessmentWithScore(90)

	report, err := f.service.PlaceOrder(context.Background(), "corr-6", standardOrder())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPendingApproval, report.Status)
	require.NotNil(t, report.Flow.Escalation)
	assert.False(t, report.Flow.Escalation.AutoApproved)
	assert.Nil(t, report.Flow.Execution)
	assert.Zero(t, f.executor.executeCalls)
}

func TestPlaceOrderConsistencyViolationRejects(t *testing.T) {
	f := newFixture(t)
	f.assessor.assess = func(ctx context.Context, corr string, order *domain.Order, quote *domain.PricingQuote) (*domain.RiskAssessment, error) {
		return nil, &ports.ConsistencyViolation{
			Symbol:      order.Symbol,
			SuppliedPnL: -2000,
			ExpectedPnL: -1050,
			Cause:       "supplied pnl disagrees with recomputation from canonical cost basis",
		}
	}

	report, err := f.service.PlaceOrder(context.Background(), "corr-7", standardOrder())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusRejected, report.Status)
	assert.Contains(t, report.Message, "consistency violation")
	assert.Zero(t, f.executor.executeCalls)
}

func TestPlaceOrderComplianceRejects(t *testing.T) {
	f := newFixture(t)
	f.assessor.assess = func(ctx context.Context, corr string, order *domain.Order, quote *domain.PricingQuote) (*domain.RiskAssessment, error) {
		return nil, ports.ErrCompliance
	}

	report, err := f.service.PlaceOrder(context.Background(), "corr-8", standardOrder())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusRejected, report.Status)
	assert.Zero(t, f.executor.executeCalls)
}

func TestPlaceOrderRiskTimeout(t *testing.T) {
	f := newFixture(t, func(d *Deps) {
		d.ProfileFor = func(w domain.Workflow) Profile {
			p := ProfileFor(w)
			p.RiskTimeout = 20 * time.Millisecond
			return p
		}
	})
	f.assessor.assess = func(ctx context.Context, corr string, order *domain.Order, quote *domain.PricingQuote) (*domain.RiskAssessment, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	report, err := f.service.PlaceOrder(context.Background(), "corr-9", standardOrder())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusFailed, report.Status)
	assert.Equal(t, domain.StageRisk, report.FailureStage)
	assert.Contains(t, report.Message, "timed out")
	assert.NotNil(t, report.Flow.Validation)
	assert.NotNil(t, report.Flow.Pricing)
	assert.Nil(t, report.Flow.Risk)
}

func TestPlaceOrderExecutionFailureAttribution(t *testing.T) {
	f := newFixture(t)
	f.executor.execute = func(ctx context.Context, corr string, order *domain.Order, price float64) (*domain.ExecutionRecord, error) {
		return nil, ports.ErrExecutionFailed
	}

	report, err := f.service.PlaceOrder(context.Background(), "corr-10", standardOrder())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusFailed, report.Status)
	assert.Equal(t, domain.StageExecution, report.FailureStage)
	assert.NotNil(t, report.Flow.Risk)
	assert.Nil(t, report.Flow.Execution)
}

func TestPlaceOrderTaxAnalysisAttached(t *testing.T) {
	f := newFixture(t)
	f.pricer.taxAnalysis = func(ctx context.Context, corr string, order *domain.Order, quote *domain.PricingQuote) (*domain.TaxAnalysis, error) {
		return &domain.TaxAnalysis{CapitalLoss: 1050, TaxBracket: 0.24, EstimatedTaxBenefit: 252}, nil
	}

	order := standardOrder()
	order.Side = domain.Sell

	report, err := f.service.PlaceOrder(context.Background(), "corr-11", order)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusExecuted, report.Status)
	require.NotNil(t, report.Flow.TaxAnalysis)
	assert.InDelta(t, 1050, report.Flow.TaxAnalysis.CapitalLoss, 0.001)
}

func TestPlaceOrderTaxAnalysisFailureDoesNotBlock(t *testing.T) {
	f := newFixture(t)
	f.pricer.taxAnalysis = func(ctx context.Context, corr string, order *domain.Order, quote *domain.PricingQuote) (*domain.TaxAnalysis, error) {
		return nil, errors.New("tax service unavailable")
	}

	order := standardOrder()
	order.Side = domain.Sell

	report, err := f.service.PlaceOrder(context.Background(), "corr-12", order)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusExecuted, report.Status)
	assert.Nil(t, report.Flow.TaxAnalysis)
}

func TestPlaceOrderInstitutionalUsesDiscountPricing(t *testing.T) {
	f := newFixture(t)
	order := standardOrder()
	order.Workflow = domain.WorkflowInstitutional

	_, err := f.service.PlaceOrder(context.Background(), "corr-13", order)
	require.NoError(t, err)

	assert.Equal(t, 1, f.pricer.institutionalCalls)
	assert.Zero(t, f.pricer.priceCalls)
	assert.Equal(t, 1, f.assessor.assessCalls)
}

func TestPlaceOrderAlgorithmicUsesQuickPath(t *testing.T) {
	f := newFixture(t)
	order := standardOrder()
	order.Workflow = domain.WorkflowAlgorithmic

	report, err := f.service.PlaceOrder(context.Background(), "corr-14", order)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusExecuted, report.Status)
	assert.Equal(t, 1, f.pricer.algoCalls)
	assert.Equal(t, 1, f.assessor.quickCalls)
	assert.Zero(t, f.assessor.assessCalls)
	// No tax sub-saga outside the standard profile.
	assert.Nil(t, report.Flow.TaxAnalysis)
}

func TestCancelOrderExecutedTrade(t *testing.T) {
	f := newFixture(t)
	f.pricer.currentPrice = 180.0

	order := standardOrder()
	report, err := f.service.PlaceOrder(context.Background(), "corr-15", order)
	require.NoError(t, err)
	require.Equal(t, domain.StatusExecuted, report.Status)

	// The mock executor does not persist, so record the trade directly.
	require.NoError(t, f.store.SaveTrade(context.Background(), &domain.ExecutionRecord{
		OrderID:       order.ID,
		Symbol:        order.Symbol,
		Quantity:      100,
		Price:         175.50,
		Side:          order.Side,
		Status:        domain.StatusExecuted,
		ExecutionTime: time.Now().UTC(),
	}))

	cancelReport, err := f.service.CancelOrder(context.Background(), "corr-15c", order.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCancelled, cancelReport.Status)
	require.NotNil(t, cancelReport.Impact)
	assert.InDelta(t, 175.50, cancelReport.Impact.OriginalPrice, 0.001)
	assert.InDelta(t, 180.0, cancelReport.Impact.CurrentPrice, 0.001)
	assert.InDelta(t, 450.0, cancelReport.Impact.NotionalChange, 0.001)
	require.NotNil(t, cancelReport.Reassessment)
	assert.Equal(t, 1, f.executor.cancelCalls)

	stored, err := f.store.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
}

func TestCancelOrderNotExecuted(t *testing.T) {
	f := newFixture(t)
	f.assessor.assess = assessmentWithScore(72) // rejected, never executed

	order := standardOrder()
	report, err := f.service.PlaceOrder(context.Background(), "corr-16", order)
	require.NoError(t, err)
	require.Equal(t, domain.StatusRejected, report.Status)

	cancelReport, err := f.service.CancelOrder(context.Background(), "corr-16c", order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, cancelReport.Status)
	assert.Contains(t, cancelReport.Message, "cannot be cancelled")
	assert.Zero(t, f.executor.cancelCalls)
}

func TestCancelOrderUnknownID(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.CancelOrder(context.Background(), "corr-17", "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ports.ErrNotFound))
}
