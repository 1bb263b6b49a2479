package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) (*Repository, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "order-store-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	repo, err := NewRepository(Config{
		DBPath: dbPath,
		Logger: &mockLogger{},
	})
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		os.RemoveAll(tmpDir)
	}

	return repo, cleanup
}

func testOrder(id string) *domain.Order {
	return &domain.Order{
		ID:        id,
		Symbol:    "AAPL",
		Quantity:  100,
		Side:      domain.Buy,
		Workflow:  domain.WorkflowStandard,
		Status:    domain.StatusStarted,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestRepository_SaveAndFindOrder(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, testOrder("o-1")))

	found, err := repo.FindByID(ctx, "o-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "AAPL", found.Symbol)
	assert.Equal(t, 100, found.Quantity)
	assert.Equal(t, domain.Buy, found.Side)
	assert.Equal(t, domain.StatusStarted, found.Status)

	missing, err := repo.FindByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepository_UpdateOrderStatus(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, testOrder("o-2")))
	require.NoError(t, repo.UpdateStatus(ctx, "o-2", domain.StatusExecuted))

	found, err := repo.FindByID(ctx, "o-2")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExecuted, found.Status)

	err = repo.UpdateStatus(ctx, "nope", domain.StatusExecuted)
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_FindAllOrders(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	older := testOrder("o-3")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	newer := testOrder("o-4")

	require.NoError(t, repo.Save(ctx, older))
	require.NoError(t, repo.Save(ctx, newer))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "o-4", all[0].ID)
	assert.Equal(t, "o-3", all[1].ID)
}

func TestRepository_AssessmentRoundTrip(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	a := &domain.RiskAssessment{
		OrderID:  "o-5",
		Score:    42,
		Level:    domain.RiskMedium,
		Approved: true,
		Factors: domain.RiskFactors{
			PositionValue:    17550,
			PositionSizeRisk: 10,
			PnLRisk:          20,
			QuantityRisk:     5,
			BaseScore:        35,
			Rationale:        []string{"quantity 100 within baseline: quantity factor 5"},
		},
		Recommendation: "proceed with monitoring",
		Timestamp:      time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, repo.SaveAssessment(ctx, a))

	found, err := repo.FindAssessmentByOrderID(ctx, "o-5")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, 42.0, found.Score)
	assert.True(t, found.Approved)
	assert.Equal(t, 35.0, found.Factors.BaseScore)
	assert.Len(t, found.Factors.Rationale, 1)

	// Re-saving replaces the stored row.
	a.Score = 55
	require.NoError(t, repo.SaveAssessment(ctx, a))
	found, err = repo.FindAssessmentByOrderID(ctx, "o-5")
	require.NoError(t, err)
	assert.Equal(t, 55.0, found.Score)

	missing, err := repo.FindAssessmentByOrderID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepository_TradesAndAggregation(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	trades := []*domain.ExecutionRecord{
		{OrderID: "t-1", Symbol: "MSFT", Quantity: 100, Price: 378.90, Side: domain.Buy, Status: domain.StatusExecuted},
		{OrderID: "t-2", Symbol: "MSFT", Quantity: 50, Price: 380.00, Side: domain.Buy, Status: domain.StatusExecuted},
		{OrderID: "t-3", Symbol: "AAPL", Quantity: 10, Price: 175.50, Side: domain.Sell, Status: domain.StatusExecuted},
	}
	for _, trade := range trades {
		trade.ExecutionTime = time.Now().UTC().Truncate(time.Second)
		require.NoError(t, repo.SaveTrade(ctx, trade))
	}

	found, err := repo.FindTradeByOrderID(ctx, "t-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "MSFT", found.Symbol)

	all, err := repo.FindAllTrades(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	total, err := repo.AggregateNotionalBySymbol(ctx, "MSFT")
	require.NoError(t, err)
	assert.InDelta(t, 100*378.90+50*380.00, total, 0.001)

	// Cancelled trades drop out of the aggregate.
	require.NoError(t, repo.UpdateTradeStatus(ctx, "t-2", domain.StatusCancelled))
	total, err = repo.AggregateNotionalBySymbol(ctx, "MSFT")
	require.NoError(t, err)
	assert.InDelta(t, 100*378.90, total, 0.001)

	err = repo.UpdateTradeStatus(ctx, "nope", domain.StatusCancelled)
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}
