package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tradeOrchestrator/internal/domain"
	"tradeOrchestrator/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements the ports.OrderRepository, ports.AssessmentRepository
// and ports.TradeRepository interfaces using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/orders.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// SQLite handles concurrency internally; the Go driver benefits from
	// limiting connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{db: db, logger: cfg.Logger}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "SQLite database ready", map[string]interface{}{"path": dbPath})

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
// NOTE: This is a basic approach. A proper migration tool is recommended for production.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		side TEXT NOT NULL,
		workflow TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS assessments (
		order_id TEXT PRIMARY KEY,
		score REAL NOT NULL,
		level TEXT NOT NULL,
		approved INTEGER NOT NULL,
		factors TEXT NOT NULL, -- JSON breakdown
		recommendation TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS trades (
		order_id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		price REAL NOT NULL,
		side TEXT NOT NULL,
		status TEXT NOT NULL,
		execution_time TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_orders_status ON orders (status);
	CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades (symbol);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- OrderRepository Implementation ---

// Save persists a new order.
func (r *Repository) Save(ctx context.Context, order *domain.Order) error {
	const query = `
	INSERT INTO orders (id, symbol, quantity, side, workflow, status, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		order.ID, order.Symbol, order.Quantity, order.Side, order.Workflow, order.Status, order.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order %s: %w", order.ID, err)
	}
	r.logger.Debug(ctx, "Order saved", map[string]interface{}{"orderID": order.ID, "symbol": order.Symbol})
	return nil
}

// UpdateStatus moves an order to a new status.
func (r *Repository) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	const query = `UPDATE orders SET status = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, status, orderID)
	if err != nil {
		return fmt.Errorf("failed to update order %s: %w", orderID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for order %s: %w", orderID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("order %s not found for update: %w", orderID, ports.ErrNotFound)
	}
	return nil
}

// FindByID retrieves an order by its ID. Returns nil, nil if not found.
func (r *Repository) FindByID(ctx context.Context, orderID string) (*domain.Order, error) {
	const query = `
	SELECT id, symbol, quantity, side, workflow, status, created_at
	FROM orders WHERE id = ?`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query order %s: %w", orderID, err)
	}
	return order, nil
}

// FindAll retrieves all orders, newest first.
func (r *Repository) FindAll(ctx context.Context) ([]*domain.Order, error) {
	const query = `
	SELECT id, symbol, quantity, side, workflow, status, created_at
	FROM orders ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order rows: %w", err)
	}
	return orders, nil
}

// --- AssessmentRepository Implementation ---

// SaveAssessment upserts the assessment for an order.
func (r *Repository) SaveAssessment(ctx context.Context, a *domain.RiskAssessment) error {
	factors, err := json.Marshal(a.Factors)
	if err != nil {
		return fmt.Errorf("failed to encode factors for order %s: %w", a.OrderID, err)
	}

	const query = `
	INSERT INTO assessments (order_id, score, level, approved, factors, recommendation, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(order_id) DO UPDATE SET
		score = excluded.score, level = excluded.level, approved = excluded.approved,
		factors = excluded.factors, recommendation = excluded.recommendation,
		created_at = excluded.created_at`

	_, err = r.db.ExecContext(ctx, query,
		a.OrderID, a.Score, a.Level, a.Approved, string(factors), a.Recommendation, a.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert assessment for order %s: %w", a.OrderID, err)
	}
	return nil
}

// FindAssessmentByOrderID retrieves the assessment for an order.
func (r *Repository) FindAssessmentByOrderID(ctx context.Context, orderID string) (*domain.RiskAssessment, error) {
	const query = `
	SELECT order_id, score, level, approved, factors, recommendation, created_at
	FROM assessments WHERE order_id = ?`

	var (
		a        domain.RiskAssessment
		approved int
		factors  string
	)
	err := r.db.QueryRowContext(ctx, query, orderID).Scan(
		&a.OrderID, &a.Score, &a.Level, &approved, &factors, &a.Recommendation, &a.Timestamp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query assessment for order %s: %w", orderID, err)
	}
	a.Approved = approved != 0
	if err := json.Unmarshal([]byte(factors), &a.Factors); err != nil {
		return nil, fmt.Errorf("failed to decode factors for order %s: %w", orderID, err)
	}
	return &a, nil
}

// --- TradeRepository Implementation ---

// SaveTrade persists an execution record.
func (r *Repository) SaveTrade(ctx context.Context, rec *domain.ExecutionRecord) error {
	const query = `
	INSERT INTO trades (order_id, symbol, quantity, price, side, status, execution_time)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		rec.OrderID, rec.Symbol, rec.Quantity, rec.Price, rec.Side, rec.Status, rec.ExecutionTime)
	if err != nil {
		return fmt.Errorf("failed to insert trade for order %s: %w", rec.OrderID, err)
	}
	return nil
}

// FindTradeByOrderID retrieves the execution record for an order.
func (r *Repository) FindTradeByOrderID(ctx context.Context, orderID string) (*domain.ExecutionRecord, error) {
	const query = `
	SELECT order_id, symbol, quantity, price, side, status, execution_time
	FROM trades WHERE order_id = ?`

	rec, err := scanTrade(r.db.QueryRowContext(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query trade for order %s: %w", orderID, err)
	}
	return rec, nil
}

// FindAllTrades retrieves all execution records, most recent first.
func (r *Repository) FindAllTrades(ctx context.Context) ([]*domain.ExecutionRecord, error) {
	const query = `
	SELECT order_id, symbol, quantity, price, side, status, execution_time
	FROM trades ORDER BY execution_time DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []*domain.ExecutionRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade row: %w", err)
		}
		trades = append(trades, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows: %w", err)
	}
	return trades, nil
}

// AggregateNotionalBySymbol sums price*quantity across executed trades.
func (r *Repository) AggregateNotionalBySymbol(ctx context.Context, symbol string) (float64, error) {
	const query = `
	SELECT COALESCE(SUM(price * quantity), 0)
	FROM trades WHERE symbol = ? AND status = ?`

	var total float64
	if err := r.db.QueryRowContext(ctx, query, symbol, domain.StatusExecuted).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to aggregate notional for symbol %s: %w", symbol, err)
	}
	return total, nil
}

// UpdateTradeStatus changes the status on a stored execution record.
func (r *Repository) UpdateTradeStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	const query = `UPDATE trades SET status = ? WHERE order_id = ?`

	result, err := r.db.ExecContext(ctx, query, status, orderID)
	if err != nil {
		return fmt.Errorf("failed to update trade for order %s: %w", orderID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for trade %s: %w", orderID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("trade for order %s not found: %w", orderID, ports.ErrNotFound)
	}
	return nil
}

// --- scan helpers ---

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	if err := row.Scan(&o.ID, &o.Symbol, &o.Quantity, &o.Side, &o.Workflow, &o.Status, &o.CreatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func scanTrade(row rowScanner) (*domain.ExecutionRecord, error) {
	var t domain.ExecutionRecord
	if err := row.Scan(&t.OrderID, &t.Symbol, &t.Quantity, &t.Price, &t.Side, &t.Status, &t.ExecutionTime); err != nil {
		return nil, err
	}
	return &t, nil
}
