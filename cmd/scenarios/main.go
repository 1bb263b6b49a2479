// Command scenarios runs the order pipeline in-process against a set of
// scripted orders covering each terminal outcome, and prints a summary
// table. Useful for manual verification without the HTTP surface.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"tradeOrchestrator/internal/adapters/logger"
	"tradeOrchestrator/internal/adapters/memstore"
	"tradeOrchestrator/internal/app"
	"tradeOrchestrator/internal/capabilities/execution"
	"tradeOrchestrator/internal/capabilities/pricing"
	"tradeOrchestrator/internal/capabilities/validation"
	"tradeOrchestrator/internal/domain"
	"tradeOrchestrator/internal/risk"
)

type scenario struct {
	name  string
	order domain.Order
	// perturbBasis swaps in a diverging cost basis to trigger the
	// consistency validator.
	perturbBasis bool
}

var scenarios = []scenario{
	{name: "standard buy", order: domain.Order{Symbol: "AAPL", Quantity: 100, Side: domain.Buy}},
	{name: "quantity boundary 101", order: domain.Order{Symbol: "AAPL", Quantity: 101, Side: domain.Buy}},
	{name: "lot normalization", order: domain.Order{Symbol: "AMZN", Quantity: 157, Side: domain.Buy}},
	{name: "unknown symbol", order: domain.Order{Symbol: "ZZZZ", Quantity: 10, Side: domain.Buy}},
	{name: "oversize notional", order: domain.Order{Symbol: "NVDA", Quantity: 1500, Side: domain.Buy}},
	{name: "sell at loss", order: domain.Order{Symbol: "GOOGL", Quantity: 100, Side: domain.Sell}},
	{name: "basis divergence", order: domain.Order{Symbol: "MSFT", Quantity: 50, Side: domain.Buy}, perturbBasis: true},
	{name: "algo order", order: domain.Order{Symbol: "AAPL", Quantity: 50, Side: domain.Buy, Workflow: domain.WorkflowAlgorithmic}},
	{name: "institutional block", order: domain.Order{Symbol: "MSFT", Quantity: 12000, Side: domain.Buy, Workflow: domain.WorkflowInstitutional}},
}

func buildService(perturbBasis bool) (*app.OrderService, error) {
	appLogger, err := logger.NewZapLogger(logger.LevelWarn)
	if err != nil {
		return nil, err
	}

	store := memstore.New()
	validator, err := validation.New(appLogger)
	if err != nil {
		return nil, err
	}

	pricingCfg := pricing.Config{Logger: appLogger}
	if perturbBasis {
		pricingCfg.CostBasisOverride = func(symbol string) (float64, bool) {
			// A stale basis feed: everything looks bought at 100.
			return 100.0, true
		}
	}
	pricer, err := pricing.New(pricingCfg)
	if err != nil {
		return nil, err
	}

	executor, err := execution.New(appLogger, store)
	if err != nil {
		return nil, err
	}
	assessor, err := risk.New(risk.Config{Logger: appLogger, TradeRepo: store})
	if err != nil {
		return nil, err
	}

	return app.NewOrderService(app.Deps{
		Logger:         appLogger,
		Validator:      validator,
		Pricer:         pricer,
		Assessor:       assessor,
		Executor:       executor,
		OrderRepo:      store,
		AssessmentRepo: store,
		TradeRepo:      store,
	})
}

func main() {
	ctx := context.Background()

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("ORDER PIPELINE SCENARIOS")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Scenario", "Workflow", "Status", "Score", "Stage", "Message"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 6, WidthMax: 60, Align: text.AlignLeft},
	})

	for _, sc := range scenarios {
		svc, err := buildService(sc.perturbBasis)
		if err != nil {
			log.Fatalf("building service: %v", err)
		}

		order := sc.order
		report, err := svc.PlaceOrder(ctx, "", &order)
		if err != nil {
			t.AppendRow(table.Row{sc.name, order.Workflow, "ERROR", "", "", err.Error()})
			continue
		}

		score := ""
		if report.Flow.Risk != nil {
			score = fmt.Sprintf("%.1f", report.Flow.Risk.Score)
		}
		t.AppendRow(table.Row{
			sc.name,
			order.Workflow,
			report.Status,
			score,
			report.FailureStage,
			report.Message,
		})
	}

	t.Render()
}
