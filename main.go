package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"os"
	"os/signal"
	"syscall"
	"time"

	"tradeOrchestrator/config"
	"tradeOrchestrator/internal/adapters/logger"
	"tradeOrchestrator/internal/adapters/memstore"
	"tradeOrchestrator/internal/adapters/sqlite"
	"tradeOrchestrator/internal/api"
	"tradeOrchestrator/internal/app"
	"tradeOrchestrator/internal/capabilities/execution"
	"tradeOrchestrator/internal/capabilities/pricing"
	"tradeOrchestrator/internal/capabilities/validation"
	"tradeOrchestrator/internal/domain"
	"tradeOrchestrator/internal/ports"
	"tradeOrchestrator/internal/risk"
	"tradeOrchestrator/internal/trace"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger, err := logger.NewZapLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Tracing
	if err := trace.Init(); err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize tracing")
		log.Fatalf("FATAL: Failed to initialize tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := trace.Shutdown(shutdownCtx); err != nil {
			appLogger.Error(context.Background(), err, "Error shutting down tracer")
		}
	}()

	// 4. Initialize Repositories
	var (
		orderRepo      ports.OrderRepository
		assessmentRepo ports.AssessmentRepository
		tradeRepo      ports.TradeRepository
	)
	if cfg.UseMemoryStore {
		store := memstore.New()
		orderRepo, assessmentRepo, tradeRepo = store, store, store
		appLogger.Info(context.Background(), "In-memory store initialized")
	} else {
		repo, err := sqlite.NewRepository(sqlite.Config{
			DBPath: cfg.DBPath,
			Logger: appLogger,
		})
		if err != nil {
			appLogger.Error(context.Background(), err, "FATAL: Failed to initialize database repository")
			log.Fatalf("FATAL: Failed to initialize database repository: %v", err)
		}
		defer func() {
			if err := repo.Close(); err != nil {
				appLogger.Error(context.Background(), err, "Error closing database repository")
			}
		}()
		orderRepo, assessmentRepo, tradeRepo = repo, repo, repo
	}

	// 5. Initialize Capability Services
	validator, err := validation.New(appLogger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize validation service: %v", err)
	}
	pricer, err := pricing.New(pricing.Config{Logger: appLogger})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize pricing service: %v", err)
	}
	executor, err := execution.New(appLogger, tradeRepo)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize execution service: %v", err)
	}
	assessor, err := risk.New(risk.Config{Logger: appLogger, TradeRepo: tradeRepo})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize risk service: %v", err)
	}

	// 6. Initialize Orchestration Service
	service, err := app.NewOrderService(app.Deps{
		Logger:         appLogger,
		Validator:      validator,
		Pricer:         pricer,
		Assessor:       assessor,
		Executor:       executor,
		OrderRepo:      orderRepo,
		AssessmentRepo: assessmentRepo,
		TradeRepo:      tradeRepo,
		PortfolioValue: cfg.PortfolioValue,
		ProfileFor:     profileOverrides(cfg),
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize order service")
		log.Fatalf("FATAL: Failed to initialize order service: %v", err)
	}

	// 7. Serve HTTP until interrupted
	server := api.NewServer(cfg.ListenAddr, service, appLogger)
	errCh := make(chan error, 1)
	go func() { errCh <- server.Run() }()
	appLogger.Info(context.Background(), "HTTP server listening", map[string]interface{}{"addr": cfg.ListenAddr})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		appLogger.Info(context.Background(), "Shutdown signal received", map[string]interface{}{"signal": sig.String()})
	case err := <-errCh:
		if err != nil {
			appLogger.Error(context.Background(), err, "HTTP server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(context.Background(), err, "Error shutting down HTTP server")
	}
	appLogger.Info(context.Background(), "Shutdown complete")
}

// profileOverrides layers any configured tuning onto the workflow
// profile defaults.
func profileOverrides(cfg *config.Config) func(domain.Workflow) app.Profile {
	return func(w domain.Workflow) app.Profile {
		p := app.ProfileFor(w)
		if w == domain.WorkflowStandard {
			if cfg.EscalationThreshold > 0 {
				p.EscalationThreshold = cfg.EscalationThreshold
			}
			if cfg.AutoApproveLimit > 0 {
				p.AutoApproveLimit = cfg.AutoApproveLimit
			}
			if cfg.RiskTimeoutStandard > 0 {
				p.RiskTimeout = cfg.RiskTimeoutStandard
			}
		}
		if w == domain.WorkflowAlgorithmic && cfg.RiskTimeoutAlgo > 0 {
			p.RiskTimeout = cfg.RiskTimeoutAlgo
		}
		if o, ok := cfg.ProfileOverrides[string(w)]; ok {
			if o.ValidationTimeoutMs > 0 {
				p.ValidationTimeout = time.Duration(o.ValidationTimeoutMs) * time.Millisecond
			}
			if o.PricingTimeoutMs > 0 {
				p.PricingTimeout = time.Duration(o.PricingTimeoutMs) * time.Millisecond
			}
			if o.RiskTimeoutMs > 0 {
				p.RiskTimeout = time.Duration(o.RiskTimeoutMs) * time.Millisecond
			}
			if o.ExecutionTimeoutMs > 0 {
				p.ExecutionTimeout = time.Duration(o.ExecutionTimeoutMs) * time.Millisecond
			}
			if o.EscalationThreshold > 0 {
				p.EscalationThreshold = o.EscalationThreshold
			}
			if o.AutoApproveLimit > 0 {
				p.AutoApproveLimit = o.AutoApproveLimit
			}
		}
		return p
	}
}
