package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"tradeOrchestrator/internal/adapters/logger" // Import the logger package for LogLevel
)

// Config holds all application configuration.
type Config struct {
	// HTTP server
	ListenAddr string

	// Database
	DBPath string
	// UseMemoryStore keeps everything in memory instead of SQLite.
	UseMemoryStore bool

	// Orchestration
	PortfolioValue      float64 // Assumed total portfolio for escalation impact
	EscalationThreshold float64 // Standard profile only
	AutoApproveLimit    float64

	// Stage timeout overrides (zero keeps the profile defaults)
	RiskTimeoutStandard time.Duration
	RiskTimeoutAlgo     time.Duration

	// Logging
	LogLevel logger.LogLevel // Use the LogLevel type from the logger adapter

	// ProfileOverridesPath optionally points at a YAML file with
	// per-workflow tuning.
	ProfileOverridesPath string
	ProfileOverrides     map[string]ProfileOverride
}

// ProfileOverride is the YAML shape for per-workflow tuning.
type ProfileOverride struct {
	ValidationTimeoutMs int     `yaml:"validation_timeout_ms"`
	PricingTimeoutMs    int     `yaml:"pricing_timeout_ms"`
	RiskTimeoutMs       int     `yaml:"risk_timeout_ms"`
	ExecutionTimeoutMs  int     `yaml:"execution_timeout_ms"`
	EscalationThreshold float64 `yaml:"escalation_threshold"`
	AutoApproveLimit    float64 `yaml:"auto_approve_limit"`
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	cfg.ListenAddr = getEnv("LISTEN_ADDR", ":8080")

	cfg.DBPath = getEnv("DB_PATH", "./data/orders.db")
	cfg.UseMemoryStore = getEnvAsBool("USE_MEMORY_STORE", false)
	if !cfg.UseMemoryStore && cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set when USE_MEMORY_STORE is false")
	}

	cfg.PortfolioValue, err = getEnvAsFloatRequired("PORTFOLIO_VALUE", 2_000_000.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid PORTFOLIO_VALUE: %v", err))
	} else if cfg.PortfolioValue <= 0 {
		errs = append(errs, "PORTFOLIO_VALUE must be positive")
	}

	cfg.EscalationThreshold = getEnvAsFloat("ESCALATION_THRESHOLD", 75.0)
	cfg.AutoApproveLimit = getEnvAsFloat("AUTO_APPROVE_LIMIT", 85.0)
	if cfg.EscalationThreshold >= cfg.AutoApproveLimit {
		errs = append(errs, "ESCALATION_THRESHOLD must be less than AUTO_APPROVE_LIMIT")
	}

	riskTimeoutStandardMs := getEnvAsInt("RISK_TIMEOUT_STANDARD_MS", 0)
	if riskTimeoutStandardMs < 0 {
		errs = append(errs, "RISK_TIMEOUT_STANDARD_MS cannot be negative")
	}
	cfg.RiskTimeoutStandard = time.Duration(riskTimeoutStandardMs) * time.Millisecond

	riskTimeoutAlgoMs := getEnvAsInt("RISK_TIMEOUT_ALGO_MS", 0)
	if riskTimeoutAlgoMs < 0 {
		errs = append(errs, "RISK_TIMEOUT_ALGO_MS cannot be negative")
	}
	cfg.RiskTimeoutAlgo = time.Duration(riskTimeoutAlgoMs) * time.Millisecond

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr) // Use the parser from the logger package

	// Optional YAML profile overrides
	cfg.ProfileOverridesPath = getEnv("PROFILE_OVERRIDES_PATH", "")
	if cfg.ProfileOverridesPath != "" {
		overrides, err := loadProfileOverrides(cfg.ProfileOverridesPath)
		if err != nil {
			errs = append(errs, fmt.Sprintf("invalid profile overrides: %v", err))
		} else {
			cfg.ProfileOverrides = overrides
		}
	}

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

func loadProfileOverrides(path string) (map[string]ProfileOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var overrides map[string]ProfileOverride
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return overrides, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("could not parse %s value '%s' as float: %w", key, valueStr, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
