package scoring

import (
	"fmt"
	"os"
	"strconv"
)

// StrategyStructural selects the default weighted structural-overlap scorer.
// StrategyAI selects the model-assisted scorer, which needs an API key and
// falls back to structural scoring when the API is unavailable.
const (
	StrategyStructural = "structural"
	StrategyAI         = "ai"
)

// Config holds configuration for similarity scoring
type Config struct {
	// Strategy selects the scorer implementation: "structural" or "ai"
	// Default: structural (always available, no external dependency)
	Strategy string

	// FunctionWeight is the weight of shared declared-function names.
	// Shared function names are a stronger duplication signal than shared
	// library usage, so this defaults higher than ImportWeight.
	// Default: 0.6
	FunctionWeight float64

	// ImportWeight is the weight of shared imports/libraries
	// Default: 0.4
	ImportWeight float64

	// Threshold is the minimum score that raises a duplicate alert.
	// Comparison is inclusive: a pair scoring exactly the threshold alerts.
	// Default: 0.70
	Threshold float64
}

// DefaultConfig returns the default scoring configuration
func DefaultConfig() Config {
	return Config{
		Strategy:       StrategyStructural,
		FunctionWeight: 0.6,
		ImportWeight:   0.4,
		Threshold:      0.70,
	}
}

// ConfigFromEnv builds a config from environment variables, starting from
// defaults. Recognized variables:
//
//	SCRIPTSCAN_SCORING_STRATEGY        "structural" or "ai"
//	SCRIPTSCAN_SCORING_FUNCTION_WEIGHT float in [0,1]
//	SCRIPTSCAN_SCORING_IMPORT_WEIGHT   float in [0,1]
//	SCRIPTSCAN_SCORING_THRESHOLD       float in [0,1]
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("SCRIPTSCAN_SCORING_STRATEGY"); v != "" {
		cfg.Strategy = v
	}
	if v := os.Getenv("SCRIPTSCAN_SCORING_FUNCTION_WEIGHT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid SCRIPTSCAN_SCORING_FUNCTION_WEIGHT: %w", err)
		}
		cfg.FunctionWeight = f
	}
	if v := os.Getenv("SCRIPTSCAN_SCORING_IMPORT_WEIGHT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid SCRIPTSCAN_SCORING_IMPORT_WEIGHT: %w", err)
		}
		cfg.ImportWeight = f
	}
	if v := os.Getenv("SCRIPTSCAN_SCORING_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid SCRIPTSCAN_SCORING_THRESHOLD: %w", err)
		}
		cfg.Threshold = f
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks if the configuration has valid values
func (c Config) Validate() error {
	if c.Strategy != StrategyStructural && c.Strategy != StrategyAI {
		return fmt.Errorf("strategy must be %q or %q (got %q)",
			StrategyStructural, StrategyAI, c.Strategy)
	}
	if c.FunctionWeight < 0.0 || c.FunctionWeight > 1.0 {
		return fmt.Errorf("function_weight must be between 0.0 and 1.0 (got %.2f)", c.FunctionWeight)
	}
	if c.ImportWeight < 0.0 || c.ImportWeight > 1.0 {
		return fmt.Errorf("import_weight must be between 0.0 and 1.0 (got %.2f)", c.ImportWeight)
	}
	sum := c.FunctionWeight + c.ImportWeight
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("weights must sum to 1.0 (got %.3f)", sum)
	}
	if c.Threshold < 0.0 || c.Threshold > 1.0 {
		return fmt.Errorf("threshold must be between 0.0 and 1.0 (got %.2f)", c.Threshold)
	}
	return nil
}
