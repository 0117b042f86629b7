package scoring

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	if cfg.FunctionWeight != 0.6 {
		t.Errorf("FunctionWeight = %v, want 0.6", cfg.FunctionWeight)
	}
	if cfg.ImportWeight != 0.4 {
		t.Errorf("ImportWeight = %v, want 0.4", cfg.ImportWeight)
	}
	if cfg.Threshold != 0.70 {
		t.Errorf("Threshold = %v, want 0.70", cfg.Threshold)
	}
}

func TestConfigFromEnv(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
		check   func(t *testing.T, cfg Config)
	}{
		{
			name:    "no environment variables uses defaults",
			envVars: map[string]string{},
			check: func(t *testing.T, cfg Config) {
				if cfg.Strategy != StrategyStructural {
					t.Errorf("Strategy = %v, want structural", cfg.Strategy)
				}
				if cfg.Threshold != 0.70 {
					t.Errorf("Threshold = %v, want 0.70", cfg.Threshold)
				}
			},
		},
		{
			name: "valid custom configuration",
			envVars: map[string]string{
				"SCRIPTSCAN_SCORING_STRATEGY":        "ai",
				"SCRIPTSCAN_SCORING_FUNCTION_WEIGHT": "0.7",
				"SCRIPTSCAN_SCORING_IMPORT_WEIGHT":   "0.3",
				"SCRIPTSCAN_SCORING_THRESHOLD":       "0.85",
			},
			check: func(t *testing.T, cfg Config) {
				if cfg.Strategy != StrategyAI {
					t.Errorf("Strategy = %v, want ai", cfg.Strategy)
				}
				if cfg.FunctionWeight != 0.7 {
					t.Errorf("FunctionWeight = %v, want 0.7", cfg.FunctionWeight)
				}
				if cfg.Threshold != 0.85 {
					t.Errorf("Threshold = %v, want 0.85", cfg.Threshold)
				}
			},
		},
		{
			name: "unparseable weight",
			envVars: map[string]string{
				"SCRIPTSCAN_SCORING_FUNCTION_WEIGHT": "lots",
			},
			wantErr: true,
		},
		{
			name: "weights must sum to one",
			envVars: map[string]string{
				"SCRIPTSCAN_SCORING_FUNCTION_WEIGHT": "0.9",
				"SCRIPTSCAN_SCORING_IMPORT_WEIGHT":   "0.9",
			},
			wantErr: true,
		},
		{
			name: "threshold out of range",
			envVars: map[string]string{
				"SCRIPTSCAN_SCORING_THRESHOLD": "1.5",
			},
			wantErr: true,
		},
		{
			name: "unknown strategy",
			envVars: map[string]string{
				"SCRIPTSCAN_SCORING_STRATEGY": "embeddings",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := ConfigFromEnv()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestConfigValidateBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FunctionWeight = -0.1
	if err := cfg.Validate(); err == nil {
		t.Error("negative function weight must fail validation")
	}

	cfg = DefaultConfig()
	cfg.Threshold = -0.01
	if err := cfg.Validate(); err == nil {
		t.Error("negative threshold must fail validation")
	}
}
