// Package scoring computes similarity between script fingerprints.
//
// The default strategy is a weighted structural overlap (Jaccard over
// function names and imports). A model-assisted strategy can be selected by
// configuration; both sit behind the same Scorer interface so the scan
// pipeline does not care which is active.
package scoring

import (
	"context"
	"fmt"

	"github.com/sedalabs/scriptscan/internal/types"
)

// Scorer computes a similarity score in [0,1] between two fingerprints of
// the same file kind. Cross-kind comparisons are never performed; the
// orchestrator only compares files within a kind.
type Scorer interface {
	Score(ctx context.Context, a, b types.Fingerprint) (float64, error)
}

// StructuralScorer is the default scorer: Jaccard overlap over function
// names and imports, combined by a fixed weighted sum.
type StructuralScorer struct {
	config Config
}

// Compile-time check that StructuralScorer implements Scorer
var _ Scorer = (*StructuralScorer)(nil)

// NewStructuralScorer creates the default scorer
func NewStructuralScorer(config Config) (*StructuralScorer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &StructuralScorer{config: config}, nil
}

// Score implements Scorer. It is symmetric and never returns an error.
func (s *StructuralScorer) Score(_ context.Context, a, b types.Fingerprint) (float64, error) {
	functionSim := jaccard(a.Functions, b.Functions)
	importSim := jaccard(a.Imports, b.Imports)
	return s.config.FunctionWeight*functionSim + s.config.ImportWeight*importSim, nil
}

// jaccard computes |a ∩ b| / |a ∪ b| over the two slices treated as sets.
// Defined as 0 when the union is empty: an empty/empty pair must not be
// treated as identical.
func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(a))
	for _, v := range a {
		setA[v] = struct{}{}
	}

	setB := make(map[string]struct{}, len(b))
	for _, v := range b {
		setB[v] = struct{}{}
	}

	intersection := 0
	for v := range setA {
		if _, ok := setB[v]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// ForConfig builds the scorer selected by the configuration. The AI
// strategy requires an Anthropic API key in the environment; when the key
// is absent it degrades to the structural scorer rather than failing.
func ForConfig(config Config) (Scorer, error) {
	structural, err := NewStructuralScorer(config)
	if err != nil {
		return nil, err
	}

	if config.Strategy == StrategyAI {
		return NewAIScorer(config, structural)
	}
	return structural, nil
}
