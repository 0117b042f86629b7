package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/sedalabs/scriptscan/internal/types"
)

// aiScorerModel is deliberately the cheap tier: fingerprint comparison is a
// simple judgment and runs once per candidate pair.
const aiScorerModel = "claude-3-5-haiku-20241022"

// aiScorerModelEnv overrides the model used for similarity judgments
const aiScorerModelEnv = "SCRIPTSCAN_AI_MODEL"

// AIScorer asks a model to judge how much analytical work two fingerprints
// share. Any API failure falls back to the structural scorer so a scan never
// depends on API availability.
type AIScorer struct {
	client   *anthropic.Client
	model    string
	fallback Scorer
}

// Compile-time check that AIScorer implements Scorer
var _ Scorer = (*AIScorer)(nil)

// NewAIScorer creates the model-assisted scorer. Requires ANTHROPIC_API_KEY;
// without it the fallback scorer is returned instead.
func NewAIScorer(config Config, fallback Scorer) (Scorer, error) {
	if fallback == nil {
		return nil, fmt.Errorf("fallback scorer is required")
	}

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		log.Printf("[SCORE] ANTHROPIC_API_KEY not set, using structural scorer")
		return fallback, nil
	}

	model := os.Getenv(aiScorerModelEnv)
	if model == "" {
		model = aiScorerModel
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AIScorer{
		client:   &client,
		model:    model,
		fallback: fallback,
	}, nil
}

// Score implements Scorer
func (s *AIScorer) Score(ctx context.Context, a, b types.Fingerprint) (float64, error) {
	prompt, err := s.buildPrompt(a, b)
	if err != nil {
		return s.fallback.Score(ctx, a, b)
	}

	resp, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: 256,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		log.Printf("[SCORE] AI scoring failed, falling back to structural: %v", err)
		return s.fallback.Score(ctx, a, b)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	score, err := parseScoreResponse(text)
	if err != nil {
		log.Printf("[SCORE] unparseable AI response, falling back to structural: %v", err)
		return s.fallback.Score(ctx, a, b)
	}
	return score, nil
}

func (s *AIScorer) buildPrompt(a, b types.Fingerprint) (string, error) {
	fpA, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	fpB, err := json.Marshal(b)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`You compare structural fingerprints of two research scripts and judge how likely they implement the same analytical work (same functions, models, or plots re-implemented).

Fingerprint A: %s
Fingerprint B: %s

Respond with JSON only: {"score": <float 0.0-1.0>}
0.0 means unrelated, 1.0 means the same work. Two empty fingerprints score 0.0.`, fpA, fpB), nil
}

// parseScoreResponse extracts the score from the model's JSON reply,
// tolerating surrounding prose or markdown fences.
func parseScoreResponse(text string) (float64, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return 0, fmt.Errorf("no JSON object in response")
	}

	var parsed struct {
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &parsed); err != nil {
		return 0, fmt.Errorf("failed to parse score JSON: %w", err)
	}
	if parsed.Score < 0.0 || parsed.Score > 1.0 {
		return 0, fmt.Errorf("score out of range: %.4f", parsed.Score)
	}
	return parsed.Score, nil
}
