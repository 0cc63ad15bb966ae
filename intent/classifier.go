package intent

import (
	"context"

	"github.com/shaonidutta/converge-ai/domain"
	"github.com/shaonidutta/converge-ai/logger"
)

// Classifier is the two-tier entry point §4.6 describes.
type Classifier struct {
	patterns  []Pattern
	threshold float64
	llmTier   *LLMTier
	logger    logger.Logger
}

func NewClassifier(llmTier *LLMTier, log logger.Logger) *Classifier {
	return &Classifier{
		patterns:  DefaultPatterns,
		threshold: DefaultPatternThreshold,
		llmTier:   llmTier,
		logger:    logger.Component(log, "intent_classifier"),
	}
}

// WithPatterns overrides the curated pattern set, e.g. for tests.
func (c *Classifier) WithPatterns(patterns []Pattern, threshold float64) *Classifier {
	c.patterns = patterns
	if threshold > 0 {
		c.threshold = threshold
	}
	return c
}

// Classify runs the pattern tier first, falling back to the LLM tier on
// a miss (§4.6).
func (c *Classifier) Classify(ctx context.Context, text string, history []HistoryTurn, dialog *DialogSummary) (domain.ClassifiedIntent, error) {
	if candidates := MatchAllPatterns(text, c.patterns, c.threshold); len(candidates) > 0 {
		primary := PrimaryCandidate(candidates)
		return domain.ClassifiedIntent{
			PrimaryIntent:        primary.Intent,
			Intents:              candidates,
			ClassificationMethod: domain.MethodPattern,
		}, nil
	}

	if c.llmTier == nil {
		c.logger.Warn("no llm tier configured, returning unclear", nil)
		return fallbackUnclear(), nil
	}

	return c.llmTier.Classify(ctx, text, history, dialog)
}
