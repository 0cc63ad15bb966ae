// Package rag implements the Policy RAG Engine (§4.12): retrieval over
// the "policies" namespace followed by grounded generation, with a
// confidence band derived from the retrieval scores.
package rag

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/shaonidutta/converge-ai/domain"
	"github.com/shaonidutta/converge-ai/embedding"
	"github.com/shaonidutta/converge-ai/llm"
	"github.com/shaonidutta/converge-ai/logger"
	"github.com/shaonidutta/converge-ai/vectorstore"
)

const policiesNamespace = "policies"

// Config tunes the engine's thresholds (§4.12).
type Config struct {
	TopK             int
	MinRelevance     float64
	ContextTokenBudget int
	HighThreshold    float64
	MediumThreshold  float64
	Model            string
	TokenizerModel   string
}

func DefaultConfig() Config {
	return Config{
		TopK:               5,
		MinRelevance:       0.35,
		ContextTokenBudget: 2000,
		HighThreshold:      0.75,
		MediumThreshold:    0.5,
		TokenizerModel:     "gpt-4",
	}
}

const lowConfidenceReply = "I couldn't find a relevant policy for that. Could you rephrase, or ask about a specific service or booking policy?"

// Engine answers policy questions grounded in retrieved document chunks.
type Engine struct {
	cfg      Config
	embedder embedding.Client
	store    vectorstore.Client
	llm      llm.Client
	logger   logger.Logger
}

func NewEngine(cfg Config, embedder embedding.Client, store vectorstore.Client, llmClient llm.Client, log logger.Logger) *Engine {
	if cfg.TopK <= 0 {
		cfg = DefaultConfig()
	}
	return &Engine{cfg: cfg, embedder: embedder, store: store, llm: llmClient, logger: logger.Component(log, "policy_rag")}
}

// Answer runs the 8-step procedure of §4.12.
func (e *Engine) Answer(ctx context.Context, query string) (domain.PolicyAnswer, error) {
	vec, err := e.embedder.EmbedOne(ctx, query)
	if err != nil {
		return domain.PolicyAnswer{}, fmt.Errorf("policy rag: embed query: %w", err)
	}

	hits, err := e.store.QueryByVector(ctx, vec, e.cfg.TopK, policiesNamespace, nil)
	if err != nil {
		e.logger.WarnWithContext(ctx, "policy rag: vector store unavailable, degrading to low confidence", map[string]interface{}{"error": err.Error()})
		return domain.PolicyAnswer{Response: lowConfidenceReply, GroundingScore: 0, Confidence: domain.ConfidenceLow}, nil
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	if len(hits) == 0 || hits[0].Score < e.cfg.MinRelevance {
		topScore := 0.0
		if len(hits) > 0 {
			topScore = hits[0].Score
		}
		return domain.PolicyAnswer{Response: lowConfidenceReply, GroundingScore: topScore, Confidence: domain.ConfidenceLow}, nil
	}

	contextBlock := buildContext(hits, e.cfg.ContextTokenBudget, e.cfg.TokenizerModel)

	prompt := buildPrompt(query, contextBlock)
	opts := llm.PresetOptions(llm.TaskGenerate, e.cfg.Model)
	resp, err := e.llm.Generate(ctx, prompt, opts)
	if err != nil {
		return domain.PolicyAnswer{}, fmt.Errorf("policy rag: generate: %w", err)
	}

	grounding := meanTopN(hits, 3)
	confidence := bandFor(grounding, e.cfg.HighThreshold, e.cfg.MediumThreshold)

	sources := make([]map[string]interface{}, 0, len(hits))
	for _, h := range hits {
		meta := map[string]interface{}{"chunk_id": h.ChunkID, "score": h.Score}
		for k, v := range h.Metadata {
			meta[k] = v
		}
		sources = append(sources, meta)
	}

	return domain.PolicyAnswer{
		Response:       strings.TrimSpace(resp.Content),
		GroundingScore: grounding,
		Confidence:     confidence,
		Sources:        sources,
	}, nil
}

func buildPrompt(query, contextBlock string) string {
	return fmt.Sprintf(`Answer the question using only the policy excerpts below. If the excerpts do not cover the question, say it is not covered rather than guessing.

Policy excerpts:
%s

Question: %s

Answer:`, contextBlock, query)
}

// buildContext concatenates retrieved chunks, stopping once the token
// budget is exhausted, highest-scored chunk first.
func buildContext(hits []domain.RetrievalHit, tokenBudget int, tokenizerModel string) string {
	enc, err := tiktoken.EncodingForModel(tokenizerModel)

	var b strings.Builder
	used := 0
	for i, h := range hits {
		text := h.TextPreview
		if text == "" {
			continue
		}
		tokens := len(text) / 4
		if err == nil {
			tokens = len(enc.Encode(text, nil, nil))
		}
		if used+tokens > tokenBudget && b.Len() > 0 {
			break
		}
		fmt.Fprintf(&b, "[%d] %s\n\n", i+1, text)
		used += tokens
	}
	return strings.TrimSpace(b.String())
}

func meanTopN(hits []domain.RetrievalHit, n int) float64 {
	if len(hits) == 0 {
		return 0
	}
	if n > len(hits) {
		n = len(hits)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += hits[i].Score
	}
	return sum / float64(n)
}

func bandFor(score, high, medium float64) domain.ConfidenceBand {
	switch {
	case score >= high:
		return domain.ConfidenceHigh
	case score >= medium:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}
