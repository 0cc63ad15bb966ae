// Package embedding converts text into fixed-dimension float vectors via
// a hosted embedding model, grounded on the openai-go client usage seen
// in beeper/ai-bridge's provider_openai.go.
package embedding

import (
	"context"
	"fmt"
	"math"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/shaonidutta/converge-ai/logger"
	"github.com/shaonidutta/converge-ai/resilience"
)

// ModelInfo reports the embedding model's metadata for diagnostics (§4.2).
type ModelInfo struct {
	Name   string
	Dim    int
	Device string
}

// Client embeds text in single or batch form and computes similarity.
type Client interface {
	EmbedOne(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Similarity(a, b []float32) float64
	BatchSimilarity(query []float32, docs [][]float32) []float64
	ModelInfo() ModelInfo
}

// OpenAIEmbeddingClient implements Client against the hosted OpenAI
// embeddings endpoint.
type OpenAIEmbeddingClient struct {
	sdk         openai.Client
	model       string
	dim         int
	batchSize   int
	retryConfig *resilience.RetryConfig
	logger      logger.Logger
}

// NewOpenAIEmbeddingClient builds a client for model (e.g.
// "text-embedding-3-small") truncated/projected to dim dimensions
// (§4.2's fixed dimension D, default 384).
func NewOpenAIEmbeddingClient(apiKey, model string, dim int, log logger.Logger) *OpenAIEmbeddingClient {
	if model == "" {
		model = "text-embedding-3-small"
	}
	if dim <= 0 {
		dim = 384
	}
	return &OpenAIEmbeddingClient{
		sdk:         openai.NewClient(option.WithAPIKey(apiKey)),
		model:       model,
		dim:         dim,
		batchSize:   96,
		retryConfig: resilience.DefaultRetryConfig(),
		logger:      logger.Component(log, "embedding"),
	}
}

func (c *OpenAIEmbeddingClient) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embedding: empty response for input")
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in chunks of at most c.batchSize, per §4.2's
// "internal batching up to configured size".
func (c *OpenAIEmbeddingClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += c.batchSize {
		end := start + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		var resp *openai.CreateEmbeddingResponse
		err := resilience.Retry(ctx, c.retryConfig, func() error {
			var apiErr error
			resp, apiErr = c.sdk.Embeddings.New(ctx, openai.EmbeddingNewParams{
				Model:          openai.EmbeddingModel(c.model),
				Input:          openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: batch},
				Dimensions:     openai.Int(int64(c.dim)),
				EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
			})
			return apiErr
		})
		if err != nil {
			c.logger.ErrorWithContext(ctx, "embedding batch failed", map[string]interface{}{"error": err.Error(), "batch_size": len(batch)})
			return nil, fmt.Errorf("embedding batch: %w", err)
		}

		for _, item := range resp.Data {
			vec := make([]float32, len(item.Embedding))
			for i, v := range item.Embedding {
				vec[i] = float32(v)
			}
			results = append(results, normalize(vec))
		}
	}

	return results, nil
}

// Similarity reduces to a dot product because EmbedBatch returns
// normalized vectors (§4.2); otherwise it falls back to full cosine.
func (c *OpenAIEmbeddingClient) Similarity(a, b []float32) float64 {
	return cosineOrDot(a, b)
}

func (c *OpenAIEmbeddingClient) BatchSimilarity(query []float32, docs [][]float32) []float64 {
	out := make([]float64, len(docs))
	for i, d := range docs {
		out[i] = cosineOrDot(query, d)
	}
	return out
}

func (c *OpenAIEmbeddingClient) ModelInfo() ModelInfo {
	return ModelInfo{Name: c.model, Dim: c.dim, Device: "api"}
}

func normalize(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	norm := math.Sqrt(sumSq)
	if norm == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func isNormalized(v []float32) bool {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	return math.Abs(sumSq-1.0) < 1e-3
}

func cosineOrDot(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if isNormalized(a) && isNormalized(b) {
		return dot
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

var _ Client = (*OpenAIEmbeddingClient)(nil)
