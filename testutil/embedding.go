package testutil

import (
	"context"
	"math"

	"github.com/shaonidutta/converge-ai/embedding"
)

// FakeEmbeddingClient returns a fixed vector for every text, or a
// deterministic hash-derived one when Vector is nil, so distinct texts
// still produce distinct (if meaningless) embeddings.
type FakeEmbeddingClient struct {
	Vector []float32
	Dim    int
}

func NewFakeEmbeddingClient(dim int) *FakeEmbeddingClient {
	return &FakeEmbeddingClient{Dim: dim}
}

func (f *FakeEmbeddingClient) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	if f.Vector != nil {
		return f.Vector, nil
	}
	return hashVector(text, f.dim()), nil
}

func (f *FakeEmbeddingClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := f.EmbedOne(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *FakeEmbeddingClient) Similarity(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func (f *FakeEmbeddingClient) BatchSimilarity(query []float32, docs [][]float32) []float64 {
	out := make([]float64, len(docs))
	for i, d := range docs {
		out[i] = f.Similarity(query, d)
	}
	return out
}

func (f *FakeEmbeddingClient) ModelInfo() embedding.ModelInfo {
	return embedding.ModelInfo{Name: "fake", Dim: f.dim(), Device: "cpu"}
}

func (f *FakeEmbeddingClient) dim() int {
	if f.Dim <= 0 {
		return 8
	}
	return f.Dim
}

func hashVector(text string, dim int) []float32 {
	v := make([]float32, dim)
	h := uint32(2166136261)
	for _, c := range []byte(text) {
		h ^= uint32(c)
		h *= 16777619
		v[int(h)%dim] += 1
	}
	return v
}

var _ embedding.Client = (*FakeEmbeddingClient)(nil)
