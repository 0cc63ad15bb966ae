package rag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaonidutta/converge-ai/domain"
	"github.com/shaonidutta/converge-ai/embedding"
	"github.com/shaonidutta/converge-ai/llm"
	"github.com/shaonidutta/converge-ai/logger"
	"github.com/shaonidutta/converge-ai/vectorstore"
)

type fakeEmbedder struct{}

func (fakeEmbedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}
func (fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}
func (fakeEmbedder) Similarity(a, b []float32) float64            { return 1 }
func (fakeEmbedder) BatchSimilarity(q []float32, d [][]float32) []float64 {
	return make([]float64, len(d))
}
func (fakeEmbedder) ModelInfo() embedding.ModelInfo { return embedding.ModelInfo{Name: "fake", Dim: 3} }

type fakeStore struct {
	hits []domain.RetrievalHit
	err  error
}

func (f fakeStore) UpsertDocuments(ctx context.Context, docs []vectorstore.Document, namespace string) (int, error) {
	return len(docs), nil
}
func (f fakeStore) QueryByVector(ctx context.Context, vec []float32, topK int, namespace string, filter vectorstore.Filter) ([]domain.RetrievalHit, error) {
	return f.hits, f.err
}
func (f fakeStore) QueryByText(ctx context.Context, text string, topK int, namespace string, filter vectorstore.Filter) ([]domain.RetrievalHit, error) {
	return f.hits, f.err
}
func (f fakeStore) Delete(ctx context.Context, ids []string, namespace string) error { return nil }
func (f fakeStore) DeleteByFilter(ctx context.Context, filter vectorstore.Filter, namespace string) error {
	return nil
}
func (f fakeStore) HealthCheck(ctx context.Context) (vectorstore.HealthReport, error) {
	return vectorstore.HealthReport{}, nil
}

type fakeLLM struct {
	content string
}

func (f fakeLLM) Generate(ctx context.Context, prompt string, opts *llm.GenerationOptions) (*llm.Response, error) {
	return &llm.Response{Content: f.content}, nil
}
func (f fakeLLM) ProviderInfo() llm.ProviderInfo { return llm.ProviderInfo{Name: "fake"} }

func TestAnswer_BelowMinRelevanceReturnsLowConfidenceCannedReply(t *testing.T) {
	store := fakeStore{hits: []domain.RetrievalHit{{ChunkID: "c1", Score: 0.1, TextPreview: "irrelevant"}}}
	e := NewEngine(DefaultConfig(), fakeEmbedder{}, store, fakeLLM{}, logger.NoOpLogger{})

	answer, err := e.Answer(context.Background(), "what is your cancellation policy?")
	require.NoError(t, err)
	assert.Equal(t, domain.ConfidenceLow, answer.Confidence)
	assert.Contains(t, answer.Response, "couldn't find")
}

func TestAnswer_HighScoringHitsProduceHighConfidence(t *testing.T) {
	store := fakeStore{hits: []domain.RetrievalHit{
		{ChunkID: "c1", Score: 0.9, TextPreview: "Cancellations made 24h in advance are free."},
		{ChunkID: "c2", Score: 0.85, TextPreview: "Late cancellations incur a 10% fee."},
		{ChunkID: "c3", Score: 0.8, TextPreview: "Refunds are processed within 5 business days."},
	}}
	e := NewEngine(DefaultConfig(), fakeEmbedder{}, store, fakeLLM{content: "You can cancel for free up to 24 hours in advance."}, logger.NoOpLogger{})

	answer, err := e.Answer(context.Background(), "can I cancel for free?")
	require.NoError(t, err)
	assert.Equal(t, domain.ConfidenceHigh, answer.Confidence)
	assert.Equal(t, "You can cancel for free up to 24 hours in advance.", answer.Response)
	assert.Len(t, answer.Sources, 3)
}

func TestAnswer_MediumScoreBandsToMediumConfidence(t *testing.T) {
	store := fakeStore{hits: []domain.RetrievalHit{
		{ChunkID: "c1", Score: 0.6, TextPreview: "Some policy text."},
	}}
	e := NewEngine(DefaultConfig(), fakeEmbedder{}, store, fakeLLM{content: "answer"}, logger.NoOpLogger{})

	answer, err := e.Answer(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, domain.ConfidenceMedium, answer.Confidence)
}

func TestAnswer_VectorStoreErrorDegradesToLowConfidence(t *testing.T) {
	store := fakeStore{err: domain.ErrVectorStoreUnavailable}
	e := NewEngine(DefaultConfig(), fakeEmbedder{}, store, fakeLLM{}, logger.NoOpLogger{})

	answer, err := e.Answer(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, domain.ConfidenceLow, answer.Confidence)
}
