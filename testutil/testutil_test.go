package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaonidutta/converge-ai/domain"
	"github.com/shaonidutta/converge-ai/llm"
	"github.com/shaonidutta/converge-ai/vectorstore"
)

func TestFakeLLMClient_ReturnsScriptedResponsesInOrder(t *testing.T) {
	fake := NewFakeLLMClient(llm.Response{Content: "first"}, llm.Response{Content: "second"})

	r1, err := fake.Generate(context.Background(), "p1", nil)
	require.NoError(t, err)
	r2, err := fake.Generate(context.Background(), "p2", nil)
	require.NoError(t, err)

	assert.Equal(t, "first", r1.Content)
	assert.Equal(t, "second", r2.Content)
	assert.Equal(t, []string{"p1", "p2"}, fake.Prompts)
}

func TestFakeEmbeddingClient_SameTextProducesSameVector(t *testing.T) {
	fake := NewFakeEmbeddingClient(16)
	v1, _ := fake.EmbedOne(context.Background(), "hello")
	v2, _ := fake.EmbedOne(context.Background(), "hello")
	assert.Equal(t, v1, v2)
	assert.InDelta(t, 1.0, fake.Similarity(v1, v2), 0.0001)
}

func TestFakeVectorStore_QueryReturnsConfiguredHitsForNamespace(t *testing.T) {
	fake := NewFakeVectorStore()
	fake.Hits["policies"] = []domain.RetrievalHit{{ChunkID: "c1", Score: 0.9}}

	hits, err := fake.QueryByVector(context.Background(), nil, 5, "policies", nil)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "c1", hits[0].ChunkID)

	n, err := fake.UpsertDocuments(context.Background(), []vectorstore.Document{{ID: "d1"}}, "policies")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestClock_AdvanceMovesNowForward(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewClock(start)
	clock.Advance(time.Hour)
	assert.Equal(t, start.Add(time.Hour), clock.Now())
}
