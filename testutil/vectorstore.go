package testutil

import (
	"context"
	"sync"

	"github.com/shaonidutta/converge-ai/domain"
	"github.com/shaonidutta/converge-ai/vectorstore"
)

// FakeVectorStore serves QueryByVector/QueryByText from a fixed set of
// hits regardless of the query, and records every upsert so tests can
// assert on what was written.
type FakeVectorStore struct {
	mu       sync.Mutex
	Hits     map[string][]domain.RetrievalHit // namespace -> hits
	Upserted []vectorstore.Document
	Err      error
}

func NewFakeVectorStore() *FakeVectorStore {
	return &FakeVectorStore{Hits: map[string][]domain.RetrievalHit{}}
}

func (f *FakeVectorStore) UpsertDocuments(ctx context.Context, docs []vectorstore.Document, namespace string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return 0, f.Err
	}
	f.Upserted = append(f.Upserted, docs...)
	return len(docs), nil
}

func (f *FakeVectorStore) QueryByVector(ctx context.Context, vec []float32, topK int, namespace string, filter vectorstore.Filter) ([]domain.RetrievalHit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	hits := f.Hits[namespace]
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func (f *FakeVectorStore) QueryByText(ctx context.Context, text string, topK int, namespace string, filter vectorstore.Filter) ([]domain.RetrievalHit, error) {
	return f.QueryByVector(ctx, nil, topK, namespace, filter)
}

func (f *FakeVectorStore) Delete(ctx context.Context, ids []string, namespace string) error {
	return f.Err
}

func (f *FakeVectorStore) DeleteByFilter(ctx context.Context, filter vectorstore.Filter, namespace string) error {
	return f.Err
}

func (f *FakeVectorStore) HealthCheck(ctx context.Context) (vectorstore.HealthReport, error) {
	return vectorstore.HealthReport{}, f.Err
}

var _ vectorstore.Client = (*FakeVectorStore)(nil)
