// Package vectorstore wraps a vector database behind the upsert/query/
// delete contract §4.3 describes, using github.com/qdrant/go-client with
// namespaces mapped onto Qdrant collections.
package vectorstore

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"github.com/shaonidutta/converge-ai/domain"
	"github.com/shaonidutta/converge-ai/embedding"
	"github.com/shaonidutta/converge-ai/logger"
	"github.com/shaonidutta/converge-ai/resilience"
)

// Filter is an equality filter over metadata keys (§4.3: "filterable by
// equality").
type Filter map[string]string

// HealthReport is returned by HealthCheck (§4.3).
type HealthReport struct {
	Dimension        int
	Fullness         float64
	NamespaceCounts  map[string]uint64
}

// Document is one record passed to UpsertDocuments.
type Document struct {
	ID       string
	Text     string
	Metadata map[string]interface{}
}

// Client is the Vector Store Client contract.
type Client interface {
	UpsertDocuments(ctx context.Context, docs []Document, namespace string) (upserted int, err error)
	QueryByVector(ctx context.Context, vec []float32, topK int, namespace string, filter Filter) ([]domain.RetrievalHit, error)
	QueryByText(ctx context.Context, text string, topK int, namespace string, filter Filter) ([]domain.RetrievalHit, error)
	Delete(ctx context.Context, ids []string, namespace string) error
	DeleteByFilter(ctx context.Context, filter Filter, namespace string) error
	HealthCheck(ctx context.Context) (HealthReport, error)
}

// QdrantClient implements Client.
type QdrantClient struct {
	conn        *qdrant.Client
	embedder    embedding.Client
	retryConfig *resilience.RetryConfig
	logger      logger.Logger
	previewLen  int
}

// NewQdrantClient dials a Qdrant instance at host:port (gRPC).
func NewQdrantClient(host string, port int, apiKey string, embedder embedding.Client, log logger.Logger) (*QdrantClient, error) {
	conn, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("vectorstore: dial qdrant: %w", err)
	}
	return &QdrantClient{
		conn:        conn,
		embedder:    embedder,
		retryConfig: resilience.DefaultRetryConfig(),
		logger:      logger.Component(log, "vectorstore"),
		previewLen:  200,
	}, nil
}

// EnsureNamespace creates the backing collection if it doesn't exist yet,
// sized to the embedder's dimension.
func (c *QdrantClient) EnsureNamespace(ctx context.Context, namespace string) error {
	exists, err := c.conn.CollectionExists(ctx, namespace)
	if err != nil {
		return fmt.Errorf("vectorstore: check collection: %w", err)
	}
	if exists {
		return nil
	}
	dim := uint64(c.embedder.ModelInfo().Dim)
	return c.conn.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: namespace,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dim,
			Distance: qdrant.Distance_Cosine,
		}),
	})
}

// UpsertDocuments embeds each document's text and stores (id, vec,
// metadata+text_preview). A single failed batch fails the whole call
// (§4.3); callers are expected to retry.
func (c *QdrantClient) UpsertDocuments(ctx context.Context, docs []Document, namespace string) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	if err := c.EnsureNamespace(ctx, namespace); err != nil {
		return 0, err
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}
	vectors, err := c.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("vectorstore upsert: embed: %w", err)
	}

	points := make([]*qdrant.PointStruct, len(docs))
	for i, d := range docs {
		meta := map[string]interface{}{}
		for k, v := range d.Metadata {
			meta[k] = v
		}
		meta["text_preview"] = preview(d.Text, c.previewLen)

		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(d.ID),
			Vectors: qdrant.NewVectors(toFloat32(vectors[i])...),
			Payload: qdrant.NewValueMap(meta),
		}
	}

	err = resilience.Retry(ctx, c.retryConfig, func() error {
		_, callErr := c.conn.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: namespace,
			Points:         points,
		})
		return callErr
	})
	if err != nil {
		return 0, fmt.Errorf("vectorstore: upsert: %w", domain.ErrVectorStoreUnavailable)
	}
	return len(points), nil
}

func (c *QdrantClient) QueryByVector(ctx context.Context, vec []float32, topK int, namespace string, filter Filter) ([]domain.RetrievalHit, error) {
	if topK <= 0 {
		topK = 5
	}

	var resp []*qdrant.ScoredPoint
	err := resilience.Retry(ctx, c.retryConfig, func() error {
		points, callErr := c.conn.Query(ctx, &qdrant.QueryPoints{
			CollectionName: namespace,
			Query:          qdrant.NewQuery(toFloat32(vec)...),
			Limit:          qdrant.PtrOf(uint64(topK)),
			Filter:         toQdrantFilter(filter),
			WithPayload:    qdrant.NewWithPayload(true),
		})
		resp = points
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("vectorstore: query: %w", domain.ErrVectorStoreUnavailable)
	}

	hits := make([]domain.RetrievalHit, 0, len(resp))
	for _, p := range resp {
		meta := fromQdrantPayload(p.Payload)
		preview, _ := meta["text_preview"].(string)
		hits = append(hits, domain.RetrievalHit{
			ChunkID:     idToString(p.Id),
			Score:       float64(p.Score),
			Metadata:    meta,
			TextPreview: preview,
		})
	}
	return hits, nil
}

func (c *QdrantClient) QueryByText(ctx context.Context, text string, topK int, namespace string, filter Filter) ([]domain.RetrievalHit, error) {
	vec, err := c.embedder.EmbedOne(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: embed query: %w", err)
	}
	return c.QueryByVector(ctx, vec, topK, namespace, filter)
}

func (c *QdrantClient) Delete(ctx context.Context, ids []string, namespace string) error {
	pointIDs := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = qdrant.NewIDUUID(id)
	}
	_, err := c.conn.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: namespace,
		Points:         qdrant.NewPointsSelectorIDs(pointIDs),
	})
	return err
}

func (c *QdrantClient) DeleteByFilter(ctx context.Context, filter Filter, namespace string) error {
	_, err := c.conn.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: namespace,
		Points:         qdrant.NewPointsSelectorFilter(toQdrantFilter(filter)),
	})
	return err
}

func (c *QdrantClient) HealthCheck(ctx context.Context) (HealthReport, error) {
	info, err := c.conn.GetCollectionInfo(ctx, "")
	if err != nil {
		return HealthReport{}, fmt.Errorf("vectorstore: health check: %w", domain.ErrVectorStoreUnavailable)
	}
	report := HealthReport{
		Dimension:       c.embedder.ModelInfo().Dim,
		NamespaceCounts: map[string]uint64{},
	}
	if info != nil && info.PointsCount != nil {
		report.Fullness = float64(*info.PointsCount)
	}
	return report, nil
}

// --- helpers ---

func preview(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max]
}

// ChunkID deterministically hashes documentID||chunkIndex per §3.
func ChunkID(documentID string, chunkIndex int) string {
	h := sha1.Sum([]byte(fmt.Sprintf("%s|%d", documentID, chunkIndex)))
	return hex.EncodeToString(h[:])
}

func toFloat32(v []float32) []float32 { return v }

func toQdrantFilter(f Filter) *qdrant.Filter {
	if len(f) == 0 {
		return nil
	}
	conditions := make([]*qdrant.Condition, 0, len(f))
	for k, v := range f {
		conditions = append(conditions, qdrant.NewMatch(k, v))
	}
	return &qdrant.Filter{Must: conditions}
}

func fromQdrantPayload(payload map[string]*qdrant.Value) map[string]interface{} {
	out := make(map[string]interface{}, len(payload))
	for k, v := range payload {
		out[k] = qdrant.NewGoValue(v)
	}
	return out
}

func idToString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if uuid := id.GetUuid(); uuid != "" {
		return uuid
	}
	return fmt.Sprintf("%d", id.GetNum())
}

var _ Client = (*QdrantClient)(nil)
