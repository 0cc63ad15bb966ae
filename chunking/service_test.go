package chunking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_EveryChunkHasPositiveTokenCount(t *testing.T) {
	svc := NewService(DefaultOptions())
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 200)

	chunks := svc.Chunk(text, "doc-1", FileText)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.Greater(t, c.TokenCount, 0)
		assert.LessOrEqual(t, float64(c.TokenCount), float64(svc.opts.ChunkSize)*1.2)
	}
}

func TestChunk_AssignsIndexAndTotal(t *testing.T) {
	svc := NewService(DefaultOptions())
	text := strings.Repeat("word ", 2000)

	chunks := svc.Chunk(text, "doc-2", FileText)
	require.NotEmpty(t, chunks)
	for i, c := range chunks {
		assert.Equal(t, i, c.ChunkIndex)
		assert.Equal(t, len(chunks), c.TotalChunks)
		assert.Equal(t, "doc-2", c.DocumentID)
	}
}

func TestChunk_MarkdownHeadingsPopulateSectionTitle(t *testing.T) {
	svc := NewService(DefaultOptions())
	text := "# Refund Policy\n\nRefunds take 5-7 business days.\n\n## Exceptions\n\nDigital goods are non-refundable."

	chunks := svc.Chunk(text, "policy-1", FileMarkdown)
	require.NotEmpty(t, chunks)
	assert.Equal(t, "Refund Policy", chunks[0].SectionTitle)

	found := false
	for _, c := range chunks {
		if c.SectionTitle == "Exceptions" {
			found = true
			assert.Contains(t, c.SectionHeaders, "Refund Policy")
			assert.Contains(t, c.SectionHeaders, "Exceptions")
		}
	}
	assert.True(t, found)
}

func TestChunk_DeterministicChunkID(t *testing.T) {
	svc := NewService(DefaultOptions())
	a := svc.Chunk("hello world", "doc-3", FileText)
	b := svc.Chunk("hello world", "doc-3", FileText)
	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.Equal(t, a[0].ChunkID, b[0].ChunkID)
}
