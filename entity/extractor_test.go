package entity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaonidutta/converge-ai/domain"
)

func fixedExtractor() *Extractor {
	e := NewExtractor(DefaultCatalog(), nil, "", nil)
	e.now = func() time.Time { return time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC) }
	return e
}

func TestExtractMultiple_CombinedDateTime(t *testing.T) {
	e := fixedExtractor()
	entities := e.ExtractMultiple(context.Background(), "book it for tomorrow 4pm", []domain.EntityType{domain.EntityDate, domain.EntityTime}, nil)
	require.Contains(t, entities, domain.EntityDate)
	require.Contains(t, entities, domain.EntityTime)
	assert.Equal(t, "2026-08-02", entities[domain.EntityDate].NormalizedValue)
	assert.Equal(t, "16:00", entities[domain.EntityTime].NormalizedValue)
}

func TestExtractMultiple_BookingIDTriedBeforeGenericAlphanumeric(t *testing.T) {
	e := fixedExtractor()
	entities := e.ExtractMultiple(context.Background(), "my order is ORDAB123456", []domain.EntityType{domain.EntityBookingID}, nil)
	require.Contains(t, entities, domain.EntityBookingID)
	assert.Equal(t, "ORDAB123456", entities[domain.EntityBookingID].NormalizedValue)
	assert.Equal(t, domain.ExtractPattern, entities[domain.EntityBookingID].ExtractionMethod)
}

func TestExtractMultiple_ServiceTypeFuzzyMatchesMisspelling(t *testing.T) {
	e := fixedExtractor()
	entities := e.ExtractMultiple(context.Background(), "paintting", []domain.EntityType{domain.EntityServiceType}, nil)
	require.Contains(t, entities, domain.EntityServiceType)
	assert.Equal(t, "Painting", entities[domain.EntityServiceType].NormalizedValue)
	assert.Equal(t, domain.ExtractFuzzy, entities[domain.EntityServiceType].ExtractionMethod)
}

func TestExtractMultiple_SingleSubcategoryAutoAttachesResolvedService(t *testing.T) {
	e := fixedExtractor()
	entities := e.ExtractMultiple(context.Background(), "I need a plumber", []domain.EntityType{domain.EntityServiceType}, nil)
	require.Contains(t, entities, domain.EntityServiceType)
	assert.NotNil(t, entities[domain.EntityServiceType].Metadata["_resolved_service"])
}

func TestExtractFromFollowUp_SubcategoryBySelectionIndex(t *testing.T) {
	e := fixedExtractor()
	dialogCtx := map[string]interface{}{"_category_id": "cat-painting"}
	result, err := e.ExtractFromFollowUp(context.Background(), "1", domain.EntityServiceSubcat, dialogCtx)
	require.NoError(t, err)
	assert.Equal(t, "Interior Painting", result.NormalizedValue)
}

func TestExtractDate_RelativeWeekday(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC) // Saturday
	_, norm, ok := ExtractDate("let's do next friday", now)
	require.True(t, ok)
	parsed, err := time.Parse("2006-01-02", norm)
	require.NoError(t, err)
	assert.Equal(t, time.Friday, parsed.Weekday())
}
