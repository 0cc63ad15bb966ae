package question

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shaonidutta/converge-ai/domain"
)

func TestGenerate_UsesIntentSpecificTemplateWhenPresent(t *testing.T) {
	g := NewGenerator()
	q := g.Generate(domain.EntityBookingID, domain.IntentCancellationReq, nil)
	assert.Contains(t, q, "cancel")
}

func TestGenerate_FallsBackToGenericTemplate(t *testing.T) {
	g := NewGenerator()
	q := g.Generate(domain.EntityBookingID, domain.IntentPricingInquiry, nil)
	assert.Equal(t, "Could you share the booking ID?", q)
}

func TestGenerate_SubcategoryRendersNumberedListWithPrices(t *testing.T) {
	g := NewGenerator()
	q := g.Generate(domain.EntityServiceSubcat, domain.IntentBookingManagement, []Subcategory{
		{Name: "Interior Painting", StartingPrice: 4999},
		{Name: "Exterior Painting", StartingPrice: 6999},
	})
	assert.Contains(t, q, "1. Interior Painting (starting at ₹4999)")
	assert.Contains(t, q, "2. Exterior Painting (starting at ₹6999)")
}

func TestGenerate_UnknownEntityTypeFallsBackToGenericPhrase(t *testing.T) {
	g := NewGenerator()
	q := g.Generate(domain.EntityQuery, domain.IntentUnclear, nil)
	assert.Contains(t, q, "query")
}

func TestEscalation_MentionsEntityType(t *testing.T) {
	msg := Escalation(domain.EntityDate)
	assert.Contains(t, msg, "date")
}
