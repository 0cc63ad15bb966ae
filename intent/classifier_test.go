package intent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaonidutta/converge-ai/domain"
	"github.com/shaonidutta/converge-ai/llm"
)

type fakeLLMClient struct {
	content string
	err     error
}

func (f fakeLLMClient) Generate(_ context.Context, _ string, _ *llm.GenerationOptions) (*llm.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Response{Content: f.content}, nil
}

func (f fakeLLMClient) ProviderInfo() llm.ProviderInfo { return llm.ProviderInfo{Name: "fake"} }

func TestClassify_PatternTierShortCircuitsOnGreeting(t *testing.T) {
	c := NewClassifier(nil, nil)
	result, err := c.Classify(context.Background(), "hello", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.IntentGreeting, result.PrimaryIntent)
	assert.Equal(t, domain.MethodPattern, result.ClassificationMethod)
}

func TestClassify_FallsBackToLLMWhenNoPatternMatches(t *testing.T) {
	fake := fakeLLMClient{content: `{"primary_intent":"pricing_inquiry","intents":[{"intent":"pricing_inquiry","confidence":0.8,"entities":{}}],"requires_clarification":false}`}
	c := NewClassifier(NewLLMTier(fake, "test-model", nil), nil)

	result, err := c.Classify(context.Background(), "what would it set me back for a deep clean next week", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.IntentPricingInquiry, result.PrimaryIntent)
	assert.Equal(t, domain.MethodLLM, result.ClassificationMethod)
}

func TestClassify_UnknownIntentLabelFallsBackToUnclear(t *testing.T) {
	fake := fakeLLMClient{content: `{"primary_intent":"not_a_real_intent","intents":[]}`}
	c := NewClassifier(NewLLMTier(fake, "test-model", nil), nil)

	result, err := c.Classify(context.Background(), "asdkjasdlkjasd", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.IntentUnclear, result.PrimaryIntent)
	assert.Equal(t, domain.MethodFallback, result.ClassificationMethod)
}

func TestClassify_NoLLMTierConfiguredReturnsUnclear(t *testing.T) {
	c := NewClassifier(nil, nil)
	result, err := c.Classify(context.Background(), "asdkjasdlkjasd this matches nothing", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.IntentUnclear, result.PrimaryIntent)
}

func TestClassify_MultiIntentPatternEmitsBothWithActionAsPrimary(t *testing.T) {
	c := NewClassifier(nil, nil)
	result, err := c.Classify(context.Background(), "I want to book AC service and know the price", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.IntentBookingManagement, result.PrimaryIntent)
	var labels []domain.IntentLabel
	for _, cand := range result.Intents {
		labels = append(labels, cand.Intent)
	}
	assert.Contains(t, labels, domain.IntentBookingManagement)
	assert.Contains(t, labels, domain.IntentPricingInquiry)
}

func TestMatchPattern_RespectsThreshold(t *testing.T) {
	_, ok := MatchPattern("hello", DefaultPatterns, 0.99)
	assert.False(t, ok)
}
