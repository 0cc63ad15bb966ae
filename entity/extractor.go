package entity

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shaonidutta/converge-ai/domain"
	"github.com/shaonidutta/converge-ai/llm"
	"github.com/shaonidutta/converge-ai/logger"
)

// Extractor runs the pattern → fuzzy → LLM cascade of §4.7.
type Extractor struct {
	catalog *Catalog
	llm     llm.Client
	model   string
	now     func() time.Time
	logger  logger.Logger
}

func NewExtractor(catalog *Catalog, llmClient llm.Client, model string, log logger.Logger) *Extractor {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Extractor{
		catalog: catalog,
		llm:     llmClient,
		model:   model,
		now:     time.Now,
		logger:  logger.Component(log, "entity_extractor"),
	}
}

// ExtractMultiple runs every applicable extractor against message,
// restricted to expectedTypes when non-empty.
func (e *Extractor) ExtractMultiple(ctx context.Context, message string, expectedTypes []domain.EntityType, dialogCtx map[string]interface{}) map[domain.EntityType]*domain.Entity {
	want := toSet(expectedTypes)
	out := map[domain.EntityType]*domain.Entity{}
	now := e.now()

	if wants(want, domain.EntityDate) && wants(want, domain.EntityTime) {
		if date, t, ok := ExtractDateTime(message, now); ok {
			out[domain.EntityDate] = &domain.Entity{Type: domain.EntityDate, RawValue: message, NormalizedValue: date, Confidence: 0.9, ExtractionMethod: domain.ExtractPattern}
			out[domain.EntityTime] = &domain.Entity{Type: domain.EntityTime, RawValue: message, NormalizedValue: t, Confidence: 0.9, ExtractionMethod: domain.ExtractPattern}
		}
	}

	if wants(want, domain.EntityDate) {
		if _, exists := out[domain.EntityDate]; !exists {
			if raw, norm, ok := ExtractDate(message, now); ok {
				out[domain.EntityDate] = &domain.Entity{Type: domain.EntityDate, RawValue: raw, NormalizedValue: norm, Confidence: 0.85, ExtractionMethod: domain.ExtractPattern}
			}
		}
	}

	if wants(want, domain.EntityTime) {
		if _, exists := out[domain.EntityTime]; !exists {
			if raw, norm, ok := ExtractTime(message); ok {
				out[domain.EntityTime] = &domain.Entity{Type: domain.EntityTime, RawValue: raw, NormalizedValue: norm, Confidence: 0.85, ExtractionMethod: domain.ExtractPattern}
			}
		}
	}

	if wants(want, domain.EntityBookingID) {
		if v, ok := ExtractBookingID(message); ok {
			out[domain.EntityBookingID] = &domain.Entity{Type: domain.EntityBookingID, RawValue: v, NormalizedValue: v, Confidence: 0.95, ExtractionMethod: domain.ExtractPattern}
		}
	}

	if wants(want, domain.EntityLocation) {
		if v, ok := ExtractPincode(message); ok {
			out[domain.EntityLocation] = &domain.Entity{Type: domain.EntityLocation, RawValue: v, NormalizedValue: v, Confidence: 0.8, ExtractionMethod: domain.ExtractPattern}
		}
	}

	if wants(want, domain.EntityAction) {
		if v, ok := ExtractActionVerb(message); ok {
			out[domain.EntityAction] = &domain.Entity{Type: domain.EntityAction, RawValue: v, NormalizedValue: v, Confidence: 0.9, ExtractionMethod: domain.ExtractPattern}
		}
	}

	if wants(want, domain.EntityServiceType) {
		if entity, ok := e.resolveServiceType(message); ok {
			out[domain.EntityServiceType] = entity
		}
	}

	return out
}

// ExtractFromFollowUp runs a single-entity extraction when a
// collecting_info turn is expecting exactly one type, honoring the
// available_subcategories context for SERVICE_SUBCATEGORY selection.
func (e *Extractor) ExtractFromFollowUp(ctx context.Context, message string, expectedType domain.EntityType, dialogCtx map[string]interface{}) (*domain.Entity, error) {
	if expectedType == domain.EntityServiceSubcat {
		return e.resolveSubcategory(message, dialogCtx)
	}

	direct := e.ExtractMultiple(ctx, message, []domain.EntityType{expectedType}, dialogCtx)
	if entity, ok := direct[expectedType]; ok {
		return entity, nil
	}

	if e.llm == nil {
		return nil, fmt.Errorf("entity extraction: %w", domain.ErrExtractionNoMatch)
	}
	return e.extractWithLLM(ctx, message, expectedType)
}

func (e *Extractor) resolveServiceType(message string) (*domain.Entity, bool) {
	if svc, ok := e.catalog.FindExact(message); ok {
		return serviceEntity(svc, message, 0.95, domain.ExtractPattern), true
	}
	words := strings.Fields(message)
	for _, w := range words {
		if svc, ok := e.catalog.FindExact(w); ok {
			return serviceEntity(svc, w, 0.9, domain.ExtractPattern), true
		}
	}
	if svc, score, ok := FuzzyResolve(e.catalog, message); ok {
		return serviceEntity(svc, message, score, domain.ExtractFuzzy), true
	}
	return nil, false
}

func serviceEntity(svc Service, raw string, confidence float64, method domain.ExtractionMethod) *domain.Entity {
	entity := &domain.Entity{
		Type:             domain.EntityServiceType,
		RawValue:         raw,
		NormalizedValue:  svc.Name,
		Confidence:       confidence,
		ExtractionMethod: method,
	}
	if len(svc.Subcategories) == 1 {
		sub := svc.Subcategories[0]
		entity.Metadata = map[string]interface{}{
			"_resolved_service": map[string]string{
				"category_id":    svc.ID,
				"subcategory_id": sub.ID,
				"rate_card_id":   sub.RateCardID,
			},
		}
	}
	return entity
}

func (e *Extractor) resolveSubcategory(message string, dialogCtx map[string]interface{}) (*domain.Entity, error) {
	catIDRaw, _ := dialogCtx["_category_id"].(string)
	var category Service
	found := false
	for _, s := range e.catalog.Services {
		if s.ID == catIDRaw {
			category, found = s, true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("entity extraction: %w: no active category for subcategory resolution", domain.ErrExtractionNoMatch)
	}

	sub, ok := e.catalog.FindSubcategory(category, message)
	if !ok {
		return nil, fmt.Errorf("entity extraction: %w", domain.ErrExtractionNoMatch)
	}

	return &domain.Entity{
		Type:             domain.EntityServiceSubcat,
		RawValue:         message,
		NormalizedValue:  sub.Name,
		Confidence:       0.9,
		ExtractionMethod: domain.ExtractPattern,
		Metadata: map[string]interface{}{
			"_resolved_service": map[string]string{
				"category_id":    category.ID,
				"subcategory_id": sub.ID,
				"rate_card_id":   sub.RateCardID,
			},
		},
	}, nil
}

type llmExtraction struct {
	NormalizedValue string  `json:"normalized_value"`
	Confidence      float64 `json:"confidence"`
}

func (e *Extractor) extractWithLLM(ctx context.Context, message string, expectedType domain.EntityType) (*domain.Entity, error) {
	prompt := fmt.Sprintf(
		"Extract the %s from this message and respond with JSON {\"normalized_value\": \"...\", \"confidence\": 0.0} only.\nMessage: %s",
		expectedType, message)
	opts := llm.PresetOptions(llm.TaskExtract, e.model)

	resp, err := e.llm.Generate(ctx, prompt, opts)
	if err != nil {
		return nil, fmt.Errorf("entity extraction llm call: %w", err)
	}

	var parsed llmExtraction
	content := resp.Content
	if start := strings.IndexByte(content, '{'); start >= 0 {
		if end := strings.LastIndexByte(content, '}'); end > start {
			content = content[start : end+1]
		}
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil || parsed.NormalizedValue == "" {
		return nil, fmt.Errorf("entity extraction: %w", domain.ErrExtractionNoMatch)
	}

	return &domain.Entity{
		Type:             expectedType,
		RawValue:         message,
		NormalizedValue:  parsed.NormalizedValue,
		Confidence:       parsed.Confidence,
		ExtractionMethod: domain.ExtractLLM,
	}, nil
}

func toSet(types []domain.EntityType) map[domain.EntityType]bool {
	if len(types) == 0 {
		return nil
	}
	set := make(map[domain.EntityType]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	return set
}

func wants(set map[domain.EntityType]bool, t domain.EntityType) bool {
	return set == nil || set[t]
}
