// Package slotfill implements the Slot-Filling Orchestrator (§4.11):
// the per-turn procedure that drives a DialogState from
// collecting_info through to awaiting_confirmation.
package slotfill

import (
	"context"
	"fmt"

	"github.com/shaonidutta/converge-ai/dialog"
	"github.com/shaonidutta/converge-ai/domain"
	"github.com/shaonidutta/converge-ai/entity"
	"github.com/shaonidutta/converge-ai/logger"
	"github.com/shaonidutta/converge-ai/question"
)

// AddressProvider supplies a user's saved default address, letting the
// orchestrator auto-fill LOCATION without asking (§4.11 step 4). It is
// a collaborator seam: the booking/profile service implements it.
type AddressProvider interface {
	DefaultPincode(ctx context.Context, userID int64) (string, bool)
}

// Turn is what the orchestrator returns for one collecting_info step.
type Turn struct {
	State           *domain.DialogState
	Question        string
	Done            bool // true once state has moved to awaiting_confirmation
	Escalated       bool
	PendingAction   *domain.PendingAction
}

// Orchestrator wires the Entity Extractor, Entity Validator, Question
// Generator and Dialog State Manager together.
type Orchestrator struct {
	extractor *entity.Extractor
	validator *entity.Validator
	questions *question.Generator
	dialogMgr *dialog.Manager
	addresses AddressProvider
	catalog   *entity.Catalog
	logger    logger.Logger
}

func NewOrchestrator(extractor *entity.Extractor, validator *entity.Validator, questions *question.Generator, dialogMgr *dialog.Manager, addresses AddressProvider, catalog *entity.Catalog, log logger.Logger) *Orchestrator {
	if catalog == nil {
		catalog = entity.DefaultCatalog()
	}
	return &Orchestrator{
		extractor: extractor,
		validator: validator,
		questions: questions,
		dialogMgr: dialogMgr,
		addresses: addresses,
		catalog:   catalog,
		logger:    logger.Component(log, "slotfill_orchestrator"),
	}
}

// Step runs one pass of §4.11's 6-step procedure against the active
// state for sessionID, given the user's latest message.
func (o *Orchestrator) Step(ctx context.Context, sessionID string, userID int64, message string) (Turn, error) {
	state, err := o.dialogMgr.GetActiveState(ctx, sessionID)
	if err != nil {
		return Turn{}, err
	}
	if state == nil || len(state.NeededEntities) == 0 {
		return Turn{State: state, Done: true}, nil
	}

	expected := state.NeededEntities[0]
	dialogCtx := state.Context

	entityResult, extractErr := o.extractor.ExtractFromFollowUp(ctx, message, expected, dialogCtx)
	if extractErr != nil || entityResult == nil {
		return o.handleFailedAttempt(ctx, sessionID, state, expected)
	}

	validation := o.validator.Validate(expected, entityResult.NormalizedValue, dialogCtx)
	if !validation.IsValid {
		if requiresSub, _ := validation.Metadata["requires_subcategory_selection"].(bool); requiresSub {
			return o.injectSubcategorySelection(ctx, sessionID, state, validation)
		}
		o.logger.Debug("slot fill validation failed, asking again",
			map[string]interface{}{"entity_type": string(expected), "error": fmt.Errorf("%w: %s", domain.ErrValidationFailed, validation.ErrorMessage).Error()})
		return o.handleFailedAttempt(ctx, sessionID, state, expected)
	}

	metadataPatch := map[string]interface{}{}
	if resolved, ok := entityResult.Metadata["_resolved_service"].(map[string]string); ok {
		for k, v := range resolved {
			metadataPatch["_metadata_"+k] = v
		}
	}
	for k, v := range validation.Metadata {
		metadataPatch["_metadata_"+k] = v
	}

	if _, err := o.dialogMgr.AddEntity(ctx, sessionID, expected, validation.NormalizedValue, metadataPatch); err != nil {
		return Turn{}, err
	}

	var pending *domain.PendingAction
	remaining := remove(state.NeededEntities, expected)
	if len(remaining) == 0 {
		pending = o.buildPendingAction(state, expected, validation.NormalizedValue)
	}

	state, err = o.dialogMgr.RemoveNeededEntity(ctx, sessionID, expected, pending)
	if err != nil {
		return Turn{}, err
	}

	state, err = o.autoFillLocation(ctx, sessionID, userID, state)
	if err != nil {
		return Turn{}, err
	}

	if len(state.NeededEntities) == 0 {
		return Turn{State: state, Done: true, PendingAction: state.PendingAction}, nil
	}

	next := state.NeededEntities[0]
	subs := subcategoryOptions(state)
	q := o.questions.Generate(next, state.Intent, subs)
	return Turn{State: state, Question: q}, nil
}

func (o *Orchestrator) injectSubcategorySelection(ctx context.Context, sessionID string, state *domain.DialogState, validation entity.ValidationResult) (Turn, error) {
	categoryID, _ := validation.Metadata["_category_id"].(string)
	namesRaw, _ := validation.Metadata["available_subcategories"].([]string)

	updated, err := o.dialogMgr.PrependNeededEntity(ctx, sessionID, domain.EntityServiceSubcat, categoryID, namesRaw)
	if err != nil {
		return Turn{}, err
	}

	subs := subcategoryOptionsFromCatalog(o.catalog, categoryID, namesRaw)
	q := o.questions.Generate(domain.EntityServiceSubcat, updated.Intent, subs)
	return Turn{State: updated, Question: q}, nil
}

func (o *Orchestrator) handleFailedAttempt(ctx context.Context, sessionID string, state *domain.DialogState, expected domain.EntityType) (Turn, error) {
	attemptKey := "attempt_count:" + string(expected)
	attempts := 0
	if v, ok := state.Context[attemptKey].(float64); ok {
		attempts = int(v)
	} else if v, ok := state.Context[attemptKey].(int); ok {
		attempts = v
	}
	attempts++

	if attempts >= question.MaxAttempts {
		o.logger.Warn("slot fill escalated after max failed attempts",
			map[string]interface{}{"entity_type": string(expected), "attempts": attempts, "error": domain.ErrSlotAttemptsExceeded.Error()})
		errored, err := o.dialogMgr.UpdateState(ctx, sessionID, func(s *domain.DialogState) {
			s.State = domain.StateError
		})
		if err != nil {
			return Turn{}, err
		}
		return Turn{State: errored, Question: question.Escalation(expected), Escalated: true}, nil
	}

	updated, err := o.dialogMgr.UpdateState(ctx, sessionID, func(s *domain.DialogState) {
		if s.Context == nil {
			s.Context = map[string]interface{}{}
		}
		s.Context[attemptKey] = attempts
	})
	if err != nil {
		return Turn{}, err
	}

	subs := subcategoryOptions(updated)
	q := o.questions.Generate(expected, updated.Intent, subs)
	return Turn{State: updated, Question: q}, nil
}

// autoFillLocation implements §4.11 step 4: if LOCATION is still
// needed and a saved default address exists, fill it without asking.
func (o *Orchestrator) autoFillLocation(ctx context.Context, sessionID string, userID int64, state *domain.DialogState) (*domain.DialogState, error) {
	if o.addresses == nil || !contains(state.NeededEntities, domain.EntityLocation) {
		return state, nil
	}
	pincode, ok := o.addresses.DefaultPincode(ctx, userID)
	if !ok {
		return state, nil
	}

	var pending *domain.PendingAction
	remaining := remove(state.NeededEntities, domain.EntityLocation)
	if len(remaining) == 0 {
		pending = o.buildPendingAction(state, domain.EntityLocation, pincode)
	}

	if _, err := o.dialogMgr.AddEntity(ctx, sessionID, domain.EntityLocation, pincode, nil); err != nil {
		return nil, err
	}
	return o.dialogMgr.RemoveNeededEntity(ctx, sessionID, domain.EntityLocation, pending)
}

func (o *Orchestrator) buildPendingAction(state *domain.DialogState, lastType domain.EntityType, lastValue string) *domain.PendingAction {
	entities := make(map[string]string, len(state.CollectedEntities)+1)
	for k, v := range state.CollectedEntities {
		entities[k] = v
	}
	entities[string(lastType)] = lastValue

	return &domain.PendingAction{
		Intent:   state.Intent,
		Verb:     actionVerbFor(state.Intent),
		Entities: entities,
	}
}

func subcategoryOptions(state *domain.DialogState) []question.Subcategory {
	names, _ := state.Context["available_subcategories"].([]string)
	return subcategoryOptionsFromNames(names)
}

func subcategoryOptionsFromCatalog(catalog *entity.Catalog, categoryID string, names []string) []question.Subcategory {
	for _, svc := range catalog.Services {
		if svc.ID != categoryID {
			continue
		}
		out := make([]question.Subcategory, 0, len(svc.Subcategories))
		for _, sub := range svc.Subcategories {
			out = append(out, question.Subcategory{Name: sub.Name, StartingPrice: sub.StartingPrice})
		}
		return out
	}
	return subcategoryOptionsFromNames(names)
}

func subcategoryOptionsFromNames(names []string) []question.Subcategory {
	out := make([]question.Subcategory, len(names))
	for i, n := range names {
		out[i] = question.Subcategory{Name: n}
	}
	return out
}

func remove(types []domain.EntityType, target domain.EntityType) []domain.EntityType {
	out := make([]domain.EntityType, 0, len(types))
	for _, t := range types {
		if t != target {
			out = append(out, t)
		}
	}
	return out
}

func contains(types []domain.EntityType, target domain.EntityType) bool {
	for _, t := range types {
		if t == target {
			return true
		}
	}
	return false
}
