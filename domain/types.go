// Package domain holds the data model shared by every component of the
// conversational orchestration engine: utterances, classified intents,
// entities, dialog state, RAG chunks and the turn-level result handed back
// to the calling service.
package domain

import "time"

// Utterance is the immutable input to every turn.
type Utterance struct {
	SessionID string    `json:"session_id"`
	UserID    int64     `json:"user_id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// IntentLabel is one member of the closed intent enumeration (§6).
type IntentLabel string

const (
	IntentBookingManagement  IntentLabel = "booking_management"
	IntentCancellationReq    IntentLabel = "cancellation_request"
	IntentComplaint          IntentLabel = "complaint"
	IntentRefundRequest      IntentLabel = "refund_request"
	IntentPolicyInquiry      IntentLabel = "policy_inquiry"
	IntentPricingInquiry     IntentLabel = "pricing_inquiry"
	IntentAvailabilityCheck  IntentLabel = "availability_check"
	IntentPaymentIssue       IntentLabel = "payment_issue"
	IntentServiceInquiry     IntentLabel = "service_inquiry"
	IntentServiceDiscovery   IntentLabel = "service_discovery"
	IntentGreeting           IntentLabel = "greeting"
	IntentOutOfScope         IntentLabel = "out_of_scope"
	IntentUnclear            IntentLabel = "unclear_intent"
)

// AllIntents is the closed set of valid primary intent labels. Adding a
// label here (and a handler mapping in agents.DefaultHandlerMap) is the
// single place new intents are registered.
var AllIntents = map[IntentLabel]bool{
	IntentBookingManagement: true,
	IntentCancellationReq:   true,
	IntentComplaint:         true,
	IntentRefundRequest:     true,
	IntentPolicyInquiry:     true,
	IntentPricingInquiry:    true,
	IntentAvailabilityCheck: true,
	IntentPaymentIssue:      true,
	IntentServiceInquiry:    true,
	IntentServiceDiscovery:  true,
	IntentGreeting:          true,
	IntentOutOfScope:        true,
	IntentUnclear:           true,
}

// ClassificationMethod records which classifier tier produced an intent.
type ClassificationMethod string

const (
	MethodPattern  ClassificationMethod = "pattern"
	MethodLLM      ClassificationMethod = "llm"
	MethodFallback ClassificationMethod = "fallback"
)

// IntentCandidate is one scored intent inside a ClassifiedIntent.
type IntentCandidate struct {
	Intent     IntentLabel        `json:"intent"`
	Confidence float64            `json:"confidence"`
	Entities   map[string]*Entity `json:"entities,omitempty"`
}

// ClassifiedIntent is the output of the Intent Classifier.
type ClassifiedIntent struct {
	PrimaryIntent         IntentLabel          `json:"primary_intent"`
	Intents                []IntentCandidate    `json:"intents"`
	ClassificationMethod   ClassificationMethod `json:"classification_method"`
	RequiresClarification  bool                 `json:"requires_clarification"`
	ClarificationReason    string               `json:"clarification_reason,omitempty"`
	ContextSummary         string               `json:"context_summary,omitempty"`
}

// EntityType is one of the typed entity slots the system extracts.
type EntityType string

const (
	EntityServiceType     EntityType = "SERVICE_TYPE"
	EntityServiceSubcat   EntityType = "SERVICE_SUBCATEGORY"
	EntityDate            EntityType = "DATE"
	EntityTime            EntityType = "TIME"
	EntityLocation         EntityType = "LOCATION"
	EntityAction           EntityType = "ACTION"
	EntityBookingID        EntityType = "BOOKING_ID"
	EntityIssueType        EntityType = "ISSUE_TYPE"
	EntityPaymentType      EntityType = "PAYMENT_TYPE"
	EntityQuery            EntityType = "QUERY"
)

// ExtractionMethod records which extractor tier produced an entity value.
type ExtractionMethod string

const (
	ExtractPattern ExtractionMethod = "pattern"
	ExtractFuzzy   ExtractionMethod = "fuzzy"
	ExtractLLM     ExtractionMethod = "llm"
)

// Entity is a single typed value pulled out of an utterance.
type Entity struct {
	Type             EntityType             `json:"type"`
	RawValue         string                 `json:"raw_value"`
	NormalizedValue  string                 `json:"normalized_value"`
	Confidence       float64                `json:"confidence"`
	ExtractionMethod ExtractionMethod       `json:"extraction_method"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// DialogStateKind is the slot-filling state machine's state.
type DialogStateKind string

const (
	StateIdle               DialogStateKind = "idle"
	StateCollectingInfo      DialogStateKind = "collecting_info"
	StateAwaitingConfirmation DialogStateKind = "awaiting_confirmation"
	StateExecutingAction     DialogStateKind = "executing_action"
	StateCompleted           DialogStateKind = "completed"
	StateError               DialogStateKind = "error"
)

// PendingAction describes the operation awaiting confirmation.
type PendingAction struct {
	Intent   IntentLabel            `json:"intent"`
	Verb     ActionVerb             `json:"verb"`
	Entities map[string]string      `json:"entities"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// ActionVerb is the closed set the source's free-form "action_taken"
// string is mapped onto (§9 Open Question).
type ActionVerb string

const (
	ActionBook             ActionVerb = "book"
	ActionCancel           ActionVerb = "cancel"
	ActionReschedule       ActionVerb = "reschedule"
	ActionFileComplaint    ActionVerb = "file_complaint"
	ActionRequestRefund    ActionVerb = "request_refund"
	ActionAnswerPolicy     ActionVerb = "answer_policy"
	ActionQuotePrice       ActionVerb = "quote_price"
	ActionCheckAvailability ActionVerb = "check_availability"
	ActionBrowseCatalog    ActionVerb = "browse_catalog"
	ActionNone             ActionVerb = "none"
)

// DialogState is the per-session slot-filling state (§3).
type DialogState struct {
	SessionID        string                 `json:"session_id"`
	UserID           int64                  `json:"user_id"`
	State            DialogStateKind        `json:"state"`
	Intent           IntentLabel            `json:"intent"`
	CollectedEntities map[string]string     `json:"collected_entities"`
	Metadata         map[string]interface{} `json:"metadata"`
	NeededEntities   []EntityType           `json:"needed_entities"`
	PendingAction    *PendingAction         `json:"pending_action,omitempty"`
	Context          map[string]interface{} `json:"context"`
	ExpiresAt        time.Time              `json:"expires_at"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

// NeedsMoreInfo implements the invariant
// needs_more_info ⇔ state = collecting_info ∧ needed_entities non-empty.
func (d *DialogState) NeedsMoreInfo() bool {
	return d.State == StateCollectingInfo && len(d.NeededEntities) > 0
}

// Active implements "state ∈ {idle, completed} OR now > expires_at ⇒ inactive".
func (d *DialogState) Active(now time.Time) bool {
	if d.State == StateIdle || d.State == StateCompleted {
		return false
	}
	return !now.After(d.ExpiresAt)
}

// DocumentChunk is a retrieval unit indexed in the vector store (§4.4).
type DocumentChunk struct {
	ChunkID        string   `json:"chunk_id"`
	DocumentID     string   `json:"document_id"`
	ChunkIndex     int      `json:"chunk_index"`
	TotalChunks    int      `json:"total_chunks"`
	SectionHeaders []string `json:"section_headers,omitempty"`
	SectionTitle   string   `json:"section_title,omitempty"`
	Text           string   `json:"text"`
	TokenCount     int      `json:"token_count"`
	CharCount      int      `json:"char_count"`
}

// RetrievalHit is one scored vector store match.
type RetrievalHit struct {
	ChunkID     string                 `json:"chunk_id"`
	Score       float64                `json:"score"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	TextPreview string                 `json:"text_preview"`
}

// GuardrailAction is the verdict a single guardrail check returns.
type GuardrailAction string

const (
	ActionAllow    GuardrailAction = "ALLOW"
	ActionSanitize GuardrailAction = "SANITIZE"
	ActionBlock    GuardrailAction = "BLOCK"
	ActionFlag     GuardrailAction = "FLAG"
)

// GuardrailResult is the per-check outcome (§3).
type GuardrailResult struct {
	GuardrailName  string                 `json:"guardrail_name"`
	Action         GuardrailAction        `json:"action"`
	Passed         bool                   `json:"passed"`
	Severity       int                    `json:"severity"`
	Message        string                 `json:"message,omitempty"`
	Details        map[string]interface{} `json:"details,omitempty"`
	SanitizedText  string                 `json:"sanitized_text,omitempty"`
	RetryAfterSecs int                    `json:"retry_after_seconds,omitempty"`
	LatencyMS      int64                  `json:"latency_ms"`
}

// GuardrailReport aggregates every check run for one input or output.
type GuardrailReport struct {
	Results        []GuardrailResult `json:"results"`
	FinalAction    GuardrailAction   `json:"final_action"`
	FinalText      string            `json:"final_text"`
	IsBlocked      bool              `json:"is_blocked"`
	TotalLatencyMS int64             `json:"total_latency_ms"`
}

// ConfidenceBand buckets a numeric confidence into the closed
// {high,medium,low} set used by the Policy RAG Engine.
type ConfidenceBand string

const (
	ConfidenceHigh   ConfidenceBand = "high"
	ConfidenceMedium ConfidenceBand = "medium"
	ConfidenceLow    ConfidenceBand = "low"
)

// PolicyAnswer is the result of the Policy RAG Engine.
type PolicyAnswer struct {
	Response       string                   `json:"response"`
	GroundingScore float64                  `json:"grounding_score"`
	Confidence     ConfidenceBand           `json:"confidence"`
	Sources        []map[string]interface{} `json:"sources"`
}

// Message mirrors the HTTP layer's persisted chat message shape (§6),
// supplemented from the original's schemas/chat.py.
type Message struct {
	ID        string      `json:"id"`
	Role      string      `json:"role"` // "user" | "assistant"
	Text      string      `json:"text"`
	Intent    IntentLabel `json:"intent,omitempty"`
	Confidence float64    `json:"confidence,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// TurnResult is returned to the calling service for every turn (§3/§6).
type TurnResult struct {
	SessionID         string                 `json:"session_id"`
	UserMessage       Message                `json:"user_message"`
	AssistantMessage  Message                `json:"assistant_message"`
	ResponseTimeMS    int64                  `json:"response_time_ms"`
	Intent            IntentLabel            `json:"intent"`
	Confidence        float64                `json:"confidence"`
	AgentUsed         string                 `json:"agent_used"`
	ActionTaken       ActionVerb             `json:"action_taken"`
	ClassificationMethod ClassificationMethod `json:"classification_method"`
	GroundingScore    *float64               `json:"grounding_score,omitempty"`
	Sources           []map[string]interface{} `json:"sources,omitempty"`
	IsFollowUp        bool                   `json:"is_follow_up"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`
}
