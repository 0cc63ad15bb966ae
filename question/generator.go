// Package question implements the Question Generator (§4.10): the
// per-(entity_type, intent) template bank the slot-filling orchestrator
// calls to ask for the next missing slot.
package question

import (
	"fmt"
	"strings"

	"github.com/shaonidutta/converge-ai/domain"
)

// MaxAttempts caps how many times the same slot may be asked before
// the orchestrator escalates to an error state.
const MaxAttempts = 3

// Subcategory is the display shape the SERVICE_SUBCATEGORY template
// renders, drawn from context.available_subcategories.
type Subcategory struct {
	Name          string
	StartingPrice float64
}

// Generator renders the next question for a missing entity.
type Generator struct {
	templates map[templateKey]string
}

type templateKey struct {
	entityType domain.EntityType
	intent     domain.IntentLabel
}

func NewGenerator() *Generator {
	return &Generator{templates: defaultTemplates()}
}

// Generate renders the question for entityType under intent.
// subcategories is only consulted for SERVICE_SUBCATEGORY.
func (g *Generator) Generate(entityType domain.EntityType, intent domain.IntentLabel, subcategories []Subcategory) string {
	if entityType == domain.EntityServiceSubcat {
		return g.renderSubcategoryList(subcategories)
	}

	if tmpl, ok := g.templates[templateKey{entityType, intent}]; ok {
		return tmpl
	}
	if tmpl, ok := g.templates[templateKey{entityType, ""}]; ok {
		return tmpl
	}
	return fmt.Sprintf("Could you provide your %s?", strings.ToLower(strings.ReplaceAll(string(entityType), "_", " ")))
}

func (g *Generator) renderSubcategoryList(subcategories []Subcategory) string {
	if len(subcategories) == 0 {
		return "Which option would you like?"
	}
	var b strings.Builder
	b.WriteString("Which of these would you like?\n")
	for i, s := range subcategories {
		if s.StartingPrice > 0 {
			fmt.Fprintf(&b, "%d. %s (starting at ₹%.0f)\n", i+1, s.Name, s.StartingPrice)
		} else {
			fmt.Fprintf(&b, "%d. %s\n", i+1, s.Name)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// Escalation is what the orchestrator returns after MaxAttempts failed
// attempts at the same slot.
func Escalation(entityType domain.EntityType) string {
	return fmt.Sprintf("I'm having trouble understanding your %s. Let me connect you with a support agent.",
		strings.ToLower(strings.ReplaceAll(string(entityType), "_", " ")))
}

func defaultTemplates() map[templateKey]string {
	return map[templateKey]string{
		{domain.EntityServiceType, ""}:                                "What service would you like to book?",
		{domain.EntityDate, ""}:                                       "What date would you like this scheduled for?",
		{domain.EntityTime, ""}:                                       "What time works best for you?",
		{domain.EntityLocation, ""}:                                   "Could you share the pincode for this service?",
		{domain.EntityBookingID, domain.IntentCancellationReq}:        "Which booking would you like to cancel? Please share the booking ID.",
		{domain.EntityBookingID, domain.IntentRefundRequest}:          "Which booking is this refund for? Please share the booking ID.",
		{domain.EntityBookingID, ""}:                                  "Could you share the booking ID?",
		{domain.EntityIssueType, domain.IntentComplaint}:              "Sorry to hear that. What went wrong?",
		{domain.EntityPaymentType, domain.IntentPaymentIssue}:         "Which payment method were you using?",
	}
}
