package entity

import (
	"fmt"
	"time"

	"github.com/shaonidutta/converge-ai/domain"
)

// ValidationResult is the Entity Validator's verdict (§4.8).
type ValidationResult struct {
	IsValid         bool
	NormalizedValue string
	ErrorMessage    string
	Suggestions     []string
	Metadata        map[string]interface{}
}

// Validator applies the per-type rules in §4.8.
type Validator struct {
	catalog       *Catalog
	businessStart int // hour, inclusive
	businessEnd   int // hour, exclusive
	now           func() time.Time
}

func NewValidator(catalog *Catalog) *Validator {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Validator{catalog: catalog, businessStart: 8, businessEnd: 20, now: time.Now}
}

// Validate dispatches to the type-specific rule. ctx carries
// available_subcategories and similar dialog-context values the rules
// consult.
func (v *Validator) Validate(entityType domain.EntityType, value string, dialogCtx map[string]interface{}) ValidationResult {
	switch entityType {
	case domain.EntityDate:
		return v.validateDate(value)
	case domain.EntityTime:
		return v.validateTime(value)
	case domain.EntityLocation:
		return v.validateLocation(value)
	case domain.EntityServiceType:
		return v.validateServiceType(value)
	case domain.EntityServiceSubcat:
		return v.validateSubcategory(value, dialogCtx)
	case domain.EntityBookingID:
		return v.validateBookingID(value)
	default:
		return ValidationResult{IsValid: true, NormalizedValue: value}
	}
}

func (v *Validator) validateDate(value string) ValidationResult {
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		return ValidationResult{IsValid: false, ErrorMessage: "I couldn't understand that date. Could you try a format like \"tomorrow\" or \"2024-05-20\"?"}
	}
	today := v.now().Truncate(24 * time.Hour)
	if d.Before(today) {
		return ValidationResult{IsValid: false, ErrorMessage: "That date is in the past. Could you pick an upcoming date?"}
	}
	return ValidationResult{IsValid: true, NormalizedValue: value}
}

func (v *Validator) validateTime(value string) ValidationResult {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return ValidationResult{IsValid: false, ErrorMessage: "I couldn't understand that time. Could you try something like \"4pm\" or \"16:00\"?"}
	}
	if t.Hour() < v.businessStart || t.Hour() >= v.businessEnd {
		return ValidationResult{
			IsValid:      false,
			ErrorMessage: fmt.Sprintf("We only take bookings between %d:00 and %d:00. Could you pick a time in that window?", v.businessStart, v.businessEnd),
		}
	}
	return ValidationResult{IsValid: true, NormalizedValue: value}
}

func (v *Validator) validateLocation(value string) ValidationResult {
	if _, ok := ExtractPincode(value); !ok {
		return ValidationResult{IsValid: false, ErrorMessage: "Could you share a 6-digit pincode for your location?"}
	}
	return ValidationResult{IsValid: true, NormalizedValue: value}
}

func (v *Validator) validateServiceType(value string) ValidationResult {
	svc, ok := v.catalog.FindExact(value)
	if !ok {
		if resolved, _, fuzzyOK := FuzzyResolve(v.catalog, value); fuzzyOK {
			svc, ok = resolved, true
		}
	}
	if !ok {
		return ValidationResult{
			IsValid:      false,
			ErrorMessage: "I couldn't match that to one of our services. Could you tell me which service you need?",
		}
	}

	if len(svc.Subcategories) > 1 {
		names := make([]string, len(svc.Subcategories))
		for i, s := range svc.Subcategories {
			names[i] = s.Name
		}
		return ValidationResult{
			IsValid: false,
			Metadata: map[string]interface{}{
				"requires_subcategory_selection": true,
				"available_subcategories":        names,
				"_category_id":                   svc.ID,
			},
		}
	}

	result := ValidationResult{IsValid: true, NormalizedValue: svc.Name}
	if len(svc.Subcategories) == 1 {
		result.Metadata = map[string]interface{}{
			"rate_card_id":   svc.Subcategories[0].RateCardID,
			"subcategory_id": svc.Subcategories[0].ID,
		}
	}
	return result
}

func (v *Validator) validateSubcategory(value string, dialogCtx map[string]interface{}) ValidationResult {
	catIDRaw, _ := dialogCtx["_category_id"].(string)
	for _, s := range v.catalog.Services {
		if s.ID != catIDRaw {
			continue
		}
		if sub, ok := v.catalog.FindSubcategory(s, value); ok {
			return ValidationResult{
				IsValid:         true,
				NormalizedValue: sub.Name,
				Metadata: map[string]interface{}{
					"rate_card_id":   sub.RateCardID,
					"subcategory_id": sub.ID,
				},
			}
		}
	}
	return ValidationResult{
		IsValid:      false,
		ErrorMessage: "That doesn't match any of the options. Could you pick one from the list, by name or number?",
	}
}

func (v *Validator) validateBookingID(value string) ValidationResult {
	if _, ok := ExtractBookingID(value); !ok {
		return ValidationResult{IsValid: false, ErrorMessage: "That doesn't look like a valid booking ID (it should look like ORDAB123456)."}
	}
	return ValidationResult{IsValid: true, NormalizedValue: value}
}
