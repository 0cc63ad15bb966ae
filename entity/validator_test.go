package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shaonidutta/converge-ai/domain"
)

func fixedValidator() *Validator {
	v := NewValidator(DefaultCatalog())
	v.now = func() time.Time { return time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC) }
	return v
}

func TestValidate_DateInPastIsInvalid(t *testing.T) {
	v := fixedValidator()
	result := v.Validate(domain.EntityDate, "2020-01-01", nil)
	assert.False(t, result.IsValid)
}

func TestValidate_DateTodayOrFutureIsValid(t *testing.T) {
	v := fixedValidator()
	result := v.Validate(domain.EntityDate, "2026-08-02", nil)
	assert.True(t, result.IsValid)
}

func TestValidate_TimeOutsideBusinessHoursIsInvalid(t *testing.T) {
	v := fixedValidator()
	result := v.Validate(domain.EntityTime, "23:00", nil)
	assert.False(t, result.IsValid)
}

func TestValidate_ServiceTypeWithMultipleSubcategoriesRequiresSelection(t *testing.T) {
	v := fixedValidator()
	result := v.Validate(domain.EntityServiceType, "Painting", nil)
	assert.False(t, result.IsValid)
	assert.Equal(t, true, result.Metadata["requires_subcategory_selection"])
	assert.Len(t, result.Metadata["available_subcategories"], 3)
}

func TestValidate_ServiceTypeWithSingleSubcategoryAutoSelects(t *testing.T) {
	v := fixedValidator()
	result := v.Validate(domain.EntityServiceType, "Plumbing", nil)
	assert.True(t, result.IsValid)
	assert.Equal(t, "rc-plumb-general", result.Metadata["rate_card_id"])
}

func TestValidate_SubcategoryAcceptsNumericIndex(t *testing.T) {
	v := fixedValidator()
	ctx := map[string]interface{}{"_category_id": "cat-painting"}
	result := v.Validate(domain.EntityServiceSubcat, "2", ctx)
	assert.True(t, result.IsValid)
	assert.Equal(t, "Exterior Painting", result.NormalizedValue)
}

func TestValidate_BookingIDFormatCheck(t *testing.T) {
	v := fixedValidator()
	assert.True(t, v.Validate(domain.EntityBookingID, "ORDAB123456", nil).IsValid)
	assert.False(t, v.Validate(domain.EntityBookingID, "not-an-id", nil).IsValid)
}
