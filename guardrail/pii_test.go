package guardrail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail_KeepsOnlyFirstChar(t *testing.T) {
	assert.Equal(t, "j*****@example.com", maskEmail("joanne@example.com"))
}

func TestMaskEmail_ShortLocalPartFullyMasked(t *testing.T) {
	assert.Equal(t, "**@example.com", maskEmail("jo@example.com"))
}

func TestMaskDigitsKeepLast_Phone(t *testing.T) {
	masked := maskDigitsKeepLast("123-456-7890", 4, "***-***-%s", "[PHONE]")
	assert.Equal(t, "***-***-7890", masked)
}

func TestMaskPAN_KeepsLastCharOnly(t *testing.T) {
	assert.Equal(t, "*********C", maskPAN("ABCDE1234C"))
}

func TestDetectAllPII_FindsEmailAndPhone(t *testing.T) {
	text := "reach me at jane@example.com or 123-456-7890"
	detected := DetectAllPII(text, nil)
	assert.Contains(t, detected, PIIEmail)
	assert.Contains(t, detected, PIIPhone)
}

func TestMaskPII_ReplacesAllOccurrencesAndCounts(t *testing.T) {
	text := "email me at jane@example.com"
	masked, counts := MaskPII(text, []PIIType{PIIEmail})
	assert.NotContains(t, masked, "jane@example.com")
	assert.Equal(t, 1, counts[PIIEmail])
}

func TestHasPII_FalseOnCleanText(t *testing.T) {
	assert.False(t, HasPII("book a plumber for tomorrow", nil))
}
