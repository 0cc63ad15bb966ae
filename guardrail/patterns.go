// Package guardrail implements the input/output check pipeline described
// in §4.5: a GuardrailManager fans checks out in parallel and reduces them
// with BLOCK > SANITIZE > ALLOW priority.
package guardrail

import "regexp"

// PIIType names one category of detectable personal information.
type PIIType string

const (
	PIIEmail      PIIType = "email"
	PIIPhone      PIIType = "phone"
	PIISSN        PIIType = "ssn"
	PIICreditCard PIIType = "credit_card"
	PIIAadhaar    PIIType = "aadhaar"
	PIIPan        PIIType = "pan"
)

// AllPIITypes is the detection order used when no subset is configured.
var AllPIITypes = []PIIType{PIIEmail, PIIPhone, PIISSN, PIICreditCard, PIIAadhaar, PIIPan}

var emailPattern = regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`),
	regexp.MustCompile(`\(\d{3}\)\s?\d{3}[-.\s]?\d{4}`),
	regexp.MustCompile(`\+\d{1,3}[-.\s]?\d{3}[-.\s]?\d{3}[-.\s]?\d{4}`),
	regexp.MustCompile(`\b\d{10}\b`),
}

var ssnPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
	regexp.MustCompile(`\b\d{9}\b`),
}

var creditCardPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b4\d{3}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`),
	regexp.MustCompile(`\b5[1-5]\d{2}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`),
	regexp.MustCompile(`\b3[47]\d{2}[-\s]?\d{6}[-\s]?\d{5}\b`),
	regexp.MustCompile(`\b6(?:011|5\d{2})[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`),
}

var aadhaarPattern = regexp.MustCompile(`\b\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`)
var panPattern = regexp.MustCompile(`\b[A-Z]{5}\d{4}[A-Z]\b`)

var toxicKeywordPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bfuck`),
	regexp.MustCompile(`(?i)\bshit`),
	regexp.MustCompile(`(?i)\bdamn`),
	regexp.MustCompile(`(?i)\bbitch`),
	regexp.MustCompile(`(?i)\basshole`),
	regexp.MustCompile(`(?i)\bbastard`),
	regexp.MustCompile(`(?i)\b(?:hate|kill|murder|attack)\s+(?:all|every|those)\b`),
	regexp.MustCompile(`(?i)\b(?:racist|sexist|homophobic|transphobic)\b`),
}

func patternsFor(t PIIType) []*regexp.Regexp {
	switch t {
	case PIIEmail:
		return []*regexp.Regexp{emailPattern}
	case PIIPhone:
		return phonePatterns
	case PIISSN:
		return ssnPatterns
	case PIICreditCard:
		return creditCardPatterns
	case PIIAadhaar:
		return []*regexp.Regexp{aadhaarPattern}
	case PIIPan:
		return []*regexp.Regexp{panPattern}
	default:
		return nil
	}
}
