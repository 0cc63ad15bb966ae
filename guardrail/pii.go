package guardrail

import (
	"regexp"
	"strings"
)

var nonDigit = regexp.MustCompile(`\D`)

// DetectAllPII runs each requested PII type's patterns against text and
// returns the matched substrings keyed by type. Grounded on
// original_source's detect_all_pii.
func DetectAllPII(text string, types []PIIType) map[PIIType][]string {
	if len(types) == 0 {
		types = AllPIITypes
	}
	out := map[PIIType][]string{}
	for _, t := range types {
		var found []string
		for _, p := range patternsFor(t) {
			found = append(found, p.FindAllString(text, -1)...)
		}
		if len(found) > 0 {
			out[t] = found
		}
	}
	return out
}

func maskValue(t PIIType, v string) string {
	switch t {
	case PIIEmail:
		return maskEmail(v)
	case PIIPhone:
		return maskDigitsKeepLast(v, 4, "***-***-%s", "[PHONE]")
	case PIISSN:
		return maskSSN(v)
	case PIICreditCard:
		return maskDigitsKeepLast(v, 4, "****-****-****-%s", "[CARD]")
	case PIIAadhaar:
		return maskAadhaar(v)
	case PIIPan:
		return maskPAN(v)
	default:
		return v
	}
}

func maskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at < 0 {
		return "[EMAIL]"
	}
	local, domain := email[:at], email[at+1:]
	var masked string
	switch {
	case len(local) <= 2:
		masked = strings.Repeat("*", len(local))
	default:
		masked = string(local[0]) + strings.Repeat("*", len(local)-1)
	}
	return masked + "@" + domain
}

func maskDigitsKeepLast(v string, keep int, format, fallback string) string {
	digits := nonDigit.ReplaceAllString(v, "")
	if len(digits) < keep {
		return fallback
	}
	return sprintfLast(format, digits[len(digits)-keep:])
}

func maskSSN(v string) string {
	digits := nonDigit.ReplaceAllString(v, "")
	if len(digits) != 9 {
		return "[SSN]"
	}
	return "***-**-" + digits[len(digits)-4:]
}

func maskAadhaar(v string) string {
	digits := nonDigit.ReplaceAllString(v, "")
	if len(digits) != 12 {
		return "[AADHAAR]"
	}
	return "****-****-" + digits[len(digits)-4:]
}

func maskPAN(v string) string {
	if len(v) < 2 {
		return "[PAN]"
	}
	return strings.Repeat("*", len(v)-1) + string(v[len(v)-1])
}

func sprintfLast(format, last string) string {
	idx := strings.Index(format, "%s")
	if idx < 0 {
		return format
	}
	return format[:idx] + last + format[idx+2:]
}

// MaskPII replaces every detected occurrence of the requested PII types
// with its masked form and returns the masked text plus per-type counts,
// mirroring original_source's mask_pii_in_text.
func MaskPII(text string, types []PIIType) (string, map[PIIType]int) {
	if len(types) == 0 {
		types = AllPIITypes
	}
	masked := text
	counts := map[PIIType]int{}
	for _, t := range types {
		for _, p := range patternsFor(t) {
			matches := p.FindAllString(masked, -1)
			for _, m := range matches {
				masked = strings.Replace(masked, m, maskValue(t, m), 1)
				counts[t]++
			}
		}
	}
	for t, c := range counts {
		if c == 0 {
			delete(counts, t)
		}
	}
	return masked, counts
}

// HasPII reports whether text contains any of the requested PII types.
func HasPII(text string, types []PIIType) bool {
	return len(DetectAllPII(text, types)) > 0
}
