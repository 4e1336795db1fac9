// Package phone provides contact address normalization.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const (
	defaultRegion        = "BR"
	defaultCountryPrefix = "55"
)

// Canonical converts a raw contact address into the canonical contact id:
// a country-prefixed digit string. It is total and deterministic; malformed
// input normalizes to a best-effort digit string rather than failing.
func Canonical(raw string) string {
	trimmed := strings.TrimSpace(raw)

	// Channel addresses arrive as JIDs like "5511999999999@s.whatsapp.net".
	if at := strings.IndexByte(trimmed, '@'); at >= 0 {
		trimmed = trimmed[:at]
	}

	if number, err := phonenumbers.Parse(trimmed, defaultRegion); err == nil && phonenumbers.IsValidNumber(number) {
		return strings.TrimPrefix(phonenumbers.Format(number, phonenumbers.E164), "+")
	}

	digits := stripNonDigits(trimmed)
	if isLocalLength(digits) {
		return defaultCountryPrefix + digits
	}
	return digits
}

func stripNonDigits(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// isLocalLength reports whether the digit string plausibly is a national
// number missing its country prefix (BR numbers are 10 or 11 digits).
func isLocalLength(digits string) bool {
	if strings.HasPrefix(digits, defaultCountryPrefix) && len(digits) >= 12 {
		return false
	}
	return len(digits) == 10 || len(digits) == 11
}
