// Package format holds pure formatting and field-validation helpers. Nothing
// here returns an error: malformed input yields a sentinel ("N/A", the input
// unchanged, or a Result with Valid=false) so callers always have a defined
// fallback.
package format

import (
	"strings"

	"github.com/sells-group/validator-cli/internal/model"
)

// NormalizePhone strips everything but digits, for comparisons.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Phone renders a phone number for display. Ten digits become
// "(AAA) BBB-CCCC", eleven digits with a leading 1 become
// "+1 (AAA) BBB-CCCC", anything else comes back unchanged, and an empty
// input yields "N/A".
func Phone(phone string) string {
	if phone == "" {
		return "N/A"
	}

	digits := NormalizePhone(phone)
	switch {
	case len(digits) == 10:
		return "(" + digits[0:3] + ") " + digits[3:6] + "-" + digits[6:]
	case len(digits) == 11 && digits[0] == '1':
		return "+1 (" + digits[1:4] + ") " + digits[4:7] + "-" + digits[7:]
	default:
		return phone
	}
}

// Address renders a one-line display address, omitting an empty second line.
func Address(a model.ProviderAddress) string {
	parts := make([]string, 0, 3)
	if a.Address1 != "" {
		parts = append(parts, a.Address1)
	}
	if a.Address2 != "" {
		parts = append(parts, a.Address2)
	}
	parts = append(parts, a.City+", "+a.State+" "+a.Zip)
	return strings.Join(parts, ", ")
}

// Sanitize trims an input string and collapses runs of inner whitespace.
func Sanitize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
