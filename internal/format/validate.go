package format

import (
	"regexp"
	"strings"
)

var (
	emailRE = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	zipRE   = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	stateRE = regexp.MustCompile(`^[A-Z]{2}$`)
	upperRE = regexp.MustCompile(`[A-Z]`)
	lowerRE = regexp.MustCompile(`[a-z]`)
	digitRE = regexp.MustCompile(`\d`)
)

// Result is the outcome of a multi-field check.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

func result(errs []string) Result {
	return Result{Valid: len(errs) == 0, Errors: errs}
}

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailRE.MatchString(s)
}

// ValidPhone accepts ten digits, or eleven digits starting with 1, in any
// punctuation.
func ValidPhone(s string) bool {
	digits := NormalizePhone(s)
	return len(digits) == 10 || (len(digits) == 11 && digits[0] == '1')
}

// ValidZip accepts US 5-digit and ZIP+4 codes.
func ValidZip(s string) bool {
	return zipRE.MatchString(s)
}

// ValidState accepts two-letter US state abbreviations, case-insensitively.
func ValidState(s string) bool {
	return stateRE.MatchString(strings.ToUpper(s))
}

// CheckPassword applies the registration password policy.
func CheckPassword(password string) Result {
	var errs []string
	if len(password) < 8 {
		errs = append(errs, "Password must be at least 8 characters long")
	}
	if !upperRE.MatchString(password) {
		errs = append(errs, "Password must contain at least one uppercase letter")
	}
	if !lowerRE.MatchString(password) {
		errs = append(errs, "Password must contain at least one lowercase letter")
	}
	if !digitRE.MatchString(password) {
		errs = append(errs, "Password must contain at least one number")
	}
	return result(errs)
}

// CheckAddress validates the required fields of an address before submit.
func CheckAddress(address1, city, state, zip string) Result {
	var errs []string
	if strings.TrimSpace(address1) == "" {
		errs = append(errs, "Address line 1 is required")
	}
	if strings.TrimSpace(city) == "" {
		errs = append(errs, "City is required")
	}
	if !ValidState(state) {
		errs = append(errs, "Valid state abbreviation is required")
	}
	if !ValidZip(zip) {
		errs = append(errs, "Valid ZIP code is required")
	}
	return result(errs)
}
