package validation

import (
	"strings"
	"unicode"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// ValidatePassword checks a candidate password against the registration
// policy and returns one message per violated rule. An empty slice means the
// password is acceptable.
//
// Rules:
//   - at least MinPasswordLength characters
//   - not entirely numeric
//   - not too similar to the username
func ValidatePassword(username, password string) []string {
	var errs []string

	if len(password) < MinPasswordLength {
		errs = append(errs, "This password is too short. It must contain at least 8 characters.")
	}

	if password != "" && isEntirelyNumeric(password) {
		errs = append(errs, "This password is entirely numeric.")
	}

	if tooSimilar(username, password) {
		errs = append(errs, "The password is too similar to the username.")
	}

	return errs
}

func isEntirelyNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// tooSimilar reports whether one of username/password contains the other,
// case-insensitively. Short usernames are ignored to avoid rejecting every
// password containing a common two-letter fragment.
func tooSimilar(username, password string) bool {
	u := strings.ToLower(strings.TrimSpace(username))
	p := strings.ToLower(password)
	if len(u) < 3 || p == "" {
		return false
	}
	return strings.Contains(p, u) || strings.Contains(u, p)
}
