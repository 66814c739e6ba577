package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePasswordOK(t *testing.T) {
	assert.Empty(t, ValidatePassword("alice", "Str0ngPass!"))
	assert.Empty(t, ValidatePassword("bob", "correct horse battery"))
}

func TestValidatePasswordTooShort(t *testing.T) {
	errs := ValidatePassword("alice", "short1")
	assert.Len(t, errs, 1)
	assert.Contains(t, errs[0], "too short")
}

func TestValidatePasswordEntirelyNumeric(t *testing.T) {
	errs := ValidatePassword("alice", "1234567890")
	assert.Len(t, errs, 1)
	assert.Contains(t, errs[0], "entirely numeric")
}

func TestValidatePasswordSimilarToUsername(t *testing.T) {
	errs := ValidatePassword("alice", "alice12345")
	assert.Len(t, errs, 1)
	assert.Contains(t, errs[0], "too similar")

	// Case-insensitive both ways
	errs = ValidatePassword("Alice", "xxALICExxx")
	assert.Len(t, errs, 1)
}

func TestValidatePasswordShortUsernameNotCompared(t *testing.T) {
	// Two-letter usernames would reject almost everything; similarity is
	// skipped for them.
	assert.Empty(t, ValidatePassword("al", "something-with-al"))
}

func TestValidatePasswordMultipleViolations(t *testing.T) {
	errs := ValidatePassword("12345", "12345")
	assert.Len(t, errs, 3)
}
