package identity

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

// MinPasswordLength counts runes after trimming surrounding whitespace.
const MinPasswordLength = 8

const (
	msgEmailEmpty       = "Email cannot be empty"
	msgPasswordEmpty    = "Password cannot be empty"
	msgEmailFormat      = "Invalid email format"
	msgPasswordTooShort = "Password must be at least 8 characters"
)

// emailRe is deliberately permissive: dotted word groups (or a single letter,
// or 2+ word chars) before the @, then an IPv4 quad or letter-led labels with
// a 2-4 letter final label.
var emailRe = regexp.MustCompile(
	`^(([\w-]+\.)+[\w-]+|([a-zA-Z]|[\w-]{2,}))@` +
		`((([0-1]?[0-9]{1,2}|25[0-5]|2[0-4][0-9])\.([0-1]?[0-9]{1,2}|25[0-5]|2[0-4][0-9])\.` +
		`([0-1]?[0-9]{1,2}|25[0-5]|2[0-4][0-9])\.([0-1]?[0-9]{1,2}|25[0-5]|2[0-4][0-9]))|` +
		`([a-zA-Z]+[\w-]+\.)+[a-zA-Z]{2,4})$`,
)

// IsEmailAddress reports whether s has an acceptable email shape.
func IsEmailAddress(s string) bool { return emailRe.MatchString(s) }

// IsValidPasswordLength reports whether the trimmed password is long enough.
func IsValidPasswordLength(pwd string) bool {
	return validation.Validate(strings.TrimSpace(pwd),
		validation.Required,
		validation.RuneLength(MinPasswordLength, 0),
	) == nil
}

// ValidateCredentials checks c in a fixed order and returns the first failure
// as a ValidationError. Rules run one by one (not ValidateStruct) so the
// reported message is deterministic.
func ValidateCredentials(c Credentials) error {
	checks := []struct {
		value any
		rules []validation.Rule
	}{
		{c.Email, []validation.Rule{validation.Required.Error(msgEmailEmpty)}},
		{c.Password, []validation.Rule{validation.Required.Error(msgPasswordEmpty)}},
		{c.Email, []validation.Rule{validation.NewStringRule(IsEmailAddress, msgEmailFormat)}},
		{c.Password, []validation.Rule{validation.NewStringRule(IsValidPasswordLength, msgPasswordTooShort)}},
	}

	for _, ch := range checks {
		if err := validation.Validate(ch.value, ch.rules...); err != nil {
			return ValidationError{Message: err.Error()}
		}
	}
	return nil
}
