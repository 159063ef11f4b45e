package authcore

import (
	"net/mail"
	"strings"
	"unicode"
)

// DefaultEmailValidator accepts RFC 5322 addresses without a display
// name, capped at 254 bytes.
func DefaultEmailValidator(email string) ValidationResult {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" || len(trimmed) > 254 {
		return ValidationResult{Errors: []string{"email"}}
	}

	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return ValidationResult{Errors: []string{"email"}}
	}
	return ValidationResult{Valid: true}
}

// DefaultPasswordValidator requires at least 8 characters and at least
// one digit. The 72-byte ceiling mirrors what bcrypt will accept, so a
// password that validates always hashes.
func DefaultPasswordValidator(password string) ValidationResult {
	if len(password) < 8 || len(password) > 72 {
		return ValidationResult{Errors: []string{"password"}}
	}

	hasDigit := false
	for _, r := range password {
		if unicode.IsDigit(r) {
			hasDigit = true
			break
		}
	}
	if !hasDigit {
		return ValidationResult{Errors: []string{"password"}}
	}
	return ValidationResult{Valid: true}
}
