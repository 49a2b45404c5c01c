package utils

import (
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MinDisplayNameLength = 2
	MinPasswordLength    = 8
)

// ValidationError represents a validation error on a single form field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateEmail requires a bare address (no display name).
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &ValidationError{Field: "email", Message: "Email is required"}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return &ValidationError{Field: "email", Message: "Please enter a valid email address"}
	}
	return nil
}

// ValidateDisplayName validates the optional name given at sign-up.
// Rules: at least 2 characters when present
func ValidateDisplayName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	if utf8.RuneCountInString(name) < MinDisplayNameLength {
		return &ValidationError{Field: "name", Message: "Name must be at least 2 characters"}
	}
	return nil
}

// ValidatePassword validates a new password.
// Rules: at least 8 characters, with at least one letter and one number
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return &ValidationError{Field: "password", Message: "Password must be at least 8 characters"}
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return &ValidationError{Field: "password", Message: "Password must contain at least one letter and one number"}
	}
	return nil
}

// NormalizeEmail converts an email to lowercase for storage and lookup
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
