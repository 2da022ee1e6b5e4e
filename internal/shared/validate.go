package shared

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var emailPattern = regexp.MustCompile(
	`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`,
)

const passwordSpecials = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

var commonPasswords = []string{"password123", "12345678", "qwerty123", "admin123", "welcome1"}

// NormalizeEmail trims and lower-cases an address before it is sent anywhere.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail reports a validation error for a missing or malformed address.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("%w: please enter a valid email address", ErrInvalidInput)
	}
	return nil
}

// ValidatePassword applies the registration password rules.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidInput)
	}

	if n := len([]rune(password)); n < 8 || n > 128 {
		return fmt.Errorf("%w: password must be between 8 and 128 characters", ErrInvalidInput)
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}

	switch {
	case !upper:
		return fmt.Errorf("%w: password must contain at least one uppercase letter", ErrInvalidInput)
	case !lower:
		return fmt.Errorf("%w: password must contain at least one lowercase letter", ErrInvalidInput)
	case !digit:
		return fmt.Errorf("%w: password must contain at least one number", ErrInvalidInput)
	case !special:
		return fmt.Errorf("%w: password must contain at least one special character", ErrInvalidInput)
	}

	lowered := strings.ToLower(password)
	for _, common := range commonPasswords {
		if lowered == common {
			return fmt.Errorf("%w: this password is too common", ErrInvalidInput)
		}
	}

	if hasRun(password, 3) {
		return fmt.Errorf("%w: password cannot contain repeating characters", ErrInvalidInput)
	}

	return nil
}

// hasRun reports whether any rune repeats n or more times consecutively.
func hasRun(s string, n int) bool {
	var prev rune
	count := 0
	for i, r := range s {
		if i > 0 && r == prev {
			count++
		} else {
			count = 1
		}
		if count >= n {
			return true
		}
		prev = r
	}
	return false
}
