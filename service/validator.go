package service

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/heimdall-auth/heimdall/core"
)

// specialChars is the fixed set of accepted special characters
const specialChars = `!@#$%^&*()-_=+[]{};:'",.<>/?\|~` + "`"

// ValidatePassword enforces the registration password policy. It fails on
// the first violated rule and performs no I/O.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", core.ErrValidation)
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
		case strings.ContainsRune(specialChars, r):
			special = true
		}
	}

	switch {
	case !upper:
		return fmt.Errorf("%w: password must contain an upper-case letter", core.ErrValidation)
	case !lower:
		return fmt.Errorf("%w: password must contain a lower-case letter", core.ErrValidation)
	case !digit:
		return fmt.Errorf("%w: password must contain a digit", core.ErrValidation)
	case !special:
		return fmt.Errorf("%w: password must contain a special character", core.ErrValidation)
	}

	return nil
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
// Repository lookups and rate-limit keys always use the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail performs basic identity-field hygiene on an already
// normalized address. Full RFC validation belongs to the input-shape layer.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", core.ErrValidation)
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return fmt.Errorf("%w: malformed email address", core.ErrValidation)
	}
	return nil
}
