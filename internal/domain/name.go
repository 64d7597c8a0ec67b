package domain

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"account-ledger/internal/errors"
)

const (
	MinHolderNameLength = 2
	MaxHolderNameLength = 50
)

var holderNamePattern = regexp.MustCompile(`^[\p{L} .'\-]+$`)

// ValidateHolderName trims name and checks it against the holder name rules.
// The trimmed name is returned on success.
func ValidateHolderName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.NewAppError(errors.ValidationFailed, "account holder name cannot be empty")
	}

	length := utf8.RuneCountInString(name)
	if length < MinHolderNameLength {
		return "", errors.NewAppErrorf(errors.ValidationFailed,
			"account holder name must be at least %d characters", MinHolderNameLength)
	}
	if length > MaxHolderNameLength {
		return "", errors.NewAppErrorf(errors.ValidationFailed,
			"account holder name must be at most %d characters", MaxHolderNameLength)
	}

	if !holderNamePattern.MatchString(name) {
		return "", errors.NewAppError(errors.ValidationFailed,
			"account holder name may only contain letters, spaces, hyphens, apostrophes and periods")
	}

	return name, nil
}
