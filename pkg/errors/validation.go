package errors

import (
	"math"
	"slices"
	"strings"
	"unicode"
)

// ValidateFinite checks that a numeric input is neither NaN nor infinite.
// The field name is used in the error message.
func ValidateFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidInput, "%s must be a finite number, got %v", field, v)
	}
	return nil
}

// ValidatePositive checks that v is finite and strictly greater than zero.
func ValidatePositive(field string, v float64) error {
	if err := ValidateFinite(field, v); err != nil {
		return err
	}
	if v <= 0 {
		return New(ErrCodeInvalidInput, "%s must be positive, got %v", field, v)
	}
	return nil
}

// ValidateNonNegative checks that v is finite and not below zero.
func ValidateNonNegative(field string, v float64) error {
	if err := ValidateFinite(field, v); err != nil {
		return err
	}
	if v < 0 {
		return New(ErrCodeInvalidInput, "%s must not be negative, got %v", field, v)
	}
	return nil
}

// ValidateFormats checks every requested output format against the supported
// set. Formats are compared case-sensitively after trimming whitespace.
func ValidateFormats(formats []string, supported ...string) error {
	if len(formats) == 0 {
		return New(ErrCodeInvalidFormat, "at least one output format is required")
	}
	for _, f := range formats {
		if !slices.Contains(supported, strings.TrimSpace(f)) {
			return New(ErrCodeInvalidFormat, "invalid format: %s (must be one of %s)", f, strings.Join(supported, ", "))
		}
	}
	return nil
}

// ValidateItemID validates an explicit scene item identifier.
//
// The validation rules are intentionally conservative:
//   - No empty IDs
//   - No control characters
//   - Maximum length of 128 characters
func ValidateItemID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidScene, "item id cannot be empty")
	}

	const maxIDLength = 128
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidScene, "item id too long (max %d characters)", maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidScene, "item id contains invalid control characters")
		}
	}
	return nil
}
