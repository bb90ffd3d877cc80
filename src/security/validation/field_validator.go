// src/security/validation/field_validator.go
package validation

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/santyago-pixel/portfolio-analyzer/src/logger"
)

var ErrValidationFailed = fmt.Errorf("validation failed")

const (
	DefaultMaxStringLength = 255
	MaxDatasetNameLength   = 100
	MaxAssetNameLength     = 100
)

// ValidateStringNotEmpty checks if a string is not empty after trimming.
func ValidateStringNotEmpty(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateStringMaxLength checks if a string's UTF-8 character count is within max bounds.
func ValidateStringMaxLength(s string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(s) > maxLength {
		return fmt.Errorf("%w: %s exceeds maximum length of %d characters", ErrValidationFailed, fieldName, maxLength)
	}
	return nil
}

// ValidateFloatString parses a string to float and checks if it's within a range.
// An empty string reads as zero; callers that require a value should run
// ValidateStringNotEmpty first.
func ValidateFloatString(s, fieldName string, allowNegative bool, minVal, maxVal float64) (float64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, nil
	}

	val, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s ('%s') is not a valid float: %v", ErrValidationFailed, fieldName, s, err)
	}
	if !allowNegative && val < 0 {
		logger.L.Warn("Negative value not allowed for field", "field", fieldName, "value", val)
		return 0, fmt.Errorf("%w: %s cannot be negative", ErrValidationFailed, fieldName)
	}
	if val < minVal || val > maxVal {
		logger.L.Warn("Float value out of range", "field", fieldName, "value", val, "min", minVal, "max", maxVal)
		return 0, fmt.Errorf("%w: %s must be between %.2f and %.2f, got %.2f", ErrValidationFailed, fieldName, minVal, maxVal, val)
	}
	return val, nil
}
