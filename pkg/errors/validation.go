package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateCoordinate validates a single position component.
// NaN and infinities would poison every angle computed from the node.
func ValidateCoordinate(name string, v float64) error {
	if math.IsNaN(v) {
		return New(ErrCodeInvalidInput, "%s is NaN", name)
	}
	if math.IsInf(v, 0) {
		return New(ErrCodeInvalidInput, "%s is infinite", name)
	}
	return nil
}

// ValidatePoint validates both components of a position or offset.
func ValidatePoint(x, y float64) error {
	if err := ValidateCoordinate("x", x); err != nil {
		return err
	}
	return ValidateCoordinate("y", y)
}

// ValidateNodeID rejects ids that can never be issued by the store.
func ValidateNodeID(id int) error {
	if id <= 0 {
		return New(ErrCodeInvalidReference, "node id must be positive, got %d", id)
	}
	return nil
}

// ValidateReason validates a free-text overflow reason.
//
// The validation rules are intentionally conservative:
//   - No empty reasons
//   - No control characters
//   - Maximum length of 256 characters
func ValidateReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return New(ErrCodeInvalidInput, "reason cannot be empty")
	}
	if len(reason) > 256 {
		return New(ErrCodeInvalidInput, "reason too long (max 256 characters)")
	}
	for _, r := range reason {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "reason contains invalid control characters")
		}
	}
	return nil
}
