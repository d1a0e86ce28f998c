package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidLimit is returned when the profile's daily limit is not
// positive. The engine never divides by a non-positive limit.
var ErrInvalidLimit = errors.New("daily limit must be positive")

// invalidLimit wraps ErrInvalidLimit with the offending value.
func invalidLimit(limit float64) error {
	return fmt.Errorf("%w: got %v", ErrInvalidLimit, limit)
}
