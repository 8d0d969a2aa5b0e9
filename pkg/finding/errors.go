package finding

import "errors"

// Sentinel errors for invalid finding values.
// Callers should use errors.Is() to check for these.
var (
	// ErrInvalidSeverity indicates a severity string outside
	// nil, low, medium, high and critical.
	ErrInvalidSeverity = errors.New("finding: invalid severity")

	// ErrInvalidDomain indicates a risk domain the analysis service
	// does not report.
	ErrInvalidDomain = errors.New("finding: invalid domain")
)
