package finding

import "fmt"

// Severity represents the severity level of an issue reported for a package.
// Levels are ordered by increasing risk: nil < low < medium < high < critical.
type Severity string

const (
	// Nil marks an issue that carries no risk on its own.
	Nil Severity = "nil"

	// Low represents limited impact.
	Low Severity = "low"

	// Medium represents moderate impact.
	Medium Severity = "medium"

	// High represents significant impact requiring prompt attention.
	High Severity = "high"

	// Critical represents immediate compromise (malware, known exploited CVE).
	Critical Severity = "critical"
)

// Severities lists every level in ascending order.
var Severities = []Severity{Nil, Low, Medium, High, Critical}

// IsValid reports whether s is a recognized severity level.
func (s Severity) IsValid() bool {
	switch s {
	case Nil, Low, Medium, High, Critical:
		return true
	}
	return false
}

// String returns the severity as a string.
func (s Severity) String() string {
	return string(s)
}

// ParseSeverity validates s and returns it as a Severity.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(s)
	if !sev.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSeverity, s)
	}
	return sev, nil
}
