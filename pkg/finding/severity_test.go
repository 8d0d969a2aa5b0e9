package finding

import (
	"errors"
	"testing"
)

func TestSeverityIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		s    Severity
		want bool
	}{
		{Critical, true},
		{High, true},
		{Medium, true},
		{Low, true},
		{Nil, true},
		{"info", false},
		{"", false},
		{"CRITICAL", false}, // case-sensitive
	}
	for _, tt := range tests {
		t.Run(string(tt.s), func(t *testing.T) {
			t.Parallel()
			if got := tt.s.IsValid(); got != tt.want {
				t.Errorf("Severity(%q).IsValid() = %v, want %v", tt.s, got, tt.want)
			}
		})
	}
}

func TestParseSeverity(t *testing.T) {
	t.Parallel()

	sev, err := ParseSeverity("high")
	if err != nil {
		t.Fatalf("ParseSeverity(high): %v", err)
	}
	if sev != High {
		t.Errorf("ParseSeverity(high) = %q", sev)
	}

	_, err = ParseSeverity("severe")
	if !errors.Is(err, ErrInvalidSeverity) {
		t.Errorf("ParseSeverity(severe) error = %v, want ErrInvalidSeverity", err)
	}
}
