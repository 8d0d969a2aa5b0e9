// Package output defines the report envelope written by every output
// format, and the Writer interface the format writers implement.
package output

import (
	"time"

	"github.com/google/uuid"

	"github.com/depgate/depgate/pkg/defaults"
	"github.com/depgate/depgate/pkg/policy"
)

// Writer renders a report in one format.
type Writer interface {
	Write(r *Report) error
}

// Report wraps a verdict with run metadata.
type Report struct {
	RunID       string    `json:"run_id"`
	Tool        string    `json:"tool"`
	Version     string    `json:"version"`
	GeneratedAt time.Time `json:"generated_at"`
	DurationMs  float64   `json:"duration_ms"`

	RuleFiles   []string `json:"rule_files,omitempty"`
	Fingerprint string   `json:"ruleset_fingerprint,omitempty"`
	Ecosystem   string   `json:"ecosystem,omitempty"`

	Summary Summary         `json:"summary"`
	Verdict *policy.Verdict `json:"verdict"`
}

// Summary counts rule outcomes.
type Summary struct {
	Packages int            `json:"packages"`
	Rules    int            `json:"rules"`
	Passed   int            `json:"passed"`
	Failed   int            `json:"failed"`
	ByAction map[string]int `json:"failed_by_action,omitempty"`
}

// ReportOption sets optional report metadata.
type ReportOption func(*Report)

// WithRuleSet records the files and fingerprint of the evaluated rules.
func WithRuleSet(set *policy.RuleSet) ReportOption {
	return func(r *Report) {
		if set == nil {
			return
		}
		r.RuleFiles = set.Files
		r.Fingerprint = set.Fingerprint
	}
}

// WithEcosystem records the lockfile kind the records came from.
func WithEcosystem(eco string) ReportOption {
	return func(r *Report) { r.Ecosystem = eco }
}

// WithDuration records how long evaluation took.
func WithDuration(d time.Duration) ReportOption {
	return func(r *Report) { r.DurationMs = float64(d.Microseconds()) / 1000 }
}

// NewReport builds a report for v over the given number of packages.
func NewReport(v *policy.Verdict, packages int, opts ...ReportOption) *Report {
	if v == nil {
		v = &policy.Verdict{Pass: true, Actions: []policy.RuleAction{}}
	}
	r := &Report{
		RunID:       uuid.NewString(),
		Tool:        defaults.ToolName,
		Version:     defaults.Version,
		GeneratedAt: time.Now().UTC(),
		Verdict:     v,
		Summary:     summarize(v, packages),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func summarize(v *policy.Verdict, packages int) Summary {
	s := Summary{Packages: packages, Rules: len(v.Actions)}
	for _, a := range v.Actions {
		if a.Pass {
			s.Passed++
			continue
		}
		s.Failed++
		if s.ByAction == nil {
			s.ByAction = make(map[string]int)
		}
		s.ByAction[string(a.Action)]++
	}
	return s
}
