package policy

import (
	"sync/atomic"

	"github.com/depgate/depgate/pkg/analysis"
	"github.com/depgate/depgate/pkg/finding"
)

func pkg(name, version, license string, issues ...analysis.Issue) analysis.PackageRecord {
	return analysis.PackageRecord{
		Name:      name,
		Version:   version,
		Ecosystem: analysis.EcosystemNPM,
		License:   license,
		RiskVectors: analysis.RiskVector{
			Author: 100, Vulnerabilities: 100, Engineering: 100,
			MaliciousCode: 100, License: 100, Total: 100,
		},
		Issues: issues,
	}
}

func issue(tag string, sev finding.Severity, dom finding.Domain) analysis.Issue {
	return analysis.Issue{Tag: tag, Severity: sev, Domain: dom}
}

// stubFilter returns a fixed result and counts calls.
type stubFilter struct {
	res   Result
	calls atomic.Int32
}

func pass(msgs ...string) *stubFilter {
	return &stubFilter{res: Result{Pass: true, Messages: msgs}}
}

func fail(msgs ...string) *stubFilter {
	return &stubFilter{res: Result{Pass: false, Messages: msgs}}
}

func (s *stubFilter) Evaluate([]analysis.PackageRecord) Result {
	s.calls.Add(1)
	return s.res
}

func ptr(f float64) *float64 { return &f }
