package policy

import (
	"fmt"
	"strconv"

	"github.com/depgate/depgate/pkg/analysis"
	"github.com/depgate/depgate/pkg/finding"
)

// RiskDomain is a domain key accepted inside a risks spec.
type RiskDomain string

const (
	RiskMalware       RiskDomain = "malware"
	RiskEngineering   RiskDomain = "engineering"
	RiskLicense       RiskDomain = "license"
	RiskAuthor        RiskDomain = "author"
	RiskVulnerability RiskDomain = "vulnerability"
)

// RiskDomains lists the accepted domain keys.
var RiskDomains = []RiskDomain{RiskMalware, RiskEngineering, RiskLicense, RiskAuthor, RiskVulnerability}

// ParseRiskDomain validates s as a risk domain key.
func ParseRiskDomain(s string) (RiskDomain, error) {
	switch d := RiskDomain(s); d {
	case RiskMalware, RiskEngineering, RiskLicense, RiskAuthor, RiskVulnerability:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDomain, s)
}

// IssueDomain is the issue domain the key selects.
func (d RiskDomain) IssueDomain() finding.Domain {
	switch d {
	case RiskMalware:
		return finding.DomainMaliciousCode
	case RiskEngineering:
		return finding.DomainEngineering
	case RiskLicense:
		return finding.DomainLicense
	case RiskAuthor:
		return finding.DomainAuthor
	case RiskVulnerability:
		return finding.DomainVulnerability
	}
	return ""
}

// Score is the sub-score of rv the key's threshold compares against.
func (d RiskDomain) Score(rv analysis.RiskVector) float64 {
	switch d {
	case RiskMalware:
		return rv.MaliciousCode
	case RiskEngineering:
		return rv.Engineering
	case RiskLicense:
		return rv.License
	case RiskAuthor:
		return rv.Author
	case RiskVulnerability:
		return rv.Vulnerabilities
	}
	return 0
}

// RiskCriteria are the checks configured for one domain. Zero values are unset.
type RiskCriteria struct {
	Severity  finding.Severity
	Tag       string
	Threshold *float64
}

// RiskEntry pairs a domain with its criteria.
type RiskEntry struct {
	Domain   RiskDomain
	Criteria RiskCriteria
}

type riskFilter struct {
	entries []RiskEntry
	// issue domain -> index into entries
	byIssueDomain map[finding.Domain]int
}

// NewRiskFilter returns a filter over per-domain risk data. Entries are
// checked in the given order. Each domain may appear once.
func NewRiskFilter(entries ...RiskEntry) (Filter, error) {
	f := &riskFilter{
		entries:       make([]RiskEntry, 0, len(entries)),
		byIssueDomain: make(map[finding.Domain]int, len(entries)),
	}
	for _, e := range entries {
		if _, err := ParseRiskDomain(string(e.Domain)); err != nil {
			return nil, err
		}
		if e.Criteria.Severity != "" && !e.Criteria.Severity.IsValid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSeverity, e.Criteria.Severity)
		}
		dom := e.Domain.IssueDomain()
		if _, dup := f.byIssueDomain[dom]; dup {
			return nil, fmt.Errorf("%w: domain %q given twice", ErrInvalidSpec, e.Domain)
		}
		if e.Criteria.Threshold != nil {
			t := *e.Criteria.Threshold
			e.Criteria.Threshold = &t
		}
		f.byIssueDomain[dom] = len(f.entries)
		f.entries = append(f.entries, e)
	}
	return f, nil
}

func (f *riskFilter) Evaluate(pkgs []analysis.PackageRecord) Result {
	var out outcome
	for i := range pkgs {
		p := &pkgs[i]
		for _, e := range f.entries {
			if e.Criteria.Threshold == nil {
				continue
			}
			score := e.Domain.Score(p.RiskVectors)
			if score < *e.Criteria.Threshold {
				out.fail(fmt.Sprintf("%s risk domain for %s score at %s - must be at least %s",
					e.Domain, p.ID(), formatScore(score), formatScore(*e.Criteria.Threshold)))
			}
		}
		for _, issue := range p.Issues {
			idx, ok := f.byIssueDomain[issue.Domain]
			if !ok {
				continue
			}
			c := f.entries[idx].Criteria
			// an entry without severity does not match by severity, nil-severity issues included
			if c.Severity != "" && c.Severity == issue.Severity {
				out.fail(pkgMessage(p, `"`+issue.Tag+`" with severity "`+string(issue.Severity)+`"`))
			}
			if c.Tag != "" && c.Tag == issue.Tag {
				out.fail(pkgMessage(p, `issue "`+issue.Tag+`"`))
			}
		}
	}
	return out.result()
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
