package finding

import "fmt"

// Domain is the risk category an issue belongs to.
type Domain string

const (
	DomainAuthor        Domain = "author"
	DomainEngineering   Domain = "engineering"
	DomainLicense       Domain = "license"
	DomainMaliciousCode Domain = "malicious_code"
	DomainVulnerability Domain = "vulnerability"

	// DomainTotal is the aggregate over every other domain.
	DomainTotal Domain = "total"
)

// IsValid reports whether d is a domain the analysis service reports.
func (d Domain) IsValid() bool {
	switch d {
	case DomainAuthor, DomainEngineering, DomainLicense, DomainMaliciousCode, DomainVulnerability, DomainTotal:
		return true
	}
	return false
}

func (d Domain) String() string {
	return string(d)
}

// ParseDomain validates s and returns it as a Domain.
func ParseDomain(s string) (Domain, error) {
	d := Domain(s)
	if !d.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDomain, s)
	}
	return d, nil
}
