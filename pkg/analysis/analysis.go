// Package analysis defines the dependency-analysis records that policies are
// evaluated against, and decodes them from the analysis service's JSON.
//
// Records are read-only once decoded: the policy engine never mutates them.
package analysis

import (
	"errors"
	"fmt"

	"github.com/depgate/depgate/pkg/finding"
)

// ErrMalformedRecord is returned when a record lacks a required field or
// carries a value outside its enumeration.
var ErrMalformedRecord = errors.New("analysis: malformed package record")

// Ecosystem is the package registry a record belongs to.
type Ecosystem string

const (
	EcosystemNPM      Ecosystem = "npm"
	EcosystemPyPI     Ecosystem = "pypi"
	EcosystemRubyGems Ecosystem = "rubygems"
	EcosystemMaven    Ecosystem = "maven"
	EcosystemNuGet    Ecosystem = "nuget"
	EcosystemGolang   Ecosystem = "golang"
	EcosystemCargo    Ecosystem = "cargo"
)

// Ecosystems lists every known ecosystem.
var Ecosystems = []Ecosystem{
	EcosystemNPM, EcosystemPyPI, EcosystemRubyGems, EcosystemMaven,
	EcosystemNuGet, EcosystemGolang, EcosystemCargo,
}

// IsValid reports whether e is a known ecosystem.
func (e Ecosystem) IsValid() bool {
	switch e {
	case EcosystemNPM, EcosystemPyPI, EcosystemRubyGems, EcosystemMaven, EcosystemNuGet, EcosystemGolang, EcosystemCargo:
		return true
	}
	return false
}

// LockfileEcosystems maps the lockfile kinds accepted on the command line to
// the ecosystem their packages are reported under.
var LockfileEcosystems = map[string]Ecosystem{
	"npm":    EcosystemNPM,
	"pip":    EcosystemPyPI,
	"poetry": EcosystemPyPI,
	"gem":    EcosystemRubyGems,
	"maven":  EcosystemMaven,
	"nuget":  EcosystemNuGet,
}

// RiskVector holds the per-domain sub-scores of a package.
// Scores are conventionally in [0,100]; higher is safer.
type RiskVector struct {
	Author          float64 `json:"author"`
	Vulnerabilities float64 `json:"vulnerabilities"`
	Engineering     float64 `json:"engineering"`
	MaliciousCode   float64 `json:"malicious_code"`
	License         float64 `json:"license"`
	Total           float64 `json:"total"`
}

// Issue is a single problem the analysis attached to a package.
type Issue struct {
	Tag         string           `json:"tag"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Severity    finding.Severity `json:"severity"`
	Domain      finding.Domain   `json:"domain"`
}

// PackageRecord is the analysis result for one resolved dependency.
type PackageRecord struct {
	Name               string            `json:"name"`
	Version            string            `json:"version"`
	Status             string            `json:"status,omitempty"`
	Ecosystem          Ecosystem         `json:"type"`
	License            string            `json:"license"`
	Score              float64           `json:"package_score"`
	NumDependencies    int               `json:"num_dependencies"`
	NumVulnerabilities int               `json:"num_vulnerabilities"`
	RiskVectors        RiskVector        `json:"riskVectors"`
	Dependencies       map[string]string `json:"dependencies,omitempty"`
	Issues             []Issue           `json:"issues"`
}

// ID returns "name:version", the form used in policy messages.
func (p *PackageRecord) ID() string {
	return p.Name + ":" + p.Version
}

// Validate checks the fields the policy filters read.
func (p *PackageRecord) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: missing name", ErrMalformedRecord)
	}
	if p.Version == "" {
		return fmt.Errorf("%w: package %q: missing version", ErrMalformedRecord, p.Name)
	}
	if !p.Ecosystem.IsValid() {
		return fmt.Errorf("%w: package %q: unknown ecosystem %q", ErrMalformedRecord, p.ID(), p.Ecosystem)
	}
	for i, iss := range p.Issues {
		if iss.Tag == "" {
			return fmt.Errorf("%w: package %q: issue %d: missing tag", ErrMalformedRecord, p.ID(), i)
		}
		if !iss.Severity.IsValid() {
			return fmt.Errorf("%w: package %q: issue %q: unknown severity %q", ErrMalformedRecord, p.ID(), iss.Tag, iss.Severity)
		}
		if !iss.Domain.IsValid() {
			return fmt.Errorf("%w: package %q: issue %q: unknown domain %q", ErrMalformedRecord, p.ID(), iss.Tag, iss.Domain)
		}
	}
	return nil
}

// Validate checks every record in order and returns the first failure.
func Validate(pkgs []PackageRecord) error {
	for i := range pkgs {
		if err := pkgs[i].Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}
