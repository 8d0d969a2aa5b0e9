package analysis

import (
	"fmt"
	"io"

	"github.com/depgate/depgate/pkg/finding"
	"github.com/depgate/depgate/pkg/iohelper"
	"github.com/depgate/depgate/pkg/jsonutil"
)

// Wire shapes. Pointers distinguish "absent" from the zero value so a
// record missing a field fails instead of silently scoring 0.

type wireRiskVector struct {
	Author          *float64 `json:"author"`
	Vulnerabilities *float64 `json:"vulnerabilities"`
	Engineering     *float64 `json:"engineering"`
	MaliciousCode   *float64 `json:"malicious_code"`
	License         *float64 `json:"license"`
	Total           *float64 `json:"total"`
}

type wireIssue struct {
	Tag         *string `json:"tag"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Severity    *string `json:"severity"`
	Domain      *string `json:"domain"`
}

type wirePackage struct {
	Name               *string           `json:"name"`
	Version            *string           `json:"version"`
	Status             string            `json:"status"`
	Type               *string           `json:"type"`
	License            *string           `json:"license"`
	Score              float64           `json:"package_score"`
	NumDependencies    int               `json:"num_dependencies"`
	NumVulnerabilities int               `json:"num_vulnerabilities"`
	RiskVectors        *wireRiskVector   `json:"riskVectors"`
	Dependencies       map[string]string `json:"dependencies"`
	Issues             *[]wireIssue      `json:"issues"`
}

// jobStatus is the envelope the analysis service returns for a finished job.
type jobStatus struct {
	Packages *[]wirePackage `json:"packages"`
}

// Decode parses a JSON array of package records.
// An object with a "packages" member (a job-status response) is accepted too.
func Decode(data []byte) ([]PackageRecord, error) {
	var raw []wirePackage
	if err := jsonutil.Unmarshal(data, &raw); err != nil {
		var status jobStatus
		if jerr := jsonutil.Unmarshal(data, &status); jerr != nil || status.Packages == nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
		}
		raw = *status.Packages
	}

	pkgs := make([]PackageRecord, 0, len(raw))
	for i := range raw {
		p, err := raw[i].record()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		pkgs = append(pkgs, p)
	}
	return pkgs, nil
}

// DecodeReader reads all of r and decodes it.
func DecodeReader(r io.Reader) ([]PackageRecord, error) {
	data, err := iohelper.ReadAll(r, iohelper.MaxRecordsSize)
	if err != nil {
		return nil, fmt.Errorf("reading package records: %w", err)
	}
	return Decode(data)
}

// LoadFile decodes the package records stored at path.
func LoadFile(path string) ([]PackageRecord, error) {
	data, err := iohelper.ReadFile(path, iohelper.MaxRecordsSize)
	if err != nil {
		return nil, fmt.Errorf("reading package records: %w", err)
	}
	return Decode(data)
}

func missing(field string) error {
	return fmt.Errorf("%w: missing %s", ErrMalformedRecord, field)
}

func (w *wirePackage) record() (PackageRecord, error) {
	switch {
	case w.Name == nil:
		return PackageRecord{}, missing("name")
	case w.Version == nil:
		return PackageRecord{}, missing("version")
	case w.Type == nil:
		return PackageRecord{}, missing("type")
	case w.License == nil:
		return PackageRecord{}, missing("license")
	case w.RiskVectors == nil:
		return PackageRecord{}, missing("riskVectors")
	case w.Issues == nil:
		return PackageRecord{}, missing("issues")
	}

	rv, err := w.RiskVectors.vector()
	if err != nil {
		return PackageRecord{}, err
	}

	p := PackageRecord{
		Name:               *w.Name,
		Version:            *w.Version,
		Status:             w.Status,
		Ecosystem:          Ecosystem(*w.Type),
		License:            *w.License,
		Score:              w.Score,
		NumDependencies:    w.NumDependencies,
		NumVulnerabilities: w.NumVulnerabilities,
		RiskVectors:        rv,
		Dependencies:       w.Dependencies,
		Issues:             make([]Issue, 0, len(*w.Issues)),
	}
	for _, wi := range *w.Issues {
		if wi.Tag == nil || wi.Severity == nil || wi.Domain == nil {
			return PackageRecord{}, fmt.Errorf("%w: package %q: issue missing tag, severity or domain", ErrMalformedRecord, p.ID())
		}
		sev, err := finding.ParseSeverity(*wi.Severity)
		if err != nil {
			return PackageRecord{}, fmt.Errorf("%w: package %q: issue %q: unknown severity: %w", ErrMalformedRecord, p.ID(), *wi.Tag, err)
		}
		dom, err := finding.ParseDomain(*wi.Domain)
		if err != nil {
			return PackageRecord{}, fmt.Errorf("%w: package %q: issue %q: unknown domain: %w", ErrMalformedRecord, p.ID(), *wi.Tag, err)
		}
		p.Issues = append(p.Issues, Issue{
			Tag:         *wi.Tag,
			Title:       wi.Title,
			Description: wi.Description,
			Severity:    sev,
			Domain:      dom,
		})
	}

	if err := p.Validate(); err != nil {
		return PackageRecord{}, err
	}
	return p, nil
}

func (w *wireRiskVector) vector() (RiskVector, error) {
	fields := []struct {
		name string
		v    *float64
	}{
		{"author", w.Author},
		{"vulnerabilities", w.Vulnerabilities},
		{"engineering", w.Engineering},
		{"malicious_code", w.MaliciousCode},
		{"license", w.License},
		{"total", w.Total},
	}
	for _, f := range fields {
		if f.v == nil {
			return RiskVector{}, missing("riskVectors." + f.name)
		}
	}
	return RiskVector{
		Author:          *w.Author,
		Vulnerabilities: *w.Vulnerabilities,
		Engineering:     *w.Engineering,
		MaliciousCode:   *w.MaliciousCode,
		License:         *w.License,
		Total:           *w.Total,
	}, nil
}
