package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depgate/depgate/pkg/analysis"
	"github.com/depgate/depgate/pkg/finding"
)

func TestIssueFilter(t *testing.T) {
	pkgs := []analysis.PackageRecord{
		pkg("a", "1.0", "MIT",
			issue("typosquat", finding.High, finding.DomainMaliciousCode),
			issue("deprecated", finding.Low, finding.DomainEngineering),
		),
		pkg("b", "2.0", "MIT", issue("typosquat", finding.Low, finding.DomainMaliciousCode)),
	}

	tests := []struct {
		name string
		spec IssueSpec
		want Result
	}{
		{
			name: "tag",
			spec: IssueSpec{Tag: "typosquat"},
			want: Result{Messages: []string{
				`package "a:1.0" has issue "typosquat"`,
				`package "b:2.0" has issue "typosquat"`,
			}},
		},
		{
			name: "severity",
			spec: IssueSpec{Severity: finding.Low},
			want: Result{Messages: []string{
				`package "a:1.0" has an issue with severity low`,
				`package "b:2.0" has an issue with severity low`,
			}},
		},
		{
			name: "tag and severity on one issue",
			spec: IssueSpec{Tag: "typosquat", Severity: finding.High},
			want: Result{Messages: []string{
				`package "a:1.0" has issue "typosquat"`,
				`package "a:1.0" has an issue with severity high`,
				`package "b:2.0" has issue "typosquat"`,
			}},
		},
		{
			name: "no match",
			spec: IssueSpec{Tag: "nope", Severity: finding.Critical},
			want: Result{Pass: true},
		},
		{
			name: "empty spec never fails",
			spec: IssueSpec{},
			want: Result{Pass: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewIssueFilter(tt.spec).Evaluate(pkgs))
		})
	}
}

func TestRiskFilter_Threshold(t *testing.T) {
	p := pkg("x", "1.0", "MIT")
	p.RiskVectors.Engineering = 40

	f, err := NewRiskFilter(RiskEntry{Domain: RiskEngineering, Criteria: RiskCriteria{Threshold: ptr(60)}})
	require.NoError(t, err)

	res := f.Evaluate([]analysis.PackageRecord{p})
	assert.False(t, res.Pass)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, "engineering risk domain for x:1.0 score at 40 - must be at least 60", res.Messages[0])
	assert.Contains(t, res.Messages[0], "40")
	assert.Contains(t, res.Messages[0], "60")
}

func TestRiskFilter_ThresholdBoundaryAndFractions(t *testing.T) {
	p := pkg("x", "1.0", "MIT")
	p.RiskVectors.MaliciousCode = 59.5
	p.RiskVectors.Vulnerabilities = 60

	f, err := NewRiskFilter(
		RiskEntry{Domain: RiskVulnerability, Criteria: RiskCriteria{Threshold: ptr(60)}},
		RiskEntry{Domain: RiskMalware, Criteria: RiskCriteria{Threshold: ptr(60.25)}},
	)
	require.NoError(t, err)

	res := f.Evaluate([]analysis.PackageRecord{p})
	assert.Equal(t, Result{Messages: []string{
		"malware risk domain for x:1.0 score at 59.5 - must be at least 60.25",
	}}, res)
}

func TestRiskFilter_ZeroThresholdIsSet(t *testing.T) {
	p := pkg("x", "1.0", "MIT")
	p.RiskVectors.Author = -1

	f, err := NewRiskFilter(RiskEntry{Domain: RiskAuthor, Criteria: RiskCriteria{Threshold: ptr(0)}})
	require.NoError(t, err)
	assert.False(t, f.Evaluate([]analysis.PackageRecord{p}).Pass)
}

func TestRiskFilter_Issues(t *testing.T) {
	p := pkg("x", "1.0", "MIT",
		issue("malicious", finding.Critical, finding.DomainMaliciousCode),
		issue("cve-1", finding.High, finding.DomainVulnerability),
		issue("unmaintained", finding.Medium, finding.DomainEngineering),
	)

	f, err := NewRiskFilter(
		RiskEntry{Domain: RiskMalware, Criteria: RiskCriteria{Severity: finding.Critical, Tag: "malicious"}},
		RiskEntry{Domain: RiskVulnerability, Criteria: RiskCriteria{Tag: "cve-1"}},
		RiskEntry{Domain: RiskAuthor, Criteria: RiskCriteria{Severity: finding.Medium}},
	)
	require.NoError(t, err)

	res := f.Evaluate([]analysis.PackageRecord{p})
	assert.Equal(t, Result{Messages: []string{
		`package "x:1.0" has "malicious" with severity "critical"`,
		`package "x:1.0" has issue "malicious"`,
		`package "x:1.0" has issue "cve-1"`,
	}}, res)
}

func TestRiskFilter_NilSeverityIssueNeedsExplicitSeverity(t *testing.T) {
	p := pkg("x", "1.0", "MIT", issue("informational", finding.Nil, finding.DomainEngineering))

	f, err := NewRiskFilter(RiskEntry{Domain: RiskEngineering, Criteria: RiskCriteria{Threshold: ptr(0)}})
	require.NoError(t, err)
	assert.True(t, f.Evaluate([]analysis.PackageRecord{p}).Pass)

	f, err = NewRiskFilter(RiskEntry{Domain: RiskEngineering, Criteria: RiskCriteria{Severity: finding.Nil}})
	require.NoError(t, err)
	assert.Equal(t, Result{Messages: []string{
		`package "x:1.0" has "informational" with severity "nil"`,
	}}, f.Evaluate([]analysis.PackageRecord{p}))
}

func TestRiskFilter_ThresholdsBeforeIssues(t *testing.T) {
	p := pkg("x", "1.0", "MIT", issue("t", finding.Low, finding.DomainLicense))
	p.RiskVectors.License = 10

	f, err := NewRiskFilter(RiskEntry{Domain: RiskLicense, Criteria: RiskCriteria{Severity: finding.Low, Threshold: ptr(20)}})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"license risk domain for x:1.0 score at 10 - must be at least 20",
		`package "x:1.0" has "t" with severity "low"`,
	}, f.Evaluate([]analysis.PackageRecord{p}).Messages)
}

func TestNewRiskFilter_Errors(t *testing.T) {
	_, err := NewRiskFilter(RiskEntry{Domain: "malicious_code"})
	assert.ErrorIs(t, err, ErrUnknownDomain)

	_, err = NewRiskFilter(RiskEntry{Domain: RiskAuthor}, RiskEntry{Domain: RiskAuthor})
	assert.ErrorIs(t, err, ErrInvalidSpec)

	_, err = NewRiskFilter(RiskEntry{Domain: RiskAuthor, Criteria: RiskCriteria{Severity: "severe"}})
	assert.ErrorIs(t, err, ErrInvalidSeverity)
}

func TestLicenseFilter(t *testing.T) {
	tests := []struct {
		name    string
		license string
		deny    []string
		allow   []string
		want    Result
	}{
		{
			name:    "denied",
			license: "GPL-3.0",
			deny:    []string{"GPL-3.0"},
			want:    Result{Messages: []string{`package "x:1.0" has disallowed license type "GPL-3.0"`}},
		},
		{
			name:    "outside allow list",
			license: "MIT",
			allow:   []string{"Apache-2.0"},
			want:    Result{Messages: []string{`package "x:1.0" has disallowed license type "MIT"`}},
		},
		{
			name:    "inside allow list",
			license: "Apache-2.0",
			allow:   []string{"Apache-2.0"},
			want:    Result{Pass: true},
		},
		{
			name:    "both checks fail",
			license: "GPL-3.0",
			deny:    []string{"GPL-3.0"},
			allow:   []string{"MIT"},
			want: Result{Messages: []string{
				`package "x:1.0" has disallowed license type "GPL-3.0"`,
				`package "x:1.0" has disallowed license type "GPL-3.0"`,
			}},
		},
		{
			name:    "empty config",
			license: "WTFPL",
			want:    Result{Pass: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewLicenseFilter(tt.deny, tt.allow)
			assert.Equal(t, tt.want, f.Evaluate([]analysis.PackageRecord{pkg("x", "1.0", tt.license)}))
		})
	}
}

func TestPlaceholderFilters(t *testing.T) {
	pkgs := []analysis.PackageRecord{pkg("x", "1.0", "MIT", issue("t", finding.Critical, finding.DomainAuthor))}
	for _, k := range []Kind{KindAuthor, KindHealth} {
		assert.Equal(t, Result{Pass: true}, NewPlaceholderFilter(k).Evaluate(pkgs), k)
	}
}

func TestFiltersDoNotMutateRecords(t *testing.T) {
	pkgs := []analysis.PackageRecord{pkg("x", "1.0", "GPL-3.0", issue("t", finding.High, finding.DomainLicense))}
	pkgs[0].RiskVectors.License = 5
	before := pkgs[0]
	beforeIssues := append([]analysis.Issue(nil), pkgs[0].Issues...)

	rf, err := NewRiskFilter(RiskEntry{Domain: RiskLicense, Criteria: RiskCriteria{Severity: finding.High, Threshold: ptr(50)}})
	require.NoError(t, err)
	for _, f := range []Filter{rf, NewLicenseFilter([]string{"GPL-3.0"}, nil), NewIssueFilter(IssueSpec{Tag: "t"})} {
		f.Evaluate(pkgs)
	}

	assert.Equal(t, before.RiskVectors, pkgs[0].RiskVectors)
	assert.Equal(t, beforeIssues, pkgs[0].Issues)
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, ok := ParseKind(string(k))
		assert.True(t, ok)
		assert.Equal(t, k, got)
		assert.NotEmpty(t, k.Summary())
	}
	_, ok := ParseKind("licence")
	assert.False(t, ok)
}
