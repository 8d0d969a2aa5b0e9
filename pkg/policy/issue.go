package policy

import (
	"github.com/depgate/depgate/pkg/analysis"
	"github.com/depgate/depgate/pkg/finding"
)

// IssueSpec configures an issue filter. Empty fields are unset.
type IssueSpec struct {
	Tag      string
	Severity finding.Severity
}

type issueFilter struct {
	spec IssueSpec
}

// NewIssueFilter returns a filter that fails once for every issue whose tag
// equals spec.Tag, and once for every issue whose severity equals
// spec.Severity.
func NewIssueFilter(spec IssueSpec) Filter {
	return &issueFilter{spec: spec}
}

func (f *issueFilter) Evaluate(pkgs []analysis.PackageRecord) Result {
	var out outcome
	for i := range pkgs {
		p := &pkgs[i]
		for _, issue := range p.Issues {
			if f.spec.Tag != "" && issue.Tag == f.spec.Tag {
				out.fail(pkgMessage(p, `issue "`+issue.Tag+`"`))
			}
			if f.spec.Severity != "" && issue.Severity == f.spec.Severity {
				out.fail(pkgMessage(p, "an issue with severity "+string(f.spec.Severity)))
			}
		}
	}
	return out.result()
}
