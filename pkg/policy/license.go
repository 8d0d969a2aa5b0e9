package policy

import (
	"github.com/depgate/depgate/pkg/analysis"
)

type licenseFilter struct {
	deny  map[string]struct{}
	allow map[string]struct{}
}

// NewLicenseFilter returns a filter that fails a package whose license is
// in deny, and, when allow is non-empty, a package whose license is not in
// allow. A package failing both checks gets two messages.
func NewLicenseFilter(deny, allow []string) Filter {
	return &licenseFilter{deny: toSet(deny), allow: toSet(allow)}
}

func (f *licenseFilter) Evaluate(pkgs []analysis.PackageRecord) Result {
	var out outcome
	for i := range pkgs {
		p := &pkgs[i]
		msg := pkgMessage(p, `disallowed license type "`+p.License+`"`)
		if _, denied := f.deny[p.License]; denied {
			out.fail(msg)
		}
		if len(f.allow) > 0 {
			if _, allowed := f.allow[p.License]; !allowed {
				out.fail(msg)
			}
		}
	}
	return out.result()
}

func toSet(vals []string) map[string]struct{} {
	set := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		set[v] = struct{}{}
	}
	return set
}
