package policy

import (
	"github.com/depgate/depgate/pkg/analysis"
)

// placeholderFilter stands in for author and health checks. The analysis
// records carry no author reputation or health signals, so these kinds
// always pass until that data exists.
type placeholderFilter struct {
	kind Kind
}

// NewPlaceholderFilter returns an always-passing filter for kind.
func NewPlaceholderFilter(kind Kind) Filter {
	return &placeholderFilter{kind: kind}
}

func (f *placeholderFilter) Evaluate([]analysis.PackageRecord) Result {
	return Result{Pass: true}
}
