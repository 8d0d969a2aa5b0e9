package policy

import (
	"github.com/depgate/depgate/pkg/analysis"
)

type anyFilter struct {
	children []Filter
}

// NewAnyFilter returns the any combinator: a short-circuit AND. The first
// failing child's result is returned unchanged.
func NewAnyFilter(children ...Filter) Filter {
	return &anyFilter{children: append([]Filter(nil), children...)}
}

func (f *anyFilter) Evaluate(pkgs []analysis.PackageRecord) Result {
	for _, c := range f.children {
		if r := c.Evaluate(pkgs); !r.Pass {
			return r
		}
	}
	return Result{Pass: true}
}

type allFilter struct {
	children []Filter
}

// NewAllFilter returns the all combinator: an OR that runs every child. It
// fails when every child fails, so it fails with no children. Failing
// children's messages are kept either way.
func NewAllFilter(children ...Filter) Filter {
	return &allFilter{children: append([]Filter(nil), children...)}
}

func (f *allFilter) Evaluate(pkgs []analysis.PackageRecord) Result {
	failed := 0
	var msgs []string
	for _, c := range f.children {
		r := c.Evaluate(pkgs)
		if !r.Pass {
			failed++
			msgs = append(msgs, r.Messages...)
		}
	}
	return Result{Pass: failed != len(f.children), Messages: msgs}
}
