package policy

import (
	"github.com/depgate/depgate/pkg/analysis"
)

// Filter is a compiled predicate over a package list.
// Implementations are immutable and must not modify the records.
type Filter interface {
	Evaluate(pkgs []analysis.PackageRecord) Result
}

// Result is the outcome of one filter.
type Result struct {
	Pass     bool     `json:"pass"`
	Messages []string `json:"messages,omitempty"`
}

// Kind names a filter kind as written in a rule document.
type Kind string

const (
	KindIssue   Kind = "issue"
	KindRisks   Kind = "risks"
	KindLicense Kind = "license"
	KindAuthor  Kind = "author"
	KindHealth  Kind = "health"
	KindAny     Kind = "any"
	KindAll     Kind = "all"
	KindIf      Kind = "if"
)

// Kinds lists every filter kind in documentation order.
var Kinds = []Kind{KindIssue, KindRisks, KindLicense, KindAuthor, KindHealth, KindAny, KindAll, KindIf}

// ParseKind returns the Kind named by s.
func ParseKind(s string) (Kind, bool) {
	switch k := Kind(s); k {
	case KindIssue, KindRisks, KindLicense, KindAuthor, KindHealth, KindAny, KindAll, KindIf:
		return k, true
	}
	return "", false
}

// Summary is a one-line description of the kind's spec and behavior.
func (k Kind) Summary() string {
	switch k {
	case KindIssue:
		return "{tag?, severity?}: fails for every issue whose tag or severity matches"
	case KindRisks:
		return "{<malware|engineering|license|author|vulnerability>: {severity?, tag?, score_threshold?}}: fails on a sub-score below threshold or a matching issue in the domain"
	case KindLicense:
		return "{is?, not?}: fails when the license is in is, or not is set and the license is outside it"
	case KindAuthor:
		return "placeholder: always passes, author reputation is not in the analysis data"
	case KindHealth:
		return "placeholder: always passes, health signals are not in the analysis data"
	case KindAny:
		return "[{<kind>: <spec>}, ...]: AND, returns the first failing child's result"
	case KindAll:
		return "[{<kind>: <spec>}, ...]: OR, fails only when every child fails"
	case KindIf:
		return "{<kind>: <spec>, ...}: compiles each key into the enclosing filter list"
	}
	return ""
}

// outcome accumulates a Result across packages.
type outcome struct {
	failed   bool
	messages []string
}

func (o *outcome) fail(msg string) {
	o.failed = true
	o.messages = append(o.messages, msg)
}

func (o *outcome) result() Result {
	return Result{Pass: !o.failed, Messages: o.messages}
}

func pkgMessage(p *analysis.PackageRecord, what string) string {
	return `package "` + p.ID() + `" has ` + what
}
