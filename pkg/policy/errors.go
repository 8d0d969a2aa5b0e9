package policy

import (
	"errors"

	"github.com/depgate/depgate/pkg/finding"
)

// Compile errors. Every compile error is returned inside a *CompileError
// carrying the rule label and path of the offending entry.
var (
	// ErrMissingField is returned when a rule lacks description or action.
	ErrMissingField = errors.New("policy: missing required field")

	// ErrInvalidAction is returned for an action outside abort|warn|log|ignore.
	ErrInvalidAction = errors.New("policy: invalid action")

	// ErrUnknownKind is returned for a filter key that names no filter kind.
	ErrUnknownKind = errors.New("policy: unknown filter kind")

	// ErrAmbiguousEntry is returned when an any/all list entry has more
	// than one key.
	ErrAmbiguousEntry = errors.New("policy: ambiguous list entry")

	// ErrUnknownDomain is returned for an unrecognized key inside risks.
	ErrUnknownDomain = errors.New("policy: unknown risk domain")

	// ErrInvalidSpec is returned when a filter spec has the wrong shape.
	ErrInvalidSpec = errors.New("policy: invalid filter spec")

	// ErrInvalidSeverity is returned for a severity outside nil|low|medium|high|critical.
	ErrInvalidSeverity = finding.ErrInvalidSeverity
)

// Loader errors.
var (
	// ErrRulesNotFound is returned when the rules directory or file does not exist.
	ErrRulesNotFound = errors.New("policy: rules not found")

	// ErrInvalidRuleFile is returned when a rule file cannot be decoded.
	ErrInvalidRuleFile = errors.New("policy: invalid rule file")
)

// CompileError locates a compile failure inside a rule document.
type CompileError struct {
	// Rule is the label of the rule being compiled.
	Rule string

	// Path addresses the failing entry, starting with the rule label,
	// e.g. "block-gpl.any[1].risks.malware".
	Path string

	Err error
}

func (e *CompileError) Error() string {
	if e.Path == "" {
		return "rule " + e.Rule + ": " + e.Err.Error()
	}
	return e.Path + ": " + e.Err.Error()
}

func (e *CompileError) Unwrap() error { return e.Err }

func compileErr(path string, err error) error {
	return &CompileError{Path: path, Err: err}
}
