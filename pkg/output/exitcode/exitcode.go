// Package exitcode maps run outcomes to process exit codes for CI/CD.
//
// Exit codes:
//   - 0: every rule passed, or only actions outside fail_on failed
//   - 1: a rule whose action is in fail_on failed
//   - 2: bad flags or configuration
//   - 3: unreadable or invalid rules or package records
//   - 4: anything else
package exitcode

import (
	"errors"
	"io/fs"

	"github.com/depgate/depgate/pkg/analysis"
	"github.com/depgate/depgate/pkg/config"
	"github.com/depgate/depgate/pkg/defaults"
	"github.com/depgate/depgate/pkg/iohelper"
	"github.com/depgate/depgate/pkg/policy"
	"github.com/depgate/depgate/pkg/ruledoc"
)

// Code is a process exit code.
type Code int

const (
	Success      Code = defaults.ExitSuccess
	PolicyFailed Code = defaults.ExitPolicyFailed
	UserError    Code = defaults.ExitUserError
	InputError   Code = defaults.ExitInputError
	Internal     Code = defaults.ExitInternalError
)

// ErrUsage marks command-line misuse.
var ErrUsage = errors.New("usage error")

var codeStrings = map[Code]string{
	Success:      "success",
	PolicyFailed: "policy_failed",
	UserError:    "user_error",
	InputError:   "input_error",
	Internal:     "internal_error",
}

var codeDescriptions = map[Code]string{
	Success:      "All blocking rules passed",
	PolicyFailed: "A rule with a blocking action failed",
	UserError:    "Invalid flags or configuration",
	InputError:   "Rules or package records could not be loaded",
	Internal:     "Unexpected internal error",
}

// String returns a short identifier for c.
func (c Code) String() string {
	if s, ok := codeStrings[c]; ok {
		return s
	}
	return "unknown"
}

// Description returns a sentence describing c.
func (c Code) Description() string {
	if s, ok := codeDescriptions[c]; ok {
		return s
	}
	return "Unknown exit code"
}

// Int returns c as an int for os.Exit.
func (c Code) Int() int { return int(c) }

// FromVerdict returns PolicyFailed when a rule whose action is in failOn
// failed, and Success otherwise.
func FromVerdict(v *policy.Verdict, failOn []policy.Action) Code {
	if v == nil || v.Pass {
		return Success
	}
	if v.FailedWith(failOn...) {
		return PolicyFailed
	}
	return Success
}

// FromError classifies err. A nil error is Success.
func FromError(err error) Code {
	var ce *policy.CompileError
	switch {
	case err == nil:
		return Success
	case errors.Is(err, ErrUsage),
		errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, config.ErrMissingRequired):
		return UserError
	case errors.As(err, &ce),
		errors.Is(err, policy.ErrRulesNotFound),
		errors.Is(err, policy.ErrInvalidRuleFile),
		errors.Is(err, ruledoc.ErrSyntax),
		errors.Is(err, ruledoc.ErrNotMapping),
		errors.Is(err, analysis.ErrMalformedRecord),
		errors.Is(err, fs.ErrNotExist),
		errors.Is(err, iohelper.ErrTooLarge):
		return InputError
	default:
		return Internal
	}
}
