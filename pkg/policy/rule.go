package policy

import (
	"fmt"
	"strings"

	"github.com/depgate/depgate/pkg/analysis"
)

// Action is what the caller should do when a rule fails.
type Action string

const (
	ActionAbort  Action = "abort"
	ActionWarn   Action = "warn"
	ActionLog    Action = "log"
	ActionIgnore Action = "ignore"
)

// Actions lists every action from most to least severe.
var Actions = []Action{ActionAbort, ActionWarn, ActionLog, ActionIgnore}

// ParseAction validates s as an Action.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionAbort, ActionWarn, ActionLog, ActionIgnore:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAction, s)
}

func (a Action) String() string { return string(a) }

// Rule is a compiled rule. Its filters cannot be changed after construction.
type Rule struct {
	Label       string
	Description string
	Action      Action

	filters []Filter
}

// NewRule builds a rule from already-constructed filters.
func NewRule(label, description string, action Action, filters ...Filter) (Rule, error) {
	if description == "" {
		return Rule{}, &CompileError{Rule: label, Path: label, Err: fmt.Errorf("%w: description", ErrMissingField)}
	}
	if _, err := ParseAction(string(action)); err != nil {
		return Rule{}, &CompileError{Rule: label, Path: label + ".action", Err: err}
	}
	return Rule{
		Label:       label,
		Description: description,
		Action:      action,
		filters:     append([]Filter(nil), filters...),
	}, nil
}

// Filters returns a copy of the rule's filter list.
func (r Rule) Filters() []Filter {
	return append([]Filter(nil), r.filters...)
}

// Evaluate runs every filter against pkgs and coalesces the results.
func (r Rule) Evaluate(pkgs []analysis.PackageRecord) RuleAction {
	ra := RuleAction{
		Pass:        true,
		Label:       r.Label,
		Description: r.Description,
		Action:      r.Action,
	}
	var msgs []string
	for _, f := range r.filters {
		res := f.Evaluate(pkgs)
		if !res.Pass {
			ra.Pass = false
		}
		msgs = append(msgs, res.Messages...)
	}
	ra.Message = strings.Join(msgs, "\n")
	return ra
}

// RuleAction is the outcome of one rule.
type RuleAction struct {
	Pass        bool   `json:"pass"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Action      Action `json:"action"`
	Message     string `json:"message"`
}

// Verdict is the outcome of a rule set. Actions follow rule order.
type Verdict struct {
	Pass    bool         `json:"pass"`
	Actions []RuleAction `json:"actions"`
}

func newVerdict(actions []RuleAction) Verdict {
	v := Verdict{Pass: true, Actions: actions}
	if v.Actions == nil {
		v.Actions = []RuleAction{}
	}
	for _, a := range actions {
		if !a.Pass {
			v.Pass = false
		}
	}
	return v
}

// Failed returns the failing rule actions, in order.
func (v *Verdict) Failed() []RuleAction {
	var out []RuleAction
	for _, a := range v.Actions {
		if !a.Pass {
			out = append(out, a)
		}
	}
	return out
}

// FailedWith reports whether a rule with one of the given actions failed.
func (v *Verdict) FailedWith(actions ...Action) bool {
	for _, a := range v.Actions {
		if a.Pass {
			continue
		}
		for _, want := range actions {
			if a.Action == want {
				return true
			}
		}
	}
	return false
}

// Counts returns the number of failing rules per action.
func (v *Verdict) Counts() map[Action]int {
	counts := make(map[Action]int, len(Actions))
	for _, a := range v.Actions {
		if !a.Pass {
			counts[a.Action]++
		}
	}
	return counts
}
