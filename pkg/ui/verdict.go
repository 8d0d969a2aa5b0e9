package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/depgate/depgate/pkg/defaults"
	"github.com/depgate/depgate/pkg/policy"
	"github.com/depgate/depgate/pkg/strutil"
)

// Separator is printed between rule results.
const Separator = "---------"

// PrintVerdict writes v in the console format. A passing verdict prints a
// single line. Otherwise every failing abort, warn and log rule is printed
// with its message; ignore rules are never printed. In silent mode log
// rules are skipped as well.
func PrintVerdict(w io.Writer, v *policy.Verdict) {
	if v.Pass {
		fmt.Fprintf(w, "[%s] All Packages Pass Policy.\n", PassStyle.Render(defaults.ToolName))
		return
	}

	opened := false
	for _, a := range v.Actions {
		if a.Pass || !printed(a.Action) {
			continue
		}
		if !opened {
			fmt.Fprintln(w, Separator)
			opened = true
		}
		switch a.Action {
		case policy.ActionAbort:
			fmt.Fprintf(w, "[%s] %s > %s: %s\n", FailStyle.Render(defaults.ToolName), FailStyle.Render("FAIL"), a.Label, a.Description)
			printMessage(w, a.Message, FailTextStyle.Render)
		case policy.ActionWarn:
			fmt.Fprintf(w, "[%s] %s > %s: %s\n", WarnStyle.Render(defaults.ToolName), WarnStyle.Render("WARN"), a.Label, a.Description)
			printMessage(w, a.Message, WarnTextStyle.Render)
		case policy.ActionLog:
			fmt.Fprintf(w, "[%s] LOG > %s: %s\n", defaults.ToolName, a.Label, a.Description)
			printMessage(w, a.Message, func(s ...string) string { return strings.Join(s, " ") })
		}
		fmt.Fprintln(w, Separator)
	}
}

// printed reports whether a failing rule with this action gets a block.
func printed(action policy.Action) bool {
	switch action {
	case policy.ActionAbort, policy.ActionWarn:
		return true
	case policy.ActionLog:
		return !IsSilent()
	}
	return false
}

func printMessage(w io.Writer, msg string, render func(...string) string) {
	if msg == "" {
		return
	}
	for _, line := range strings.Split(msg, "\n") {
		fmt.Fprintln(w, render(line))
	}
}

// PrintRules lists compiled rules, one per line, for the validate command.
func PrintRules(w io.Writer, set *policy.RuleSet) {
	fmt.Fprintf(w, "[%s] %d rules from %d files %s\n",
		TagStyle.Render(defaults.ToolName), len(set.Rules), len(set.Files),
		MutedStyle.Render("("+set.Fingerprint+")"))
	for _, r := range set.Rules {
		fmt.Fprintf(w, "  %s %-6s %s: %s %s\n",
			Icon("•", "-"), r.Action, LabelStyle.Render(r.Label), strutil.FirstLine(r.Description),
			MutedStyle.Render(fmt.Sprintf("[%d filters]", len(r.Filters()))))
	}
}

// PrintError writes an error line.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "[%s] Error: %v\n", FailStyle.Render(defaults.ToolName), err)
}
