// Command depgate evaluates dependency-analysis results against a policy.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/depgate/depgate/pkg/defaults"
	"github.com/depgate/depgate/pkg/output/exitcode"
	"github.com/depgate/depgate/pkg/ui"
)

// streams are the process's standard streams, swapped out in tests.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], streams{in: os.Stdin, out: os.Stdout, err: os.Stderr})
	cancel()
	os.Exit(code)
}

func run(ctx context.Context, args []string, s streams) int {
	if len(args) == 0 {
		printUsage(s.err)
		return exitcode.UserError.Int()
	}

	var (
		code exitcode.Code
		err  error
	)
	switch args[0] {
	case "check":
		code, err = runCheck(ctx, args[1:], s)
	case "validate":
		code, err = runValidate(args[1:], s)
	case "mcp":
		code, err = runMCP(ctx, args[1:], s)
	case "version", "-v", "--version":
		fmt.Fprintf(s.out, "%s %s (%s)\n", defaults.ToolName, ui.Version, ui.Commit)
		return exitcode.Success.Int()
	case "-h", "--help", "help":
		printUsage(s.out)
		return exitcode.Success.Int()
	default:
		err = fmt.Errorf("%w: unknown command %q", exitcode.ErrUsage, args[0])
	}
	return exitWith(s.err, code, err)
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `%s %s - dependency policy gate

Usage:
  %[1]s check -packages FILE [flags]   evaluate package records against the rules
  %[1]s validate [flags]               compile the rules and list them
  %[1]s mcp [-http ADDR]               serve the policy tools over MCP
  %[1]s version                        print the version

Run '%[1]s <command> -h' for the flags of a command.

Exit codes:
`, defaults.ToolName, ui.Version)
	for _, c := range []exitcode.Code{exitcode.Success, exitcode.PolicyFailed, exitcode.UserError, exitcode.InputError, exitcode.Internal} {
		fmt.Fprintf(w, "  %d  %s\n", c.Int(), c.Description())
	}
}
