package main

import (
	"errors"
	"flag"
	"io"

	"github.com/depgate/depgate/pkg/output/exitcode"
	"github.com/depgate/depgate/pkg/ui"
)

// exitWith prints err, if any, and returns the process exit code.
// A help request is not an error.
func exitWith(w io.Writer, code exitcode.Code, err error) int {
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return code.Int()
	}
	ui.PrintError(w, err)
	return exitcode.FromError(err).Int()
}
