package main

import (
	"flag"
	"fmt"

	"github.com/depgate/depgate/pkg/defaults"
	"github.com/depgate/depgate/pkg/output/exitcode"
	"github.com/depgate/depgate/pkg/policy"
	"github.com/depgate/depgate/pkg/ui"
)

func runValidate(args []string, s streams) (exitcode.Code, error) {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(s.err)
	configPath := fs.String("config", "", "Config file")
	bindFlags(fs, "rules", "no-color")
	fs.Usage = func() {
		fmt.Fprintf(s.err, "Usage: %s validate [-rules DIR]\n\n", defaults.ToolName)
		fmt.Fprintf(s.err, "Compile every rule file and list the rules.\n\nFlags:\n")
		fs.PrintDefaults()
	}
	if err := parseFlags(fs, args); err != nil {
		return exitcode.Success, err
	}

	cfg, err := loadConfig(fs, *configPath)
	if err != nil {
		return exitcode.UserError, err
	}
	ui.SetNoColor(cfg.NoColor)

	set, err := policy.LoadDir(cfg.RulesDir)
	if err != nil {
		return exitcode.InputError, err
	}
	ui.PrintRules(s.out, set)
	return exitcode.Success, nil
}
