package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/depgate/depgate/pkg/config"
	"github.com/depgate/depgate/pkg/defaults"
	"github.com/depgate/depgate/pkg/output/exitcode"
	"github.com/depgate/depgate/pkg/policy"
)

// flagSpec binds a command-line flag to a config key.
type flagSpec struct {
	name  string
	key   string
	def   any
	usage string
}

var flagSpecs = []flagSpec{
	{"rules", config.KeyRulesDir, defaults.RulesDir, "Directory of rule files"},
	{"packages", config.KeyPackages, "", "Package records JSON file ('-' for stdin)"},
	{"ecosystem", config.KeyEcosystem, "", "Lockfile kind the records came from (npm, pip, poetry, gem, maven, nuget)"},
	{"format", config.KeyFormat, defaults.FormatConsole, "Output format: " + strings.Join(defaults.Formats, ", ")},
	{"o", config.KeyOutput, "", "Write output to file instead of stdout"},
	{"template", config.KeyTemplate, "", "Template file or built-in name for -format template"},
	{"no-color", config.KeyNoColor, false, "Disable colored output"},
	{"silent", config.KeySilent, false, "Print failures only"},
	{"verbose", config.KeyVerbose, false, "Debug logging"},
	{"workers", config.KeyWorkers, defaults.Workers, "Rules evaluated in parallel"},
	{"fail-on", config.KeyFailOn, string(policy.ActionAbort), "Comma-separated actions whose failure fails the run"},
	{"metrics-file", config.KeyMetricsFile, "", "Write Prometheus metrics to this textfile"},
	{"otel-endpoint", config.KeyOTelEndpoint, "", "OTLP/gRPC collector for traces (host:port)"},
	{"otel-insecure", config.KeyOTelInsecure, false, "Disable TLS to the OTLP collector"},
}

// bindFlags registers the named flags on fs.
func bindFlags(fs *flag.FlagSet, names ...string) {
	for _, spec := range flagSpecs {
		if !slices.Contains(names, spec.name) {
			continue
		}
		switch d := spec.def.(type) {
		case string:
			fs.String(spec.name, d, spec.usage)
		case bool:
			fs.Bool(spec.name, d, spec.usage)
		case int:
			fs.Int(spec.name, d, spec.usage)
		}
	}
}

// overrides returns the config values of the flags the user set.
// Unset flags are left to the config file and environment.
func overrides(fs *flag.FlagSet) map[string]any {
	out := make(map[string]any)
	fs.Visit(func(f *flag.Flag) {
		for _, spec := range flagSpecs {
			if spec.name != f.Name {
				continue
			}
			val := f.Value.(flag.Getter).Get()
			if spec.key == config.KeyFailOn {
				val = splitList(val.(string))
			}
			out[spec.key] = val
		}
	})
	return out
}

// parseFlags parses args and rejects positional arguments.
// A help request returns flag.ErrHelp unwrapped.
func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", exitcode.ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected argument %q", exitcode.ErrUsage, fs.Arg(0))
	}
	return nil
}

// loadConfig layers the set flags over the config file and environment.
func loadConfig(fs *flag.FlagSet, path string) (*config.Config, error) {
	return config.Load(path, overrides(fs))
}

// newLogger returns a text logger on w at the level the config asks for.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case cfg.Verbose:
		level = slog.LevelDebug
	case cfg.Silent:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
