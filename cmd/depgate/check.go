package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/depgate/depgate/pkg/analysis"
	"github.com/depgate/depgate/pkg/config"
	"github.com/depgate/depgate/pkg/defaults"
	"github.com/depgate/depgate/pkg/metrics"
	"github.com/depgate/depgate/pkg/output"
	"github.com/depgate/depgate/pkg/output/exitcode"
	"github.com/depgate/depgate/pkg/output/writers"
	"github.com/depgate/depgate/pkg/policy"
	"github.com/depgate/depgate/pkg/telemetry"
	"github.com/depgate/depgate/pkg/ui"
)

func runCheck(ctx context.Context, args []string, s streams) (exitcode.Code, error) {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(s.err)
	configPath := fs.String("config", "", "Config file (default: ./"+defaults.ConfigFile+".yaml if present)")
	bindFlags(fs, "rules", "packages", "ecosystem", "format", "o", "template", "no-color", "silent",
		"verbose", "workers", "fail-on", "metrics-file", "otel-endpoint", "otel-insecure")
	fs.Usage = func() {
		fmt.Fprintf(s.err, "Usage: %s check -packages FILE [flags]\n\n", defaults.ToolName)
		fmt.Fprintf(s.err, "Evaluate package records against every rule in the rules directory.\n\n")
		fmt.Fprintf(s.err, "Flags:\n")
		fs.PrintDefaults()
	}
	if err := parseFlags(fs, args); err != nil {
		return exitcode.Success, err
	}

	cfg, err := loadConfig(fs, *configPath)
	if err != nil {
		return exitcode.UserError, err
	}
	if cfg.Packages == "" {
		return exitcode.UserError, fmt.Errorf("%w: -packages is required", exitcode.ErrUsage)
	}
	ui.SetNoColor(cfg.NoColor)
	ui.SetSilent(cfg.Silent)
	logger := newLogger(cfg, s.err)

	set, err := policy.LoadDir(cfg.RulesDir)
	if err != nil {
		return exitcode.InputError, err
	}
	pkgs, err := readPackages(cfg.Packages, s.in)
	if err != nil {
		return exitcode.InputError, err
	}
	checkEcosystem(cfg, pkgs, logger)

	rec, err := metrics.NewRecorder()
	if err != nil {
		return exitcode.Internal, err
	}
	tracer, shutdown, err := setupTracing(ctx, cfg, logger)
	if err != nil {
		return exitcode.Internal, err
	}
	defer shutdown()

	opts := []policy.Option{
		policy.WithWorkers(cfg.Workers),
		policy.WithLogger(logger),
		policy.WithObserver(rec),
	}
	if tracer != nil {
		opts = append(opts, policy.WithTracer(tracer))
	}

	start := time.Now()
	verdict, err := policy.NewEvaluator(opts...).Evaluate(ctx, set.Rules, pkgs)
	if err != nil {
		return exitcode.Internal, err
	}
	report := output.NewReport(verdict, len(pkgs),
		output.WithRuleSet(set),
		output.WithEcosystem(cfg.Ecosystem),
		output.WithDuration(time.Since(start)))

	if err := writeReport(cfg, report, s.out); err != nil {
		return exitcode.Internal, err
	}
	if cfg.MetricsFile != "" {
		if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
			return exitcode.Internal, err
		}
	}

	failOn, err := cfg.FailOnActions()
	if err != nil {
		return exitcode.UserError, err
	}
	code := exitcode.FromVerdict(verdict, failOn)
	logger.Debug("check finished",
		slog.String("run_id", report.RunID),
		slog.String("exit", code.String()),
		slog.Int("rules", len(set.Rules)),
		slog.Int("packages", len(pkgs)))
	return code, nil
}

// readPackages loads records from path, or from in when path is "-".
func readPackages(path string, in io.Reader) ([]analysis.PackageRecord, error) {
	if path == "-" {
		return analysis.DecodeReader(in)
	}
	return analysis.LoadFile(path)
}

// checkEcosystem warns about records outside the configured lockfile's ecosystem.
func checkEcosystem(cfg *config.Config, pkgs []analysis.PackageRecord, logger *slog.Logger) {
	want, ok := cfg.EcosystemFor()
	if !ok {
		return
	}
	for i := range pkgs {
		if pkgs[i].Ecosystem != want {
			logger.Warn("package from another ecosystem",
				slog.String("package", pkgs[i].ID()),
				slog.String("ecosystem", string(pkgs[i].Ecosystem)),
				slog.String("want", string(want)))
		}
	}
}

// setupTracing starts trace export when an endpoint is configured.
// The returned tracer is nil when tracing is off.
func setupTracing(ctx context.Context, cfg *config.Config, logger *slog.Logger) (trace.Tracer, func(), error) {
	if cfg.OTel.Endpoint == "" {
		return nil, func() {}, nil
	}
	p, err := telemetry.Setup(ctx, telemetry.Options{
		Endpoint: cfg.OTel.Endpoint,
		Insecure: cfg.OTel.Insecure,
	})
	if err != nil {
		return nil, nil, err
	}
	return p.Tracer(), func() {
		if err := p.Shutdown(context.Background()); err != nil {
			logger.Warn("trace export shutdown", slog.Any("error", err))
		}
	}, nil
}

// writeReport renders report in the configured format to stdout or the output file.
func writeReport(cfg *config.Config, report *output.Report, stdout io.Writer) (err error) {
	w := stdout
	if cfg.Output != "" {
		var f *os.File
		f, err = os.Create(cfg.Output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		w = f
	}

	if cfg.Format == defaults.FormatConsole {
		ui.PrintVerdict(w, report.Verdict)
		return nil
	}
	ow, err := writers.New(cfg.Format, w, writers.Options{TemplatePath: cfg.Template, Pretty: true})
	if err != nil {
		return err
	}
	return ow.Write(report)
}
