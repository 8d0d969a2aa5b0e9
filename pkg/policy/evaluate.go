package policy

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/depgate/depgate/pkg/analysis"
	"github.com/depgate/depgate/pkg/defaults"
	"github.com/depgate/depgate/pkg/workerpool"
)

// Evaluate applies rules to pkgs sequentially. It does not validate the
// records; use an Evaluator for untrusted input.
func Evaluate(rules []Rule, pkgs []analysis.PackageRecord) Verdict {
	actions := make([]RuleAction, len(rules))
	for i, r := range rules {
		actions[i] = r.Evaluate(pkgs)
	}
	return newVerdict(actions)
}

// Observer receives evaluation measurements. ObserveRule may be called from
// several goroutines at once.
type Observer interface {
	ObserveRule(ra RuleAction, elapsed time.Duration)
	ObserveVerdict(v *Verdict, packages int, elapsed time.Duration)
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithWorkers evaluates up to n rules concurrently. Values below 2 mean
// sequential evaluation.
func WithWorkers(n int) Option {
	return func(e *Evaluator) {
		if n > defaults.WorkersMax {
			n = defaults.WorkersMax
		}
		e.workers = n
	}
}

// WithLogger sets the logger. nil means slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Evaluator) { e.logger = l }
}

// WithObserver registers an observer, typically a metrics recorder.
func WithObserver(o Observer) Option {
	return func(e *Evaluator) { e.observer = o }
}

// WithTracer sets the tracer used for evaluation spans.
func WithTracer(t trace.Tracer) Option {
	return func(e *Evaluator) {
		if t != nil {
			e.tracer = t
		}
	}
}

// Evaluator validates records and evaluates rule sets. An Evaluator is safe
// for concurrent use.
type Evaluator struct {
	workers  int
	logger   *slog.Logger
	observer Observer
	tracer   trace.Tracer
}

// NewEvaluator returns an Evaluator configured by opts.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{
		workers: defaults.Workers,
		tracer:  noop.NewTracerProvider().Tracer(defaults.ToolName),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Evaluate validates pkgs and applies rules to them. The verdict is the
// same as the package-level Evaluate returns, whatever the worker count.
func (e *Evaluator) Evaluate(ctx context.Context, rules []Rule, pkgs []analysis.PackageRecord) (*Verdict, error) {
	ctx, span := e.tracer.Start(ctx, "policy.Evaluate", trace.WithAttributes(
		attribute.Int("policy.rules", len(rules)),
		attribute.Int("policy.packages", len(pkgs)),
		attribute.Int("policy.workers", e.workers),
	))
	defer span.End()

	if err := analysis.Validate(pkgs); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed package records")
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	var actions []RuleAction
	workers := 1
	if e.workers > 1 && len(rules) > 1 {
		pool := workerpool.New(min(e.workers, len(rules)))
		workers = pool.Cap()
		actions = workerpool.Map(pool, rules, func(r Rule) RuleAction {
			return e.evaluateRule(ctx, r, pkgs)
		})
		pool.Close()
	} else {
		actions = make([]RuleAction, 0, len(rules))
		for _, r := range rules {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			actions = append(actions, e.evaluateRule(ctx, r, pkgs))
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v := newVerdict(actions)
	elapsed := time.Since(start)

	span.SetAttributes(
		attribute.Bool("policy.pass", v.Pass),
		attribute.Int("policy.failed", len(v.Failed())),
		attribute.Int("policy.workers", workers),
	)
	if e.observer != nil {
		e.observer.ObserveVerdict(&v, len(pkgs), elapsed)
	}
	e.logger.Debug("policy evaluated",
		slog.Int("rules", len(rules)),
		slog.Int("packages", len(pkgs)),
		slog.Int("workers", workers),
		slog.Bool("pass", v.Pass),
		slog.Duration("elapsed", elapsed),
	)
	return &v, nil
}

func (e *Evaluator) evaluateRule(ctx context.Context, r Rule, pkgs []analysis.PackageRecord) RuleAction {
	_, span := e.tracer.Start(ctx, "policy.Rule", trace.WithAttributes(
		attribute.String("policy.rule", r.Label),
		attribute.String("policy.action", string(r.Action)),
	))
	defer span.End()

	start := time.Now()
	ra := r.Evaluate(pkgs)
	elapsed := time.Since(start)

	span.SetAttributes(attribute.Bool("policy.pass", ra.Pass))
	if e.observer != nil {
		e.observer.ObserveRule(ra, elapsed)
	}
	if !ra.Pass {
		e.logger.Debug("rule failed",
			slog.String("rule", r.Label),
			slog.String("action", string(r.Action)),
		)
	}
	return ra
}
