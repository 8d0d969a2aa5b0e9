// Package policy compiles declarative rule documents into filters and
// evaluates them against dependency-analysis records.
//
// A rule document maps rule labels to rule bodies:
//
//	block-gpl:
//	  description: GPL licenses are not allowed
//	  action: abort            # abort | warn | log | ignore
//	  license:
//	    is: [GPL-3.0]
//	  risks:
//	    malware:
//	      severity: critical
//	    engineering:
//	      score_threshold: 60
//	  any:
//	    - issue: {tag: typosquat}
//	    - risks: {author: {score_threshold: 30}}
//
// Every key other than description and action names a filter kind. The
// kinds are a closed set (see Kind); an unknown key fails compilation.
//
// # Combinator naming
//
// The combinator names read the opposite way to their behavior, and rule
// files in the wild depend on the behavior:
//
//   - any is a logical AND. Children run in order and the first failing
//     child's result is returned as-is; later children are not run.
//   - all is a logical OR. Every child runs; the combinator fails only when
//     every child failed. Messages of failing children are reported even
//     when the combinator passes. An empty all list always fails.
//   - if has no conditional meaning. Its keys are compiled as if they had
//     been written next to it, and the filters are appended to the parent.
//
// Do not "fix" these.
//
// # Evaluation
//
// A rule fails when any of its top-level filters fails. Its message is
// every filter message, in filter order, joined with newlines. The verdict
// fails when any rule fails. Evaluate is pure; Evaluator adds record
// validation, optional parallelism across rules, tracing and metrics
// without changing the result.
//
// Compiled rules are immutable and safe for concurrent use.
package policy
