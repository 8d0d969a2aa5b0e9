package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/depgate/depgate/pkg/analysis"
	"github.com/depgate/depgate/pkg/output"
	"github.com/depgate/depgate/pkg/policy"
)

// registerTools adds the policy tools to the MCP server.
func (s *Server) registerTools() {
	s.addCheckPolicyTool()
	s.addValidateRulesTool()
	s.addListFiltersTool()
}

// rulesArgs is shared by tools that accept an inline rule document.
type rulesArgs struct {
	Rules       string `json:"rules"`
	RulesFormat string `json:"rules_format"`
}

var rulesProperties = map[string]any{
	"rules": map[string]any{
		"type":        "string",
		"description": "Rule document text: a mapping of rule label to {description, action, filters...}. Leave empty to use the server's rules directory.",
	},
	"rules_format": map[string]any{
		"type":        "string",
		"description": "Format of the rules text.",
		"enum":        []string{string(policy.FormatYAML), string(policy.FormatJSON)},
		"default":     string(policy.FormatYAML),
	},
}

// loadRules compiles the inline document, or the rules directory when none is given.
func (s *Server) loadRules(args rulesArgs) (*policy.RuleSet, error) {
	if strings.TrimSpace(args.Rules) == "" {
		return policy.LoadDir(s.config.RulesDir)
	}
	format := policy.Format(args.RulesFormat)
	rules, err := policy.Parse([]byte(args.Rules), format)
	if err != nil {
		return nil, err
	}
	return &policy.RuleSet{Rules: rules}, nil
}

func ruleErrorSteps(err error) []string {
	var ce *policy.CompileError
	switch {
	case errors.As(err, &ce):
		return []string{
			fmt.Sprintf("Fix the rule at %q.", ce.Path),
			"Call 'list_filters' to see the valid filter kinds and their specs.",
		}
	case errors.Is(err, policy.ErrRulesNotFound):
		return []string{"Pass the rule document inline in 'rules'."}
	case errors.Is(err, policy.ErrInvalidRuleFile):
		return []string{"Check the document parses as the given rules_format."}
	}
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// check_policy
// ═══════════════════════════════════════════════════════════════════════════

type checkPolicyArgs struct {
	Rules       string `json:"rules"`
	RulesFormat string `json:"rules_format"`
	Packages    string `json:"packages"`
}

func (s *Server) addCheckPolicyTool() {
	props := map[string]any{
		"packages": map[string]any{
			"type":        "string",
			"description": "JSON text: an array of package records, or a job-status object with a 'packages' array.",
		},
	}
	for k, v := range rulesProperties {
		props[k] = v
	}

	s.mcp.AddTool(
		&mcp.Tool{
			Name:  "check_policy",
			Title: "Check Dependency Policy",
			Description: `Evaluate package records from a dependency analysis against a rule document.

Returns a report with the verdict (pass plus one action per rule, in rule order),
a summary of failing rules per action, and the run id.

EXAMPLE:
{"rules": "no-malware:\n  description: block malware\n  action: abort\n  risks:\n    malware:\n      score_threshold: 0.5\n",
 "packages": "[{...package record...}]"}`,
			InputSchema: map[string]any{
				"type":       "object",
				"properties": props,
				"required":   []string{"packages"},
			},
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:   true,
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(false),
			},
		},
		s.handleCheckPolicy,
	)
}

func (s *Server) handleCheckPolicy(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args checkPolicyArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(err.Error()), nil
	}
	if strings.TrimSpace(args.Packages) == "" {
		return errorResult("packages is required"), nil
	}

	set, err := s.loadRules(rulesArgs{Rules: args.Rules, RulesFormat: args.RulesFormat})
	if err != nil {
		return enrichedError(err.Error(), ruleErrorSteps(err)), nil
	}

	pkgs, err := analysis.Decode([]byte(args.Packages))
	if err != nil {
		return enrichedError(err.Error(), []string{
			"Each record needs name, version, type, license, riskVectors (all six scores) and issues.",
		}), nil
	}

	start := time.Now()
	verdict, err := s.evaluator.Evaluate(ctx, set.Rules, pkgs)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	if !verdict.Pass {
		logToSession(ctx, req, logWarning, fmt.Sprintf("%d of %d rules failed", len(verdict.Failed()), len(verdict.Actions)))
	}

	report := output.NewReport(verdict, len(pkgs), output.WithRuleSet(set), output.WithDuration(time.Since(start)))
	return jsonResult(report)
}

// ═══════════════════════════════════════════════════════════════════════════
// validate_rules
// ═══════════════════════════════════════════════════════════════════════════

type ruleSummary struct {
	Label       string        `json:"label"`
	Description string        `json:"description"`
	Action      policy.Action `json:"action"`
	Filters     int           `json:"filters"`
}

type validateResponse struct {
	Valid       bool          `json:"valid"`
	Files       []string      `json:"files,omitempty"`
	Fingerprint string        `json:"fingerprint,omitempty"`
	Rules       []ruleSummary `json:"rules"`
}

func summarizeRule(r policy.Rule) ruleSummary {
	return ruleSummary{
		Label:       r.Label,
		Description: r.Description,
		Action:      r.Action,
		Filters:     len(r.Filters()),
	}
}

func (s *Server) addValidateRulesTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:  "validate_rules",
			Title: "Validate Rule Document",
			Description: `Compile a rule document without evaluating it.

Returns the compiled rules (label, description, action, filter count) or the compile error
with the path of the offending entry, e.g. "no-malware.any[1].risks.malware".`,
			InputSchema: map[string]any{
				"type":       "object",
				"properties": rulesProperties,
			},
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:   true,
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(false),
			},
		},
		s.handleValidateRules,
	)
}

func (s *Server) handleValidateRules(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args rulesArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(err.Error()), nil
	}

	set, err := s.loadRules(args)
	if err != nil {
		return enrichedError(err.Error(), ruleErrorSteps(err)), nil
	}

	resp := validateResponse{
		Valid:       true,
		Files:       set.Files,
		Fingerprint: set.Fingerprint,
		Rules:       make([]ruleSummary, 0, len(set.Rules)),
	}
	for _, r := range set.Rules {
		resp.Rules = append(resp.Rules, summarizeRule(r))
	}
	logToSession(ctx, req, logInfo, fmt.Sprintf("%d rules compiled", len(resp.Rules)))
	return jsonResult(resp)
}

// ═══════════════════════════════════════════════════════════════════════════
// list_filters
// ═══════════════════════════════════════════════════════════════════════════

type filterInfo struct {
	Kind    policy.Kind `json:"kind"`
	Summary string      `json:"summary"`
}

type listFiltersResponse struct {
	Filters      []filterInfo `json:"filters"`
	Actions      []string     `json:"actions"`
	RiskDomains  []string     `json:"risk_domains"`
	RuleTemplate string       `json:"rule_template"`
}

const ruleTemplate = `<label>:
  description: <text>
  action: abort | warn | log | ignore
  <kind>: <spec>`

func (s *Server) addListFiltersTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:        "list_filters",
			Title:       "List Filter Kinds",
			Description: "Describe every filter kind a rule may use, the rule actions and the risk domains.",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:   true,
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(false),
			},
		},
		s.handleListFilters,
	)
}

func (s *Server) handleListFilters(_ context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp := listFiltersResponse{RuleTemplate: ruleTemplate}
	for _, k := range policy.Kinds {
		resp.Filters = append(resp.Filters, filterInfo{Kind: k, Summary: k.Summary()})
	}
	for _, a := range policy.Actions {
		resp.Actions = append(resp.Actions, string(a))
	}
	for _, d := range policy.RiskDomains {
		resp.RiskDomains = append(resp.RiskDomains, string(d))
	}
	return jsonResult(resp)
}
