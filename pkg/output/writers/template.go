package writers

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/depgate/depgate/pkg/output"
	"github.com/depgate/depgate/pkg/policy"
)

var _ output.Writer = (*TemplateWriter)(nil)

// TemplateConfig configures the template writer. The first non-empty
// source wins: TemplatePath, TemplateString, BuiltIn.
type TemplateConfig struct {
	// TemplatePath is the path to a template file.
	TemplatePath string

	// TemplateString is an inline template.
	TemplateString string

	// BuiltIn names a built-in template: "text-summary", "markdown" or "csv".
	BuiltIn string
}

var builtInTemplates = map[string]string{
	"text-summary": `depgate {{ .Version }} run {{ .RunID }}
Packages: {{ .Summary.Packages }}  Rules: {{ .Summary.Rules }}  Failed: {{ .Summary.Failed }}
{{- range failed .Verdict.Actions }}
{{ actionLabel .Action }} {{ .Label }}: {{ .Description }}
{{- range lines .Message }}
  {{ . }}
{{- end }}
{{- end }}
Result: {{ if .Verdict.Pass }}PASS{{ else }}FAIL{{ end }}
`,

	"markdown": `## depgate policy report

| Rule | Action | Result |
|------|--------|--------|
{{- range .Verdict.Actions }}
| {{ .Label }} | {{ .Action }} | {{ if .Pass }}pass{{ else }}**fail**{{ end }} |
{{- end }}
{{ range failed .Verdict.Actions }}
### {{ .Label }}

{{ .Description }}

{{ range lines .Message }}- {{ . }}
{{ end }}
{{- end }}`,

	"csv": `label,action,pass,message
{{- range .Verdict.Actions }}
{{ escapeCSV .Label }},{{ .Action }},{{ .Pass }},{{ escapeCSV .Message }}
{{- end }}
`,
}

// TemplateWriter renders a report through a Go text/template.
// Sprig functions are available alongside failed, lines, actionLabel and
// escapeCSV.
type TemplateWriter struct {
	w    io.Writer
	tmpl *template.Template
}

// NewTemplateWriter parses the configured template.
func NewTemplateWriter(w io.Writer, config TemplateConfig) (*TemplateWriter, error) {
	var content string
	switch {
	case config.TemplatePath != "":
		data, err := os.ReadFile(config.TemplatePath)
		if err != nil {
			return nil, fmt.Errorf("reading template: %w", err)
		}
		content = string(data)
	case config.TemplateString != "":
		content = config.TemplateString
	case config.BuiltIn != "":
		var ok bool
		content, ok = builtInTemplates[config.BuiltIn]
		if !ok {
			return nil, fmt.Errorf("unknown built-in template %q", config.BuiltIn)
		}
	default:
		return nil, fmt.Errorf("no template configured")
	}

	tmpl, err := template.New("report").Funcs(sprig.TxtFuncMap()).Funcs(templateFuncs()).Parse(content)
	if err != nil {
		return nil, fmt.Errorf("template parse error: %w", err)
	}
	return &TemplateWriter{w: w, tmpl: tmpl}, nil
}

// Write executes the template with r as data.
func (tw *TemplateWriter) Write(r *output.Report) error {
	if err := tw.tmpl.Execute(tw.w, r); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}
	return nil
}

// BuiltInTemplates returns the names of the built-in templates.
func BuiltInTemplates() []string {
	return []string{"text-summary", "markdown", "csv"}
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"failed": func(actions []policy.RuleAction) []policy.RuleAction {
			var out []policy.RuleAction
			for _, a := range actions {
				if !a.Pass && a.Action != policy.ActionIgnore {
					out = append(out, a)
				}
			}
			return out
		},
		"lines": func(s string) []string {
			if s == "" {
				return nil
			}
			return strings.Split(s, "\n")
		},
		"actionLabel": actionLabel,
		"escapeCSV": func(s string) string {
			if strings.ContainsAny(s, ",\"\n\r") {
				return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
			}
			return s
		},
	}
}

// actionLabel is the console prefix for a failed rule's action.
func actionLabel(a policy.Action) string {
	switch a {
	case policy.ActionAbort:
		return "FAIL"
	case policy.ActionWarn:
		return "WARN"
	case policy.ActionLog:
		return "LOG"
	default:
		return strings.ToUpper(string(a))
	}
}
