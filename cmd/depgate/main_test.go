package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depgate/depgate/pkg/jsonutil"
	"github.com/depgate/depgate/pkg/output/exitcode"
)

const records = `[{
  "name": "left-pad", "version": "1.3.0", "license": "WTFPL", "type": "npm",
  "riskVectors": {"author": 90, "vulnerabilities": 70, "engineering": 40,
                  "malicious_code": 100, "license": 55, "total": 61},
  "issues": [{"tag": "HV00001", "severity": "medium", "domain": "engineering"}]
}]`

const rules = `
no-wtfpl:
  description: WTFPL is not allowed
  action: abort
  license:
    is: [WTFPL]
`

const warnRules = `
stale:
  description: engineering issues
  action: warn
  issue:
    severity: medium
`

// fixture writes a rules dir and a records file under a temp working dir.
func fixture(t *testing.T, ruleDoc string) (rulesDir, pkgFile string) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)

	rulesDir = filepath.Join(dir, "rules")
	require.NoError(t, os.Mkdir(rulesDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(rulesDir, "policy.yaml"), []byte(ruleDoc), 0o644))

	pkgFile = filepath.Join(dir, "analysis.json")
	require.NoError(t, os.WriteFile(pkgFile, []byte(records), 0o644))
	return rulesDir, pkgFile
}

func execute(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(context.Background(), args, streams{in: strings.NewReader(stdin), out: &out, err: &errOut})
	return code, out.String(), errOut.String()
}

func TestRunVersionAndUsage(t *testing.T) {
	code, out, _ := execute(t, "", "version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "depgate ")

	code, _, errOut := execute(t, "")
	assert.Equal(t, exitcode.UserError.Int(), code)
	assert.Contains(t, errOut, "Usage:")

	code, _, errOut = execute(t, "", "frobnicate")
	assert.Equal(t, exitcode.UserError.Int(), code)
	assert.Contains(t, errOut, `unknown command "frobnicate"`)

	code, out, _ = execute(t, "", "help")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Exit codes:")
}

func TestCheckConsole(t *testing.T) {
	tests := []struct {
		name     string
		ruleDoc  string
		extra    []string
		wantCode int
		wantOut  string
	}{
		{
			name:     "abort failure fails the run",
			ruleDoc:  rules,
			wantCode: exitcode.PolicyFailed.Int(),
			wantOut:  "[depgate] FAIL > no-wtfpl: WTFPL is not allowed",
		},
		{
			name:     "warn failure passes by default",
			ruleDoc:  warnRules,
			wantCode: exitcode.Success.Int(),
			wantOut:  "[depgate] WARN > stale: engineering issues",
		},
		{
			name:     "warn failure fails with fail-on warn",
			ruleDoc:  warnRules,
			extra:    []string{"-fail-on", "abort,warn"},
			wantCode: exitcode.PolicyFailed.Int(),
			wantOut:  "WARN > stale",
		},
		{
			name:     "passing rules",
			ruleDoc:  "ok:\n  description: gpl only\n  action: abort\n  license:\n    is: [GPL-3.0]\n",
			wantCode: exitcode.Success.Int(),
			wantOut:  "[depgate] All Packages Pass Policy.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rulesDir, pkgFile := fixture(t, tt.ruleDoc)
			args := append([]string{"check", "-no-color", "-rules", rulesDir, "-packages", pkgFile}, tt.extra...)

			code, out, errOut := execute(t, "", args...)
			assert.Equal(t, tt.wantCode, code, errOut)
			assert.Contains(t, out, tt.wantOut)
		})
	}
}

func TestCheckJSONFromStdin(t *testing.T) {
	rulesDir, _ := fixture(t, rules)

	code, out, errOut := execute(t, records, "check", "-rules", rulesDir, "-packages", "-", "-format", "json", "-workers", "4")
	require.Equal(t, exitcode.PolicyFailed.Int(), code, errOut)

	var report struct {
		RuleFiles []string `json:"rule_files"`
		Summary   struct {
			Packages int `json:"packages"`
			Failed   int `json:"failed"`
		} `json:"summary"`
		Verdict struct {
			Pass bool `json:"pass"`
		} `json:"verdict"`
	}
	require.NoError(t, jsonutil.Unmarshal([]byte(out), &report))
	assert.False(t, report.Verdict.Pass)
	assert.Equal(t, 1, report.Summary.Packages)
	assert.Equal(t, 1, report.Summary.Failed)
	assert.Equal(t, []string{"policy.yaml"}, report.RuleFiles)
}

func TestCheckWritesFiles(t *testing.T) {
	rulesDir, pkgFile := fixture(t, rules)
	dir := filepath.Dir(pkgFile)
	pdfPath := filepath.Join(dir, "report.pdf")
	promPath := filepath.Join(dir, "depgate.prom")

	code, _, errOut := execute(t, "", "check", "-rules", rulesDir, "-packages", pkgFile,
		"-format", "pdf", "-o", pdfPath, "-metrics-file", promPath)
	require.Equal(t, exitcode.PolicyFailed.Int(), code, errOut)

	pdf, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	prom, err := os.ReadFile(promPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "depgate_evaluations_total")
}

func TestCheckErrors(t *testing.T) {
	rulesDir, pkgFile := fixture(t, rules)
	dir := filepath.Dir(pkgFile)
	badRules := filepath.Join(dir, "bad")
	require.NoError(t, os.Mkdir(badRules, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(badRules, "a.yaml"), []byte("r:\n  description: d\n"), 0o644))

	tests := []struct {
		name     string
		args     []string
		wantCode exitcode.Code
		wantErr  string
	}{
		{name: "packages required", args: []string{"-rules", rulesDir}, wantCode: exitcode.UserError, wantErr: "-packages is required"},
		{name: "bad format", args: []string{"-rules", rulesDir, "-packages", pkgFile, "-format", "xml"}, wantCode: exitcode.UserError, wantErr: "format"},
		{name: "bad ecosystem", args: []string{"-rules", rulesDir, "-packages", pkgFile, "-ecosystem", "cpan"}, wantCode: exitcode.UserError, wantErr: "ecosystem"},
		{name: "bad fail-on", args: []string{"-rules", rulesDir, "-packages", pkgFile, "-fail-on", "explode"}, wantCode: exitcode.UserError, wantErr: "fail_on"},
		{name: "unknown flag", args: []string{"-bogus"}, wantCode: exitcode.UserError},
		{name: "compile error", args: []string{"-rules", badRules, "-packages", pkgFile}, wantCode: exitcode.InputError, wantErr: "a.yaml"},
		{name: "missing rules dir", args: []string{"-rules", filepath.Join(dir, "nope"), "-packages", pkgFile}, wantCode: exitcode.InputError, wantErr: "rules not found"},
		{name: "missing packages file", args: []string{"-rules", rulesDir, "-packages", filepath.Join(dir, "nope.json")}, wantCode: exitcode.InputError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := execute(t, "", append([]string{"check"}, tt.args...)...)
			assert.Equal(t, tt.wantCode.Int(), code, errOut)
			assert.Contains(t, errOut, tt.wantErr)
		})
	}
}

func TestCheckConfigFile(t *testing.T) {
	rulesDir, pkgFile := fixture(t, warnRules)
	cfg := "rules_dir: " + rulesDir + "\nfail_on: [warn]\nno_color: true\n"
	require.NoError(t, os.WriteFile(".depgate.yaml", []byte(cfg), 0o644))

	code, out, errOut := execute(t, "", "check", "-packages", pkgFile)
	assert.Equal(t, exitcode.PolicyFailed.Int(), code, errOut)
	assert.Contains(t, out, "WARN > stale")

	// An explicit flag beats the config file.
	code, _, errOut = execute(t, "", "check", "-packages", pkgFile, "-fail-on", "abort")
	assert.Equal(t, exitcode.Success.Int(), code, errOut)
}

func TestValidate(t *testing.T) {
	rulesDir, _ := fixture(t, rules+warnRules)

	code, out, errOut := execute(t, "", "validate", "-no-color", "-rules", rulesDir)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "2 rules from 1 files")
	assert.Contains(t, out, "no-wtfpl")
	assert.Contains(t, out, "stale")

	code, _, _ = execute(t, "", "validate", "-rules", filepath.Join(rulesDir, "missing"))
	assert.Equal(t, exitcode.InputError.Int(), code)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"abort", "warn"}, splitList(" abort, ,warn "))
	assert.Nil(t, splitList(""))
}
