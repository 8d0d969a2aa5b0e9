package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depgate/depgate/pkg/analysis"
	"github.com/depgate/depgate/pkg/defaults"
	"github.com/depgate/depgate/pkg/policy"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "depgate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, defaults.RulesDir, cfg.RulesDir)
	assert.Equal(t, defaults.FormatConsole, cfg.Format)
	assert.Equal(t, defaults.Workers, cfg.Workers)
	assert.Equal(t, []string{"abort"}, cfg.FailOn)
	assert.Empty(t, cfg.OTel.Endpoint)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
rules_dir: policies
format: json
workers: 4
fail_on: [abort, warn]
otel:
  endpoint: collector:4317
  insecure: true
`)
	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "policies", cfg.RulesDir)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, []string{"abort", "warn"}, cfg.FailOn)
	assert.Equal(t, "collector:4317", cfg.OTel.Endpoint)
	assert.True(t, cfg.OTel.Insecure)

	actions, err := cfg.FailOnActions()
	require.NoError(t, err)
	assert.Equal(t, []policy.Action{policy.ActionAbort, policy.ActionWarn}, actions)
}

func TestLoad_DiscoversConfigInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".depgate.yaml"), []byte("rules_dir: found\n"), 0o644))
	t.Chdir(dir)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "found", cfg.RulesDir)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, "rules_dir: from-file\nformat: json\nworkers: 2\n")
	t.Setenv("DEPGATE_FORMAT", "junit")
	t.Setenv("DEPGATE_OTEL_ENDPOINT", "env:4317")

	cfg, err := Load(path, map[string]any{KeyWorkers: 8})
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.RulesDir)
	assert.Equal(t, "junit", cfg.Format, "env beats file")
	assert.Equal(t, 8, cfg.Workers, "flag beats file")
	assert.Equal(t, "env:4317", cfg.OTel.Endpoint)
}

func TestLoad_FailOnFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DEPGATE_FAIL_ON", "warn,log")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"warn", "log"}, cfg.FailOn)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Load(writeConfig(t, "format: [unclosed\n"), nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Load(writeConfig(t, "format: xml\n"), nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{RulesDir: "r", Format: defaults.FormatConsole, Workers: 1, FailOn: []string{"abort"}}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "no rules dir", mutate: func(c *Config) { c.RulesDir = "" }, wantErr: ErrMissingRequired},
		{name: "bad format", mutate: func(c *Config) { c.Format = "yaml" }, wantErr: ErrInvalidConfig},
		{name: "template without file", mutate: func(c *Config) { c.Format = defaults.FormatTemplate }, wantErr: ErrMissingRequired},
		{name: "pdf without output", mutate: func(c *Config) { c.Format = defaults.FormatPDF }, wantErr: ErrMissingRequired},
		{name: "too many workers", mutate: func(c *Config) { c.Workers = defaults.WorkersMax + 1 }, wantErr: ErrInvalidConfig},
		{name: "bad ecosystem", mutate: func(c *Config) { c.Ecosystem = "cocoapods" }, wantErr: ErrInvalidConfig},
		{name: "bad fail_on", mutate: func(c *Config) { c.FailOn = []string{"abort", "explode"} }, wantErr: ErrInvalidConfig},
		{name: "silent and verbose", mutate: func(c *Config) { c.Silent, c.Verbose = true, true }, wantErr: ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEcosystemFor(t *testing.T) {
	c := Config{Ecosystem: "poetry"}
	e, ok := c.EcosystemFor()
	assert.True(t, ok)
	assert.Equal(t, analysis.EcosystemPyPI, e)
}
