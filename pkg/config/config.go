// Package config loads depgate settings from defaults, an optional config
// file, DEPGATE_* environment variables and explicitly set CLI flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/depgate/depgate/pkg/analysis"
	"github.com/depgate/depgate/pkg/defaults"
	"github.com/depgate/depgate/pkg/policy"
)

// Config holds the settings of a check run.
type Config struct {
	RulesDir  string `mapstructure:"rules_dir"`
	Packages  string `mapstructure:"packages"`
	Ecosystem string `mapstructure:"ecosystem"`

	// Output settings
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	Template string `mapstructure:"template"`
	NoColor  bool   `mapstructure:"no_color"`
	Silent   bool   `mapstructure:"silent"`
	Verbose  bool   `mapstructure:"verbose"`

	Workers int `mapstructure:"workers"`

	// FailOn lists the actions whose failure fails the process.
	FailOn []string `mapstructure:"fail_on"`

	MetricsFile string     `mapstructure:"metrics_file"`
	OTel        OTelConfig `mapstructure:"otel"`
}

// OTelConfig enables trace export when Endpoint is set.
type OTelConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
}

// Keys accepted in config files and as override keys.
const (
	KeyRulesDir     = "rules_dir"
	KeyPackages     = "packages"
	KeyEcosystem    = "ecosystem"
	KeyFormat       = "format"
	KeyOutput       = "output"
	KeyTemplate     = "template"
	KeyNoColor      = "no_color"
	KeySilent       = "silent"
	KeyVerbose      = "verbose"
	KeyWorkers      = "workers"
	KeyFailOn       = "fail_on"
	KeyMetricsFile  = "metrics_file"
	KeyOTelEndpoint = "otel.endpoint"
	KeyOTelInsecure = "otel.insecure"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyRulesDir, defaults.RulesDir)
	v.SetDefault(KeyPackages, "")
	v.SetDefault(KeyEcosystem, "")
	v.SetDefault(KeyFormat, defaults.FormatConsole)
	v.SetDefault(KeyOutput, "")
	v.SetDefault(KeyTemplate, "")
	v.SetDefault(KeyNoColor, false)
	v.SetDefault(KeySilent, false)
	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeyWorkers, defaults.Workers)
	v.SetDefault(KeyFailOn, []string{string(policy.ActionAbort)})
	v.SetDefault(KeyMetricsFile, "")
	v.SetDefault(KeyOTelEndpoint, "")
	v.SetDefault(KeyOTelInsecure, false)
}

// Load builds a Config. path names a config file; when empty, .depgate.*
// in the working directory is used if present. overrides holds values of
// flags the user set explicitly, keyed by config key.
func Load(path string, overrides map[string]any) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(defaults.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrInvalidConfig, path, err)
		}
	} else {
		v.SetConfigName(defaults.ConfigFile)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
			}
		}
	}

	for k, val := range overrides {
		v.Set(k, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if c.RulesDir == "" {
		return fmt.Errorf("%w: %s", ErrMissingRequired, KeyRulesDir)
	}
	if !slices.Contains(defaults.Formats, c.Format) {
		return fmt.Errorf("%w: format %q (want one of %s)", ErrInvalidConfig, c.Format, strings.Join(defaults.Formats, ", "))
	}
	if c.Format == defaults.FormatTemplate && c.Template == "" {
		return fmt.Errorf("%w: %s is needed for the template format", ErrMissingRequired, KeyTemplate)
	}
	if c.Format == defaults.FormatPDF && c.Output == "" {
		return fmt.Errorf("%w: %s is needed for the pdf format", ErrMissingRequired, KeyOutput)
	}
	if c.Workers < 0 || c.Workers > defaults.WorkersMax {
		return fmt.Errorf("%w: workers must be between 0 and %d, got %d", ErrInvalidConfig, defaults.WorkersMax, c.Workers)
	}
	if c.Ecosystem != "" {
		if _, ok := analysis.LockfileEcosystems[c.Ecosystem]; !ok {
			return fmt.Errorf("%w: unsupported ecosystem %q", ErrInvalidConfig, c.Ecosystem)
		}
	}
	if _, err := c.FailOnActions(); err != nil {
		return err
	}
	if c.Silent && c.Verbose {
		return fmt.Errorf("%w: silent and verbose are mutually exclusive", ErrInvalidConfig)
	}
	return nil
}

// FailOnActions parses FailOn.
func (c *Config) FailOnActions() ([]policy.Action, error) {
	out := make([]policy.Action, 0, len(c.FailOn))
	for _, s := range c.FailOn {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		a, err := policy.ParseAction(s)
		if err != nil {
			return nil, fmt.Errorf("%w: fail_on: %v", ErrInvalidConfig, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// EcosystemFor returns the ecosystem for the configured lockfile kind.
func (c *Config) EcosystemFor() (analysis.Ecosystem, bool) {
	e, ok := analysis.LockfileEcosystems[c.Ecosystem]
	return e, ok
}
