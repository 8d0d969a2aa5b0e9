// Package defaults provides canonical default values for the entire codebase.
// This is the SINGLE SOURCE OF TRUTH for runtime configuration defaults.
//
// Usage:
//
//	cfg.RulesDir = defaults.RulesDir
//	pool := workerpool.New(defaults.Workers)
//
// DO NOT hardcode these values anywhere else.
package defaults

import "time"

// Version is the current depgate version
const Version = "0.6.0"

// ToolName is the binary and service name.
const ToolName = "depgate"

// ============================================================================
// PATHS
// ============================================================================

const (
	// RulesDir is the directory scanned for rule files when none is given.
	RulesDir = ".depgate_rules"

	// ConfigFile is the config file name looked up in the working directory.
	ConfigFile = ".depgate"

	// EnvPrefix prefixes every environment override (DEPGATE_RULES_DIR, ...).
	EnvPrefix = "DEPGATE"
)

// ============================================================================
// EVALUATION
// ============================================================================

const (
	// Workers is the default rule evaluation parallelism (1 = sequential).
	Workers = 1

	// WorkersMax caps -workers.
	WorkersMax = 64
)

// ============================================================================
// OUTPUT
// ============================================================================

const (
	// FormatConsole renders the verdict for a terminal.
	FormatConsole = "console"

	// FormatJSON writes the report envelope as JSON.
	FormatJSON = "json"

	// FormatJUnit writes one test case per rule.
	FormatJUnit = "junit"

	// FormatTemplate renders a Go text/template.
	FormatTemplate = "template"

	// FormatPDF writes a PDF summary.
	FormatPDF = "pdf"
)

// Formats lists every supported output format.
var Formats = []string{FormatConsole, FormatJSON, FormatJUnit, FormatTemplate, FormatPDF}

// ============================================================================
// TELEMETRY
// ============================================================================

const (
	// OTelEndpoint is the OTLP/gRPC collector address used when tracing is on.
	OTelEndpoint = "localhost:4317"

	// MCPHTTPAddr is the listen address for `depgate mcp -http`.
	MCPHTTPAddr = ":8080"

	// MetricsPath is where the Prometheus handler is mounted.
	MetricsPath = "/metrics"

	// MetricsNamespace prefixes every exported metric name.
	MetricsNamespace = "depgate"
)

// Timeouts for telemetry and the MCP HTTP server.
const (
	OTelConnectTimeout  = 10 * time.Second
	OTelShutdownTimeout = 5 * time.Second

	HTTPReadHeaderTimeout = 10 * time.Second
	HTTPShutdownTimeout   = 5 * time.Second
)
