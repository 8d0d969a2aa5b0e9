package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"sync/atomic"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/trace"

	"github.com/depgate/depgate/pkg/defaults"
	"github.com/depgate/depgate/pkg/jsonutil"
	"github.com/depgate/depgate/pkg/metrics"
	"github.com/depgate/depgate/pkg/policy"
)

// MCP logging levels; the SDK declares the type without constants.
const (
	logInfo    mcp.LoggingLevel = "info"
	logWarning mcp.LoggingLevel = "warning"
)

// Config holds MCP server configuration.
type Config struct {
	// RulesDir is loaded when a tool call carries no rule document.
	RulesDir string

	// Workers bounds parallel rule evaluation per call.
	Workers int

	// Recorder, when set, observes every evaluation and backs /metrics.
	Recorder *metrics.Recorder

	Logger *slog.Logger
	Tracer trace.Tracer
}

// Server wraps the MCP server with depgate tools.
type Server struct {
	mcp       *mcp.Server
	config    *Config
	evaluator *policy.Evaluator
	ready     atomic.Bool
}

// MCPServer returns the underlying MCP server, e.g. for in-memory transports in tests.
func (s *Server) MCPServer() *mcp.Server { return s.mcp }

// MarkReady makes /health report ok.
func (s *Server) MarkReady() { s.ready.Store(true) }

// IsReady reports whether MarkReady was called.
func (s *Server) IsReady() bool { return s.ready.Load() }

// New creates an MCP server with all tools and resources registered.
func New(cfg *Config) *Server {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.RulesDir == "" {
		cfg.RulesDir = defaults.RulesDir
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	opts := []policy.Option{
		policy.WithWorkers(cfg.Workers),
		policy.WithLogger(cfg.Logger),
	}
	if cfg.Recorder != nil {
		opts = append(opts, policy.WithObserver(cfg.Recorder))
	}
	if cfg.Tracer != nil {
		opts = append(opts, policy.WithTracer(cfg.Tracer))
	}

	s := &Server{
		config:    cfg,
		evaluator: policy.NewEvaluator(opts...),
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    defaults.ToolName,
			Title:   "depgate policy engine",
			Version: defaults.Version,
		},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)

	s.registerTools()
	s.registerResources()

	return s
}

const serverInstructions = `depgate evaluates dependency-analysis package records against a declarative rule document.

Start with list_filters to see the filter kinds. Use validate_rules to check a rule document compiles,
then check_policy with the package records to get a verdict. Nothing here touches the network.`

// RunStdio runs the MCP server over stdio.
func (s *Server) RunStdio(ctx context.Context) error {
	s.config.Logger.Debug("mcp stdio transport started")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// HTTPHandler returns the streamable HTTP handler.
//
// The handler mounts:
//   - /health   readiness probe (GET, HEAD)
//   - /metrics  prometheus exposition, when a Recorder is configured
//   - /mcp, /   streamable HTTP transport
func (s *Server) HTTPHandler() http.Handler {
	streamable := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return s.mcp },
		&mcp.StreamableHTTPOptions{},
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	if s.config.Recorder != nil {
		mux.Handle(defaults.MetricsPath, s.config.Recorder.Handler())
	}
	mux.Handle("/mcp", streamable)
	mux.Handle("/", streamable)

	return corsMiddleware(s.recoveryMiddleware(securityHeaders(mux)))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	status := "ok"
	code := http.StatusOK
	if !s.IsReady() {
		status = "starting"
		code = http.StatusServiceUnavailable
	}
	w.WriteHeader(code)
	_ = jsonutil.MarshalWrite(w, map[string]string{
		"status":  status,
		"service": defaults.ToolName + "-mcp",
		"version": defaults.Version,
	}, "")
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		w.Header().Add("Vary", "Origin")

		// Non-browser client.
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers",
			strings.Join([]string{
				"Content-Type",
				"Authorization",
				"Mcp-Session-Id",
				"MCP-Protocol-Version",
				"Last-Event-ID",
				"Accept",
			}, ", "))
		w.Header().Set("Access-Control-Expose-Headers", "Mcp-Session-Id, MCP-Protocol-Version")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.config.Logger.Error("panic in HTTP handler",
					slog.Any("panic", err), slog.String("stack", string(debug.Stack())))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"internal server error"}`))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// logToSession sends a log message to the client. Delivery is best-effort.
func logToSession(ctx context.Context, req *mcp.CallToolRequest, level mcp.LoggingLevel, data any) {
	if req.Session == nil {
		return
	}
	_ = req.Session.Log(ctx, &mcp.LoggingMessageParams{
		Level:  level,
		Logger: defaults.ToolName,
		Data:   data,
	})
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// jsonResult marshals v to indented JSON and wraps it in a CallToolResult.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := jsonutil.MarshalIndent(v, "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return textResult(string(data)), nil
}

// errorResult is an IsError result, so the model sees the error and can retry.
func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}

// enrichedError is an error result with recovery hints.
func enrichedError(msg string, recoverySteps []string) *mcp.CallToolResult {
	type errResponse struct {
		Error         string   `json:"error"`
		RecoverySteps []string `json:"recovery_steps"`
	}
	data, _ := jsonutil.MarshalIndent(errResponse{
		Error:         msg,
		RecoverySteps: recoverySteps,
	}, "  ")
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
		IsError: true,
	}
}

func boolPtr(b bool) *bool { return &b }

// parseArgs unmarshals the raw JSON arguments of a tool call into dst.
func parseArgs(req *mcp.CallToolRequest, dst any) error {
	if len(req.Params.Arguments) == 0 {
		return nil
	}
	if err := jsonutil.Unmarshal(req.Params.Arguments, dst); err != nil {
		return fmt.Errorf("parsing tool arguments: %w", err)
	}
	return nil
}
