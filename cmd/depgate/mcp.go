package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/depgate/depgate/pkg/defaults"
	"github.com/depgate/depgate/pkg/mcpserver"
	"github.com/depgate/depgate/pkg/metrics"
	"github.com/depgate/depgate/pkg/output/exitcode"
)

// runMCP serves the policy tools over stdio, or streamable HTTP with -http.
func runMCP(ctx context.Context, args []string, s streams) (exitcode.Code, error) {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	fs.SetOutput(s.err)
	configPath := fs.String("config", "", "Config file")
	httpAddr := fs.String("http", "", "HTTP address to listen on (e.g. "+defaults.MCPHTTPAddr+"). Disables stdio.")
	bindFlags(fs, "rules", "workers", "verbose", "otel-endpoint", "otel-insecure")
	fs.Usage = func() {
		fmt.Fprintf(s.err, "Usage: %s mcp [flags]\n\n", defaults.ToolName)
		fmt.Fprintf(s.err, "Start an MCP server exposing check_policy, validate_rules and list_filters.\n\n")
		fmt.Fprintf(s.err, "Examples:\n")
		fmt.Fprintf(s.err, "  %s mcp\n", defaults.ToolName)
		fmt.Fprintf(s.err, "  %s mcp -http %s\n\n", defaults.ToolName, defaults.MCPHTTPAddr)
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
	// stdout carries the stdio transport; logs go to stderr.
	logger := newLogger(cfg, s.err)

	rec, err := metrics.NewRecorder()
	if err != nil {
		return exitcode.Internal, err
	}
	tracer, shutdown, err := setupTracing(ctx, cfg, logger)
	if err != nil {
		return exitcode.Internal, err
	}
	defer shutdown()

	srv := mcpserver.New(&mcpserver.Config{
		RulesDir: cfg.RulesDir,
		Workers:  cfg.Workers,
		Recorder: rec,
		Logger:   logger,
		Tracer:   tracer,
	})
	srv.MarkReady()

	if *httpAddr == "" {
		if err := srv.RunStdio(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return exitcode.Internal, err
		}
		return exitcode.Success, nil
	}

	httpSrv := &http.Server{
		Addr:              *httpAddr,
		Handler:           srv.HTTPHandler(),
		ReadHeaderTimeout: defaults.HTTPReadHeaderTimeout,
		MaxHeaderBytes:    1 << 20,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaults.HTTPShutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("mcp http shutdown", slog.Any("error", err))
		}
	}()

	logger.Info("mcp http listening", slog.String("addr", *httpAddr), slog.String("rules", cfg.RulesDir))
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return exitcode.Internal, err
	}
	return exitcode.Success, nil
}
