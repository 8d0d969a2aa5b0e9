// Package mcpserver exposes depgate as a Model Context Protocol (MCP) server,
// so assistants can evaluate dependency policies without shelling out.
//
// # Tools
//
//   - check_policy:   compile a rule document and evaluate package records
//   - validate_rules: compile a rule document and list its rules
//   - list_filters:   describe every filter kind a rule may use
//
// All tools are read-only and local. Rule documents and package records are
// passed inline as text; when no rule document is given, check_policy and
// validate_rules fall back to the server's rules directory.
//
// # Transports
//
//   - stdio: the default, used by IDE integrations.
//   - HTTP:  streamable HTTP, plus /health and /metrics.
package mcpserver
