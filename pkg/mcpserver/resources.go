package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/depgate/depgate/pkg/analysis"
	"github.com/depgate/depgate/pkg/defaults"
	"github.com/depgate/depgate/pkg/jsonutil"
	"github.com/depgate/depgate/pkg/policy"
)

const (
	versionURI = "depgate://version"
	rulesURI   = "depgate://rules"
)

// registerResources adds read-only context resources.
func (s *Server) registerResources() {
	s.addVersionResource()
	s.addRulesResource()
}

func (s *Server) addVersionResource() {
	s.mcp.AddResource(
		&mcp.Resource{
			URI:         versionURI,
			Name:        "depgate version",
			Description: "Server version, tools and accepted enumerations.",
			MIMEType:    "application/json",
		},
		func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			ecosystems := make([]string, 0, len(analysis.Ecosystems))
			for _, e := range analysis.Ecosystems {
				ecosystems = append(ecosystems, string(e))
			}
			info := map[string]any{
				"name":       defaults.ToolName,
				"version":    defaults.Version,
				"tools":      []string{"check_policy", "validate_rules", "list_filters"},
				"ecosystems": ecosystems,
				"formats":    defaults.Formats,
			}
			return jsonResource(versionURI, info)
		},
	)
}

func (s *Server) addRulesResource() {
	s.mcp.AddResource(
		&mcp.Resource{
			URI:         rulesURI,
			Name:        "Configured rules",
			Description: "The rules compiled from the server's rules directory.",
			MIMEType:    "application/json",
		},
		func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			set, err := policy.LoadDir(s.config.RulesDir)
			if err != nil {
				return nil, err
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
			return jsonResource(rulesURI, resp)
		},
	)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := jsonutil.MarshalIndent(v, "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{URI: uri, MIMEType: "application/json", Text: string(data)},
		},
	}, nil
}
