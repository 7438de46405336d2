// ABOUTME: Code-tool variant: platform_info reports routing diagnostics without an API call.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// platformInfoTool demonstrates the CodeTool variant: it answers from the
// request context instead of describing an endpoint, but callers see the
// same validate/process/format contract as every other tool.
func platformInfoTool() Tool {
	return CodeTool{
		Definition: Definition{
			Name:        "platform_info",
			Description: "Show which Docebo platform this session is routed to and how it was resolved.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {},
				"additionalProperties": false
			}`),
			Annotations: Annotations{ReadOnly: true},
		},
		Handler: func(_ context.Context, _ map[string]any, rc RequestContext) (string, error) {
			info := map[string]any{
				"api_base_url":  rc.Tenant.BaseURL,
				"tenant_mode":   string(rc.Tenant.Mode),
				"authenticated": rc.Identity.Token != "",
			}
			out, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return "", fmt.Errorf("encoding platform info: %w", err)
			}
			return string(out), nil
		},
	}
}

// Catalog returns every tool the gateway ships.
func Catalog() []Tool {
	var out []Tool
	out = append(out, courseTools()...)
	out = append(out, enrollmentTools()...)
	out = append(out, userTools()...)
	out = append(out, platformInfoTool())
	return out
}
