// ABOUTME: Declarative tool definitions for the Docebo user management endpoints.

package tools

import "encoding/json"

func userTools() []Tool {
	return []Tool{
		HTTPTool{Definition{
			Name:        "list_users",
			Description: "List platform users. Supports pagination and free-text search on name and email.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"page": {"type": "integer", "minimum": 1},
					"page_size": {"type": "integer", "minimum": 1, "maximum": 200},
					"search_text": {"type": "string"}
				},
				"additionalProperties": false
			}`),
			Method:       "GET",
			PathTemplate: "manage/v1/user",
			Params: []Param{
				{Name: "page", In: InQuery},
				{Name: "page_size", In: InQuery},
				{Name: "search_text", In: InQuery},
			},
			Security:    "oauth2",
			Annotations: Annotations{ReadOnly: true},
		}},
		HTTPTool{Definition{
			Name:        "get_user",
			Description: "Get one user's profile, fields, and status by numeric id.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"user_id": {"type": "string", "description": "Numeric user id"}
				},
				"required": ["user_id"],
				"additionalProperties": false
			}`),
			Method:       "GET",
			PathTemplate: "manage/v1/user/{user_id}",
			Params: []Param{
				{Name: "user_id", In: InPath},
			},
			Security:    "oauth2",
			Annotations: Annotations{ReadOnly: true},
		}},
		HTTPTool{Definition{
			Name:        "create_user",
			Description: "Create a platform user. Requires a unique username and email.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"body": {
						"type": "object",
						"properties": {
							"userid": {"type": "string", "description": "Unique username"},
							"email": {"type": "string"},
							"firstname": {"type": "string"},
							"lastname": {"type": "string"},
							"password": {"type": "string"}
						},
						"required": ["userid", "email"]
					}
				},
				"required": ["body"],
				"additionalProperties": false
			}`),
			Method:          "POST",
			PathTemplate:    "manage/v1/user",
			Params:          []Param{{Name: "body", In: InBody}},
			BodyContentType: "application/json",
			Security:        "oauth2",
		}},
	}
}
