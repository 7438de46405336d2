// ABOUTME: Declarative tool definitions for the Docebo course catalog endpoints.

package tools

import "encoding/json"

func courseTools() []Tool {
	return []Tool{
		HTTPTool{Definition{
			Name:        "list_courses",
			Description: "List courses on the platform. Supports pagination and free-text search.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"page": {"type": "integer", "minimum": 1, "description": "Page number (1-based)"},
					"page_size": {"type": "integer", "minimum": 1, "maximum": 200, "description": "Items per page"},
					"search_text": {"type": "string", "description": "Free-text filter on course name and code"},
					"sort_attr": {"type": "string", "enum": ["name", "code", "date_last_updated"], "description": "Sort attribute"}
				},
				"additionalProperties": false
			}`),
			Method:       "GET",
			PathTemplate: "learn/v1/courses",
			Params: []Param{
				{Name: "page", In: InQuery},
				{Name: "page_size", In: InQuery},
				{Name: "search_text", In: InQuery},
				{Name: "sort_attr", In: InQuery},
			},
			Security:    "oauth2",
			Annotations: Annotations{ReadOnly: true},
		}},
		HTTPTool{Definition{
			Name:        "get_course",
			Description: "Get the full detail of a single course by its numeric id.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"course_id": {"type": "string", "description": "Numeric course id"}
				},
				"required": ["course_id"],
				"additionalProperties": false
			}`),
			Method:       "GET",
			PathTemplate: "learn/v1/courses/{course_id}",
			Params: []Param{
				{Name: "course_id", In: InPath},
			},
			Security:    "oauth2",
			Annotations: Annotations{ReadOnly: true},
		}},
	}
}
