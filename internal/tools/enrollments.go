// ABOUTME: Declarative tool definitions for the Docebo enrollment endpoints.

package tools

import "encoding/json"

func enrollmentTools() []Tool {
	return []Tool{
		HTTPTool{Definition{
			Name:        "list_enrollments",
			Description: "List enrollments across the platform, optionally filtered by user or course.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"page": {"type": "integer", "minimum": 1},
					"page_size": {"type": "integer", "minimum": 1, "maximum": 200},
					"id_user": {"type": "integer", "description": "Filter by user id"},
					"id_course": {"type": "integer", "description": "Filter by course id"}
				},
				"additionalProperties": false
			}`),
			Method:       "GET",
			PathTemplate: "learn/v1/enrollments",
			Params: []Param{
				{Name: "page", In: InQuery},
				{Name: "page_size", In: InQuery},
				{Name: "id_user", In: InQuery},
				{Name: "id_course", In: InQuery},
			},
			Security:    "oauth2",
			Annotations: Annotations{ReadOnly: true},
		}},
		HTTPTool{Definition{
			Name:        "get_enrollment",
			Description: "Get one user's enrollment status in one course.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"course_id": {"type": "string", "description": "Numeric course id"},
					"user_id": {"type": "string", "description": "Numeric user id"}
				},
				"required": ["course_id", "user_id"],
				"additionalProperties": false
			}`),
			Method:       "GET",
			PathTemplate: "learn/v1/enrollments/{course_id}/{user_id}",
			Params: []Param{
				{Name: "course_id", In: InPath},
				{Name: "user_id", In: InPath},
			},
			Security:    "oauth2",
			Annotations: Annotations{ReadOnly: true},
		}},
		HTTPTool{Definition{
			Name:        "enroll_user",
			Description: "Enroll users in courses at the given level (student, tutor, or instructor).",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"body": {
						"type": "object",
						"properties": {
							"course_ids": {"type": "array", "items": {"type": "integer"}, "minItems": 1},
							"user_ids": {"type": "array", "items": {"type": "integer"}, "minItems": 1},
							"level": {"type": "string", "enum": ["student", "tutor", "instructor"]}
						},
						"required": ["course_ids", "user_ids"]
					}
				},
				"required": ["body"],
				"additionalProperties": false
			}`),
			Method:          "POST",
			PathTemplate:    "learn/v1/enrollments",
			Params:          []Param{{Name: "body", In: InBody}},
			BodyContentType: "application/json",
			Security:        "oauth2",
			Annotations:     Annotations{Idempotent: true},
		}},
		HTTPTool{Definition{
			Name:        "unenroll_user",
			Description: "Remove one user's enrollment from a course. The enrollment history is lost.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"course_id": {"type": "string", "description": "Numeric course id"},
					"user_id": {"type": "string", "description": "Numeric user id"}
				},
				"required": ["course_id", "user_id"],
				"additionalProperties": false
			}`),
			Method:       "DELETE",
			PathTemplate: "learn/v1/enrollments/{course_id}/{user_id}",
			Params: []Param{
				{Name: "course_id", In: InPath},
				{Name: "user_id", In: InPath},
			},
			Security:    "oauth2",
			Annotations: Annotations{Destructive: true},
		}},
	}
}
