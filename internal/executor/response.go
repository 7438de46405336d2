// ABOUTME: Response normalization: text mapping, JSON summaries, pagination annotations, truncation.
// ABOUTME: Converts upstream failures into bounded single-line diagnostics.

package executor

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

var placeholderPattern = regexp.MustCompile(`\{[^{}]+\}`)

// truncationNotice is appended when a result text exceeds the ceiling.
const truncationNotice = "\n\n[Response truncated at %d characters. Narrow the result with pagination (page, page_size) or filters.]"

// summaryFields are the item attributes a condensed listing reports, in
// display order. Docebo list endpoints vary in shape; whichever of these a
// record carries is shown.
var summaryFields = []string{"id", "id_user", "course_id", "name", "title", "username", "userid", "fullname", "email", "code", "status", "enrollment_level"}

// formatResponse maps a 2xx upstream response to result text. JSON bodies
// pass through as text (or as a condensed summary for read-only calls when
// requested), plain text passes through verbatim, and binary or empty
// bodies become a status placeholder.
func formatResponse(method string, resp *http.Response, body []byte, summarize bool) string {
	if len(body) == 0 {
		return fmt.Sprintf("HTTP %d %s (empty response)", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	if gjson.ValidBytes(body) {
		text := string(body)
		if summarize && method == http.MethodGet {
			text = summarizeJSON(body)
		}
		if method == http.MethodGet {
			if note := paginationNote(body); note != "" {
				text += "\n\n" + note
			}
		}
		return text
	}

	if utf8.Valid(body) {
		return string(body)
	}

	return fmt.Sprintf("HTTP %d %s (binary response, %d bytes)", resp.StatusCode, http.StatusText(resp.StatusCode), len(body))
}

// summarizeJSON produces a condensed human-readable listing of a Docebo
// collection response. Responses without a recognizable item list fall back
// to the raw JSON.
func summarizeJSON(body []byte) string {
	items := gjson.GetBytes(body, "data.items")
	if !items.Exists() || !items.IsArray() {
		return string(body)
	}

	var b strings.Builder
	count := 0
	items.ForEach(func(_, item gjson.Result) bool {
		parts := []string{}
		for _, field := range summaryFields {
			if v := item.Get(field); v.Exists() {
				parts = append(parts, fmt.Sprintf("%s=%s", field, v.String()))
			}
		}
		if len(parts) == 0 {
			parts = append(parts, item.String())
		}
		fmt.Fprintf(&b, "- %s\n", strings.Join(parts, " "))
		count++
		return true
	})

	return fmt.Sprintf("%d items:\n%s", count, strings.TrimRight(b.String(), "\n"))
}

// paginationNote extracts pagination metadata from the common Docebo
// response shapes, returning an empty string when none is present.
func paginationNote(body []byte) string {
	parts := []string{}
	for label, path := range map[string]string{
		"total":     "data.total_count",
		"page":      "data.current_page",
		"page size": "data.page_size",
		"has more":  "data.has_more_data",
	} {
		if v := gjson.GetBytes(body, path); v.Exists() {
			parts = append(parts, fmt.Sprintf("%s: %s", label, v.String()))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	// Stable display order regardless of map iteration.
	order := []string{"total: ", "page: ", "page size: ", "has more: "}
	ordered := []string{}
	for _, prefix := range order {
		for _, p := range parts {
			if strings.HasPrefix(p, prefix) {
				ordered = append(ordered, p)
			}
		}
	}
	return "[Pagination — " + strings.Join(ordered, ", ") + "]"
}

// truncate enforces the response-size ceiling, appending a notice that
// points the caller at pagination and filters.
func truncate(text string) string {
	if len(text) <= maxResponseChars {
		return text
	}
	return cutAtRune(text, maxResponseChars) + fmt.Sprintf(truncationNotice, maxResponseChars)
}

// cutAtRune shortens s to at most limit bytes without splitting a rune.
func cutAtRune(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

// upstreamDiagnostic renders a non-2xx upstream response as a single-line
// diagnostic with a bounded body excerpt.
func upstreamDiagnostic(status int, body []byte) string {
	excerpt := strings.TrimSpace(string(body))
	excerpt = strings.ReplaceAll(excerpt, "\n", " ")
	if len(excerpt) > maxErrorExcerpt {
		excerpt = cutAtRune(excerpt, maxErrorExcerpt) + "..."
	}
	msg := fmt.Sprintf("API request failed: %d %s", status, http.StatusText(status))
	if excerpt != "" {
		msg += " - " + excerpt
	}
	return msg
}
