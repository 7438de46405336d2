// Package executor turns a declarative tool description plus raw arguments
// into an outbound Docebo API call and a normalized result.
//
// # Pipeline
//
// Every invocation follows validate -> bind -> call -> format:
//
//  1. Arguments are validated against the tool's JSON Schema. All
//     violations are aggregated into one error result so the caller can fix
//     everything at once.
//  2. Validated arguments are bound to the request: path placeholders
//     (URL-encoded), query parameters, headers, or the request body.
//  3. The absolute URL is the tenant's base URL joined with the resolved
//     path, the caller's bearer token is attached, and the call is issued
//     with a fixed 30 second timeout.
//  4. The response is normalized to text, optionally summarized for
//     read-only JSON responses, annotated with pagination metadata, and
//     truncated to a fixed ceiling.
//
// Failures at any step become error results with descriptive messages; the
// engine never returns a Go error to the protocol layer. Code tools skip
// step 2-3 and run their own process step inside the same validation and
// formatting envelope.
package executor
