// Package tools defines the tool catalog exposed over MCP.
//
// # Overview
//
// A tool is a named, schema-validated operation an MCP client can invoke.
// Two closed variants exist:
//
//   - HTTPTool: a purely declarative description (method, path template,
//     parameter bindings) that the execution engine turns into a Docebo API
//     call. Almost every tool is this kind.
//   - CodeTool: a hand-written handler for operations that cannot be
//     expressed as a single endpoint description. The engine wraps the same
//     validation and error formatting around it, so the two kinds are
//     indistinguishable to a caller.
//
// The Registry is the lookup table the protocol engine and execution engine
// share. Tool names are globally unique; registering a duplicate fails with
// ErrToolCollision.
//
// The catalog itself (courses, enrollments, users) is plain data built by
// the Catalog function.
package tools
