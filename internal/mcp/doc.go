// Package mcp implements the Model Context Protocol (MCP) server for todo-mcp
// using the mcp-go library.
//
// Every store operation is exposed as one tool (todo_login, todo_add,
// todo_summary, ...). Each tool carries read-only, destructive and idempotent
// hints; none of them reaches outside the local store.
//
// # Handlers
//
// A tool call goes through three steps:
//   - the arguments are validated against the tool's input schema, with
//     unknown argument names rejected
//   - the matching store operation runs (reload, rules, persist)
//   - the outcome is returned as an indented JSON text payload
//
// Handlers never return a Go error. Permission denial and missing ids both
// produce {"success":false,"error":"Permission denied or <entity> not found"},
// so a caller cannot probe which ids exist. Malformed arguments produce a tool
// error result with "invalid arguments: ...".
//
// # Usage
//
// The server is started as a subprocess by MCP clients:
//
//	todo-mcp serve
//
// It reads JSON-RPC requests from stdin and writes responses to stdout until
// EOF or termination. Logs go to stderr only.
package mcp
