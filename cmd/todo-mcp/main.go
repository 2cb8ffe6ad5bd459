// Package main is the entry point for the todo-mcp server.
//
// By default it serves the MCP tools on stdin/stdout; "serve --web" also
// starts the HTTP dashboard, and the remaining subcommands operate on the
// same store from the terminal. stdout is reserved for MCP traffic, so all
// diagnostics go to stderr.
package main

import (
	"context"
	"fmt"
	"os"

	"todomcp/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
