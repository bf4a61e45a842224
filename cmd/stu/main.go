// Command stu is the Stu music search service and CLI. `stu serve` runs the
// HTTP API, `stu mcp` runs the search tool server on stdio, and the other
// subcommands run searches and enrichment from the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
