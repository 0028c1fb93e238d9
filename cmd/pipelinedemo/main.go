// Command pipelinedemo is a small CLI harness that builds a sample
// fan-out/fan-in graph in Go code and runs it, the same way any outside
// caller would: the runtime never parses a config file describing
// components and edges, so this binary constructs one directly.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}
