// Command sparqlflow evaluates a serialized SPARQL algebra tree against one
// or more quad-pattern sources and writes the result in a chosen format.
package main

import (
	"fmt"
	"os"
)

func main() {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(GetExitCode(err))
	}
}
