// The main package for the papersync executable.
package main

import (
	"os"

	"github.com/openastro/papersync/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
