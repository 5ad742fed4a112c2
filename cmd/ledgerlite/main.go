// Command ledgerlite is the offline-first personal finance CLI.
package main

import (
	"fmt"
	"os"

	"github.com/ledgerlite/ledgerlite/internal/cli"
)

// version is injected at build time via -ldflags.
var version = "dev" //nolint:gochecknoglobals // build-time variable

func main() {
	os.Exit(run())
}

func run() int {
	root := cli.NewRootCmd(version)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
