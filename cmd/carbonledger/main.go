// Command carbonledger is the entry point for the carbon emission
// ledger CLI.
package main

import (
	"fmt"
	"os"

	"github.com/rshade/carbonledger/internal/cli"
)

// version is set at build time via -ldflags.
//
//nolint:gochecknoglobals // Build-time injection requires a package variable.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return cli.NewRootCmd(version).Execute()
}
