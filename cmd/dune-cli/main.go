// Package main is the entry point for the dune-cli binary.
package main

import (
	"os"

	"github.com/dunetools/dune-client-go/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
