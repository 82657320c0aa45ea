// Package main provides the sqlrebuild command.
package main

import (
	"os"

	"github.com/gandaldf/sqlrebuild/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
