// Package main is the entry point for the mcpmerge CLI.
package main

import (
	"os"

	"github.com/thoreinstein/mcpmerge/cmd/mcpmerge/commands"
	"github.com/thoreinstein/mcpmerge/internal/errors"
)

func main() {
	if err := commands.Execute(); err != nil {
		commands.PrintError(os.Stderr, err)
		os.Exit(errors.ExitCode(err))
	}
}
