// Copyright 2025 Mediabridge Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package main

import (
	"os"

	"github.com/fatih/color"

	"github.com/mediabridge/mediabridge/cmd/mediabridge/commands"
	"github.com/mediabridge/mediabridge/cmd/mediabridge/internal/format"
	"github.com/mediabridge/mediabridge/pkg/compressor"
)

// main runs the mediabridge CLI and maps failures to exit codes:
//   - 0: Success
//   - 1: Engine failure (default)
//   - 2: Invalid input or options
//   - 130: Job cancelled
func main() {
	command := commands.NewCommand()

	if err := command.Execute(); err != nil {
		f := format.New(os.Stdout, os.Stderr, commands.OutputMode(command), false, !color.NoColor)
		_ = f.PrintError(err)
		os.Exit(compressor.ExitCode(err))
	}
}
