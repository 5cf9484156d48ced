// Copyright (C) 2025 The labellint authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/spf13/cobra"
)

// version is overridden at build time via -ldflags.
var version = "dev"

// Exit codes shared by all subcommands.
const (
	// ExitSuccess: the scan ran and produced no ERROR findings.
	ExitSuccess = 0
	// ExitFindings: the scan ran and the report did not pass.
	ExitFindings = 1
	// ExitError: the scan could not run (bad input, decode failure).
	ExitError = 2
)

// defaultConfigFile is looked up in the working directory unless --config
// points elsewhere.
const defaultConfigFile = ".labellint.yaml"

var (
	flagConfig  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "labellint",
	Short: "A high-precision linter for computer-vision annotation files",
	Long: `labellint finds structural, relational, geometric, and statistical
defects in COCO object-detection datasets before they reach model training.

It never modifies input data: every check is a read-only diagnostic, and the
process exit code reflects whether the dataset passed.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "",
		"Path to a YAML file overriding rule thresholds (default: "+defaultConfigFile+" if present)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false,
		"Enable debug logging")
}
