// Copyright (C) 2025 The labellint authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/labellint/labellint/pkg/logging"
	"github.com/labellint/labellint/services/rule_engine"
)

// engineConfig holds the thresholds for the current invocation. It starts
// from the documented defaults and is optionally overridden by a config
// file in PersistentPreRun, before any subcommand runs.
var engineConfig = rule_engine.DefaultConfig()

var log = logging.Default()

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}

func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if flagVerbose {
			log = logging.New(logging.Config{Level: logging.LevelDebug, Service: "labellint"})
		}
		return loadConfigFile(flagConfig)
	}
}

// loadConfigFile merges threshold overrides from a YAML file. The default
// path is optional: a missing .labellint.yaml is not an error, but a path
// given explicitly with --config must exist.
func loadConfigFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, &engineConfig); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	log.Debug("config loaded", "path", path)
	return nil
}
