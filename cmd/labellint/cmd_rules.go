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
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/labellint/labellint/services/rule_engine"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List all registered linting rules",
	Long: `List every registered rule in execution order, with its category and a
one-line rationale. The order shown here is the order findings appear in
every report.`,
	Args: cobra.NoArgs,
	Run:  runRulesCmd,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}

func runRulesCmd(cmd *cobra.Command, args []string) {
	registry := rule_engine.DefaultRegistry(engineConfig)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RULE\tCATEGORY\tRATIONALE")
	for _, rule := range registry.List() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", rule.ID(), rule.Category(), rule.Rationale())
	}
	tw.Flush()
}
