// Copyright (C) 2025 The labellint authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/labellint/labellint/pkg/export"
	"github.com/labellint/labellint/pkg/ux"
	"github.com/labellint/labellint/services/coco"
	"github.com/labellint/labellint/services/rule_engine"
)

var (
	scanOut     string
	scanFormat  string
	scanJSON    bool
	scanQuiet   bool
	scanPlain   bool
	scanWorkers int
	scanRules   []string
)

var scanCmd = &cobra.Command{
	Use:   "scan FILE",
	Short: "Scan an annotation file for anomalies",
	Long: `Scan a COCO JSON annotation file against the full rule set and print a
report.

Examples:
  labellint scan annotations.json
  labellint scan annotations.json --out report.json
  labellint scan annotations.json --format markdown --out report.md
  labellint scan annotations.json --rules relation.unmatched_annotations
  labellint scan annotations.json --json --quiet

Exit Codes:
  0 = Scan passed (no ERROR findings; warnings are advisory)
  1 = Scan failed (at least one ERROR finding)
  2 = Error (file unreadable, malformed JSON, schema violation)`,
	Args: cobra.ExactArgs(1),
	Run:  runScanCmd,
}

func init() {
	scanCmd.Flags().StringVarP(&scanOut, "out", "o", "",
		"Write the full, untruncated report to this file")
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", "json",
		"Format for --out: json or markdown")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false,
		"Print the report as JSON on stdout instead of the styled view")
	scanCmd.Flags().BoolVar(&scanQuiet, "quiet", false,
		"Suppress terminal output; only the exit code and --out remain")
	scanCmd.Flags().BoolVar(&scanPlain, "plain", false,
		"Print an unstyled, untruncated report")
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 0,
		"Evaluate rules in parallel with this many workers (0 = sequential)")
	scanCmd.Flags().StringSliceVar(&scanRules, "rules", nil,
		"Run only these rule ids (default: all registered rules)")

	rootCmd.AddCommand(scanCmd)
}

func runScanCmd(cmd *cobra.Command, args []string) {
	os.Exit(runScan(args[0]))
}

// runScan performs one scan and returns the process exit code. Split from
// the cobra handler so the watch command and tests can reuse it without
// exiting.
func runScan(path string) int {
	start := time.Now()

	ds, err := coco.DecodeFile(path)
	if err != nil {
		reportDecodeFailure(err)
		return ExitError
	}

	cfg := engineConfig
	if scanWorkers > 0 {
		cfg.Workers = scanWorkers
	}

	engine := rule_engine.New(rule_engine.DefaultRegistry(cfg), cfg, rule_engine.WithLogger(log))

	var report *rule_engine.Report
	if len(scanRules) > 0 {
		report, err = engine.RunRules(ds, scanRules)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitError
		}
	} else {
		report = engine.Run(ds)
	}

	if !scanQuiet {
		if err := renderReport(report); err != nil {
			fmt.Fprintf(os.Stderr, "Error: render report: %v\n", err)
			return ExitError
		}
	}

	if scanOut != "" {
		if err := exportReport(report, scanOut, scanFormat); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitError
		}
		if !scanQuiet && !scanJSON {
			fmt.Printf("Full report saved to %s\n", scanOut)
		}
	}

	log.Info("scan finished",
		"path", path,
		"duration_ms", time.Since(start).Milliseconds(),
		"passed", report.Summary.Passed,
	)

	// The exit status is derived solely from the pass/fail summary.
	if report.Summary.Passed {
		return ExitSuccess
	}
	return ExitFindings
}

func renderReport(report *rule_engine.Report) error {
	switch {
	case scanJSON:
		return export.WriteJSON(os.Stdout, report)
	case scanPlain:
		return ux.NewPlainReportRenderer(os.Stdout).Render(report)
	default:
		return ux.NewTerminalReportRenderer(os.Stdout).Render(report)
	}
}

func exportReport(report *rule_engine.Report, path, formatName string) error {
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := export.Write(f, format, report); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func reportDecodeFailure(err error) {
	var derr *coco.DecodeError
	if errors.As(err, &derr) {
		switch derr.Kind {
		case coco.MalformedJSON:
			fmt.Fprintf(os.Stderr, "Error: input is not a valid JSON document: %v\n", derr.Err)
		case coco.SchemaViolation:
			fmt.Fprintf(os.Stderr, "Error: input does not conform to the COCO schema: %v\n", derr.Err)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}
