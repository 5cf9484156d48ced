// Copyright (C) 2025 The labellint authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux renders scan reports for human eyes.
//
// Single responsibility: renderers only render. Decoding, rule execution
// and serialization live elsewhere; this package turns a finished Report
// into styled terminal output and nothing else.
package ux

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/labellint/labellint/services/rule_engine"
)

// maxFindingsPerRule caps how many findings a rule group prints before
// truncating. The full list is always available via export.
const maxFindingsPerRule = 10

// ReportRenderer renders a report to an output destination.
type ReportRenderer interface {
	Render(report *rule_engine.Report) error
}

// TerminalReportRenderer writes a styled, truncated report suitable for an
// interactive terminal.
type TerminalReportRenderer struct {
	w io.Writer

	titleStyle   lipgloss.Style
	ruleStyle    lipgloss.Style
	errorStyle   lipgloss.Style
	warningStyle lipgloss.Style
	successStyle lipgloss.Style
	dimStyle     lipgloss.Style
	panelStyle   lipgloss.Style
}

// NewTerminalReportRenderer creates a renderer writing to w.
func NewTerminalReportRenderer(w io.Writer) *TerminalReportRenderer {
	return &TerminalReportRenderer{
		w:            w,
		titleStyle:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5")),
		ruleStyle:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3")),
		errorStyle:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
		warningStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		successStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		dimStyle:     lipgloss.NewStyle().Faint(true),
		panelStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2),
	}
}

// Render writes the summary panel followed by findings grouped by rule.
func (r *TerminalReportRenderer) Render(report *rule_engine.Report) error {
	if err := r.renderSummary(report.Summary); err != nil {
		return err
	}
	return r.renderFindings(report)
}

func (r *TerminalReportRenderer) renderSummary(s rule_engine.Summary) error {
	var result string
	if s.Passed {
		result = r.successStyle.Render(fmt.Sprintf("%d issues found, scan passed", s.TotalFindings))
	} else {
		result = r.errorStyle.Render(fmt.Sprintf("%d issues found, scan failed", s.TotalFindings))
	}

	body := strings.Join([]string{
		r.titleStyle.Render("Scan Summary"),
		"",
		fmt.Sprintf("Images:       %d", s.ImagesScanned),
		fmt.Sprintf("Annotations:  %d", s.AnnotationsScanned),
		fmt.Sprintf("Categories:   %d", s.CategoriesScanned),
		fmt.Sprintf("Errors:       %d", s.BySeverity[rule_engine.SeverityError]),
		fmt.Sprintf("Warnings:     %d", s.BySeverity[rule_engine.SeverityWarning]),
		"",
		result,
	}, "\n")

	_, err := fmt.Fprintln(r.w, r.panelStyle.Render(body))
	return err
}

func (r *TerminalReportRenderer) renderFindings(report *rule_engine.Report) error {
	if len(report.Findings) == 0 {
		_, err := fmt.Fprintln(r.w, r.successStyle.Render("No issues found. Your annotations look clean."))
		return err
	}

	byRule := make(map[string][]rule_engine.Finding)
	var order []string
	for _, f := range report.Findings {
		if _, ok := byRule[f.RuleID]; !ok {
			order = append(order, f.RuleID)
		}
		byRule[f.RuleID] = append(byRule[f.RuleID], f)
	}

	for _, ruleID := range order {
		findings := byRule[ruleID]
		header := fmt.Sprintf("%s (%d)", r.ruleStyle.Render(ruleID), len(findings))
		if _, err := fmt.Fprintf(r.w, "\n%s\n", header); err != nil {
			return err
		}
		for i, f := range findings {
			if i >= maxFindingsPerRule {
				trailer := fmt.Sprintf("  ... and %d more.", len(findings)-maxFindingsPerRule)
				if _, err := fmt.Fprintln(r.w, r.dimStyle.Render(trailer)); err != nil {
					return err
				}
				break
			}
			if _, err := fmt.Fprintf(r.w, "  %s %s\n", r.severityTag(f.Severity), f.Message); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *TerminalReportRenderer) severityTag(s rule_engine.Severity) string {
	if s == rule_engine.SeverityError {
		return r.errorStyle.Render("ERROR  ")
	}
	return r.warningStyle.Render("WARNING")
}

// PlainReportRenderer writes an unstyled, untruncated report. Used for
// non-TTY output and in tests that assert on content.
type PlainReportRenderer struct {
	w io.Writer
}

// NewPlainReportRenderer creates a plain renderer writing to w.
func NewPlainReportRenderer(w io.Writer) *PlainReportRenderer {
	return &PlainReportRenderer{w: w}
}

// Render writes one line per finding plus a trailing summary line.
func (r *PlainReportRenderer) Render(report *rule_engine.Report) error {
	for _, f := range report.Findings {
		if _, err := fmt.Fprintf(r.w, "%-7s %s %s\n", f.Severity, f.RuleID, f.Message); err != nil {
			return err
		}
	}
	s := report.Summary
	_, err := fmt.Fprintf(r.w, "%d findings (%d errors, %d warnings), passed=%t\n",
		s.TotalFindings,
		s.BySeverity[rule_engine.SeverityError],
		s.BySeverity[rule_engine.SeverityWarning],
		s.Passed,
	)
	return err
}

var (
	_ ReportRenderer = (*TerminalReportRenderer)(nil)
	_ ReportRenderer = (*PlainReportRenderer)(nil)
)
