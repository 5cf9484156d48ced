// Copyright (C) 2025 The labellint authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package export serializes scan reports for consumption outside the
// terminal. Writers are lossless: every finding field survives the round
// trip, and field order is stable so identical scans produce identical
// bytes.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/labellint/labellint/services/rule_engine"
)

// Format names an export format accepted by the CLI.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatMarkdown:
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported format %q (supported: json, markdown)", s)
	}
}

// Write renders the report in the given format.
func Write(w io.Writer, format Format, report *rule_engine.Report) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, report)
	case FormatMarkdown:
		return WriteMarkdown(w, report)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// WriteJSON writes the full, untruncated report as indented JSON. Map keys
// are emitted in sorted order by encoding/json, so output is byte-stable.
func WriteJSON(w io.Writer, report *rule_engine.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// WriteMarkdown writes a human-readable report: a summary table followed by
// findings grouped by rule id. Groups follow first-appearance order, which
// is registry order.
func WriteMarkdown(w io.Writer, report *rule_engine.Report) error {
	var b strings.Builder

	b.WriteString("# labellint scan report\n\n")
	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Images scanned | %d |\n", report.Summary.ImagesScanned)
	fmt.Fprintf(&b, "| Annotations scanned | %d |\n", report.Summary.AnnotationsScanned)
	fmt.Fprintf(&b, "| Categories | %d |\n", report.Summary.CategoriesScanned)
	fmt.Fprintf(&b, "| Total findings | %d |\n", report.Summary.TotalFindings)
	fmt.Fprintf(&b, "| Errors | %d |\n", report.Summary.BySeverity[rule_engine.SeverityError])
	fmt.Fprintf(&b, "| Warnings | %d |\n", report.Summary.BySeverity[rule_engine.SeverityWarning])
	fmt.Fprintf(&b, "| Result | %s |\n", passLabel(report.Summary.Passed))

	if len(report.Findings) == 0 {
		b.WriteString("\nNo issues found.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	b.WriteString("\n## Findings\n")
	for _, ruleID := range ruleOrder(report.Findings) {
		fmt.Fprintf(&b, "\n### %s (%d)\n\n", ruleID, report.Summary.ByRule[ruleID])
		for _, f := range report.Findings {
			if f.RuleID != ruleID {
				continue
			}
			fmt.Fprintf(&b, "- **%s** %s%s\n", f.Severity, f.Message, refSuffix(f.EntityRefs))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// ruleOrder returns the distinct rule ids in first-appearance order.
func ruleOrder(findings []rule_engine.Finding) []string {
	seen := make(map[string]struct{})
	var order []string
	for _, f := range findings {
		if _, ok := seen[f.RuleID]; !ok {
			seen[f.RuleID] = struct{}{}
			order = append(order, f.RuleID)
		}
	}
	return order
}

// refSuffix renders entity refs as " `(annotation_id=42, image_id=7)`".
func refSuffix(refs rule_engine.EntityRefs) string {
	if len(refs) == 0 {
		return ""
	}
	kinds := make([]string, 0, len(refs))
	for kind := range refs {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	parts := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		ids := make([]string, len(refs[kind]))
		for i, id := range refs[kind] {
			ids[i] = fmt.Sprintf("%d", id)
		}
		parts = append(parts, fmt.Sprintf("%s=%s", kind, strings.Join(ids, ",")))
	}
	return fmt.Sprintf(" `(%s)`", strings.Join(parts, ", "))
}

func passLabel(passed bool) string {
	if passed {
		return "PASSED"
	}
	return "FAILED"
}
