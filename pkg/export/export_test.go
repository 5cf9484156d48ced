// Copyright (C) 2025 The labellint authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labellint/labellint/services/rule_engine"
)

func sampleReport() *rule_engine.Report {
	findings := []rule_engine.Finding{
		{
			RuleID:   "relation.unmatched_annotations",
			Severity: rule_engine.SeverityError,
			Message:  "Orphaned annotation (ID 11) points to a missing image (ID 999).",
			EntityRefs: rule_engine.EntityRefs{
				"annotation_id": {11},
				"image_id":      {999},
			},
		},
		{
			RuleID:   "relation.images_without_annotations",
			Severity: rule_engine.SeverityWarning,
			Message:  `Image "b.jpg" (ID 2) has no annotations.`,
			EntityRefs: rule_engine.EntityRefs{
				"image_id": {2},
			},
		},
	}
	return &rule_engine.Report{
		Findings: findings,
		Summary: rule_engine.Summary{
			TotalFindings: 2,
			BySeverity: map[rule_engine.Severity]int{
				rule_engine.SeverityError:   1,
				rule_engine.SeverityWarning: 1,
			},
			ByRule: map[string]int{
				"relation.unmatched_annotations":      1,
				"relation.images_without_annotations": 1,
			},
			ImagesScanned:      2,
			AnnotationsScanned: 1,
			CategoriesScanned:  1,
			Passed:             false,
		},
	}
}

func TestWriteJSONIsLossless(t *testing.T) {
	report := sampleReport()

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, report))

	var decoded rule_engine.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, *report, decoded, "every finding field must survive the round trip")
}

func TestWriteJSONIsStable(t *testing.T) {
	report := sampleReport()

	var first, second bytes.Buffer
	require.NoError(t, WriteJSON(&first, report))
	require.NoError(t, WriteJSON(&second, report))
	assert.Equal(t, first.Bytes(), second.Bytes())
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, sampleReport()))
	out := buf.String()

	assert.Contains(t, out, "| Total findings | 2 |")
	assert.Contains(t, out, "| Result | FAILED |")
	assert.Contains(t, out, "### relation.unmatched_annotations (1)")
	assert.Contains(t, out, "Orphaned annotation (ID 11)")
	assert.Contains(t, out, "`(annotation_id=11, image_id=999)`")

	// Groups appear in finding order: the error rule came first.
	assert.Less(t,
		strings.Index(out, "relation.unmatched_annotations"),
		strings.Index(out, "relation.images_without_annotations"))
}

func TestWriteMarkdownCleanReport(t *testing.T) {
	report := &rule_engine.Report{
		Findings: []rule_engine.Finding{},
		Summary:  rule_engine.Summary{Passed: true},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, report))
	assert.Contains(t, buf.String(), "No issues found.")
	assert.Contains(t, buf.String(), "| Result | PASSED |")
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"markdown", FormatMarkdown, false},
		{"html", "", true},
	}
	for _, tc := range tests {
		got, err := ParseFormat(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}
