// Copyright (C) 2025 The labellint authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package rule_engine is the linter core: a registry of independent
// validation rules, the engine that executes them against a decoded COCO
// dataset, and the report the engine assembles from their findings.
//
// Rules are pure functions of the dataset. They never mutate input, never
// call each other, and never depend on execution order. The engine owns
// ordering, fault isolation, and summary statistics; everything user-facing
// (rendering, export, exit codes) lives outside this package.
package rule_engine

import (
	"github.com/labellint/labellint/services/coco"
)

// Severity classifies a finding. It is a closed enumeration: ERROR findings
// gate a scan (passed = false), WARNING findings are advisory.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

// RuleCategory groups rules by the kind of defect they detect.
type RuleCategory string

const (
	// CategoryRelational covers schema-level and referential checks:
	// dangling ids, duplicate keys, unreferenced images.
	CategoryRelational RuleCategory = "schema_relational"

	// CategoryGeometric covers per-annotation geometry and attribute
	// checks: degenerate boxes, out-of-bounds boxes, area agreement.
	CategoryGeometric RuleCategory = "geometric_attribute"

	// CategoryConsistency covers label-space consistency: duplicate and
	// case-fragmented category names.
	CategoryConsistency RuleCategory = "logical_consistency"

	// CategoryStatistical covers distribution-level anomaly detection.
	CategoryStatistical RuleCategory = "statistical"
)

// EntityRefs maps an entity kind ("annotation_id", "image_id",
// "category_id") to the ids of the affected entities. Most findings
// reference a single id per kind; grouping rules (duplicate names, case
// consistency) reference several. Ids are kept sorted so reports are
// byte-stable across runs.
type EntityRefs map[string][]int

// Finding is one diagnostic unit produced by a rule. All fields are set at
// construction and never modified afterwards; findings carry no remediation
// logic. Message is self-contained: it must be understandable without
// cross-referencing other findings.
type Finding struct {
	RuleID     string     `json:"rule_id"`
	Severity   Severity   `json:"severity"`
	Message    string     `json:"message"`
	EntityRefs EntityRefs `json:"entity_refs,omitempty"`
}

// Rule is the single capability every check implements. Evaluate must be a
// pure function of the dataset: deterministic output, no mutation, no
// shared state. The engine relies on that purity to run rules in parallel.
type Rule interface {
	// ID returns the stable identifier, e.g. "geometry.zero_area_bbox".
	ID() string

	// Category returns the rule's defect category.
	Category() RuleCategory

	// Rationale returns a one-line description of why the rule exists.
	Rationale() string

	// Evaluate inspects the dataset and returns zero or more findings.
	Evaluate(ds *coco.Dataset) []Finding
}

// Summary is the aggregate metadata attached to a report.
type Summary struct {
	TotalFindings      int              `json:"total_findings"`
	BySeverity         map[Severity]int `json:"by_severity"`
	ByRule             map[string]int   `json:"by_rule"`
	ImagesScanned      int              `json:"images_scanned"`
	AnnotationsScanned int              `json:"annotations_scanned"`
	CategoriesScanned  int              `json:"categories_scanned"`

	// Passed is true iff the scan produced zero ERROR findings. Warnings
	// alone do not fail a scan. This is the only value external callers
	// may derive an exit status from.
	Passed bool `json:"passed"`
}

// Report is the sole artifact the engine hands to presentation and export
// collaborators: every finding in deterministic registry order, plus the
// summary.
type Report struct {
	Findings []Finding `json:"findings"`
	Summary  Summary   `json:"summary"`
}

// ruleFunc adapts a plain evaluation closure to the Rule interface. All
// built-in rules are ruleFunc values; external packages can provide their
// own Rule implementations.
type ruleFunc struct {
	id        string
	category  RuleCategory
	rationale string
	eval      func(ds *coco.Dataset) []Finding
}

func (r *ruleFunc) ID() string                          { return r.id }
func (r *ruleFunc) Category() RuleCategory              { return r.category }
func (r *ruleFunc) Rationale() string                   { return r.rationale }
func (r *ruleFunc) Evaluate(ds *coco.Dataset) []Finding { return r.eval(ds) }

var _ Rule = (*ruleFunc)(nil)
