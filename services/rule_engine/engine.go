// Copyright (C) 2025 The labellint authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rule_engine

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/labellint/labellint/pkg/logging"
	"github.com/labellint/labellint/services/coco"
)

// Engine executes a registry's rules against a dataset and assembles the
// report. It holds no per-scan state; one Engine can serve any number of
// scans, concurrently if desired.
type Engine struct {
	registry *Registry
	cfg      Config
	log      *logging.Logger
}

// Option customizes Engine construction.
type Option func(*Engine)

// WithLogger attaches a logger. Without it the engine stays silent.
func WithLogger(log *logging.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// New creates an Engine over the given registry and config.
func New(registry *Registry, cfg Config, opts ...Option) *Engine {
	e := &Engine{
		registry: registry,
		cfg:      cfg,
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewDefault creates an Engine with the full built-in rule set and the
// documented default thresholds.
func NewDefault(opts ...Option) *Engine {
	cfg := DefaultConfig()
	return New(DefaultRegistry(cfg), cfg, opts...)
}

// Run executes every registered rule exactly once against ds and returns
// the aggregated report.
//
// Findings appear in registry order regardless of Config.Workers: rules may
// evaluate in parallel, but each rule's findings land in a dedicated slot
// and the slots are concatenated in order. Two runs over the same dataset
// therefore produce byte-identical reports.
//
// A rule that panics does not abort the scan. The fault is converted into a
// single synthetic ERROR finding attributed to that rule, and the remaining
// rules still execute. The dataset itself is never modified.
func (e *Engine) Run(ds *coco.Dataset) *Report {
	rules := e.registry.List()
	e.log.Info("scan started",
		"rules", len(rules),
		"images", len(ds.Images),
		"annotations", len(ds.Annotations),
		"categories", len(ds.Categories),
	)

	slots := make([][]Finding, len(rules))
	if e.cfg.Workers > 1 {
		var g errgroup.Group
		g.SetLimit(e.cfg.Workers)
		for i, rule := range rules {
			i, rule := i, rule
			g.Go(func() error {
				slots[i] = e.evaluate(rule, ds)
				return nil
			})
		}
		// Faults are captured inside evaluate; no rule returns an error.
		_ = g.Wait()
	} else {
		for i, rule := range rules {
			slots[i] = e.evaluate(rule, ds)
		}
	}

	findings := make([]Finding, 0)
	for _, slot := range slots {
		findings = append(findings, slot...)
	}

	report := &Report{
		Findings: findings,
		Summary:  e.summarize(ds, findings),
	}
	e.log.Info("scan complete",
		"total_findings", report.Summary.TotalFindings,
		"passed", report.Summary.Passed,
	)
	return report
}

// RunRules executes only the rules with the given ids, in the order given.
// Unknown ids fail with ErrRuleNotFound before anything runs.
func (e *Engine) RunRules(ds *coco.Dataset, ids []string) (*Report, error) {
	rules := make([]Rule, 0, len(ids))
	for _, id := range ids {
		rule, err := e.registry.Get(id)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	findings := make([]Finding, 0)
	for _, rule := range rules {
		findings = append(findings, e.evaluate(rule, ds)...)
	}
	return &Report{Findings: findings, Summary: e.summarize(ds, findings)}, nil
}

// evaluate runs one rule with fault isolation. A panic inside the rule is
// converted into the synthetic ERROR finding; findings is replaced
// entirely, since a half-built result from a broken rule is not
// trustworthy.
func (e *Engine) evaluate(rule Rule, ds *coco.Dataset) (findings []Finding) {
	defer func() {
		if rec := recover(); rec != nil {
			e.log.Error("rule execution fault",
				"rule_id", rule.ID(),
				"fault", fmt.Sprint(rec),
			)
			findings = []Finding{{
				RuleID:   rule.ID(),
				Severity: SeverityError,
				Message: fmt.Sprintf(
					"Rule %q failed with an internal fault: %v. Its findings are unavailable for this scan.",
					rule.ID(), rec),
			}}
		}
	}()

	e.log.Debug("executing rule", "rule_id", rule.ID())
	findings = rule.Evaluate(ds)
	if len(findings) > 0 {
		e.log.Info("rule produced findings", "rule_id", rule.ID(), "count", len(findings))
	}
	return findings
}

// summarize computes the report summary from the assembled findings.
func (e *Engine) summarize(ds *coco.Dataset, findings []Finding) Summary {
	s := Summary{
		TotalFindings:      len(findings),
		BySeverity:         make(map[Severity]int),
		ByRule:             make(map[string]int),
		ImagesScanned:      len(ds.Images),
		AnnotationsScanned: len(ds.Annotations),
		CategoriesScanned:  len(ds.Categories),
	}
	for _, f := range findings {
		s.BySeverity[f.Severity]++
		s.ByRule[f.RuleID]++
	}
	s.Passed = s.BySeverity[SeverityError] == 0
	return s
}
