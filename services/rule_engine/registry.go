// Copyright (C) 2025 The labellint authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rule_engine

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateRule is returned when a rule id is registered twice.
	// Duplicate registration is a programming error, not a runtime
	// condition to tolerate.
	ErrDuplicateRule = errors.New("rule already registered")

	// ErrRuleNotFound is returned by Get for an unknown rule id.
	ErrRuleNotFound = errors.New("rule not found")
)

// Registry holds the set of available rules in registration order. The
// order is the contract that makes reports reproducible: List always returns
// rules in the exact sequence they were registered, and the engine emits
// findings in that sequence.
//
// A Registry is built once at startup and treated as read-only afterwards;
// it is not safe for concurrent registration.
type Registry struct {
	order []Rule
	byID  map[string]Rule
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]Rule)}
}

// Register adds a rule. It fails with ErrDuplicateRule if the id is taken.
func (r *Registry) Register(rule Rule) error {
	if _, exists := r.byID[rule.ID()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateRule, rule.ID())
	}
	r.byID[rule.ID()] = rule
	r.order = append(r.order, rule)
	return nil
}

// MustRegister is Register for static rule sets, where a duplicate id is a
// bug worth crashing on.
func (r *Registry) MustRegister(rule Rule) {
	if err := r.Register(rule); err != nil {
		panic(err)
	}
}

// Get returns the rule with the given id, or ErrRuleNotFound. It exists so
// callers can run a subset of rules by id.
func (r *Registry) Get(id string) (Rule, error) {
	rule, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRuleNotFound, id)
	}
	return rule, nil
}

// List returns the rules in registration order. The returned slice is a
// copy; callers cannot perturb the registry through it.
func (r *Registry) List() []Rule {
	out := make([]Rule, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered rules.
func (r *Registry) Len() int { return len(r.order) }

// DefaultRegistry builds the full built-in rule set. Registration order is
// fixed and is the order findings appear in every report: relational and
// category checks first, then geometry, then statistics.
func DefaultRegistry(cfg Config) *Registry {
	reg := NewRegistry()
	reg.MustRegister(newUnmatchedAnnotationsRule())
	reg.MustRegister(newUnmatchedCategoryRule())
	reg.MustRegister(newImagesWithoutAnnotationsRule())
	reg.MustRegister(newDuplicateCategoryIDsRule())
	reg.MustRegister(newDuplicateCategoryNamesRule())
	reg.MustRegister(newCategoryCaseConsistencyRule())
	reg.MustRegister(newZeroAreaBBoxRule())
	reg.MustRegister(newBBoxOutOfBoundsRule())
	reg.MustRegister(newAreaBBoxMismatchRule(cfg))
	reg.MustRegister(newAspectRatioOutliersRule(cfg))
	reg.MustRegister(newClassImbalanceRule(cfg))
	return reg
}
