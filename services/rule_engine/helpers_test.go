// Copyright (C) 2025 The labellint authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rule_engine

import (
	"testing"

	"github.com/labellint/labellint/services/coco"
)

// Dataset builders shared by the rule tests. Fixtures are constructed
// directly rather than decoded from JSON: rule semantics are independent of
// the decoder, and the decoder has its own tests.

func img(id, w, h int, name string) coco.Image {
	return coco.Image{ID: id, Width: w, Height: h, FileName: name}
}

func cat(id int, name string) coco.Category {
	return coco.Category{ID: id, Name: name}
}

// ann builds an annotation whose stored area agrees with its box.
func ann(id, imageID, categoryID int, x, y, w, h float64) coco.Annotation {
	return coco.Annotation{
		ID:         id,
		ImageID:    imageID,
		CategoryID: categoryID,
		BBox:       coco.BBox{x, y, w, h},
		Area:       w * h,
	}
}

// requireFindings asserts the finding count and that every finding carries
// the rule's own id and the expected severity.
func requireFindings(t *testing.T, rule Rule, ds *coco.Dataset, want int, severity Severity) []Finding {
	t.Helper()
	findings := rule.Evaluate(ds)
	if len(findings) != want {
		t.Fatalf("rule %s: expected %d findings, got %d: %+v", rule.ID(), want, len(findings), findings)
	}
	for _, f := range findings {
		if f.RuleID != rule.ID() {
			t.Errorf("finding carries rule id %q, want %q", f.RuleID, rule.ID())
		}
		if f.Severity != severity {
			t.Errorf("finding severity %q, want %q", f.Severity, severity)
		}
		if f.Message == "" {
			t.Error("finding has an empty message")
		}
	}
	return findings
}

func refIDs(t *testing.T, f Finding, kind string) []int {
	t.Helper()
	ids, ok := f.EntityRefs[kind]
	if !ok {
		t.Fatalf("finding %+v has no %s refs", f, kind)
	}
	return ids
}
