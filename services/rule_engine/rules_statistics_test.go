// Copyright (C) 2025 The labellint authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rule_engine

import (
	"math"
	"testing"

	"github.com/labellint/labellint/services/coco"
)

func TestAspectRatioOutliers(t *testing.T) {
	// Six square boxes (ratio 1) and one sliver (ratio 50). Standard
	// IQR fences collapse to [1, 1], so exactly the sliver is flagged.
	ds := &coco.Dataset{
		Images:     []coco.Image{img(1, 1000, 1000, "a.jpg")},
		Categories: []coco.Category{cat(1, "car")},
	}
	for i := 0; i < 6; i++ {
		ds.Annotations = append(ds.Annotations, ann(10+i, 1, 1, 0, 0, 10, 10))
	}
	ds.Annotations = append(ds.Annotations, ann(99, 1, 1, 0, 0, 500, 10))

	findings := requireFindings(t, newAspectRatioOutliersRule(DefaultConfig()), ds, 1, SeverityWarning)
	if got := refIDs(t, findings[0], "annotation_id"); got[0] != 99 {
		t.Errorf("expected the sliver annotation 99, got %v", got)
	}
}

func TestAspectRatioIsOrientationInvariant(t *testing.T) {
	// A tall sliver and a wide sliver have the same ratio; both are
	// flagged, neither hides behind the other's orientation.
	ds := &coco.Dataset{
		Images:     []coco.Image{img(1, 1000, 1000, "a.jpg")},
		Categories: []coco.Category{cat(1, "car")},
	}
	for i := 0; i < 6; i++ {
		ds.Annotations = append(ds.Annotations, ann(10+i, 1, 1, 0, 0, 10, 10))
	}
	ds.Annotations = append(ds.Annotations,
		ann(98, 1, 1, 0, 0, 500, 10),
		ann(99, 1, 1, 0, 0, 10, 500),
	)

	findings := requireFindings(t, newAspectRatioOutliersRule(DefaultConfig()), ds, 2, SeverityWarning)
	if refIDs(t, findings[0], "annotation_id")[0] != 98 || refIDs(t, findings[1], "annotation_id")[0] != 99 {
		t.Errorf("expected annotations 98 and 99, got %+v", findings)
	}
}

func TestAspectRatioExcludesDegenerateBoxes(t *testing.T) {
	// Zero-extent boxes belong to the zero-area rule and must not feed
	// the distribution or be flagged here.
	ds := &coco.Dataset{
		Images:     []coco.Image{img(1, 1000, 1000, "a.jpg")},
		Categories: []coco.Category{cat(1, "car")},
	}
	for i := 0; i < 4; i++ {
		ds.Annotations = append(ds.Annotations, ann(10+i, 1, 1, 0, 0, 10, 10))
	}
	ds.Annotations = append(ds.Annotations, ann(99, 1, 1, 0, 0, 0, 10))

	requireFindings(t, newAspectRatioOutliersRule(DefaultConfig()), ds, 0, SeverityWarning)
}

func TestAspectRatioSmallSampleGuard(t *testing.T) {
	// Below MinRatioSamples quartiles are meaningless: no findings,
	// regardless of how extreme the shapes are.
	ds := &coco.Dataset{
		Images:     []coco.Image{img(1, 1000, 1000, "a.jpg")},
		Categories: []coco.Category{cat(1, "car")},
		Annotations: []coco.Annotation{
			ann(10, 1, 1, 0, 0, 10, 10),
			ann(11, 1, 1, 0, 0, 500, 1),
			ann(12, 1, 1, 0, 0, 1, 900),
		},
	}
	requireFindings(t, newAspectRatioOutliersRule(DefaultConfig()), ds, 0, SeverityWarning)
}

func TestClassImbalance(t *testing.T) {
	// 49 annotations for "car", 1 for "pedestrian": threshold is
	// max(10, 50*0.001) = 10, so only the starved class fires.
	ds := &coco.Dataset{
		Images: []coco.Image{img(1, 1000, 1000, "a.jpg")},
		Categories: []coco.Category{
			cat(1, "car"),
			cat(2, "pedestrian"),
		},
	}
	for i := 0; i < 49; i++ {
		ds.Annotations = append(ds.Annotations, ann(100+i, 1, 1, 0, 0, 10, 10))
	}
	ds.Annotations = append(ds.Annotations, ann(500, 1, 2, 0, 0, 10, 10))

	findings := requireFindings(t, newClassImbalanceRule(DefaultConfig()), ds, 1, SeverityWarning)
	f := findings[0]
	if got := refIDs(t, f, "category_id"); got[0] != 2 {
		t.Errorf("expected starved category 2, got %v", got)
	}
}

func TestClassImbalanceMinimumTotalGuard(t *testing.T) {
	ds := &coco.Dataset{
		Images:     []coco.Image{img(1, 1000, 1000, "a.jpg")},
		Categories: []coco.Category{cat(1, "car"), cat(2, "pedestrian")},
		Annotations: []coco.Annotation{
			ann(10, 1, 1, 0, 0, 10, 10),
			ann(11, 1, 2, 0, 0, 10, 10),
		},
	}
	requireFindings(t, newClassImbalanceRule(DefaultConfig()), ds, 0, SeverityWarning)
}

func TestClassImbalanceIgnoresDanglingCategoryRefs(t *testing.T) {
	// Annotations pointing at missing categories are the unmatched-
	// category rule's finding; they must not surface as "starved".
	ds := &coco.Dataset{
		Images:     []coco.Image{img(1, 1000, 1000, "a.jpg")},
		Categories: []coco.Category{cat(1, "car")},
	}
	for i := 0; i < 55; i++ {
		ds.Annotations = append(ds.Annotations, ann(100+i, 1, 1, 0, 0, 10, 10))
	}
	for i := 0; i < 3; i++ {
		ds.Annotations = append(ds.Annotations, ann(200+i, 1, 999, 0, 0, 10, 10))
	}

	requireFindings(t, newClassImbalanceRule(DefaultConfig()), ds, 0, SeverityWarning)
}

func TestPercentileLinearInterpolation(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		p      float64
		want   float64
	}{
		{"median of odd count", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}, 50, 5},
		{"q1 lands on a sample", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}, 25, 3},
		{"q1 interpolates", []float64{1, 2, 3, 4}, 25, 1.75},
		{"q3 interpolates", []float64{1, 2, 3, 4}, 75, 3.25},
		{"single sample", []float64{42}, 75, 42},
		{"unsorted input", []float64{9, 1, 5}, 50, 5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := percentile(tc.values, tc.p); math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("percentile(%v, %v) = %v, want %v", tc.values, tc.p, got, tc.want)
			}
		})
	}
}
