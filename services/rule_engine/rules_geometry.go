// Copyright (C) 2025 The labellint authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Geometry and attribute rules.

package rule_engine

import (
	"fmt"
	"math"

	"github.com/labellint/labellint/services/coco"
)

// newZeroAreaBBoxRule reports degenerate boxes (width or height <= 0).
// No downstream consumer can do anything with them, so this is an error.
func newZeroAreaBBoxRule() Rule {
	return &ruleFunc{
		id:        "geometry.zero_area_bbox",
		category:  CategoryGeometric,
		rationale: "A box with no extent is unusable geometry, always an annotation mistake.",
		eval: func(ds *coco.Dataset) []Finding {
			var findings []Finding
			for _, ann := range ds.Annotations {
				w, h := ann.BBox.W(), ann.BBox.H()
				if w > 0 && h > 0 {
					continue
				}
				findings = append(findings, Finding{
					RuleID:   "geometry.zero_area_bbox",
					Severity: SeverityError,
					Message: fmt.Sprintf(
						"Annotation (ID %d) on image (ID %d) has a zero-area bounding box [w=%.1f, h=%.1f].",
						ann.ID, ann.ImageID, w, h),
					EntityRefs: EntityRefs{
						"annotation_id": {ann.ID},
						"image_id":      {ann.ImageID},
					},
				})
			}
			return findings
		},
	}
}

// newBBoxOutOfBoundsRule reports boxes extending past the borders of their
// image. Annotations with a dangling image reference are skipped; the
// unmatched-annotations rule already reports those.
func newBBoxOutOfBoundsRule() Rule {
	return &ruleFunc{
		id:        "geometry.bbox_out_of_bounds",
		category:  CategoryGeometric,
		rationale: "Pixels outside the image cannot have been labeled; the box or the dimensions are wrong.",
		eval: func(ds *coco.Dataset) []Finding {
			images := ds.ImageIndex()

			var findings []Finding
			for _, ann := range ds.Annotations {
				img, ok := images[ann.ImageID]
				if !ok {
					continue
				}
				x1, y1 := ann.BBox.X(), ann.BBox.Y()
				x2 := x1 + ann.BBox.W()
				y2 := y1 + ann.BBox.H()
				if x1 >= 0 && y1 >= 0 && x2 <= float64(img.Width) && y2 <= float64(img.Height) {
					continue
				}
				findings = append(findings, Finding{
					RuleID:   "geometry.bbox_out_of_bounds",
					Severity: SeverityError,
					Message: fmt.Sprintf(
						"Annotation (ID %d) on image %q (ID %d) is out of bounds. Bbox [x2=%.1f, y2=%.1f] vs. image [w=%d, h=%d].",
						ann.ID, img.FileName, img.ID, x2, y2, img.Width, img.Height),
					EntityRefs: EntityRefs{
						"annotation_id": {ann.ID},
						"image_id":      {img.ID},
					},
				})
			}
			return findings
		},
	}
}

// newAreaBBoxMismatchRule reports stored area attributes disagreeing with
// w*h beyond the configured relative tolerance. Annotations carrying a
// segmentation are excluded: polygon and RLE shapes legitimately have an
// area smaller than their bounding box.
func newAreaBBoxMismatchRule(cfg Config) Rule {
	tol := cfg.AreaTolerance
	return &ruleFunc{
		id:        "attribute.area_bbox_mismatch",
		category:  CategoryGeometric,
		rationale: "For plain boxes, area should equal w*h; disagreement means one of them is stale.",
		eval: func(ds *coco.Dataset) []Finding {
			var findings []Finding
			for _, ann := range ds.Annotations {
				if ann.HasSegmentation() {
					continue
				}
				computed := ann.BBox.W() * ann.BBox.H()
				if !areaMismatch(computed, ann.Area, tol) {
					continue
				}
				findings = append(findings, Finding{
					RuleID:   "attribute.area_bbox_mismatch",
					Severity: SeverityWarning,
					Message: fmt.Sprintf(
						"Annotation (ID %d) has a mismatched area. Bbox area is %.2f, but 'area' attribute is %.2f.",
						ann.ID, computed, ann.Area),
					EntityRefs: EntityRefs{"annotation_id": {ann.ID}},
				})
			}
			return findings
		},
	}
}

// areaMismatch reports whether computed and stored disagree by more than
// the relative tolerance. The difference is measured against the stored
// attribute; a zero stored area only matches a zero computed area.
func areaMismatch(computed, stored, tol float64) bool {
	if stored == 0 {
		return computed != 0
	}
	return math.Abs(computed-stored) > tol*math.Abs(stored)
}
