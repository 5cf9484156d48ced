// Copyright (C) 2025 The labellint authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Statistical anomaly rules. Both rules refuse to run below a minimum
// sample size: quartiles over three boxes and imbalance alerts over a toy
// dataset are noise, not findings.

package rule_engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/labellint/labellint/services/coco"
)

// newAspectRatioOutliersRule flags "sliver box" candidates: boxes whose
// aspect ratio falls outside the IQR fences of the dataset-wide ratio
// distribution. Ratio is max(w,h)/min(w,h), so orientation does not matter.
// Degenerate boxes are excluded; the zero-area rule owns those.
func newAspectRatioOutliersRule(cfg Config) Rule {
	return &ruleFunc{
		id:        "stats.aspect_ratio_outliers",
		category:  CategoryStatistical,
		rationale: "Extreme aspect ratios relative to the rest of the dataset usually mean a mis-drawn box.",
		eval: func(ds *coco.Dataset) []Finding {
			ratios := make([]float64, 0, len(ds.Annotations))
			for _, ann := range ds.Annotations {
				if r, ok := aspectRatio(ann); ok {
					ratios = append(ratios, r)
				}
			}
			if len(ratios) < cfg.MinRatioSamples {
				return nil
			}

			q1 := percentile(ratios, 25)
			q3 := percentile(ratios, 75)
			iqr := q3 - q1
			lower := q1 - cfg.IQRMultiplier*iqr
			upper := q3 + cfg.IQRMultiplier*iqr

			var findings []Finding
			for _, ann := range ds.Annotations {
				r, ok := aspectRatio(ann)
				if !ok || (r >= lower && r <= upper) {
					continue
				}
				findings = append(findings, Finding{
					RuleID:   "stats.aspect_ratio_outliers",
					Severity: SeverityWarning,
					Message: fmt.Sprintf(
						"Annotation (ID %d) on image (ID %d) has an outlier aspect ratio of %.2f. Typical range: [%.2f - %.2f].",
						ann.ID, ann.ImageID, r, lower, upper),
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

// newClassImbalanceRule flags categories starved of annotations. Dangling
// category references are ignored here; the unmatched-category rule reports
// them.
func newClassImbalanceRule(cfg Config) Rule {
	return &ruleFunc{
		id:        "stats.class_imbalance",
		category:  CategoryStatistical,
		rationale: "A class with almost no examples will be invisible to the trained model.",
		eval: func(ds *coco.Dataset) []Finding {
			total := len(ds.Annotations)
			if total < cfg.MinAnnotations {
				return nil
			}

			categories := ds.CategoryIndex()
			counts := make(map[int]int)
			for _, ann := range ds.Annotations {
				if _, ok := categories[ann.CategoryID]; ok {
					counts[ann.CategoryID]++
				}
			}

			threshold := math.Max(float64(cfg.ImbalanceFloor), float64(total)*cfg.ImbalanceFraction)

			ids := make([]int, 0, len(counts))
			for id := range counts {
				ids = append(ids, id)
			}
			sort.Ints(ids)

			var findings []Finding
			for _, id := range ids {
				count := counts[id]
				if float64(count) >= threshold {
					continue
				}
				findings = append(findings, Finding{
					RuleID:   "stats.class_imbalance",
					Severity: SeverityWarning,
					Message: fmt.Sprintf(
						"Severe class imbalance: category %q (ID %d) has only %d of %d annotations.",
						categories[id].Name, id, count, total),
					EntityRefs: EntityRefs{"category_id": {id}},
				})
			}
			return findings
		},
	}
}

// aspectRatio returns max(w,h)/min(w,h) for a usable box. Boxes already
// condemned by the zero-area rule report ok=false and stay out of the
// distribution.
func aspectRatio(ann coco.Annotation) (ratio float64, ok bool) {
	w, h := ann.BBox.W(), ann.BBox.H()
	if w <= 0 || h <= 0 {
		return 0, false
	}
	return math.Max(w, h) / math.Min(w, h), true
}

// percentile computes the p-th percentile of values using linear
// interpolation between closest ranks, the same method numpy defaults to.
// values need not be sorted; they are copied, not reordered in place.
func percentile(values []float64, p float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
