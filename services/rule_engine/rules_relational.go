// Copyright (C) 2025 The labellint authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Relational and category-consistency rules. Each rule walks the dataset
// independently; cross-rule deduplication is expressed as explicit skip
// conditions (e.g. out-of-bounds skips annotations with a dangling image
// reference) rather than shared state.

package rule_engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/labellint/labellint/services/coco"
)

// newUnmatchedAnnotationsRule reports annotations whose image_id does not
// resolve to any image in the dataset.
func newUnmatchedAnnotationsRule() Rule {
	return &ruleFunc{
		id:        "relation.unmatched_annotations",
		category:  CategoryRelational,
		rationale: "An annotation pointing at a missing image can never be used for training.",
		eval: func(ds *coco.Dataset) []Finding {
			validImages := make(map[int]struct{}, len(ds.Images))
			for _, img := range ds.Images {
				validImages[img.ID] = struct{}{}
			}

			var findings []Finding
			for _, ann := range ds.Annotations {
				if _, ok := validImages[ann.ImageID]; ok {
					continue
				}
				findings = append(findings, Finding{
					RuleID:   "relation.unmatched_annotations",
					Severity: SeverityError,
					Message: fmt.Sprintf(
						"Orphaned annotation (ID %d) points to a missing image (ID %d).",
						ann.ID, ann.ImageID),
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

// newUnmatchedCategoryRule reports annotations whose category_id does not
// resolve to any category in the dataset.
func newUnmatchedCategoryRule() Rule {
	return &ruleFunc{
		id:        "relation.unmatched_category",
		category:  CategoryRelational,
		rationale: "An annotation with a dangling category reference has no usable class label.",
		eval: func(ds *coco.Dataset) []Finding {
			validCats := make(map[int]struct{}, len(ds.Categories))
			for _, cat := range ds.Categories {
				validCats[cat.ID] = struct{}{}
			}

			var findings []Finding
			for _, ann := range ds.Annotations {
				if _, ok := validCats[ann.CategoryID]; ok {
					continue
				}
				findings = append(findings, Finding{
					RuleID:   "relation.unmatched_category",
					Severity: SeverityError,
					Message: fmt.Sprintf(
						"Annotation (ID %d) points to a missing category (ID %d).",
						ann.ID, ann.CategoryID),
					EntityRefs: EntityRefs{
						"annotation_id": {ann.ID},
						"category_id":   {ann.CategoryID},
					},
				})
			}
			return findings
		},
	}
}

// newImagesWithoutAnnotationsRule reports images no annotation references.
// Only a warning: unlabeled images may be intentional negative examples.
func newImagesWithoutAnnotationsRule() Rule {
	return &ruleFunc{
		id:        "relation.images_without_annotations",
		category:  CategoryRelational,
		rationale: "Unreferenced images are often forgotten work, though they may be deliberate negatives.",
		eval: func(ds *coco.Dataset) []Finding {
			// A dataset with no annotations at all is not a sea of
			// forgotten images; skip entirely.
			if len(ds.Annotations) == 0 {
				return nil
			}

			annotated := make(map[int]struct{}, len(ds.Annotations))
			for _, ann := range ds.Annotations {
				annotated[ann.ImageID] = struct{}{}
			}

			var findings []Finding
			for _, img := range ds.Images {
				if _, ok := annotated[img.ID]; ok {
					continue
				}
				findings = append(findings, Finding{
					RuleID:   "relation.images_without_annotations",
					Severity: SeverityWarning,
					Message: fmt.Sprintf(
						"Image %q (ID %d) has no annotations.",
						img.FileName, img.ID),
					EntityRefs: EntityRefs{"image_id": {img.ID}},
				})
			}
			return findings
		},
	}
}

// newDuplicateCategoryIDsRule reports category ids used by more than one
// category definition. One finding per duplicated id.
func newDuplicateCategoryIDsRule() Rule {
	return &ruleFunc{
		id:        "category.duplicate_ids",
		category:  CategoryRelational,
		rationale: "Two classes sharing an id is schema-breaking; annotations cannot distinguish them.",
		eval: func(ds *coco.Dataset) []Finding {
			namesByID := make(map[int][]string)
			for _, cat := range ds.Categories {
				namesByID[cat.ID] = append(namesByID[cat.ID], cat.Name)
			}

			var dupIDs []int
			for id, names := range namesByID {
				if len(names) > 1 {
					dupIDs = append(dupIDs, id)
				}
			}
			sort.Ints(dupIDs)

			var findings []Finding
			for _, id := range dupIDs {
				names := namesByID[id]
				sort.Strings(names)
				findings = append(findings, Finding{
					RuleID:   "category.duplicate_ids",
					Severity: SeverityError,
					Message: fmt.Sprintf(
						"Duplicate category ID #%d appears %d times (names: %s).",
						id, len(names), strings.Join(names, ", ")),
					EntityRefs: EntityRefs{"category_id": {id}},
				})
			}
			return findings
		},
	}
}

// newDuplicateCategoryNamesRule reports exact name collisions across
// distinct category definitions. One finding per duplicated name.
func newDuplicateCategoryNamesRule() Rule {
	return &ruleFunc{
		id:        "category.duplicate_names",
		category:  CategoryConsistency,
		rationale: "Two ids with the same label are ambiguous, though not necessarily wrong.",
		eval: func(ds *coco.Dataset) []Finding {
			idsByName := make(map[string][]int)
			for _, cat := range ds.Categories {
				idsByName[cat.Name] = append(idsByName[cat.Name], cat.ID)
			}

			var dupNames []string
			for name, ids := range idsByName {
				if len(ids) > 1 {
					dupNames = append(dupNames, name)
				}
			}
			sort.Strings(dupNames)

			var findings []Finding
			for _, name := range dupNames {
				ids := idsByName[name]
				sort.Ints(ids)
				findings = append(findings, Finding{
					RuleID:   "category.duplicate_names",
					Severity: SeverityWarning,
					Message: fmt.Sprintf(
						"Duplicate category name %q appears %d times (ids: %s).",
						name, len(ids), joinInts(ids)),
					EntityRefs: EntityRefs{"category_id": ids},
				})
			}
			return findings
		},
	}
}

// newCategoryCaseConsistencyRule reports one semantic class fragmented
// across ids by capitalization ("Car" vs "car"). Groups whose spellings are
// all identical belong to the duplicate-names rule, not this one.
func newCategoryCaseConsistencyRule() Rule {
	return &ruleFunc{
		id:        "category.case_consistency",
		category:  CategoryConsistency,
		rationale: "Case variants of one label silently split a class across category ids.",
		eval: func(ds *coco.Dataset) []Finding {
			type group struct {
				spellings map[string]struct{}
				ids       []int
			}
			byLower := make(map[string]*group)
			for _, cat := range ds.Categories {
				key := strings.ToLower(cat.Name)
				g, ok := byLower[key]
				if !ok {
					g = &group{spellings: make(map[string]struct{})}
					byLower[key] = g
				}
				g.spellings[cat.Name] = struct{}{}
				g.ids = append(g.ids, cat.ID)
			}

			var keys []string
			for key, g := range byLower {
				if len(g.spellings) > 1 {
					keys = append(keys, key)
				}
			}
			sort.Strings(keys)

			var findings []Finding
			for _, key := range keys {
				g := byLower[key]
				variants := make([]string, 0, len(g.spellings))
				for s := range g.spellings {
					variants = append(variants, s)
				}
				sort.Strings(variants)
				ids := append([]int(nil), g.ids...)
				sort.Ints(ids)
				findings = append(findings, Finding{
					RuleID:   "category.case_consistency",
					Severity: SeverityWarning,
					Message: fmt.Sprintf(
						"Inconsistent capitalization for %q. Found: %s (ids: %s).",
						key, strings.Join(variants, ", "), joinInts(ids)),
					EntityRefs: EntityRefs{"category_id": ids},
				})
			}
			return findings
		},
	}
}

// joinInts renders ids as "1, 2, 3" for finding messages.
func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ", ")
}
