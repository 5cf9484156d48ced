// Copyright (C) 2025 The labellint authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package coco defines the validated in-memory representation of a COCO
// object-detection dataset and the decoder that produces it.
//
// The types here are the single source of truth for what the rule engine is
// allowed to assume about its input: every field is present and correctly
// typed, bounding boxes have exactly four components, image dimensions are
// positive. Everything the decoder does NOT enforce (id uniqueness,
// referential integrity, geometry sanity) is deliberately left to the rules.
//
// Reference: https://cocodataset.org/#format-data
package coco

import (
	"bytes"
	"encoding/json"
)

// BBox is a COCO bounding box: [x, y, width, height] in pixel units.
//
// It is kept as a slice rather than a fixed array so the decoder can detect
// and reject inputs with the wrong component count instead of silently
// truncating them.
type BBox []float64

// X returns the left edge of the box.
func (b BBox) X() float64 { return b[0] }

// Y returns the top edge of the box.
func (b BBox) Y() float64 { return b[1] }

// W returns the box width.
func (b BBox) W() float64 { return b[2] }

// H returns the box height.
func (b BBox) H() float64 { return b[3] }

// Image is a single image record. file_name is an opaque label; the linter
// never touches the filesystem to verify it.
type Image struct {
	ID       int    `json:"id"`
	Width    int    `json:"width" validate:"gt=0"`
	Height   int    `json:"height" validate:"gt=0"`
	FileName string `json:"file_name" validate:"required"`

	License      *int   `json:"license,omitempty"`
	FlickrURL    string `json:"flickr_url,omitempty"`
	CocoURL      string `json:"coco_url,omitempty"`
	DateCaptured string `json:"date_captured,omitempty"`
}

// Category is a class label. The format does not guarantee id uniqueness;
// that is a rule's job, not the decoder's.
type Category struct {
	ID            int    `json:"id"`
	Name          string `json:"name" validate:"required"`
	Supercategory string `json:"supercategory,omitempty"`
}

// Annotation is a single labeled region. image_id and category_id are
// references by id, not ownership: dangling references are valid input for
// the engine and exactly what the relational rules look for.
type Annotation struct {
	ID         int     `json:"id"`
	ImageID    int     `json:"image_id"`
	CategoryID int     `json:"category_id"`
	BBox       BBox    `json:"bbox" validate:"len=4,bbox_dims"`
	Area       float64 `json:"area" validate:"gte=0"`
	IsCrowd    int     `json:"iscrowd" validate:"gte=0,lte=1"`

	// Segmentation is carried opaquely. Its presence signals a
	// non-rectangular shape, which changes the area-consistency policy.
	Segmentation json.RawMessage `json:"segmentation,omitempty"`
}

// HasSegmentation reports whether the annotation carries a non-empty
// polygon or RLE segmentation. An absent field, JSON null, an empty array,
// or an empty object all count as "no segmentation".
func (a *Annotation) HasSegmentation() bool {
	raw := bytes.TrimSpace(a.Segmentation)
	switch {
	case len(raw) == 0:
		return false
	case bytes.Equal(raw, []byte("null")):
		return false
	case bytes.Equal(raw, []byte("[]")):
		return false
	case bytes.Equal(raw, []byte("{}")):
		return false
	}
	return true
}

// Dataset is the root aggregate handed to the rule engine. It is constructed
// once by the decoder and must be treated as read-only for the duration of a
// scan; no rule or engine code mutates it.
type Dataset struct {
	Info     json.RawMessage `json:"info,omitempty"`
	Licenses json.RawMessage `json:"licenses,omitempty"`

	Images      []Image      `json:"images" validate:"dive"`
	Annotations []Annotation `json:"annotations" validate:"dive"`
	Categories  []Category   `json:"categories" validate:"dive"`
}

// ImageIndex returns a lookup of image id to image. Later records win on
// duplicate ids, matching the original linter's indexing behavior.
func (d *Dataset) ImageIndex() map[int]Image {
	idx := make(map[int]Image, len(d.Images))
	for _, img := range d.Images {
		idx[img.ID] = img
	}
	return idx
}

// CategoryIndex returns a lookup of category id to category.
func (d *Dataset) CategoryIndex() map[int]Category {
	idx := make(map[int]Category, len(d.Categories))
	for _, cat := range d.Categories {
		idx[cat.ID] = cat
	}
	return idx
}
