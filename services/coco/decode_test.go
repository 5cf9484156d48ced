// Copyright (C) 2025 The labellint authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package coco

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validDoc = `{
	"info": {"description": "unit fixture"},
	"licenses": [],
	"images": [
		{"id": 1, "width": 640, "height": 480, "file_name": "a.jpg"},
		{"id": 2, "width": 800, "height": 600, "file_name": "b.jpg"}
	],
	"annotations": [
		{"id": 10, "image_id": 1, "category_id": 5, "bbox": [0, 0, 100, 50], "area": 5000.0, "iscrowd": 0},
		{"id": 11, "image_id": 2, "category_id": 5, "bbox": [10, 10, 20, 20], "area": 380.0, "iscrowd": 0,
		 "segmentation": [[10, 10, 30, 10, 30, 30]]}
	],
	"categories": [
		{"id": 5, "name": "car"}
	]
}`

func TestDecodeValidDocument(t *testing.T) {
	ds, err := Decode(strings.NewReader(validDoc))
	if err != nil {
		t.Fatalf("Decode failed on valid document: %v", err)
	}

	if len(ds.Images) != 2 || len(ds.Annotations) != 2 || len(ds.Categories) != 1 {
		t.Fatalf("unexpected counts: %d images, %d annotations, %d categories",
			len(ds.Images), len(ds.Annotations), len(ds.Categories))
	}

	ann := ds.Annotations[0]
	if ann.BBox.W() != 100 || ann.BBox.H() != 50 {
		t.Errorf("bbox accessors wrong: w=%v h=%v", ann.BBox.W(), ann.BBox.H())
	}
	if ann.HasSegmentation() {
		t.Error("annotation 10 has no segmentation but HasSegmentation() = true")
	}
	if !ds.Annotations[1].HasSegmentation() {
		t.Error("annotation 11 carries a polygon but HasSegmentation() = false")
	}
}

func TestDecodeFailureKinds(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		kind DecodeErrorKind
	}{
		{
			name: "truncated document",
			doc:  `{"images": [`,
			kind: MalformedJSON,
		},
		{
			name: "not json at all",
			doc:  `images: []`,
			kind: MalformedJSON,
		},
		{
			name: "string where integer expected",
			doc:  `{"images": [{"id": "one", "width": 10, "height": 10, "file_name": "a.jpg"}], "annotations": [], "categories": []}`,
			kind: SchemaViolation,
		},
		{
			name: "zero image width",
			doc:  `{"images": [{"id": 1, "width": 0, "height": 10, "file_name": "a.jpg"}], "annotations": [], "categories": []}`,
			kind: SchemaViolation,
		},
		{
			name: "missing file name",
			doc:  `{"images": [{"id": 1, "width": 10, "height": 10}], "annotations": [], "categories": []}`,
			kind: SchemaViolation,
		},
		{
			name: "bbox with three components",
			doc:  `{"images": [], "annotations": [{"id": 1, "image_id": 1, "category_id": 1, "bbox": [0, 0, 5], "area": 0, "iscrowd": 0}], "categories": []}`,
			kind: SchemaViolation,
		},
		{
			name: "negative bbox height",
			doc:  `{"images": [], "annotations": [{"id": 1, "image_id": 1, "category_id": 1, "bbox": [0, 0, 5, -5], "area": 25, "iscrowd": 0}], "categories": []}`,
			kind: SchemaViolation,
		},
		{
			name: "negative area",
			doc:  `{"images": [], "annotations": [{"id": 1, "image_id": 1, "category_id": 1, "bbox": [0, 0, 5, 5], "area": -1, "iscrowd": 0}], "categories": []}`,
			kind: SchemaViolation,
		},
		{
			name: "iscrowd out of range",
			doc:  `{"images": [], "annotations": [{"id": 1, "image_id": 1, "category_id": 1, "bbox": [0, 0, 5, 5], "area": 25, "iscrowd": 2}], "categories": []}`,
			kind: SchemaViolation,
		},
		{
			name: "unnamed category",
			doc:  `{"images": [], "annotations": [], "categories": [{"id": 1}]}`,
			kind: SchemaViolation,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tc.doc))
			if err == nil {
				t.Fatal("expected a decode error, got nil")
			}
			var derr *DecodeError
			if !errors.As(err, &derr) {
				t.Fatalf("expected *DecodeError, got %T: %v", err, err)
			}
			if derr.Kind != tc.kind {
				t.Errorf("expected kind %s, got %s (%v)", tc.kind, derr.Kind, derr)
			}
		})
	}
}

func TestDecodeDoesNotRejectDanglingReferences(t *testing.T) {
	// Referential integrity is the rule engine's concern; the decoder
	// must accept dangling ids.
	doc := `{
		"images": [{"id": 1, "width": 10, "height": 10, "file_name": "a.jpg"}],
		"annotations": [{"id": 1, "image_id": 999, "category_id": 999, "bbox": [0, 0, 5, 5], "area": 25, "iscrowd": 0}],
		"categories": []
	}`
	if _, err := Decode(strings.NewReader(doc)); err != nil {
		t.Fatalf("decoder rejected dangling references: %v", err)
	}
}

func TestDecodeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "annotations.json")
	if err := os.WriteFile(path, []byte(validDoc), 0o600); err != nil {
		t.Fatal(err)
	}

	ds, err := DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile failed: %v", err)
	}
	if len(ds.Images) != 2 {
		t.Errorf("expected 2 images, got %d", len(ds.Images))
	}

	_, err = DecodeFile(filepath.Join(dir, "missing.json"))
	var derr *DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("expected *DecodeError for missing file, got %T", err)
	}
	if derr.Path == "" {
		t.Error("decode error for a file should carry the path")
	}
}

func TestHasSegmentation(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"absent", ``, false},
		{"null", `null`, false},
		{"empty array", `[]`, false},
		{"empty object", `{}`, false},
		{"polygon", `[[1, 2, 3, 4, 5, 6]]`, true},
		{"rle", `{"counts": [1, 2], "size": [10, 10]}`, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ann := Annotation{Segmentation: []byte(tc.raw)}
			if got := ann.HasSegmentation(); got != tc.want {
				t.Errorf("HasSegmentation(%q) = %t, want %t", tc.raw, got, tc.want)
			}
		})
	}
}

func TestIndexesLastRecordWins(t *testing.T) {
	ds := &Dataset{
		Images: []Image{
			{ID: 1, Width: 10, Height: 10, FileName: "first.jpg"},
			{ID: 1, Width: 20, Height: 20, FileName: "second.jpg"},
		},
		Categories: []Category{{ID: 3, Name: "cat"}},
	}
	if got := ds.ImageIndex()[1].FileName; got != "second.jpg" {
		t.Errorf("expected later image record to win, got %q", got)
	}
	if got := ds.CategoryIndex()[3].Name; got != "cat" {
		t.Errorf("category index lookup failed, got %q", got)
	}
}
