// Copyright (C) 2025 The labellint authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package coco

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DecodeErrorKind distinguishes the two ways an input can fail to become a
// Dataset.
type DecodeErrorKind string

const (
	// MalformedJSON means the input is not a valid JSON document at all.
	MalformedJSON DecodeErrorKind = "malformed_json"

	// SchemaViolation means the JSON parsed but does not conform to the
	// COCO object-detection schema (wrong types, missing fields, bad
	// bbox shape, non-positive image dimensions, ...).
	SchemaViolation DecodeErrorKind = "schema_violation"
)

// DecodeError is the single fatal error type the decoder surfaces. When it is
// returned, the engine never runs.
type DecodeError struct {
	Kind DecodeErrorKind
	Path string // source path when decoding from a file, "" otherwise
	Err  error
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("coco decode (%s): %v", e.Kind, e.Err)
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Path, msg)
	}
	return msg
}

func (e *DecodeError) Unwrap() error { return e.Err }

// cocoValidate is the validator instance for dataset schema checks.
// Initialized once with the custom bbox validator registered.
var cocoValidate *validator.Validate

func init() {
	cocoValidate = validator.New()

	// bbox_dims rejects negative width/height. Zero is allowed here: the
	// zero-area rule reports it as a finding rather than a decode failure.
	_ = cocoValidate.RegisterValidation("bbox_dims", validateBBoxDims)
}

func validateBBoxDims(fl validator.FieldLevel) bool {
	box, ok := fl.Field().Interface().(BBox)
	if !ok || len(box) != 4 {
		// Length is enforced by the len=4 tag; don't double-report.
		return true
	}
	return box.W() >= 0 && box.H() >= 0
}

// Decode reads a COCO JSON document and returns a validated Dataset.
//
// Failure modes are deterministic: a syntactically broken document yields a
// *DecodeError with Kind MalformedJSON, any structural or typing problem
// yields Kind SchemaViolation. On success every invariant listed in the
// package documentation holds and the Dataset is safe to hand to the engine.
func Decode(r io.Reader) (*Dataset, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &DecodeError{Kind: MalformedJSON, Err: fmt.Errorf("read input: %w", err)}
	}

	var ds Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &DecodeError{
				Kind: SchemaViolation,
				Err:  fmt.Errorf("field %q: expected %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value),
			}
		}
		return nil, &DecodeError{Kind: MalformedJSON, Err: err}
	}

	if err := cocoValidate.Struct(&ds); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			// Surface the first violation with a readable location,
			// the rest are usually noise once that one is fixed.
			first := verrs[0]
			loc := strings.TrimPrefix(first.Namespace(), "Dataset.")
			return nil, &DecodeError{
				Kind: SchemaViolation,
				Err:  fmt.Errorf("%s failed constraint %q", loc, first.Tag()),
			}
		}
		return nil, &DecodeError{Kind: SchemaViolation, Err: err}
	}

	return &ds, nil
}

// DecodeFile opens path and decodes it. File access problems are reported as
// MalformedJSON decode errors carrying the path, mirroring the "cannot be
// coerced into the data model" contract.
func DecodeFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Kind: MalformedJSON, Path: path, Err: err}
	}
	defer f.Close()

	ds, err := Decode(f)
	if err != nil {
		var derr *DecodeError
		if errors.As(err, &derr) {
			derr.Path = path
		}
		return nil, err
	}
	return ds, nil
}
