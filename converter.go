// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package mdconv

import (
	"errors"
	"io"
)

// StreamInfo holds metadata about the input being converted. Every field is
// optional; an empty string means "unknown". No field implies another: a
// StreamInfo may carry an extension without a MIME type, a URL without a
// filename, and so on. Values are never mutated in place; derive new ones
// through Update or Apply.
type StreamInfo struct {
	MIMEType  string
	Extension string
	Charset   string
	Filename  string
	LocalPath string
	URL       string
}

// Update returns a copy of s with each overlay's non-empty fields applied in
// order. A later overlay wins over an earlier one, and any overlay wins over
// s, but an empty overlay field never erases a value already present.
func (s StreamInfo) Update(overlays ...StreamInfo) StreamInfo {
	out := s
	for _, o := range overlays {
		if o.MIMEType != "" {
			out.MIMEType = o.MIMEType
		}
		if o.Extension != "" {
			out.Extension = o.Extension
		}
		if o.Charset != "" {
			out.Charset = o.Charset
		}
		if o.Filename != "" {
			out.Filename = o.Filename
		}
		if o.LocalPath != "" {
			out.LocalPath = o.LocalPath
		}
		if o.URL != "" {
			out.URL = o.URL
		}
	}
	return out
}

// StreamInfoOverride sets fields unconditionally: a non-nil pointer is applied
// even when it points at an empty string, which clears the field. Nil pointers
// leave the field alone. This is the only way to unset a StreamInfo field.
type StreamInfoOverride struct {
	MIMEType  *string
	Extension *string
	Charset   *string
	Filename  *string
	LocalPath *string
	URL       *string
}

// Apply returns a copy of s with every non-nil override field applied.
func (s StreamInfo) Apply(o StreamInfoOverride) StreamInfo {
	out := s
	if o.MIMEType != nil {
		out.MIMEType = *o.MIMEType
	}
	if o.Extension != nil {
		out.Extension = *o.Extension
	}
	if o.Charset != nil {
		out.Charset = *o.Charset
	}
	if o.Filename != nil {
		out.Filename = *o.Filename
	}
	if o.LocalPath != nil {
		out.LocalPath = *o.LocalPath
	}
	if o.URL != nil {
		out.URL = *o.URL
	}
	return out
}

// DocumentConverterResult holds the output of a conversion.
type DocumentConverterResult struct {
	Markdown string
	Title    string
}

// ErrNotImplemented is the "not wired up" signal for converter methods.
// Returned from Accepts it means "does not accept"; returned from Convert it
// means "this converter is a stub": dispatch records no failed attempt and
// keeps probing. It is distinct from a rejection and from a real failure.
var ErrNotImplemented = errors.New("not implemented")

// DocumentConverter is the interface all format converters implement.
type DocumentConverter interface {
	// Accepts reports whether this converter can handle the given input.
	// It may peek at reader but MUST NOT rely on the read position
	// afterwards; dispatch restores the position around every probe.
	// Returning ErrNotImplemented counts as a rejection; any other error
	// is treated as a programming defect and aborts dispatch.
	Accepts(reader io.ReadSeeker, info StreamInfo, opts *ConversionOptions) (bool, error)

	// Convert performs the actual document-to-markdown conversion.
	Convert(reader io.ReadSeeker, info StreamInfo, opts *ConversionOptions) (*DocumentConverterResult, error)
}

// BaseConverter is the default DocumentConverter: both methods return
// ErrNotImplemented. Embed it to get stub behavior for the method you do not
// override.
type BaseConverter struct{}

func (BaseConverter) Accepts(io.ReadSeeker, StreamInfo, *ConversionOptions) (bool, error) {
	return false, ErrNotImplemented
}

func (BaseConverter) Convert(io.ReadSeeker, StreamInfo, *ConversionOptions) (*DocumentConverterResult, error) {
	return nil, ErrNotImplemented
}
